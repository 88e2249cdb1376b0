// internal/httpserver/routes_boards.go
//
// Board editor routes:
//   - POST   /boards                create a draft
//   - GET    /boards                list drafts, newest first
//   - GET    /boards/{id}           one draft with derived views
//   - POST   /boards/{id}/edits     apply one edit
//   - POST   /boards/{id}/evaluate  dry-run a word form for live feedback
//   - GET    /boards/{id}/export    export as JSON (or ?format=yaml)
//   - POST   /boards/import         import an export as a new draft
//   - DELETE /boards/{id}
//
// Edits go through board.ApplyEdit, which never mutates the stored draft. The
// new board is only persisted when the edit succeeds, so a rejected edit or a
// storage failure leaves the previous draft in place.

package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/robalobadob/wordgrid/internal/board"
	"github.com/robalobadob/wordgrid/internal/grid"
)

func (s *Server) mountBoards(r chi.Router) {
	r.Route("/boards", func(r chi.Router) {
		r.Post("/", s.handleCreateBoard)
		r.Get("/", s.handleListBoards)
		r.Post("/import", s.handleImportBoard)
		r.Get("/{id}", s.handleGetBoard)
		r.Delete("/{id}", s.handleDeleteBoard)
		r.Post("/{id}/edits", s.handleEditBoard)
		r.Post("/{id}/evaluate", s.handleEvaluate)
		r.Get("/{id}/export", s.handleExportBoard)
	})
}

type createBoardReq struct {
	Title   string `json:"title"`
	Rows    int    `json:"rows"`
	Columns int    `json:"columns"`
	Notes   string `json:"notes"`
}

func (s *Server) handleCreateBoard(w http.ResponseWriter, r *http.Request) {
	var req createBoardReq
	if err := decode(w, r, &req); err != nil {
		jsonError(w, "bad_json", http.StatusBadRequest)
		return
	}
	b := board.New(board.NewID(), req.Title)
	b.Notes = req.Notes
	// Resize clamps and treats 0 as the default.
	b, err := board.ApplyEdit(b, board.Resize{Rows: req.Rows, Columns: req.Columns})
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if err := s.boards.Save(r.Context(), b); err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

type boardSummary struct {
	ID      string      `json:"id"`
	Title   string      `json:"title"`
	Rows    int         `json:"rows"`
	Columns int         `json:"columns"`
	Stats   board.Stats `json:"stats"`
}

func summarize(b board.Board) boardSummary {
	return boardSummary{ID: b.ID, Title: b.Title, Rows: b.Rows, Columns: b.Columns, Stats: b.Stats()}
}

func (s *Server) handleListBoards(w http.ResponseWriter, r *http.Request) {
	list, err := s.boards.List(r.Context())
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lo.Map(list, func(b board.Board, _ int) boardSummary { return summarize(b) }))
}

func (s *Server) handleGetBoard(w http.ResponseWriter, r *http.Request) {
	b, err := s.boards.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleDeleteBoard(w http.ResponseWriter, r *http.Request) {
	if err := s.boards.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// editReq is the union of every edit; Type selects which fields apply.
type editReq struct {
	Type      string         `json:"type"` // resize | toggle | save | remove | rename
	Rows      int            `json:"rows"`
	Columns   int            `json:"columns"`
	Row       int            `json:"row"`
	Col       int            `json:"col"`
	Word      board.WordForm `json:"word"`
	EditingID string         `json:"editingId"`
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Notes     string         `json:"notes"`
}

func (e editReq) edit() (board.Edit, error) {
	switch e.Type {
	case "resize":
		return board.Resize{Rows: e.Rows, Columns: e.Columns}, nil
	case "toggle":
		return board.ToggleDisabled{Cell: grid.Cell{Row: e.Row, Col: e.Col}}, nil
	case "save":
		return board.SaveWord{Form: e.Word, EditingID: e.EditingID}, nil
	case "remove":
		return board.RemoveWord{ID: e.ID}, nil
	case "rename":
		return board.Rename{Title: e.Title, Notes: e.Notes}, nil
	}
	return nil, board.ErrUnknownEdit
}

func (s *Server) handleEditBoard(w http.ResponseWriter, r *http.Request) {
	var req editReq
	if err := decode(w, r, &req); err != nil {
		jsonError(w, "bad_json", http.StatusBadRequest)
		return
	}
	edit, err := req.edit()
	if err != nil {
		writeErr(w, r, err)
		return
	}
	current, err := s.boards.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	next, err := board.ApplyEdit(current, edit)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if err := s.boards.Save(r.Context(), next); err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, next)
}

type evaluateReq struct {
	Word      board.WordForm `json:"word"`
	EditingID string         `json:"editingId"`
}

type evaluateRes struct {
	OK     bool         `json:"ok"`
	Cells  []grid.Cell  `json:"cells"`
	Issues []grid.Issue `json:"issues"`
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateReq
	if err := decode(w, r, &req); err != nil {
		jsonError(w, "bad_json", http.StatusBadRequest)
		return
	}
	b, err := s.boards.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	p, err := board.Preview(b, req.Word, req.EditingID)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, evaluateRes{OK: p.OK(), Cells: p.Cells, Issues: p.Issues})
}

func (s *Server) handleExportBoard(w http.ResponseWriter, r *http.Request) {
	b, err := s.boards.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if r.URL.Query().Get("format") == "yaml" {
		out, err := yaml.Marshal(b.Export())
		if err != nil {
			writeErr(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(out)
		return
	}
	writeJSON(w, http.StatusOK, b.Export())
}

func (s *Server) handleImportBoard(w http.ResponseWriter, r *http.Request) {
	var e board.Export
	if err := decode(w, r, &e); err != nil {
		jsonError(w, "bad_json", http.StatusBadRequest)
		return
	}
	// Imports always become a new draft with fresh word ids.
	e.ID = board.NewID()
	for i := range e.Words {
		e.Words[i].ID = ""
	}
	b, err := board.FromExport(e)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if err := s.boards.Save(r.Context(), b); err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}
