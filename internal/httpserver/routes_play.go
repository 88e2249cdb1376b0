// internal/httpserver/routes_play.go
//
// Play, sample and daily routes:
//   - GET  /samples, GET /samples/{id}, POST /samples/{id}/copy
//   - POST /plays                 start a play from {boardId} or {sampleId}
//   - GET  /plays/{id}
//   - POST /plays/{id}/hint       reveal the next hint of {wordId}
//   - POST /plays/{id}/guess      submit {wordId, guess}
//   - POST /plays/{id}/restart
//   - POST /daily/new             start today's sample
//
// Answers never leave the server in play responses; only completed words
// contribute letters. The guess that completes the last word finishes the
// play and appends exactly one session record.

package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/robalobadob/wordgrid/internal/board"
	"github.com/robalobadob/wordgrid/internal/daily"
	"github.com/robalobadob/wordgrid/internal/game"
	"github.com/robalobadob/wordgrid/internal/grid"
	"github.com/robalobadob/wordgrid/internal/sessions"
)

var errNoCatalog = errors.New("no sample catalog loaded")

func (s *Server) mountSamples(r chi.Router) {
	r.Get("/samples", s.handleListSamples)
	r.Get("/samples/{id}", s.handleGetSample)
	r.Post("/samples/{id}/copy", s.handleCopySample)
	r.Post("/daily/new", s.handleDailyNew)
}

func (s *Server) mountPlays(r chi.Router) {
	r.Route("/plays", func(r chi.Router) {
		r.Post("/", s.handleNewPlay)
		r.Get("/{id}", s.handleGetPlay)
		r.Post("/{id}/hint", s.handleHint)
		r.Post("/{id}/guess", s.limited(s.handleGuess))
		r.Post("/{id}/restart", s.handleRestart)
	})
}

// ------------------------------ samples ------------------------------------

func (s *Server) handleListSamples(w http.ResponseWriter, r *http.Request) {
	if s.catalog == nil {
		writeJSON(w, http.StatusOK, []boardSummary{})
		return
	}
	writeJSON(w, http.StatusOK, lo.Map(s.catalog.All(), func(b board.Board, _ int) boardSummary { return summarize(b) }))
}

func (s *Server) handleGetSample(w http.ResponseWriter, r *http.Request) {
	b, err := s.sample(chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// handleCopySample loads a sample into the editor as a new draft.
func (s *Server) handleCopySample(w http.ResponseWriter, r *http.Request) {
	b, err := s.sample(chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	b.ID = board.NewID()
	if err := s.boards.Save(r.Context(), b); err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (s *Server) sample(id string) (board.Board, error) {
	if s.catalog == nil {
		return board.Board{}, errNoCatalog
	}
	return s.catalog.Get(id)
}

// ------------------------------- plays -------------------------------------

type wordView struct {
	ID          string           `json:"id"`
	Number      int              `json:"number"`
	Length      int              `json:"length"`
	Orientation grid.Orientation `json:"orientation"`
	Start       grid.Cell        `json:"start"`
	Cells       []grid.Cell      `json:"cells"`
	Hints       []string         `json:"hints"`
	TotalHints  int              `json:"totalHints"`
	Guess       string           `json:"guess"`
	Completed   bool             `json:"completed"`
}

type playView struct {
	ID             string         `json:"id"`
	BoardID        string         `json:"boardId"`
	Title          string         `json:"title"`
	Rows           int            `json:"rows"`
	Columns        int            `json:"columns"`
	DisabledCells  []string       `json:"disabledCells"`
	Words          []wordView     `json:"words"`
	Letters        grid.LetterMap `json:"letters"`
	State          string         `json:"state"`
	Solved         int            `json:"solved"`
	ElapsedSeconds int            `json:"elapsedSeconds"`
	Summary        *game.Score    `json:"summary,omitempty"`
}

func viewPlay(p *game.Play, now time.Time) playView {
	return playView{
		ID:            p.ID,
		BoardID:       p.BoardID,
		Title:         p.Title,
		Rows:          p.Rows,
		Columns:       p.Columns,
		DisabledCells: p.Disabled,
		Words: lo.Map(p.Words, func(w game.Progress, _ int) wordView {
			return wordView{
				ID:          w.ID,
				Number:      w.Number,
				Length:      w.Length,
				Orientation: w.Orientation,
				Start:       w.Start,
				Cells:       w.Cells,
				Hints:       w.VisibleHints(),
				TotalHints:  w.TotalHints,
				Guess:       w.Guess,
				Completed:   w.Completed,
			}
		}),
		Letters:        p.Revealed(),
		State:          p.State(),
		Solved:         p.Solved(),
		ElapsedSeconds: int(p.Elapsed(now).Seconds()),
		Summary:        p.Summary,
	}
}

type newPlayReq struct {
	BoardID  string `json:"boardId"`
	SampleID string `json:"sampleId"`
}

func (s *Server) resolveBoard(ctx context.Context, req newPlayReq) (board.Board, error) {
	if req.SampleID != "" {
		return s.sample(req.SampleID)
	}
	return s.boards.Get(ctx, req.BoardID)
}

func (s *Server) startPlay(ctx context.Context, b board.Board) (*game.Play, error) {
	p, err := game.New(b, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.plays.Save(ctx, p); err != nil {
		return nil, err
	}
	log.Info().Str("play", p.ID).Str("board", b.ID).Int("words", len(p.Words)).Msg("play started")
	return p, nil
}

func (s *Server) handleNewPlay(w http.ResponseWriter, r *http.Request) {
	var req newPlayReq
	if err := decode(w, r, &req); err != nil {
		jsonError(w, "bad_json", http.StatusBadRequest)
		return
	}
	if req.BoardID == "" && req.SampleID == "" {
		jsonError(w, "boardId or sampleId is required", http.StatusBadRequest)
		return
	}
	b, err := s.resolveBoard(r.Context(), req)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	p, err := s.startPlay(r.Context(), b)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewPlay(p, s.now()))
}

func (s *Server) handleGetPlay(w http.ResponseWriter, r *http.Request) {
	p, err := s.plays.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewPlay(p, s.now()))
}

type wordReq struct {
	WordID string `json:"wordId"`
	Guess  string `json:"guess"`
}

func (s *Server) handleHint(w http.ResponseWriter, r *http.Request) {
	var req wordReq
	if err := decode(w, r, &req); err != nil {
		jsonError(w, "bad_json", http.StatusBadRequest)
		return
	}
	p, err := s.plays.Update(r.Context(), chi.URLParam(r, "id"), func(p *game.Play) error {
		_, err := p.RevealHint(req.WordID)
		return err
	})
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewPlay(p, s.now()))
}

type guessRes struct {
	playView
	Correct bool             `json:"correct"`
	Record  *sessions.Record `json:"record,omitempty"`
	Warning string           `json:"warning,omitempty"`
}

const warnRecordNotSaved = "Your result could not be saved. Send the record to POST /sessions to retry."

func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req wordReq
	if err := decode(w, r, &req); err != nil {
		jsonError(w, "bad_json", http.StatusBadRequest)
		return
	}
	var (
		correct bool
		record  *sessions.Record
	)
	now := s.now()
	p, err := s.plays.Update(r.Context(), chi.URLParam(r, "id"), func(p *game.Play) error {
		word, done, err := p.SubmitGuess(req.WordID, req.Guess)
		if err != nil {
			return err
		}
		correct = word.Completed
		if !done {
			return nil
		}
		rec, err := p.Finish(now)
		if err != nil {
			return err
		}
		record = &rec
		return nil
	})
	if err != nil {
		writeErr(w, r, err)
		return
	}

	res := guessRes{playView: viewPlay(p, now), Correct: correct, Record: record}
	if record != nil {
		log.Info().Str("play", p.ID).Int("score", record.FinalScore).Msg("play completed")
		if err := s.sessions.Append(r.Context(), *record); err != nil {
			log.Warn().Err(err).Str("play", p.ID).Str("record", record.ID).Msg("append session record")
			res.Warning = warnRecordNotSaved
		}
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	p, err := s.plays.Update(r.Context(), chi.URLParam(r, "id"), func(p *game.Play) error {
		p.Restart(s.now())
		return nil
	})
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewPlay(p, s.now()))
}

// ------------------------------- daily -------------------------------------

type dailyRes struct {
	Date     string   `json:"date"`
	SampleID string   `json:"sampleId"`
	Play     playView `json:"play"`
}

// handleDailyNew starts a play of the sample picked for today's UTC date.
func (s *Server) handleDailyNew(w http.ResponseWriter, r *http.Request) {
	if s.catalog == nil {
		jsonError(w, errNoCatalog.Error(), http.StatusServiceUnavailable)
		return
	}
	now := s.now()
	b, ok := daily.Pick(s.catalog.All(), now, s.salt)
	if !ok {
		jsonError(w, errNoCatalog.Error(), http.StatusServiceUnavailable)
		return
	}
	p, err := s.startPlay(r.Context(), b)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, dailyRes{Date: daily.DateKey(now), SampleID: b.ID, Play: viewPlay(p, now)})
}
