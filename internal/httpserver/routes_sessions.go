package httpserver

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/robalobadob/wordgrid/internal/sessions"
)

func (s *Server) mountSessions(r chi.Router) {
	r.Get("/sessions", s.handleListSessions)
	r.Post("/sessions", s.handleAppendSession)
	r.Get("/sessions/summary", s.handleSessionSummary)
	r.Delete("/sessions", s.handleClearSessions)
}

// handleListSessions returns the newest records first; ?limit=N caps the list.
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			jsonError(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		limit = n
	}
	list, err := s.sessions.List(r.Context(), limit)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleSessionSummary(w http.ResponseWriter, r *http.Request) {
	list, err := s.sessions.List(r.Context(), 0)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessions.Summarize(list))
}

func (s *Server) handleClearSessions(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Clear(r.Context()); err != nil {
		writeErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleAppendSession stores a record returned by a finishing guess whose
// append failed. Records are keyed by id, so retrying is safe.
func (s *Server) handleAppendSession(w http.ResponseWriter, r *http.Request) {
	var rec sessions.Record
	if err := decode(w, r, &rec); err != nil {
		jsonError(w, "bad_json", http.StatusBadRequest)
		return
	}
	if err := rec.Validate(); err != nil {
		writeErr(w, r, err)
		return
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.PlayedAt.IsZero() {
		rec.PlayedAt = s.now()
	}
	rec.PlayedAt = rec.PlayedAt.UTC()
	if err := s.sessions.Append(r.Context(), rec); err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}
