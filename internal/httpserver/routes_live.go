// internal/httpserver/routes_live.go
//
// Live multiplayer routes:
//   - POST   /live                 host creates a session for {gameId, hostName}
//   - GET    /live/{code}          session snapshot + leaderboard
//   - POST   /live/{code}/join     player joins with {name} (lobby only)
//   - POST   /live/{code}/start    host only
//   - POST   /live/{code}/focus    host only; {wordId}
//   - POST   /live/{code}/finish   host only
//   - POST   /live/{code}/score    player reports {playerId, score, hintsUsed, totalTimeMs}
//   - DELETE /live/{code}          host only; closes the session
//   - GET    /live/{code}/events   SSE stream of session_state / session_closed
//
// Host routes take the token returned by POST /live as "Authorization: Bearer".

package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/wordgrid/internal/live"
)

func (s *Server) mountLive(r chi.Router) {
	r.Post("/live", s.handleCreateLive)
	r.Get("/live/{code}", s.handleGetLive)
	r.Delete("/live/{code}", s.handleCloseLive)
	r.Post("/live/{code}/join", s.limited(s.handleJoinLive))
	r.Post("/live/{code}/start", s.handleStartLive)
	r.Post("/live/{code}/focus", s.handleFocusLive)
	r.Post("/live/{code}/finish", s.handleFinishLive)
	r.Post("/live/{code}/score", s.limited(s.handleScoreLive))
}

type createLiveReq struct {
	GameID   string `json:"gameId"`
	HostName string `json:"hostName"`
}

type createLiveRes struct {
	Code      string       `json:"code"`
	GameID    string       `json:"gameId"`
	HostToken string       `json:"hostToken"`
	Session   live.Session `json:"session"`
}

type liveRes struct {
	Session     live.Session  `json:"session"`
	Leaderboard []live.Player `json:"leaderboard"`
}

func liveView(sess live.Session) liveRes {
	return liveRes{Session: sess, Leaderboard: live.Leaderboard(sess.Players)}
}

// handleCreateLive opens a session for a stored board or a sample.
func (s *Server) handleCreateLive(w http.ResponseWriter, r *http.Request) {
	var req createLiveReq
	if err := decode(w, r, &req); err != nil {
		jsonError(w, "bad_json", http.StatusBadRequest)
		return
	}
	if req.GameID == "" {
		jsonError(w, "gameId is required", http.StatusBadRequest)
		return
	}
	if _, err := s.sample(req.GameID); err != nil {
		if _, err := s.boards.Get(r.Context(), req.GameID); err != nil {
			writeErr(w, r, err)
			return
		}
	}
	sess, token, err := s.live.Create(req.GameID, req.HostName)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, createLiveRes{Code: sess.Code, GameID: sess.GameID, HostToken: token, Session: sess})
}

func (s *Server) handleGetLive(w http.ResponseWriter, r *http.Request) {
	sess, err := s.live.Get(chi.URLParam(r, "code"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, liveView(sess))
}

type joinLiveReq struct {
	Name string `json:"name"`
}

type joinLiveRes struct {
	Player  live.Player  `json:"player"`
	Session live.Session `json:"session"`
}

func (s *Server) handleJoinLive(w http.ResponseWriter, r *http.Request) {
	var req joinLiveReq
	if err := decode(w, r, &req); err != nil {
		jsonError(w, "bad_json", http.StatusBadRequest)
		return
	}
	p, sess, err := s.live.Join(chi.URLParam(r, "code"), req.Name)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, joinLiveRes{Player: p, Session: sess})
}

func (s *Server) handleStartLive(w http.ResponseWriter, r *http.Request) {
	sess, err := s.live.Start(chi.URLParam(r, "code"), bearer(r))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, liveView(sess))
}

type focusLiveReq struct {
	WordID string `json:"wordId"`
}

func (s *Server) handleFocusLive(w http.ResponseWriter, r *http.Request) {
	var req focusLiveReq
	if err := decode(w, r, &req); err != nil {
		jsonError(w, "bad_json", http.StatusBadRequest)
		return
	}
	sess, err := s.live.Focus(chi.URLParam(r, "code"), bearer(r), req.WordID)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, liveView(sess))
}

func (s *Server) handleFinishLive(w http.ResponseWriter, r *http.Request) {
	sess, err := s.live.Finish(chi.URLParam(r, "code"), bearer(r))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, liveView(sess))
}

type scoreLiveReq struct {
	PlayerID    string `json:"playerId"`
	Score       int    `json:"score"`
	HintsUsed   int    `json:"hintsUsed"`
	TotalTimeMs int64  `json:"totalTimeMs"`
}

func (s *Server) handleScoreLive(w http.ResponseWriter, r *http.Request) {
	var req scoreLiveReq
	if err := decode(w, r, &req); err != nil {
		jsonError(w, "bad_json", http.StatusBadRequest)
		return
	}
	sess, err := s.live.ReportScore(chi.URLParam(r, "code"), req.PlayerID, req.Score, req.HintsUsed, req.TotalTimeMs)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, liveView(sess))
}

func (s *Server) handleCloseLive(w http.ResponseWriter, r *http.Request) {
	if err := s.live.Close(chi.URLParam(r, "code"), bearer(r)); err != nil {
		writeErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLiveEvents(w http.ResponseWriter, r *http.Request) {
	code := live.NormalizeCode(chi.URLParam(r, "code"))
	initial, err := s.live.StateEvent(code)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	s.live.Broadcaster().ServeSSE(w, r, code, initial)
}
