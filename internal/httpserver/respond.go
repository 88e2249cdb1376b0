package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordgrid/internal/board"
	"github.com/robalobadob/wordgrid/internal/catalog"
	"github.com/robalobadob/wordgrid/internal/game"
	"github.com/robalobadob/wordgrid/internal/grid"
	"github.com/robalobadob/wordgrid/internal/live"
	"github.com/robalobadob/wordgrid/internal/sessions"
	"github.com/robalobadob/wordgrid/internal/store"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response")
	}
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// decode reads a JSON body into v. An empty body leaves v untouched.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(v)
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func reqID(r *http.Request) string { return chimw.GetReqID(r.Context()) }

type issuesBody struct {
	Error  string       `json:"error"`
	Issues []grid.Issue `json:"issues"`
}

// writeErr maps domain errors to status codes. Unknown errors are logged and
// reported as 500 without detail.
func writeErr(w http.ResponseWriter, r *http.Request, err error) {
	var (
		inputErr     *board.InputError
		placementErr *board.PlacementError
		importErr    *board.ImportError
	)
	switch {
	case errors.As(err, &placementErr):
		writeJSON(w, http.StatusUnprocessableEntity, issuesBody{Error: placementErr.Error(), Issues: placementErr.Issues})
	case errors.As(err, &inputErr):
		jsonError(w, inputErr.Error(), http.StatusBadRequest)
	case errors.As(err, &importErr), errors.Is(err, board.ErrCellsDrift):
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, store.ErrNotFound), errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, live.ErrNotFound), errors.Is(err, board.ErrWordNotFound),
		errors.Is(err, game.ErrWordNotFound), errors.Is(err, live.ErrPlayerNotFound):
		jsonError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, board.ErrCellOccupied), errors.Is(err, board.ErrCellOutside),
		errors.Is(err, board.ErrUnknownEdit), errors.Is(err, store.ErrTitleRequired),
		errors.Is(err, game.ErrEmptyBoard), errors.Is(err, live.ErrInvalidName),
		errors.Is(err, live.ErrInvalidScore), errors.Is(err, grid.ErrUnknownOrientation),
		errors.Is(err, sessions.ErrInvalidRecord):
		jsonError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, game.ErrAlreadyFinished), errors.Is(err, game.ErrIncomplete),
		errors.Is(err, live.ErrInvalidTransition), errors.Is(err, live.ErrNameTaken):
		jsonError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, live.ErrUnauthorized):
		jsonError(w, "Unauthorized", http.StatusUnauthorized)
	case errors.Is(err, store.ErrUnavailable), errors.Is(err, sessions.ErrUnavailable):
		jsonError(w, "Storage is unavailable, try again.", http.StatusServiceUnavailable)
	case errors.Is(err, errNoCatalog):
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Str("reqId", reqID(r)).Msg("unhandled error")
		jsonError(w, "internal_error", http.StatusInternalServerError)
	}
}

// bearer extracts the token from "Authorization: Bearer <token>".
func bearer(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	return ""
}

// rateLimiter is a simple per-IP token bucket rate limiter.
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*bucket
	rate     int           // tokens per interval
	interval time.Duration // refill interval
	swept    time.Time
}

type bucket struct {
	tokens   int
	lastSeen time.Time
}

func newRateLimiter(rate int, interval time.Duration) *rateLimiter {
	return &rateLimiter{visitors: make(map[string]*bucket), rate: rate, interval: interval, swept: time.Now()}
}

func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if now.Sub(rl.swept) > time.Minute {
		for k, b := range rl.visitors {
			if now.Sub(b.lastSeen) > 5*time.Minute {
				delete(rl.visitors, k)
			}
		}
		rl.swept = now
	}

	b, ok := rl.visitors[ip]
	if !ok {
		rl.visitors[ip] = &bucket{tokens: rl.rate - 1, lastSeen: now}
		return true
	}
	if refill := int(now.Sub(b.lastSeen) / rl.interval); refill > 0 {
		b.tokens = min(rl.rate, b.tokens+refill*rl.rate)
		b.lastSeen = now
	}
	if b.tokens <= 0 {
		return false
	}
	b.tokens--
	return true
}

// limited wraps h with the per-IP action limiter.
func (s *Server) limited(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.actionRL.allow(r.RemoteAddr) {
			jsonError(w, "Too many requests, try again shortly.", http.StatusTooManyRequests)
			return
		}
		h(w, r)
	}
}
