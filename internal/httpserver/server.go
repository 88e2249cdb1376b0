// internal/httpserver/server.go
//
// HTTP server wiring for the word grid backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs, access log).
//   - Public endpoints: "/", "/health".
//   - Board editor endpoints: /boards.
//   - Sample catalog and daily puzzle: /samples, /daily.
//   - Play endpoints: /plays.
//   - Session history: /sessions.
//   - Live multiplayer sessions: /live.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled.
//   - Every error body is {"error": "..."}; placement failures add "issues".

package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordgrid/internal/catalog"
	"github.com/robalobadob/wordgrid/internal/live"
	"github.com/robalobadob/wordgrid/internal/sessions"
	"github.com/robalobadob/wordgrid/internal/store"
)

// Options are the server's collaborators. Zero fields get in-memory defaults.
type Options struct {
	Boards       store.Store
	Plays        *store.PlayStore
	Sessions     sessions.Log
	Catalog      *catalog.Catalog
	Live         *live.Registry
	ClientOrigin string
	DailySalt    string
	Now          func() time.Time
}

// Server bundles the router and its stores.
type Server struct {
	r        *chi.Mux
	boards   store.Store
	plays    *store.PlayStore
	sessions sessions.Log
	catalog  *catalog.Catalog
	live     *live.Registry
	salt     string
	now      func() time.Time
	actionRL *rateLimiter
}

// New constructs a Server, installs middleware, and registers routes.
func New(opts Options) *Server {
	if opts.Boards == nil {
		opts.Boards = store.NewMemoryStore()
	}
	if opts.Plays == nil {
		opts.Plays = store.NewPlayStore()
	}
	if opts.Sessions == nil {
		opts.Sessions = sessions.NewRing(sessions.DefaultCapacity)
	}
	if opts.Live == nil {
		opts.Live = live.NewRegistry(live.Config{}, nil)
	}
	if opts.ClientOrigin == "" {
		opts.ClientOrigin = "http://localhost:5173"
	}
	if opts.DailySalt == "" {
		opts.DailySalt = "local_dev_salt"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Server{
		r:        chi.NewRouter(),
		boards:   opts.Boards,
		plays:    opts.Plays,
		sessions: opts.Sessions,
		catalog:  opts.Catalog,
		live:     opts.Live,
		salt:     opts.DailySalt,
		now:      opts.Now,
		actionRL: newRateLimiter(20, time.Second),
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID) // add X-Request-ID
	s.r.Use(chimw.RealIP)    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(accessLog)
	s.r.Use(chimw.Recoverer)
	s.r.Use(jsonContentType)
	s.r.Use(corsFor(opts.ClientOrigin))

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service":   "wordgrid",
			"endpoints": []string{"/health", "/boards", "/samples", "/plays", "/daily/new", "/sessions", "/live"},
		})
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	// Event streams are long-lived; everything else is bounded.
	s.r.Get("/live/{code}/events", s.handleLiveEvents)
	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second))
		s.mountBoards(r)
		s.mountSamples(r)
		s.mountPlays(r)
		s.mountSessions(r)
		s.mountLive(r)
	})

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})
	return s
}

// ServeHTTP makes Server an http.Handler (useful for tests).
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.r.ServeHTTP(w, r) }

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	hs := &http.Server{Addr: addr, Handler: s.r, ReadHeaderTimeout: 5 * time.Second}
	errc := make(chan error, 1)
	go func() { errc <- hs.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := hs.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// corsFor enables credentialed CORS for a single origin.
func corsFor(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// accessLog writes one zerolog line per request.
func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("took", time.Since(start)).
			Str("reqId", reqID(r)).
			Msg("request")
	})
}
