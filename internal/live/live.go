// internal/live/live.go
//
// Live multiplayer sessions.
// Responsibilities:
//   - Registry of sessions keyed by a short join code.
//   - Server-authoritative lifecycle: lobby → active → finished.
//   - Host-only operations gated by a signed host token.
//   - Player scores and the leaderboard.
//   - Publishing session_state / session_closed events to SSE subscribers.
//
// The registry is the single source of truth: clients only send intents and
// render what the events tell them.

package live

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/crypto/bcrypt"
	"lukechampine.com/frand"
)

type Status string

const (
	StatusLobby    Status = "lobby"
	StatusActive   Status = "active"
	StatusFinished Status = "finished"
)

const (
	codeLength    = 6
	codeAlphabet  = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	MaxNameLength = 20
)

var (
	ErrNotFound          = errors.New("session not found")
	ErrInvalidTransition = errors.New("invalid session transition")
	ErrInvalidName       = fmt.Errorf("player name must be 1-%d characters", MaxNameLength)
	ErrNameTaken         = errors.New("player name already taken")
	ErrPlayerNotFound    = errors.New("player not found")
	ErrInvalidScore      = errors.New("score values must not be negative")
)

// Player is one participant in a session.
type Player struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Score       int       `json:"score"`
	HintsUsed   int       `json:"hintsUsed"`
	TotalTimeMs int64     `json:"totalTimeMs"`
	Reported    bool      `json:"reported"`
	JoinedAt    time.Time `json:"joinedAt"`
}

// Session is a snapshot of a live session. It never carries the host token.
type Session struct {
	Code          string     `json:"code"`
	GameID        string     `json:"gameId"`
	HostName      string     `json:"hostName"`
	Status        Status     `json:"status"`
	Players       []Player   `json:"players"`
	CurrentWordID string     `json:"currentWordId,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	StartedAt     *time.Time `json:"startedAt,omitempty"`
	FinishedAt    *time.Time `json:"finishedAt,omitempty"`
}

func (s *Session) clone() Session {
	out := *s
	out.Players = append([]Player{}, s.Players...)
	return out
}

type entry struct {
	session   Session
	tokenHash []byte
	expires   time.Time
}

// Config tunes a Registry. Zero values fall back to defaults.
type Config struct {
	Secret   []byte
	TokenTTL time.Duration
	HashCost int
	Now      func() time.Time
}

// Registry holds every live session in memory.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*entry
	bus      *Broadcaster
	secret   []byte
	ttl      time.Duration
	cost     int
	now      func() time.Time
}

func NewRegistry(cfg Config, bus *Broadcaster) *Registry {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 12 * time.Hour
	}
	if cfg.HashCost == 0 {
		cfg.HashCost = bcrypt.DefaultCost
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if len(cfg.Secret) == 0 {
		log.Warn().Msg("live: no secret configured, using a random one; host tokens will not survive a restart")
		cfg.Secret = frand.Bytes(32)
	}
	if bus == nil {
		bus = NewBroadcaster()
	}
	return &Registry{
		sessions: make(map[string]*entry),
		bus:      bus,
		secret:   cfg.Secret,
		ttl:      cfg.TokenTTL,
		cost:     cfg.HashCost,
		now:      cfg.Now,
	}
}

// Broadcaster returns the event fan-out used by the registry.
func (r *Registry) Broadcaster() *Broadcaster { return r.bus }

func newCode() string {
	b := make([]byte, codeLength)
	for i := range b {
		b[i] = codeAlphabet[frand.Intn(len(codeAlphabet))]
	}
	return string(b)
}

// NormalizeCode upper-cases and trims a user-entered join code.
func NormalizeCode(code string) string { return strings.ToUpper(strings.TrimSpace(code)) }

// Create opens a session in the lobby and returns it with the host token.
// The token is not retrievable later.
func (r *Registry) Create(gameID, hostName string) (Session, string, error) {
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweepLocked(now)

	code := newCode()
	for r.sessions[code] != nil {
		code = newCode()
	}
	token, nonce, err := signHostToken(r.secret, code, gameID, now, r.ttl)
	if err != nil {
		return Session{}, "", fmt.Errorf("sign host token: %w", err)
	}
	hash, err := hashNonce(nonce, r.cost)
	if err != nil {
		return Session{}, "", fmt.Errorf("hash host token: %w", err)
	}
	e := &entry{
		session: Session{
			Code:      code,
			GameID:    gameID,
			HostName:  strings.TrimSpace(hostName),
			Status:    StatusLobby,
			Players:   []Player{},
			CreatedAt: now.UTC(),
		},
		tokenHash: hash,
		expires:   now.Add(r.ttl),
	}
	r.sessions[code] = e
	log.Info().Str("code", code).Str("game", gameID).Msg("live session created")
	return e.session.clone(), token, nil
}

// sweepLocked drops sessions whose host token has expired.
func (r *Registry) sweepLocked(now time.Time) {
	for code, e := range r.sessions {
		if now.After(e.expires) {
			r.expireLocked(code)
		}
	}
}

func (r *Registry) expireLocked(code string) {
	delete(r.sessions, code)
	r.bus.Broadcast(code, closedEvent(code))
	r.bus.CloseAll(code)
	log.Info().Str("code", code).Msg("live session expired")
}

// lookup finds a session; an expired one is dropped and reported as missing.
func (r *Registry) lookup(code string) (*entry, error) {
	key := NormalizeCode(code)
	e, ok := r.sessions[key]
	if ok && r.now().After(e.expires) {
		r.expireLocked(key)
		ok = false
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", code, ErrNotFound)
	}
	return e, nil
}

// Get returns a snapshot of the session.
func (r *Registry) Get(code string) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, err := r.lookup(code)
	if err != nil {
		return Session{}, err
	}
	return e.session.clone(), nil
}

// Authorize checks token against the session's host token.
func (r *Registry) Authorize(code, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, err := r.lookup(code)
	if err != nil {
		return err
	}
	return verifyHostToken(r.secret, token, e.session.Code, e.tokenHash, r.now())
}

// mutate runs fn on the session and publishes the new state when fn succeeds.
func (r *Registry) mutate(code string, fn func(s *Session) error) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, err := r.lookup(code)
	if err != nil {
		return Session{}, err
	}
	if err := fn(&e.session); err != nil {
		return e.session.clone(), err
	}
	snap := e.session.clone()
	r.bus.Broadcast(snap.Code, stateEvent(snap))
	return snap, nil
}

func (r *Registry) hostMutate(code, token string, fn func(s *Session) error) (Session, error) {
	return r.mutate(code, func(s *Session) error {
		e := r.sessions[s.Code]
		if err := verifyHostToken(r.secret, token, s.Code, e.tokenHash, r.now()); err != nil {
			return err
		}
		return fn(s)
	})
}

func transition(s *Session, from, to Status) error {
	if s.Status != from {
		return fmt.Errorf("%w: %s → %s", ErrInvalidTransition, s.Status, to)
	}
	s.Status = to
	return nil
}

// Join adds a player while the session is in the lobby.
func (r *Registry) Join(code, name string) (Player, Session, error) {
	name = strings.TrimSpace(name)
	var p Player
	snap, err := r.mutate(code, func(s *Session) error {
		if s.Status != StatusLobby {
			return fmt.Errorf("%w: join while %s", ErrInvalidTransition, s.Status)
		}
		if n := utf8.RuneCountInString(name); n == 0 || n > MaxNameLength {
			return ErrInvalidName
		}
		if lo.ContainsBy(s.Players, func(o Player) bool { return strings.EqualFold(o.Name, name) }) {
			return ErrNameTaken
		}
		p = Player{ID: uuid.NewString(), Name: name, JoinedAt: r.now().UTC()}
		s.Players = append(s.Players, p)
		return nil
	})
	return p, snap, err
}

// Start moves the session from lobby to active.
func (r *Registry) Start(code, token string) (Session, error) {
	return r.hostMutate(code, token, func(s *Session) error {
		if err := transition(s, StatusLobby, StatusActive); err != nil {
			return err
		}
		at := r.now().UTC()
		s.StartedAt = &at
		return nil
	})
}

// Finish moves the session from active to finished.
func (r *Registry) Finish(code, token string) (Session, error) {
	return r.hostMutate(code, token, func(s *Session) error {
		if err := transition(s, StatusActive, StatusFinished); err != nil {
			return err
		}
		at := r.now().UTC()
		s.FinishedAt = &at
		return nil
	})
}

// Focus sets the word the host is presenting. Only while active.
func (r *Registry) Focus(code, token, wordID string) (Session, error) {
	return r.hostMutate(code, token, func(s *Session) error {
		if s.Status != StatusActive {
			return fmt.Errorf("%w: focus while %s", ErrInvalidTransition, s.Status)
		}
		s.CurrentWordID = wordID
		return nil
	})
}

// ReportScore records a player's result. Only while active; a later report
// replaces an earlier one.
func (r *Registry) ReportScore(code, playerID string, score, hintsUsed int, totalTimeMs int64) (Session, error) {
	return r.mutate(code, func(s *Session) error {
		if s.Status != StatusActive {
			return fmt.Errorf("%w: score while %s", ErrInvalidTransition, s.Status)
		}
		if score < 0 || hintsUsed < 0 || totalTimeMs < 0 {
			return ErrInvalidScore
		}
		for i := range s.Players {
			if s.Players[i].ID == playerID {
				p := &s.Players[i]
				p.Score, p.HintsUsed, p.TotalTimeMs, p.Reported = score, hintsUsed, totalTimeMs, true
				return nil
			}
		}
		return ErrPlayerNotFound
	})
}

// Close removes the session and ends every event stream for it.
func (r *Registry) Close(code, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, err := r.lookup(code)
	if err != nil {
		return err
	}
	if err := verifyHostToken(r.secret, token, e.session.Code, e.tokenHash, r.now()); err != nil {
		return err
	}
	delete(r.sessions, e.session.Code)
	r.bus.Broadcast(e.session.Code, closedEvent(e.session.Code))
	r.bus.CloseAll(e.session.Code)
	log.Info().Str("code", e.session.Code).Msg("live session closed")
	return nil
}

// Leaderboard orders players by score (desc), hints used (asc), then join time.
func Leaderboard(players []Player) []Player {
	out := append([]Player{}, players...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.HintsUsed != b.HintsUsed {
			return a.HintsUsed < b.HintsUsed
		}
		return a.JoinedAt.Before(b.JoinedAt)
	})
	return out
}

// Leaderboard returns the session's ranked players.
func (r *Registry) Leaderboard(code string) ([]Player, error) {
	s, err := r.Get(code)
	if err != nil {
		return nil, err
	}
	return Leaderboard(s.Players), nil
}

// Event is the SSE payload.
type Event struct {
	Type    string   `json:"type"`
	Code    string   `json:"code"`
	Session *Session `json:"session,omitempty"`
	Ranking []Player `json:"leaderboard,omitempty"`
}

func stateEvent(s Session) string {
	return encodeEvent(Event{Type: "session_state", Code: s.Code, Session: &s, Ranking: Leaderboard(s.Players)})
}

func closedEvent(code string) string {
	return encodeEvent(Event{Type: "session_closed", Code: code})
}

// StateEvent encodes the current state of code, for new subscribers.
func (r *Registry) StateEvent(code string) (string, error) {
	s, err := r.Get(code)
	if err != nil {
		return "", err
	}
	return stateEvent(s), nil
}

func encodeEvent(ev Event) string {
	raw, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("type", ev.Type).Msg("encode live event")
		return ""
	}
	return string(raw)
}
