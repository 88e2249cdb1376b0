// internal/store/memory.go
//
// In-memory implementations of the board and play stores.
//
// Characteristics:
//   - Boards and plays are kept in maps keyed by ID.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Values are copied on the way in and out, so callers never share state
//     with the store.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/robalobadob/wordgrid/internal/board"
	"github.com/robalobadob/wordgrid/internal/game"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrTitleRequired = errors.New("Add a name before saving.")
	// ErrUnavailable marks a transient storage failure. The caller's draft is
	// unchanged and the operation can be retried.
	ErrUnavailable = errors.New("storage unavailable")
)

// Store persists board drafts.
type Store interface {
	// Save inserts or replaces b. The title must be non-empty after trimming.
	Save(ctx context.Context, b board.Board) error

	// Get retrieves a board by ID, or ErrNotFound.
	Get(ctx context.Context, id string) (board.Board, error)

	// List returns every board, newest first.
	List(ctx context.Context) ([]board.Board, error)

	// Delete removes a board, or returns ErrNotFound.
	Delete(ctx context.Context, id string) error
}

func checkTitle(b board.Board) error {
	if strings.TrimSpace(b.Title) == "" {
		return ErrTitleRequired
	}
	return nil
}

type memoryEntry struct {
	board board.Board
	seq   int
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu     sync.RWMutex
	boards map[string]memoryEntry
	seq    int
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{boards: make(map[string]memoryEntry)}
}

func (m *memory) Save(_ context.Context, b board.Board) error {
	if err := checkTitle(b); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.boards[b.ID]
	if !ok {
		m.seq++
		e.seq = m.seq
	}
	e.board = b.Clone()
	m.boards[b.ID] = e
	return nil
}

func (m *memory) Get(_ context.Context, id string) (board.Board, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.boards[id]; ok {
		return e.board.Clone(), nil
	}
	return board.Board{}, fmt.Errorf("board %s: %w", id, ErrNotFound)
}

func (m *memory) List(_ context.Context) ([]board.Board, error) {
	m.mu.RLock()
	entries := make([]memoryEntry, 0, len(m.boards))
	for _, e := range m.boards {
		entries = append(entries, e)
	}
	m.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool { return entries[i].seq > entries[j].seq })
	out := make([]board.Board, len(entries))
	for i, e := range entries {
		out[i] = e.board.Clone()
	}
	return out, nil
}

func (m *memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.boards[id]; !ok {
		return fmt.Errorf("board %s: %w", id, ErrNotFound)
	}
	delete(m.boards, id)
	return nil
}

// PlayStore keeps in-progress plays. Update runs fn under the store's lock,
// which serializes every mutation of a play.
type PlayStore struct {
	mu    sync.Mutex
	plays map[string]*game.Play
}

func NewPlayStore() *PlayStore {
	return &PlayStore{plays: make(map[string]*game.Play)}
}

// Save adds or replaces p.
func (s *PlayStore) Save(_ context.Context, p *game.Play) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plays[p.ID] = p.Clone()
	return nil
}

// Get returns a snapshot of the play.
func (s *PlayStore) Get(_ context.Context, id string) (*game.Play, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.plays[id]
	if !ok {
		return nil, fmt.Errorf("play %s: %w", id, ErrNotFound)
	}
	return p.Clone(), nil
}

// Update applies fn to the stored play and returns a snapshot taken after fn,
// whether or not fn failed.
func (s *PlayStore) Update(_ context.Context, id string, fn func(p *game.Play) error) (*game.Play, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.plays[id]
	if !ok {
		return nil, fmt.Errorf("play %s: %w", id, ErrNotFound)
	}
	err := fn(p)
	return p.Clone(), err
}
