// internal/sessions/sessions.go
//
// Completed-play history.
// Responsibilities:
//   - Record: an immutable summary written once when a play is completed.
//   - Log: append / list newest-first / clear, capped at a fixed capacity.
//   - Ring: the in-memory Log used in tests and when no database is configured.
//   - Summarize: aggregates for the stats dashboard.

package sessions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

var (
	// ErrUnavailable marks a transient log failure; the record can be appended again.
	ErrUnavailable   = errors.New("session log unavailable")
	ErrInvalidRecord = errors.New("invalid session record")
)

// DefaultCapacity is the number of records kept before the oldest are evicted.
const DefaultCapacity = 200

// Record summarises one completed play-through.
type Record struct {
	ID                    string    `json:"id"`
	GameID                string    `json:"gameId"`
	GameTitle             string    `json:"gameTitle"`
	FinalScore            int       `json:"finalScore"`
	CorrectWords          int       `json:"correctWords"`
	TotalHintsUsed        int       `json:"totalHintsUsed"`
	CompletionTimeSeconds int       `json:"completionTimeSeconds"`
	PlayedAt              time.Time `json:"playedAt"`
}

// NewRecord stamps a record with a fresh id.
func NewRecord(gameID, title string, finalScore, correct, hints, seconds int, at time.Time) Record {
	return Record{
		ID:                    uuid.NewString(),
		GameID:                gameID,
		GameTitle:             title,
		FinalScore:            finalScore,
		CorrectWords:          correct,
		TotalHintsUsed:        hints,
		CompletionTimeSeconds: seconds,
		PlayedAt:              at.UTC(),
	}
}

// Validate checks a record submitted from outside the engine.
func (r Record) Validate() error {
	if strings.TrimSpace(r.GameID) == "" {
		return fmt.Errorf("%w: gameId is required", ErrInvalidRecord)
	}
	if r.FinalScore < 0 || r.CorrectWords < 0 || r.TotalHintsUsed < 0 || r.CompletionTimeSeconds < 0 {
		return fmt.Errorf("%w: counts must not be negative", ErrInvalidRecord)
	}
	return nil
}

// Log is the persistence interface for session records.
type Log interface {
	// Append stores r, evicting the oldest records beyond capacity. A record
	// whose ID is already stored is ignored, so a failed append can be retried.
	Append(ctx context.Context, r Record) error
	// List returns up to limit records, newest first. limit <= 0 means all.
	List(ctx context.Context, limit int) ([]Record, error)
	// Clear removes every record.
	Clear(ctx context.Context) error
}

// Ring is a fixed-capacity in-memory Log.
type Ring struct {
	mu       sync.RWMutex
	capacity int
	records  []Record // newest first
}

// NewRing returns an empty ring. capacity <= 0 uses DefaultCapacity.
func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Ring{capacity: capacity}
}

func (r *Ring) Append(_ context.Context, rec Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if lo.ContainsBy(r.records, func(o Record) bool { return o.ID == rec.ID }) {
		return nil
	}
	r.records = append([]Record{rec}, r.records...)
	if len(r.records) > r.capacity {
		r.records = r.records[:r.capacity]
	}
	return nil
}

func (r *Ring) List(_ context.Context, limit int) ([]Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := len(r.records)
	if limit > 0 && limit < n {
		n = limit
	}
	return append([]Record{}, r.records[:n]...), nil
}

func (r *Ring) Clear(_ context.Context) error {
	r.mu.Lock()
	r.records = nil
	r.mu.Unlock()
	return nil
}

// Summary aggregates a set of records.
type Summary struct {
	Plays          int     `json:"plays"`
	BestScore      int     `json:"bestScore"`
	AverageScore   float64 `json:"averageScore"`
	TotalHintsUsed int     `json:"totalHintsUsed"`
	FastestSeconds int     `json:"fastestSeconds"`
}

// Summarize computes dashboard figures. An empty input gives a zero Summary.
func Summarize(records []Record) Summary {
	if len(records) == 0 {
		return Summary{}
	}
	total := lo.SumBy(records, func(r Record) int { return r.FinalScore })
	return Summary{
		Plays:          len(records),
		BestScore:      lo.MaxBy(records, func(a, b Record) bool { return a.FinalScore > b.FinalScore }).FinalScore,
		AverageScore:   float64(total) / float64(len(records)),
		TotalHintsUsed: lo.SumBy(records, func(r Record) int { return r.TotalHintsUsed }),
		FastestSeconds: lo.MinBy(records, func(a, b Record) bool { return a.CompletionTimeSeconds < b.CompletionTimeSeconds }).CompletionTimeSeconds,
	}
}
