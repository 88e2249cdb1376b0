// internal/game/types.go
//
// Core type definitions for the play engine.
// Defines:
//   - Progress: a player's state on one word (revealed hints, last guess, completed).
//   - Play: one play-through of a board.
//   - Score: the summary computed when every word is completed.

package game

import (
	"time"

	"github.com/robalobadob/wordgrid/internal/grid"
)

// Progress is the per-word state machine: unsolved ⇄ completed.
type Progress struct {
	ID            string           `json:"id"`
	Number        int              `json:"number"`
	Answer        string           `json:"-"`
	Length        int              `json:"length"`
	Hints         []string         `json:"-"`
	TotalHints    int              `json:"totalHints"`
	RevealedHints int              `json:"revealedHints"`
	Orientation   grid.Orientation `json:"orientation"`
	Start         grid.Cell        `json:"start"`
	Cells         []grid.Cell      `json:"cells"`
	Guess         string           `json:"guess"`
	Completed     bool             `json:"completed"`
}

func (p Progress) Letters() string       { return p.Answer }
func (p Progress) Occupied() []grid.Cell { return p.Cells }

// VisibleHints returns the hints revealed so far.
func (p Progress) VisibleHints() []string { return p.Hints[:p.RevealedHints] }

// Score is the end-of-play summary.
type Score struct {
	CorrectWords          int `json:"correctWords"`
	TotalHintsUsed        int `json:"totalHintsUsed"`
	CompletionTimeSeconds int `json:"completionTimeSeconds"`
	FinalScore            int `json:"finalScore"`
}

// Play holds the state of a single play-through.
type Play struct {
	ID        string     // Unique play identifier.
	BoardID   string     // Board (or sample) being played.
	Title     string     // Board title, copied for session records.
	Rows      int        // Grid dimensions.
	Columns   int        //
	Disabled  []string   // Disabled cell keys, sorted.
	Words     []Progress // Per-word progress in clue-number order.
	StartedAt time.Time  // Clock start; reset on Restart.
	Finished  bool       // True once every word was completed and scored.
	Summary   *Score     // Set exactly once, when Finished flips.
}

// Clone returns a deep copy of p.
func (p *Play) Clone() *Play {
	out := *p
	out.Disabled = append([]string(nil), p.Disabled...)
	out.Words = make([]Progress, len(p.Words))
	for i, w := range p.Words {
		w.Hints = append([]string(nil), w.Hints...)
		w.Cells = append([]grid.Cell(nil), w.Cells...)
		out.Words[i] = w
	}
	if p.Summary != nil {
		s := *p.Summary
		out.Summary = &s
	}
	return &out
}
