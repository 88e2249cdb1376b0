// internal/game/engine.go
//
// Play engine for a single board.
// Responsibilities:
//   - Create plays from a validated board.
//   - Reveal hints (bounded by each word's hint count).
//   - Apply guesses: completed on a normalized match, back to unsolved otherwise.
//   - Score the completed puzzle exactly once and emit its session record.
//
// Notes:
//   - The clock is sampled by callers and passed in as time.Time values, so the
//     engine itself never reads the wall clock.
//   - Plays are not safe for concurrent use; the store serializes access.
package game

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/robalobadob/wordgrid/internal/board"
	"github.com/robalobadob/wordgrid/internal/grid"
	"github.com/robalobadob/wordgrid/internal/sessions"
)

var (
	ErrWordNotFound    = errors.New("word not found")
	ErrAlreadyFinished = errors.New("play already finished")
	ErrIncomplete      = errors.New("not every word is completed")
	ErrEmptyBoard      = errors.New("board has no words")
)

// New constructs a play for b, starting the clock at now.
func New(b board.Board, now time.Time) (*Play, error) {
	if len(b.Words) == 0 {
		return nil, ErrEmptyBoard
	}
	return &Play{
		ID:        uuid.NewString(),
		BoardID:   b.ID,
		Title:     b.Title,
		Rows:      b.Rows,
		Columns:   b.Columns,
		Disabled:  b.DisabledKeys(),
		Words:     initialise(b.SortedWords()),
		StartedAt: now,
	}, nil
}

func initialise(words []board.Word) []Progress {
	return lo.Map(words, func(w board.Word, _ int) Progress {
		return Progress{
			ID:          w.ID,
			Number:      w.Number,
			Answer:      w.Answer,
			Length:      len(w.Answer),
			Hints:       append([]string(nil), w.Hints...),
			TotalHints:  len(w.Hints),
			Orientation: w.Orientation,
			Start:       w.Start,
			Cells:       append([]grid.Cell(nil), w.Cells...),
		}
	})
}

func (p *Play) word(id string) (*Progress, error) {
	for i := range p.Words {
		if p.Words[i].ID == id {
			return &p.Words[i], nil
		}
	}
	return nil, ErrWordNotFound
}

// RevealHint shows the next hint for a word. Revealing past the last hint is
// a no-op. Reveals are always allowed, even on completed words.
func (p *Play) RevealHint(wordID string) (Progress, error) {
	w, err := p.word(wordID)
	if err != nil {
		return Progress{}, err
	}
	if w.RevealedHints < len(w.Hints) {
		w.RevealedHints++
	}
	return *w, nil
}

// NormalizeGuess strips whitespace and upper-cases, matching stored answers.
func NormalizeGuess(raw string) string { return board.NormalizeAnswer(raw) }

// SubmitGuess applies a guess. A match completes the word; a miss reverts it
// to unsolved, even if it was completed before. done reports whether every
// word is now completed; callers then call Finish.
func (p *Play) SubmitGuess(wordID, guess string) (w Progress, done bool, err error) {
	if p.Finished {
		return Progress{}, false, ErrAlreadyFinished
	}
	pw, err := p.word(wordID)
	if err != nil {
		return Progress{}, false, err
	}
	candidate := NormalizeGuess(guess)
	pw.Completed = candidate == pw.Answer
	pw.Guess = candidate
	return *pw, pw.Completed && p.allCompleted(), nil
}

// Finish scores the play at now and returns the session record for it. It
// succeeds once per play-through: a second call returns ErrAlreadyFinished
// until Restart.
func (p *Play) Finish(now time.Time) (sessions.Record, error) {
	if p.Finished {
		return sessions.Record{}, ErrAlreadyFinished
	}
	if !p.allCompleted() {
		return sessions.Record{}, ErrIncomplete
	}
	score := ComputeScore(p.Words, now.Sub(p.StartedAt).Seconds())
	p.Summary = &score
	p.Finished = true
	return sessions.NewRecord(p.BoardID, p.Title, score.FinalScore, score.CorrectWords,
		score.TotalHintsUsed, score.CompletionTimeSeconds, now), nil
}

func (p *Play) allCompleted() bool {
	return lo.EveryBy(p.Words, func(w Progress) bool { return w.Completed })
}

// Restart resets every word and the clock.
func (p *Play) Restart(now time.Time) {
	for i := range p.Words {
		w := &p.Words[i]
		w.RevealedHints = 0
		w.Guess = ""
		w.Completed = false
	}
	p.StartedAt = now
	p.Finished = false
	p.Summary = nil
}

// State is "playing" or "finished".
func (p *Play) State() string {
	if p.Finished {
		return "finished"
	}
	return "playing"
}

// Solved returns the number of completed words.
func (p *Play) Solved() int {
	return lo.CountBy(p.Words, func(w Progress) bool { return w.Completed })
}

// Revealed is the letter map of completed words only, for rendering.
func (p *Play) Revealed() grid.LetterMap {
	return grid.BuildLetterMap(lo.Filter(p.Words, func(w Progress, _ int) bool { return w.Completed }))
}

// Elapsed returns the time since the play started, frozen once finished.
func (p *Play) Elapsed(now time.Time) time.Duration {
	if p.Finished && p.Summary != nil {
		return time.Duration(p.Summary.CompletionTimeSeconds) * time.Second
	}
	return now.Sub(p.StartedAt)
}
