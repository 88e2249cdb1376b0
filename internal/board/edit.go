// internal/board/edit.go
//
// The editor as a reducer: ApplyEdit(board, edit) → new board.
//
// Every user action in the builder maps to one Edit value. The reducer
// copies the board, applies the change and returns the copy, so callers may
// call it speculatively (e.g. on each keystroke) without side effects.
//
// SaveWord is the only way a word enters Board.Words and always runs the
// placement evaluator first.
package board

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/robalobadob/wordgrid/internal/grid"
)

var (
	ErrCellOccupied = errors.New("This cell is part of an existing word. Remove or adjust the word before disabling it.")
	ErrCellOutside  = errors.New("cell is outside the grid")
	ErrWordNotFound = errors.New("word not found")
	ErrUnknownEdit  = errors.New("unknown edit")
)

// Edit is one editor action.
type Edit interface {
	apply(b *Board) error
}

// Resize changes the grid dimensions (clamped to [MinDimension, MaxDimension]).
// Disabled cells and words that no longer fit are dropped.
type Resize struct {
	Rows    int `json:"rows"`
	Columns int `json:"columns"`
}

// ToggleDisabled flips a cell between playable and disabled.
type ToggleDisabled struct {
	Cell grid.Cell `json:"cell"`
}

// SaveWord adds a word, or replaces EditingID when set.
type SaveWord struct {
	Form      WordForm `json:"form"`
	EditingID string   `json:"editingId,omitempty"`
}

// RemoveWord deletes a word by ID.
type RemoveWord struct {
	ID string `json:"id"`
}

// Rename sets the board title and notes.
type Rename struct {
	Title string `json:"title"`
	Notes string `json:"notes"`
}

// ApplyEdit returns a new board with e applied. b is never modified; on error
// the returned board is b unchanged.
func ApplyEdit(b Board, e Edit) (Board, error) {
	if e == nil {
		return b, ErrUnknownEdit
	}
	next := b.Clone()
	if err := e.apply(&next); err != nil {
		return b, err
	}
	return next, nil
}

func (r Resize) apply(b *Board) error {
	rows, cols := clampDimension(r.Rows), clampDimension(r.Columns)
	b.Rows, b.Columns = rows, cols
	for key := range b.Disabled {
		c, err := grid.ParseKey(key)
		if err != nil || !c.Within(rows, cols) {
			delete(b.Disabled, key)
		}
	}
	b.Words = lo.Filter(b.Words, func(w Word, _ int) bool {
		return lo.EveryBy(w.Cells, func(c grid.Cell) bool { return c.Within(rows, cols) })
	})
	return nil
}

func (t ToggleDisabled) apply(b *Board) error {
	if !t.Cell.Within(b.Rows, b.Columns) {
		return ErrCellOutside
	}
	key := t.Cell.Key()
	if _, ok := b.LetterMap()[key]; ok {
		return ErrCellOccupied
	}
	if _, ok := b.Disabled[key]; ok {
		delete(b.Disabled, key)
	} else {
		b.Disabled[key] = struct{}{}
	}
	return nil
}

func (s SaveWord) apply(b *Board) error {
	if s.EditingID != "" {
		if _, ok := b.WordByID(s.EditingID); !ok {
			return fmt.Errorf("%w: %s", ErrWordNotFound, s.EditingID)
		}
	}
	v, err := ValidateWordInput(s.Form, *b, s.EditingID)
	if err != nil {
		return err
	}

	others := lo.Filter(b.Words, func(w Word, _ int) bool { return w.ID != s.EditingID })
	placement := grid.EvaluatePlacement(
		grid.Candidate{Answer: v.Answer, Start: v.Start, Orientation: v.Orientation},
		b.Bounds(),
		b.Disabled,
		grid.BuildLetterMap(others),
	)
	if !placement.OK() {
		return &PlacementError{Issues: placement.Issues}
	}

	w := Word{
		ID:          s.EditingID,
		Number:      v.Number,
		Answer:      v.Answer,
		Hints:       v.Hints,
		Orientation: v.Orientation,
		Start:       v.Start,
		Cells:       placement.Cells,
	}
	if w.ID == "" {
		w.ID = uuid.NewString()
		b.Words = append(b.Words, w)
		return nil
	}
	for i := range b.Words {
		if b.Words[i].ID == w.ID {
			b.Words[i] = w
		}
	}
	return nil
}

func (r RemoveWord) apply(b *Board) error {
	before := len(b.Words)
	b.Words = lo.Filter(b.Words, func(w Word, _ int) bool { return w.ID != r.ID })
	if len(b.Words) == before {
		return fmt.Errorf("%w: %s", ErrWordNotFound, r.ID)
	}
	return nil
}

func (r Rename) apply(b *Board) error {
	b.Title = strings.TrimSpace(r.Title)
	b.Notes = strings.TrimSpace(r.Notes)
	return nil
}
