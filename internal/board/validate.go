package board

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/samber/lo"

	"github.com/robalobadob/wordgrid/internal/grid"
)

// Input errors, in the order ValidateWordInput checks them.
var (
	ErrEmptyAnswer      = errors.New("Add the answer text before saving.")
	ErrAnswerCharacters = errors.New("Answers can only include letters and numbers.")
	ErrStartRow         = errors.New("Choose a start row that sits inside the grid.")
	ErrStartColumn      = errors.New("Choose a start column that sits inside the grid.")
	ErrMissingHint      = errors.New("Every word needs a hint before it can be saved.")
	ErrOrientation      = errors.New("Choose one of the supported directions.")
	ErrClueNumber       = errors.New("Clue numbers start at 1.")
	ErrNumberInUse      = errors.New("clue number already in use")
)

// InputError reports the first malformed field of a word form.
type InputError struct {
	Field string
	Err   error
	msg   string
}

func (e *InputError) Error() string {
	if e.msg != "" {
		return e.msg
	}
	return e.Err.Error()
}

func (e *InputError) Unwrap() error { return e.Err }

// PlacementError carries every placement issue for a rejected word.
type PlacementError struct {
	Issues []grid.Issue
}

func (e *PlacementError) Error() string {
	return strings.Join(lo.Map(e.Issues, func(i grid.Issue, _ int) string { return i.String() }), "\n")
}

// WordForm is the editor's raw input for one word.
type WordForm struct {
	Number      int      `json:"number"`
	Answer      string   `json:"answer"`
	Hints       []string `json:"hints"`
	Orientation string   `json:"orientation"`
	StartRow    int      `json:"startRow"`
	StartCol    int      `json:"startCol"`
}

// NormalizeAnswer strips every whitespace rune and upper-cases the rest.
func NormalizeAnswer(raw string) string {
	return strings.ToUpper(strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw))
}

func isAlphanumeric(s string) bool {
	for _, r := range s {
		if !(r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}

func trimHints(hints []string) []string {
	out := lo.Map(hints, func(h string, _ int) string { return strings.TrimSpace(h) })
	return lo.Compact(out)
}

// ValidatedWord is a form that passed ValidateWordInput, ready for placement.
type ValidatedWord struct {
	Number      int
	Answer      string
	Hints       []string
	Orientation grid.Orientation
	Start       grid.Cell
}

// ValidateWordInput checks a form against the board in a fixed order and
// returns the first failure. editingID excludes the word being edited from the
// clue-number collision check.
func ValidateWordInput(f WordForm, b Board, editingID string) (ValidatedWord, error) {
	answer := NormalizeAnswer(f.Answer)
	if answer == "" {
		return ValidatedWord{}, &InputError{Field: "answer", Err: ErrEmptyAnswer}
	}
	if !isAlphanumeric(answer) {
		return ValidatedWord{}, &InputError{Field: "answer", Err: ErrAnswerCharacters}
	}
	if f.StartRow < 1 || f.StartRow > b.Rows {
		return ValidatedWord{}, &InputError{Field: "startRow", Err: ErrStartRow}
	}
	if f.StartCol < 1 || f.StartCol > b.Columns {
		return ValidatedWord{}, &InputError{Field: "startCol", Err: ErrStartColumn}
	}
	hints := trimHints(f.Hints)
	if len(hints) == 0 {
		return ValidatedWord{}, &InputError{Field: "hints", Err: ErrMissingHint}
	}
	o, err := grid.ParseOrientation(f.Orientation)
	if err != nil {
		return ValidatedWord{}, &InputError{Field: "orientation", Err: ErrOrientation}
	}
	if f.Number < 1 {
		return ValidatedWord{}, &InputError{Field: "number", Err: ErrClueNumber}
	}
	taken := lo.ContainsBy(b.Words, func(w Word) bool { return w.Number == f.Number && w.ID != editingID })
	if taken {
		return ValidatedWord{}, &InputError{
			Field: "number",
			Err:   ErrNumberInUse,
			msg:   fmt.Sprintf("Word number %d is already in use. Pick a new clue number.", f.Number),
		}
	}
	return ValidatedWord{
		Number:      f.Number,
		Answer:      answer,
		Hints:       hints,
		Orientation: o,
		Start:       grid.Cell{Row: f.StartRow, Col: f.StartCol},
	}, nil
}
