// internal/grid/placement.go
//
// Letter map construction and the placement evaluator.
//
// The evaluator is the single gate between an edited word and the accepted word
// set: it projects the candidate's cells and reports every reason the placement
// is inadmissible instead of stopping at the first one.
package grid

import (
	"fmt"
	"strings"
)

// LetterMap maps a cell key to the single upper-case letter occupying it.
type LetterMap map[string]string

// Placed is anything that occupies cells with letters (board words, play progress).
type Placed interface {
	Letters() string
	Occupied() []Cell
}

// BuildLetterMap projects every word's answer onto its cells.
// Words are applied in order and the last write wins on a shared key; callers
// feed it words that already passed EvaluatePlacement, so order is immaterial.
func BuildLetterMap[W Placed](words []W) LetterMap {
	m := make(LetterMap)
	for _, w := range words {
		letters := []rune(strings.ToUpper(w.Letters()))
		for i, c := range w.Occupied() {
			if i >= len(letters) {
				break
			}
			m[c.Key()] = string(letters[i])
		}
	}
	return m
}

// IssueKind tags a placement issue.
type IssueKind string

const (
	OutOfBounds    IssueKind = "out-of-bounds"
	Disabled       IssueKind = "disabled"
	LetterConflict IssueKind = "letter-conflict"
	BadDirection   IssueKind = "unknown-orientation"
)

// Issue is one non-fatal reason a placement cannot be accepted.
type Issue struct {
	Kind     IssueKind `json:"type"`
	Cell     Cell      `json:"cell"`
	Existing string    `json:"existingLetter,omitempty"`
	Incoming string    `json:"incomingLetter,omitempty"`
}

// String renders the issue the way the editor shows it.
func (i Issue) String() string {
	loc := fmt.Sprintf("Row %d, Col %d", i.Cell.Row, i.Cell.Col)
	switch i.Kind {
	case OutOfBounds:
		return loc + " falls outside the current grid."
	case Disabled:
		return loc + " is disabled. Enable the cell or adjust the word."
	case LetterConflict:
		return fmt.Sprintf("%s already contains %q and conflicts with %q.", loc, i.Existing, i.Incoming)
	case BadDirection:
		return "Choose one of the supported directions."
	}
	return "Unable to place the word with the current configuration."
}

// Candidate is a word the editor wants to place.
type Candidate struct {
	Answer      string
	Start       Cell
	Orientation Orientation
}

// Bounds is the playable extent of a board.
type Bounds struct {
	Rows    int
	Columns int
}

// Placement is the evaluator's result.
type Placement struct {
	Cells  []Cell  `json:"cells"`
	Issues []Issue `json:"issues"`
}

// OK reports whether the placement is admissible.
func (p Placement) OK() bool { return len(p.Issues) == 0 }

// EvaluatePlacement projects the candidate and collects every placement issue.
//
// For each cell in order:
//   - outside the bounds → out-of-bounds, and no further checks for that cell;
//   - in the disabled set → disabled;
//   - mapped in existing to a different letter → letter-conflict.
//
// The last two are independent, so one cell may report both. existing must be
// built from the accepted words minus the word being edited.
//
// An orientation outside the four fixed ones projects no cells and yields a
// single unknown-orientation issue at the start cell.
func EvaluatePlacement(c Candidate, b Bounds, disabled map[string]struct{}, existing LetterMap) Placement {
	if !c.Orientation.Valid() {
		return Placement{Cells: []Cell{}, Issues: []Issue{{Kind: BadDirection, Cell: c.Start}}}
	}
	letters := []rune(strings.ToUpper(c.Answer))
	cells := ProjectCells(c.Start, len(letters), c.Orientation)
	issues := []Issue{}

	for i, cell := range cells {
		if !cell.Within(b.Rows, b.Columns) {
			issues = append(issues, Issue{Kind: OutOfBounds, Cell: cell})
			continue
		}
		key := cell.Key()
		if _, off := disabled[key]; off {
			issues = append(issues, Issue{Kind: Disabled, Cell: cell})
		}
		incoming := string(letters[i])
		if have := existing[key]; have != "" && have != incoming {
			issues = append(issues, Issue{Kind: LetterConflict, Cell: cell, Existing: have, Incoming: incoming})
		}
	}
	return Placement{Cells: cells, Issues: issues}
}
