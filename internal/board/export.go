package board

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/robalobadob/wordgrid/internal/grid"
)

// ErrCellsDrift is returned when an imported word's cells disagree with the
// cells derived from its start, length and orientation.
var ErrCellsDrift = errors.New("stored cells do not match start/orientation")

// ErrDuplicateWordID is returned when two imported words carry the same id.
var ErrDuplicateWordID = errors.New("word id already used on this board")

// ExportWord is a word in the serializable board shape.
type ExportWord struct {
	ID          string           `json:"id,omitempty" yaml:"id,omitempty"`
	Number      int              `json:"number" yaml:"number"`
	Answer      string           `json:"answer" yaml:"answer"`
	Hints       []string         `json:"hints" yaml:"hints"`
	Orientation grid.Orientation `json:"orientation" yaml:"orientation"`
	Start       grid.Cell        `json:"start" yaml:"start"`
	Cells       []grid.Cell      `json:"cells,omitempty" yaml:"cells,omitempty"`
}

// Export is the shape handed to storage: enough to rebuild the board.
type Export struct {
	ID            string       `json:"id,omitempty" yaml:"id,omitempty"`
	Title         string       `json:"title,omitempty" yaml:"title,omitempty"`
	Rows          int          `json:"rows" yaml:"rows"`
	Columns       int          `json:"columns" yaml:"columns"`
	DisabledCells []string     `json:"disabledCells" yaml:"disabledCells"`
	Words         []ExportWord `json:"words" yaml:"words"`
	Notes         string       `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// Export converts b to its serializable shape, words sorted by clue number.
func (b Board) Export() Export {
	return Export{
		ID:            b.ID,
		Title:         b.Title,
		Rows:          b.Rows,
		Columns:       b.Columns,
		DisabledCells: b.DisabledKeys(),
		Words: lo.Map(b.SortedWords(), func(w Word, _ int) ExportWord {
			return ExportWord{
				ID:          w.ID,
				Number:      w.Number,
				Answer:      w.Answer,
				Hints:       append([]string(nil), w.Hints...),
				Orientation: w.Orientation,
				Start:       w.Start,
				Cells:       append([]grid.Cell(nil), w.Cells...),
			}
		}),
		Notes: b.Notes,
	}
}

// ImportError wraps the failure of one imported word.
type ImportError struct {
	Number int
	Err    error
}

func (e *ImportError) Error() string { return fmt.Sprintf("word %d: %v", e.Number, e.Err) }
func (e *ImportError) Unwrap() error { return e.Err }

// FromExport rebuilds a board. Every word is replayed through SaveWord, so an
// export can never smuggle in a placement the editor would have rejected.
func FromExport(e Export) (Board, error) {
	b := New(e.ID, e.Title)
	b.Notes = e.Notes
	if e.Rows < MinDimension || e.Rows > MaxDimension || e.Columns < MinDimension || e.Columns > MaxDimension {
		return Board{}, fmt.Errorf("board dimensions %dx%d outside %d-%d", e.Rows, e.Columns, MinDimension, MaxDimension)
	}
	b.Rows, b.Columns = e.Rows, e.Columns

	for _, key := range e.DisabledCells {
		c, err := grid.ParseKey(key)
		if err != nil {
			return Board{}, err
		}
		if !c.Within(b.Rows, b.Columns) {
			return Board{}, fmt.Errorf("disabled cell %s: %w", key, ErrCellOutside)
		}
		b.Disabled[c.Key()] = struct{}{}
	}

	for _, w := range e.Words {
		next, err := replayWord(b, w)
		if err != nil {
			return Board{}, err
		}
		b = next
	}
	return b, nil
}

// replayWord saves w onto b through the editor. A word id in the export is
// kept, so stored boards read back with the ids clients already hold.
func replayWord(b Board, w ExportWord) (Board, error) {
	if w.ID != "" {
		if _, taken := b.WordByID(w.ID); taken {
			return b, &ImportError{Number: w.Number, Err: ErrDuplicateWordID}
		}
	}
	form := WordForm{
		Number:      w.Number,
		Answer:      w.Answer,
		Hints:       w.Hints,
		Orientation: string(w.Orientation),
		StartRow:    w.Start.Row,
		StartCol:    w.Start.Col,
	}
	next, err := ApplyEdit(b, SaveWord{Form: form})
	if err != nil {
		return b, &ImportError{Number: w.Number, Err: err}
	}
	added := &next.Words[len(next.Words)-1]
	if len(w.Cells) > 0 && !slices.Equal(w.Cells, added.Cells) {
		return b, &ImportError{Number: w.Number, Err: ErrCellsDrift}
	}
	if w.ID != "" {
		added.ID = w.ID
	}
	return next, nil
}

// Preview runs validation and the evaluator without changing the board, for
// live feedback while a word form is being edited.
func Preview(b Board, f WordForm, editingID string) (grid.Placement, error) {
	v, err := ValidateWordInput(f, b, editingID)
	if err != nil {
		return grid.Placement{Cells: []grid.Cell{}, Issues: []grid.Issue{}}, err
	}
	others := lo.Filter(b.Words, func(w Word, _ int) bool { return w.ID != editingID })
	return grid.EvaluatePlacement(
		grid.Candidate{Answer: v.Answer, Start: v.Start, Orientation: v.Orientation},
		b.Bounds(), b.Disabled, grid.BuildLetterMap(others),
	), nil
}

// boardJSON is Board's wire shape; the disabled set travels as a sorted list.
type boardJSON struct {
	ID            string            `json:"id"`
	Title         string            `json:"title"`
	Rows          int               `json:"rows"`
	Columns       int               `json:"columns"`
	DisabledCells []string          `json:"disabledCells"`
	Words         []Word            `json:"words"`
	Notes         string            `json:"notes,omitempty"`
	Letters       grid.LetterMap    `json:"letters"`
	StartNumbers  map[string]string `json:"startNumbers"`
	NextNumber    int               `json:"nextNumber"`
	Stats         Stats             `json:"stats"`
}

func (b Board) MarshalJSON() ([]byte, error) {
	return json.Marshal(boardJSON{
		ID:            b.ID,
		Title:         b.Title,
		Rows:          b.Rows,
		Columns:       b.Columns,
		DisabledCells: b.DisabledKeys(),
		Words:         b.SortedWords(),
		Notes:         b.Notes,
		Letters:       b.LetterMap(),
		StartNumbers:  b.StartNumbers(),
		NextNumber:    b.NextNumber(),
		Stats:         b.Stats(),
	})
}

// NewID returns a fresh board identifier.
func NewID() string { return uuid.NewString() }

// Audit is a lenient FromExport: words that fail are skipped and reported,
// the rest are kept. Dimension and disabled-cell errors still abort.
func Audit(e Export) (Board, []error) {
	words := e.Words
	e.Words = nil
	b, err := FromExport(e)
	if err != nil {
		return Board{}, []error{err}
	}
	var problems []error
	for _, w := range words {
		next, err := replayWord(b, w)
		if err != nil {
			problems = append(problems, err)
			continue
		}
		b = next
	}
	return b, problems
}
