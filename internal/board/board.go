// internal/board/board.go
//
// Board drafts for the puzzle editor.
// Defines:
//   - Word: a numbered answer with hints, placed at a start cell in an orientation.
//   - Board: rows × columns, disabled cells and the accepted word list.
//
// Boards are treated as values: every change goes through ApplyEdit, which
// returns a new Board and leaves its input untouched.
package board

import (
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/robalobadob/wordgrid/internal/grid"
)

const (
	MinDimension     = 3
	MaxDimension     = 18
	DefaultDimension = 10
)

// Word is an accepted word on a board. Cells is always re-derived from
// (Start, len(Answer), Orientation) and never authored directly.
type Word struct {
	ID          string           `json:"id"`
	Number      int              `json:"number"`
	Answer      string           `json:"answer"`
	Hints       []string         `json:"hints"`
	Orientation grid.Orientation `json:"orientation"`
	Start       grid.Cell        `json:"start"`
	Cells       []grid.Cell      `json:"cells"`
}

func (w Word) Letters() string       { return w.Answer }
func (w Word) Occupied() []grid.Cell { return w.Cells }

func (w Word) clone() Word {
	w.Hints = append([]string(nil), w.Hints...)
	w.Cells = append([]grid.Cell(nil), w.Cells...)
	return w
}

// Board is one puzzle draft.
// Its JSON form is produced by MarshalJSON; storage uses Export.
type Board struct {
	ID       string
	Title    string
	Rows     int
	Columns  int
	Disabled map[string]struct{}
	Words    []Word
	Notes    string
}

// New returns an empty draft with the default dimensions.
func New(id, title string) Board {
	return Board{
		ID:       id,
		Title:    strings.TrimSpace(title),
		Rows:     DefaultDimension,
		Columns:  DefaultDimension,
		Disabled: map[string]struct{}{},
		Words:    []Word{},
	}
}

// Clone returns a deep copy of b.
func (b Board) Clone() Board {
	out := b
	out.Disabled = make(map[string]struct{}, len(b.Disabled))
	for k := range b.Disabled {
		out.Disabled[k] = struct{}{}
	}
	out.Words = make([]Word, len(b.Words))
	for i, w := range b.Words {
		out.Words[i] = w.clone()
	}
	return out
}

// Bounds returns the playable extent.
func (b Board) Bounds() grid.Bounds { return grid.Bounds{Rows: b.Rows, Columns: b.Columns} }

// LetterMap is the derived cell → letter view of the accepted words.
func (b Board) LetterMap() grid.LetterMap { return grid.BuildLetterMap(b.Words) }

// WordByID looks up a word.
func (b Board) WordByID(id string) (Word, bool) {
	return lo.Find(b.Words, func(w Word) bool { return w.ID == id })
}

// SortedWords returns the words ordered by clue number.
func (b Board) SortedWords() []Word {
	out := append([]Word(nil), b.Words...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

// NextNumber is the clue number offered for a new word.
func (b Board) NextNumber() int {
	if len(b.Words) == 0 {
		return 1
	}
	return lo.MaxBy(b.Words, func(a, c Word) bool { return a.Number > c.Number }).Number + 1
}

// StartNumbers labels each start cell with the clue numbers beginning there ("1/4").
func (b Board) StartNumbers() map[string]string {
	tracker := lo.GroupBy(b.Words, func(w Word) string { return w.Start.Key() })
	out := make(map[string]string, len(tracker))
	for key, words := range tracker {
		nums := lo.Map(words, func(w Word, _ int) int { return w.Number })
		sort.Ints(nums)
		out[key] = strings.Join(lo.Map(nums, func(n int, _ int) string { return strconv.Itoa(n) }), "/")
	}
	return out
}

// DisabledKeys returns the disabled cell keys in stable order.
func (b Board) DisabledKeys() []string {
	keys := lo.Keys(b.Disabled)
	sort.Strings(keys)
	return keys
}

// Stats summarises the grid for the editor header.
type Stats struct {
	TotalCells    int `json:"totalCells"`
	DisabledCells int `json:"disabledCells"`
	PlayableCells int `json:"playableCells"`
	Words         int `json:"words"`
}

func (b Board) Stats() Stats {
	total := b.Rows * b.Columns
	return Stats{
		TotalCells:    total,
		DisabledCells: len(b.Disabled),
		PlayableCells: total - len(b.Disabled),
		Words:         len(b.Words),
	}
}

func clampDimension(n int) int {
	if n == 0 {
		return DefaultDimension
	}
	return min(MaxDimension, max(MinDimension, n))
}
