// internal/grid/geometry.go
//
// Geometry primitives for word grids.
// Defines:
//   - Cell: a 1-indexed (row, col) coordinate with no inherent bounds.
//   - Orientation: the four fixed word directions and their unit step vectors.
//   - Cell keys: the canonical "row:col" string used as a map key.
//
// Boundedness belongs to a board, not to a coordinate: cells produced here may
// sit outside any grid (or carry negative components) until a caller checks them.
package grid

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Cell is a grid coordinate. Rows and columns start at 1 on a real board.
type Cell struct {
	Row int `json:"row" yaml:"row"`
	Col int `json:"col" yaml:"col"`
}

// Key returns the canonical map key for c.
func (c Cell) Key() string { return Key(c.Row, c.Col) }

// Add returns c shifted by (dRow, dCol) scaled by n.
func (c Cell) Add(dRow, dCol, n int) Cell {
	return Cell{Row: c.Row + dRow*n, Col: c.Col + dCol*n}
}

// Within reports whether c lies inside [1,rows] × [1,cols].
func (c Cell) Within(rows, cols int) bool {
	return c.Row >= 1 && c.Row <= rows && c.Col >= 1 && c.Col <= cols
}

// Orientation is the direction a word runs in.
type Orientation string

const (
	Horizontal   Orientation = "horizontal"
	Vertical     Orientation = "vertical"
	DiagonalDown Orientation = "diagonal-down"
	DiagonalUp   Orientation = "diagonal-up"
)

// ErrUnknownOrientation is returned by ParseOrientation for values outside the enum.
var ErrUnknownOrientation = errors.New("unknown orientation")

type step struct{ dRow, dCol int }

var deltas = map[Orientation]step{
	Horizontal:   {0, 1},
	Vertical:     {1, 0},
	DiagonalDown: {1, 1},
	DiagonalUp:   {-1, 1},
}

var labels = map[Orientation]string{
	Horizontal:   "Horizontal",
	Vertical:     "Vertical",
	DiagonalDown: "Diagonal ↘",
	DiagonalUp:   "Diagonal ↗",
}

// Orientations lists every supported orientation in display order.
func Orientations() []Orientation {
	return []Orientation{Horizontal, Vertical, DiagonalDown, DiagonalUp}
}

// ParseOrientation validates s at the boundary. Matching is case-insensitive.
func ParseOrientation(s string) (Orientation, error) {
	o := Orientation(strings.ToLower(strings.TrimSpace(s)))
	if !o.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownOrientation, s)
	}
	return o, nil
}

// Valid reports whether o is one of the four fixed orientations.
func (o Orientation) Valid() bool {
	_, ok := deltas[o]
	return ok
}

// Delta returns the unit step for o.
// Callers must validate o first; an unknown value is a programming error.
func (o Orientation) Delta() (dRow, dCol int) {
	d, ok := deltas[o]
	if !ok {
		panic("grid: delta for unknown orientation " + strconv.Quote(string(o)))
	}
	return d.dRow, d.dCol
}

// Label is the human-readable name shown in editors.
func (o Orientation) Label() string { return labels[o] }

// Key encodes (row, col) as "row:col".
func Key(row, col int) string {
	return strconv.Itoa(row) + ":" + strconv.Itoa(col)
}

// ParseKey decodes a key produced by Key.
func ParseKey(key string) (Cell, error) {
	r, c, ok := strings.Cut(key, ":")
	if !ok {
		return Cell{}, fmt.Errorf("cell key %q: missing separator", key)
	}
	row, err := strconv.Atoi(r)
	if err != nil {
		return Cell{}, fmt.Errorf("cell key %q: row: %w", key, err)
	}
	col, err := strconv.Atoi(c)
	if err != nil {
		return Cell{}, fmt.Errorf("cell key %q: col: %w", key, err)
	}
	return Cell{Row: row, Col: col}, nil
}

// ProjectCells returns the ordered cells a word of the given length occupies
// when it starts at start and runs in orientation o. No bounds checking. An
// unknown orientation projects nothing.
func ProjectCells(start Cell, length int, o Orientation) []Cell {
	if length <= 0 || !o.Valid() {
		return []Cell{}
	}
	dRow, dCol := o.Delta()
	cells := make([]Cell, length)
	for i := range cells {
		cells[i] = start.Add(dRow, dCol, i)
	}
	return cells
}
