// internal/catalog/catalog.go
//
// Sample puzzle catalog.
//
// Responsibilities:
//   - Load sample boards from a YAML file named by SAMPLES_FILE, or fall back
//     to the copy embedded in the binary (assets/samples.yaml).
//   - Rebuild every sample through board.FromExport, so a bad sample fails
//     start-up instead of a play.
//   - Supply All, Get and Stats to the HTTP layer and the CLI.
//
// Initialization is run once (sync.Once); Init returns the same error on
// every call.

package catalog

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/robalobadob/wordgrid/assets"
	"github.com/robalobadob/wordgrid/internal/board"
)

var ErrNotFound = errors.New("sample not found")

// Catalog is an ordered, immutable set of sample boards.
type Catalog struct {
	boards []board.Board
	byID   map[string]board.Board
}

// Parse decodes a YAML list of board exports. Entries without an id get
// "sample-N" (1-based).
func Parse(data []byte) (*Catalog, error) {
	var exports []board.Export
	if err := yaml.Unmarshal(data, &exports); err != nil {
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}
	c := &Catalog{byID: make(map[string]board.Board, len(exports))}
	for i, e := range exports {
		if e.ID == "" {
			e.ID = fmt.Sprintf("sample-%d", i+1)
		}
		if _, dup := c.byID[e.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate sample id %q", e.ID)
		}
		b, err := board.FromExport(e)
		if err != nil {
			return nil, fmt.Errorf("catalog: sample %q: %w", e.ID, err)
		}
		c.boards = append(c.boards, b)
		c.byID[b.ID] = b
	}
	if len(c.boards) == 0 {
		return nil, errors.New("catalog: no samples")
	}
	return c, nil
}

// All returns the samples in file order. Boards are copies.
func (c *Catalog) All() []board.Board {
	return lo.Map(c.boards, func(b board.Board, _ int) board.Board { return b.Clone() })
}

// Get returns a copy of the sample with id.
func (c *Catalog) Get(id string) (board.Board, error) {
	b, ok := c.byID[id]
	if !ok {
		return board.Board{}, ErrNotFound
	}
	return b.Clone(), nil
}

// Stats returns (samples, words) counts.
func (c *Catalog) Stats() (samples int, words int) {
	return len(c.boards), lo.SumBy(c.boards, func(b board.Board) int { return len(b.Words) })
}

var (
	initOnce   sync.Once
	defaultCat *Catalog
	initialErr error
)

// Init loads the default catalog exactly once.
func Init() error {
	initOnce.Do(func() {
		data := assets.Samples
		if path := os.Getenv("SAMPLES_FILE"); path != "" {
			var err error
			if data, err = os.ReadFile(path); err != nil {
				initialErr = fmt.Errorf("catalog: %w", err)
				return
			}
		}
		defaultCat, initialErr = Parse(data)
	})
	return initialErr
}

// Default returns the catalog loaded by Init, loading it if needed.
func Default() (*Catalog, error) {
	if err := Init(); err != nil {
		return nil, err
	}
	return defaultCat, nil
}
