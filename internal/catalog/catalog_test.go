package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/wordgrid/assets"
)

func TestEmbeddedSamplesLoad(t *testing.T) {
	c, err := Parse(assets.Samples)
	require.NoError(t, err)

	samples, words := c.Stats()
	assert.Equal(t, 3, samples)
	assert.Equal(t, 10, words)

	orchard, err := c.Get("orchard")
	require.NoError(t, err)
	assert.Equal(t, "Orchard Opener", orchard.Title)
	assert.Equal(t, []string{"6:6"}, orchard.DisabledKeys())
	assert.Equal(t, "A", orchard.LetterMap()["3:3"])

	seaside, err := c.Get("seaside")
	require.NoError(t, err)
	assert.Equal(t, "1/2/4", seaside.StartNumbers()["1:1"])

	_, err = c.Get("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAllReturnsCopies(t *testing.T) {
	c, err := Parse(assets.Samples)
	require.NoError(t, err)

	first := c.All()
	first[0].Title = "changed"
	first[0].Words[0].Answer = "XXXXX"

	again, err := c.Get(first[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Orchard Opener", again.Title)
	assert.Equal(t, "APPLE", again.Words[0].Answer)
}

func TestParseRejectsInvalidSamples(t *testing.T) {
	_, err := Parse([]byte(`
- title: Clash
  rows: 4
  columns: 4
  words:
    - {number: 1, answer: CAT, hints: [pet], orientation: horizontal, start: {row: 1, col: 1}}
    - {number: 2, answer: DOG, hints: [pet], orientation: vertical, start: {row: 1, col: 1}}
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `sample "sample-1"`)

	_, err = Parse([]byte(`[]`))
	assert.Error(t, err)

	_, err = Parse([]byte(`
- {id: a, rows: 3, columns: 3, words: []}
- {id: a, rows: 3, columns: 3, words: []}
`))
	assert.ErrorContains(t, err, "duplicate")
}
