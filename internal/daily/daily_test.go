package daily

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDateKeyUsesUTC(t *testing.T) {
	loc := time.FixedZone("NZDT", 13*3600)
	d := time.Date(2026, 1, 2, 8, 0, 0, 0, loc)
	assert.Equal(t, "2026-01-01", DateKey(d))
}

func TestIndexDeterministicAndInRange(t *testing.T) {
	d := time.Date(2026, 7, 14, 0, 0, 0, 0, time.UTC)
	later := d.Add(23 * time.Hour)
	assert.Equal(t, Index(d, "salt", 7), Index(later, "salt", 7), "same UTC day")

	for i := 0; i < 60; i++ {
		idx := Index(d.AddDate(0, 0, i), "salt", 5)
		assert.GreaterOrEqual(t, idx, 0)
		assert.Less(t, idx, 5)
	}
	assert.Equal(t, 0, Index(d, "salt", 0))
}

func TestPick(t *testing.T) {
	d := time.Date(2026, 7, 14, 0, 0, 0, 0, time.UTC)
	_, ok := Pick([]string{}, d, "s")
	assert.False(t, ok)

	items := []string{"a", "b", "c"}
	got, ok := Pick(items, d, "s")
	assert.True(t, ok)
	assert.Equal(t, items[Index(d, "s", 3)], got)
}
