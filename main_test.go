package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goodYAML = `
title: Tiny
rows: 4
columns: 4
disabledCells: ["4:4"]
words:
  - number: 1
    answer: CAT
    hints: ["Purrs"]
    orientation: horizontal
    start: {row: 1, col: 1}
  - number: 2
    answer: COW
    hints: ["Moos"]
    orientation: vertical
    start: {row: 1, col: 1}
`

func TestDecodeExportByExtension(t *testing.T) {
	e, err := decodeExport("tiny.yaml", []byte(goodYAML))
	require.NoError(t, err)
	assert.Equal(t, "Tiny", e.Title)
	assert.Len(t, e.Words, 2)

	_, err = decodeExport("tiny.json", []byte(goodYAML))
	assert.Error(t, err)

	e, err = decodeExport("tiny.json", []byte(`{"rows":3,"columns":3,"disabledCells":[],"words":[]}`))
	require.NoError(t, err)
	assert.Equal(t, 3, e.Rows)
}

func TestReportAudit(t *testing.T) {
	e, err := decodeExport("tiny.yml", []byte(goodYAML))
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, reportAudit(&out, "tiny.yml", e))
	assert.Contains(t, out.String(), "ok (4x4, 2 words, 15 playable cells)")

	// DOG at 1:1 clashes with CAT on the first letter.
	e.Words[1].Answer = "DOG"
	out.Reset()
	err = reportAudit(&out, "tiny.yml", e)
	assert.Error(t, err)
	assert.Contains(t, out.String(), "tiny.yml: ")
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("SESSION_CAP", "12")
	assert.Equal(t, 12, getEnvInt("SESSION_CAP", 200))
	t.Setenv("SESSION_CAP", "nope")
	assert.Equal(t, 200, getEnvInt("SESSION_CAP", 200))
	t.Setenv("SESSION_CAP", "")
	assert.Equal(t, 200, getEnvInt("SESSION_CAP", 200))
}
