package sessions

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/wordgrid/internal/db"
)

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func record(i int) Record {
	return NewRecord("g1", fmt.Sprintf("Game %d", i), i*10, i, i%3, 30+i, epoch.Add(time.Duration(i)*time.Minute))
}

func exerciseLog(t *testing.T, log Log) {
	ctx := context.Background()
	for i := 1; i <= 5; i++ {
		require.NoError(t, log.Append(ctx, record(i)))
	}

	all, err := log.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3, "capacity is 3")
	assert.Equal(t, "Game 5", all[0].GameTitle)
	assert.Equal(t, "Game 3", all[2].GameTitle)
	assert.True(t, all[0].PlayedAt.Equal(epoch.Add(5*time.Minute)))

	// Retrying an append that already landed does not duplicate it.
	require.NoError(t, log.Append(ctx, all[0]))
	retried, err := log.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, retried, 3)
	assert.Equal(t, all[0].ID, retried[0].ID)
	assert.Equal(t, all[1].ID, retried[1].ID)

	two, err := log.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, two, 2)

	require.NoError(t, log.Clear(ctx))
	empty, err := log.List(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestRing(t *testing.T) {
	exerciseLog(t, NewRing(3))
}

func TestRingDefaultCapacity(t *testing.T) {
	r := NewRing(0)
	ctx := context.Background()
	for i := 0; i < DefaultCapacity+10; i++ {
		require.NoError(t, r.Append(ctx, record(i)))
	}
	all, err := r.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, DefaultCapacity)
}

func TestSQLStore(t *testing.T) {
	conn, err := db.OpenAndMigrate(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	defer conn.Close()

	exerciseLog(t, NewSQLStore(conn, 3))
}

func TestSQLStoreUnavailable(t *testing.T) {
	conn, err := db.OpenAndMigrate(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	s := NewSQLStore(conn, 3)
	require.NoError(t, conn.Close())

	assert.ErrorIs(t, s.Append(context.Background(), record(1)), ErrUnavailable)
	_, err = s.List(context.Background(), 0)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestRecordValidate(t *testing.T) {
	assert.NoError(t, record(1).Validate())

	r := record(1)
	r.GameID = " "
	assert.ErrorIs(t, r.Validate(), ErrInvalidRecord)

	r = record(1)
	r.FinalScore = -1
	assert.ErrorIs(t, r.Validate(), ErrInvalidRecord)
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, Summary{}, Summarize(nil))

	s := Summarize([]Record{record(1), record(2), record(6)})
	assert.Equal(t, 3, s.Plays)
	assert.Equal(t, 60, s.BestScore)
	assert.InDelta(t, 30.0, s.AverageScore, 1e-9)
	assert.Equal(t, 1+2+0, s.TotalHintsUsed)
	assert.Equal(t, 31, s.FastestSeconds)
}
