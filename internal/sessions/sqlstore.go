package sessions

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SQLStore is a Log backed by the session_records table.
type SQLStore struct {
	db       *sql.DB
	capacity int
}

func NewSQLStore(db *sql.DB, capacity int) *SQLStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &SQLStore{db: db, capacity: capacity}
}

// Append inserts r and trims the table to capacity in one transaction.
func (s *SQLStore) Append(ctx context.Context, r Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if _, err := tx.ExecContext(ctx, `
        INSERT INTO session_records
            (id, game_id, game_title, final_score, correct_words, total_hints_used, completion_seconds, played_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO NOTHING`,
		r.ID, r.GameID, r.GameTitle, r.FinalScore, r.CorrectWords, r.TotalHintsUsed,
		r.CompletionTimeSeconds, r.PlayedAt.UTC().Format(time.RFC3339Nano),
	); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("insert session: %w: %v", ErrUnavailable, err)
	}
	if _, err := tx.ExecContext(ctx, `
        DELETE FROM session_records
        WHERE seq NOT IN (SELECT seq FROM session_records ORDER BY seq DESC LIMIT ?)`,
		s.capacity,
	); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("trim sessions: %w: %v", ErrUnavailable, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit session: %w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *SQLStore) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 || limit > s.capacity {
		limit = s.capacity
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, game_id, game_title, final_score, correct_words, total_hints_used, completion_seconds, played_at
        FROM session_records
        ORDER BY seq DESC
        LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	out := make([]Record, 0, limit)
	for rows.Next() {
		var (
			r        Record
			playedAt string
		)
		if err := rows.Scan(&r.ID, &r.GameID, &r.GameTitle, &r.FinalScore, &r.CorrectWords,
			&r.TotalHintsUsed, &r.CompletionTimeSeconds, &playedAt); err != nil {
			return nil, err
		}
		if r.PlayedAt, err = time.Parse(time.RFC3339Nano, playedAt); err != nil {
			return nil, fmt.Errorf("session %s: played_at: %w", r.ID, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM session_records`); err != nil {
		return fmt.Errorf("clear sessions: %w: %v", ErrUnavailable, err)
	}
	return nil
}
