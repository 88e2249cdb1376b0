package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordgrid/internal/board"
)

// sqlStore keeps each board as its export JSON in the boards table.
type sqlStore struct{ db *sql.DB }

// NewSQLStore returns a Store on db. The schema comes from the embedded
// migrations in internal/db.
func NewSQLStore(db *sql.DB) Store { return &sqlStore{db: db} }

// unavailable logs an external failure and wraps it as ErrUnavailable.
func unavailable(op, id string, err error) error {
	log.Warn().Err(err).Str("op", op).Str("board", id).Msg("board storage failed")
	return fmt.Errorf("%s %s: %w: %v", op, id, ErrUnavailable, err)
}

func (s *sqlStore) Save(ctx context.Context, b board.Board) error {
	if err := checkTitle(b); err != nil {
		return err
	}
	payload, err := json.Marshal(b.Export())
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
        INSERT INTO boards (id, name, payload)
        VALUES (?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            name = excluded.name,
            payload = excluded.payload,
            updated_at = CURRENT_TIMESTAMP`,
		b.ID, strings.TrimSpace(b.Title), string(payload),
	)
	if err != nil {
		return unavailable("save", b.ID, err)
	}
	return nil
}

func decodeBoard(id, payload string) (board.Board, error) {
	var e board.Export
	if err := json.Unmarshal([]byte(payload), &e); err != nil {
		return board.Board{}, fmt.Errorf("board %s: decode: %w", id, err)
	}
	e.ID = id
	return board.FromExport(e)
}

func (s *sqlStore) Get(ctx context.Context, id string) (board.Board, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM boards WHERE id=?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return board.Board{}, fmt.Errorf("board %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return board.Board{}, unavailable("get", id, err)
	}
	return decodeBoard(id, payload)
}

func (s *sqlStore) List(ctx context.Context) ([]board.Board, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, payload
        FROM boards
        ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, unavailable("list", "*", err)
	}
	defer rows.Close()

	out := []board.Board{}
	for rows.Next() {
		var id, payload string
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, unavailable("list", "*", err)
		}
		b, err := decodeBoard(id, payload)
		if err != nil {
			// One corrupt row should not hide the rest.
			log.Warn().Err(err).Str("board", id).Msg("skipping undecodable board")
			continue
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *sqlStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM boards WHERE id=?`, id)
	if err != nil {
		return unavailable("delete", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("board %s: %w", id, ErrNotFound)
	}
	return nil
}
