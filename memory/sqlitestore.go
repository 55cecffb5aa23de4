package memory

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore is the embedded-document variant of the per-user memory: one row
// per user in a single table, the window serialized as JSON.
type SQLiteStore struct {
	db  *sql.DB
	Now func() time.Time
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS user_memory (
	user_id    INTEGER PRIMARY KEY,
	summary    TEXT NOT NULL DEFAULT '',
	updated_at TEXT NOT NULL DEFAULT '',
	window     TEXT NOT NULL DEFAULT '[]'
);`

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init memory schema: %w", err)
	}
	return &SQLiteStore{db: db, Now: time.Now}, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) Load(ctx context.Context, userID int64) (Record, bool, error) {
	var rec Record
	var window string
	err := s.db.QueryRowContext(ctx,
		`SELECT summary, updated_at, window FROM user_memory WHERE user_id = ?`, userID,
	).Scan(&rec.Summary, &rec.UpdatedAt, &window)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("load memory for %d: %w", userID, err)
	}
	if err := json.Unmarshal([]byte(window), &rec.Window); err != nil {
		return Record{}, false, nil
	}
	return rec, true, nil
}

func (s *SQLiteStore) Save(ctx context.Context, userID int64, rec Record) error {
	if rec.UpdatedAt == "" {
		rec.UpdatedAt = s.Now().UTC().Format(time.RFC3339)
	}
	window, err := json.Marshal(rec.Window)
	if err != nil {
		return fmt.Errorf("encode memory window: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO user_memory (user_id, summary, updated_at, window)
VALUES (?, ?, ?, ?)
ON CONFLICT(user_id) DO UPDATE SET
	summary = excluded.summary,
	updated_at = excluded.updated_at,
	window = excluded.window`,
		userID, rec.Summary, rec.UpdatedAt, string(window))
	if err != nil {
		return fmt.Errorf("save memory for %d: %w", userID, err)
	}
	return nil
}
