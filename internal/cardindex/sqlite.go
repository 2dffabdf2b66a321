package cardindex

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

const schema = `
CREATE TABLE IF NOT EXISTS task_list_cards (
	task_list_id TEXT PRIMARY KEY,
	card_id      TEXT NOT NULL,
	recorded_at  TEXT NOT NULL DEFAULT (datetime('now'))
);
`

// SQLite is an Index that survives restarts. It is opt-in: the default
// index lives only as long as the process.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the index database at path.
func OpenSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("cardindex: create data dir: %w", err)
		}
	}

	db, err := openDB("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("cardindex: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("cardindex: pragma %q: %w", p, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("cardindex: migration: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Put records taskListID → cardID, replacing any previous card.
func (s *SQLite) Put(ctx context.Context, taskListID, cardID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO task_list_cards (task_list_id, card_id) VALUES (?, ?)
		 ON CONFLICT(task_list_id) DO UPDATE SET card_id = excluded.card_id, recorded_at = datetime('now')`,
		taskListID, cardID,
	)
	if err != nil {
		return fmt.Errorf("cardindex: put %s: %w", taskListID, err)
	}
	return nil
}

// Lookup returns the card a task list was created on, if known.
func (s *SQLite) Lookup(ctx context.Context, taskListID string) (string, bool, error) {
	var cardID string
	err := s.db.QueryRowContext(ctx,
		`SELECT card_id FROM task_list_cards WHERE task_list_id = ?`, taskListID,
	).Scan(&cardID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("cardindex: lookup %s: %w", taskListID, err)
	}
	return cardID, true, nil
}

// Entries returns every mapping sorted by task-list id.
func (s *SQLite) Entries(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT task_list_id, card_id FROM task_list_cards ORDER BY task_list_id`)
	if err != nil {
		return nil, fmt.Errorf("cardindex: entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.TaskListID, &e.CardID); err != nil {
			return nil, fmt.Errorf("cardindex: scan entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
