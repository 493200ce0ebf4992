package feedback

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps entries in an append-only table.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at path and ensures the schema.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); path != ":memory:" && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create feedback dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer at a time; also keeps ":memory:" on a single database.
	db.SetMaxOpenConns(1)
	s := &SQLiteStore{db: db}
	if err := s.initTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init tables: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initTables() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS feedback (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		type TEXT NOT NULL,
		message TEXT NOT NULL,
		input TEXT NOT NULL,
		summary TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`)
	return err
}

func (s *SQLiteStore) Append(ctx context.Context, e Entry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	created := e.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	cols := e.columns()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO feedback (type, message, input, summary, created_at) VALUES (?, ?, ?, ?, ?)`,
		cols[0], cols[1], cols[2], cols[3], created.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}

// List returns entries in insertion order.
func (s *SQLiteStore) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT type, message, input, summary, created_at FROM feedback ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query feedback: %w", err)
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var (
			e       Entry
			typ     string
			created string
		)
		if err := rows.Scan(&typ, &e.Message, &e.Input, &e.Summary, &created); err != nil {
			return nil, fmt.Errorf("scan feedback: %w", err)
		}
		e.Type = Type(typ)
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
