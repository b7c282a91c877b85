package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps the history in a SQLite database
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS threads (
		thread_id TEXT PRIMARY KEY,
		scanned INTEGER NOT NULL DEFAULT 0,
		comment_count INTEGER NOT NULL DEFAULT 0,
		has_posted INTEGER NOT NULL DEFAULT 0,
		destination_id TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS posted (
		thread_id TEXT NOT NULL REFERENCES threads(thread_id),
		seq INTEGER NOT NULL,
		answer_id TEXT NOT NULL,
		PRIMARY KEY (thread_id, answer_id)
	);

	CREATE INDEX IF NOT EXISTS idx_posted_thread ON posted(thread_id, seq);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("migrate history db: %w", err)
	}
	return nil
}

// Load reads every thread record
func (s *SQLiteStore) Load(ctx context.Context) (*History, error) {
	h := New()

	rows, err := s.db.QueryContext(ctx,
		`SELECT thread_id, scanned, comment_count, has_posted, destination_id FROM threads`)
	if err != nil {
		return nil, fmt.Errorf("query threads: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id, dest        string
			scanned, posted bool
			count           int
		)
		if err := rows.Scan(&id, &scanned, &count, &posted, &dest); err != nil {
			return nil, fmt.Errorf("scan thread row: %w", err)
		}
		r := h.record(id)
		r.Scanned = scanned
		if scanned {
			r.CommentCount = count
		}
		if posted {
			r.Posted = []string{}
		}
		r.DestinationID = dest
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate threads: %w", err)
	}

	answers, err := s.db.QueryContext(ctx,
		`SELECT thread_id, answer_id FROM posted ORDER BY thread_id, seq`)
	if err != nil {
		return nil, fmt.Errorf("query posted: %w", err)
	}
	defer answers.Close()

	for answers.Next() {
		var threadID, answerID string
		if err := answers.Scan(&threadID, &answerID); err != nil {
			return nil, fmt.Errorf("scan posted row: %w", err)
		}
		h.MarkPosted(threadID, answerID)
	}
	if err := answers.Err(); err != nil {
		return nil, fmt.Errorf("iterate posted: %w", err)
	}

	return h, nil
}

// Save replaces the stored snapshot with h inside one transaction
func (s *SQLiteStore) Save(ctx context.Context, h *History) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin history tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM posted`); err != nil {
		return fmt.Errorf("clear posted: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM threads`); err != nil {
		return fmt.Errorf("clear threads: %w", err)
	}

	threadStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO threads (thread_id, scanned, comment_count, has_posted, destination_id) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare thread insert: %w", err)
	}
	defer threadStmt.Close()

	postedStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO posted (thread_id, seq, answer_id) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare posted insert: %w", err)
	}
	defer postedStmt.Close()

	for _, id := range h.Threads() {
		r := h.records[id]
		if _, err := threadStmt.ExecContext(ctx, id, r.Scanned, r.CommentCount, r.Posted != nil, r.DestinationID); err != nil {
			return fmt.Errorf("insert thread %s: %w", id, err)
		}
		for seq, answerID := range r.Posted {
			if _, err := postedStmt.ExecContext(ctx, id, seq, answerID); err != nil {
				return fmt.Errorf("insert answer %s/%s: %w", id, answerID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit history: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
