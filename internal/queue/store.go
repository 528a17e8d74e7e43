package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Store manages job-record persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const schema = `
CREATE TABLE IF NOT EXISTS title_jobs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id TEXT NOT NULL,
    disc_title TEXT NOT NULL,
    title_id INTEGER NOT NULL,
    status TEXT NOT NULL,
    progress_percent INTEGER NOT NULL DEFAULT 0,
    progress_message TEXT NOT NULL DEFAULT '',
    ripped_file TEXT NOT NULL DEFAULT '',
    final_file TEXT NOT NULL DEFAULT '',
    error_message TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_title_jobs_status ON title_jobs(status);
`

// Open initializes or connects to the job database inside dir.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure queue directory: %w", err)
	}
	dbPath := filepath.Join(dir, "jobs.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db, path: dbPath}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path reports the database file location.
func (s *Store) Path() string {
	return s.path
}

// Add inserts a pending job record for one title.
func (s *Store) Add(ctx context.Context, sessionID, discTitle string, titleID int) (*Item, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO title_jobs (session_id, disc_title, title_id, status, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		sessionID, discTitle, titleID, StatusPending, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

// GetByID fetches a single job record.
func (s *Store) GetByID(ctx context.Context, id int64) (*Item, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("job %d not found", id)
	}
	return item, err
}

// Update persists the mutable fields of a job record.
func (s *Store) Update(ctx context.Context, item *Item) error {
	item.UpdatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`UPDATE title_jobs SET status = ?, progress_percent = ?, progress_message = ?,
            ripped_file = ?, final_file = ?, error_message = ?, updated_at = ?
         WHERE id = ?`,
		item.Status, item.ProgressPercent, item.ProgressMessage,
		item.RippedFile, item.FinalFile, item.ErrorMessage,
		item.UpdatedAt.Format(time.RFC3339Nano), item.ID,
	)
	if err != nil {
		return fmt.Errorf("update job %d: %w", item.ID, err)
	}
	return nil
}

// List returns job records, newest first, optionally filtered by status.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Item, error) {
	query := selectColumns
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		query += " WHERE status IN (?" + strings.Repeat(",?", len(statuses)-1) + ")"
		for _, status := range statuses {
			args = append(args, status)
		}
	}
	query += " ORDER BY id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

const selectColumns = `SELECT id, session_id, disc_title, title_id, status,
    progress_percent, progress_message, ripped_file, final_file, error_message,
    created_at, updated_at FROM title_jobs`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*Item, error) {
	var item Item
	var status, createdAt, updatedAt string
	if err := row.Scan(&item.ID, &item.SessionID, &item.DiscTitle, &item.TitleID,
		&status, &item.ProgressPercent, &item.ProgressMessage,
		&item.RippedFile, &item.FinalFile, &item.ErrorMessage,
		&createdAt, &updatedAt); err != nil {
		return nil, err
	}
	item.Status = Status(status)
	item.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	item.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return &item, nil
}
