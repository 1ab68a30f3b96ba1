package history

import (
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// executed_at is stored as UTC text so SQLite sorts it lexically
const timeLayout = "2006-01-02 15:04:05.000"

const entryColumns = `id, connection_name, database_name, query, executed_at,
	duration_ms, rows_affected, success, error_message`

// Entry is one executed statement
type Entry struct {
	ID             int
	ConnectionName string
	DatabaseName   string
	Query          string
	ExecutedAt     time.Time
	Duration       time.Duration
	// RowsAffected holds the returned row count for queries
	RowsAffected int64
	Success      bool
	ErrorMessage string
}

// Store keeps executed statements in a local SQLite file
type Store struct {
	db         *sql.DB
	maxEntries int
}

// NewStore opens the history database at path, creating it and its
// directory on first use. maxEntries bounds the table; 0 keeps everything.
func NewStore(path string, maxEntries int) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	// one writer; sqlite3 serialises anyway
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply history schema: %w", err)
	}
	return &Store{db: db, maxEntries: maxEntries}, nil
}

// Add records e, then drops the oldest rows beyond the configured limit
// in the same transaction.
func (s *Store) Add(e Entry) error {
	at := e.ExecutedAt
	if at.IsZero() {
		at = time.Now()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("record history: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(`INSERT INTO query_history
		(connection_name, database_name, query, executed_at, duration_ms, rows_affected, success, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ConnectionName, e.DatabaseName, e.Query, at.UTC().Format(timeLayout),
		e.Duration.Milliseconds(), e.RowsAffected, e.Success, e.ErrorMessage)
	if err != nil {
		return fmt.Errorf("record history: %w", err)
	}

	if s.maxEntries > 0 {
		if err := prune(tx, s.maxEntries); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Prune keeps only the newest keep entries
func (s *Store) Prune(keep int) error {
	return prune(s.db, keep)
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func prune(db execer, keep int) error {
	_, err := db.Exec(`DELETE FROM query_history
		WHERE id NOT IN (SELECT id FROM query_history ORDER BY id DESC LIMIT ?)`, keep)
	if err != nil {
		return fmt.Errorf("prune history: %w", err)
	}
	return nil
}

// GetRecent returns up to limit entries, newest first
func (s *Store) GetRecent(limit int) ([]Entry, error) {
	return s.list("", limit)
}

// Search returns entries whose text contains term, newest first
func (s *Store) Search(term string, limit int) ([]Entry, error) {
	return s.list("WHERE query LIKE ?", limit, "%"+term+"%")
}

func (s *Store) list(where string, limit int, args ...any) ([]Entry, error) {
	q := "SELECT " + entryColumns + " FROM query_history " + where + " ORDER BY id DESC LIMIT ?"
	rows, err := s.db.Query(q, append(args, limit)...)
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var (
			e  Entry
			ms int64
			at string
		)
		if err := rows.Scan(&e.ID, &e.ConnectionName, &e.DatabaseName, &e.Query, &at,
			&ms, &e.RowsAffected, &e.Success, &e.ErrorMessage); err != nil {
			return nil, err
		}
		e.Duration = time.Duration(ms) * time.Millisecond
		e.ExecutedAt, _ = time.ParseInLocation(timeLayout, at, time.UTC)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
