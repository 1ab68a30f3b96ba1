package connection

import (
	"context"
	"errors"

	"github.com/rebeliceyang/lazyssms/internal/models"
)

// Connection is one database session. It is used by a single flow at a time.
type Connection interface {
	// Execute runs one statement or batch. A batch that returns columns
	// produces a tabular result, everything else an affected-count result.
	Execute(ctx context.Context, query string, args ...any) (*models.ResultSet, error)
	// OpenCursor starts streaming the rows of query with raw driver values.
	OpenCursor(ctx context.Context, query string) (Cursor, error)
	// ExecBatch runs query once per row and returns the total affected count.
	ExecBatch(ctx context.Context, query string, rows [][]any) (int64, error)
	// SwitchDatabase changes the active database, a no-op when already active.
	SwitchDatabase(ctx context.Context, name string) error
	CurrentDatabase() string
	Dialect() Dialect
	Label() string
	Close() error
}

// Cursor reads a result set in chunks
type Cursor interface {
	// Next returns up to n rows. An empty slice means the cursor is exhausted.
	Next(n int) ([][]any, error)
	Close() error
}

// ErrBulkUnsupported is returned by BulkInsert when the session has no bulk
// load path. Callers fall back to ExecBatch.
var ErrBulkUnsupported = errors.New("bulk insert is not supported by this connection")

// BulkInserter is implemented by connections that can load a batch of rows
// in one round trip
type BulkInserter interface {
	BulkInsert(ctx context.Context, table string, columns []string, rows [][]any) (int64, error)
}
