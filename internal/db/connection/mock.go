package connection

import (
	"context"
	"errors"

	"github.com/rebeliceyang/lazyssms/internal/models"
)

// MockConn is a scripted Connection for tests. Unset hooks succeed with
// empty results. Every call is recorded.
type MockConn struct {
	Name       string
	Database   string
	SQLDialect Dialect

	ExecuteFunc   func(query string, args []any) (*models.ResultSet, error)
	CursorFunc    func(query string) ([][]any, error)
	ExecBatchFunc func(query string, rows [][]any) error
	SwitchFunc    func(name string) error
	CloseErr      error
	// Bulk makes BulkInsert succeed instead of returning ErrBulkUnsupported
	Bulk bool

	Queries      []string
	Switches     []string
	BatchQueries []string
	Batches      [][][]any
	BulkTables   []string
	CloseCalls   int
}

// NewMockConn returns a SQL Server flavoured mock
func NewMockConn(name, database string) *MockConn {
	return &MockConn{Name: name, Database: database, SQLDialect: SQLServer}
}

func (m *MockConn) Execute(_ context.Context, query string, args ...any) (*models.ResultSet, error) {
	m.Queries = append(m.Queries, query)
	if m.Closed() {
		return nil, &models.QueryError{Query: query, Err: errors.New("connection is closed")}
	}
	if m.ExecuteFunc == nil {
		return models.NewRowsResult(nil, nil), nil
	}
	return m.ExecuteFunc(query, args)
}

func (m *MockConn) OpenCursor(_ context.Context, query string) (Cursor, error) {
	m.Queries = append(m.Queries, query)
	if m.CursorFunc == nil {
		return &sliceCursor{}, nil
	}
	rows, err := m.CursorFunc(query)
	if err != nil {
		return nil, err
	}
	return &sliceCursor{rows: rows}, nil
}

func (m *MockConn) ExecBatch(_ context.Context, query string, rows [][]any) (int64, error) {
	m.BatchQueries = append(m.BatchQueries, query)
	m.Batches = append(m.Batches, rows)
	if m.ExecBatchFunc != nil {
		if err := m.ExecBatchFunc(query, rows); err != nil {
			return 0, err
		}
	}
	return int64(len(rows)), nil
}

func (m *MockConn) BulkInsert(_ context.Context, table string, _ []string, rows [][]any) (int64, error) {
	if !m.Bulk {
		return 0, ErrBulkUnsupported
	}
	m.BulkTables = append(m.BulkTables, table)
	m.Batches = append(m.Batches, rows)
	if m.ExecBatchFunc != nil {
		if err := m.ExecBatchFunc("INSERT BULK "+table, rows); err != nil {
			return 0, err
		}
	}
	return int64(len(rows)), nil
}

func (m *MockConn) SwitchDatabase(_ context.Context, name string) error {
	if name == m.Database {
		return nil
	}
	m.Switches = append(m.Switches, name)
	if m.SwitchFunc != nil {
		if err := m.SwitchFunc(name); err != nil {
			return err
		}
	}
	m.Database = name
	return nil
}

func (m *MockConn) CurrentDatabase() string { return m.Database }

func (m *MockConn) Dialect() Dialect {
	if m.SQLDialect == nil {
		return SQLServer
	}
	return m.SQLDialect
}

func (m *MockConn) Label() string { return m.Name }

func (m *MockConn) Close() error {
	m.CloseCalls++
	return m.CloseErr
}

// Closed reports whether Close was called at least once
func (m *MockConn) Closed() bool { return m.CloseCalls > 0 }

type sliceCursor struct {
	rows   [][]any
	pos    int
	closed bool
}

func (c *sliceCursor) Next(n int) ([][]any, error) {
	if c.pos >= len(c.rows) {
		return nil, nil
	}
	end := c.pos + n
	if end > len(c.rows) {
		end = len(c.rows)
	}
	batch := c.rows[c.pos:end]
	c.pos = end
	return batch, nil
}

func (c *sliceCursor) Close() error {
	c.closed = true
	return nil
}
