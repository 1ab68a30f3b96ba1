package models

import (
	"fmt"
	"time"
)

// ResultKind tells which of the result variants is active
type ResultKind int

const (
	ResultEmpty ResultKind = iota
	ResultRows
	ResultAffected
	ResultError
)

// ResultSet holds the outcome of one statement.
// Exactly one of rows, affected count or error is meaningful, per Kind.
type ResultSet struct {
	Kind          ResultKind
	Columns       []string
	Rows          [][]string
	AffectedCount int64
	Err           string
	Duration      time.Duration
}

// NewRowsResult builds a tabular result
func NewRowsResult(columns []string, rows [][]string) *ResultSet {
	if rows == nil {
		rows = [][]string{}
	}
	return &ResultSet{Kind: ResultRows, Columns: columns, Rows: rows}
}

// NewAffectedResult builds a result for a statement that returned no columns
func NewAffectedResult(n int64) *ResultSet {
	return &ResultSet{Kind: ResultAffected, AffectedCount: n}
}

// NewErrorResult stores err as the active result
func NewErrorResult(err error) *ResultSet {
	return &ResultSet{Kind: ResultError, Err: err.Error()}
}

func (r *ResultSet) RowCount() int {
	if r == nil {
		return 0
	}
	return len(r.Rows)
}

func (r *ResultSet) ColCount() int {
	if r == nil {
		return 0
	}
	return len(r.Columns)
}

// Title is the status line shown above the results pane
func (r *ResultSet) Title() string {
	if r == nil {
		return "Results"
	}
	switch r.Kind {
	case ResultRows:
		return fmt.Sprintf("Results (%d rows, %d cols)", r.RowCount(), r.ColCount())
	case ResultAffected:
		return fmt.Sprintf("OK. Rows affected: %d", r.AffectedCount)
	case ResultError:
		return "Error"
	default:
		return "Results"
	}
}
