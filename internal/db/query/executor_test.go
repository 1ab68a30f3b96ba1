package query

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rebeliceyang/lazyssms/internal/db/connection"
	"github.com/rebeliceyang/lazyssms/internal/models"
)

func TestExecute(t *testing.T) {
	tests := []struct {
		name     string
		sql      string
		execute  func(query string, args []any) (*models.ResultSet, error)
		wantKind models.ResultKind
		check    func(t *testing.T, r *models.ResultSet)
	}{
		{
			name: "tabular",
			sql:  "SELECT 1 AS x",
			execute: func(string, []any) (*models.ResultSet, error) {
				return models.NewRowsResult([]string{"x"}, [][]string{{"1"}}), nil
			},
			wantKind: models.ResultRows,
			check: func(t *testing.T, r *models.ResultSet) {
				assert.Equal(t, "Results (1 rows, 1 cols)", r.Title())
			},
		},
		{
			name: "affected count",
			sql:  "UPDATE t SET a=1",
			execute: func(string, []any) (*models.ResultSet, error) {
				return models.NewAffectedResult(0), nil
			},
			wantKind: models.ResultAffected,
			check: func(t *testing.T, r *models.ResultSet) {
				assert.Equal(t, "OK. Rows affected: 0", r.Title())
				assert.Empty(t, r.Columns)
			},
		},
		{
			name: "error becomes result",
			sql:  "SELECT * FROM nope",
			execute: func(q string, _ []any) (*models.ResultSet, error) {
				return nil, &models.QueryError{Query: q, Err: errors.New("Invalid object name 'nope'.")}
			},
			wantKind: models.ResultError,
			check: func(t *testing.T, r *models.ResultSet) {
				assert.Equal(t, "Invalid object name 'nope'.", r.Err)
				assert.Equal(t, "Error", r.Title())
			},
		},
		{
			name: "panic becomes result",
			sql:  "SELECT 1",
			execute: func(string, []any) (*models.ResultSet, error) {
				panic("driver exploded")
			},
			wantKind: models.ResultError,
			check: func(t *testing.T, r *models.ResultSet) {
				assert.Contains(t, r.Err, "driver exploded")
			},
		},
		{
			name:     "blank statement",
			sql:      "   \n",
			wantKind: models.ResultEmpty,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := connection.NewMockConn("test", "master")
			conn.ExecuteFunc = tt.execute

			r := Execute(context.Background(), conn, tt.sql)
			assert.Equal(t, tt.wantKind, r.Kind)
			if tt.check != nil {
				tt.check(t, r)
			}
		})
	}
}
