package metadata

import (
	"context"

	"github.com/rebeliceyang/lazyssms/internal/db/connection"
)

// ListTables returns the base tables of database as "schema.table"
func ListTables(ctx context.Context, conn connection.Connection, database string) ([]string, error) {
	var tables []string

	err := WithDatabase(ctx, conn, database, func() error {
		result, err := conn.Execute(ctx, conn.Dialect().ListTablesQuery())
		if err != nil {
			return err
		}

		tables = make([]string, 0, result.RowCount())
		for _, row := range result.Rows {
			if len(row) < 2 {
				continue
			}
			tables = append(tables, row[0]+"."+row[1])
		}
		return nil
	})
	if err != nil {
		return nil, fetchError(conn, "tables of "+database, err)
	}

	return tables, nil
}
