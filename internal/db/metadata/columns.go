package metadata

import (
	"context"
	"strings"

	"github.com/rebeliceyang/lazyssms/internal/db/connection"
	"github.com/rebeliceyang/lazyssms/internal/models"
)

// ListColumns retrieves column metadata for a table in ordinal order
func ListColumns(ctx context.Context, conn connection.Connection, database, schema, table string) ([]models.ColumnInfo, error) {
	var columns []models.ColumnInfo

	err := WithDatabase(ctx, conn, database, func() error {
		var err error
		columns, err = listColumns(ctx, conn, schema, table)
		return err
	})
	if err != nil {
		return nil, fetchError(conn, "columns of "+schema+"."+table, err)
	}

	return columns, nil
}

// listColumns reads columns from the current database
func listColumns(ctx context.Context, conn connection.Connection, schema, table string) ([]models.ColumnInfo, error) {
	result, err := conn.Execute(ctx, conn.Dialect().ListColumnsQuery(), schema, table)
	if err != nil {
		return nil, err
	}

	columns := make([]models.ColumnInfo, 0, result.RowCount())
	for _, row := range result.Rows {
		if len(row) < 3 {
			continue
		}
		columns = append(columns, models.ColumnInfo{
			Name:     row[0],
			DataType: row[1],
			Nullable: strings.EqualFold(row[2], "YES"),
		})
	}

	return columns, nil
}
