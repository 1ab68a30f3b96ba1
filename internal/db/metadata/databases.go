package metadata

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/rebeliceyang/lazyssms/internal/db/connection"
	"github.com/rebeliceyang/lazyssms/internal/models"
)

// ListDatabases returns all databases on the server
func ListDatabases(ctx context.Context, conn connection.Connection) ([]string, error) {
	result, err := conn.Execute(ctx, conn.Dialect().ListDatabasesQuery())
	if err != nil {
		return nil, fetchError(conn, "databases", err)
	}

	databases := make([]string, 0, result.RowCount())
	for _, row := range result.Rows {
		if len(row) > 0 {
			databases = append(databases, row[0])
		}
	}

	return databases, nil
}

// WithDatabase runs fn with the connection switched to database and
// restores the previous database afterwards, even when fn fails.
// The error of fn wins over a restore error.
func WithDatabase(ctx context.Context, conn connection.Connection, database string, fn func() error) (err error) {
	previous := conn.CurrentDatabase()
	if database == "" || database == previous {
		return fn()
	}

	if err := conn.SwitchDatabase(ctx, database); err != nil {
		return err
	}

	defer func() {
		if restoreErr := conn.SwitchDatabase(ctx, previous); restoreErr != nil && err == nil {
			err = fmt.Errorf("failed to restore database %s: %w", previous, restoreErr)
		}
	}()

	return fn()
}

// fetchError classifies a listing failure. Transport failures are
// ConnectionErrors, everything else a SchemaFetchError.
func fetchError(conn connection.Connection, object string, err error) error {
	var netErr net.Error
	if errors.Is(err, driver.ErrBadConn) || errors.As(err, &netErr) {
		return &models.ConnectionError{Target: conn.Label(), Err: err}
	}

	var connErr *models.ConnectionError
	var schemaErr *models.SchemaFetchError
	if errors.As(err, &connErr) || errors.As(err, &schemaErr) {
		return err
	}
	return &models.SchemaFetchError{Object: object, Err: err}
}
