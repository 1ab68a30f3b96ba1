package query

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rebeliceyang/lazyssms/internal/db/connection"
	"github.com/rebeliceyang/lazyssms/internal/models"
)

// Execute runs sql on conn. It never fails: any error, including a driver
// panic, is returned as an error result.
func Execute(ctx context.Context, conn connection.Connection, sql string) (result *models.ResultSet) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			slog.Error("query panicked", "panic", r)
			result = models.NewErrorResult(&models.QueryError{Query: sql, Err: fmt.Errorf("%v", r)})
			result.Duration = time.Since(start)
		}
	}()

	if strings.TrimSpace(sql) == "" {
		return &models.ResultSet{Kind: models.ResultEmpty}
	}

	res, err := conn.Execute(ctx, sql)
	if err != nil {
		slog.Warn("query failed", "database", conn.CurrentDatabase(), "error", err)
		result = models.NewErrorResult(err)
		result.Duration = time.Since(start)
		return result
	}

	res.Duration = time.Since(start)
	slog.Debug("query executed",
		"database", conn.CurrentDatabase(),
		"rows", res.RowCount(),
		"affected", res.AffectedCount,
		"duration", res.Duration,
	)
	return res
}
