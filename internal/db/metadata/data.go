package metadata

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rebeliceyang/lazyssms/internal/db/connection"
)

// CountRows returns SELECT COUNT(*) for a quoted table reference
func CountRows(ctx context.Context, conn connection.Connection, ref string) (int64, error) {
	result, err := conn.Execute(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", ref))
	if err != nil {
		return 0, fmt.Errorf("failed to count rows: %w", err)
	}

	if result.RowCount() == 0 || len(result.Rows[0]) == 0 {
		return 0, fmt.Errorf("failed to count rows: empty result")
	}

	count, err := strconv.ParseInt(result.Rows[0][0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse row count %q: %w", result.Rows[0][0], err)
	}

	return count, nil
}
