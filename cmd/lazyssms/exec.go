package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/rebeliceyang/lazyssms/internal/db/query"
	"github.com/rebeliceyang/lazyssms/internal/export"
	"github.com/rebeliceyang/lazyssms/internal/models"
	"github.com/rebeliceyang/lazyssms/internal/ui/components"
)

var (
	execLogin  loginFlags
	execSQL    string
	execOutput string
	execWidth  int
)

var execCmd = &cobra.Command{
	Use:   "exec [sql]",
	Short: "Run one statement and print the result",
	Long: `Run one SQL statement against a saved connection or explicit login and
print the result as a table, or write it to a CSV/JSON file.

The password comes from the keyring for saved connections, or from
LAZYSSMS_PASSWORD.`,
	Example: `  lazyssms exec --profile prod --database sales -e "SELECT TOP 10 * FROM orders"
  lazyssms exec --host localhost --user sa "SELECT @@VERSION" -o version.csv
  lazyssms exec --profile prod -e "SELECT * FROM sys.tables" --width 120`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sql := execSQL
		if sql == "" {
			sql = strings.Join(args, " ")
		}
		if strings.TrimSpace(sql) == "" {
			return errors.New("no SQL given; pass it with -e or as arguments")
		}

		env, err := setup()
		if err != nil {
			return err
		}
		defer env.Close()

		ctx := context.Background()
		conn, err := openLogin(ctx, env, &execLogin)
		if err != nil {
			return err
		}
		defer conn.Close()

		if d := env.Config.QueryTimeoutDuration(); d > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, d)
			defer cancel()
		}

		result := query.Execute(ctx, conn, sql)
		slog.Info("exec finished", "target", conn.Label(), "kind", result.Kind, "duration", result.Duration)

		if result.Kind == models.ResultError {
			return errors.New(result.Err)
		}

		if execOutput != "" {
			if err := export.Write(execOutput, result); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved to %s\n", execOutput)
			return nil
		}
		return printResult(cmd.OutOrStdout(), result, execWidth)
	},
}

func init() {
	execLogin.register(execCmd, "", "LAZYSSMS_PASSWORD")
	execCmd.Flags().StringVarP(&execSQL, "execute", "e", "", "SQL to run")
	execCmd.Flags().StringVarP(&execOutput, "output", "o", "", "write rows to a .csv or .json file")
	execCmd.Flags().IntVarP(&execWidth, "width", "w", 0, "fit rows into this many columns, dropping result columns from the right")
}

// printResult writes a boxed table, or with width > 0 a plain table
// fitted to that many columns
func printResult(w io.Writer, result *models.ResultSet, width int) error {
	switch result.Kind {
	case models.ResultAffected:
		_, err := fmt.Fprintf(w, "(%d rows affected)\n", result.AffectedCount)
		return err
	case models.ResultRows:
	default:
		_, err := fmt.Fprintln(w, "(no results)")
		return err
	}

	if len(result.Rows) == 0 {
		_, err := fmt.Fprintf(w, "%s\n(0 rows)\n", strings.Join(result.Columns, " | "))
		return err
	}

	if width > 0 {
		return printFitted(w, result, width)
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(result.Columns))
	for i, col := range result.Columns {
		header[i] = col
	}
	t.AppendHeader(header)

	for _, row := range result.Rows {
		r := make(table.Row, len(row))
		for i, cell := range row {
			r[i] = cell
		}
		t.AppendRow(r)
	}
	t.Render()

	_, err := fmt.Fprintf(w, "(%d rows, %s)\n", result.RowCount(), result.Duration.Round(1e6))
	return err
}

func printFitted(w io.Writer, result *models.ResultSet, width int) error {
	const maxCell, sample = components.FittedMaxCellWidth, components.DefaultSampleRows

	lines := components.FormatTable(result.Columns, result.Rows, width, maxCell, sample)
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
			return err
		}
	}

	shown := components.FittedColumns(result.Columns, result.Rows, width, maxCell, sample)
	if hidden := len(result.Columns) - shown; hidden > 0 {
		_, err := fmt.Fprintf(w, "(%d rows, %d columns hidden)\n", result.RowCount(), hidden)
		return err
	}
	_, err := fmt.Fprintf(w, "(%d rows)\n", result.RowCount())
	return err
}
