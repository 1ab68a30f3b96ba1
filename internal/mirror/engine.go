// Package mirror copies tables between two connections in fixed-size
// batches. A Job is stepped one batch at a time so a UI can re-render
// between batches; Run drives it to completion for headless use.
package mirror

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rebeliceyang/lazyssms/internal/db/connection"
	"github.com/rebeliceyang/lazyssms/internal/db/metadata"
	"github.com/rebeliceyang/lazyssms/internal/models"
)

// DefaultBatchSize is the number of rows moved per insert batch
const DefaultBatchSize = 1000

// SuccessMessage is reported when every table was copied
const SuccessMessage = "Mirror completed successfully."

// Job is one run of the batched copy. It is discarded on completion or
// on the first error and never resumed.
type Job struct {
	Source   connection.Connection
	Dest     connection.Connection
	SourceDB string
	DestDB   string
	// Tables are "schema.table" names copied in order
	Tables []string
	// OwnsSource is set when Source was opened for this job only
	OwnsSource bool
	BatchSize  int

	progress Progress
	index    int
	cursor   connection.Cursor
	insert   string
	target   string
	columns  []string
	// rowByRow is set once the destination refused a bulk load
	rowByRow bool
	done     bool
	err      error
	closed   bool
}

// NewJob creates a job with the default batch size
func NewJob(source, dest connection.Connection, sourceDB, destDB string, tables []string, ownsSource bool) *Job {
	return &Job{
		Source:     source,
		Dest:       dest,
		SourceDB:   sourceDB,
		DestDB:     destDB,
		Tables:     tables,
		OwnsSource: ownsSource,
		BatchSize:  DefaultBatchSize,
		progress:   Progress{TableCount: len(tables)},
	}
}

// Progress returns the current counters
func (j *Job) Progress() Progress {
	return j.progress
}

// Done reports whether the job finished, successfully or not
func (j *Job) Done() bool {
	return j.done || j.err != nil
}

// Err returns the error that aborted the job
func (j *Job) Err() error {
	return j.err
}

// Step performs one unit of work: preparing the next table or copying one
// batch. It returns true once the job is finished. The first error aborts
// the job and is returned as a *models.MirrorError.
func (j *Job) Step(ctx context.Context) (bool, error) {
	if j.err != nil {
		return true, j.err
	}
	if j.done {
		return true, nil
	}

	if j.cursor == nil {
		if j.index >= len(j.Tables) {
			j.done = true
			slog.Info("mirror finished", "tables", len(j.Tables), "rows", j.progress.TotalCopied)
			return true, nil
		}
		if err := j.startTable(ctx); err != nil {
			return true, j.fail(err)
		}
		return false, nil
	}

	size := j.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}

	rows, err := j.cursor.Next(size)
	if err != nil {
		return true, j.fail(fmt.Errorf("failed to read rows: %w", err))
	}

	if len(rows) == 0 {
		slog.Info("mirror table finished",
			"table", j.progress.Table,
			"rows", j.progress.Copied,
			"batches", j.progress.Batches)
		j.closeCursor()
		j.index++
		return false, nil
	}

	if err := j.insertBatch(ctx, rows); err != nil {
		return true, j.fail(fmt.Errorf("failed to insert batch %d: %w", j.progress.Batches+1, err))
	}

	j.progress.Copied += int64(len(rows))
	j.progress.TotalCopied += int64(len(rows))
	j.progress.Batches++
	return false, nil
}

// startTable switches both sides, reads the column list and opens the
// source cursor. A table without columns is skipped.
func (j *Job) startTable(ctx context.Context) error {
	table := j.Tables[j.index]
	j.progress.TableIndex = j.index
	j.progress.Table = table
	j.progress.Copied = 0
	j.progress.Total = 0
	j.progress.Batches = 0

	if err := j.Source.SwitchDatabase(ctx, j.SourceDB); err != nil {
		return fmt.Errorf("failed to switch source to %s: %w", j.SourceDB, err)
	}
	if err := j.Dest.SwitchDatabase(ctx, j.DestDB); err != nil {
		return fmt.Errorf("failed to switch destination to %s: %w", j.DestDB, err)
	}

	src := j.Source.Dialect()
	dst := j.Dest.Dialect()

	schema, name := models.SplitTableName(table, src.DefaultSchema())
	columns, err := metadata.ListColumns(ctx, j.Source, j.SourceDB, schema, name)
	if err != nil {
		return err
	}
	if len(columns) == 0 {
		slog.Warn("mirror table skipped, no columns", "table", table)
		j.progress.Skipped = append(j.progress.Skipped, table)
		j.index++
		return nil
	}

	names := make([]string, len(columns))
	for i, col := range columns {
		names[i] = col.Name
	}

	destSchema := schema
	if schema == src.DefaultSchema() {
		destSchema = dst.DefaultSchema()
	}
	srcRef := src.TableRef(schema, name)
	dstRef := dst.TableRef(destSchema, name)

	total, err := metadata.CountRows(ctx, j.Source, srcRef)
	if err != nil {
		slog.Warn("mirror row count unavailable", "table", table, "error", err)
		total = 0
	}
	j.progress.Total = total

	j.target = dstRef
	j.columns = names
	j.insert = fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		dstRef, connection.QuoteList(dst, names), connection.Placeholders(dst, len(names)))

	cursor, err := j.Source.OpenCursor(ctx, fmt.Sprintf("SELECT %s FROM %s", connection.QuoteList(src, names), srcRef))
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", srcRef, err)
	}
	j.cursor = cursor

	slog.Info("mirror table started", "table", table, "columns", len(names), "total", total)
	return nil
}

// insertBatch bulk loads rows when the destination supports it and falls
// back to the prepared INSERT otherwise
func (j *Job) insertBatch(ctx context.Context, rows [][]any) error {
	if bulk, ok := j.Dest.(connection.BulkInserter); ok && !j.rowByRow {
		_, err := bulk.BulkInsert(ctx, j.target, j.columns, rows)
		if !errors.Is(err, connection.ErrBulkUnsupported) {
			return err
		}
		j.rowByRow = true
	}
	_, err := j.Dest.ExecBatch(ctx, j.insert, rows)
	return err
}

func (j *Job) fail(err error) error {
	table := ""
	if j.index < len(j.Tables) {
		table = j.Tables[j.index]
	}
	j.err = &models.MirrorError{Table: table, Err: err}
	j.closeCursor()
	slog.Error("mirror aborted", "table", table, "error", err, "copied", j.progress.Copied)
	return j.err
}

func (j *Job) closeCursor() {
	if j.cursor == nil {
		return
	}
	if err := j.cursor.Close(); err != nil {
		slog.Warn("failed to close mirror cursor", "error", err)
	}
	j.cursor = nil
}

// Run steps the job to completion, reporting progress after every step,
// and closes the connections it is responsible for.
func (j *Job) Run(ctx context.Context, onProgress func(Progress)) (err error) {
	defer func() {
		if closeErr := j.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	for {
		if err := ctx.Err(); err != nil {
			return j.fail(err)
		}

		done, err := j.Step(ctx)
		if onProgress != nil {
			onProgress(j.progress)
		}
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

// Close releases the cursor and the destination connection. The source is
// closed only when the job owns it. Close is idempotent.
func (j *Job) Close() error {
	if j.closed {
		return nil
	}
	j.closed = true
	j.closeCursor()

	var errs []error
	if j.Dest != nil {
		if err := j.Dest.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close destination: %w", err))
		}
	}
	if j.OwnsSource && j.Source != nil {
		if err := j.Source.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close source: %w", err))
		}
	}
	return errors.Join(errs...)
}
