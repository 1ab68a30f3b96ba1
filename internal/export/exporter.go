package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rebeliceyang/lazyssms/internal/models"
)

// ErrNothingToExport is returned for results that are not tabular
var ErrNothingToExport = errors.New("no results to export")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DefaultPath returns ~/Downloads/<db>_results_YYYYMMDD_HHMMSS.csv,
// or the same name in home when Downloads does not exist
func DefaultPath(home, database string, now time.Time) string {
	if database == "" {
		database = "query"
	}
	name := fmt.Sprintf("%s_results_%s.csv", sanitize(database), now.Format("20060102_150405"))

	dir := filepath.Join(home, "Downloads")
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		dir = home
	}
	return filepath.Join(dir, name)
}

func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, name)
}

// ExpandHome replaces a leading ~ with home
func ExpandHome(path, home string) string {
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}

// Write exports the tabular result to path. A .json extension writes an
// array of objects; anything else writes CSV.
func Write(path string, result *models.ResultSet) error {
	if result == nil || result.Kind != models.ResultRows {
		return ErrNothingToExport
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create export directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = WriteJSON(file, result.Columns, result.Rows)
	} else {
		err = WriteCSV(file, result.Columns, result.Rows)
	}
	if closeErr := file.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("failed to close export file: %w", closeErr)
	}
	return err
}

// WriteCSV writes a UTF-8 BOM followed by ';' separated records
func WriteCSV(w io.Writer, columns []string, rows [][]string) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}

	writer := csv.NewWriter(w)
	writer.Comma = ';'

	if err := writer.Write(columns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteJSON writes rows as an array of column-keyed objects.
// Column order is kept.
func WriteJSON(w io.Writer, columns []string, rows [][]string) error {
	records := make([]orderedRecord, len(rows))
	for i, row := range rows {
		records[i] = orderedRecord{columns: columns, values: row}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	return nil
}

type orderedRecord struct {
	columns []string
	values  []string
}

func (r orderedRecord) MarshalJSON() ([]byte, error) {
	var b strings.Builder
	b.WriteByte('{')
	for i, col := range r.columns {
		if i > 0 {
			b.WriteByte(',')
		}
		key, err := json.Marshal(col)
		if err != nil {
			return nil, err
		}
		b.Write(key)
		b.WriteByte(':')

		var value []byte
		if i >= len(r.values) || r.values[i] == "NULL" {
			value = []byte("null")
		} else if value, err = json.Marshal(r.values[i]); err != nil {
			return nil, err
		}
		b.Write(value)
	}
	b.WriteByte('}')
	return []byte(b.String()), nil
}
