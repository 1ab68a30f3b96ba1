package metadata

import (
	"fmt"
	"strings"

	"github.com/rebeliceyang/lazyssms/internal/db/connection"
	"github.com/rebeliceyang/lazyssms/internal/models"
)

// TemplateKind selects a generated statement for a table
type TemplateKind int

const (
	TemplateSelect TemplateKind = iota
	TemplateInsert
	TemplateUpdate
	TemplateDelete
)

// PreviewLimit is the row count of generated SELECT statements
const PreviewLimit = 100

// TableRef quotes a "schema.table" name for the dialect
func TableRef(d connection.Dialect, name string) string {
	schema, table := models.SplitTableName(name, d.DefaultSchema())
	return d.TableRef(schema, table)
}

// Template builds the statement of kind for the table name ("schema.table").
// Known columns replace the placeholder column names.
func Template(d connection.Dialect, kind TemplateKind, name string, columns []models.ColumnInfo) string {
	ref := TableRef(d, name)

	names := []string{"col1", "col2"}
	values := []string{"val1", "val2"}
	if len(columns) > 0 {
		names = make([]string, len(columns))
		values = make([]string, len(columns))
		for i, col := range columns {
			names[i] = col.Name
			values[i] = fmt.Sprintf("<%s>", col.Name)
		}
	}

	switch kind {
	case TemplateInsert:
		return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", ref, strings.Join(names, ", "), strings.Join(values, ", "))
	case TemplateUpdate:
		sets := make([]string, len(names))
		for i := range names {
			sets[i] = names[i] + " = " + values[i]
		}
		return fmt.Sprintf("UPDATE %s SET %s WHERE <condition>", ref, strings.Join(sets, ", "))
	case TemplateDelete:
		return fmt.Sprintf("DELETE FROM %s WHERE <condition>", ref)
	default:
		return d.SelectTop(ref, PreviewLimit)
	}
}
