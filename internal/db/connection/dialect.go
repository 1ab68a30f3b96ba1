package connection

import (
	"fmt"
	"strings"

	"github.com/rebeliceyang/lazyssms/internal/models"
)

// Dialect holds the per-driver SQL used by the schema browser, the
// templates and the mirror engine.
type Dialect interface {
	Name() string
	DefaultSchema() string
	DefaultPort() int
	QuoteIdent(name string) string
	// TableRef omits the schema when it is the default one.
	TableRef(schema, table string) string
	SelectTop(ref string, n int) string
	// Placeholder returns the bind marker for the 1-based parameter n.
	Placeholder(n int) string
	ListDatabasesQuery() string
	ListTablesQuery() string
	ListColumnsQuery() string
	CurrentDatabaseQuery() string
	// Lexer names the chroma lexer used for highlighting.
	Lexer() string
}

// DialectFor returns the dialect for a driver name
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case models.DriverSQLServer, "":
		return SQLServer, nil
	case models.DriverPostgres:
		return Postgres, nil
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
}

var (
	SQLServer Dialect = sqlServerDialect{}
	Postgres  Dialect = postgresDialect{}
)

type sqlServerDialect struct{}

func (sqlServerDialect) Name() string          { return models.DriverSQLServer }
func (sqlServerDialect) DefaultSchema() string { return "dbo" }
func (sqlServerDialect) DefaultPort() int      { return 1433 }
func (sqlServerDialect) Lexer() string         { return "tsql" }

func (sqlServerDialect) QuoteIdent(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

func (d sqlServerDialect) TableRef(schema, table string) string {
	return tableRef(d, schema, table)
}

func (sqlServerDialect) SelectTop(ref string, n int) string {
	return fmt.Sprintf("SELECT TOP %d * FROM %s", n, ref)
}

func (sqlServerDialect) Placeholder(n int) string {
	return fmt.Sprintf("@p%d", n)
}

func (sqlServerDialect) ListDatabasesQuery() string {
	return "SELECT name FROM sys.databases ORDER BY name"
}

func (sqlServerDialect) ListTablesQuery() string {
	return `SELECT TABLE_SCHEMA, TABLE_NAME
FROM INFORMATION_SCHEMA.TABLES
WHERE TABLE_TYPE = 'BASE TABLE'
ORDER BY TABLE_SCHEMA, TABLE_NAME`
}

func (sqlServerDialect) ListColumnsQuery() string {
	return `SELECT COLUMN_NAME, DATA_TYPE, IS_NULLABLE
FROM INFORMATION_SCHEMA.COLUMNS
WHERE TABLE_SCHEMA = @p1 AND TABLE_NAME = @p2
ORDER BY ORDINAL_POSITION`
}

func (sqlServerDialect) CurrentDatabaseQuery() string {
	return "SELECT DB_NAME()"
}

type postgresDialect struct{}

func (postgresDialect) Name() string          { return models.DriverPostgres }
func (postgresDialect) DefaultSchema() string { return "public" }
func (postgresDialect) DefaultPort() int      { return 5432 }
func (postgresDialect) Lexer() string         { return "postgresql" }

func (postgresDialect) QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (d postgresDialect) TableRef(schema, table string) string {
	return tableRef(d, schema, table)
}

func (postgresDialect) SelectTop(ref string, n int) string {
	return fmt.Sprintf("SELECT * FROM %s LIMIT %d", ref, n)
}

func (postgresDialect) Placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}

func (postgresDialect) ListDatabasesQuery() string {
	return "SELECT datname FROM pg_database WHERE NOT datistemplate ORDER BY datname"
}

func (postgresDialect) ListTablesQuery() string {
	return `SELECT table_schema, table_name
FROM information_schema.tables
WHERE table_type = 'BASE TABLE'
  AND table_schema NOT IN ('pg_catalog', 'information_schema')
ORDER BY table_schema, table_name`
}

func (postgresDialect) ListColumnsQuery() string {
	return `SELECT column_name, data_type, is_nullable
FROM information_schema.columns
WHERE table_schema = $1 AND table_name = $2
ORDER BY ordinal_position`
}

func (postgresDialect) CurrentDatabaseQuery() string {
	return "SELECT current_database()"
}

func tableRef(d Dialect, schema, table string) string {
	if schema == "" || strings.EqualFold(schema, d.DefaultSchema()) {
		return d.QuoteIdent(table)
	}
	return d.QuoteIdent(schema) + "." + d.QuoteIdent(table)
}

// Placeholders returns n comma-separated bind markers
func Placeholders(d Dialect, n int) string {
	marks := make([]string, n)
	for i := range marks {
		marks[i] = d.Placeholder(i + 1)
	}
	return strings.Join(marks, ", ")
}

// QuoteList quotes and joins identifiers
func QuoteList(d Dialect, names []string) string {
	quoted := make([]string, len(names))
	for i, name := range names {
		quoted[i] = d.QuoteIdent(name)
	}
	return strings.Join(quoted, ", ")
}
