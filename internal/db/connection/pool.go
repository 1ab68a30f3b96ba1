package connection

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/golang-sql/sqlexp"
	_ "github.com/jackc/pgx/v5/stdlib"
	mssql "github.com/microsoft/go-mssqldb"
	"github.com/rebeliceyang/lazyssms/internal/models"
)

// SQLConn is a Connection backed by database/sql. It pins a single
// *sql.Conn so that session state such as USE survives between statements.
type SQLConn struct {
	db       *sql.DB
	conn     *sql.Conn
	config   models.ConnectionConfig
	dialect  Dialect
	database string
	closed   bool
	// messages is set for live SQL Server sessions, whose driver reports
	// row counts and result sets through sqlexp messages
	messages bool
	// bulk enables BulkInsert through the SQL Server bulk copy protocol
	bulk   bool
	logger *slog.Logger
}

// Open dials the server described by config
func Open(ctx context.Context, config models.ConnectionConfig) (*SQLConn, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	dialect, err := DialectFor(config.Driver)
	if err != nil {
		return nil, &models.ConnectionError{Target: config.DisplayName(), Err: err}
	}

	db, err := sql.Open(driverName(config.Driver), buildConnectionString(config))
	if err != nil {
		return nil, &models.ConnectionError{Target: config.DisplayName(), Err: err}
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	c, err := NewSQLConn(ctx, db, config, dialect)
	if err != nil {
		return nil, err
	}
	if dialect.Name() == models.DriverSQLServer {
		c.messages = true
		c.bulk = true
	}
	return c, nil
}

// NewSQLConn takes ownership of db, pins one connection and pings it
func NewSQLConn(ctx context.Context, db *sql.DB, config models.ConnectionConfig, dialect Dialect) (*SQLConn, error) {
	conn, err := db.Conn(ctx)
	if err != nil {
		_ = db.Close()
		return nil, &models.ConnectionError{Target: config.DisplayName(), Err: err}
	}

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		_ = db.Close()
		return nil, &models.ConnectionError{Target: config.DisplayName(), Err: fmt.Errorf("failed to ping database: %w", err)}
	}

	c := &SQLConn{
		db:       db,
		conn:     conn,
		config:   config,
		dialect:  dialect,
		database: config.Database,
		logger:   slog.Default().With("component", "connection", "target", config.DisplayName()),
	}

	if c.database == "" {
		c.refreshDatabase(ctx)
	}

	c.logger.Info("connected", "driver", dialect.Name(), "database", c.database)
	return c, nil
}

// Execute runs a statement and converts its outcome to a ResultSet. The
// first result set that carries columns becomes a tabular result; a batch
// without one becomes an affected-row count.
func (c *SQLConn) Execute(ctx context.Context, query string, args ...any) (*models.ResultSet, error) {
	if c.closed {
		return nil, &models.QueryError{Query: query, Err: errors.New("connection is closed")}
	}

	start := time.Now()

	var (
		result *models.ResultSet
		err    error
	)
	switch {
	case c.messages:
		result, err = c.runBatch(ctx, query, args...)
	case ReturnsRows(query):
		result, err = c.queryRows(ctx, query, args...)
	default:
		result, err = c.exec(ctx, query, args...)
	}
	if err != nil {
		return nil, &models.QueryError{Query: query, Err: err}
	}

	result.Duration = time.Since(start)

	if c.dialect.Name() == models.DriverSQLServer && isUseStatement(query) {
		c.refreshDatabase(ctx)
	}

	return result, nil
}

// runBatch reads the driver's message stream, which reports result sets
// and row counts in the order the server produced them
func (c *SQLConn) runBatch(ctx context.Context, query string, args ...any) (*models.ResultSet, error) {
	msgs := &sqlexp.ReturnMessage{}
	rows, err := c.conn.QueryContext(ctx, query, append(args, msgs)...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return collectMessages(ctx, msgs, rows)
}

// messageQueue is the part of *sqlexp.ReturnMessage the batch reader uses
type messageQueue interface {
	Message(ctx context.Context) sqlexp.RawMessage
}

// resultRows is the part of *sql.Rows the batch reader uses
type resultRows interface {
	Columns() ([]string, error)
	Next() bool
	NextResultSet() bool
	Scan(dest ...any) error
	Err() error
}

func collectMessages(ctx context.Context, msgs messageQueue, rows resultRows) (*models.ResultSet, error) {
	var (
		result   *models.ResultSet
		affected int64
	)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		switch m := msgs.Message(ctx).(type) {
		case sqlexp.MsgNext:
			if result != nil {
				// later result sets are drained, the tab shows the first one
				for rows.Next() {
				}
				continue
			}
			set, err := readResultSet(rows)
			if err != nil {
				return nil, err
			}
			result = set
		case sqlexp.MsgRowsAffected:
			affected += m.Count
		case sqlexp.MsgError:
			return nil, m.Error
		case sqlexp.MsgNextResultSet:
			if !rows.NextResultSet() {
				if err := rows.Err(); err != nil {
					return nil, err
				}
				if result != nil {
					return result, nil
				}
				return models.NewAffectedResult(affected), nil
			}
		}
	}
}

// readResultSet reads the current result set. One without columns is nil.
func readResultSet(rows resultRows) (*models.ResultSet, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		for rows.Next() {
		}
		return nil, rows.Err()
	}

	var data [][]string
	for rows.Next() {
		values, err := scanValues(rows, len(columns))
		if err != nil {
			return nil, err
		}

		row := make([]string, len(values))
		for i, v := range values {
			row[i] = FormatValue(v)
		}
		data = append(data, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return models.NewRowsResult(columns, data), nil
}

// queryRows walks the result sets and keeps the first one with columns
func (c *SQLConn) queryRows(ctx context.Context, query string, args ...any) (*models.ResultSet, error) {
	rows, err := c.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for {
		set, err := readResultSet(rows)
		if err != nil {
			return nil, err
		}
		if set != nil {
			return set, nil
		}
		if !rows.NextResultSet() {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return models.NewAffectedResult(0), nil
}

func (c *SQLConn) exec(ctx context.Context, query string, args ...any) (*models.ResultSet, error) {
	res, err := c.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		n = 0
	}
	return models.NewAffectedResult(n), nil
}

// OpenCursor streams rows of query with raw driver values
func (c *SQLConn) OpenCursor(ctx context.Context, query string) (Cursor, error) {
	rows, err := c.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, &models.QueryError{Query: query, Err: err}
	}

	columns, err := rows.Columns()
	if err != nil {
		_ = rows.Close()
		return nil, &models.QueryError{Query: query, Err: err}
	}

	return &rowsCursor{rows: rows, width: len(columns)}, nil
}

// ExecBatch prepares query once and executes it for every row
func (c *SQLConn) ExecBatch(ctx context.Context, query string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	stmt, err := c.conn.PrepareContext(ctx, query)
	if err != nil {
		return 0, &models.QueryError{Query: query, Err: fmt.Errorf("failed to prepare statement: %w", err)}
	}
	defer func() { _ = stmt.Close() }()

	var total int64
	for i, row := range rows {
		res, err := stmt.ExecContext(ctx, row...)
		if err != nil {
			return total, &models.QueryError{Query: query, Err: fmt.Errorf("row %d: %w", i+1, err)}
		}
		if n, err := res.RowsAffected(); err == nil {
			total += n
		}
	}

	return total, nil
}

// BulkInsert loads rows into table with the SQL Server bulk copy protocol.
// Rows are buffered by the driver and sent in one round trip on the final
// flush. Other sessions return ErrBulkUnsupported.
func (c *SQLConn) BulkInsert(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if !c.bulk {
		return 0, ErrBulkUnsupported
	}
	if len(rows) == 0 {
		return 0, nil
	}

	query := mssql.CopyIn(table, mssql.BulkOptions{}, columns...)
	stmt, err := c.conn.PrepareContext(ctx, query)
	if err != nil {
		return 0, &models.QueryError{Query: "INSERT BULK " + table, Err: fmt.Errorf("failed to start bulk copy: %w", err)}
	}
	defer func() { _ = stmt.Close() }()

	for i, row := range rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return 0, &models.QueryError{Query: "INSERT BULK " + table, Err: fmt.Errorf("row %d: %w", i+1, err)}
		}
	}

	res, err := stmt.ExecContext(ctx)
	if err != nil {
		return 0, &models.QueryError{Query: "INSERT BULK " + table, Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		n = int64(len(rows))
	}
	return n, nil
}

// SwitchDatabase changes the session database. PostgreSQL has no USE, so
// the session is re-dialed against the new database.
func (c *SQLConn) SwitchDatabase(ctx context.Context, name string) error {
	if name == "" || name == c.database {
		return nil
	}

	switch c.dialect.Name() {
	case models.DriverPostgres:
		if err := c.redial(ctx, name); err != nil {
			return fmt.Errorf("failed to switch to database %s: %w", name, err)
		}
	default:
		if _, err := c.conn.ExecContext(ctx, "USE "+c.dialect.QuoteIdent(name)); err != nil {
			return fmt.Errorf("failed to switch to database %s: %w", name, err)
		}
	}

	c.logger.Debug("switched database", "from", c.database, "to", name)
	c.database = name
	return nil
}

func (c *SQLConn) redial(ctx context.Context, database string) error {
	config := c.config
	config.Database = database

	db, err := sql.Open(driverName(config.Driver), buildConnectionString(config))
	if err != nil {
		return err
	}
	db.SetMaxOpenConns(1)

	conn, err := db.Conn(ctx)
	if err != nil {
		_ = db.Close()
		return err
	}
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		_ = db.Close()
		return err
	}

	_ = c.conn.Close()
	_ = c.db.Close()

	c.db = db
	c.conn = conn
	c.config = config
	return nil
}

// refreshDatabase re-reads the session database after a USE issued by the user
func (c *SQLConn) refreshDatabase(ctx context.Context) {
	var name sql.NullString
	if err := c.conn.QueryRowContext(ctx, c.dialect.CurrentDatabaseQuery()).Scan(&name); err != nil {
		c.logger.Warn("failed to read current database", "error", err)
		return
	}
	if name.Valid {
		c.database = name.String
	}
}

func (c *SQLConn) CurrentDatabase() string { return c.database }

func (c *SQLConn) Dialect() Dialect { return c.dialect }

func (c *SQLConn) Label() string { return c.config.DisplayName() }

// Config returns the configuration the session was opened with
func (c *SQLConn) Config() models.ConnectionConfig { return c.config }

// Close releases the pinned connection and the pool. It is safe to call twice.
func (c *SQLConn) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true

	connErr := c.conn.Close()
	dbErr := c.db.Close()
	c.logger.Info("disconnected")

	if connErr != nil && !errors.Is(connErr, sql.ErrConnDone) {
		return connErr
	}
	return dbErr
}

type rowsCursor struct {
	rows  *sql.Rows
	width int
	done  bool
}

func (r *rowsCursor) Next(n int) ([][]any, error) {
	if r.done {
		return nil, nil
	}

	batch := make([][]any, 0, n)
	for len(batch) < n {
		if !r.rows.Next() {
			r.done = true
			if err := r.rows.Err(); err != nil {
				return nil, err
			}
			break
		}
		values, err := scanValues(r.rows, r.width)
		if err != nil {
			return nil, err
		}
		batch = append(batch, values)
	}
	return batch, nil
}

func (r *rowsCursor) Close() error {
	return r.rows.Close()
}

func scanValues(rows interface{ Scan(dest ...any) error }, width int) ([]any, error) {
	values := make([]any, width)
	ptrs := make([]any, width)
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}
	return values, nil
}

func driverName(driver string) string {
	if driver == models.DriverPostgres {
		return "pgx"
	}
	return "sqlserver"
}

// buildConnectionString creates a DSN for the configured driver
func buildConnectionString(config models.ConnectionConfig) string {
	host := config.Host + ":" + strconv.Itoa(config.Port)

	switch config.Driver {
	case models.DriverPostgres:
		sslMode := "disable"
		if config.Encrypt {
			sslMode = "verify-full"
			if config.TrustServerCertificate {
				sslMode = "require"
			}
		}
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(config.User, config.Password),
			Host:     host,
			Path:     "/" + config.Database,
			RawQuery: url.Values{"sslmode": {sslMode}, "application_name": {"lazyssms"}}.Encode(),
		}
		return u.String()
	default:
		query := url.Values{}
		if config.Database != "" {
			query.Set("database", config.Database)
		}
		query.Set("encrypt", strconv.FormatBool(config.Encrypt))
		query.Set("TrustServerCertificate", strconv.FormatBool(config.TrustServerCertificate))
		query.Set("app name", "lazyssms")
		u := url.URL{
			Scheme:   "sqlserver",
			User:     url.UserPassword(config.User, config.Password),
			Host:     host,
			RawQuery: query.Encode(),
		}
		return u.String()
	}
}

// countKeywords start statements that report only an affected-row count
var countKeywords = map[string]bool{
	"INSERT":   true,
	"UPDATE":   true,
	"DELETE":   true,
	"MERGE":    true,
	"TRUNCATE": true,
	"CREATE":   true,
	"ALTER":    true,
	"DROP":     true,
	"GRANT":    true,
	"REVOKE":   true,
	"DENY":     true,
	"USE":      true,
}

// ReturnsRows reports whether a statement has to be read as a query. Only
// a single DML or DDL statement without an OUTPUT or RETURNING clause is
// sent through Exec, so that its affected count is reported. Batches and
// everything else are queried and classified by the columns they return.
func ReturnsRows(query string) bool {
	trimmed := strings.TrimRight(strings.TrimSpace(query), "; \t\r\n")
	if strings.Contains(trimmed, ";") {
		return true
	}

	upper := strings.ToUpper(trimmed)
	if strings.Contains(upper, " OUTPUT ") || strings.Contains(upper, " RETURNING ") {
		return true
	}

	return !countKeywords[statementVerb(trimmed)]
}

// statementVerb is the leading keyword, or for a WITH statement the
// keyword that follows its common table expressions
func statementVerb(query string) string {
	word := strings.ToUpper(firstKeyword(query))
	if word != "WITH" {
		return word
	}

	depth := 0
	for _, field := range strings.FieldsFunc(query, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\r' || r == '\n' || r == ','
	}) {
		rest := strings.TrimLeft(field, "(")
		depth += len(field) - len(rest)
		word := strings.ToUpper(strings.TrimRight(rest, ")"))
		if depth == 0 && (word == "SELECT" || countKeywords[word]) {
			return word
		}
		depth += strings.Count(rest, "(") - strings.Count(rest, ")")
	}
	return word
}

func isUseStatement(query string) bool {
	return strings.EqualFold(firstKeyword(query), "USE")
}

// firstKeyword skips whitespace, comments and opening parentheses
func firstKeyword(query string) string {
	s := query
	for {
		s = strings.TrimLeft(s, " \t\r\n(")
		switch {
		case strings.HasPrefix(s, "--"):
			idx := strings.Index(s, "\n")
			if idx < 0 {
				return ""
			}
			s = s[idx+1:]
		case strings.HasPrefix(s, "/*"):
			idx := strings.Index(s, "*/")
			if idx < 0 {
				return ""
			}
			s = s[idx+2:]
		default:
			end := strings.IndexFunc(s, func(r rune) bool {
				return r == ' ' || r == '\t' || r == '\r' || r == '\n' || r == '(' || r == ';'
			})
			if end < 0 {
				return s
			}
			return s[:end]
		}
	}
}
