package metadata

import (
	"context"

	"github.com/rebeliceyang/lazyssms/internal/db/connection"
	"github.com/rebeliceyang/lazyssms/internal/models"
)

// Cache memoizes database, table and column listings of one session
// together with the expand state of the schema tree. Listings are fetched
// at most once per key until Refresh.
type Cache struct {
	conn connection.Connection

	databases       []string
	databasesLoaded bool
	tables          map[string][]string
	columns         map[models.TableKey][]models.ColumnInfo

	expandedDBs    map[string]bool
	expandedTables map[models.TableKey]bool
}

// NewCache creates an empty cache for conn
func NewCache(conn connection.Connection) *Cache {
	c := &Cache{conn: conn}
	c.Refresh()
	return c
}

// Refresh drops every cached listing and collapses the tree
func (c *Cache) Refresh() {
	c.databases = nil
	c.databasesLoaded = false
	c.tables = make(map[string][]string)
	c.columns = make(map[models.TableKey][]models.ColumnInfo)
	c.expandedDBs = make(map[string]bool)
	c.expandedTables = make(map[models.TableKey]bool)
}

// Loaded reports whether the database list is cached
func (c *Cache) Loaded() bool {
	return c.databasesLoaded
}

// Databases returns the database list, fetching it on first use
func (c *Cache) Databases(ctx context.Context) ([]string, error) {
	if c.databasesLoaded {
		return c.databases, nil
	}

	databases, err := ListDatabases(ctx, c.conn)
	if err != nil {
		return nil, err
	}

	c.databases = databases
	c.databasesLoaded = true
	return databases, nil
}

// Tables returns the tables of database, fetching them on first use
func (c *Cache) Tables(ctx context.Context, database string) ([]string, error) {
	if tables, ok := c.tables[database]; ok {
		return tables, nil
	}

	tables, err := ListTables(ctx, c.conn, database)
	if err != nil {
		return nil, err
	}

	c.tables[database] = tables
	return tables, nil
}

// Columns returns the columns of a table, fetching them on first use
func (c *Cache) Columns(ctx context.Context, database, table string) ([]models.ColumnInfo, error) {
	key := models.TableKey{Database: database, Table: table}
	if columns, ok := c.columns[key]; ok {
		return columns, nil
	}

	schema, name := models.SplitTableName(table, c.conn.Dialect().DefaultSchema())
	columns, err := ListColumns(ctx, c.conn, database, schema, name)
	if err != nil {
		return nil, err
	}

	c.columns[key] = columns
	return columns, nil
}

// CachedColumns returns the columns of a table only if already cached
func (c *Cache) CachedColumns(database, table string) ([]models.ColumnInfo, bool) {
	columns, ok := c.columns[models.TableKey{Database: database, Table: table}]
	return columns, ok
}

// ToggleDatabase expands database, fetching its tables if needed, or
// collapses it when already expanded. On error the tree is unchanged.
func (c *Cache) ToggleDatabase(ctx context.Context, database string) error {
	if c.expandedDBs[database] {
		delete(c.expandedDBs, database)
		return nil
	}

	if _, err := c.Tables(ctx, database); err != nil {
		return err
	}
	c.expandedDBs[database] = true
	return nil
}

// ToggleTable expands or collapses the column list of a table
func (c *Cache) ToggleTable(ctx context.Context, database, table string) error {
	key := models.TableKey{Database: database, Table: table}
	if c.expandedTables[key] {
		delete(c.expandedTables, key)
		return nil
	}

	if _, err := c.Columns(ctx, database, table); err != nil {
		return err
	}
	c.expandedTables[key] = true
	return nil
}

// Collapse hides the children of node. It reports whether anything changed.
func (c *Cache) Collapse(node models.SchemaNode) bool {
	switch node.Kind {
	case models.NodeDatabase:
		if c.expandedDBs[node.Database] {
			delete(c.expandedDBs, node.Database)
			return true
		}
	case models.NodeTable:
		key := models.TableKey{Database: node.Database, Table: node.Table}
		if c.expandedTables[key] {
			delete(c.expandedTables, key)
			return true
		}
	}
	return false
}

// TreeView projects the cache into the visible node list
func (c *Cache) TreeView(rootLabel string) []models.SchemaNode {
	return models.BuildTreeView(rootLabel, c.databases, c.expandedDBs, c.tables, c.expandedTables, c.columns)
}
