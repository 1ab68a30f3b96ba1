package models

import (
	"fmt"
	"strings"
)

// NodeKind tags a schema tree node
type NodeKind int

const (
	NodeRoot NodeKind = iota
	NodeDatabase
	NodeTable
	NodeColumn
)

func (k NodeKind) String() string {
	switch k {
	case NodeRoot:
		return "root"
	case NodeDatabase:
		return "database"
	case NodeTable:
		return "table"
	case NodeColumn:
		return "column"
	default:
		return "unknown"
	}
}

// TableKey identifies a table inside a database. Table is "schema.table".
type TableKey struct {
	Database string
	Table    string
}

// ColumnInfo holds metadata about a column
type ColumnInfo struct {
	Name     string
	DataType string
	Nullable bool
}

// SchemaNode is one visible row of the schema tree.
// Database and Table carry the keys of the node and its parents.
type SchemaNode struct {
	Kind     NodeKind
	Label    string
	Depth    int
	Expanded bool
	Database string
	Table    string
	Column   *ColumnInfo
}

// Expandable reports whether the node has a children list
func (n SchemaNode) Expandable() bool {
	return n.Kind == NodeDatabase || n.Kind == NodeTable
}

// BuildTreeView flattens the cached schema into the depth-ordered list of
// visible nodes. The root is always first and always expanded.
func BuildTreeView(
	rootLabel string,
	databases []string,
	expandedDBs map[string]bool,
	tables map[string][]string,
	expandedTables map[TableKey]bool,
	columns map[TableKey][]ColumnInfo,
) []SchemaNode {
	nodes := []SchemaNode{{Kind: NodeRoot, Label: rootLabel, Depth: 0, Expanded: true}}

	for _, db := range databases {
		dbExpanded := expandedDBs[db]
		nodes = append(nodes, SchemaNode{
			Kind:     NodeDatabase,
			Label:    db,
			Depth:    1,
			Expanded: dbExpanded,
			Database: db,
		})
		if !dbExpanded {
			continue
		}

		for _, table := range tables[db] {
			key := TableKey{Database: db, Table: table}
			tableExpanded := expandedTables[key]
			nodes = append(nodes, SchemaNode{
				Kind:     NodeTable,
				Label:    table,
				Depth:    2,
				Expanded: tableExpanded,
				Database: db,
				Table:    table,
			})
			if !tableExpanded {
				continue
			}

			for i := range columns[key] {
				col := columns[key][i]
				nodes = append(nodes, SchemaNode{
					Kind:     NodeColumn,
					Label:    ColumnLabel(col),
					Depth:    3,
					Database: db,
					Table:    table,
					Column:   &col,
				})
			}
		}
	}

	return nodes
}

// ColumnLabel renders a column as "name (type)", marking nullable columns
func ColumnLabel(col ColumnInfo) string {
	label := fmt.Sprintf("%s (%s)", col.Name, col.DataType)
	if col.Nullable {
		label += " NULL"
	}
	return label
}

// SplitTableName splits "schema.table" into its parts.
// A name without a schema belongs to defaultSchema.
func SplitTableName(name, defaultSchema string) (schema, table string) {
	if idx := strings.Index(name, "."); idx >= 0 {
		return name[:idx], name[idx+1:]
	}
	return defaultSchema, name
}
