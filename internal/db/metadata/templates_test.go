package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rebeliceyang/lazyssms/internal/db/connection"
	"github.com/rebeliceyang/lazyssms/internal/models"
)

func TestTemplate(t *testing.T) {
	columns := []models.ColumnInfo{{Name: "id"}, {Name: "name"}}

	tests := []struct {
		name    string
		kind    TemplateKind
		table   string
		columns []models.ColumnInfo
		want    string
	}{
		{"select default schema", TemplateSelect, "dbo.users", nil, "SELECT TOP 100 * FROM [users]"},
		{"select other schema", TemplateSelect, "sales.orders", nil, "SELECT TOP 100 * FROM [sales].[orders]"},
		{"insert placeholders", TemplateInsert, "dbo.users", nil, "INSERT INTO [users] (col1, col2) VALUES (val1, val2)"},
		{"insert known columns", TemplateInsert, "dbo.users", columns, "INSERT INTO [users] (id, name) VALUES (<id>, <name>)"},
		{"update placeholders", TemplateUpdate, "dbo.users", nil, "UPDATE [users] SET col1 = val1, col2 = val2 WHERE <condition>"},
		{"delete", TemplateDelete, "hr.staff", nil, "DELETE FROM [hr].[staff] WHERE <condition>"},
		{"bare name uses default schema", TemplateSelect, "users", nil, "SELECT TOP 100 * FROM [users]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Template(connection.SQLServer, tt.kind, tt.table, tt.columns))
		})
	}
}

func TestTemplate_Postgres(t *testing.T) {
	assert.Equal(t, `SELECT * FROM "users" LIMIT 100`, Template(connection.Postgres, TemplateSelect, "public.users", nil))
}
