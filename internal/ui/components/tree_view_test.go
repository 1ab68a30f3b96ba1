package components

import (
	"strings"
	"testing"

	"github.com/rebeliceyang/lazyssms/internal/models"
	"github.com/rebeliceyang/lazyssms/internal/ui/theme"
)

func testNodes(databases ...string) []models.SchemaNode {
	return models.BuildTreeView("SERVER", databases, nil, nil, nil, nil)
}

func TestNewTreeView(t *testing.T) {
	tv := NewTreeView(theme.DefaultTheme())

	if tv.CursorIndex != 0 {
		t.Errorf("Expected initial cursor index 0, got %d", tv.CursorIndex)
	}
	if tv.ScrollOffset != 0 {
		t.Errorf("Expected initial scroll offset 0, got %d", tv.ScrollOffset)
	}
	if _, ok := tv.Current(); ok {
		t.Error("Expected no current node on an empty tree")
	}
}

func TestTreeView_EmptyState(t *testing.T) {
	tv := NewTreeView(theme.DefaultTheme())
	tv.Width = 40
	tv.Height = 20

	view := tv.View()
	if !strings.Contains(view, "No databases loaded") {
		t.Error("Expected empty state message")
	}
}

func TestTreeView_NavigationWraps(t *testing.T) {
	tv := NewTreeView(theme.DefaultTheme())
	tv.SetNodes(testNodes("db1", "db2"))

	// root, db1, db2
	tv.MoveDown()
	tv.MoveDown()
	if tv.CursorIndex != 2 {
		t.Errorf("Expected cursor at 2, got %d", tv.CursorIndex)
	}

	tv.MoveDown()
	if tv.CursorIndex != 0 {
		t.Errorf("Expected cursor to wrap to 0, got %d", tv.CursorIndex)
	}

	tv.MoveUp()
	if tv.CursorIndex != 2 {
		t.Errorf("Expected cursor to wrap to 2, got %d", tv.CursorIndex)
	}
}

func TestTreeView_SetNodesClampsCursor(t *testing.T) {
	tv := NewTreeView(theme.DefaultTheme())
	tv.SetNodes(testNodes("db1", "db2", "db3"))
	tv.CursorIndex = 3

	tv.SetNodes(testNodes("db1"))
	if tv.CursorIndex != 1 {
		t.Errorf("Expected cursor clamped to 1, got %d", tv.CursorIndex)
	}

	node, ok := tv.Current()
	if !ok || node.Label != "db1" {
		t.Errorf("Expected current node db1, got %+v", node)
	}
}

func TestTreeView_GetNodeIcon(t *testing.T) {
	tv := NewTreeView(theme.DefaultTheme())

	tests := []struct {
		name string
		node models.SchemaNode
		want string
	}{
		{"collapsed database", models.SchemaNode{Kind: models.NodeDatabase}, "▸"},
		{"expanded database", models.SchemaNode{Kind: models.NodeDatabase, Expanded: true}, "▾"},
		{"expanded table", models.SchemaNode{Kind: models.NodeTable, Expanded: true}, "▾"},
		{"column", models.SchemaNode{Kind: models.NodeColumn}, "•"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tv.getNodeIcon(tt.node); got != tt.want {
				t.Errorf("getNodeIcon() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTreeView_ViewportScrolling(t *testing.T) {
	databases := make([]string, 20)
	for i := 0; i < 20; i++ {
		databases[i] = "db" + string(rune('A'+i))
	}

	tv := NewTreeView(theme.DefaultTheme())
	tv.SetNodes(testNodes(databases...))
	tv.Width = 40
	tv.Height = 10

	tv.CursorIndex = 20
	_ = tv.View()

	if tv.CursorIndex < tv.ScrollOffset || tv.CursorIndex >= tv.ScrollOffset+tv.Height {
		t.Errorf("Cursor %d should be visible with scroll offset %d and height %d",
			tv.CursorIndex, tv.ScrollOffset, tv.Height)
	}

	tv.CursorIndex = 0
	_ = tv.View()
	if tv.ScrollOffset != 0 {
		t.Errorf("Expected scroll offset 0 when cursor at top, got %d", tv.ScrollOffset)
	}
}

func TestTreeView_SelectRow(t *testing.T) {
	tv := NewTreeView(theme.DefaultTheme())
	tv.SetNodes(testNodes("db1", "db2", "db3"))
	tv.ScrollOffset = 1

	if !tv.SelectRow(1) {
		t.Fatal("Expected row 1 to be selectable")
	}
	if tv.CursorIndex != 2 {
		t.Errorf("Expected cursor at 2, got %d", tv.CursorIndex)
	}

	if tv.SelectRow(10) {
		t.Error("Expected row past the end to be rejected")
	}
}

func TestTreeView_RendersDepthIndent(t *testing.T) {
	nodes := models.BuildTreeView(
		"SERVER",
		[]string{"sales"},
		map[string]bool{"sales": true},
		map[string][]string{"sales": {"dbo.orders"}},
		nil, nil,
	)

	tv := NewTreeView(theme.DefaultTheme())
	tv.Width = 40
	tv.Height = 10
	tv.SetNodes(nodes)

	view := tv.View()
	if !strings.Contains(view, "    ▸ dbo.orders") {
		t.Errorf("Expected table indented at depth 2, got:\n%s", view)
	}
	if !strings.Contains(view, "  ▾ sales") {
		t.Errorf("Expected expanded database at depth 1, got:\n%s", view)
	}
}
