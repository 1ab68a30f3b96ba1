package components

// TreeView renders the flattened schema tree with a cursor and a
// viewport that follows it.
//
// The node list is a projection of the schema cache and is replaced on
// every update with SetNodes; the view never changes it.
//
// Usage:
//
//	tv := components.NewTreeView(theme)
//	tv.SetNodes(cache.TreeView(label))
//	tv.MoveDown()
//	node, ok := tv.Current()

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/rebeliceyang/lazyssms/internal/models"
	"github.com/rebeliceyang/lazyssms/internal/ui/theme"
)

// TreeView represents the visual schema tree
type TreeView struct {
	Nodes        []models.SchemaNode // visible nodes, depth ordered
	CursorIndex  int                 // selected node
	Width        int                 // Display width
	Height       int                 // Display height
	Theme        theme.Theme         // Color theme
	ScrollOffset int                 // first rendered node
}

// NewTreeView creates an empty tree view
func NewTreeView(th theme.Theme) *TreeView {
	return &TreeView{
		Width:  40,
		Height: 20,
		Theme:  th,
	}
}

// SetNodes replaces the visible nodes, keeping the cursor in range
func (tv *TreeView) SetNodes(nodes []models.SchemaNode) {
	tv.Nodes = nodes
	tv.clampCursor()
}

// MoveUp moves the cursor up, wrapping to the last node
func (tv *TreeView) MoveUp() {
	if len(tv.Nodes) == 0 {
		return
	}
	tv.CursorIndex = (tv.CursorIndex - 1 + len(tv.Nodes)) % len(tv.Nodes)
}

// MoveDown moves the cursor down, wrapping to the root
func (tv *TreeView) MoveDown() {
	if len(tv.Nodes) == 0 {
		return
	}
	tv.CursorIndex = (tv.CursorIndex + 1) % len(tv.Nodes)
}

// Current returns the node under the cursor
func (tv *TreeView) Current() (models.SchemaNode, bool) {
	if tv.CursorIndex < 0 || tv.CursorIndex >= len(tv.Nodes) {
		return models.SchemaNode{}, false
	}
	return tv.Nodes[tv.CursorIndex], true
}

// SelectRow moves the cursor to the node rendered on screen row y
func (tv *TreeView) SelectRow(y int) bool {
	idx := tv.ScrollOffset + y
	if y < 0 || idx >= len(tv.Nodes) {
		return false
	}
	tv.CursorIndex = idx
	return true
}

// Scroll moves the viewport by delta rows, dragging the cursor along
func (tv *TreeView) Scroll(delta int) {
	if len(tv.Nodes) == 0 {
		return
	}
	tv.CursorIndex = clamp(tv.CursorIndex+delta, 0, len(tv.Nodes)-1)
}

func (tv *TreeView) clampCursor() {
	if len(tv.Nodes) == 0 {
		tv.CursorIndex = 0
		tv.ScrollOffset = 0
		return
	}
	tv.CursorIndex = clamp(tv.CursorIndex, 0, len(tv.Nodes)-1)
}

// View renders the visible part of the tree
func (tv *TreeView) View() string {
	if len(tv.Nodes) == 0 {
		return tv.emptyState()
	}

	tv.clampCursor()
	viewHeight := max(tv.Height, 1)
	tv.adjustScrollOffset(len(tv.Nodes), viewHeight)

	end := min(tv.ScrollOffset+viewHeight, len(tv.Nodes))
	lines := make([]string, 0, viewHeight)
	for i := tv.ScrollOffset; i < end; i++ {
		lines = append(lines, tv.renderNode(tv.Nodes[i], i == tv.CursorIndex))
	}

	return strings.Join(lines, "\n")
}

// renderNode renders a single tree node with appropriate styling
func (tv *TreeView) renderNode(node models.SchemaNode, selected bool) string {
	maxWidth := max(tv.Width, 1)

	indent := strings.Repeat("  ", node.Depth)
	icon := tv.getNodeIcon(node)
	content := runewidth.Truncate(indent+icon+" "+node.Label, maxWidth, "…")

	style := lipgloss.NewStyle().Foreground(tv.iconColor(node)).Width(maxWidth)
	if node.Kind == models.NodeColumn {
		style = style.Foreground(tv.Theme.Foreground)
	}
	if selected {
		style = style.
			Background(tv.Theme.Selection).
			Foreground(tv.Theme.Foreground).
			Bold(true)
	}

	return style.Render(content)
}

// getNodeIcon returns the appropriate icon for a node
func (tv *TreeView) getNodeIcon(node models.SchemaNode) string {
	switch node.Kind {
	case models.NodeColumn:
		return "•"
	case models.NodeRoot:
		return "◆"
	}
	if node.Expanded {
		return "▾"
	}
	return "▸"
}

func (tv *TreeView) iconColor(node models.SchemaNode) lipgloss.Color {
	switch node.Kind {
	case models.NodeDatabase:
		return tv.Theme.DatabaseIcon
	case models.NodeTable:
		return tv.Theme.TableIcon
	case models.NodeColumn:
		return tv.Theme.ColumnIcon
	default:
		return tv.Theme.Info
	}
}

// adjustScrollOffset adjusts the scroll offset to keep the cursor visible
func (tv *TreeView) adjustScrollOffset(totalNodes, viewHeight int) {
	if tv.CursorIndex < tv.ScrollOffset {
		tv.ScrollOffset = tv.CursorIndex
	}
	if tv.CursorIndex >= tv.ScrollOffset+viewHeight {
		tv.ScrollOffset = tv.CursorIndex - viewHeight + 1
	}

	maxScroll := max(totalNodes-viewHeight, 0)
	tv.ScrollOffset = clamp(tv.ScrollOffset, 0, maxScroll)
}

// emptyState returns the empty state view
func (tv *TreeView) emptyState() string {
	style := lipgloss.NewStyle().
		Foreground(tv.Theme.Muted).
		Italic(true).
		Width(max(tv.Width, 1)).
		Align(lipgloss.Center)

	return style.Render("No databases loaded")
}
