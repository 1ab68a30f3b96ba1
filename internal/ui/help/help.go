package help

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rebeliceyang/lazyssms/internal/ui/theme"
)

// KeyBinding represents a keyboard shortcut
type KeyBinding struct {
	Key         string
	Description string
}

// GetGlobalKeys returns global key bindings
func GetGlobalKeys() []KeyBinding {
	return []KeyBinding{
		{"F1", "Toggle help"},
		{"Tab / Shift+Tab", "Cycle pane focus"},
		{"F5", "Execute the active query"},
		{"F6", "Export results"},
		{"F9", "Mirror tables"},
		{"r", "Refresh schema"},
		{"Ctrl+S", "Save query as favorite"},
		{"F3", "Open favorites"},
		{"F4", "Open query history"},
		{"Esc", "Disconnect"},
		{"Ctrl+Q, Ctrl+C", "Quit"},
	}
}

// GetTabKeys returns query tab key bindings
func GetTabKeys() []KeyBinding {
	return []KeyBinding{
		{"Ctrl+N", "New tab"},
		{"Ctrl+X", "Close tab"},
		{"F8, Ctrl+PgDn", "Next tab"},
		{"F7, Ctrl+PgUp", "Previous tab"},
	}
}

// GetTreeKeys returns schema tree key bindings
func GetTreeKeys() []KeyBinding {
	return []KeyBinding{
		{"↑/↓", "Move (wraps)"},
		{"→, Space", "Expand or collapse"},
		{"←", "Collapse"},
		{"Enter", "Use database / SELECT TOP 100"},
		{"s / i / u / d", "SELECT / INSERT / UPDATE / DELETE template"},
	}
}

// GetEditorKeys returns editor key bindings
func GetEditorKeys() []KeyBinding {
	return []KeyBinding{
		{"Enter", "Start editing"},
		{"F5, F2", "Execute"},
		{"Esc", "Cancel edits"},
		{"Ctrl+C / Ctrl+V", "Copy buffer / paste"},
		{"Tab", "Leave editor keeping the text"},
	}
}

// GetResultKeys returns results pane key bindings
func GetResultKeys() []KeyBinding {
	return []KeyBinding{
		{"↑/↓", "Scroll rows"},
		{"←/→", "Scroll columns"},
		{"PgUp/PgDn", "Scroll a page"},
		{"Mouse wheel", "Scroll rows"},
	}
}

// Render creates the help view
func Render(width, height int, th theme.Theme) string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(th.Info)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(th.BorderFocused)

	keyStyle := lipgloss.NewStyle().
		Foreground(th.Warning).
		Width(20)

	descStyle := lipgloss.NewStyle().
		Foreground(th.Foreground)

	sections := []struct {
		name string
		keys []KeyBinding
	}{
		{"Global", GetGlobalKeys()},
		{"Tabs", GetTabKeys()},
		{"Schema Tree", GetTreeKeys()},
		{"Editor", GetEditorKeys()},
		{"Results", GetResultKeys()},
	}

	var left, right strings.Builder
	for i, section := range sections {
		b := &left
		if i >= 2 {
			b = &right
		}
		b.WriteString(sectionStyle.Render(section.name))
		b.WriteString("\n")
		for _, kb := range section.keys {
			b.WriteString("  ")
			b.WriteString(keyStyle.Render(kb.Key))
			b.WriteString(descStyle.Render(kb.Description))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().PaddingRight(4).Render(left.String()),
		right.String(),
	)

	content := titleStyle.Render("lazyssms - Keyboard Shortcuts") + "\n\n" +
		body + "\n" +
		lipgloss.NewStyle().Faint(true).Render("Press F1 or Esc to close help")

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(th.BorderFocused).
		Padding(1, 2).
		MaxWidth(width).
		MaxHeight(height).
		Render(content)
}
