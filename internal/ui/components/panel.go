package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/rebeliceyang/lazyssms/internal/ui/theme"
)

// Panel represents a bordered workspace pane. Width and Height are the
// outer size including the border.
type Panel struct {
	Title   string
	Content string
	Width   int
	Height  int
	Focused bool
	Theme   theme.Theme
}

// InnerSize returns the space left for content under the title
func (p *Panel) InnerSize() (width, height int) {
	width = max(p.Width-2, 0)
	height = max(p.Height-2, 0)
	if p.Title != "" {
		height = max(height-1, 0)
	}
	return width, height
}

// View renders the panel
func (p *Panel) View() string {
	if p.Width <= 2 || p.Height <= 2 {
		return ""
	}

	borderColor := p.Theme.Border
	if p.Focused {
		borderColor = p.Theme.BorderFocused
	}

	style := lipgloss.NewStyle().
		Width(p.Width - 2).
		Height(p.Height - 2).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor)

	content := p.Content
	if p.Title != "" {
		titleStyle := lipgloss.NewStyle().Bold(true).Foreground(borderColor)
		content = titleStyle.Render(runewidth.Truncate(p.Title, p.Width-2, "…")) + "\n" + content
	}

	lines := strings.Split(content, "\n")
	if len(lines) > p.Height-2 {
		lines = lines[:p.Height-2]
	}

	return style.Render(strings.Join(lines, "\n"))
}
