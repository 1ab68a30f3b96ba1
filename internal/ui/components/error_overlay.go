package components

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/rebeliceyang/lazyssms/internal/ui/theme"
)

// ErrorOverlay is a modal error box dismissed with Esc or Enter
type ErrorOverlay struct {
	Width int
	Theme theme.Theme

	title   string
	message string
}

// NewErrorOverlay creates an overlay
func NewErrorOverlay(th theme.Theme) *ErrorOverlay {
	return &ErrorOverlay{Width: 60, Theme: th}
}

// SetError sets the title and message to show
func (e *ErrorOverlay) SetError(title, message string) {
	e.title = title
	e.message = message
}

func (e *ErrorOverlay) Title() string   { return e.title }
func (e *ErrorOverlay) Message() string { return e.message }

// View renders the overlay box
func (e *ErrorOverlay) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(e.Theme.Error)
	bodyStyle := lipgloss.NewStyle().Foreground(e.Theme.Foreground).Width(max(e.Width-6, 10))
	hintStyle := lipgloss.NewStyle().Foreground(e.Theme.Muted).Italic(true)

	content := titleStyle.Render(e.title) + "\n\n" +
		bodyStyle.Render(e.message) + "\n\n" +
		hintStyle.Render("Press Esc or Enter to dismiss")

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(e.Theme.Error).
		Padding(1, 2).
		Width(e.Width).
		Render(content)
}
