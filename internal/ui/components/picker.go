package components

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/rebeliceyang/lazyssms/internal/ui/theme"
)

// PickerAction is the outcome of a key in a picker
type PickerAction int

const (
	PickerNone PickerAction = iota
	PickerChoose
	PickerCancel
	PickerDelete
)

// PickerItem is one row of a picker
type PickerItem struct {
	Label  string
	Detail string
}

// Picker is a modal list with single or multiple selection. It backs the
// favorites and history dialogs and the mirror flow steps.
type Picker struct {
	Title  string
	Width  int
	Height int
	Theme  theme.Theme

	// Multi enables space to mark items
	Multi bool
	// Deletable enables the delete key
	Deletable bool

	items    []PickerItem
	marked   map[int]bool
	selected int
	offset   int
}

// NewPicker creates a picker over items
func NewPicker(title string, th theme.Theme, items []PickerItem) *Picker {
	return &Picker{
		Title:  title,
		Width:  60,
		Height: 20,
		Theme:  th,
		items:  items,
		marked: make(map[int]bool),
	}
}

// SetItems replaces the items and resets the selection
func (p *Picker) SetItems(items []PickerItem) {
	p.items = items
	p.marked = make(map[int]bool)
	p.selected = 0
	p.offset = 0
}

func (p *Picker) Len() int { return len(p.items) }

// Cursor returns the highlighted index, -1 when empty
func (p *Picker) Cursor() int {
	if len(p.items) == 0 {
		return -1
	}
	return p.selected
}

// Marked returns the marked indexes in list order
func (p *Picker) Marked() []int {
	var out []int
	for i := range p.items {
		if p.marked[i] {
			out = append(out, i)
		}
	}
	return out
}

func (p *Picker) visibleHeight() int {
	return max(p.Height-6, 1)
}

// Update handles keyboard input
func (p *Picker) Update(msg tea.KeyMsg) PickerAction {
	switch msg.String() {
	case "esc", "q":
		return PickerCancel
	case "enter":
		if len(p.items) == 0 {
			return PickerNone
		}
		return PickerChoose
	case "up", "k":
		p.move(-1)
	case "down", "j":
		p.move(1)
	case "pgup":
		p.move(-p.visibleHeight())
	case "pgdown":
		p.move(p.visibleHeight())
	case "home", "g":
		p.move(-len(p.items))
	case "end", "G":
		p.move(len(p.items))
	case " ":
		if p.Multi && len(p.items) > 0 {
			p.marked[p.selected] = !p.marked[p.selected]
			p.move(1)
		}
	case "a":
		if p.Multi {
			all := len(p.Marked()) < len(p.items)
			for i := range p.items {
				p.marked[i] = all
			}
		}
	case "d", "delete":
		if p.Deletable && len(p.items) > 0 {
			return PickerDelete
		}
	}
	return PickerNone
}

func (p *Picker) move(delta int) {
	if len(p.items) == 0 {
		return
	}
	p.selected = clamp(p.selected+delta, 0, len(p.items)-1)

	visible := p.visibleHeight()
	if p.selected < p.offset {
		p.offset = p.selected
	}
	if p.selected >= p.offset+visible {
		p.offset = p.selected - visible + 1
	}
}

// View renders the picker
func (p *Picker) View() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(p.Theme.Info)
	selectedStyle := lipgloss.NewStyle().
		Background(p.Theme.Selection).
		Foreground(p.Theme.Foreground).
		Bold(true)
	detailStyle := lipgloss.NewStyle().Foreground(p.Theme.Muted)
	hintStyle := lipgloss.NewStyle().Foreground(p.Theme.Muted).Italic(true)

	inner := max(p.Width-6, 10)

	b.WriteString(titleStyle.Render(p.Title))
	if p.Multi {
		b.WriteString(detailStyle.Render(fmt.Sprintf("  (%d/%d selected)", len(p.Marked()), len(p.items))))
	}
	b.WriteString("\n\n")

	if len(p.items) == 0 {
		b.WriteString(hintStyle.Render("Nothing to show"))
		b.WriteString("\n")
	}

	end := min(p.offset+p.visibleHeight(), len(p.items))
	for i := p.offset; i < end; i++ {
		item := p.items[i]
		prefix := ""
		if p.Multi {
			prefix = "[ ] "
			if p.marked[i] {
				prefix = "[x] "
			}
		}

		line := prefix + item.Label
		if item.Detail != "" {
			line += "  " + detailStyle.Render(runewidth.Truncate(item.Detail, max(inner-runewidth.StringWidth(line)-2, 0), "…"))
		}
		line = runewidth.Truncate(line, inner, "…")

		if i == p.selected {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	hints := "↑↓: Move | Enter: Choose | Esc: Cancel"
	if p.Multi {
		hints = "↑↓: Move | Space: Mark | a: All | Enter: Continue | Esc: Cancel"
	}
	if p.Deletable {
		hints += " | d: Delete"
	}
	b.WriteString(hintStyle.Render(hints))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Theme.BorderFocused).
		Padding(1, 2).
		Width(p.Width).
		Render(b.String())
}
