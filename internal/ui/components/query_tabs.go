package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/rebeliceyang/lazyssms/internal/models"
	"github.com/rebeliceyang/lazyssms/internal/ui/theme"
)

// QueryTab is one statement buffer plus its latest result
type QueryTab struct {
	ID     int
	Title  string
	Buffer *TextBuffer
	Result *models.ResultSet

	// result view offsets
	ScrollRow int
	ScrollCol int
}

// SetResult stores a new result and rewinds the result view
func (t *QueryTab) SetResult(r *models.ResultSet) {
	t.Result = r
	t.ScrollRow = 0
	t.ScrollCol = 0
}

func (t *QueryTab) clear() {
	t.Buffer.Clear()
	t.SetResult(nil)
}

// QueryTabs is the ordered, never empty, set of query tabs
type QueryTabs struct {
	tabs      []*QueryTab
	activeIdx int
	nextID    int
	Theme     theme.Theme
}

// NewQueryTabs creates a manager holding one empty tab
func NewQueryTabs(th theme.Theme) *QueryTabs {
	qt := &QueryTabs{nextID: 1, Theme: th}
	qt.NewTab("")
	return qt
}

// NewTab appends a tab and activates it
func (qt *QueryTabs) NewTab(initialText string) int {
	tab := &QueryTab{
		ID:     qt.nextID,
		Title:  fmt.Sprintf("SQLQuery_%d", qt.nextID),
		Buffer: NewTextBuffer(initialText),
	}
	qt.nextID++

	qt.tabs = append(qt.tabs, tab)
	qt.activeIdx = len(qt.tabs) - 1
	return qt.activeIdx
}

// CloseActive removes the active tab. The last remaining tab is cleared
// in place instead.
func (qt *QueryTabs) CloseActive() {
	if len(qt.tabs) == 1 {
		qt.tabs[0].clear()
		qt.activeIdx = 0
		return
	}

	qt.tabs = append(qt.tabs[:qt.activeIdx], qt.tabs[qt.activeIdx+1:]...)
	if qt.activeIdx >= len(qt.tabs) {
		qt.activeIdx = len(qt.tabs) - 1
	}
}

// Next switches to the next tab
func (qt *QueryTabs) Next() {
	qt.activeIdx = (qt.activeIdx + 1) % len(qt.tabs)
}

// Previous switches to the previous tab
func (qt *QueryTabs) Previous() {
	qt.activeIdx = (qt.activeIdx - 1 + len(qt.tabs)) % len(qt.tabs)
}

// Active returns the active tab
func (qt *QueryTabs) Active() *QueryTab {
	return qt.tabs[qt.activeIdx]
}

func (qt *QueryTabs) ActiveIndex() int { return qt.activeIdx }

func (qt *QueryTabs) Len() int { return len(qt.tabs) }

// Tabs returns the tabs in order
func (qt *QueryTabs) Tabs() []*QueryTab {
	return qt.tabs
}

// RenderTabBar renders the tab titles, keeping the active one visible
func (qt *QueryTabs) RenderTabBar(width int) string {
	activeStyle := lipgloss.NewStyle().
		Foreground(qt.Theme.Background).
		Background(qt.Theme.Info).
		Bold(true).
		Padding(0, 1)
	inactiveStyle := lipgloss.NewStyle().
		Foreground(qt.Theme.Foreground).
		Background(qt.Theme.Selection).
		Padding(0, 1)

	labels := make([]string, len(qt.tabs))
	for i, tab := range qt.tabs {
		label := tab.Title
		if tab.Result != nil && tab.Result.Kind == models.ResultError {
			label += " !"
		}
		labels[i] = label
	}

	// drop tabs from the left until the active one fits
	start := 0
	for start < qt.activeIdx && barWidth(labels[start:qt.activeIdx+1]) > width {
		start++
	}

	var views []string
	used := 0
	for i := start; i < len(labels); i++ {
		w := runewidth.StringWidth(labels[i]) + 3
		if used+w > width && i > qt.activeIdx {
			break
		}
		used += w

		if i == qt.activeIdx {
			views = append(views, activeStyle.Render(labels[i]))
		} else {
			views = append(views, inactiveStyle.Render(labels[i]))
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, views...)
}

func barWidth(labels []string) int {
	total := 0
	for _, l := range labels {
		total += runewidth.StringWidth(l) + 3
	}
	return total
}
