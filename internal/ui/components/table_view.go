package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/rebeliceyang/lazyssms/internal/models"
	"github.com/rebeliceyang/lazyssms/internal/ui/theme"
)

const (
	// FittedMaxCellWidth caps columns of the fitted table
	FittedMaxCellWidth = 30
	// ScrollMaxCellWidth caps columns of the scrollable workspace table
	ScrollMaxCellWidth = 60
	// DefaultSampleRows is how many rows are measured for column widths
	DefaultSampleRows = 200

	cellSeparator   = " | "
	headerSeparator = "-+-"
)

var cellReplacer = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ")

// ColumnWidths measures the header and up to sample rows, capping each
// column at maxCell display cells.
func ColumnWidths(columns []string, rows [][]string, sample, maxCell int) []int {
	widths := make([]int, len(columns))
	for i, col := range columns {
		widths[i] = runewidth.StringWidth(cellReplacer.Replace(col))
	}

	if sample > len(rows) || sample < 0 {
		sample = len(rows)
	}
	for _, row := range rows[:sample] {
		for i := 0; i < len(row) && i < len(widths); i++ {
			if w := runewidth.StringWidth(cellReplacer.Replace(row[i])); w > widths[i] {
				widths[i] = w
			}
		}
	}

	for i := range widths {
		if widths[i] > maxCell {
			widths[i] = maxCell
		}
		if widths[i] < 1 {
			widths[i] = 1
		}
	}
	return widths
}

// LineWidth is the display width of a row rendered with widths
func LineWidth(widths []int) int {
	if len(widths) == 0 {
		return 0
	}
	total := runewidth.StringWidth(cellSeparator) * (len(widths) - 1)
	for _, w := range widths {
		total += w
	}
	return total
}

// FormatTable renders every row, dropping columns from the right until the
// table fits maxWidth. At least one column is always kept.
func FormatTable(columns []string, rows [][]string, maxWidth, maxCell, sample int) []string {
	if len(columns) == 0 {
		return nil
	}

	widths := fittedWidths(columns, rows, maxWidth, maxCell, sample)
	n := len(widths)
	if n == 1 && widths[0] > maxWidth && maxWidth > 0 {
		widths[0] = maxWidth
	}

	lines := make([]string, 0, len(rows)+2)
	lines = append(lines, formatRow(columns, widths), formatSeparator(widths))
	for _, row := range rows {
		lines = append(lines, formatRow(row, widths))
	}
	return lines
}

// FittedColumns is how many leading columns FormatTable keeps
func FittedColumns(columns []string, rows [][]string, maxWidth, maxCell, sample int) int {
	return len(fittedWidths(columns, rows, maxWidth, maxCell, sample))
}

func fittedWidths(columns []string, rows [][]string, maxWidth, maxCell, sample int) []int {
	widths := ColumnWidths(columns, rows, sample, maxCell)
	n := len(widths)
	for n > 1 && LineWidth(widths[:n]) > maxWidth {
		n--
	}
	return widths[:n]
}

// FormatTableView renders the header, the separator and rows
// [startRow, startRow+maxRows). No column is dropped; the caller scrolls
// horizontally. totalWidth is the width of every returned line.
func FormatTableView(columns []string, rows [][]string, startRow, maxRows, maxCell, sample int) (lines []string, totalWidth int) {
	if len(columns) == 0 {
		return nil, 0
	}

	widths := ColumnWidths(columns, rows, sample, maxCell)

	startRow = clamp(startRow, 0, len(rows))
	end := min(startRow+max(maxRows, 0), len(rows))

	lines = make([]string, 0, end-startRow+2)
	lines = append(lines, formatRow(columns, widths), formatSeparator(widths))
	for _, row := range rows[startRow:end] {
		lines = append(lines, formatRow(row, widths))
	}
	return lines, LineWidth(widths)
}

func formatRow(cells []string, widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = cellReplacer.Replace(cells[i])
		}
		parts[i] = runewidth.FillRight(runewidth.Truncate(cell, w, ""), w)
	}
	return strings.Join(parts, cellSeparator)
}

func formatSeparator(widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		parts[i] = strings.Repeat("-", w)
	}
	return strings.Join(parts, headerSeparator)
}

// ClipLine returns the display columns [start, start+width) of s
func ClipLine(s string, start, width int) string {
	if width <= 0 {
		return ""
	}

	var b strings.Builder
	pos := 0
	used := 0
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if pos < start {
			pos += w
			if pos > start {
				// wide rune cut by the left edge
				b.WriteString(strings.Repeat(" ", pos-start))
				used += pos - start
			}
			continue
		}
		if used+w > width {
			break
		}
		b.WriteRune(r)
		used += w
		pos += w
	}
	return b.String()
}

// ResultViewer renders the active tab's result inside the results pane
type ResultViewer struct {
	Width  int
	Height int
	Theme  theme.Theme

	MaxCellWidth int
	SampleRows   int
}

// NewResultViewer creates a viewer with the given column cap and sample size
func NewResultViewer(th theme.Theme, maxCell, sample int) *ResultViewer {
	if maxCell <= 0 {
		maxCell = ScrollMaxCellWidth
	}
	if sample <= 0 {
		sample = DefaultSampleRows
	}
	return &ResultViewer{Theme: th, MaxCellWidth: maxCell, SampleRows: sample}
}

// VisibleRows is the number of data rows that fit under the title,
// header and separator lines.
func (v *ResultViewer) VisibleRows() int {
	return max(v.Height-3, 1)
}

// RenderedWidth is the full width of the result table
func (v *ResultViewer) RenderedWidth(r *models.ResultSet) int {
	if r == nil || r.Kind != models.ResultRows {
		return 0
	}
	return LineWidth(ColumnWidths(r.Columns, r.Rows, v.SampleRows, v.MaxCellWidth))
}

// ScrollBy moves the tab's result view, clamped to the table
func (v *ResultViewer) ScrollBy(tab *QueryTab, rows, cols int) {
	tab.ScrollRow += rows
	tab.ScrollCol += cols
	v.ClampScroll(tab)
}

// ClampScroll keeps offsets within [0, rowCount-visibleRows] and
// [0, renderedWidth-visibleWidth].
func (v *ResultViewer) ClampScroll(tab *QueryTab) {
	maxRow := max(tab.Result.RowCount()-v.VisibleRows(), 0)
	maxCol := max(v.RenderedWidth(tab.Result)-v.Width, 0)
	tab.ScrollRow = clamp(tab.ScrollRow, 0, maxRow)
	tab.ScrollCol = clamp(tab.ScrollCol, 0, maxCol)
}

// View renders the result of tab
func (v *ResultViewer) View(tab *QueryTab) string {
	if v.Width <= 0 || v.Height <= 0 {
		return ""
	}

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(v.Theme.Info)
	mutedStyle := lipgloss.NewStyle().Foreground(v.Theme.Muted).Italic(true)

	r := tab.Result
	if r == nil || r.Kind == models.ResultEmpty {
		return mutedStyle.Render(runewidth.Truncate("No results. Press F5 to execute the query.", v.Width, "…"))
	}

	switch r.Kind {
	case models.ResultError:
		errStyle := lipgloss.NewStyle().Bold(true).Foreground(v.Theme.Error)
		body := lipgloss.NewStyle().Width(v.Width).MaxHeight(v.Height - 1).Render(r.Err)
		return errStyle.Render(r.Title()) + "\n" + body

	case models.ResultAffected:
		okStyle := lipgloss.NewStyle().Bold(true).Foreground(v.Theme.Success)
		return okStyle.Render(r.Title()) + "\n" + mutedStyle.Render(formatDuration(r))
	}

	title := r.Title()
	if r.RowCount() > 0 {
		last := min(tab.ScrollRow+v.VisibleRows(), r.RowCount())
		title += fmt.Sprintf("  rows %d-%d", tab.ScrollRow+1, last)
	}
	title += "  " + formatDuration(r)

	lines, _ := FormatTableView(r.Columns, r.Rows, tab.ScrollRow, v.VisibleRows(), v.MaxCellWidth, v.SampleRows)
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(v.Theme.TableHeader)
	sepStyle := lipgloss.NewStyle().Foreground(v.Theme.Border)

	out := make([]string, 0, len(lines)+1)
	out = append(out, titleStyle.Render(runewidth.Truncate(title, v.Width, "…")))
	for i, line := range lines {
		clipped := ClipLine(line, tab.ScrollCol, v.Width)
		switch i {
		case 0:
			out = append(out, headerStyle.Render(clipped))
		case 1:
			out = append(out, sepStyle.Render(clipped))
		default:
			out = append(out, clipped)
		}
	}
	return strings.Join(out, "\n")
}

func formatDuration(r *models.ResultSet) string {
	if r.Duration <= 0 {
		return ""
	}
	return fmt.Sprintf("(%s)", r.Duration.Round(1e6))
}
