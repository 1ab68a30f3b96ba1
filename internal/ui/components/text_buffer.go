package components

import "strings"

// Direction of a cursor move
type Direction int

const (
	CursorLeft Direction = iota
	CursorRight
	CursorUp
	CursorDown
)

// TabWidth is the number of spaces a tab character expands to
const TabWidth = 4

// TextBuffer is a multi-line text model with a cursor and a viewport.
// It always holds at least one line and lines never contain '\n'.
// The screen is a projection of this model, never the other way round.
type TextBuffer struct {
	lines [][]rune
	row   int
	col   int

	scrollRow int
	scrollCol int
	width     int
	height    int
}

// NewTextBuffer creates a buffer holding text with the cursor at its end
func NewTextBuffer(text string) *TextBuffer {
	b := &TextBuffer{width: 1, height: 1}
	b.SetText(text)
	return b
}

// SetText replaces the content and moves the cursor to the end
func (b *TextBuffer) SetText(text string) {
	text = normalizeNewlines(text)
	parts := strings.Split(text, "\n")

	b.lines = make([][]rune, len(parts))
	for i, part := range parts {
		b.lines[i] = []rune(part)
	}

	b.row = len(b.lines) - 1
	b.col = len(b.lines[b.row])
	b.scrollRow, b.scrollCol = 0, 0
	b.follow()
}

// Clear empties the buffer
func (b *TextBuffer) Clear() {
	b.SetText("")
}

// GatherText joins the lines with '\n'
func (b *TextBuffer) GatherText() string {
	return strings.Join(b.Lines(), "\n")
}

// CopySelection returns the text to place on the clipboard. No selection
// range is modeled, so this is the whole buffer.
func (b *TextBuffer) CopySelection() string {
	return b.GatherText()
}

// IsEmpty reports whether the buffer holds only whitespace
func (b *TextBuffer) IsEmpty() bool {
	return strings.TrimSpace(b.GatherText()) == ""
}

// Lines returns a copy of the lines
func (b *TextBuffer) Lines() []string {
	out := make([]string, len(b.lines))
	for i, line := range b.lines {
		out[i] = string(line)
	}
	return out
}

func (b *TextBuffer) LineCount() int { return len(b.lines) }

// Cursor returns the cursor row and column
func (b *TextBuffer) Cursor() (row, col int) { return b.row, b.col }

// Scroll returns the viewport origin
func (b *TextBuffer) Scroll() (row, col int) { return b.scrollRow, b.scrollCol }

// SetCursor moves the cursor, clamped to the buffer
func (b *TextBuffer) SetCursor(row, col int) {
	b.row = clamp(row, 0, len(b.lines)-1)
	b.col = clamp(col, 0, len(b.lines[b.row]))
	b.follow()
}

// Resize sets the viewport size
func (b *TextBuffer) Resize(width, height int) {
	b.width = max(width, 1)
	b.height = max(height, 1)
	b.follow()
}

// InsertChar inserts r at the cursor. '\n' splits the line, a tab expands
// to spaces and other control characters are dropped.
func (b *TextBuffer) InsertChar(r rune) {
	switch {
	case r == '\n':
		b.InsertNewline()
		return
	case r == '\t':
		for i := 0; i < TabWidth; i++ {
			b.insertRune(' ')
		}
	case r < 0x20 || r == 0x7f:
		return
	default:
		b.insertRune(r)
	}
	b.follow()
}

func (b *TextBuffer) insertRune(r rune) {
	line := b.lines[b.row]
	next := make([]rune, 0, len(line)+1)
	next = append(next, line[:b.col]...)
	next = append(next, r)
	next = append(next, line[b.col:]...)
	b.lines[b.row] = next
	b.col++
}

// InsertNewline splits the current line at the cursor
func (b *TextBuffer) InsertNewline() {
	line := b.lines[b.row]
	head := append([]rune(nil), line[:b.col]...)
	tail := append([]rune(nil), line[b.col:]...)

	lines := make([][]rune, 0, len(b.lines)+1)
	lines = append(lines, b.lines[:b.row]...)
	lines = append(lines, head, tail)
	lines = append(lines, b.lines[b.row+1:]...)
	b.lines = lines

	b.row++
	b.col = 0
	b.follow()
}

// Backspace deletes before the cursor, merging with the previous line at
// column 0. It is a no-op at (0, 0).
func (b *TextBuffer) Backspace() {
	switch {
	case b.col > 0:
		line := b.lines[b.row]
		b.lines[b.row] = append(line[:b.col-1:b.col-1], line[b.col:]...)
		b.col--
	case b.row > 0:
		prev := b.lines[b.row-1]
		b.col = len(prev)
		b.lines[b.row-1] = append(prev[:len(prev):len(prev)], b.lines[b.row]...)
		b.lines = append(b.lines[:b.row], b.lines[b.row+1:]...)
		b.row--
	}
	b.follow()
}

// DeleteForward deletes at the cursor, merging with the next line at the
// end of a line.
func (b *TextBuffer) DeleteForward() {
	line := b.lines[b.row]
	switch {
	case b.col < len(line):
		b.lines[b.row] = append(line[:b.col:b.col], line[b.col+1:]...)
	case b.row < len(b.lines)-1:
		b.lines[b.row] = append(line[:len(line):len(line)], b.lines[b.row+1]...)
		b.lines = append(b.lines[:b.row+1], b.lines[b.row+2:]...)
	}
	b.follow()
}

// MoveCursor moves one step. Left and Right wrap across lines, Up and Down
// keep the column clamped to the target line.
func (b *TextBuffer) MoveCursor(dir Direction) {
	switch dir {
	case CursorLeft:
		if b.col > 0 {
			b.col--
		} else if b.row > 0 {
			b.row--
			b.col = len(b.lines[b.row])
		}
	case CursorRight:
		if b.col < len(b.lines[b.row]) {
			b.col++
		} else if b.row < len(b.lines)-1 {
			b.row++
			b.col = 0
		}
	case CursorUp:
		if b.row > 0 {
			b.row--
			b.col = min(b.col, len(b.lines[b.row]))
		}
	case CursorDown:
		if b.row < len(b.lines)-1 {
			b.row++
			b.col = min(b.col, len(b.lines[b.row]))
		}
	}
	b.follow()
}

// Home moves to the start of the line
func (b *TextBuffer) Home() {
	b.col = 0
	b.follow()
}

// End moves to the end of the line
func (b *TextBuffer) End() {
	b.col = len(b.lines[b.row])
	b.follow()
}

// PasteText inserts text at the cursor as if typed
func (b *TextBuffer) PasteText(text string) {
	for _, r := range normalizeNewlines(text) {
		b.InsertChar(r)
	}
}

// VisibleLines returns the viewport slice of the buffer, one string per
// screen row, each clipped to [scrollCol, scrollCol+width).
func (b *TextBuffer) VisibleLines() []string {
	end := min(b.scrollRow+b.height, len(b.lines))
	out := make([]string, 0, b.height)
	for i := b.scrollRow; i < end; i++ {
		line := b.lines[i]
		if b.scrollCol >= len(line) {
			out = append(out, "")
			continue
		}
		stop := min(b.scrollCol+b.width, len(line))
		out = append(out, string(line[b.scrollCol:stop]))
	}
	return out
}

// follow adjusts the viewport minimally so the cursor stays visible
func (b *TextBuffer) follow() {
	if b.row < b.scrollRow {
		b.scrollRow = b.row
	} else if b.row >= b.scrollRow+b.height {
		b.scrollRow = b.row - b.height + 1
	}

	if b.col < b.scrollCol {
		b.scrollCol = b.col
	} else if b.col >= b.scrollCol+b.width {
		b.scrollCol = b.col - b.width + 1
	}
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
