package components

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rebeliceyang/lazyssms/internal/clipboard"
	"github.com/rebeliceyang/lazyssms/internal/ui/theme"
)

// EditorAction is what an edit-mode key asks the workspace to do
type EditorAction int

const (
	EditorNone EditorAction = iota
	EditorExecute
	EditorCancel
	EditorFocusNext
	EditorFocusPrev
	EditorNewTab
	EditorCloseTab
	EditorNextTab
	EditorPrevTab
)

// SQLEditor is the interactive edit loop over the active tab's TextBuffer
type SQLEditor struct {
	Width  int
	Height int
	Theme  theme.Theme

	Clipboard   clipboard.Clipboard
	Highlighter *Highlighter

	buffer   *TextBuffer
	editing  bool
	snapshot string
	status   string
}

// NewSQLEditor creates an editor; SetBuffer must be called before use
func NewSQLEditor(th theme.Theme, cb clipboard.Clipboard, lexer string) *SQLEditor {
	return &SQLEditor{
		Theme:       th,
		Clipboard:   cb,
		Highlighter: NewHighlighter(lexer, th.ChromaStyle),
	}
}

// SetBuffer points the editor at a tab's buffer
func (e *SQLEditor) SetBuffer(b *TextBuffer) {
	e.buffer = b
	e.resizeBuffer()
}

func (e *SQLEditor) Buffer() *TextBuffer { return e.buffer }

// SetSize sets the content area available to the editor
func (e *SQLEditor) SetSize(width, height int) {
	e.Width = width
	e.Height = height
	e.resizeBuffer()
}

func (e *SQLEditor) resizeBuffer() {
	if e.buffer == nil {
		return
	}
	e.buffer.Resize(e.Width-e.gutterWidth(), e.Height)
}

// BeginEdit enters edit mode and remembers the text for cancel
func (e *SQLEditor) BeginEdit() {
	e.editing = true
	e.status = ""
	if e.buffer != nil {
		e.snapshot = e.buffer.GatherText()
	}
}

// EndEdit leaves edit mode keeping the text
func (e *SQLEditor) EndEdit() {
	e.editing = false
}

func (e *SQLEditor) Editing() bool { return e.editing }

// Status returns the last clipboard message
func (e *SQLEditor) Status() string { return e.status }

// HandleKey applies an edit-mode key to the buffer and returns the action
// the workspace has to carry out.
func (e *SQLEditor) HandleKey(msg tea.KeyMsg) EditorAction {
	if e.buffer == nil {
		return EditorNone
	}
	b := e.buffer
	defer e.resizeBuffer()

	switch msg.Type {
	case tea.KeyF5, tea.KeyF2:
		return EditorExecute
	case tea.KeyEsc:
		b.SetText(e.snapshot)
		e.editing = false
		return EditorCancel
	case tea.KeyTab:
		e.editing = false
		return EditorFocusNext
	case tea.KeyShiftTab:
		e.editing = false
		return EditorFocusPrev
	case tea.KeyCtrlN:
		return EditorNewTab
	case tea.KeyCtrlX:
		return EditorCloseTab
	case tea.KeyF8, tea.KeyCtrlPgDown:
		return EditorNextTab
	case tea.KeyF7, tea.KeyCtrlPgUp:
		return EditorPrevTab

	case tea.KeyCtrlC:
		e.copy()
	case tea.KeyCtrlV:
		e.paste()

	case tea.KeyEnter:
		b.InsertNewline()
	case tea.KeyBackspace:
		b.Backspace()
	case tea.KeyDelete:
		b.DeleteForward()
	case tea.KeyLeft:
		b.MoveCursor(CursorLeft)
	case tea.KeyRight:
		b.MoveCursor(CursorRight)
	case tea.KeyUp:
		b.MoveCursor(CursorUp)
	case tea.KeyDown:
		b.MoveCursor(CursorDown)
	case tea.KeyHome:
		b.Home()
	case tea.KeyEnd:
		b.End()
	case tea.KeySpace:
		b.InsertChar(' ')
	case tea.KeyRunes:
		if msg.Paste {
			b.PasteText(string(msg.Runes))
			break
		}
		for _, r := range msg.Runes {
			b.InsertChar(r)
		}
	}

	return EditorNone
}

func (e *SQLEditor) copy() {
	if e.Clipboard == nil {
		return
	}
	if err := e.Clipboard.Write(e.buffer.CopySelection()); err != nil {
		e.status = err.Error()
		return
	}
	e.status = "Copied to clipboard"
}

func (e *SQLEditor) paste() {
	if e.Clipboard == nil {
		return
	}
	text, err := e.Clipboard.Read()
	if err != nil {
		e.status = err.Error()
		return
	}
	e.buffer.PasteText(text)
}

// View renders the visible part of the buffer. The cursor is drawn only
// while editing.
func (e *SQLEditor) View() string {
	if e.buffer == nil || e.Width <= 0 || e.Height <= 0 {
		return ""
	}

	gutter := e.gutterWidth()
	lineNumStyle := lipgloss.NewStyle().Foreground(e.Theme.Muted)
	sepStyle := lipgloss.NewStyle().Foreground(e.Theme.Border)

	scrollRow, scrollCol := e.buffer.Scroll()
	cursorRow, cursorCol := e.buffer.Cursor()
	visible := e.buffer.VisibleLines()

	lines := make([]string, 0, e.Height)
	for i := 0; i < e.Height; i++ {
		lineNum := scrollRow + i
		var number string
		if i < len(visible) {
			number = fmt.Sprintf("%*d", gutter-3, lineNum+1)
		} else {
			number = fmt.Sprintf("%*s", gutter-3, "~")
		}
		prefix := lineNumStyle.Render(number) + sepStyle.Render(" │ ")

		if i >= len(visible) {
			lines = append(lines, prefix)
			continue
		}

		text := visible[i]
		if e.editing && lineNum == cursorRow {
			lines = append(lines, prefix+e.renderCursorLine(text, cursorCol-scrollCol))
		} else {
			lines = append(lines, prefix+e.Highlighter.Line(text))
		}
	}

	return strings.Join(lines, "\n")
}

func (e *SQLEditor) renderCursorLine(text string, col int) string {
	runes := []rune(text)
	cursorStyle := lipgloss.NewStyle().
		Foreground(e.Theme.Background).
		Background(e.Theme.Cursor)

	if col < 0 {
		col = 0
	}
	if col >= len(runes) {
		return e.Highlighter.Line(text) + cursorStyle.Render(" ")
	}

	return e.Highlighter.Line(string(runes[:col])) +
		cursorStyle.Render(string(runes[col])) +
		e.Highlighter.Line(string(runes[col+1:]))
}

// gutterWidth returns the width of the line number column
func (e *SQLEditor) gutterWidth() int {
	maxLine := 10
	if e.buffer != nil && e.buffer.LineCount() > maxLine {
		maxLine = e.buffer.LineCount()
	}
	digits := len(fmt.Sprintf("%d", maxLine))
	return digits + 3
}
