package components

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rebeliceyang/lazyssms/internal/clipboard"
	"github.com/rebeliceyang/lazyssms/internal/ui/theme"
)

func newTestEditor(text string) (*SQLEditor, *clipboard.Memory) {
	cb := &clipboard.Memory{}
	e := NewSQLEditor(theme.DefaultTheme(), cb, "tsql")
	e.SetSize(60, 10)
	e.SetBuffer(NewTextBuffer(text))
	e.BeginEdit()
	return e, cb
}

func typeText(e *SQLEditor, s string) {
	for _, r := range s {
		if r == ' ' {
			e.HandleKey(tea.KeyMsg{Type: tea.KeySpace})
			continue
		}
		e.HandleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestSQLEditor_TypingAndExecute(t *testing.T) {
	e, _ := newTestEditor("")

	typeText(e, "SELECT 1")
	e.HandleKey(tea.KeyMsg{Type: tea.KeyEnter})
	typeText(e, "AS x")

	assert.Equal(t, "SELECT 1\nAS x", e.Buffer().GatherText())
	assert.Equal(t, EditorExecute, e.HandleKey(tea.KeyMsg{Type: tea.KeyF5}))
	assert.True(t, e.Editing(), "execute leaves edit mode to the workspace")
}

func TestSQLEditor_EscRestoresSnapshot(t *testing.T) {
	e, _ := newTestEditor("SELECT 1")

	typeText(e, "234")
	e.HandleKey(tea.KeyMsg{Type: tea.KeyBackspace})
	require.Equal(t, "SELECT 123", e.Buffer().GatherText())

	assert.Equal(t, EditorCancel, e.HandleKey(tea.KeyMsg{Type: tea.KeyEsc}))
	assert.Equal(t, "SELECT 1", e.Buffer().GatherText())
	assert.False(t, e.Editing())
}

func TestSQLEditor_TabKeepsText(t *testing.T) {
	e, _ := newTestEditor("")
	typeText(e, "abc")

	assert.Equal(t, EditorFocusNext, e.HandleKey(tea.KeyMsg{Type: tea.KeyTab}))
	assert.Equal(t, "abc", e.Buffer().GatherText())
	assert.False(t, e.Editing())

	e.BeginEdit()
	assert.Equal(t, EditorFocusPrev, e.HandleKey(tea.KeyMsg{Type: tea.KeyShiftTab}))
}

func TestSQLEditor_TabActions(t *testing.T) {
	e, _ := newTestEditor("")

	tests := []struct {
		key  tea.KeyType
		want EditorAction
	}{
		{tea.KeyCtrlN, EditorNewTab},
		{tea.KeyCtrlX, EditorCloseTab},
		{tea.KeyF8, EditorNextTab},
		{tea.KeyCtrlPgDown, EditorNextTab},
		{tea.KeyF7, EditorPrevTab},
		{tea.KeyCtrlPgUp, EditorPrevTab},
		{tea.KeyF2, EditorExecute},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, e.HandleKey(tea.KeyMsg{Type: tt.key}), tea.KeyMsg{Type: tt.key}.String())
	}
	assert.True(t, e.Editing())
}

func TestSQLEditor_CopyPaste(t *testing.T) {
	e, cb := newTestEditor("SELECT 1")

	e.HandleKey(tea.KeyMsg{Type: tea.KeyCtrlC})
	text, err := cb.Read()
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1", text)
	assert.Equal(t, "Copied to clipboard", e.Status())

	require.NoError(t, cb.Write("\r\nFROM t"))
	e.HandleKey(tea.KeyMsg{Type: tea.KeyCtrlV})
	assert.Equal(t, "SELECT 1\nFROM t", e.Buffer().GatherText())
}

func TestSQLEditor_BracketedPaste(t *testing.T) {
	e, _ := newTestEditor("")
	e.HandleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a\nb"), Paste: true})

	assert.Equal(t, []string{"a", "b"}, e.Buffer().Lines())
}

func TestSQLEditor_View(t *testing.T) {
	e, _ := newTestEditor("SELECT 1")
	view := e.View()

	assert.Contains(t, view, " 1 │ ")
	assert.Contains(t, view, "~")
}
