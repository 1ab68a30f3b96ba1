package components

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTextBuffer_EmptyHasOneLine(t *testing.T) {
	b := NewTextBuffer("")
	assert.Equal(t, 1, b.LineCount())
	assert.Equal(t, "", b.GatherText())

	b.Backspace()
	row, col := b.Cursor()
	assert.Equal(t, 0, row)
	assert.Equal(t, 0, col)
	assert.Equal(t, 1, b.LineCount())
}

func TestTextBuffer_NewlineThenBackspaceRestores(t *testing.T) {
	texts := []string{"SELECT 1", "", "a", "héllo wörld"}

	for _, text := range texts {
		for pos := 0; pos <= len([]rune(text)); pos++ {
			b := NewTextBuffer(text)
			b.SetCursor(0, pos)

			b.InsertNewline()
			row, col := b.Cursor()
			assert.Equal(t, 1, row)
			assert.Equal(t, 0, col)
			assert.Equal(t, 2, b.LineCount())

			b.Backspace()
			row, col = b.Cursor()
			assert.Equal(t, text, b.GatherText())
			assert.Equal(t, 0, row)
			assert.Equal(t, pos, col, "text %q pos %d", text, pos)
		}
	}
}

func TestTextBuffer_PasteEqualsTyping(t *testing.T) {
	inputs := []string{"SELECT * FROM t", "a\tb", "ctrl\x01chars", "ünïcode 日本"}

	for _, s := range inputs {
		typed := NewTextBuffer("x = ")
		pasted := NewTextBuffer("x = ")
		typed.SetCursor(0, 2)
		pasted.SetCursor(0, 2)

		for _, r := range s {
			typed.InsertChar(r)
		}
		pasted.PasteText(s)

		assert.Equal(t, typed.GatherText(), pasted.GatherText(), "input %q", s)
		tr, tc := typed.Cursor()
		pr, pc := pasted.Cursor()
		assert.Equal(t, tr, pr)
		assert.Equal(t, tc, pc)
	}
}

func TestTextBuffer_PasteNormalizesNewlines(t *testing.T) {
	b := NewTextBuffer("")
	b.PasteText("a\r\nb\rc\nd")

	assert.Equal(t, []string{"a", "b", "c", "d"}, b.Lines())
	row, col := b.Cursor()
	assert.Equal(t, 3, row)
	assert.Equal(t, 1, col)
}

func TestTextBuffer_DeleteForwardMergesLines(t *testing.T) {
	b := NewTextBuffer("ab\ncd")
	b.SetCursor(0, 2)

	b.DeleteForward()
	assert.Equal(t, "abcd", b.GatherText())

	b.SetCursor(0, 4)
	b.DeleteForward()
	assert.Equal(t, "abcd", b.GatherText())

	b.SetCursor(0, 0)
	b.DeleteForward()
	assert.Equal(t, "bcd", b.GatherText())
}

func TestTextBuffer_MoveCursor(t *testing.T) {
	b := NewTextBuffer("long line\nab\nxyz")

	b.SetCursor(0, 9)
	b.MoveCursor(CursorDown)
	row, col := b.Cursor()
	assert.Equal(t, 1, row)
	assert.Equal(t, 2, col, "column clamps to the shorter line")

	b.MoveCursor(CursorRight)
	row, col = b.Cursor()
	assert.Equal(t, 2, row, "right at end of line wraps")
	assert.Equal(t, 0, col)

	b.MoveCursor(CursorLeft)
	row, col = b.Cursor()
	assert.Equal(t, 1, row, "left at column 0 wraps")
	assert.Equal(t, 2, col)

	b.SetCursor(0, 0)
	b.MoveCursor(CursorUp)
	b.MoveCursor(CursorLeft)
	row, col = b.Cursor()
	assert.Equal(t, 0, row)
	assert.Equal(t, 0, col)

	b.SetCursor(2, 3)
	b.MoveCursor(CursorDown)
	b.MoveCursor(CursorRight)
	row, col = b.Cursor()
	assert.Equal(t, 2, row)
	assert.Equal(t, 3, col)

	b.Home()
	_, col = b.Cursor()
	assert.Equal(t, 0, col)
	b.End()
	_, col = b.Cursor()
	assert.Equal(t, 3, col)
}

func TestTextBuffer_InsertCharTabAndControl(t *testing.T) {
	b := NewTextBuffer("")
	b.InsertChar('\t')
	b.InsertChar(0x07)
	b.InsertChar('x')

	assert.Equal(t, "    x", b.GatherText())
}

func TestTextBuffer_ViewportFollowsCursor(t *testing.T) {
	b := NewTextBuffer("")
	b.Resize(5, 3)
	b.SetText("0\n1\n2\n3\n4\n5\n6\n7\n8\n9")

	row, _ := b.Scroll()
	assert.Equal(t, 7, row, "cursor on the last line keeps it at the bottom")
	assert.Equal(t, []string{"7", "8", "9"}, b.VisibleLines())

	b.SetCursor(5, 0)
	row, _ = b.Scroll()
	assert.Equal(t, 5, row, "moving up scrolls minimally")

	b.SetCursor(6, 0)
	row, _ = b.Scroll()
	assert.Equal(t, 5, row, "cursor already visible keeps the viewport")
}

func TestTextBuffer_HorizontalClip(t *testing.T) {
	b := NewTextBuffer("abcdefghij\nxy")
	b.Resize(4, 2)
	b.SetCursor(0, 10)

	_, col := b.Scroll()
	assert.Equal(t, 7, col)
	assert.Equal(t, []string{"hij", ""}, b.VisibleLines())

	b.Home()
	_, col = b.Scroll()
	assert.Equal(t, 0, col)
	assert.Equal(t, []string{"abcd", "xy"}, b.VisibleLines())
}

func TestTextBuffer_SetTextPlacesCursorAtEnd(t *testing.T) {
	b := NewTextBuffer("")
	b.SetText("SELECT 1\nFROM t")

	row, col := b.Cursor()
	assert.Equal(t, 1, row)
	assert.Equal(t, 6, col)
	assert.Equal(t, b.GatherText(), b.CopySelection())
	assert.False(t, b.IsEmpty())

	b.Clear()
	assert.True(t, b.IsEmpty())
}
