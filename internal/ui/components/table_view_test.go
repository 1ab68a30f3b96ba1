package components

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rebeliceyang/lazyssms/internal/models"
	"github.com/rebeliceyang/lazyssms/internal/ui/theme"
)

func TestColumnWidths(t *testing.T) {
	columns := []string{"id", "description"}
	rows := [][]string{
		{"1", "short"},
		{"12345", strings.Repeat("x", 80)},
	}

	assert.Equal(t, []int{5, 30}, ColumnWidths(columns, rows, 200, 30))
	assert.Equal(t, []int{2, 11}, ColumnWidths(columns, rows, 1, 30), "only sampled rows count")
	assert.Equal(t, []int{1}, ColumnWidths([]string{""}, nil, 200, 30))
}

func TestFormatTable(t *testing.T) {
	lines := FormatTable([]string{"x", "name"}, [][]string{{"1", "alice"}, {"22", "bob"}}, 80, 30, 200)

	require.Len(t, lines, 4)
	assert.Equal(t, "x  | name ", lines[0])
	assert.Equal(t, "---+------", lines[1])
	assert.Equal(t, "1  | alice", lines[2])
	assert.Equal(t, "22 | bob  ", lines[3])
}

func TestFormatTable_DropsColumnsFromRight(t *testing.T) {
	columns := []string{"aaaaaaaaaa", "bbbbbbbbbb", "cccccccccc"}
	rows := [][]string{{"1", "2", "3"}}

	lines := FormatTable(columns, rows, 25, 30, 200)
	assert.Equal(t, "aaaaaaaaaa | bbbbbbbbbb", lines[0])

	lines = FormatTable(columns, rows, 5, 30, 200)
	assert.Equal(t, "aaaaa", lines[0], "at least one column survives")
}

func TestFormatTableView_KeepsAllColumns(t *testing.T) {
	columns := []string{"aaaaaaaaaa", "bbbbbbbbbb", "cccccccccc"}
	rows := make([][]string, 50)
	for i := range rows {
		rows[i] = []string{fmt.Sprint(i), "b", "c"}
	}

	lines, width := FormatTableView(columns, rows, 10, 5, 60, 200)

	require.Len(t, lines, 7)
	assert.Equal(t, 36, width)
	assert.Equal(t, "aaaaaaaaaa | bbbbbbbbbb | cccccccccc", lines[0])
	assert.True(t, strings.HasPrefix(lines[2], "10 "))
	assert.True(t, strings.HasPrefix(lines[6], "14 "))
	for _, line := range lines {
		assert.Equal(t, width, runewidth.StringWidth(line))
	}

	lines, _ = FormatTableView(columns, rows, 48, 5, 60, 200)
	assert.Len(t, lines, 4, "page past the end is truncated")
}

func TestFormatTable_SanitizesAndTruncatesCells(t *testing.T) {
	lines := FormatTable([]string{"v"}, [][]string{{"a\nb\tc"}, {"日本語テキスト"}}, 80, 5, 200)

	assert.Equal(t, "a b c", lines[2])
	assert.Equal(t, "日本 ", lines[3])
}

func TestClipLine(t *testing.T) {
	assert.Equal(t, "cde", ClipLine("abcdefg", 2, 3))
	assert.Equal(t, "", ClipLine("abc", 5, 3))
	assert.Equal(t, " 本", ClipLine("日本", 1, 3), "a wide rune cut on the left becomes padding")
}

func TestResultViewer_ClampScroll(t *testing.T) {
	rows := make([][]string, 30)
	for i := range rows {
		rows[i] = []string{fmt.Sprint(i), strings.Repeat("x", 40)}
	}
	tab := &QueryTab{Result: models.NewRowsResult([]string{"id", "payload"}, rows)}

	v := NewResultViewer(theme.DefaultTheme(), 60, 200)
	v.Width = 20
	v.Height = 13

	require.Equal(t, 10, v.VisibleRows())
	require.Equal(t, 45, v.RenderedWidth(tab.Result))

	v.ScrollBy(tab, 100, 100)
	assert.Equal(t, 20, tab.ScrollRow)
	assert.Equal(t, 25, tab.ScrollCol)

	v.ScrollBy(tab, -100, -100)
	assert.Equal(t, 0, tab.ScrollRow)
	assert.Equal(t, 0, tab.ScrollCol)
}

func TestResultViewer_ClampScrollWithoutRows(t *testing.T) {
	tab := &QueryTab{Result: models.NewAffectedResult(0), ScrollRow: 3, ScrollCol: 3}
	v := NewResultViewer(theme.DefaultTheme(), 0, 0)
	v.Width, v.Height = 40, 10

	v.ClampScroll(tab)
	assert.Equal(t, 0, tab.ScrollRow)
	assert.Equal(t, 0, tab.ScrollCol)
}

func TestResultViewer_View(t *testing.T) {
	v := NewResultViewer(theme.DefaultTheme(), 60, 200)
	v.Width, v.Height = 60, 10

	tab := &QueryTab{}
	assert.Contains(t, v.View(tab), "No results")

	tab.SetResult(models.NewRowsResult([]string{"x"}, [][]string{{"1"}}))
	view := v.View(tab)
	assert.Contains(t, view, "Results (1 rows, 1 cols)")
	assert.Contains(t, view, "x")

	tab.SetResult(models.NewAffectedResult(0))
	assert.Contains(t, v.View(tab), "OK. Rows affected: 0")

	tab.SetResult(models.NewErrorResult(errors.New("Invalid object name 'nope'.")))
	view = v.View(tab)
	assert.Contains(t, view, "Error")
	assert.Contains(t, view, "Invalid object name")
}
