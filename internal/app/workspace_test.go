package app

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rebeliceyang/lazyssms/internal/db/connection"
	"github.com/rebeliceyang/lazyssms/internal/favorites"
	"github.com/rebeliceyang/lazyssms/internal/history"
	"github.com/rebeliceyang/lazyssms/internal/models"
	"github.com/rebeliceyang/lazyssms/internal/ui/theme"
)

type fetchCounts struct {
	databases int
	tables    int
	columns   int
}

// newServerConn scripts a small SQL Server with two databases
func newServerConn(counts *fetchCounts) *connection.MockConn {
	conn := connection.NewMockConn("SERVER", "master")
	conn.ExecuteFunc = func(query string, args []any) (*models.ResultSet, error) {
		switch {
		case strings.Contains(query, "sys.databases"):
			counts.databases++
			return models.NewRowsResult([]string{"name"}, [][]string{{"master"}, {"sales"}}), nil
		case strings.Contains(query, "INFORMATION_SCHEMA.TABLES"):
			counts.tables++
			return models.NewRowsResult(
				[]string{"TABLE_SCHEMA", "TABLE_NAME"},
				[][]string{{"dbo", "orders"}, {"audit", "log"}},
			), nil
		case strings.Contains(query, "INFORMATION_SCHEMA.COLUMNS"):
			counts.columns++
			return models.NewRowsResult(
				[]string{"COLUMN_NAME", "DATA_TYPE", "IS_NULLABLE"},
				[][]string{{"id", "int", "NO"}, {"note", "nvarchar", "YES"}},
			), nil
		case strings.HasPrefix(query, "SELECT 1"):
			return models.NewRowsResult([]string{"x"}, [][]string{{"1"}}), nil
		case strings.HasPrefix(query, "UPDATE"):
			return models.NewAffectedResult(0), nil
		case strings.HasPrefix(query, "SELECT * FROM missing"):
			return nil, &models.QueryError{Query: query, Err: errors.New("Invalid object name 'missing'.")}
		}
		return nil, fmt.Errorf("unexpected query %q", query)
	}
	return conn
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func keyOf(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func newTestWorkspace(t *testing.T, conn connection.Connection, opts WorkspaceOptions) *Workspace {
	t.Helper()
	opts.Theme = theme.DefaultTheme()
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC) }
	}
	w := NewWorkspace(conn, opts)
	w.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return w
}

// cmdMsg runs a command and returns its message, or nil
func cmdMsg(cmd tea.Cmd) tea.Msg {
	if cmd == nil {
		return nil
	}
	return cmd()
}

func TestWorkspace_StartsOnTreeWithDatabases(t *testing.T) {
	counts := &fetchCounts{}
	w := newTestWorkspace(t, newServerConn(counts), WorkspaceOptions{})

	assert.Equal(t, models.FocusTree, w.State.Focus)
	assert.Equal(t, 1, counts.databases)

	w.syncTree()
	node, ok := w.tree.Current()
	require.True(t, ok)
	assert.Equal(t, models.NodeRoot, node.Kind)
	assert.Equal(t, "SERVER", node.Label)
}

func TestWorkspace_FocusCycle(t *testing.T) {
	w := newTestWorkspace(t, newServerConn(&fetchCounts{}), WorkspaceOptions{})

	want := []models.Focus{models.FocusEditor, models.FocusResults, models.FocusTree}
	for _, focus := range want {
		w.Update(keyOf(tea.KeyTab))
		assert.Equal(t, focus, w.State.Focus)
	}

	w.Update(keyOf(tea.KeyShiftTab))
	assert.Equal(t, models.FocusResults, w.State.Focus)
}

func TestWorkspace_Execute(t *testing.T) {
	tests := []struct {
		name     string
		sql      string
		wantKind models.ResultKind
		check    func(t *testing.T, w *Workspace)
	}{
		{
			name:     "select",
			sql:      "SELECT 1 AS x",
			wantKind: models.ResultRows,
			check: func(t *testing.T, w *Workspace) {
				r := w.tabs.Active().Result
				assert.Equal(t, []string{"x"}, r.Columns)
				assert.Equal(t, [][]string{{"1"}}, r.Rows)
				assert.False(t, w.State.StatusIsError)
			},
		},
		{
			name:     "update",
			sql:      "UPDATE t SET a = 1 WHERE 1 = 0",
			wantKind: models.ResultAffected,
			check: func(t *testing.T, w *Workspace) {
				assert.Equal(t, int64(0), w.tabs.Active().Result.AffectedCount)
			},
		},
		{
			name:     "failure stays in the tab",
			sql:      "SELECT * FROM missing",
			wantKind: models.ResultError,
			check: func(t *testing.T, w *Workspace) {
				assert.Contains(t, w.tabs.Active().Result.Err, "Invalid object name")
				assert.True(t, w.State.StatusIsError)
				assert.Equal(t, "Query failed", w.State.Status)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestWorkspace(t, newServerConn(&fetchCounts{}), WorkspaceOptions{})
			w.tabs.Active().Buffer.SetText(tt.sql)

			w.Update(keyOf(tea.KeyF5))

			result := w.tabs.Active().Result
			require.NotNil(t, result)
			assert.Equal(t, tt.wantKind, result.Kind)
			assert.Equal(t, models.FocusResults, w.State.Focus)
			tt.check(t, w)
		})
	}
}

func TestWorkspace_ExecuteBlank(t *testing.T) {
	conn := newServerConn(&fetchCounts{})
	w := newTestWorkspace(t, conn, WorkspaceOptions{})
	queries := len(conn.Queries)

	w.tabs.Active().Buffer.SetText("  \n\t")
	w.Update(keyOf(tea.KeyF5))

	assert.Nil(t, w.tabs.Active().Result)
	assert.Equal(t, "Nothing to execute", w.State.Status)
	assert.Len(t, conn.Queries, queries)
}

func TestWorkspace_EditAndExecute(t *testing.T) {
	w := newTestWorkspace(t, newServerConn(&fetchCounts{}), WorkspaceOptions{})

	w.Update(keyOf(tea.KeyTab))
	w.Update(keyOf(tea.KeyEnter))
	require.True(t, w.State.Editing)

	w.Update(keyRunes("SELECT 1"))
	w.Update(keyOf(tea.KeyF5))

	assert.False(t, w.State.Editing)
	assert.Equal(t, "SELECT 1", w.tabs.Active().Buffer.GatherText())
	require.NotNil(t, w.tabs.Active().Result)
	assert.Equal(t, models.ResultRows, w.tabs.Active().Result.Kind)
}

func TestWorkspace_ResultsBelongToTheirTab(t *testing.T) {
	w := newTestWorkspace(t, newServerConn(&fetchCounts{}), WorkspaceOptions{})

	w.tabs.Active().Buffer.SetText("SELECT 1")
	w.Update(keyOf(tea.KeyF5))
	first := w.tabs.Active()

	w.Update(keyOf(tea.KeyCtrlN))
	assert.Len(t, w.tabs.Tabs(), 2)
	assert.Nil(t, w.tabs.Active().Result)

	w.Update(keyOf(tea.KeyF7))
	assert.Same(t, first, w.tabs.Active())
	assert.NotNil(t, w.tabs.Active().Result)
}

func TestWorkspace_TreeToggleFetchesOnce(t *testing.T) {
	counts := &fetchCounts{}
	w := newTestWorkspace(t, newServerConn(counts), WorkspaceOptions{})

	w.Update(keyOf(tea.KeyDown))
	for i := 0; i < 4; i++ {
		w.Update(keyOf(tea.KeyRight))
	}

	assert.Equal(t, 1, counts.tables)
	assert.Equal(t, 1, counts.databases)
}

func TestWorkspace_TemplatesFillBuffer(t *testing.T) {
	counts := &fetchCounts{}
	w := newTestWorkspace(t, newServerConn(counts), WorkspaceOptions{})

	// root, master, dbo.orders
	w.Update(keyOf(tea.KeyDown))
	w.Update(keyOf(tea.KeyRight))
	w.Update(keyOf(tea.KeyDown))

	w.Update(keyRunes("i"))
	assert.Equal(t, models.FocusEditor, w.State.Focus)
	text := w.tabs.Active().Buffer.GatherText()
	assert.True(t, strings.HasPrefix(text, "INSERT INTO "), text)
	assert.Contains(t, text, "(col1, col2)")

	// expanding the table caches its columns for the next template
	w.Update(keyOf(tea.KeyShiftTab))
	require.Equal(t, models.FocusTree, w.State.Focus)
	w.Update(keyOf(tea.KeyRight))
	assert.Equal(t, 1, counts.columns)

	w.Update(keyRunes("u"))
	text = w.tabs.Active().Buffer.GatherText()
	assert.Contains(t, text, "id = <id>, note = <note>")
	assert.True(t, strings.HasSuffix(text, "WHERE <condition>"), text)

	w.Update(keyOf(tea.KeyShiftTab))
	w.Update(keyOf(tea.KeyEnter))
	text = w.tabs.Active().Buffer.GatherText()
	assert.True(t, strings.HasPrefix(text, "SELECT TOP 100 * FROM "), text)
}

func TestWorkspace_EnterOnDatabaseSwitchesContext(t *testing.T) {
	counts := &fetchCounts{}
	conn := newServerConn(counts)
	w := newTestWorkspace(t, conn, WorkspaceOptions{})

	// root, master, sales
	w.Update(keyOf(tea.KeyDown))
	w.Update(keyOf(tea.KeyDown))
	w.Update(keyOf(tea.KeyEnter))

	assert.Equal(t, "sales", conn.CurrentDatabase())
	assert.Equal(t, "Using database sales", w.State.Status)
	assert.Equal(t, 2, counts.databases)
}

func TestWorkspace_Refresh(t *testing.T) {
	counts := &fetchCounts{}
	w := newTestWorkspace(t, newServerConn(counts), WorkspaceOptions{})

	w.Update(keyOf(tea.KeyDown))
	w.Update(keyOf(tea.KeyRight))
	require.Equal(t, 1, counts.tables)

	w.Update(keyRunes("r"))
	assert.Equal(t, "Schema refreshed", w.State.Status)
	assert.Equal(t, 2, counts.databases)

	// the expansion was dropped with the cache
	w.Update(keyOf(tea.KeyDown))
	w.Update(keyOf(tea.KeyRight))
	assert.Equal(t, 2, counts.tables)
}

func TestWorkspace_FailedDatabaseListWaitsForRefresh(t *testing.T) {
	counts := &fetchCounts{}
	conn := newServerConn(counts)
	serve := conn.ExecuteFunc
	down := true
	conn.ExecuteFunc = func(query string, args []any) (*models.ResultSet, error) {
		if down && strings.Contains(query, "sys.databases") {
			counts.databases++
			return nil, errors.New("login lacks VIEW ANY DATABASE")
		}
		return serve(query, args)
	}

	w := newTestWorkspace(t, conn, WorkspaceOptions{})
	require.Equal(t, 1, counts.databases)
	assert.True(t, w.State.StatusIsError)

	for range 5 {
		w.Update(keyOf(tea.KeyDown))
	}
	assert.Equal(t, 1, counts.databases, "keys do not retry a failed listing")

	down = false
	w.Update(keyRunes("r"))
	assert.Equal(t, 2, counts.databases)
	assert.Equal(t, "Schema refreshed", w.State.Status)
	assert.False(t, w.State.StatusIsError)
}

func TestWorkspace_FailedExpandReportsConnectionError(t *testing.T) {
	conn := newServerConn(&fetchCounts{})
	w := newTestWorkspace(t, conn, WorkspaceOptions{})

	conn.SwitchFunc = func(string) error {
		return &models.ConnectionError{Target: "SERVER", Err: errors.New("connection reset by peer")}
	}

	// root, master, sales: expanding sales needs a switch
	w.Update(keyOf(tea.KeyDown))
	w.Update(keyOf(tea.KeyDown))
	cmd := w.Update(keyOf(tea.KeyRight))

	msg, ok := cmdMsg(cmd).(ShowErrorMsg)
	require.True(t, ok)
	assert.Equal(t, "Connection Error", msg.Title)

	node, ok := w.tree.Current()
	require.True(t, ok)
	assert.False(t, node.Expanded)
}

func TestWorkspace_GlobalMessages(t *testing.T) {
	tests := []struct {
		name string
		key  tea.KeyMsg
		want tea.Msg
	}{
		{"disconnect", keyOf(tea.KeyEsc), DisconnectMsg{}},
		{"quit", keyOf(tea.KeyCtrlQ), QuitMsg{}},
		{"mirror", keyOf(tea.KeyF9), OpenMirrorMsg{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestWorkspace(t, newServerConn(&fetchCounts{}), WorkspaceOptions{})
			assert.Equal(t, tt.want, cmdMsg(w.Update(tt.key)))
		})
	}
}

func TestWorkspace_MouseFocus(t *testing.T) {
	w := newTestWorkspace(t, newServerConn(&fetchCounts{}), WorkspaceOptions{})
	l := w.State.Layout

	click := func(x, y int) {
		w.Update(tea.MouseMsg{X: x, Y: y, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	}

	click(l.Results.X+5, l.Results.Y+3)
	assert.Equal(t, models.FocusResults, w.State.Focus)

	click(l.Editor.X+5, l.Editor.Y+3)
	assert.Equal(t, models.FocusEditor, w.State.Focus)

	click(l.Tree.X+2, l.Tree.Y+3)
	assert.Equal(t, models.FocusTree, w.State.Focus)
	node, ok := w.tree.Current()
	require.True(t, ok)
	assert.Equal(t, "master", node.Label)
}

func TestWorkspace_MouseClickEndsEdit(t *testing.T) {
	w := newTestWorkspace(t, newServerConn(&fetchCounts{}), WorkspaceOptions{})
	w.Update(keyOf(tea.KeyTab))
	w.Update(keyOf(tea.KeyEnter))
	require.True(t, w.State.Editing)

	l := w.State.Layout
	w.Update(tea.MouseMsg{X: l.Results.X + 5, Y: l.Results.Y + 3, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})

	assert.False(t, w.State.Editing)
	assert.Equal(t, models.FocusResults, w.State.Focus)
}

func TestWorkspace_TooSmall(t *testing.T) {
	w := newTestWorkspace(t, newServerConn(&fetchCounts{}), WorkspaceOptions{})
	w.Update(tea.WindowSizeMsg{Width: 60, Height: 15})

	assert.Contains(t, w.View(), "Terminal too small: 60x15")
}

func TestWorkspace_ExportWithoutResults(t *testing.T) {
	w := newTestWorkspace(t, newServerConn(&fetchCounts{}), WorkspaceOptions{})

	w.Update(keyOf(tea.KeyF6))
	assert.Equal(t, overlayNone, w.State.Overlay)
	assert.Equal(t, "No results to export.", w.State.Status)
}

func TestWorkspace_ExportWritesFile(t *testing.T) {
	home := t.TempDir()
	w := newTestWorkspace(t, newServerConn(&fetchCounts{}), WorkspaceOptions{Home: home})

	w.tabs.Active().Buffer.SetText("SELECT 1")
	w.Update(keyOf(tea.KeyF5))

	w.Update(keyOf(tea.KeyF6))
	require.Equal(t, overlayExport, w.State.Overlay)
	path := w.exportInput.Value()
	assert.True(t, strings.HasPrefix(path, home), path)

	w.Update(keyOf(tea.KeyEnter))
	assert.Equal(t, overlayNone, w.State.Overlay)
	assert.Equal(t, "Saved to "+path, w.State.Status)
	assert.FileExists(t, path)
}

func TestWorkspace_HistoryAndFavorites(t *testing.T) {
	dir := t.TempDir()
	store, err := history.NewStore(filepath.Join(dir, "history.db"), 100)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	favs, err := favorites.NewManager(dir)
	require.NoError(t, err)

	w := newTestWorkspace(t, newServerConn(&fetchCounts{}), WorkspaceOptions{History: store, Favorites: favs})

	w.tabs.Active().Buffer.SetText("SELECT 1")
	w.Update(keyOf(tea.KeyF5))

	entries, err := store.GetRecent(10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "SELECT 1", entries[0].Query)
	assert.Equal(t, "master", entries[0].DatabaseName)
	assert.True(t, entries[0].Success)

	w.Update(keyOf(tea.KeyCtrlS))
	assert.Equal(t, "Saved favorite SQLQuery_1", w.State.Status)
	w.Update(keyOf(tea.KeyCtrlS))
	assert.Equal(t, "Updated favorite SQLQuery_1", w.State.Status)
	require.Len(t, favs.GetAll(), 1)

	// history loads into the active buffer
	w.tabs.Active().Buffer.SetText("")
	w.Update(keyOf(tea.KeyF4))
	require.Equal(t, overlayHistory, w.State.Overlay)
	w.Update(keyOf(tea.KeyEnter))
	assert.Equal(t, overlayNone, w.State.Overlay)
	assert.Equal(t, "SELECT 1", w.tabs.Active().Buffer.GatherText())

	// favorites open in a new tab
	w.Update(keyOf(tea.KeyF3))
	require.Equal(t, overlayFavorites, w.State.Overlay)
	w.Update(keyOf(tea.KeyEnter))
	assert.Len(t, w.tabs.Tabs(), 2)
	assert.Equal(t, "SELECT 1", w.tabs.Active().Buffer.GatherText())
	assert.Equal(t, 1, favs.GetAll()[0].UsageCount)

	// and can be deleted from the picker
	w.Update(keyOf(tea.KeyF3))
	w.Update(keyRunes("d"))
	assert.Empty(t, favs.GetAll())
	w.Update(keyOf(tea.KeyEsc))
	assert.Equal(t, overlayNone, w.State.Overlay)
}
