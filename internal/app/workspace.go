package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/rebeliceyang/lazyssms/internal/clipboard"
	"github.com/rebeliceyang/lazyssms/internal/db/connection"
	"github.com/rebeliceyang/lazyssms/internal/db/metadata"
	"github.com/rebeliceyang/lazyssms/internal/db/query"
	"github.com/rebeliceyang/lazyssms/internal/export"
	"github.com/rebeliceyang/lazyssms/internal/favorites"
	"github.com/rebeliceyang/lazyssms/internal/history"
	"github.com/rebeliceyang/lazyssms/internal/models"
	"github.com/rebeliceyang/lazyssms/internal/ui/components"
	"github.com/rebeliceyang/lazyssms/internal/ui/theme"
)

type overlay int

const (
	overlayNone overlay = iota
	overlayExport
	overlayFavorites
	overlayHistory
)

// WorkspaceState is the controller state threaded through every input
// step. Exactly one pane has focus; editing is a sub-mode of the editor.
type WorkspaceState struct {
	Focus         models.Focus
	Editing       bool
	Overlay       overlay
	Status        string
	StatusIsError bool
	Layout        layout
}

// DisconnectMsg asks the app to close the session and show the connect screen
type DisconnectMsg struct{}

// QuitMsg asks the app to close the session and exit
type QuitMsg struct{}

// OpenMirrorMsg asks the app to start the mirror flow
type OpenMirrorMsg struct{}

// ShowErrorMsg asks the app to show the error overlay
type ShowErrorMsg struct {
	Title   string
	Message string
}

func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

// WorkspaceOptions are the collaborators and settings of a workspace.
// Nil stores disable their features.
type WorkspaceOptions struct {
	Theme        theme.Theme
	Clipboard    clipboard.Clipboard
	History      *history.Store
	Favorites    *favorites.Manager
	QueryTimeout time.Duration
	MaxCellWidth int
	SampleRows   int
	HistoryLimit int
	// Home is the base of the default export path
	Home string
	Now  func() time.Time
}

// Workspace is the three-pane controller of one connected session
type Workspace struct {
	State WorkspaceState

	conn   connection.Connection
	cache  *metadata.Cache
	tabs   *components.QueryTabs
	editor *components.SQLEditor
	viewer *components.ResultViewer
	tree   *components.TreeView
	opts   WorkspaceOptions

	exportInput textinput.Model
	picker      *components.Picker
	favItems    []models.Favorite
	histItems   []history.Entry

	// listErr holds a failed database listing until a refresh or a
	// database switch, so keys do not retry it
	listErr error
}

// NewWorkspace creates a workspace over conn and loads the database list
func NewWorkspace(conn connection.Connection, opts WorkspaceOptions) *Workspace {
	if opts.Clipboard == nil {
		opts.Clipboard = &clipboard.Memory{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = 100
	}

	w := &Workspace{
		conn:   conn,
		cache:  metadata.NewCache(conn),
		tabs:   components.NewQueryTabs(opts.Theme),
		editor: components.NewSQLEditor(opts.Theme, opts.Clipboard, conn.Dialect().Lexer()),
		viewer: components.NewResultViewer(opts.Theme, opts.MaxCellWidth, opts.SampleRows),
		tree:   components.NewTreeView(opts.Theme),
		opts:   opts,
	}
	w.State.Focus = models.FocusTree
	w.syncEditor()
	w.State = w.ensureDatabases(w.State)
	return w
}

// Conn returns the session connection
func (w *Workspace) Conn() connection.Connection { return w.conn }

// Tabs returns the tab manager
func (w *Workspace) Tabs() *components.QueryTabs { return w.tabs }

// Update applies one message to the workspace
func (w *Workspace) Update(msg tea.Msg) tea.Cmd {
	next, cmd := w.step(w.State, msg)
	w.State = next
	return cmd
}

func (w *Workspace) step(s WorkspaceState, msg tea.Msg) (WorkspaceState, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.Layout = computeLayout(msg.Width, msg.Height)
		w.resize(s.Layout)
		return s, nil

	case tea.MouseMsg:
		return w.handleMouse(s, msg), nil

	case tea.KeyMsg:
		s.Status, s.StatusIsError = "", false

		var cmd tea.Cmd
		switch {
		case s.Overlay != overlayNone:
			s, cmd = w.handleOverlayKey(s, msg)
		case s.Editing:
			s, cmd = w.handleEditKey(s, msg)
		default:
			s, cmd = w.handleKey(s, msg)
		}
		return w.ensureDatabases(s), cmd
	}

	return s, nil
}

// handleKey dispatches global keys first and then the focused pane
func (w *Workspace) handleKey(s WorkspaceState, msg tea.KeyMsg) (WorkspaceState, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return s, emit(QuitMsg{})
	case key.Matches(msg, keys.Disconnect):
		return s, emit(DisconnectMsg{})
	case key.Matches(msg, keys.FocusNext):
		s.Focus = s.Focus.Next()
		return s, nil
	case key.Matches(msg, keys.FocusPrev):
		s.Focus = s.Focus.Prev()
		return s, nil
	case key.Matches(msg, keys.Execute):
		return w.execute(s, w.tabs.Active().Buffer.GatherText())
	case key.Matches(msg, keys.Export):
		return w.openExport(s)
	case key.Matches(msg, keys.Mirror):
		return s, emit(OpenMirrorMsg{})
	case key.Matches(msg, keys.Refresh):
		return w.refresh(s), nil
	case key.Matches(msg, keys.NewTab):
		w.tabs.NewTab("")
		w.syncEditor()
		return s, nil
	case key.Matches(msg, keys.CloseTab):
		w.tabs.CloseActive()
		w.syncEditor()
		return s, nil
	case key.Matches(msg, keys.NextTab):
		w.tabs.Next()
		w.syncEditor()
		return s, nil
	case key.Matches(msg, keys.PrevTab):
		w.tabs.Previous()
		w.syncEditor()
		return s, nil
	case key.Matches(msg, keys.SaveFav):
		return w.saveFavorite(s), nil
	case key.Matches(msg, keys.Favorites):
		return w.openFavorites(s), nil
	case key.Matches(msg, keys.History):
		return w.openHistory(s), nil
	}

	switch s.Focus {
	case models.FocusTree:
		return w.handleTreeKey(s, msg)
	case models.FocusEditor:
		if key.Matches(msg, keys.Edit) {
			w.editor.BeginEdit()
			s.Editing = true
		}
	case models.FocusResults:
		w.handleResultsKey(msg)
	}
	return s, nil
}

func (w *Workspace) handleTreeKey(s WorkspaceState, msg tea.KeyMsg) (WorkspaceState, tea.Cmd) {
	w.syncTree()
	node, ok := w.tree.Current()

	switch {
	case key.Matches(msg, keys.Up):
		w.tree.MoveUp()
	case key.Matches(msg, keys.Down):
		w.tree.MoveDown()
	case key.Matches(msg, keys.Right), key.Matches(msg, keys.Toggle):
		if ok {
			return w.toggleNode(s, node)
		}
	case key.Matches(msg, keys.Left):
		if ok && w.cache.Collapse(node) {
			w.syncTree()
		}
	case key.Matches(msg, keys.Enter):
		if ok {
			return w.activateNode(s, node)
		}
	case key.Matches(msg, keys.TemplateSelect):
		return w.fillTemplate(s, node, ok, metadata.TemplateSelect)
	case key.Matches(msg, keys.TemplateInsert):
		return w.fillTemplate(s, node, ok, metadata.TemplateInsert)
	case key.Matches(msg, keys.TemplateUpdate):
		return w.fillTemplate(s, node, ok, metadata.TemplateUpdate)
	case key.Matches(msg, keys.TemplateDelete):
		return w.fillTemplate(s, node, ok, metadata.TemplateDelete)
	}
	return s, nil
}

// toggleNode expands or collapses a database or table. A failed fetch
// leaves the tree unchanged.
func (w *Workspace) toggleNode(s WorkspaceState, node models.SchemaNode) (WorkspaceState, tea.Cmd) {
	ctx, cancel := w.queryContext()
	defer cancel()

	var err error
	switch node.Kind {
	case models.NodeDatabase:
		err = w.cache.ToggleDatabase(ctx, node.Database)
	case models.NodeTable:
		err = w.cache.ToggleTable(ctx, node.Database, node.Table)
	default:
		return s, nil
	}
	if err != nil {
		return w.reportError(s, err)
	}

	w.syncTree()
	return s, nil
}

// activateNode handles Enter: a database becomes the active context, a
// table gets a preview query.
func (w *Workspace) activateNode(s WorkspaceState, node models.SchemaNode) (WorkspaceState, tea.Cmd) {
	switch node.Kind {
	case models.NodeDatabase:
		ctx, cancel := w.queryContext()
		defer cancel()

		if err := w.conn.SwitchDatabase(ctx, node.Database); err != nil {
			return w.reportError(s, err)
		}
		slog.Info("database switched", "database", node.Database)

		w.resetSchema()
		s = w.ensureDatabases(s)
		if s.Status == "" {
			s.Status = "Using database " + node.Database
		}
		return s, nil

	case models.NodeTable:
		return w.fillTemplate(s, node, true, metadata.TemplateSelect)
	}
	return s, nil
}

// fillTemplate replaces the active buffer with a generated statement for
// a table, switching to its database first.
func (w *Workspace) fillTemplate(s WorkspaceState, node models.SchemaNode, ok bool, kind metadata.TemplateKind) (WorkspaceState, tea.Cmd) {
	if !ok || node.Kind != models.NodeTable {
		return s, nil
	}

	if node.Database != w.conn.CurrentDatabase() {
		ctx, cancel := w.queryContext()
		defer cancel()
		if err := w.conn.SwitchDatabase(ctx, node.Database); err != nil {
			return w.reportError(s, err)
		}
	}

	columns, _ := w.cache.CachedColumns(node.Database, node.Table)
	sql := metadata.Template(w.conn.Dialect(), kind, node.Table, columns)

	w.tabs.Active().Buffer.SetText(sql)
	w.syncEditor()
	s.Focus = models.FocusEditor
	return s, nil
}

func (w *Workspace) handleResultsKey(msg tea.KeyMsg) {
	tab := w.tabs.Active()
	page := w.viewer.VisibleRows()

	switch {
	case key.Matches(msg, keys.Up):
		w.viewer.ScrollBy(tab, -1, 0)
	case key.Matches(msg, keys.Down):
		w.viewer.ScrollBy(tab, 1, 0)
	case key.Matches(msg, keys.Left):
		w.viewer.ScrollBy(tab, 0, -3)
	case key.Matches(msg, keys.Right):
		w.viewer.ScrollBy(tab, 0, 3)
	case key.Matches(msg, keys.PageUp):
		w.viewer.ScrollBy(tab, -page, 0)
	case key.Matches(msg, keys.PageDown):
		w.viewer.ScrollBy(tab, page, 0)
	case key.Matches(msg, keys.Home):
		tab.ScrollRow, tab.ScrollCol = 0, 0
	case key.Matches(msg, keys.End):
		tab.ScrollRow = tab.Result.RowCount()
		w.viewer.ClampScroll(tab)
	}
}

// handleEditKey runs the editor's edit loop for one key
func (w *Workspace) handleEditKey(s WorkspaceState, msg tea.KeyMsg) (WorkspaceState, tea.Cmd) {
	if msg.Type == tea.KeyCtrlQ {
		return s, emit(QuitMsg{})
	}

	switch w.editor.HandleKey(msg) {
	case components.EditorExecute:
		w.editor.EndEdit()
		s.Editing = false
		return w.execute(s, w.tabs.Active().Buffer.GatherText())
	case components.EditorCancel:
		s.Editing = false
		s.Status = "Edit cancelled"
	case components.EditorFocusNext:
		s.Editing = false
		s.Focus = models.FocusResults
	case components.EditorFocusPrev:
		s.Editing = false
		s.Focus = models.FocusTree
	case components.EditorNewTab:
		w.tabs.NewTab("")
		w.restartEdit()
	case components.EditorCloseTab:
		w.tabs.CloseActive()
		w.restartEdit()
	case components.EditorNextTab:
		w.tabs.Next()
		w.restartEdit()
	case components.EditorPrevTab:
		w.tabs.Previous()
		w.restartEdit()
	}
	return s, nil
}

func (w *Workspace) restartEdit() {
	w.syncEditor()
	w.editor.BeginEdit()
}

// execute runs sql on the session connection and stores the outcome in
// the active tab. Failures become the tab's result; nothing escapes.
func (w *Workspace) execute(s WorkspaceState, sql string) (WorkspaceState, tea.Cmd) {
	if strings.TrimSpace(sql) == "" {
		s.Status = "Nothing to execute"
		return s, nil
	}

	ctx, cancel := w.queryContext()
	defer cancel()

	database := w.conn.CurrentDatabase()
	result := query.Execute(ctx, w.conn, sql)

	tab := w.tabs.Active()
	tab.SetResult(result)
	w.viewer.ClampScroll(tab)
	s.Focus = models.FocusResults

	w.recordHistory(database, sql, result)

	if result.Kind == models.ResultError {
		s.Status = "Query failed"
		s.StatusIsError = true
	} else if current := w.conn.CurrentDatabase(); current != database {
		s.Status = "Using database " + current
	}
	return s, nil
}

func (w *Workspace) recordHistory(database, sql string, result *models.ResultSet) {
	if w.opts.History == nil {
		return
	}

	entry := history.Entry{
		ConnectionName: w.conn.Label(),
		DatabaseName:   database,
		Query:          sql,
		ExecutedAt:     w.opts.Now(),
		Duration:       result.Duration,
		Success:        result.Kind != models.ResultError,
	}
	switch result.Kind {
	case models.ResultAffected:
		entry.RowsAffected = result.AffectedCount
	case models.ResultRows:
		entry.RowsAffected = int64(result.RowCount())
	case models.ResultError:
		entry.ErrorMessage = result.Err
	}

	if err := w.opts.History.Add(entry); err != nil {
		slog.Warn("failed to record query history", "error", err)
	}
}

// refresh drops every cached listing; the database list is fetched again
// at the end of the step.
func (w *Workspace) refresh(s WorkspaceState) WorkspaceState {
	w.resetSchema()
	s.Status = "Schema refreshed"
	return s
}

func (w *Workspace) resetSchema() {
	w.cache.Refresh()
	w.tree.CursorIndex = 0
	w.listErr = nil
}

// ensureDatabases fetches the database list when the cache is empty and
// the last attempt did not fail
func (w *Workspace) ensureDatabases(s WorkspaceState) WorkspaceState {
	if w.cache.Loaded() || w.listErr != nil {
		return s
	}

	ctx, cancel := w.queryContext()
	defer cancel()

	if _, err := w.cache.Databases(ctx); err != nil {
		slog.Warn("failed to load databases", "error", err)
		w.listErr = err
		s.Status = err.Error() + " (press r to retry)"
		s.StatusIsError = true
	}
	w.syncTree()
	return s
}

// reportError turns a classified error into workspace state. Connection
// failures go to the error overlay, everything else to the status line.
func (w *Workspace) reportError(s WorkspaceState, err error) (WorkspaceState, tea.Cmd) {
	var connErr *models.ConnectionError
	if errors.As(err, &connErr) {
		slog.Error("connection failure in workspace", "error", err)
		return s, emit(ShowErrorMsg{Title: "Connection Error", Message: err.Error()})
	}

	slog.Warn("workspace operation failed", "error", err)
	s.Status = err.Error()
	s.StatusIsError = true
	return s, nil
}

func (w *Workspace) openExport(s WorkspaceState) (WorkspaceState, tea.Cmd) {
	tab := w.tabs.Active()
	if tab.Result == nil || tab.Result.Kind != models.ResultRows {
		s.Status = "No results to export."
		return s, nil
	}

	input := textinput.New()
	input.Prompt = "Save to: "
	input.CharLimit = 1024
	input.Width = max(s.Layout.Width-20, 20)
	input.SetValue(export.DefaultPath(w.opts.Home, w.conn.CurrentDatabase(), w.opts.Now()))
	input.CursorEnd()
	cmd := input.Focus()

	w.exportInput = input
	s.Overlay = overlayExport
	return s, cmd
}

func (w *Workspace) saveFavorite(s WorkspaceState) WorkspaceState {
	if w.opts.Favorites == nil {
		s.Status = "Favorites are unavailable"
		return s
	}

	tab := w.tabs.Active()
	fav, replaced, err := w.opts.Favorites.Put(tab.Title, tab.Buffer.GatherText(), w.conn.Label(), w.conn.CurrentDatabase())
	if err != nil {
		s.Status = err.Error()
		s.StatusIsError = true
		return s
	}

	if replaced {
		s.Status = "Updated favorite " + fav.Name
	} else {
		s.Status = "Saved favorite " + fav.Name
	}
	return s
}

func (w *Workspace) openFavorites(s WorkspaceState) WorkspaceState {
	if w.opts.Favorites == nil {
		s.Status = "Favorites are unavailable"
		return s
	}

	w.favItems = w.opts.Favorites.GetAll()
	w.picker = components.NewPicker("Favorites", w.opts.Theme, favoriteItems(w.favItems))
	w.picker.Deletable = true
	w.sizePicker(s.Layout)
	s.Overlay = overlayFavorites
	return s
}

func favoriteItems(favs []models.Favorite) []components.PickerItem {
	items := make([]components.PickerItem, len(favs))
	for i, fav := range favs {
		items[i] = components.PickerItem{Label: fav.Name, Detail: firstLine(fav.Query)}
	}
	return items
}

func (w *Workspace) openHistory(s WorkspaceState) WorkspaceState {
	if w.opts.History == nil {
		s.Status = "Query history is unavailable"
		return s
	}

	entries, err := w.opts.History.GetRecent(w.opts.HistoryLimit)
	if err != nil {
		s.Status = err.Error()
		s.StatusIsError = true
		return s
	}

	w.histItems = entries
	items := make([]components.PickerItem, len(entries))
	for i, e := range entries {
		mark := "ok"
		if !e.Success {
			mark = "failed"
		}
		items[i] = components.PickerItem{
			Label:  firstLine(e.Query),
			Detail: fmt.Sprintf("%s  %s  %s", e.ExecutedAt.Local().Format("2006-01-02 15:04"), e.DatabaseName, mark),
		}
	}
	w.picker = components.NewPicker("Query History", w.opts.Theme, items)
	w.sizePicker(s.Layout)
	s.Overlay = overlayHistory
	return s
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		return s[:i] + " …"
	}
	return s
}

func (w *Workspace) handleOverlayKey(s WorkspaceState, msg tea.KeyMsg) (WorkspaceState, tea.Cmd) {
	if s.Overlay == overlayExport {
		return w.handleExportKey(s, msg)
	}

	switch w.picker.Update(msg) {
	case components.PickerCancel:
		s.Overlay = overlayNone
	case components.PickerDelete:
		if s.Overlay == overlayFavorites {
			fav := w.favItems[w.picker.Cursor()]
			if err := w.opts.Favorites.Delete(fav.ID); err != nil {
				s.Status = err.Error()
				s.StatusIsError = true
				return s, nil
			}
			w.favItems = w.opts.Favorites.GetAll()
			w.picker.SetItems(favoriteItems(w.favItems))
			s.Status = "Deleted favorite " + fav.Name
		}
	case components.PickerChoose:
		idx := w.picker.Cursor()
		chosen := s.Overlay
		s.Overlay = overlayNone
		s.Focus = models.FocusEditor

		switch chosen {
		case overlayFavorites:
			fav := w.favItems[idx]
			w.tabs.NewTab(fav.Query)
			if err := w.opts.Favorites.RecordUsage(fav.ID); err != nil {
				slog.Warn("failed to record favorite usage", "error", err)
			}
			s.Status = "Opened favorite " + fav.Name
		case overlayHistory:
			w.tabs.Active().Buffer.SetText(w.histItems[idx].Query)
		}
		w.syncEditor()
	}
	return s, nil
}

func (w *Workspace) handleExportKey(s WorkspaceState, msg tea.KeyMsg) (WorkspaceState, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		s.Overlay = overlayNone
		return s, nil
	case tea.KeyEnter:
		s.Overlay = overlayNone
		path := export.ExpandHome(strings.TrimSpace(w.exportInput.Value()), w.opts.Home)
		if path == "" {
			s.Status = "Export cancelled"
			return s, nil
		}
		if err := export.Write(path, w.tabs.Active().Result); err != nil {
			slog.Warn("export failed", "path", path, "error", err)
			s.Status = err.Error()
			s.StatusIsError = true
			return s, nil
		}
		slog.Info("results exported", "path", path)
		s.Status = "Saved to " + path
		return s, nil
	}

	var cmd tea.Cmd
	w.exportInput, cmd = w.exportInput.Update(msg)
	return s, cmd
}

// handleMouse focuses the pane under the pointer. Wheel gestures scroll
// the tree or the results.
func (w *Workspace) handleMouse(s WorkspaceState, msg tea.MouseMsg) WorkspaceState {
	if s.Overlay != overlayNone || s.Layout.TooSmall() {
		return s
	}

	wheel := 0
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		wheel = -3
	case tea.MouseButtonWheelDown:
		wheel = 3
	case tea.MouseButtonLeft:
		if msg.Action != tea.MouseActionPress {
			return s
		}
	default:
		return s
	}

	l := s.Layout
	var target models.Focus
	switch {
	case l.Tree.contains(msg.X, msg.Y):
		target = models.FocusTree
	case l.Editor.contains(msg.X, msg.Y):
		target = models.FocusEditor
	case l.Results.contains(msg.X, msg.Y):
		target = models.FocusResults
	default:
		return s
	}

	if s.Editing && target != models.FocusEditor {
		w.editor.EndEdit()
		s.Editing = false
	}
	s.Focus = target

	switch target {
	case models.FocusTree:
		w.syncTree()
		if wheel != 0 {
			w.tree.Scroll(wheel)
		} else {
			// border and title rows
			w.tree.SelectRow(msg.Y - l.Tree.Y - 2)
		}
	case models.FocusResults:
		if wheel != 0 {
			w.viewer.ScrollBy(w.tabs.Active(), wheel, 0)
		}
	}
	return s
}

func (w *Workspace) resize(l layout) {
	w.tree.Width = max(l.Tree.W-2, 0)
	w.tree.Height = max(l.Tree.H-3, 0)

	// one row for the tab bar
	w.editor.SetSize(max(l.Editor.W-2, 0), max(l.Editor.H-3, 0))

	w.viewer.Width = max(l.Results.W-2, 0)
	w.viewer.Height = max(l.Results.H-2, 0)
	w.viewer.ClampScroll(w.tabs.Active())

	w.sizePicker(l)
}

func (w *Workspace) sizePicker(l layout) {
	if w.picker == nil {
		return
	}
	w.picker.Width = max(min(l.Width-4, 100), 30)
	w.picker.Height = max(l.Height-4, 8)
}

func (w *Workspace) syncEditor() {
	w.editor.SetBuffer(w.tabs.Active().Buffer)
}

// syncTree projects the schema cache into the tree view
func (w *Workspace) syncTree() {
	w.tree.SetNodes(w.cache.TreeView(w.conn.Label()))
}

func (w *Workspace) queryContext() (context.Context, context.CancelFunc) {
	if w.opts.QueryTimeout > 0 {
		return context.WithTimeout(context.Background(), w.opts.QueryTimeout)
	}
	return context.WithCancel(context.Background())
}

// View renders the workspace
func (w *Workspace) View() string {
	s := w.State
	l := s.Layout
	th := w.opts.Theme

	if l.Width == 0 {
		return ""
	}
	if l.TooSmall() {
		msg := fmt.Sprintf("Terminal too small: %dx%d (minimum %dx%d)", l.Width, l.Height, MinWidth, MinHeight)
		return lipgloss.Place(l.Width, l.Height, lipgloss.Center, lipgloss.Center,
			lipgloss.NewStyle().Foreground(th.Warning).Render(msg))
	}

	switch s.Overlay {
	case overlayExport:
		box := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(th.BorderFocused).
			Padding(1, 2).
			Render(lipgloss.NewStyle().Bold(true).Foreground(th.Info).Render("Export results") +
				"\n\n" + w.exportInput.View() + "\n\n" +
				lipgloss.NewStyle().Foreground(th.Muted).Render("Enter to save, Esc to cancel. A .json path writes JSON."))
		return lipgloss.Place(l.Width, l.Height, lipgloss.Center, lipgloss.Center, box)
	case overlayFavorites, overlayHistory:
		return lipgloss.Place(l.Width, l.Height, lipgloss.Center, lipgloss.Center, w.picker.View())
	}

	w.syncTree()

	treePanel := components.Panel{
		Title:   "Schema",
		Content: w.tree.View(),
		Width:   l.Tree.W,
		Height:  l.Tree.H,
		Focused: s.Focus == models.FocusTree,
		Theme:   th,
	}
	editorPanel := components.Panel{
		Content: w.tabs.RenderTabBar(l.Editor.W-2) + "\n" + w.editor.View(),
		Width:   l.Editor.W,
		Height:  l.Editor.H,
		Focused: s.Focus == models.FocusEditor,
		Theme:   th,
	}
	resultsPanel := components.Panel{
		Content: w.viewer.View(w.tabs.Active()),
		Width:   l.Results.W,
		Height:  l.Results.H,
		Focused: s.Focus == models.FocusResults,
		Theme:   th,
	}

	right := lipgloss.JoinVertical(lipgloss.Left, editorPanel.View(), resultsPanel.View())
	body := lipgloss.JoinHorizontal(lipgloss.Top, treePanel.View(), right)

	return lipgloss.JoinVertical(lipgloss.Left, w.renderHeader(l.Width), body, w.renderFooter(l.Width))
}

func (w *Workspace) renderHeader(width int) string {
	th := w.opts.Theme
	mode := w.State.Focus.String()
	if w.State.Editing {
		mode += " [EDIT]"
	}

	left := fmt.Sprintf("lazyssms │ %s │ %s", w.conn.Label(), w.conn.CurrentDatabase())
	right := mode + " │ F1 help"
	return lipgloss.NewStyle().
		Width(width).
		Background(th.BorderFocused).
		Foreground(th.Background).
		Bold(true).
		Render(spread(left, right, width))
}

func (w *Workspace) renderFooter(width int) string {
	th := w.opts.Theme
	s := w.State

	text := s.Status
	color := th.Info
	switch {
	case text != "" && s.StatusIsError:
		color = th.Error
	case text == "" && s.Editing && w.editor.Status() != "":
		text = w.editor.Status()
	case text == "" && s.Editing:
		text = "F5 execute | Esc cancel | Tab leave | Ctrl+C copy | Ctrl+V paste"
		color = th.Muted
	case text == "":
		text = footerHints(keys.FocusNext, keys.Execute, keys.Export, keys.Mirror, keys.Refresh, keys.Disconnect, keys.Help)
		color = th.Muted
	}

	return lipgloss.NewStyle().
		Width(width).
		Foreground(color).
		Render(runewidth.Truncate(text, width, "…"))
}

// spread places left and right at the edges of width
func spread(left, right string, width int) string {
	lw := runewidth.StringWidth(left)
	rw := runewidth.StringWidth(right)
	if lw+rw+1 > width {
		return runewidth.Truncate(left, width, "…")
	}
	return left + strings.Repeat(" ", width-lw-rw) + right
}
