package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rebeliceyang/lazyssms/internal/db/connection"
	"github.com/rebeliceyang/lazyssms/internal/db/metadata"
	"github.com/rebeliceyang/lazyssms/internal/mirror"
	"github.com/rebeliceyang/lazyssms/internal/models"
	"github.com/rebeliceyang/lazyssms/internal/ui/components"
	"github.com/rebeliceyang/lazyssms/internal/ui/theme"
)

type mirrorStep int

const (
	mirrorChooseSource mirrorStep = iota
	mirrorSourceForm
	mirrorDestForm
	mirrorSourceDB
	mirrorDestDB
	mirrorMode
	mirrorTables
	mirrorConfirm
	mirrorRunning
	mirrorFinished
)

// MirrorClosedMsg tells the app the mirror flow is over
type MirrorClosedMsg struct{}

// mirrorBatchMsg drives one step of the running job
type mirrorBatchMsg struct{}

// MirrorOptions configure a mirror flow
type MirrorOptions struct {
	Theme   theme.Theme
	Manager *connection.Manager
	// Current is the workspace connection, offered as source. It is never
	// closed by the flow.
	Current        connection.Connection
	FormDefaults   components.FormDefaults
	Profiles       []components.Profile
	BatchSize      int
	ConnectTimeout time.Duration
}

// MirrorFlow is the modal flow that configures and runs a mirror job.
// Connections it opens are closed on every exit path.
type MirrorFlow struct {
	opts MirrorOptions
	step mirrorStep

	source     connection.Connection
	dest       connection.Connection
	ownsSource bool
	originalDB string

	sourceDB  string
	destDB    string
	allTables []string
	tables    []string

	picker       *components.Picker
	pickerLabels []string
	form         *components.ConnectionForm
	bar          progress.Model
	job          *mirror.Job

	result string
	failed bool
	closed bool

	width  int
	height int
}

// NewMirrorFlow starts at the source choice, or at the source form when
// there is no current connection
func NewMirrorFlow(opts MirrorOptions) *MirrorFlow {
	if opts.BatchSize <= 0 {
		opts.BatchSize = mirror.DefaultBatchSize
	}

	f := &MirrorFlow{
		opts: opts,
		bar:  progress.New(progress.WithDefaultGradient(), progress.WithWidth(50)),
	}

	if opts.Current == nil {
		f.openForm(mirrorSourceForm)
		return f
	}

	f.setPicker(mirrorChooseSource, "Mirror: source", false, []components.PickerItem{
		{Label: "Current connection", Detail: opts.Current.Label()},
		{Label: "Another connection", Detail: "enter a new login"},
	})
	return f
}

// Step returns the current step, for tests
func (f *MirrorFlow) Step() mirrorStep { return f.step }

// Result returns the final message and whether the job failed
func (f *MirrorFlow) Result() (string, bool) { return f.result, f.failed }

// Update handles one message
func (f *MirrorFlow) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		f.width, f.height = msg.Width, msg.Height
		f.bar.Width = max(min(msg.Width-20, 60), 20)
		if f.picker != nil {
			f.picker.Width = max(min(msg.Width-4, 90), 30)
			f.picker.Height = max(msg.Height-4, 8)
		}
		return nil

	case mirrorBatchMsg:
		if f.step != mirrorRunning {
			return nil
		}
		return f.runBatch()

	case tea.KeyMsg:
		return f.handleKey(msg)
	}
	return nil
}

func (f *MirrorFlow) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch f.step {
	case mirrorFinished:
		if msg.Type == tea.KeyEnter || msg.Type == tea.KeyEsc {
			return emit(MirrorClosedMsg{})
		}
		return nil

	case mirrorRunning:
		if msg.Type == tea.KeyEsc {
			copied := f.job.Progress().TotalCopied
			f.Close()
			slog.Warn("mirror cancelled", "copied", copied)
			return emit(MirrorClosedMsg{})
		}
		return nil

	case mirrorSourceForm, mirrorDestForm:
		return f.handleFormKey(msg)

	case mirrorConfirm:
		switch msg.String() {
		case "enter", "y":
			return f.start()
		case "esc", "n":
			f.Close()
			return emit(MirrorClosedMsg{})
		}
		return nil
	}

	switch f.picker.Update(msg) {
	case components.PickerCancel:
		f.Close()
		return emit(MirrorClosedMsg{})
	case components.PickerChoose:
		return f.choose(f.picker.Cursor())
	}
	return nil
}

func (f *MirrorFlow) handleFormKey(msg tea.KeyMsg) tea.Cmd {
	switch f.form.HandleKey(msg) {
	case components.FormCancel:
		f.Close()
		return emit(MirrorClosedMsg{})
	case components.FormSubmit:
		cfg := f.form.Config()
		if err := cfg.Validate(); err != nil {
			f.form.Err = err.Error()
			return nil
		}

		ctx, cancel := f.connectContext()
		defer cancel()
		conn, err := f.opts.Manager.Open(ctx, cfg)
		if err != nil {
			f.form.Err = err.Error()
			return nil
		}
		slog.Info("mirror connection opened", "target", conn.Label())

		if f.step == mirrorSourceForm {
			f.source = conn
			f.ownsSource = true
			f.openForm(mirrorDestForm)
			return nil
		}
		f.dest = conn
		f.listDatabases(mirrorSourceDB, f.source)
	}
	return nil
}

// choose advances past a picker step
func (f *MirrorFlow) choose(idx int) tea.Cmd {
	ctx := context.Background()

	switch f.step {
	case mirrorChooseSource:
		if idx == 0 {
			f.source = f.opts.Current
			f.originalDB = f.opts.Current.CurrentDatabase()
			f.openForm(mirrorDestForm)
		} else {
			f.openForm(mirrorSourceForm)
		}

	case mirrorSourceDB:
		f.sourceDB = f.itemLabel(idx)
		f.listDatabases(mirrorDestDB, f.dest)

	case mirrorDestDB:
		f.destDB = f.itemLabel(idx)
		tables, err := metadata.ListTables(ctx, f.source, f.sourceDB)
		if err != nil {
			f.finish(err)
			return nil
		}
		f.allTables = tables
		f.setPicker(mirrorMode, "Mirror: mode", false, []components.PickerItem{
			{Label: "Whole database", Detail: fmt.Sprintf("%d tables", len(tables))},
			{Label: "Choose tables"},
		})

	case mirrorMode:
		if idx == 0 {
			f.tables = f.allTables
			f.step = mirrorConfirm
			return nil
		}
		items := make([]components.PickerItem, len(f.allTables))
		for i, t := range f.allTables {
			items[i] = components.PickerItem{Label: t}
		}
		f.setPicker(mirrorTables, "Mirror: tables (space marks, a toggles all)", true, items)

	case mirrorTables:
		marked := f.picker.Marked()
		if len(marked) == 0 {
			marked = []int{idx}
		}
		f.tables = make([]string, len(marked))
		for i, m := range marked {
			f.tables[i] = f.allTables[m]
		}
		f.step = mirrorConfirm
	}
	return nil
}

func (f *MirrorFlow) itemLabel(idx int) string {
	return f.pickerLabels[idx]
}

func (f *MirrorFlow) listDatabases(step mirrorStep, conn connection.Connection) {
	databases, err := metadata.ListDatabases(context.Background(), conn)
	if err != nil {
		f.finish(err)
		return
	}

	title := "Mirror: source database"
	if step == mirrorDestDB {
		title = "Mirror: destination database"
	}
	items := make([]components.PickerItem, len(databases))
	for i, db := range databases {
		items[i] = components.PickerItem{Label: db}
	}
	f.setPicker(step, title, false, items)
}

func (f *MirrorFlow) setPicker(step mirrorStep, title string, multi bool, items []components.PickerItem) {
	f.step = step
	f.picker = components.NewPicker(title, f.opts.Theme, items)
	f.picker.Multi = multi
	if f.width > 0 {
		f.picker.Width = max(min(f.width-4, 90), 30)
		f.picker.Height = max(f.height-4, 8)
	}
	f.pickerLabels = make([]string, len(items))
	for i, item := range items {
		f.pickerLabels[i] = item.Label
	}
}

func (f *MirrorFlow) openForm(step mirrorStep) {
	title := "Mirror: source connection"
	if step == mirrorDestForm {
		title = "Mirror: destination connection"
	}
	f.step = step
	f.form = components.NewConnectionForm(title, f.opts.Theme, f.opts.FormDefaults)
	f.form.Profiles = f.opts.Profiles
}

func (f *MirrorFlow) start() tea.Cmd {
	if len(f.tables) == 0 {
		f.finish(errors.New("no tables selected"))
		return nil
	}

	f.job = mirror.NewJob(f.source, f.dest, f.sourceDB, f.destDB, f.tables, f.ownsSource)
	f.job.BatchSize = f.opts.BatchSize
	f.step = mirrorRunning
	slog.Info("mirror started",
		"source", f.source.Label(), "source_db", f.sourceDB,
		"dest", f.dest.Label(), "dest_db", f.destDB,
		"tables", len(f.tables))
	return emit(mirrorBatchMsg{})
}

// runBatch performs one job step and schedules the next, so the screen
// re-renders after every batch
func (f *MirrorFlow) runBatch() tea.Cmd {
	done, err := f.job.Step(context.Background())
	if !done {
		return emit(mirrorBatchMsg{})
	}
	f.finish(err)
	return nil
}

// finish closes everything and records the outcome
func (f *MirrorFlow) finish(err error) {
	f.Close()
	f.step = mirrorFinished

	if err != nil {
		f.failed = true
		f.result = err.Error()
		var mirrorErr *models.MirrorError
		if errors.As(err, &mirrorErr) && f.job != nil {
			f.result += fmt.Sprintf("\n\n%d rows were copied before the failure and were not rolled back.", f.job.Progress().TotalCopied)
		}
		return
	}

	p := f.job.Progress()
	f.result = fmt.Sprintf("%s\n\n%d tables, %d rows copied.", mirror.SuccessMessage, len(f.tables), p.TotalCopied)
	if len(p.Skipped) > 0 {
		f.result += "\nSkipped (no columns): " + strings.Join(p.Skipped, ", ")
	}
}

// Close releases the connections owned by the flow. A borrowed source is
// switched back to its original database. Close is idempotent.
func (f *MirrorFlow) Close() {
	if f.closed {
		return
	}
	f.closed = true

	if f.job != nil {
		if err := f.job.Close(); err != nil {
			slog.Warn("failed to close mirror connections", "error", err)
		}
	} else {
		if f.dest != nil {
			if err := f.dest.Close(); err != nil {
				slog.Warn("failed to close mirror destination", "error", err)
			}
		}
		if f.ownsSource && f.source != nil {
			if err := f.source.Close(); err != nil {
				slog.Warn("failed to close mirror source", "error", err)
			}
		}
	}

	if !f.ownsSource && f.source != nil && f.originalDB != "" && f.source.CurrentDatabase() != f.originalDB {
		if err := f.source.SwitchDatabase(context.Background(), f.originalDB); err != nil {
			slog.Warn("failed to restore database after mirror", "database", f.originalDB, "error", err)
		}
	}
}

func (f *MirrorFlow) connectContext() (context.Context, context.CancelFunc) {
	if f.opts.ConnectTimeout > 0 {
		return context.WithTimeout(context.Background(), f.opts.ConnectTimeout)
	}
	return context.WithCancel(context.Background())
}

// View renders the current step
func (f *MirrorFlow) View() string {
	th := f.opts.Theme
	var content string

	switch f.step {
	case mirrorSourceForm, mirrorDestForm:
		content = f.form.View()

	case mirrorConfirm:
		titleStyle := lipgloss.NewStyle().Bold(true).Foreground(th.Info)
		hint := lipgloss.NewStyle().Foreground(th.Muted).Italic(true)
		tables := strings.Join(f.tables, ", ")
		if len(f.tables) > 8 {
			tables = strings.Join(f.tables[:8], ", ") + fmt.Sprintf(" and %d more", len(f.tables)-8)
		}
		content = box(th, titleStyle.Render("Mirror: confirm")+"\n\n"+
			fmt.Sprintf("From: %s / %s\nTo:   %s / %s\nTables (%d): %s\n\n",
				f.source.Label(), f.sourceDB, f.dest.Label(), f.destDB, len(f.tables), tables)+
			lipgloss.NewStyle().Foreground(th.Warning).Render("Rows are inserted into existing tables. Nothing is rolled back on failure.")+
			"\n\n"+hint.Render("Enter to start, Esc to cancel"))

	case mirrorRunning:
		p := f.job.Progress()
		titleStyle := lipgloss.NewStyle().Bold(true).Foreground(th.Info)
		content = box(th, titleStyle.Render("Mirroring")+"\n\n"+
			p.TableLine()+"\n"+
			f.bar.ViewAs(p.Percent())+"\n"+
			p.RowsLine()+"\n\n"+
			lipgloss.NewStyle().Foreground(th.Muted).Render(fmt.Sprintf("Total copied: %d | Esc to cancel", p.TotalCopied)))

	case mirrorFinished:
		color := th.Success
		title := "Mirror finished"
		if f.failed {
			color = th.Error
			title = "Mirror failed"
		}
		content = box(th, lipgloss.NewStyle().Bold(true).Foreground(color).Render(title)+"\n\n"+
			lipgloss.NewStyle().Width(max(min(f.width-10, 80), 30)).Render(f.result)+"\n\n"+
			lipgloss.NewStyle().Foreground(th.Muted).Italic(true).Render("Press Enter to return"))

	default:
		content = f.picker.View()
	}

	if f.width == 0 {
		return content
	}
	return lipgloss.Place(f.width, f.height, lipgloss.Center, lipgloss.Center, content)
}

func box(th theme.Theme, content string) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(th.BorderFocused).
		Padding(1, 2).
		Render(content)
}
