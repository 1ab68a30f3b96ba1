package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rebeliceyang/lazyssms/internal/clipboard"
	"github.com/rebeliceyang/lazyssms/internal/config"
	"github.com/rebeliceyang/lazyssms/internal/connection_history"
	"github.com/rebeliceyang/lazyssms/internal/db/connection"
	"github.com/rebeliceyang/lazyssms/internal/db/discovery"
	"github.com/rebeliceyang/lazyssms/internal/favorites"
	"github.com/rebeliceyang/lazyssms/internal/history"
	"github.com/rebeliceyang/lazyssms/internal/models"
	"github.com/rebeliceyang/lazyssms/internal/ui/components"
	"github.com/rebeliceyang/lazyssms/internal/ui/help"
	"github.com/rebeliceyang/lazyssms/internal/ui/theme"
)

// discoveryTimeout bounds the whole discovery pass
const discoveryTimeout = 3 * time.Second

type screen int

const (
	screenConnect screen = iota
	screenWorkspace
	screenMirror
)

// Options are the collaborators of the application. Nil stores disable
// their features.
type Options struct {
	Config      *config.Config
	Manager     *connection.Manager
	Connections *connection_history.Manager
	Queries     *history.Store
	Favorites   *favorites.Manager
	Discoverer  *discovery.Discoverer
	Clipboard   clipboard.Clipboard
	// Home is the base of the default export path
	Home string
}

// App is the main application model
type App struct {
	opts  Options
	cfg   *config.Config
	theme theme.Theme

	screen screen
	width  int
	height int

	form      *components.ConnectionForm
	instances []models.DiscoveredInstance

	session   *connection.Session
	workspace *Workspace
	mirror    *MirrorFlow

	showHelp     bool
	showError    bool
	errorOverlay *components.ErrorOverlay
}

// DiscoveryCompleteMsg is sent when discovery completes
type DiscoveryCompleteMsg struct {
	Instances []models.DiscoveredInstance
}

// New creates the application on the connect screen
func New(opts Options) *App {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.GetDefaults()
	}
	if opts.Manager == nil {
		opts.Manager = connection.NewManager(nil)
	}
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.New()
	}

	th := theme.GetTheme(cfg.UI.Theme)
	a := &App{
		opts:         opts,
		cfg:          cfg,
		theme:        th,
		errorOverlay: components.NewErrorOverlay(th),
	}
	a.resetForm()
	return a
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return a.triggerDiscovery()
}

// Screen reports the active screen, for tests
func (a *App) Screen() screen { return a.screen }

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.errorOverlay.Width = max(min(msg.Width-10, 80), 30)
		if a.workspace != nil {
			a.updateWorkspace(msg)
		}
		if a.mirror != nil {
			a.mirror.Update(msg)
		}
		return a, nil

	case ShowErrorMsg:
		a.ShowError(msg.Title, msg.Message)
		return a, nil

	case DiscoveryCompleteMsg:
		a.applyDiscovery(msg.Instances)
		return a, nil

	case DisconnectMsg:
		a.disconnect()
		return a, nil

	case QuitMsg:
		a.shutdown()
		return a, tea.Quit

	case OpenMirrorMsg:
		a.openMirror()
		return a, nil

	case MirrorClosedMsg:
		if a.mirror != nil {
			a.mirror.Close()
			a.mirror = nil
		}
		if a.workspace != nil {
			a.screen = screenWorkspace
			// the borrowed connection may have been switched and restored
			a.workspace.State = a.workspace.ensureDatabases(a.workspace.refresh(a.workspace.State))
		} else {
			a.screen = screenConnect
		}
		return a, nil

	case mirrorBatchMsg:
		if a.mirror == nil {
			return a, nil
		}
		return a, a.mirror.Update(msg)

	case tea.KeyMsg:
		return a, a.handleKey(msg)

	case tea.MouseMsg:
		if a.screen == screenWorkspace && !a.showError && !a.showHelp {
			return a, a.updateWorkspace(msg)
		}
	}
	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	if a.showError {
		switch msg.String() {
		case "esc", "enter":
			a.DismissError()
		case "ctrl+c":
			a.shutdown()
			return tea.Quit
		}
		return nil
	}

	if a.showHelp {
		switch msg.String() {
		case "esc", "f1", "q", "enter":
			a.showHelp = false
		case "ctrl+c":
			a.shutdown()
			return tea.Quit
		}
		return nil
	}

	// Ctrl+C copies while editing
	editing := a.screen == screenWorkspace && a.workspace.State.Editing
	if msg.String() == "ctrl+c" && !editing {
		a.shutdown()
		return tea.Quit
	}

	switch a.screen {
	case screenConnect:
		if msg.String() == "f1" {
			a.showHelp = true
			return nil
		}
		return a.handleConnectKey(msg)

	case screenMirror:
		return a.mirror.Update(msg)

	default:
		if msg.String() == "f1" && !editing {
			a.showHelp = true
			return nil
		}
		return a.updateWorkspace(msg)
	}
}

func (a *App) handleConnectKey(msg tea.KeyMsg) tea.Cmd {
	switch a.form.HandleKey(msg) {
	case components.FormCancel:
		a.shutdown()
		return tea.Quit
	case components.FormSubmit:
		a.connect(a.form.Config())
	}
	return nil
}

// connect validates before dialing; validation errors stay on the form
func (a *App) connect(cfg models.ConnectionConfig) {
	if err := cfg.Validate(); err != nil {
		a.form.Err = err.Error()
		return
	}
	a.form.Err = ""

	ctx, cancel := a.connectContext()
	defer cancel()

	session, err := a.opts.Manager.Connect(ctx, cfg)
	if err != nil {
		slog.Error("connection failed", "target", cfg.DisplayName(), "error", err)
		var validation *models.ValidationError
		if errors.As(err, &validation) {
			a.form.Err = validation.Error()
			return
		}
		a.ShowError("Connection Failed", fmt.Sprintf("Could not connect to %s\n\n%v", cfg.DisplayName(), err))
		return
	}
	slog.Info("connected", "target", session.Conn.Label(), "database", session.Conn.CurrentDatabase())

	if a.form.Remember && a.opts.Connections != nil {
		if _, err := a.opts.Connections.Add(cfg, a.form.SavePassword); err != nil {
			slog.Warn("failed to save connection history", "error", err)
		}
	}

	a.session = session
	a.workspace = NewWorkspace(session.Conn, WorkspaceOptions{
		Theme:        a.theme,
		Clipboard:    a.opts.Clipboard,
		History:      a.opts.Queries,
		Favorites:    a.opts.Favorites,
		QueryTimeout: a.cfg.QueryTimeoutDuration(),
		MaxCellWidth: a.cfg.Data.MaxCellWidth,
		SampleRows:   a.cfg.Data.WidthSampleRows,
		Home:         a.opts.Home,
	})
	a.screen = screenWorkspace
	if a.width > 0 {
		a.updateWorkspace(tea.WindowSizeMsg{Width: a.width, Height: a.height})
	}
}

// updateWorkspace forwards msg to the workspace. A panic in the session is
// logged and ends the session with an error instead of killing the process.
func (a *App) updateWorkspace(msg tea.Msg) (cmd tea.Cmd) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("workspace panic", "panic", r, "stack", string(debug.Stack()))
			a.disconnect()
			a.ShowError("Unexpected Error", fmt.Sprintf("The session was closed after an internal error:\n\n%v", r))
			cmd = nil
		}
	}()
	return a.workspace.Update(msg)
}

func (a *App) disconnect() {
	if a.mirror != nil {
		a.mirror.Close()
		a.mirror = nil
	}
	if a.session != nil {
		if err := a.opts.Manager.Disconnect(a.session.ID); err != nil {
			slog.Warn("failed to close connection", "error", err)
		}
		slog.Info("disconnected", "target", a.session.Conn.Label())
	}
	a.session = nil
	a.workspace = nil
	a.screen = screenConnect
	a.resetForm()
}

func (a *App) shutdown() {
	if a.mirror != nil {
		a.mirror.Close()
		a.mirror = nil
	}
	a.opts.Manager.CloseAll()
	a.session = nil
	a.workspace = nil
}

func (a *App) openMirror() {
	if a.workspace == nil {
		return
	}
	a.mirror = NewMirrorFlow(MirrorOptions{
		Theme:          a.theme,
		Manager:        a.opts.Manager,
		Current:        a.workspace.Conn(),
		FormDefaults:   a.formDefaults(),
		Profiles:       a.profiles(),
		BatchSize:      a.cfg.Data.MirrorBatchSize,
		ConnectTimeout: a.cfg.ConnectTimeoutDuration(),
	})
	a.screen = screenMirror
	if a.width > 0 {
		a.mirror.Update(tea.WindowSizeMsg{Width: a.width, Height: a.height})
	}
}

func (a *App) formDefaults() components.FormDefaults {
	c := a.cfg.Connection
	return components.FormDefaults{
		Driver:                 c.Driver,
		Port:                   c.Port,
		Database:               c.Database,
		Encrypt:                c.Encrypt,
		TrustServerCertificate: c.TrustServerCertificate,
		Remember:               c.Remember,
		SavePassword:           c.SavePassword,
	}
}

// profiles lists saved logins first, then discovered instances
func (a *App) profiles() []components.Profile {
	var out []components.Profile
	if a.opts.Connections != nil {
		for _, entry := range a.opts.Connections.GetRecent(0) {
			entry := entry
			out = append(out, components.Profile{
				Label:  entry.Name,
				Config: a.opts.Connections.GetConnectionConfigWithPassword(&entry),
			})
		}
	}
	for _, instance := range a.instances {
		if instance.Config == nil {
			continue
		}
		out = append(out, components.Profile{
			Label:  instance.Source.String() + ": " + instance.Config.DisplayName(),
			Config: *instance.Config,
		})
	}
	return out
}

func (a *App) resetForm() {
	a.form = components.NewConnectionForm("Connect to a server", a.theme, a.formDefaults())
	a.form.ShowRemember = true
	a.form.Profiles = a.profiles()
	if len(a.form.Profiles) > 0 {
		a.form.Fill(a.form.Profiles[0].Config)
	}
}

func (a *App) applyDiscovery(instances []models.DiscoveredInstance) {
	a.instances = instances
	slog.Debug("discovery complete", "instances", len(instances))

	hadProfiles := len(a.form.Profiles) > 0
	a.form.Profiles = a.profiles()
	if hadProfiles || a.screen != screenConnect {
		return
	}
	if cfg := discovery.Suggest(instances); cfg != nil && a.form.Config().Host == "" {
		a.form.Fill(*cfg)
	}
}

// triggerDiscovery runs discovery as a command
func (a *App) triggerDiscovery() tea.Cmd {
	if a.opts.Discoverer == nil {
		return nil
	}
	d := a.opts.Discoverer
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), discoveryTimeout)
		defer cancel()
		return DiscoveryCompleteMsg{Instances: d.DiscoverAll(ctx)}
	}
}

func (a *App) connectContext() (context.Context, context.CancelFunc) {
	if d := a.cfg.ConnectTimeoutDuration(); d > 0 {
		return context.WithTimeout(context.Background(), d)
	}
	return context.WithCancel(context.Background())
}

// ShowError displays an error overlay
func (a *App) ShowError(title, message string) {
	a.errorOverlay.SetError(title, message)
	a.showError = true
}

// DismissError hides the error overlay
func (a *App) DismissError() {
	a.showError = false
}

// View implements tea.Model
func (a *App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	if a.showError {
		return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, a.errorOverlay.View())
	}

	if a.showHelp {
		return help.Render(a.width, a.height, a.theme)
	}

	switch a.screen {
	case screenWorkspace:
		return a.workspace.View()
	case screenMirror:
		return a.mirror.View()
	default:
		return a.renderConnect()
	}
}

func (a *App) renderConnect() string {
	a.form.Width = max(min(a.width-4, 70), 40)

	title := lipgloss.NewStyle().Bold(true).Foreground(a.theme.BorderFocused).Render("lazyssms")
	hintStyle := lipgloss.NewStyle().Foreground(a.theme.Muted)

	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(a.theme.BorderFocused).
		Padding(1, 2).
		Render(a.form.View()))

	if len(a.instances) > 0 {
		b.WriteString("\n")
		b.WriteString(hintStyle.Render("Found: " + discovery.Hint(a.instances)))
	}
	b.WriteString("\n")
	b.WriteString(hintStyle.Render("Enter connect | Ctrl+N/Ctrl+P profiles | F1 help | Esc quit"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, b.String())
}
