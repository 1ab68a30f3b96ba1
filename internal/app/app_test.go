package app

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rebeliceyang/lazyssms/internal/clipboard"
	"github.com/rebeliceyang/lazyssms/internal/config"
	"github.com/rebeliceyang/lazyssms/internal/connection_history"
	"github.com/rebeliceyang/lazyssms/internal/db/connection"
	"github.com/rebeliceyang/lazyssms/internal/models"
)

type memoryPasswords struct {
	passwords map[string]string
}

func (m *memoryPasswords) Get(id string) (string, error) {
	p, ok := m.passwords[id]
	if !ok {
		return "", connection_history.ErrPasswordNotFound
	}
	return p, nil
}

func (m *memoryPasswords) Save(id, password string) error {
	m.passwords[id] = password
	return nil
}

func (m *memoryPasswords) Delete(id string) error {
	delete(m.passwords, id)
	return nil
}

func newTestApp(t *testing.T, opener *queueOpener, opts Options) *App {
	t.Helper()
	opts.Config = config.GetDefaults()
	opts.Manager = connection.NewManager(opener.open)
	opts.Clipboard = &clipboard.Memory{}
	a := New(opts)
	a.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return a
}

func connectWith(a *App, cfg models.ConnectionConfig) tea.Cmd {
	a.form.Fill(cfg)
	_, cmd := a.Update(keyOf(tea.KeyEnter))
	return cmd
}

func TestApp_InvalidLoginStaysOnForm(t *testing.T) {
	opener := &queueOpener{}
	a := newTestApp(t, opener, Options{})

	connectWith(a, models.ConnectionConfig{Driver: models.DriverSQLServer, Port: 1433, User: "sa"})

	assert.Equal(t, screenConnect, a.Screen())
	assert.Contains(t, a.form.Err, "host")
	assert.Zero(t, opener.dials)
	assert.False(t, a.showError)
}

func TestApp_FailedDialShowsOverlay(t *testing.T) {
	a := newTestApp(t, &queueOpener{}, Options{})

	connectWith(a, validLogin)

	assert.Equal(t, screenConnect, a.Screen())
	assert.True(t, a.showError)
	assert.Equal(t, "Connection Failed", a.errorOverlay.Title())

	a.Update(keyOf(tea.KeyEsc))
	assert.False(t, a.showError)
}

func TestApp_ConnectDisconnect(t *testing.T) {
	conn := newServerConn(&fetchCounts{})
	passwords := &memoryPasswords{passwords: map[string]string{}}
	saved, err := connection_history.NewManager(t.TempDir(), 0, passwords)
	require.NoError(t, err)

	a := newTestApp(t, &queueOpener{conns: []connection.Connection{conn}}, Options{Connections: saved})
	a.form.SavePassword = true

	connectWith(a, validLogin)
	require.Equal(t, screenWorkspace, a.Screen())
	assert.Equal(t, 120, a.workspace.State.Layout.Width)

	entries := saved.GetAll()
	require.Len(t, entries, 1)
	assert.True(t, entries[0].PasswordSaved)

	_, cmd := a.Update(keyOf(tea.KeyEsc))
	a.Update(cmdMsg(cmd))

	assert.Equal(t, screenConnect, a.Screen())
	assert.Equal(t, 1, conn.CloseCalls)
	assert.Nil(t, a.workspace)

	// the saved login is offered again with its password
	require.NotEmpty(t, a.form.Profiles)
	assert.Equal(t, "secret", a.form.Config().Password)
}

func TestApp_QuitClosesConnection(t *testing.T) {
	conn := newServerConn(&fetchCounts{})
	a := newTestApp(t, &queueOpener{conns: []connection.Connection{conn}}, Options{})
	connectWith(a, validLogin)
	require.Equal(t, screenWorkspace, a.Screen())

	_, cmd := a.Update(keyOf(tea.KeyCtrlQ))
	_, cmd = a.Update(cmdMsg(cmd))

	assert.Equal(t, tea.QuitMsg{}, cmdMsg(cmd))
	assert.Equal(t, 1, conn.CloseCalls)
}

func TestApp_HelpOverlay(t *testing.T) {
	conn := newServerConn(&fetchCounts{})
	a := newTestApp(t, &queueOpener{conns: []connection.Connection{conn}}, Options{})
	connectWith(a, validLogin)

	a.Update(keyOf(tea.KeyF1))
	assert.True(t, a.showHelp)
	assert.Contains(t, a.View(), "Schema Tree")

	a.Update(keyOf(tea.KeyEsc))
	assert.False(t, a.showHelp)
	assert.Equal(t, screenWorkspace, a.Screen())
}

func TestApp_MirrorReturnsToWorkspace(t *testing.T) {
	conn := newMirrorSource("prod")
	dst := newMirrorDest()
	a := newTestApp(t, &queueOpener{conns: []connection.Connection{conn, dst}}, Options{})
	connectWith(a, validLogin)
	require.Equal(t, screenWorkspace, a.Screen())

	_, cmd := a.Update(keyOf(tea.KeyF9))
	a.Update(cmdMsg(cmd))
	require.Equal(t, screenMirror, a.Screen())

	// current connection, then the destination login
	a.Update(keyOf(tea.KeyEnter))
	a.mirror.form.Fill(validLogin)
	a.Update(keyOf(tea.KeyEnter))
	require.Equal(t, mirrorSourceDB, a.mirror.Step())

	_, cmd = a.Update(keyOf(tea.KeyEsc))
	a.Update(cmdMsg(cmd))

	assert.Equal(t, screenWorkspace, a.Screen())
	assert.Nil(t, a.mirror)
	assert.Equal(t, 1, dst.CloseCalls)
	assert.Equal(t, 0, conn.CloseCalls)
}

func TestApp_WorkspacePanicEndsSession(t *testing.T) {
	conn := newServerConn(&fetchCounts{})
	a := newTestApp(t, &queueOpener{conns: []connection.Connection{conn}}, Options{})
	connectWith(a, validLogin)
	require.Equal(t, screenWorkspace, a.Screen())

	conn.SwitchFunc = func(string) error { panic("driver bug") }

	// root, master, sales
	a.Update(keyOf(tea.KeyDown))
	a.Update(keyOf(tea.KeyDown))
	a.Update(keyOf(tea.KeyEnter))

	assert.Equal(t, screenConnect, a.Screen())
	assert.True(t, a.showError)
	assert.Contains(t, a.errorOverlay.Message(), "driver bug")
	assert.Equal(t, 1, conn.CloseCalls)
}
