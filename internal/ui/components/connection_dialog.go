package components

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rebeliceyang/lazyssms/internal/models"
	"github.com/rebeliceyang/lazyssms/internal/ui/theme"
)

// field indexes; text fields come first
const (
	fieldName = iota
	fieldHost
	fieldPort
	fieldDatabase
	fieldUser
	fieldPassword
	fieldEncrypt
	fieldTrust
	fieldRemember
	fieldSavePassword
	fieldCount

	textFieldCount = fieldPassword + 1
)

// FormAction is what a key asks the owner of the form to do
type FormAction int

const (
	FormNone FormAction = iota
	FormSubmit
	FormCancel
)

// Profile is a saved or discovered login offered by the form
type Profile struct {
	Label  string
	Config models.ConnectionConfig
}

// ConnectionForm edits one ConnectionConfig
type ConnectionForm struct {
	Title string
	Width int
	Theme theme.Theme

	Driver                 string
	Encrypt                bool
	TrustServerCertificate bool
	Remember               bool
	SavePassword           bool

	// ShowRemember shows the remember/save password toggles
	ShowRemember bool

	Profiles     []Profile
	profileIndex int

	Err string

	inputs  []textinput.Model
	focused int
}

// FormDefaults seeds a new form
type FormDefaults struct {
	Driver                 string
	Port                   int
	Database               string
	Encrypt                bool
	TrustServerCertificate bool
	Remember               bool
	SavePassword           bool
}

// NewConnectionForm creates a form with the cursor on the host field
func NewConnectionForm(title string, th theme.Theme, defaults FormDefaults) *ConnectionForm {
	inputs := make([]textinput.Model, textFieldCount)

	inputs[fieldName] = textinput.New()
	inputs[fieldName].Placeholder = "optional"
	inputs[fieldName].CharLimit = 64

	inputs[fieldHost] = textinput.New()
	inputs[fieldHost].Placeholder = "localhost"
	inputs[fieldHost].CharLimit = 256

	inputs[fieldPort] = textinput.New()
	inputs[fieldPort].CharLimit = 5

	inputs[fieldDatabase] = textinput.New()
	inputs[fieldDatabase].CharLimit = 128

	inputs[fieldUser] = textinput.New()
	inputs[fieldUser].Placeholder = "sa"
	inputs[fieldUser].CharLimit = 128

	inputs[fieldPassword] = textinput.New()
	inputs[fieldPassword].EchoMode = textinput.EchoPassword
	inputs[fieldPassword].EchoCharacter = '*'
	inputs[fieldPassword].CharLimit = 256

	if defaults.Driver == "" {
		defaults.Driver = models.DriverSQLServer
	}
	if defaults.Port > 0 {
		inputs[fieldPort].SetValue(strconv.Itoa(defaults.Port))
	}
	inputs[fieldDatabase].SetValue(defaults.Database)

	f := &ConnectionForm{
		Title:                  title,
		Width:                  60,
		Theme:                  th,
		Driver:                 defaults.Driver,
		Encrypt:                defaults.Encrypt,
		TrustServerCertificate: defaults.TrustServerCertificate,
		Remember:               defaults.Remember,
		SavePassword:           defaults.SavePassword,
		inputs:                 inputs,
		focused:                fieldHost,
		profileIndex:           -1,
	}
	f.updateFocus()
	return f
}

// Fill copies cfg into the form
func (f *ConnectionForm) Fill(cfg models.ConnectionConfig) {
	f.inputs[fieldName].SetValue(cfg.Name)
	f.inputs[fieldHost].SetValue(cfg.Host)
	f.inputs[fieldPort].SetValue("")
	if cfg.Port > 0 {
		f.inputs[fieldPort].SetValue(strconv.Itoa(cfg.Port))
	}
	f.inputs[fieldDatabase].SetValue(cfg.Database)
	f.inputs[fieldUser].SetValue(cfg.User)
	f.inputs[fieldPassword].SetValue(cfg.Password)
	if cfg.Driver != "" {
		f.Driver = cfg.Driver
	}
	f.Encrypt = cfg.Encrypt
	f.TrustServerCertificate = cfg.TrustServerCertificate
	f.Err = ""
}

// Config builds the ConnectionConfig. An empty port means the driver
// default; an unparsable one is left at 0 for Validate to reject.
func (f *ConnectionForm) Config() models.ConnectionConfig {
	cfg := models.ConnectionConfig{
		Name:                   strings.TrimSpace(f.inputs[fieldName].Value()),
		Driver:                 f.Driver,
		Host:                   strings.TrimSpace(f.inputs[fieldHost].Value()),
		Database:               strings.TrimSpace(f.inputs[fieldDatabase].Value()),
		User:                   strings.TrimSpace(f.inputs[fieldUser].Value()),
		Password:               f.inputs[fieldPassword].Value(),
		Encrypt:                f.Encrypt,
		TrustServerCertificate: f.TrustServerCertificate,
	}

	port := strings.TrimSpace(f.inputs[fieldPort].Value())
	switch {
	case port == "":
		cfg.Port = defaultPort(f.Driver)
	default:
		if n, err := strconv.Atoi(port); err == nil {
			cfg.Port = n
		}
	}
	return cfg
}

func defaultPort(driver string) int {
	if driver == models.DriverPostgres {
		return 5432
	}
	return 1433
}

// HandleKey applies a key to the form
func (f *ConnectionForm) HandleKey(msg tea.KeyMsg) FormAction {
	switch msg.String() {
	case "esc":
		return FormCancel
	case "enter":
		return FormSubmit
	case "tab", "down":
		f.moveFocus(1)
		return FormNone
	case "shift+tab", "up":
		f.moveFocus(-1)
		return FormNone
	case "ctrl+t":
		f.toggleDriver()
		return FormNone
	case "ctrl+n":
		f.cycleProfile(1)
		return FormNone
	case "ctrl+p":
		f.cycleProfile(-1)
		return FormNone
	case " ":
		if f.focused >= textFieldCount {
			f.toggle(f.focused)
			return FormNone
		}
	}

	if f.focused < textFieldCount {
		f.inputs[f.focused], _ = f.inputs[f.focused].Update(msg)
	}
	return FormNone
}

func (f *ConnectionForm) lastField() int {
	if f.ShowRemember {
		return fieldSavePassword
	}
	return fieldTrust
}

func (f *ConnectionForm) moveFocus(delta int) {
	n := f.lastField() + 1
	f.focused = (f.focused + delta + n) % n
	f.updateFocus()
}

func (f *ConnectionForm) updateFocus() {
	for i := range f.inputs {
		if i == f.focused {
			f.inputs[i].Focus()
		} else {
			f.inputs[i].Blur()
		}
	}
}

func (f *ConnectionForm) toggle(field int) {
	switch field {
	case fieldEncrypt:
		f.Encrypt = !f.Encrypt
	case fieldTrust:
		f.TrustServerCertificate = !f.TrustServerCertificate
	case fieldRemember:
		f.Remember = !f.Remember
	case fieldSavePassword:
		f.SavePassword = !f.SavePassword
	}
}

func (f *ConnectionForm) toggleDriver() {
	oldDefault := strconv.Itoa(defaultPort(f.Driver))
	if f.Driver == models.DriverPostgres {
		f.Driver = models.DriverSQLServer
	} else {
		f.Driver = models.DriverPostgres
	}
	if port := f.inputs[fieldPort].Value(); port == "" || port == oldDefault {
		f.inputs[fieldPort].SetValue(strconv.Itoa(defaultPort(f.Driver)))
	}
}

func (f *ConnectionForm) cycleProfile(delta int) {
	if len(f.Profiles) == 0 {
		return
	}
	n := len(f.Profiles)
	f.profileIndex = ((f.profileIndex+delta)%n + n) % n
	f.Fill(f.Profiles[f.profileIndex].Config)
}

// Focused returns the index of the focused field
func (f *ConnectionForm) Focused() int { return f.focused }

// View renders the form
func (f *ConnectionForm) View() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(f.Theme.Info)
	labelStyle := lipgloss.NewStyle().Foreground(f.Theme.Muted)
	activeStyle := lipgloss.NewStyle().Foreground(f.Theme.BorderFocused).Bold(true)
	errStyle := lipgloss.NewStyle().Foreground(f.Theme.Error)
	hintStyle := lipgloss.NewStyle().Foreground(f.Theme.Muted).Italic(true)

	b.WriteString(titleStyle.Render(f.Title))
	b.WriteString("\n\n")

	sqlServer, postgres := "● SQL Server", "○ PostgreSQL"
	if f.Driver == models.DriverPostgres {
		sqlServer, postgres = "○ SQL Server", "● PostgreSQL"
	}
	b.WriteString(fmt.Sprintf("  %-12s %s  %s  %s\n\n",
		labelStyle.Render("Driver"), sqlServer, postgres, hintStyle.Render("(ctrl+t)")))

	labels := []string{"Name", "Host", "Port", "Database", "User", "Password"}
	for i := 0; i < textFieldCount; i++ {
		cursor := "  "
		label := labelStyle.Render(fmt.Sprintf("%-12s", labels[i]))
		if i == f.focused {
			cursor = activeStyle.Render("> ")
			label = activeStyle.Render(fmt.Sprintf("%-12s", labels[i]))
		}
		b.WriteString(cursor + label + " " + f.inputs[i].View() + "\n")
	}
	b.WriteString("\n")

	toggles := []struct {
		field int
		label string
		on    bool
	}{
		{fieldEncrypt, "Encrypt", f.Encrypt},
		{fieldTrust, "Trust server certificate", f.TrustServerCertificate},
		{fieldRemember, "Remember connection", f.Remember},
		{fieldSavePassword, "Save password in keyring", f.SavePassword},
	}
	for _, t := range toggles {
		if t.field > f.lastField() {
			break
		}
		box := "[ ]"
		if t.on {
			box = "[x]"
		}
		line := fmt.Sprintf("%s %s", box, t.label)
		if t.field == f.focused {
			b.WriteString(activeStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	if len(f.Profiles) > 0 {
		b.WriteString("\n")
		b.WriteString(labelStyle.Render("Saved and discovered connections (ctrl+n / ctrl+p):"))
		b.WriteString("\n")
		for i, p := range f.Profiles {
			if i >= 5 {
				b.WriteString(hintStyle.Render(fmt.Sprintf("  … %d more", len(f.Profiles)-i)))
				b.WriteString("\n")
				break
			}
			marker := "  "
			if i == f.profileIndex {
				marker = "• "
			}
			b.WriteString(marker + p.Label + "\n")
		}
	}

	if f.Err != "" {
		b.WriteString("\n")
		b.WriteString(errStyle.Render(f.Err))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(hintStyle.Render("Tab/↑↓: Move | Space: Toggle | Enter: Connect | Esc: Back"))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(f.Theme.BorderFocused).
		Padding(1, 2).
		Width(f.Width).
		Render(b.String())
}
