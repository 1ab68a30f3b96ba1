package connection_history

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rebeliceyang/lazyssms/internal/models"
	"gopkg.in/yaml.v3"
)

// DefaultMaxEntries caps the history when no limit is configured
const DefaultMaxEntries = 20

// Manager keeps the most-recent-first list of distinct connection profiles
type Manager struct {
	path       string
	history    []models.ConnectionHistoryEntry
	passwords  PasswordStore
	maxEntries int
}

// NewManager creates a new connection history manager
func NewManager(configDir string, maxEntries int, passwords PasswordStore) (*Manager, error) {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}

	m := &Manager{
		path:       filepath.Join(configDir, "connection_history.yaml"),
		history:    []models.ConnectionHistoryEntry{},
		passwords:  passwords,
		maxEntries: maxEntries,
	}

	// Load existing history if file exists
	if _, err := os.Stat(m.path); err == nil {
		if err := m.Load(); err != nil {
			return nil, fmt.Errorf("failed to load connection history: %w", err)
		}
	}

	return m, nil
}

// Load loads connection history from YAML file
func (m *Manager) Load() error {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return fmt.Errorf("failed to read connection history file: %w", err)
	}

	var history []models.ConnectionHistoryEntry
	if err := yaml.Unmarshal(data, &history); err != nil {
		return fmt.Errorf("failed to parse connection history: %w", err)
	}

	sort.SliceStable(history, func(i, j int) bool {
		return history[i].LastUsed.After(history[j].LastUsed)
	})
	if len(history) > m.maxEntries {
		history = history[:m.maxEntries]
	}
	m.history = history
	return nil
}

// Save saves connection history to YAML file
func (m *Manager) Save() error {
	data, err := yaml.Marshal(m.history)
	if err != nil {
		return fmt.Errorf("failed to marshal connection history: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(m.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write connection history file: %w", err)
	}

	return nil
}

// Add records a successful connection. A profile matching an existing
// entry moves it to the front; otherwise a new entry is prepended and the
// list is capped. With savePassword the password goes to the keyring.
func (m *Manager) Add(config models.ConnectionConfig, savePassword bool) (*models.ConnectionHistoryEntry, error) {
	now := time.Now()
	key := config.Key()

	var entry models.ConnectionHistoryEntry
	found := false
	for i, e := range m.history {
		cfg := e.ToConnectionConfig()
		if cfg.Key() == key {
			entry = e
			m.history = append(m.history[:i], m.history[i+1:]...)
			found = true
			break
		}
	}

	if found {
		entry.LastUsed = now
		entry.UsageCount++
		if config.Name != "" {
			entry.Name = config.Name
		}
	} else {
		name := config.Name
		if name == "" {
			name = fmt.Sprintf("%s@%s", config.User, config.Host)
		}
		entry = models.ConnectionHistoryEntry{
			ID:                     uuid.New().String(),
			Name:                   name,
			Driver:                 config.Driver,
			Host:                   config.Host,
			Port:                   config.Port,
			Database:               config.Database,
			User:                   config.User,
			Encrypt:                config.Encrypt,
			TrustServerCertificate: config.TrustServerCertificate,
			LastUsed:               now,
			UsageCount:             1,
			CreatedAt:              now,
		}
	}

	if savePassword && config.Password != "" && m.passwords != nil {
		if err := m.passwords.Save(entry.ID, config.Password); err != nil {
			slog.Warn("failed to save password", "profile", entry.Name, "error", err)
		} else {
			entry.PasswordSaved = true
		}
	}

	m.history = append([]models.ConnectionHistoryEntry{entry}, m.history...)
	for len(m.history) > m.maxEntries {
		dropped := m.history[len(m.history)-1]
		m.history = m.history[:len(m.history)-1]
		m.forgetPassword(dropped)
	}

	if err := m.Save(); err != nil {
		return nil, err
	}
	return &m.history[0], nil
}

// GetAll returns all connection history entries, most recent first
func (m *Manager) GetAll() []models.ConnectionHistoryEntry {
	return m.history
}

// GetRecent returns the most recently used connections
func (m *Manager) GetRecent(limit int) []models.ConnectionHistoryEntry {
	if limit > 0 && limit < len(m.history) {
		return m.history[:limit]
	}
	return m.history
}

// FindByName returns the entry with the given name, case-insensitively
func (m *Manager) FindByName(name string) (*models.ConnectionHistoryEntry, error) {
	for i := range m.history {
		if strings.EqualFold(m.history[i].Name, name) {
			return &m.history[i], nil
		}
	}
	return nil, fmt.Errorf("connection profile %q not found", name)
}

// Delete removes a connection from history by ID
func (m *Manager) Delete(id string) error {
	for i, entry := range m.history {
		if entry.ID == id {
			m.forgetPassword(entry)
			m.history = append(m.history[:i], m.history[i+1:]...)
			return m.Save()
		}
	}
	return fmt.Errorf("connection history entry with ID '%s' not found", id)
}

func (m *Manager) forgetPassword(entry models.ConnectionHistoryEntry) {
	if !entry.PasswordSaved || m.passwords == nil {
		return
	}
	if err := m.passwords.Delete(entry.ID); err != nil {
		slog.Warn("failed to delete password", "profile", entry.Name, "error", err)
	}
}

// GetConnectionConfigWithPassword returns a ConnectionConfig with the
// password retrieved from the keyring when one was saved
func (m *Manager) GetConnectionConfigWithPassword(entry *models.ConnectionHistoryEntry) models.ConnectionConfig {
	config := entry.ToConnectionConfig()
	if !entry.PasswordSaved || m.passwords == nil {
		return config
	}

	password, err := m.passwords.Get(entry.ID)
	switch {
	case err == nil:
		config.Password = password
	case errors.Is(err, ErrPasswordNotFound):
	default:
		slog.Warn("failed to read password", "profile", entry.Name, "error", err)
	}
	return config
}
