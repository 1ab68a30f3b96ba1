package connection

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rebeliceyang/lazyssms/internal/models"
)

// Opener dials a connection for a config
type Opener func(ctx context.Context, config models.ConnectionConfig) (Connection, error)

// DefaultOpener opens a database/sql backed connection
func DefaultOpener(ctx context.Context, config models.ConnectionConfig) (Connection, error) {
	conn, err := Open(ctx, config)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Manager tracks the sessions opened by the application
type Manager struct {
	open        Opener
	connections map[string]*Session
	active      string
	mu          sync.RWMutex
}

// Session wraps a connection with metadata
type Session struct {
	ID          string
	Config      models.ConnectionConfig
	Conn        Connection
	ConnectedAt time.Time
}

// NewManager creates a new connection manager. A nil opener uses DefaultOpener.
func NewManager(open Opener) *Manager {
	if open == nil {
		open = DefaultOpener
	}
	return &Manager{
		open:        open,
		connections: make(map[string]*Session),
	}
}

// Open validates config and dials without registering the connection.
// The caller owns the result.
func (m *Manager) Open(ctx context.Context, config models.ConnectionConfig) (Connection, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return m.open(ctx, config)
}

// Connect opens a connection and makes it the active session
func (m *Manager) Connect(ctx context.Context, config models.ConnectionConfig) (*Session, error) {
	conn, err := m.Open(ctx, config)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id := generateConnectionID(config)
	if old, ok := m.connections[id]; ok {
		_ = old.Conn.Close()
	}

	session := &Session{
		ID:          id,
		Config:      config,
		Conn:        conn,
		ConnectedAt: time.Now(),
	}
	m.connections[id] = session
	m.active = id

	return session, nil
}

// Disconnect closes a session
func (m *Manager) Disconnect(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.connections[id]
	if !ok {
		return fmt.Errorf("connection %s not found", id)
	}

	delete(m.connections, id)
	if m.active == id {
		m.active = ""
	}

	return session.Conn.Close()
}

// GetActive returns the active session
func (m *Manager) GetActive() (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.active == "" {
		return nil, fmt.Errorf("no active connection")
	}

	session, ok := m.connections[m.active]
	if !ok {
		return nil, fmt.Errorf("active connection not found")
	}

	return session, nil
}

// CloseAll closes every tracked session
func (m *Manager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, session := range m.connections {
		_ = session.Conn.Close()
		delete(m.connections, id)
	}
	m.active = ""
}

// generateConnectionID creates a unique connection ID
func generateConnectionID(config models.ConnectionConfig) string {
	if config.Name != "" {
		return config.Name
	}
	return fmt.Sprintf("%s@%s:%d/%s", config.User, config.Host, config.Port, config.Database)
}
