package models

import (
	"fmt"
	"strings"
	"time"
)

// Supported drivers.
const (
	DriverSQLServer = "sqlserver"
	DriverPostgres  = "postgres"
)

// ConnectionConfig describes one database server login
type ConnectionConfig struct {
	Name                   string `yaml:"name"`
	Driver                 string `yaml:"driver"`
	Host                   string `yaml:"host"`
	Port                   int    `yaml:"port"`
	Database               string `yaml:"database"`
	User                   string `yaml:"user"`
	Password               string `yaml:"-"`
	Encrypt                bool   `yaml:"encrypt"`
	TrustServerCertificate bool   `yaml:"trust_server_certificate"`
}

// Validate checks the fields required before any dial is attempted
func (c ConnectionConfig) Validate() error {
	if strings.TrimSpace(c.Host) == "" {
		return &ValidationError{Field: "host", Message: "host is required"}
	}
	if strings.TrimSpace(c.User) == "" {
		return &ValidationError{Field: "user", Message: "user is required"}
	}
	if c.Port <= 0 || c.Port > 65535 {
		return &ValidationError{Field: "port", Message: fmt.Sprintf("invalid port %d", c.Port)}
	}
	switch c.Driver {
	case DriverSQLServer, DriverPostgres:
	default:
		return &ValidationError{Field: "driver", Message: fmt.Sprintf("unsupported driver %q", c.Driver)}
	}
	return nil
}

// DisplayName returns the profile name, or user@host:port when unnamed
func (c ConnectionConfig) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return fmt.Sprintf("%s@%s:%d", c.User, c.Host, c.Port)
}

// Key identifies a distinct connection profile.
// Host, user and database compare case-insensitively.
func (c ConnectionConfig) Key() string {
	return fmt.Sprintf("%s|%d|%s|%s|%s|%t|%t",
		strings.ToLower(strings.TrimSpace(c.Host)),
		c.Port,
		strings.ToLower(strings.TrimSpace(c.User)),
		strings.ToLower(strings.TrimSpace(c.Database)),
		c.Driver,
		c.Encrypt,
		c.TrustServerCertificate,
	)
}

// ConnectionHistoryEntry represents a saved connection profile
type ConnectionHistoryEntry struct {
	ID                     string `yaml:"id"`
	Name                   string `yaml:"name"`
	Driver                 string `yaml:"driver"`
	Host                   string `yaml:"host"`
	Port                   int    `yaml:"port"`
	Database               string `yaml:"database"`
	User                   string `yaml:"user"`
	Encrypt                bool   `yaml:"encrypt"`
	TrustServerCertificate bool   `yaml:"trust_server_certificate"`
	// Password lives in the OS keyring, never in this file
	PasswordSaved bool      `yaml:"password_saved"`
	LastUsed      time.Time `yaml:"last_used"`
	UsageCount    int       `yaml:"usage_count"`
	CreatedAt     time.Time `yaml:"created_at"`
}

// ToConnectionConfig converts a history entry to a ConnectionConfig (without password)
func (e *ConnectionHistoryEntry) ToConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		Name:                   e.Name,
		Driver:                 e.Driver,
		Host:                   e.Host,
		Port:                   e.Port,
		Database:               e.Database,
		User:                   e.User,
		Encrypt:                e.Encrypt,
		TrustServerCertificate: e.TrustServerCertificate,
	}
}

// DiscoveredInstance is a server found through the environment or a port probe
type DiscoveredInstance struct {
	Driver       string
	Host         string
	Port         int
	Source       DiscoverySource
	Available    bool
	ResponseTime time.Duration
	Config       *ConnectionConfig
}

// DiscoverySource indicates how an instance was discovered
type DiscoverySource int

const (
	SourceEnvironment DiscoverySource = iota
	SourcePortScan
)

func (s DiscoverySource) String() string {
	switch s {
	case SourceEnvironment:
		return "Environment"
	case SourcePortScan:
		return "Port Scan"
	default:
		return "Unknown"
	}
}
