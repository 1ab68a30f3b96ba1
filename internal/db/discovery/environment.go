package discovery

import (
	"os"
	"strconv"
	"strings"

	"github.com/rebeliceyang/lazyssms/internal/models"
)

// Getenv looks up one environment variable
type Getenv func(string) string

// ParseEnvironment reads sqlcmd and libpq style variables. SQL Server
// settings come first.
func ParseEnvironment(getenv Getenv) []models.DiscoveredInstance {
	if getenv == nil {
		getenv = os.Getenv
	}

	var instances []models.DiscoveredInstance
	for _, cfg := range []*models.ConnectionConfig{sqlcmdConfig(getenv), libpqConfig(getenv)} {
		if cfg == nil {
			continue
		}
		instances = append(instances, models.DiscoveredInstance{
			Driver:    cfg.Driver,
			Host:      cfg.Host,
			Port:      cfg.Port,
			Source:    models.SourceEnvironment,
			Available: true, // Assume available, will be verified on connect
			Config:    cfg,
		})
	}
	return instances
}

// sqlcmdConfig understands SQLCMDSERVER as host or host,port
func sqlcmdConfig(getenv Getenv) *models.ConnectionConfig {
	server := strings.TrimSpace(getenv("SQLCMDSERVER"))
	user := getenv("SQLCMDUSER")
	if server == "" && user == "" {
		return nil
	}

	host, port := server, 1433
	if h, p, ok := strings.Cut(server, ","); ok {
		host = strings.TrimSpace(h)
		port = parsePort(strings.TrimSpace(p), port)
	}
	if host == "" {
		host = "localhost"
	}

	database := getenv("SQLCMDDBNAME")
	if database == "" {
		database = "master"
	}

	return &models.ConnectionConfig{
		Name:                   "Environment (sqlcmd)",
		Driver:                 models.DriverSQLServer,
		Host:                   host,
		Port:                   port,
		Database:               database,
		User:                   user,
		Password:               getenv("SQLCMDPASSWORD"),
		Encrypt:                true,
		TrustServerCertificate: true,
	}
}

func libpqConfig(getenv Getenv) *models.ConnectionConfig {
	host := getenv("PGHOST")
	database := getenv("PGDATABASE")
	user := getenv("PGUSER")

	if host == "" && database == "" && user == "" {
		return nil
	}

	// Set defaults
	if host == "" {
		host = "localhost"
	}
	if user == "" {
		user = getenv("USER")
	}
	if database == "" {
		database = user
	}

	sslMode := getenv("PGSSLMODE")

	return &models.ConnectionConfig{
		Name:                   "Environment (libpq)",
		Driver:                 models.DriverPostgres,
		Host:                   host,
		Port:                   parsePort(getenv("PGPORT"), 5432),
		Database:               database,
		User:                   user,
		Password:               getenv("PGPASSWORD"),
		Encrypt:                sslMode != "" && sslMode != "disable",
		TrustServerCertificate: sslMode != "verify-ca" && sslMode != "verify-full",
	}
}

func parsePort(s string, fallback int) int {
	if p, err := strconv.Atoi(s); err == nil && p > 0 && p <= 65535 {
		return p
	}
	return fallback
}
