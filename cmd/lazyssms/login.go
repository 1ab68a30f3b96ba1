package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rebeliceyang/lazyssms/internal/db/connection"
	"github.com/rebeliceyang/lazyssms/internal/models"
)

// loginFlags describe a connection on the command line, either as a saved
// profile name or as explicit fields
type loginFlags struct {
	profile  string
	driver   string
	host     string
	port     int
	user     string
	database string
	// passwordEnv names the variable holding the password
	passwordEnv string
}

func (l *loginFlags) register(cmd *cobra.Command, prefix, passwordEnv string) {
	name := func(s string) string {
		if prefix == "" {
			return s
		}
		return prefix + "-" + s
	}

	// --profile/--database alone, --from/--from-db with a prefix
	profileFlag, databaseFlag := "profile", "database"
	if prefix != "" {
		profileFlag, databaseFlag = prefix, prefix+"-db"
	}

	l.passwordEnv = passwordEnv
	cmd.Flags().StringVar(&l.profile, profileFlag, "", "saved connection name")
	cmd.Flags().StringVar(&l.driver, name("driver"), models.DriverSQLServer, "driver (sqlserver, postgres)")
	cmd.Flags().StringVar(&l.host, name("host"), "", "server host")
	cmd.Flags().IntVar(&l.port, name("port"), 0, "server port (default: driver default)")
	cmd.Flags().StringVar(&l.user, name("user"), "", "login name")
	cmd.Flags().StringVar(&l.database, databaseFlag, "", "database to use")
}

// resolve builds the connection config. A saved profile supplies its
// keyring password; the environment variable overrides it.
func (l *loginFlags) resolve(env *environment) (models.ConnectionConfig, error) {
	var cfg models.ConnectionConfig

	if l.profile != "" {
		if env.Connections == nil {
			return cfg, fmt.Errorf("connection history is unavailable")
		}
		entry, err := env.Connections.FindByName(l.profile)
		if err != nil {
			return cfg, err
		}
		cfg = env.Connections.GetConnectionConfigWithPassword(entry)
	} else {
		cfg = models.ConnectionConfig{
			Driver:                 l.driver,
			Host:                   l.host,
			Port:                   l.port,
			User:                   l.user,
			Encrypt:                env.Config.Connection.Encrypt,
			TrustServerCertificate: env.Config.Connection.TrustServerCertificate,
		}
		if cfg.Port == 0 {
			d, err := connection.DialectFor(cfg.Driver)
			if err != nil {
				return cfg, err
			}
			cfg.Port = d.DefaultPort()
		}
	}

	if l.database != "" {
		cfg.Database = l.database
	}
	if password, ok := os.LookupEnv(l.passwordEnv); ok {
		cfg.Password = password
	}

	return cfg, cfg.Validate()
}

func openLogin(ctx context.Context, env *environment, l *loginFlags) (connection.Connection, error) {
	cfg, err := l.resolve(env)
	if err != nil {
		return nil, err
	}

	if d := env.Config.ConnectTimeoutDuration(); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	return connection.NewManager(nil).Open(ctx, cfg)
}
