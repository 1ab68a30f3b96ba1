package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/rebeliceyang/lazyssms/internal/app"
	"github.com/rebeliceyang/lazyssms/internal/config"
	"github.com/rebeliceyang/lazyssms/internal/connection_history"
	"github.com/rebeliceyang/lazyssms/internal/db/connection"
	"github.com/rebeliceyang/lazyssms/internal/db/discovery"
	"github.com/rebeliceyang/lazyssms/internal/favorites"
	"github.com/rebeliceyang/lazyssms/internal/history"
	"github.com/rebeliceyang/lazyssms/internal/logging"
)

var (
	cfgFile  string
	logLevel string
	version  = "dev"
	commit   = "none"
)

var rootCmd = &cobra.Command{
	Use:   "lazyssms",
	Short: "Terminal SQL console for SQL Server and PostgreSQL",
	Long: `lazyssms is a keyboard driven SQL console: a schema tree, tabbed
query editors and a scrollable result grid in one terminal window.

Running without a subcommand launches the interactive console.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup()
		if err != nil {
			return err
		}
		defer env.Close()
		return runTUI(env)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "lazyssms %s (%s)\n", version, commit)
	},
}

func main() {
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: <user config dir>/lazyssms/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error); overrides the config file")
	rootCmd.AddCommand(versionCmd, execCmd, mirrorCmd)
}

// environment is the loaded config with the log file and the persistent
// stores shared by every command
type environment struct {
	Config      *config.Config
	ConfigDir   string
	DataDir     string
	Connections *connection_history.Manager

	logFile io.Closer
}

func setup() (*environment, error) {
	cfg, err := config.LoadFrom(cfgFile)
	if err != nil {
		return nil, err
	}

	configDir, err := config.GetConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config dir: %w", err)
	}
	dataDir, err := config.GetDataPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data dir: %w", err)
	}

	level := cfg.General.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	logDir := cfg.General.LogDir
	if logDir == "" {
		logDir = dataDir
	}
	_, logFile, err := logging.Setup(level, logDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	slog.Info("starting", "version", version, "config", cfgFile)

	connections, err := connection_history.NewManager(configDir, cfg.History.MaxConnections, connection_history.NewKeyringStore())
	if err != nil {
		// a corrupt history file should not lock the user out
		slog.Warn("connection history unavailable", "error", err)
		connections = nil
	}

	return &environment{
		Config:      cfg,
		ConfigDir:   configDir,
		DataDir:     dataDir,
		Connections: connections,
		logFile:     logFile,
	}, nil
}

func (e *environment) Close() {
	slog.Info("exiting")
	if e.logFile != nil {
		e.logFile.Close()
	}
}

func runTUI(env *environment) error {
	cfg := env.Config

	queries, err := history.NewStore(filepath.Join(env.DataDir, "history.db"), cfg.History.MaxQueries)
	if err != nil {
		slog.Warn("query history unavailable", "error", err)
		queries = nil
	} else {
		defer queries.Close()
	}

	favs, err := favorites.NewManager(env.ConfigDir)
	if err != nil {
		slog.Warn("favorites unavailable", "error", err)
		favs = nil
	}

	home, _ := os.UserHomeDir()

	model := app.New(app.Options{
		Config:      cfg,
		Manager:     connection.NewManager(nil),
		Connections: env.Connections,
		Queries:     queries,
		Favorites:   favs,
		Discoverer:  discovery.NewDiscoverer(300*time.Millisecond, nil),
		Home:        home,
	})

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.UI.MouseEnabled {
		opts = append(opts, tea.WithMouseCellMotion())
	}

	p := tea.NewProgram(model, opts...)
	if _, err := p.Run(); err != nil {
		slog.Error("program failed", "error", err)
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}
