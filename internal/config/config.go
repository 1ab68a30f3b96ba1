package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// AppName names the config, data and log directories
const AppName = "lazyssms"

// Config holds all application configuration
type Config struct {
	General    GeneralConfig    `mapstructure:"general" yaml:"general"`
	UI         UIConfig         `mapstructure:"ui" yaml:"ui"`
	Data       DataConfig       `mapstructure:"data" yaml:"data"`
	Connection ConnectionConfig `mapstructure:"connection" yaml:"connection"`
	History    HistoryConfig    `mapstructure:"history" yaml:"history"`
}

type GeneralConfig struct {
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
	LogDir   string `mapstructure:"log_dir" yaml:"log_dir"`
	// timeouts in seconds, 0 disables
	QueryTimeout   int `mapstructure:"query_timeout" yaml:"query_timeout"`
	ConnectTimeout int `mapstructure:"connect_timeout" yaml:"connect_timeout"`
}

type UIConfig struct {
	Theme        string `mapstructure:"theme" yaml:"theme"`
	MouseEnabled bool   `mapstructure:"mouse" yaml:"mouse"`
}

type DataConfig struct {
	MaxCellWidth    int `mapstructure:"max_cell_width" yaml:"max_cell_width"`
	WidthSampleRows int `mapstructure:"width_sample_rows" yaml:"width_sample_rows"`
	MirrorBatchSize int `mapstructure:"mirror_batch_size" yaml:"mirror_batch_size"`
}

// ConnectionConfig holds the defaults of the connection form
type ConnectionConfig struct {
	Driver                 string `mapstructure:"driver" yaml:"driver"`
	Port                   int    `mapstructure:"port" yaml:"port"`
	Database               string `mapstructure:"database" yaml:"database"`
	Encrypt                bool   `mapstructure:"encrypt" yaml:"encrypt"`
	TrustServerCertificate bool   `mapstructure:"trust_server_certificate" yaml:"trust_server_certificate"`
	Remember               bool   `mapstructure:"remember" yaml:"remember"`
	SavePassword           bool   `mapstructure:"save_password" yaml:"save_password"`
}

type HistoryConfig struct {
	MaxConnections int `mapstructure:"max_connections" yaml:"max_connections"`
	MaxQueries     int `mapstructure:"max_queries" yaml:"max_queries"`
}

// QueryTimeoutDuration converts the query timeout, 0 meaning none
func (c *Config) QueryTimeoutDuration() time.Duration {
	return time.Duration(c.General.QueryTimeout) * time.Second
}

// ConnectTimeoutDuration converts the connect timeout, 0 meaning none
func (c *Config) ConnectTimeoutDuration() time.Duration {
	return time.Duration(c.General.ConnectTimeout) * time.Second
}

// GetDefaults returns a Config with all default values
func GetDefaults() *Config {
	return &Config{
		General: GeneralConfig{
			LogLevel:       "info",
			QueryTimeout:   0,
			ConnectTimeout: 15,
		},
		UI: UIConfig{
			Theme:        "default",
			MouseEnabled: true,
		},
		Data: DataConfig{
			MaxCellWidth:    60,
			WidthSampleRows: 200,
			MirrorBatchSize: 1000,
		},
		Connection: ConnectionConfig{
			Driver:                 "sqlserver",
			Port:                   1433,
			Database:               "master",
			Encrypt:                true,
			TrustServerCertificate: true,
			Remember:               true,
			SavePassword:           false,
		},
		History: HistoryConfig{
			MaxConnections: 20,
			MaxQueries:     500,
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := GetDefaults()
	v.SetDefault("general.log_level", d.General.LogLevel)
	v.SetDefault("general.log_dir", d.General.LogDir)
	v.SetDefault("general.query_timeout", d.General.QueryTimeout)
	v.SetDefault("general.connect_timeout", d.General.ConnectTimeout)
	v.SetDefault("ui.theme", d.UI.Theme)
	v.SetDefault("ui.mouse", d.UI.MouseEnabled)
	v.SetDefault("data.max_cell_width", d.Data.MaxCellWidth)
	v.SetDefault("data.width_sample_rows", d.Data.WidthSampleRows)
	v.SetDefault("data.mirror_batch_size", d.Data.MirrorBatchSize)
	v.SetDefault("connection.driver", d.Connection.Driver)
	v.SetDefault("connection.port", d.Connection.Port)
	v.SetDefault("connection.database", d.Connection.Database)
	v.SetDefault("connection.encrypt", d.Connection.Encrypt)
	v.SetDefault("connection.trust_server_certificate", d.Connection.TrustServerCertificate)
	v.SetDefault("connection.remember", d.Connection.Remember)
	v.SetDefault("connection.save_password", d.Connection.SavePassword)
	v.SetDefault("history.max_connections", d.History.MaxConnections)
	v.SetDefault("history.max_queries", d.History.MaxQueries)
}

// Load loads configuration from the default locations
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom loads configuration from file, or from the default locations
// when file is empty. A missing default file is not an error.
func LoadFrom(file string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")

		// 1. User config directory
		if configDir, err := GetConfigPath(); err == nil {
			v.AddConfigPath(configDir)
		}
		// 2. Current directory
		v.AddConfigPath(".")
		// 3. Default config directory
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Save writes cfg to the user config directory
func Save(cfg *Config) error {
	dir, err := GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to resolve config dir: %w", err)
	}
	return SaveTo(filepath.Join(dir, "config.yaml"), cfg)
}

// SaveTo writes cfg as YAML to path
func SaveTo(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// GetConfigPath returns the user config directory path
func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, AppName), nil
}

// GetDataPath returns the directory for history databases and logs
func GetDataPath() (string, error) {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", AppName), nil
}
