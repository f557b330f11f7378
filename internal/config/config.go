// Package config loads the catalog configuration shared by the server and
// the install tool.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/artpar/coursecatalog/internal/shell/store"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// =============================================================================
// Config Types
// =============================================================================

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Address returns the server address in host:port format.
func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseConfig holds database configuration.
//
// For postgres the connection is built from the discrete fields unless DSN
// is set. For sqlite3 DSN is the database file.
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	DSN      string `mapstructure:"dsn"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DataSource returns the driver-specific connection string.
func (c DatabaseConfig) DataSource() string {
	if c.DSN != "" || c.Driver != store.DriverPostgres {
		return c.DSN
	}

	parts := []string{
		"host=" + quoteValue(c.Host),
		fmt.Sprintf("port=%d", c.Port),
		"user=" + quoteValue(c.User),
		"password=" + quoteValue(c.Password),
		"dbname=" + quoteValue(c.Name),
		"sslmode=" + quoteValue(c.SSLMode),
	}
	return strings.Join(parts, " ")
}

// StoreConfig returns the settings for store.Open.
func (c DatabaseConfig) StoreConfig() store.Config {
	host := c.Host
	if c.Driver == store.DriverSQLite {
		host = c.DSN
	}
	return store.Config{
		Driver: c.Driver,
		DSN:    c.DataSource(),
		Host:   host,
	}
}

// quoteValue quotes a keyword/value connection parameter when needed.
func quoteValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

// =============================================================================
// Config Loading
// =============================================================================

// LoadDotEnv loads variables from a .env file into the process environment.
// A missing file is not an error. Variables already set are kept.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// LoadConfig loads configuration from file and environment.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("database.driver", store.DriverPostgres)
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "")
	v.SetDefault("database.sslmode", "require") // TLS without certificate verification
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Load from file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigParseError); ok {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
			// File not found is OK, we'll use defaults
		}
	}

	// Enable environment variable overrides
	v.SetEnvPrefix("CATALOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Variables used by existing deployments. The prefixed name wins.
	legacy := map[string]string{
		"server.port":       "PORT",
		"database.host":     "DB_HOST",
		"database.port":     "DB_PORT",
		"database.user":     "DB_USERNAME",
		"database.password": "DB_PASSWORD",
		"database.name":     "DB_DATABASE",
		"database.sslmode":  "DB_SSLMODE",
	}
	for key, env := range legacy {
		prefixed := "CATALOG_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	// Unmarshal config
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks settings that would otherwise fail later at startup.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case store.DriverPostgres:
		if c.Database.DSN == "" && c.Database.Name == "" {
			return errors.New("database.name (DB_DATABASE) is required for postgres")
		}
	case store.DriverSQLite:
		if c.Database.DSN == "" {
			return errors.New("database.dsn is required for sqlite3")
		}
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	return nil
}

// =============================================================================
// Logger Setup
// =============================================================================

// SetupLogger creates a logger with the configured level and format.
func SetupLogger(cfg *Config) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.ToLower(cfg.Log.Format) == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
