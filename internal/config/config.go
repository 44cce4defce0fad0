// Package config resolves the runtime configuration of juli.
//
// Values are layered with viper, lowest precedence first:
//
//  1. built-in defaults ([Default])
//  2. config.yaml in the data directory (optional)
//  3. JULI_* environment variables
//  4. command-line flags bound with [Load]
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/inovacc/juli/internal/application"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	BackendBolt   = "bolt"
	BackendSQLite = "sqlite"

	envPrefix = "JULI"
)

// Config holds the application configuration
type Config struct {
	// DataDir is the per-installation directory holding the settings store,
	// pictures, account pictures and partitions
	DataDir string `mapstructure:"data_dir" json:"data_dir"`

	// Backend selects the settings store implementation ("bolt" or "sqlite")
	Backend string `mapstructure:"backend" json:"backend"`

	// Manifest is the path of the product identity manifest
	Manifest string `mapstructure:"manifest" json:"manifest"`

	// LogLevel is one of debug, info, warn, error
	LogLevel string `mapstructure:"log_level" json:"log_level"`

	// Listen is the address the window broadcast server binds to
	Listen string `mapstructure:"listen" json:"listen"`

	// DownloadTimeout bounds a single picture download
	DownloadTimeout time.Duration `mapstructure:"download_timeout" json:"download_timeout"`
}

// flagKeys maps flag names to configuration keys.
var flagKeys = map[string]string{
	"data-dir":  "data_dir",
	"backend":   "backend",
	"manifest":  "manifest",
	"log-level": "log_level",
	"listen":    "listen",
}

// Default returns a Config with sensible defaults
func Default() Config {
	dir, err := application.GetApplicationDirectory()
	if err != nil {
		dir = "." + application.AppName
	}

	return Config{
		DataDir:         dir,
		Backend:         BackendBolt,
		LogLevel:        "info",
		Listen:          "127.0.0.1:4300",
		DownloadTimeout: 30 * time.Second,
	}
}

// Load resolves the configuration. Flags may be nil.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	def := Default()

	v.SetDefault("data_dir", def.DataDir)
	v.SetDefault("backend", def.Backend)
	v.SetDefault("manifest", "")
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("listen", def.Listen)
	v.SetDefault("download_timeout", def.DownloadTimeout.String())

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}

			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
			}
		}
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(v.GetString("data_dir"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if cfg.Manifest == "" {
		cfg.Manifest = filepath.Join(cfg.DataDir, application.ManifestFile)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the fields that have a closed set of values.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendBolt, BackendSQLite:
	default:
		return fmt.Errorf("unknown backend %q (want %s or %s)", c.Backend, BackendBolt, BackendSQLite)
	}

	if c.DataDir == "" {
		return errors.New("data directory is required")
	}

	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}

	return nil
}

// ParseLevel converts a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", s, err)
	}

	return level, nil
}
