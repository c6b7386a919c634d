// Package config resolves the configuration directory and the layered settings:
// defaults, then config.yaml, then TASKDESK_* environment variables, then flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	// AppName is the application directory name.
	AppName = "taskdesk"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "TASKDESK"

	// ConfigFile is the optional settings filename.
	ConfigFile = "config.yaml"

	// CredentialsFile holds the persisted credential record.
	CredentialsFile = "credentials.db"

	// DefaultBaseURL is the backend used when nothing else is configured.
	DefaultBaseURL = "http://localhost:3000"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string `yaml:"-" ignored:"true"`

	// BaseURL is the backend root, without the /api/v1 prefix.
	BaseURL string `yaml:"base_url" envconfig:"BASE_URL"`

	LogLevel string `yaml:"log_level" envconfig:"LOG_LEVEL"`

	// RequestTimeout bounds each backend request. Zero means no limit.
	RequestTimeout time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`

	// Debug enables debug logging.
	Debug bool `yaml:"-" ignored:"true"`

	// Quiet suppresses informational output.
	Quiet bool `yaml:"-" ignored:"true"`
}

// New returns the default configuration for configDir.
// If configDir is empty, uses XDG_CONFIG_HOME/taskdesk or $HOME/.config/taskdesk.
func New(configDir string) *Config {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	return &Config{
		Dir:      dir,
		BaseURL:  DefaultBaseURL,
		LogLevel: "info",
	}
}

// Load builds the configuration for configDir from defaults, the optional
// config file and the environment.
func Load(configDir string) (*Config, error) {
	cfg := New(configDir)

	if err := cfg.loadFile(); err != nil {
		return nil, err
	}
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}

	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		return nil, errors.New("base_url is empty")
	}
	if cfg.RequestTimeout < 0 {
		return nil, fmt.Errorf("request_timeout must not be negative: %s", cfg.RequestTimeout)
	}
	return cfg, nil
}

func (c *Config) loadFile() error {
	data, err := os.ReadFile(c.ConfigPath())
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// ConfigPath returns the path to the optional settings file.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.Dir, ConfigFile)
}

// CredentialsPath returns the path to the credential database.
func (c *Config) CredentialsPath() string {
	return filepath.Join(c.Dir, CredentialsFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// Level returns the slog level. --debug wins over log_level; unknown
// names fall back to info.
func (c *Config) Level() slog.Level {
	if c.Debug {
		return slog.LevelDebug
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
