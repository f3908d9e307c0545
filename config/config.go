// Package config loads the splitter configuration from a TOML file with
// environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/billbatista/acasinha-splitter/ledger"
)

// Config holds all configuration.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Storage StorageConfig `toml:"storage"`
	Ledger  LedgerConfig  `toml:"ledger"`
	Events  EventsConfig  `toml:"events"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

// StorageConfig selects where the ledger is persisted. Driver is one of
// "file", "sqlite", "postgres" or "memory"; Path is used by the file driver
// and DSN by the SQL drivers.
type StorageConfig struct {
	Driver string `toml:"driver"`
	Path   string `toml:"path,omitempty"`
	DSN    string `toml:"dsn,omitempty"`
	Key    string `toml:"key"`
}

type LedgerConfig struct {
	People []string `toml:"people"`
}

type EventsConfig struct {
	Enabled    bool `toml:"enabled"`
	BufferSize int  `toml:"buffer_size"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr: ":5000",
		},
		Storage: StorageConfig{
			Driver: "file",
			Path:   filepath.Join(DataDir(), "ledger.json"),
			Key:    ledger.StorageKey,
		},
		Ledger: LedgerConfig{
			People: append([]string(nil), ledger.DefaultPeople...),
		},
		Events: EventsConfig{
			Enabled:    true,
			BufferSize: 100,
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "billsplit")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "billsplit")
}

// DataDir returns the XDG-compliant data directory.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "billsplit")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "billsplit")
}

// DefaultPath returns the full path to the config file.
func DefaultPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file at path, returning defaults if it doesn't
// exist. Environment variables override the file.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err == nil {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("BILLSPLIT_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("BILLSPLIT_STORAGE_DRIVER"); v != "" {
		cfg.Storage.Driver = v
	}
	if v := os.Getenv("BILLSPLIT_STORAGE_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
	if v := os.Getenv("BILLSPLIT_STORAGE_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("BILLSPLIT_EVENTS_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parsing BILLSPLIT_EVENTS_ENABLED: %w", err)
		}
		cfg.Events.Enabled = enabled
	}
	return nil
}

// Validate checks that the storage section is usable.
func (c Config) Validate() error {
	switch c.Storage.Driver {
	case "memory":
	case "file":
		if c.Storage.Path == "" {
			return fmt.Errorf("storage driver file needs a path")
		}
	case "sqlite", "postgres":
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage driver %s needs a dsn", c.Storage.Driver)
		}
	default:
		return fmt.Errorf("unknown storage driver: %q", c.Storage.Driver)
	}
	if c.Events.BufferSize < 0 {
		return fmt.Errorf("events buffer_size must not be negative")
	}
	return nil
}

// Save writes the config to path.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}
