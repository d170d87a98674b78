package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

// HTTPConfiguration controls the public API server
type HTTPConfiguration struct {
	Port            int `toml:"port"`
	ShutdownSeconds int `toml:"shutdown_seconds"`
}

// StorageConfiguration controls the SQLite post store
type StorageConfiguration struct {
	Path string `toml:"path"`
}

// SchedulerConfiguration controls the publish sweeper
type SchedulerConfiguration struct {
	IntervalSeconds int `toml:"interval_seconds"`
	BatchSize       int `toml:"batch_size"`
}

// AuthConfiguration holds the static capability tokens guarding authored and
// admin routes. Real token verification is an external concern; these gates
// exist so elevated read paths are not reachable anonymously.
type AuthConfiguration struct {
	AuthorToken string `toml:"author_token"`
	AdminToken  string `toml:"admin_token"`
}

// TelemetryConfiguration toggles the prometheus scrape endpoint
type TelemetryConfiguration struct {
	Enabled bool `toml:"enabled"`
}

type Configuration struct {
	HTTP      HTTPConfiguration      `toml:"http"`
	Storage   StorageConfiguration   `toml:"storage"`
	Scheduler SchedulerConfiguration `toml:"scheduler"`
	Auth      AuthConfiguration      `toml:"auth"`
	Telemetry TelemetryConfiguration `toml:"telemetry"`
}

// Default returns the built-in configuration: port 4000, a local database
// file, a one-minute sweep with a batch of 50, telemetry on.
func Default() *Configuration {
	return &Configuration{
		HTTP: HTTPConfiguration{
			Port:            4000,
			ShutdownSeconds: 5,
		},
		Storage: StorageConfiguration{
			Path: "./blogcafe.db",
		},
		Scheduler: SchedulerConfiguration{
			IntervalSeconds: 60,
			BatchSize:       50,
		},
		Telemetry: TelemetryConfiguration{
			Enabled: true,
		},
	}
}

// Load reads the TOML file at path over the defaults, then applies
// environment overrides. A missing file is not an error; the defaults and
// environment stand alone.
func Load(path string) (*Configuration, error) {
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, fmt.Errorf("failed to decode config file %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to stat config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if cfg.Scheduler.IntervalSeconds <= 0 {
		return nil, fmt.Errorf("scheduler interval must be positive, got %d", cfg.Scheduler.IntervalSeconds)
	}
	if cfg.Scheduler.BatchSize <= 0 {
		return nil, fmt.Errorf("scheduler batch size must be positive, got %d", cfg.Scheduler.BatchSize)
	}

	return cfg, nil
}

func (c *Configuration) applyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.HTTP.Port = port
		}
	}
	if v := os.Getenv("SQLITE_DB_PATH"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("AUTHOR_TOKEN"); v != "" {
		c.Auth.AuthorToken = v
	}
	if v := os.Getenv("ADMIN_TOKEN"); v != "" {
		c.Auth.AdminToken = v
	}
}
