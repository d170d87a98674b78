package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.HTTP.Port != 4000 {
		t.Errorf("Port = %d, want 4000", cfg.HTTP.Port)
	}
	if cfg.Storage.Path != "./blogcafe.db" {
		t.Errorf("Storage.Path = %q, want ./blogcafe.db", cfg.Storage.Path)
	}
	if cfg.Scheduler.IntervalSeconds != 60 {
		t.Errorf("IntervalSeconds = %d, want 60", cfg.Scheduler.IntervalSeconds)
	}
	if cfg.Scheduler.BatchSize != 50 {
		t.Errorf("BatchSize = %d, want 50", cfg.Scheduler.BatchSize)
	}
	if !cfg.Telemetry.Enabled {
		t.Error("Telemetry.Enabled = false, want true")
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.HTTP.Port != 4000 {
		t.Errorf("Port = %d, want default 4000", cfg.HTTP.Port)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[http]
port = 8080

[scheduler]
interval_seconds = 30
batch_size = 10

[auth]
author_token = "writer"
admin_token = "root"

[telemetry]
enabled = false
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.HTTP.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.HTTP.Port)
	}
	if cfg.Scheduler.IntervalSeconds != 30 {
		t.Errorf("IntervalSeconds = %d, want 30", cfg.Scheduler.IntervalSeconds)
	}
	if cfg.Scheduler.BatchSize != 10 {
		t.Errorf("BatchSize = %d, want 10", cfg.Scheduler.BatchSize)
	}
	if cfg.Auth.AuthorToken != "writer" || cfg.Auth.AdminToken != "root" {
		t.Errorf("Auth = %+v, want tokens from file", cfg.Auth)
	}
	if cfg.Telemetry.Enabled {
		t.Error("Telemetry.Enabled = true, want false")
	}
	// Sections not present in the file keep their defaults.
	if cfg.Storage.Path != "./blogcafe.db" {
		t.Errorf("Storage.Path = %q, want default", cfg.Storage.Path)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[http]\nport = 8080\n"), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	t.Setenv("PORT", "9999")
	t.Setenv("SQLITE_DB_PATH", "/tmp/env.db")
	t.Setenv("AUTHOR_TOKEN", "env-writer")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.HTTP.Port != 9999 {
		t.Errorf("Port = %d, want env override 9999", cfg.HTTP.Port)
	}
	if cfg.Storage.Path != "/tmp/env.db" {
		t.Errorf("Storage.Path = %q, want /tmp/env.db", cfg.Storage.Path)
	}
	if cfg.Auth.AuthorToken != "env-writer" {
		t.Errorf("AuthorToken = %q, want env-writer", cfg.Auth.AuthorToken)
	}
}

func TestLoad_RejectsBadSchedulerValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"zero interval", "[scheduler]\ninterval_seconds = 0\n"},
		{"negative batch", "[scheduler]\nbatch_size = -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatalf("failed to write config file: %v", err)
			}
			if _, err := Load(path); err == nil {
				t.Error("Load() succeeded, want validation error")
			}
		})
	}
}
