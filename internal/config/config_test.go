package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	// Test athlete defaults
	if cfg.Athlete.RestingHR != 50 {
		t.Errorf("Athlete.RestingHR = %v, want 50", cfg.Athlete.RestingHR)
	}
	if cfg.Athlete.MaxHR != 185 {
		t.Errorf("Athlete.MaxHR = %v, want 185", cfg.Athlete.MaxHR)
	}
	if cfg.Athlete.ThresholdHR != 165 {
		t.Errorf("Athlete.ThresholdHR = %v, want 165", cfg.Athlete.ThresholdHR)
	}

	if cfg.OpenAI.Model != "gpt-4o-mini" {
		t.Errorf("OpenAI.Model = %q, want %q", cfg.OpenAI.Model, "gpt-4o-mini")
	}
	if cfg.Storage.Backend != BackendFile {
		t.Errorf("Storage.Backend = %q, want %q", cfg.Storage.Backend, BackendFile)
	}
	if cfg.Server.Addr != ":5000" {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, ":5000")
	}

	// Strava config should be empty by default
	if cfg.Strava.ClientID != "" {
		t.Errorf("Strava.ClientID should be empty, got %q", cfg.Strava.ClientID)
	}
	if cfg.Strava.ClientSecret != "" {
		t.Errorf("Strava.ClientSecret should be empty, got %q", cfg.Strava.ClientSecret)
	}
}

func validConfig() Config {
	cfg := DefaultConfig()
	cfg.Strava.ClientID = "12345"
	cfg.Strava.ClientSecret = "abc123secret"
	cfg.OpenAI.APIKey = "sk-test"
	return cfg
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
		errContains string
	}{
		{
			name:        "valid config",
			mutate:      func(c *Config) {},
			expectError: false,
		},
		{
			name:        "empty client ID",
			mutate:      func(c *Config) { c.Strava.ClientID = "" },
			expectError: true,
			errContains: "client_id",
		},
		{
			name:        "placeholder client ID",
			mutate:      func(c *Config) { c.Strava.ClientID = "YOUR_CLIENT_ID" },
			expectError: true,
			errContains: "client_id",
		},
		{
			name:        "placeholder client secret",
			mutate:      func(c *Config) { c.Strava.ClientSecret = "YOUR_CLIENT_SECRET" },
			expectError: true,
			errContains: "client_secret",
		},
		{
			name: "both placeholders",
			mutate: func(c *Config) {
				c.Strava.ClientID = "YOUR_CLIENT_ID"
				c.Strava.ClientSecret = "YOUR_CLIENT_SECRET"
			},
			expectError: true,
			errContains: "client_id", // first error wins
		},
		{
			name:        "missing openai key",
			mutate:      func(c *Config) { c.OpenAI.APIKey = "" },
			expectError: true,
			errContains: "openai.api_key",
		},
		{
			name:        "unknown backend",
			mutate:      func(c *Config) { c.Storage.Backend = "postgres" },
			expectError: true,
			errContains: "storage.backend",
		},
		{
			name:        "redis without address",
			mutate:      func(c *Config) { c.Storage.Backend = BackendRedis },
			expectError: true,
			errContains: "redis_addr",
		},
		{
			name:        "bad server mode",
			mutate:      func(c *Config) { c.Server.Mode = "prod" },
			expectError: true,
			errContains: "server.mode",
		},
		{
			name: "threshold above max",
			mutate: func(c *Config) {
				c.Athlete.ThresholdHR = 190
				c.Athlete.MaxHR = 185
			},
			expectError: true,
			errContains: "threshold_hr",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.expectError {
				if err == nil {
					t.Error("expected error, got nil")
				} else if tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("error %q should contain %q", err.Error(), tt.errContains)
				}
			} else {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	t.Run("missing file without env", func(t *testing.T) {
		t.Setenv("STRAVA_CLIENT_ID", "")
		_, err := LoadFile(filepath.Join(t.TempDir(), "config.json"))
		if err != ErrNoConfig {
			t.Fatalf("LoadFile() error = %v, want ErrNoConfig", err)
		}
	})

	t.Run("missing file with env credentials", func(t *testing.T) {
		t.Setenv("STRAVA_CLIENT_ID", "env-id")
		t.Setenv("STRAVA_CLIENT_SECRET", "env-secret")
		t.Setenv("OPENAI_API_KEY", "sk-env")
		cfg, err := LoadFile(filepath.Join(t.TempDir(), "config.json"))
		if err != nil {
			t.Fatalf("LoadFile() error = %v", err)
		}
		if cfg.Strava.ClientID != "env-id" {
			t.Errorf("Strava.ClientID = %q, want env-id", cfg.Strava.ClientID)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate() error = %v", err)
		}
	})

	t.Run("file values with env override and defaults", func(t *testing.T) {
		t.Setenv("STRAVA_CLIENT_ID", "")
		t.Setenv("OPENAI_MODEL", "gpt-test")
		path := filepath.Join(t.TempDir(), "config.json")
		raw := `{"strava":{"client_id":"file-id","client_secret":"s"},"athlete":{"max_hr":190}}`
		if err := os.WriteFile(path, []byte(raw), 0600); err != nil {
			t.Fatal(err)
		}

		cfg, err := LoadFile(path)
		if err != nil {
			t.Fatalf("LoadFile() error = %v", err)
		}
		if cfg.Strava.ClientID != "file-id" {
			t.Errorf("Strava.ClientID = %q, want file-id", cfg.Strava.ClientID)
		}
		if cfg.OpenAI.Model != "gpt-test" {
			t.Errorf("OpenAI.Model = %q, want gpt-test", cfg.OpenAI.Model)
		}
		if cfg.Athlete.MaxHR != 190 {
			t.Errorf("Athlete.MaxHR = %v, want 190", cfg.Athlete.MaxHR)
		}
		if cfg.Athlete.RestingHR != 50 {
			t.Errorf("Athlete.RestingHR = %v, want default 50", cfg.Athlete.RestingHR)
		}
	})

	t.Run("malformed file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.json")
		if err := os.WriteFile(path, []byte("{"), 0600); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadFile(path); err == nil || !strings.Contains(err.Error(), "parsing config file") {
			t.Fatalf("LoadFile() error = %v, want parse error", err)
		}
	})
}
