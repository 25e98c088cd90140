package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.Session.Secret = testSecret
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.HTTPAddress != ":8080" {
		t.Errorf("HTTPAddress = %q", cfg.Server.HTTPAddress)
	}
	if cfg.Session.Backend != backendJWT {
		t.Errorf("Backend = %q", cfg.Session.Backend)
	}
	if cfg.Session.CookieName != "curlhub_session" {
		t.Errorf("CookieName = %q", cfg.Session.CookieName)
	}
	if cfg.SessionTTL() != 7*24*time.Hour {
		t.Errorf("SessionTTL = %v", cfg.SessionTTL())
	}
	if cfg.Security.Argon2.Memory == 0 {
		t.Error("argon2 defaults not applied")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid jwt", func(c *Config) {}, ""},
		{"jwt without secret", func(c *Config) { c.Session.Secret = "" }, "CURLHUB_SESSION_SECRET"},
		{"jwt with short secret", func(c *Config) { c.Session.Secret = "short" }, "CURLHUB_SESSION_SECRET"},
		{"memory needs no secret", func(c *Config) { c.Session.Backend = backendMemory; c.Session.Secret = "" }, ""},
		{"redis without address", func(c *Config) { c.Session.Backend = backendRedis }, "session.redis.address"},
		{"redis with address", func(c *Config) {
			c.Session.Backend = backendRedis
			c.Session.Redis.Address = "localhost:6379"
		}, ""},
		{"unknown backend", func(c *Config) { c.Session.Backend = "cookie" }, "session.backend"},
		{"bad ttl", func(c *Config) { c.Session.TTL = "a week" }, "session.ttl"},
		{"negative ttl", func(c *Config) { c.Session.TTL = "-1h" }, "session.ttl"},
		{"bad schedule", func(c *Config) { c.Session.PruneSchedule = "every now and then" }, "session.prune_schedule"},
		{"tls without cert", func(c *Config) { c.Server.TLS.Enabled = true }, "cert_file"},
		{"csrf without secret", func(c *Config) { c.Security.CSRFEnabled = true }, "CURLHUB_CSRF_SECRET"},
		{"csrf with secret", func(c *Config) {
			c.Security.CSRFEnabled = true
			c.Security.CSRFSecret = testSecret
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()

			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "curlhub.yaml")
	data := `
server:
  http_address: ":9000"
database:
  path: /tmp/curlhub-test.db
session:
  backend: memory
  ttl: 2h
metrics:
  enabled: true
cors:
  allowed_origins: ["https://app.example.com"]
security:
  argon2:
    memory: 2048
`
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("CURLHUB_HTTP_ADDRESS", ":9100")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() = %v", err)
	}

	if cfg.Server.HTTPAddress != ":9100" {
		t.Errorf("env override not applied: %q", cfg.Server.HTTPAddress)
	}
	if cfg.Session.Backend != backendMemory || cfg.SessionTTL() != 2*time.Hour {
		t.Errorf("session = %+v", cfg.Session)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Address != ":9090" {
		t.Errorf("metrics = %+v", cfg.Metrics)
	}
	if len(cfg.CORS.AllowedOrigins) != 1 {
		t.Errorf("cors = %v", cfg.CORS.AllowedOrigins)
	}
	if cfg.Security.Argon2.Memory != 2048 || cfg.Security.Argon2.Iterations == 0 {
		t.Errorf("argon2 = %+v", cfg.Security.Argon2)
	}
}

func TestLoadConfig_SecretFromEnvOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "curlhub.yaml")
	// A secret in the file is ignored.
	if err := os.WriteFile(path, []byte("session:\n  secret: "+testSecret+"\n"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error without CURLHUB_SESSION_SECRET")
	}

	t.Setenv("CURLHUB_SESSION_SECRET", testSecret)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() = %v", err)
	}
	if cfg.Session.Secret != testSecret {
		t.Error("secret not read from environment")
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
