// Package main provides the curlhub server CLI.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/good-yellow-bee/curlhub/internal/auth"
)

// Session backends.
const (
	backendJWT    = "jwt"
	backendRedis  = "redis"
	backendMemory = "memory"
)

// Config represents the server configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Session  SessionConfig  `yaml:"session"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	CORS     CORSConfig     `yaml:"cors"`
	Security SecurityConfig `yaml:"security"`
	Verbose  bool           `yaml:"-"` // set via CLI flag
}

// ServerConfig contains HTTP listener settings.
type ServerConfig struct {
	HTTPAddress string    `yaml:"http_address"` // HTTP listen address (default: :8080)
	BehindProxy bool      `yaml:"behind_proxy"` // Trust X-Forwarded-For / X-Real-IP
	TLS         TLSConfig `yaml:"tls"`
}

// TLSConfig contains HTTPS settings.
type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// DatabaseConfig contains SQLite settings.
type DatabaseConfig struct {
	Path string `yaml:"path"` // default: ./data/curlhub.db
}

// SessionConfig selects and configures the session backend.
type SessionConfig struct {
	Backend       string      `yaml:"backend"`        // jwt, redis or memory (default: jwt)
	TTL           string      `yaml:"ttl"`            // Session lifetime (default: 168h)
	CookieName    string      `yaml:"cookie_name"`    // default: curlhub_session
	SecureCookies bool        `yaml:"secure_cookies"` // Force the Secure cookie attribute
	PruneSchedule string      `yaml:"prune_schedule"` // Cron spec for expired-session pruning
	Redis         RedisConfig `yaml:"redis"`

	// Secret signs jwt tokens. Read from CURLHUB_SESSION_SECRET only.
	Secret string `yaml:"-"`
}

// RedisConfig contains redis session store settings.
type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"` // default: :9090
}

// CORSConfig lists browser origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// SecurityConfig contains CSRF and password hashing settings.
type SecurityConfig struct {
	CSRFEnabled    bool              `yaml:"csrf_enabled"`
	TrustedOrigins []string          `yaml:"trusted_origins"`
	Argon2         auth.Argon2Params `yaml:"argon2"`

	// CSRFSecret is read from CURLHUB_CSRF_SECRET only.
	CSRFSecret string `yaml:"-"`
}

// LoadConfig loads configuration from a YAML file. An empty path yields the
// defaults. Environment overrides are applied in both cases.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// applyEnv overrides file settings with CURLHUB_* environment variables.
func (c *Config) applyEnv() {
	setString(&c.Server.HTTPAddress, "CURLHUB_HTTP_ADDRESS")
	setString(&c.Database.Path, "CURLHUB_DB_PATH")
	setString(&c.Session.Backend, "CURLHUB_SESSION_BACKEND")
	setString(&c.Session.TTL, "CURLHUB_SESSION_TTL")
	setString(&c.Session.Secret, "CURLHUB_SESSION_SECRET")
	setString(&c.Session.Redis.Address, "CURLHUB_REDIS_ADDRESS")
	setString(&c.Session.Redis.Password, "CURLHUB_REDIS_PASSWORD")
	setString(&c.Metrics.Address, "CURLHUB_METRICS_ADDRESS")
	setString(&c.Security.CSRFSecret, "CURLHUB_CSRF_SECRET")

	if v := os.Getenv("CURLHUB_REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			c.Session.Redis.DB = db
		}
	}
	if v := os.Getenv("CURLHUB_CORS_ORIGINS"); v != "" {
		c.CORS.AllowedOrigins = strings.Split(v, ",")
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// setDefaults sets default values for missing config fields.
func (c *Config) setDefaults() {
	if c.Server.HTTPAddress == "" {
		c.Server.HTTPAddress = ":8080"
	}
	if c.Database.Path == "" {
		c.Database.Path = "./data/curlhub.db"
	}
	if c.Session.Backend == "" {
		c.Session.Backend = backendJWT
	}
	if c.Session.TTL == "" {
		c.Session.TTL = "168h"
	}
	if c.Session.CookieName == "" {
		c.Session.CookieName = "curlhub_session"
	}
	if c.Session.PruneSchedule == "" {
		c.Session.PruneSchedule = "@every 1h"
	}
	if c.Metrics.Address == "" {
		c.Metrics.Address = ":9090"
	}
	c.Security.Argon2.SetDefaults()
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.HTTPAddress == "" {
		return fmt.Errorf("server.http_address is required")
	}
	if c.Server.TLS.Enabled {
		if c.Server.TLS.CertFile == "" {
			return fmt.Errorf("server.tls.cert_file is required when TLS is enabled")
		}
		if c.Server.TLS.KeyFile == "" {
			return fmt.Errorf("server.tls.key_file is required when TLS is enabled")
		}
	}

	ttl, err := time.ParseDuration(c.Session.TTL)
	if err != nil {
		return fmt.Errorf("session.ttl: %w", err)
	}
	if ttl <= 0 {
		return fmt.Errorf("session.ttl must be positive")
	}

	switch c.Session.Backend {
	case backendJWT:
		if len(c.Session.Secret) < 32 {
			return fmt.Errorf("CURLHUB_SESSION_SECRET must be at least 32 bytes for the jwt session backend")
		}
	case backendRedis:
		if c.Session.Redis.Address == "" {
			return fmt.Errorf("session.redis.address is required for the redis session backend")
		}
	case backendMemory:
	default:
		return fmt.Errorf("session.backend must be one of jwt, redis, memory; got %q", c.Session.Backend)
	}

	if _, err := cron.ParseStandard(c.Session.PruneSchedule); err != nil {
		return fmt.Errorf("session.prune_schedule: %w", err)
	}

	if c.Security.CSRFEnabled && len(c.Security.CSRFSecret) != 32 {
		return fmt.Errorf("CURLHUB_CSRF_SECRET must be exactly 32 bytes when CSRF is enabled")
	}
	return nil
}

// SessionTTL returns the parsed session lifetime. Call after Validate.
func (c *Config) SessionTTL() time.Duration {
	ttl, _ := time.ParseDuration(c.Session.TTL)
	return ttl
}
