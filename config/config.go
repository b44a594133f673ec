// Package config loads skillguard's runtime configuration from an optional
// YAML file followed by SKILLGUARD_* environment overrides.
package config

import (
	"bytes"
	stdErrors "errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/reglet-dev/skillguard/application/identity"
	"github.com/reglet-dev/skillguard/application/validation"
	"github.com/reglet-dev/skillguard/domain/errors"
	"github.com/reglet-dev/skillguard/log"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SKILLGUARD_"

// Config holds the application configuration.
type Config struct {
	Log       log.Config      `yaml:"log"`
	Server    ServerConfig    `yaml:"server"`
	Session   SessionConfig   `yaml:"session"`
	Approvals ApprovalsConfig `yaml:"approvals"`
	Database  DatabaseConfig  `yaml:"database"`
	OAuth     OAuthConfig     `yaml:"oauth"`
	SAML      SAMLConfig      `yaml:"saml"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	// Addr is the bind address (host:port).
	Addr string `yaml:"addr" validate:"required,hostname_port"`

	// Admins are seeded with the admin role at startup.
	Admins []string `yaml:"admins" validate:"dive,email"`
}

// SessionConfig configures session tokens issued after login.
type SessionConfig struct {
	// Secret signs session tokens. Required by the serve command only.
	Secret string        `yaml:"secret" validate:"omitempty,min=32"`
	TTL    time.Duration `yaml:"ttl" validate:"gte=0"`
}

// ApprovalsConfig locates the approval store.
type ApprovalsConfig struct {
	// Path of the approvals file. Empty selects ~/.skillguard/approvals.yaml.
	Path string `yaml:"path"`
}

// DatabaseConfig locates the user database.
type DatabaseConfig struct {
	// DSN is a postgres:// URL or a SQLite path. Empty selects
	// ~/.skillguard/skillguard.db.
	DSN string `yaml:"dsn"`
}

// OAuthConfig lists OAuth2 identity providers.
type OAuthConfig struct {
	Providers []identity.OAuthProvider `yaml:"providers" validate:"dive"`
}

// SAMLConfig lists SAML identity providers.
type SAMLConfig struct {
	Providers []identity.SAMLProvider `yaml:"providers" validate:"dive"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Log:     log.Config{Level: "info", Format: log.FormatText},
		Server:  ServerConfig{Addr: "localhost:8080"},
		Session: SessionConfig{TTL: 12 * time.Hour},
	}
}

// Load reads path (skipped when empty), applies environment overrides and
// validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &errors.ConfigError{Err: fmt.Errorf("reading %s: %w", path, err)}
		}
		if err := decode(data, cfg); err != nil {
			return nil, &errors.ConfigError{Err: fmt.Errorf("parsing %s: %w", path, err)}
		}
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !stdErrors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func applyEnv(cfg *Config) error {
	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("LOG_FORMAT", cfg.Log.Format)
	cfg.Server.Addr = getEnv("SERVER_ADDR", cfg.Server.Addr)
	cfg.Session.Secret = getEnv("SESSION_SECRET", cfg.Session.Secret)
	cfg.Approvals.Path = getEnv("APPROVALS_PATH", cfg.Approvals.Path)
	cfg.Database.DSN = getEnv("DATABASE_DSN", cfg.Database.DSN)

	if v := getEnv("SESSION_TTL", ""); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return &errors.ConfigError{Field: "session.ttl", Err: fmt.Errorf("%s%s: %w", EnvPrefix, "SESSION_TTL", err)}
		}
		cfg.Session.TTL = ttl
	}
	return nil
}

// getEnv retrieves EnvPrefix+key or returns defaultValue.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(EnvPrefix + key); value != "" {
		return value
	}
	return defaultValue
}

// Validate checks struct tags and cross-field rules.
func (c *Config) Validate() error {
	if err := validation.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if stdErrors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			field := fe.Namespace()
			if _, rest, ok := strings.Cut(field, "."); ok {
				field = rest
			}
			return &errors.ConfigError{Field: field, Err: fmt.Errorf("failed on %q", fe.Tag())}
		}
		return &errors.ConfigError{Err: err}
	}

	seen := make(map[string]struct{})
	for _, p := range c.OAuth.Providers {
		if _, dup := seen[p.Name]; dup {
			return &errors.ConfigError{Field: "oauth.providers", Err: fmt.Errorf("duplicate provider %q", p.Name)}
		}
		seen[p.Name] = struct{}{}
	}
	for _, p := range c.SAML.Providers {
		if _, dup := seen[p.Name]; dup {
			return &errors.ConfigError{Field: "saml.providers", Err: fmt.Errorf("duplicate provider %q", p.Name)}
		}
		seen[p.Name] = struct{}{}
	}
	return nil
}
