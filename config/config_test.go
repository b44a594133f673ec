package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/reglet-dev/skillguard/config"
	"github.com/reglet-dev/skillguard/domain/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "skillguard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
	assert.Equal(t, "localhost:8080", cfg.Server.Addr)
	assert.Equal(t, 12*time.Hour, cfg.Session.TTL)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
  format: json
server:
  addr: 0.0.0.0:9000
  admins: [root@example.com]
session:
  secret: 0123456789abcdef0123456789abcdef
  ttl: 30m
approvals:
  path: /var/lib/skillguard/approvals.yaml
database:
  dsn: postgres://skillguard@db:5432/skillguard?sslmode=disable
oauth:
  providers:
    - name: github
      clientId: abc
      clientSecret: shh
      authUrl: https://github.com/login/oauth/authorize
      tokenUrl: https://github.com/login/oauth/access_token
      userInfoUrl: https://api.github.com/user
      redirectUrl: https://skillguard.example.com/v1/auth/github/callback
      scopes: [read:user, user:email]
saml:
  providers:
    - name: okta
      rolesAttribute: groups
      assertionSecret: 0123456789abcdef0123456789abcdef
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "0.0.0.0:9000", cfg.Server.Addr)
	assert.Equal(t, []string{"root@example.com"}, cfg.Server.Admins)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.Equal(t, "/var/lib/skillguard/approvals.yaml", cfg.Approvals.Path)
	assert.Equal(t, "postgres://skillguard@db:5432/skillguard?sslmode=disable", cfg.Database.DSN)
	require.Len(t, cfg.OAuth.Providers, 1)
	assert.Equal(t, []string{"read:user", "user:email"}, cfg.OAuth.Providers[0].Scopes)
	require.Len(t, cfg.SAML.Providers, 1)
	assert.Equal(t, "groups", cfg.SAML.Providers[0].RolesAttribute)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "server:\n  addr: localhost:1\n")
	t.Setenv("SKILLGUARD_SERVER_ADDR", "localhost:2")
	t.Setenv("SKILLGUARD_LOG_FORMAT", "json")
	t.Setenv("SKILLGUARD_SESSION_TTL", "1h")
	t.Setenv("SKILLGUARD_DATABASE_DSN", "/srv/skillguard/users.db")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "localhost:2", cfg.Server.Addr)
	assert.Equal(t, "/srv/skillguard/users.db", cfg.Database.DSN)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, time.Hour, cfg.Session.TTL)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{"unknown key", "bogus: true\n", ""},
		{"bad log level", "log:\n  level: loud\n", "log.level"},
		{"bad admin", "server:\n  addr: localhost:1\n  admins: [nope]\n", "server.admins[0]"},
		{"short secret", "session:\n  secret: short\n", "session.secret"},
		{"bad provider url", "oauth:\n  providers:\n    - name: x\n      clientId: y\n      authUrl: nope\n      tokenUrl: https://t\n      redirectUrl: https://r\n", "oauth.providers[0].authUrl"},
		{"duplicate provider", "oauth:\n  providers:\n    - {name: x, clientId: y, authUrl: 'https://a', tokenUrl: 'https://t', redirectUrl: 'https://r'}\nsaml:\n  providers:\n    - {name: x, assertionSecret: 0123456789abcdef0123456789abcdef}\n", "saml.providers"},
		{"short assertion secret", "saml:\n  providers:\n    - {name: okta, assertionSecret: short}\n", "saml.providers[0].assertionSecret"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, tt.body))
			require.Error(t, err)
			var cerr *errors.ConfigError
			require.ErrorAs(t, err, &cerr)
			assert.Equal(t, tt.wantField, cerr.Field)
		})
	}
}

func TestLoad_BadEnvTTL(t *testing.T) {
	t.Setenv("SKILLGUARD_SESSION_TTL", "forever")
	_, err := config.Load("")
	var cerr *errors.ConfigError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "session.ttl", cerr.Field)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "reading")
}
