package identity

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/reglet-dev/skillguard/domain/rbac"
)

type managerConfig struct {
	logger      *slog.Logger
	httpClient  *http.Client
	stateTTL    time.Duration
	now         func() time.Time
	defaultRole rbac.Role
}

func defaultManagerConfig() managerConfig {
	return managerConfig{
		logger:      slog.Default(),
		stateTTL:    10 * time.Minute,
		now:         time.Now,
		defaultRole: rbac.RoleDeveloper,
	}
}

// Option configures an OAuthManager or SAMLManager.
type Option func(*managerConfig)

// WithLogger sets the logger for login events.
func WithLogger(l *slog.Logger) Option {
	return func(c *managerConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithHTTPClient sets the client used for token exchange and userinfo requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *managerConfig) {
		c.httpClient = client
	}
}

// WithStateTTL sets how long an OAuth state value stays valid. Default is 10 minutes.
func WithStateTTL(ttl time.Duration) Option {
	return func(c *managerConfig) {
		c.stateTTL = ttl
	}
}

// WithClock sets the time source used for state expiry.
func WithClock(now func() time.Time) Option {
	return func(c *managerConfig) {
		c.now = now
	}
}

// WithDefaultRole sets the role given to users on their first OAuth login.
// Default is developer.
func WithDefaultRole(role rbac.Role) Option {
	return func(c *managerConfig) {
		c.defaultRole = role
	}
}
