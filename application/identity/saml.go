package identity

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/reglet-dev/skillguard/application/config"
	"github.com/reglet-dev/skillguard/domain/entities"
	"github.com/reglet-dev/skillguard/domain/ports"
	"github.com/reglet-dev/skillguard/domain/rbac"
)

// SAMLProvider names the attributes to read from a provider's assertions.
// Empty attribute names fall back to "email", "name" and "roles".
// AssertionSecret is the HS256 key shared with the SAML bridge that
// forwards verified assertions as signed tokens.
type SAMLProvider struct {
	Name            string `yaml:"name" validate:"required"`
	AssertionSecret string `yaml:"assertionSecret" validate:"required,min=32"`
	EmailAttribute string `yaml:"emailAttribute"`
	NameAttribute  string `yaml:"nameAttribute"`
	RolesAttribute string `yaml:"rolesAttribute"`
}

func (p SAMLProvider) withDefaults() SAMLProvider {
	if p.EmailAttribute == "" {
		p.EmailAttribute = "email"
	}
	if p.NameAttribute == "" {
		p.NameAttribute = "name"
	}
	if p.RolesAttribute == "" {
		p.RolesAttribute = "roles"
	}
	return p
}

// SAMLManager turns verified assertions into users. Unlike OAuth logins,
// every SAML login sets the user's role from the assertion.
type SAMLManager struct {
	config    managerConfig
	users     ports.UserStore
	providers map[string]SAMLProvider
}

// NewSAMLManager creates a manager for providers.
func NewSAMLManager(users ports.UserStore, providers []SAMLProvider, opts ...Option) (*SAMLManager, error) {
	cfg := defaultManagerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	m := &SAMLManager{config: cfg, users: users, providers: make(map[string]SAMLProvider, len(providers))}
	for _, p := range providers {
		if p.Name == "" {
			return nil, fmt.Errorf("saml provider name cannot be empty")
		}
		if _, exists := m.providers[p.Name]; exists {
			return nil, fmt.Errorf("duplicate saml provider: %q", p.Name)
		}
		m.providers[p.Name] = p.withDefaults()
	}
	return m, nil
}

// Providers returns the configured provider names in sorted order.
func (m *SAMLManager) Providers() []string {
	names := make([]string, 0, len(m.providers))
	for name := range m.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HandleAssertion upserts the user described by assertion. The user is
// matched by provider and NameID, then by email, and its role is set from
// the assertion.
func (m *SAMLManager) HandleAssertion(ctx context.Context, provider string, assertion entities.Assertion) (*rbac.UserWithRole, error) {
	p, ok := m.providers[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}

	attrs := config.Attributes(assertion.Attributes)
	email := first(attrs, p.EmailAttribute)
	if email == "" && strings.Contains(assertion.NameID, "@") {
		email = assertion.NameID
	}
	if email == "" {
		return nil, fmt.Errorf("saml %s: %w", provider, ErrMissingEmail)
	}

	roles, _ := config.GetStringSlice(attrs, p.RolesAttribute)
	role := MapSAMLRole(roles)

	user, err := m.users.Upsert(ctx, &rbac.UserWithRole{
		Subject: externalID(provider, assertion.NameID),
		Email:   email,
		Name:    first(attrs, p.NameAttribute),
		Role:    role,
	})
	if err != nil {
		return nil, fmt.Errorf("saml %s: failed to save user: %w", provider, err)
	}
	m.config.logger.InfoContext(ctx, "saml login",
		slog.String("provider", provider),
		slog.String("user_id", user.ID),
		slog.String("role", string(role)),
	)
	return user, nil
}

// MapSAMLRole maps role attribute values, case-insensitively, to a Role:
// admin, administrator or superuser give admin; developer, engineer or dev
// give developer; anything else gives viewer. The highest match wins.
func MapSAMLRole(values []string) rbac.Role {
	role := rbac.RoleViewer
	for _, v := range values {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "admin", "administrator", "superuser":
			return rbac.RoleAdmin
		case "developer", "engineer", "dev":
			role = rbac.RoleDeveloper
		}
	}
	return role
}

func first(attrs config.Config, key string) string {
	values, ok := config.GetStringSlice(attrs, key)
	if !ok || len(values) == 0 {
		return ""
	}
	return values[0]
}
