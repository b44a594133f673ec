package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/reglet-dev/skillguard/application/config"
	"github.com/reglet-dev/skillguard/domain/ports"
	"github.com/reglet-dev/skillguard/domain/rbac"
	"golang.org/x/oauth2"
)

// maxUserInfoBytes bounds the userinfo response body.
const maxUserInfoBytes = 1 << 20

// OAuthProvider describes one OAuth 2.0 / OIDC provider.
type OAuthProvider struct {
	Name         string   `yaml:"name" validate:"required"`
	ClientID     string   `yaml:"clientId" validate:"required"`
	ClientSecret string   `yaml:"clientSecret"`
	AuthURL      string   `yaml:"authUrl" validate:"required,url"`
	TokenURL     string   `yaml:"tokenUrl" validate:"required,url"`
	UserInfoURL  string   `yaml:"userInfoUrl" validate:"omitempty,url"`
	RedirectURL  string   `yaml:"redirectUrl" validate:"required,url"`
	Scopes       []string `yaml:"scopes"`
}

type oauthProvider struct {
	oauth2      *oauth2.Config
	userInfoURL string
}

type pendingState struct {
	provider string
	expires  time.Time
}

// OAuthManager runs the authorization code flow for a fixed set of
// providers and upserts the resulting users.
type OAuthManager struct {
	config    managerConfig
	users     ports.UserStore
	providers map[string]oauthProvider

	mu     sync.Mutex
	states map[string]pendingState
}

// NewOAuthManager creates a manager for providers. Provider names must be
// unique and non-empty.
func NewOAuthManager(users ports.UserStore, providers []OAuthProvider, opts ...Option) (*OAuthManager, error) {
	cfg := defaultManagerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	m := &OAuthManager{
		config:    cfg,
		users:     users,
		providers: make(map[string]oauthProvider, len(providers)),
		states:    make(map[string]pendingState),
	}
	for _, p := range providers {
		if p.Name == "" {
			return nil, fmt.Errorf("oauth provider name cannot be empty")
		}
		if _, exists := m.providers[p.Name]; exists {
			return nil, fmt.Errorf("duplicate oauth provider: %q", p.Name)
		}
		m.providers[p.Name] = oauthProvider{
			oauth2: &oauth2.Config{
				ClientID:     p.ClientID,
				ClientSecret: p.ClientSecret,
				Endpoint:     oauth2.Endpoint{AuthURL: p.AuthURL, TokenURL: p.TokenURL},
				RedirectURL:  p.RedirectURL,
				Scopes:       p.Scopes,
			},
			userInfoURL: p.UserInfoURL,
		}
	}
	return m, nil
}

// Providers returns the configured provider names in sorted order.
func (m *OAuthManager) Providers() []string {
	names := make([]string, 0, len(m.providers))
	for name := range m.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AuthCodeURL returns the URL to redirect the user to, along with the
// single-use state value embedded in it.
func (m *OAuthManager) AuthCodeURL(provider string) (string, string, error) {
	p, ok := m.providers[provider]
	if !ok {
		return "", "", fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}

	state := uuid.NewString()
	now := m.config.now()

	m.mu.Lock()
	for s, pending := range m.states {
		if now.After(pending.expires) {
			delete(m.states, s)
		}
	}
	m.states[state] = pendingState{provider: provider, expires: now.Add(m.config.stateTTL)}
	m.mu.Unlock()

	return p.oauth2.AuthCodeURL(state), state, nil
}

// HandleCallback completes a login: it consumes state, exchanges code for a
// token, reads the user's profile and upserts the user. New users get the
// default role; existing users keep theirs.
func (m *OAuthManager) HandleCallback(ctx context.Context, provider, state, code string) (*rbac.UserWithRole, error) {
	p, ok := m.providers[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}
	if !m.consumeState(provider, state) {
		return nil, ErrInvalidState
	}

	if m.config.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, m.config.httpClient)
	}

	token, err := p.oauth2.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("oauth %s: code exchange failed: %w", provider, err)
	}

	claims, err := m.claims(ctx, p, token)
	if err != nil {
		return nil, fmt.Errorf("oauth %s: %w", provider, err)
	}

	profile, err := NormalizeProfile(provider, claims)
	if err != nil {
		return nil, fmt.Errorf("oauth %s: %w", provider, err)
	}

	user, err := m.upsert(ctx, profile)
	if err != nil {
		return nil, err
	}
	m.config.logger.InfoContext(ctx, "oauth login",
		slog.String("provider", provider),
		slog.String("user_id", user.ID),
		slog.String("role", string(user.Role)),
	)
	return user, nil
}

func (m *OAuthManager) consumeState(provider, state string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	pending, ok := m.states[state]
	if !ok {
		return false
	}
	delete(m.states, state)
	return pending.provider == provider && !m.config.now().After(pending.expires)
}

// claims merges the ID token claims (if any) with the userinfo document
// (if configured). Userinfo wins on conflicts. The ID token came straight
// from the token endpoint over TLS, so its signature is not checked here.
func (m *OAuthManager) claims(ctx context.Context, p oauthProvider, token *oauth2.Token) (config.Config, error) {
	claims := config.Config{}

	if raw, ok := token.Extra("id_token").(string); ok && raw != "" {
		idClaims := jwt.MapClaims{}
		if _, _, err := jwt.NewParser().ParseUnverified(raw, idClaims); err != nil {
			return nil, fmt.Errorf("malformed id_token: %w", err)
		}
		maps.Copy(claims, idClaims)
	}

	if p.userInfoURL != "" {
		info, err := m.userInfo(ctx, p, token)
		if err != nil {
			return nil, err
		}
		maps.Copy(claims, info)
	}
	return claims, nil
}

func (m *OAuthManager) userInfo(ctx context.Context, p oauthProvider, token *oauth2.Token) (config.Config, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build userinfo request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.oauth2.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("userinfo request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo request failed: status %d", resp.StatusCode)
	}

	var info config.Config
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxUserInfoBytes)).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo: %w", err)
	}
	return info, nil
}

// upsert finds the user by provider subject, then by email. The matched
// user keeps its role and follows email changes made at the provider.
func (m *OAuthManager) upsert(ctx context.Context, profile Profile) (*rbac.UserWithRole, error) {
	existing, err := m.lookup(ctx, profile)
	switch {
	case err == nil:
		return m.users.Upsert(ctx, &rbac.UserWithRole{
			ID:      existing.ID,
			Subject: profile.ExternalID(),
			Email:   profile.Email,
			Name:    profile.Name,
			Role:    existing.Role,
		})
	case errors.Is(err, rbac.ErrUserNotFound):
		return m.users.Upsert(ctx, &rbac.UserWithRole{
			Subject: profile.ExternalID(),
			Email:   profile.Email,
			Name:    profile.Name,
			Role:    m.config.defaultRole,
		})
	default:
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
}

func (m *OAuthManager) lookup(ctx context.Context, profile Profile) (*rbac.UserWithRole, error) {
	if id := profile.ExternalID(); id != "" {
		u, err := m.users.GetBySubject(ctx, id)
		if !errors.Is(err, rbac.ErrUserNotFound) {
			return u, err
		}
	}
	return m.users.GetByEmail(ctx, profile.Email)
}
