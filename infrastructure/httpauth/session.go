// Package httpauth authenticates HTTP callers with signed session tokens and
// enforces RBAC permissions on chi routes.
package httpauth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/reglet-dev/skillguard/domain/rbac"
)

// ErrInvalidToken is returned for malformed, expired or forged session tokens.
var ErrInvalidToken = errors.New("invalid session token")

// DefaultSessionTTL is the lifetime of issued tokens unless overridden.
const DefaultSessionTTL = 12 * time.Hour

const issuer = "skillguard"

// SessionClaims is the payload of a session token.
type SessionClaims struct {
	Email string    `json:"email"`
	Role  rbac.Role `json:"role"`
	jwt.RegisteredClaims
}

// SessionOption configures a SessionManager.
type SessionOption func(*SessionManager)

// WithTTL sets the lifetime of issued tokens.
func WithTTL(ttl time.Duration) SessionOption {
	return func(m *SessionManager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithSessionClock overrides the clock used for issuing and validating tokens.
func WithSessionClock(now func() time.Time) SessionOption {
	return func(m *SessionManager) {
		m.now = now
	}
}

// SessionManager issues and parses HS256 session tokens.
type SessionManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionManager creates a SessionManager signing with secret.
func NewSessionManager(secret string, opts ...SessionOption) (*SessionManager, error) {
	if secret == "" {
		return nil, errors.New("session secret is required")
	}
	m := &SessionManager{secret: []byte(secret), ttl: DefaultSessionTTL, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Issue signs a token for u.
func (m *SessionManager) Issue(u *rbac.UserWithRole) (string, error) {
	if u == nil || u.ID == "" {
		return "", errors.New("issue session: user id is required")
	}
	now := m.now()
	claims := SessionClaims{
		Email: u.Email,
		Role:  u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   u.ID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("issue session: %w", err)
	}
	return signed, nil
}

// Parse validates token and returns its claims. Every failure wraps ErrInvalidToken.
func (m *SessionManager) Parse(token string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims, nil
}
