// Package samlbridge verifies assertions relayed by a SAML bridge. The bridge
// terminates the SAML exchange with the identity provider and forwards the
// result to skillguard as an HS256 JWT signed with a per-provider secret.
package samlbridge

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/reglet-dev/skillguard/domain/entities"
	"github.com/reglet-dev/skillguard/domain/ports"
)

// ErrInvalidAssertion wraps every verification failure.
var ErrInvalidAssertion = errors.New("invalid saml assertion")

const (
	// DefaultAudience is the audience a bridge must address its tokens to.
	DefaultAudience = "skillguard"

	// DefaultMaxTokenAge bounds how far in the future a token may expire.
	DefaultMaxTokenAge = 10 * time.Minute

	replayCacheSize = 1 << 16
)

var _ ports.AssertionVerifier = (*Verifier)(nil)

// Claims is the token payload: the NameID travels as the JWT subject and
// the provider name as its issuer.
type Claims struct {
	Attributes map[string][]string `json:"attrs,omitempty"`
	jwt.RegisteredClaims
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithAudience overrides DefaultAudience.
func WithAudience(aud string) Option {
	return func(v *Verifier) {
		if aud != "" {
			v.audience = aud
		}
	}
}

// WithClock overrides the clock used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(v *Verifier) {
		v.now = now
	}
}

// WithMaxTokenAge overrides DefaultMaxTokenAge.
func WithMaxTokenAge(d time.Duration) Option {
	return func(v *Verifier) {
		if d > 0 {
			v.maxAge = d
		}
	}
}

// WithLeeway tolerates clock skew between the bridge and skillguard.
func WithLeeway(d time.Duration) Option {
	return func(v *Verifier) {
		v.leeway = d
	}
}

// Verifier checks bridge tokens. Each token ID is accepted once; IDs are
// remembered for the longest lifetime a token may have.
type Verifier struct {
	secrets  map[string][]byte
	audience string
	maxAge   time.Duration
	leeway   time.Duration
	now      func() time.Time

	mu   sync.Mutex
	seen *expirable.LRU[string, struct{}]
}

// NewVerifier creates a Verifier for the given provider secrets.
func NewVerifier(secrets map[string]string, opts ...Option) (*Verifier, error) {
	if len(secrets) == 0 {
		return nil, errors.New("at least one provider secret is required")
	}
	v := &Verifier{
		secrets:  make(map[string][]byte, len(secrets)),
		audience: DefaultAudience,
		maxAge:   DefaultMaxTokenAge,
		now:      time.Now,
	}
	for name, secret := range secrets {
		if secret == "" {
			return nil, fmt.Errorf("saml provider %q: secret is required", name)
		}
		v.secrets[name] = []byte(secret)
	}
	for _, opt := range opts {
		opt(v)
	}
	v.seen = expirable.NewLRU[string, struct{}](replayCacheSize, nil, v.maxAge+2*v.leeway)
	return v, nil
}

// Verify validates raw for provider and returns the assertion it carries.
// Every failure wraps ErrInvalidAssertion.
func (v *Verifier) Verify(_ context.Context, provider, raw string) (*entities.Assertion, error) {
	secret, ok := v.secrets[provider]
	if !ok {
		return nil, fmt.Errorf("%w: unknown provider %q", ErrInvalidAssertion, provider)
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(provider),
		jwt.WithAudience(v.audience),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.leeway),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAssertion, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidAssertion)
	}
	if claims.ID == "" {
		return nil, fmt.Errorf("%w: missing token id", ErrInvalidAssertion)
	}
	if claims.ExpiresAt.Sub(v.now()) > v.maxAge+v.leeway {
		return nil, fmt.Errorf("%w: token lifetime exceeds %s", ErrInvalidAssertion, v.maxAge)
	}
	if !v.remember(provider + "|" + claims.ID) {
		return nil, fmt.Errorf("%w: token already used", ErrInvalidAssertion)
	}

	return &entities.Assertion{NameID: claims.Subject, Attributes: claims.Attributes}, nil
}

// remember records id and reports false if it was already seen.
func (v *Verifier) remember(id string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.seen.Contains(id) {
		return false
	}
	v.seen.Add(id, struct{}{})
	return true
}
