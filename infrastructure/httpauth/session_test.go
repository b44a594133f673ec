package httpauth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/reglet-dev/skillguard/domain/rbac"
	"github.com/reglet-dev/skillguard/infrastructure/httpauth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestSessionManager_RoundTrip(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	sm, err := httpauth.NewSessionManager(testSecret,
		httpauth.WithTTL(time.Hour),
		httpauth.WithSessionClock(func() time.Time { return now }))
	require.NoError(t, err)

	token, err := sm.Issue(&rbac.UserWithRole{ID: "u1", Email: "a@example.com", Role: rbac.RoleDeveloper})
	require.NoError(t, err)

	claims, err := sm.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, "a@example.com", claims.Email)
	assert.Equal(t, rbac.RoleDeveloper, claims.Role)
	assert.NotEmpty(t, claims.ID)
	assert.Equal(t, now.Add(time.Hour), claims.ExpiresAt.Time)
}

func TestSessionManager_Rejects(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := now
	sm, err := httpauth.NewSessionManager(testSecret,
		httpauth.WithTTL(time.Minute),
		httpauth.WithSessionClock(func() time.Time { return clock }))
	require.NoError(t, err)

	token, err := sm.Issue(&rbac.UserWithRole{ID: "u1", Role: rbac.RoleViewer})
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		clock = now.Add(2 * time.Minute)
		defer func() { clock = now }()
		_, err := sm.Parse(token)
		assert.ErrorIs(t, err, httpauth.ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, err := httpauth.NewSessionManager("another-secret-another-secret-xx",
			httpauth.WithSessionClock(func() time.Time { return now }))
		require.NoError(t, err)
		_, err = other.Parse(token)
		assert.ErrorIs(t, err, httpauth.ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := sm.Parse("not-a-token")
		assert.ErrorIs(t, err, httpauth.ErrInvalidToken)
	})

	t.Run("none algorithm", func(t *testing.T) {
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
			Issuer:    "skillguard",
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = sm.Parse(unsigned)
		assert.ErrorIs(t, err, httpauth.ErrInvalidToken)
	})
}

func TestSessionManager_Validation(t *testing.T) {
	_, err := httpauth.NewSessionManager("")
	assert.Error(t, err)

	sm, err := httpauth.NewSessionManager(testSecret)
	require.NoError(t, err)
	_, err = sm.Issue(nil)
	assert.Error(t, err)
	_, err = sm.Issue(&rbac.UserWithRole{})
	assert.Error(t, err)
}
