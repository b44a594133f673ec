package ports

import (
	"context"

	"github.com/reglet-dev/skillguard/domain/entities"
	"github.com/reglet-dev/skillguard/domain/rbac"
)

// UserResolver resolves the authenticated user for the current call.
// A nil user with a nil error means "not authenticated".
type UserResolver func(ctx context.Context) (*rbac.UserWithRole, error)

// AssertionVerifier checks a signed assertion forwarded by an identity
// provider's bridge and returns its content. raw is never trusted on its own.
type AssertionVerifier interface {
	Verify(ctx context.Context, provider, raw string) (*entities.Assertion, error)
}
