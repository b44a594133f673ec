package ports

import (
	"context"

	"github.com/reglet-dev/skillguard/domain/rbac"
)

// UserStore persists users produced by identity providers.
type UserStore interface {
	// Get returns the user with id or rbac.ErrUserNotFound.
	Get(ctx context.Context, id string) (*rbac.UserWithRole, error)

	// GetByEmail returns the user with email or rbac.ErrUserNotFound.
	// Emails compare case-insensitively.
	GetByEmail(ctx context.Context, email string) (*rbac.UserWithRole, error)

	// GetBySubject returns the user last seen with the identity-provider
	// subject or rbac.ErrUserNotFound.
	GetBySubject(ctx context.Context, subject string) (*rbac.UserWithRole, error)

	// Upsert creates or updates u and returns the stored user. An existing
	// user is matched by Subject when set, then by email; a match by email
	// records u.Subject. CreatedAt is preserved, and empty Name, Role and
	// OrganizationID keep their stored values. New users without a role get
	// rbac.RoleViewer.
	Upsert(ctx context.Context, u *rbac.UserWithRole) (*rbac.UserWithRole, error)
}
