// Package auth provides the guard functions that gate actions of
// authenticated users on their RBAC role.
//
// The Require* functions are assertions: they return an
// *errors.UnauthorizedError when no user is present and an
// *errors.ForbiddenError naming the failing permissions otherwise.
// The Is* functions are their non-failing counterparts and simply
// report false for a nil user.
package auth

import (
	"context"
	"strings"

	"github.com/reglet-dev/skillguard/domain/errors"
	"github.com/reglet-dev/skillguard/domain/ports"
	"github.com/reglet-dev/skillguard/domain/rbac"
)

// RequireAuth returns user, or an *errors.UnauthorizedError if it is nil.
func RequireAuth(user *rbac.UserWithRole) (*rbac.UserWithRole, error) {
	if user == nil {
		return nil, &errors.UnauthorizedError{}
	}
	return user, nil
}

// RequirePermission asserts that user is authenticated and its role grants permission.
func RequirePermission(user *rbac.UserWithRole, permission rbac.Permission) (*rbac.UserWithRole, error) {
	if _, err := RequireAuth(user); err != nil {
		return nil, err
	}
	if !rbac.HasPermission(user.Role, permission) {
		return nil, forbidden(permission)
	}
	return user, nil
}

// RequireAnyPermission asserts that user holds at least one of permissions.
// The error lists every requested permission, since any would have sufficed.
func RequireAnyPermission(user *rbac.UserWithRole, permissions ...rbac.Permission) (*rbac.UserWithRole, error) {
	if _, err := RequireAuth(user); err != nil {
		return nil, err
	}
	if !IsAnyAllowed(user, permissions...) {
		return nil, forbiddenAny(permissions)
	}
	return user, nil
}

// RequireAllPermissions asserts that user holds every one of permissions.
// The error lists only the missing permissions.
func RequireAllPermissions(user *rbac.UserWithRole, permissions ...rbac.Permission) (*rbac.UserWithRole, error) {
	if _, err := RequireAuth(user); err != nil {
		return nil, err
	}
	var missing []rbac.Permission
	for _, p := range permissions {
		if !rbac.HasPermission(user.Role, p) {
			missing = append(missing, p)
		}
	}
	if len(missing) > 0 {
		return nil, forbidden(missing...)
	}
	return user, nil
}

// IsAllowed reports whether user's role grants permission. A nil user is never allowed.
func IsAllowed(user *rbac.UserWithRole, permission rbac.Permission) bool {
	return user != nil && rbac.HasPermission(user.Role, permission)
}

// IsAnyAllowed reports whether user's role grants at least one of permissions.
func IsAnyAllowed(user *rbac.UserWithRole, permissions ...rbac.Permission) bool {
	if user == nil {
		return false
	}
	for _, p := range permissions {
		if rbac.HasPermission(user.Role, p) {
			return true
		}
	}
	return false
}

// IsAllAllowed reports whether user's role grants every one of permissions.
func IsAllAllowed(user *rbac.UserWithRole, permissions ...rbac.Permission) bool {
	if user == nil {
		return false
	}
	for _, p := range permissions {
		if !rbac.HasPermission(user.Role, p) {
			return false
		}
	}
	return true
}

// MiddlewareOptions configures CreateAuthMiddleware.
type MiddlewareOptions struct {
	// GetUser resolves the caller. Required.
	GetUser ports.UserResolver

	// Permission, when set, must be granted.
	Permission rbac.Permission

	// Permissions, when non-empty, are checked with RequireAnyPermission,
	// or RequireAllPermissions if RequireAll is true.
	Permissions []rbac.Permission
	RequireAll  bool

	// Authorizer, when set, replaces the static role table for permission
	// decisions. Its errors are returned unchanged.
	Authorizer ports.Authorizer
}

func (o MiddlewareOptions) allowed(user *rbac.UserWithRole, permission rbac.Permission) (bool, error) {
	if o.Authorizer == nil {
		return rbac.HasPermission(user.Role, permission), nil
	}
	return o.Authorizer.Authorize(user, permission)
}

func (o MiddlewareOptions) missing(user *rbac.UserWithRole, permissions []rbac.Permission) ([]rbac.Permission, error) {
	var out []rbac.Permission
	for _, p := range permissions {
		ok, err := o.allowed(user, p)
		if err != nil {
			return nil, err
		}
		if !ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// Guard authenticates and authorizes the current call.
type Guard func(ctx context.Context) (*rbac.UserWithRole, error)

// CreateAuthMiddleware composes user resolution with the permission guards.
// Resolver and Authorizer errors are returned unchanged; a nil user yields
// an *errors.UnauthorizedError and a missing permission an *errors.ForbiddenError.
func CreateAuthMiddleware(opts MiddlewareOptions) Guard {
	return func(ctx context.Context) (*rbac.UserWithRole, error) {
		var user *rbac.UserWithRole
		if opts.GetUser != nil {
			u, err := opts.GetUser(ctx)
			if err != nil {
				return nil, err
			}
			user = u
		}

		user, err := RequireAuth(user)
		if err != nil {
			return nil, err
		}

		if opts.Permission != "" {
			missing, err := opts.missing(user, []rbac.Permission{opts.Permission})
			if err != nil {
				return nil, err
			}
			if len(missing) > 0 {
				return nil, forbidden(missing...)
			}
		}

		if len(opts.Permissions) > 0 {
			missing, err := opts.missing(user, opts.Permissions)
			if err != nil {
				return nil, err
			}
			switch {
			case opts.RequireAll && len(missing) > 0:
				return nil, forbidden(missing...)
			case !opts.RequireAll && len(missing) == len(opts.Permissions):
				return nil, forbiddenAny(opts.Permissions)
			}
		}
		return user, nil
	}
}

func forbidden(missing ...rbac.Permission) *errors.ForbiddenError {
	return &errors.ForbiddenError{Permissions: rbac.Strings(missing)}
}

func forbiddenAny(permissions []rbac.Permission) *errors.ForbiddenError {
	return &errors.ForbiddenError{
		Message:     "permission denied: requires one of " + strings.Join(rbac.Strings(permissions), ", "),
		Permissions: rbac.Strings(permissions),
	}
}
