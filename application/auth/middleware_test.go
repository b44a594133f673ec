package auth_test

import (
	"context"
	stdErrors "errors"
	"testing"

	"github.com/reglet-dev/skillguard/application/auth"
	"github.com/reglet-dev/skillguard/domain/errors"
	"github.com/reglet-dev/skillguard/domain/rbac"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	admin     = &rbac.UserWithRole{ID: "a", Email: "admin@example.com", Role: rbac.RoleAdmin}
	developer = &rbac.UserWithRole{ID: "d", Email: "dev@example.com", Role: rbac.RoleDeveloper}
	viewer    = &rbac.UserWithRole{ID: "v", Email: "viewer@example.com", Role: rbac.RoleViewer}
)

func TestRequireAuth(t *testing.T) {
	u, err := auth.RequireAuth(viewer)
	require.NoError(t, err)
	assert.Same(t, viewer, u)

	u, err = auth.RequireAuth(nil)
	assert.Nil(t, u)
	assert.True(t, errors.IsUnauthorized(err))
	assert.False(t, errors.IsForbidden(err))
	assert.EqualError(t, err, "authentication required")
}

func TestRequirePermission(t *testing.T) {
	_, err := auth.RequirePermission(developer, rbac.PermUserDelete)
	require.Error(t, err)

	var forbidden *errors.ForbiddenError
	require.ErrorAs(t, err, &forbidden)
	assert.Equal(t, []string{"user:delete"}, forbidden.Permissions)
	assert.Contains(t, err.Error(), "user:delete")

	u, err := auth.RequirePermission(developer, rbac.PermUserRead)
	require.NoError(t, err)
	assert.Same(t, developer, u)

	_, err = auth.RequirePermission(nil, rbac.PermUserRead)
	assert.True(t, errors.IsUnauthorized(err))
}

func TestRequireAnyPermission(t *testing.T) {
	_, err := auth.RequireAnyPermission(viewer, rbac.PermAgentDelete, rbac.PermAgentRead)
	assert.NoError(t, err)

	_, err = auth.RequireAnyPermission(viewer, rbac.PermAgentDelete, rbac.PermUserDelete)
	var forbidden *errors.ForbiddenError
	require.ErrorAs(t, err, &forbidden)
	assert.Equal(t, []string{"agent:delete", "user:delete"}, forbidden.Permissions)
	assert.Equal(t, "permission denied: requires one of agent:delete, user:delete", err.Error())

	_, err = auth.RequireAnyPermission(nil, rbac.PermAgentRead)
	assert.True(t, errors.IsUnauthorized(err))
}

func TestRequireAllPermissions_ListsOnlyMissing(t *testing.T) {
	_, err := auth.RequireAllPermissions(developer, rbac.PermUserRead, rbac.PermUserDelete, rbac.PermAgentCreate, rbac.PermAuditRead)

	var forbidden *errors.ForbiddenError
	require.ErrorAs(t, err, &forbidden)
	assert.Equal(t, []string{"user:delete", "audit:read"}, forbidden.Permissions)
	assert.NotContains(t, err.Error(), "user:read")

	u, err := auth.RequireAllPermissions(admin, rbac.AllPermissions()...)
	require.NoError(t, err)
	assert.Same(t, admin, u)

	_, err = auth.RequireAllPermissions(nil)
	assert.True(t, errors.IsUnauthorized(err))
}

func TestIsAllowed_NilUserIsFalse(t *testing.T) {
	assert.False(t, auth.IsAllowed(nil, rbac.PermAgentRead))
	assert.False(t, auth.IsAnyAllowed(nil, rbac.PermAgentRead))
	assert.False(t, auth.IsAllAllowed(nil, rbac.PermAgentRead))
	assert.False(t, auth.IsAllAllowed(nil))
}

func TestIsAllowed(t *testing.T) {
	assert.True(t, auth.IsAllowed(viewer, rbac.PermAgentRead))
	assert.False(t, auth.IsAllowed(viewer, rbac.PermAgentCreate))

	assert.True(t, auth.IsAnyAllowed(viewer, rbac.PermAgentCreate, rbac.PermAgentRead))
	assert.False(t, auth.IsAnyAllowed(viewer, rbac.PermAgentCreate, rbac.PermUserRead))
	assert.False(t, auth.IsAnyAllowed(viewer))

	assert.True(t, auth.IsAllAllowed(developer, rbac.PermAgentCreate, rbac.PermUserRead))
	assert.False(t, auth.IsAllAllowed(developer, rbac.PermAgentCreate, rbac.PermUserDelete))
	assert.True(t, auth.IsAllAllowed(viewer))
}

func TestCreateAuthMiddleware(t *testing.T) {
	resolve := func(u *rbac.UserWithRole) func(context.Context) (*rbac.UserWithRole, error) {
		return func(context.Context) (*rbac.UserWithRole, error) { return u, nil }
	}

	tests := []struct {
		name          string
		opts          auth.MiddlewareOptions
		wantUnauth    bool
		wantForbidden []string
	}{
		{
			name: "Authenticated only",
			opts: auth.MiddlewareOptions{GetUser: resolve(viewer)},
		},
		{
			name:       "No user",
			opts:       auth.MiddlewareOptions{GetUser: resolve(nil), Permission: rbac.PermAgentRead},
			wantUnauth: true,
		},
		{
			name:       "No resolver",
			opts:       auth.MiddlewareOptions{},
			wantUnauth: true,
		},
		{
			name: "Single permission granted",
			opts: auth.MiddlewareOptions{GetUser: resolve(developer), Permission: rbac.PermSkillInstall},
		},
		{
			name:          "Single permission denied",
			opts:          auth.MiddlewareOptions{GetUser: resolve(viewer), Permission: rbac.PermSkillInstall},
			wantForbidden: []string{"skill:install"},
		},
		{
			name: "Any of",
			opts: auth.MiddlewareOptions{GetUser: resolve(viewer), Permissions: []rbac.Permission{rbac.PermCostManage, rbac.PermCostRead}},
		},
		{
			name: "All of",
			opts: auth.MiddlewareOptions{
				GetUser:     resolve(developer),
				Permissions: []rbac.Permission{rbac.PermCostRead, rbac.PermCostManage},
				RequireAll:  true,
			},
			wantForbidden: []string{"cost:manage"},
		},
		{
			name: "Permission and all of",
			opts: auth.MiddlewareOptions{
				GetUser:     resolve(admin),
				Permission:  rbac.PermUserDelete,
				Permissions: []rbac.Permission{rbac.PermAuditRead, rbac.PermAuditExport},
				RequireAll:  true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := auth.CreateAuthMiddleware(tt.opts)(context.Background())
			switch {
			case tt.wantUnauth:
				assert.True(t, errors.IsUnauthorized(err), "got %v", err)
				assert.Nil(t, user)
			case tt.wantForbidden != nil:
				var forbidden *errors.ForbiddenError
				require.ErrorAs(t, err, &forbidden)
				assert.Equal(t, tt.wantForbidden, forbidden.Permissions)
				assert.Nil(t, user)
			default:
				require.NoError(t, err)
				assert.NotNil(t, user)
			}
		})
	}
}

func TestCreateAuthMiddleware_ResolverError(t *testing.T) {
	boom := stdErrors.New("session store offline")
	guard := auth.CreateAuthMiddleware(auth.MiddlewareOptions{
		GetUser: func(context.Context) (*rbac.UserWithRole, error) { return nil, boom },
	})

	_, err := guard(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.False(t, errors.IsUnauthorized(err))
}

type authorizerFunc func(*rbac.UserWithRole, rbac.Permission) (bool, error)

func (f authorizerFunc) Authorize(u *rbac.UserWithRole, p rbac.Permission) (bool, error) {
	return f(u, p)
}

func TestCreateAuthMiddleware_Authorizer(t *testing.T) {
	var asked []rbac.Permission
	onlyAuditRead := authorizerFunc(func(_ *rbac.UserWithRole, p rbac.Permission) (bool, error) {
		asked = append(asked, p)
		return p == rbac.PermAuditRead, nil
	})
	getViewer := func(context.Context) (*rbac.UserWithRole, error) { return viewer, nil }

	user, err := auth.CreateAuthMiddleware(auth.MiddlewareOptions{
		GetUser:    getViewer,
		Permission: rbac.PermAuditRead,
		Authorizer: onlyAuditRead,
	})(context.Background())
	require.NoError(t, err, "the authorizer overrides the role table")
	assert.Same(t, viewer, user)
	assert.Equal(t, []rbac.Permission{rbac.PermAuditRead}, asked)

	_, err = auth.CreateAuthMiddleware(auth.MiddlewareOptions{
		GetUser:     getViewer,
		Permissions: []rbac.Permission{rbac.PermSkillRead, rbac.PermAuditRead, rbac.PermAuditExport},
		RequireAll:  true,
		Authorizer:  onlyAuditRead,
	})(context.Background())
	var forbidden *errors.ForbiddenError
	require.ErrorAs(t, err, &forbidden)
	assert.Equal(t, []string{"skill:read", "audit:export"}, forbidden.Permissions)

	_, err = auth.CreateAuthMiddleware(auth.MiddlewareOptions{
		GetUser:     getViewer,
		Permissions: []rbac.Permission{rbac.PermSkillRead, rbac.PermSkillInstall},
		Authorizer:  onlyAuditRead,
	})(context.Background())
	require.ErrorAs(t, err, &forbidden)
	assert.Equal(t, []string{"skill:read", "skill:install"}, forbidden.Permissions)
	assert.Contains(t, forbidden.Error(), "requires one of")
}

func TestCreateAuthMiddleware_AuthorizerError(t *testing.T) {
	boom := stdErrors.New("policy backend unavailable")
	_, err := auth.CreateAuthMiddleware(auth.MiddlewareOptions{
		GetUser:    func(context.Context) (*rbac.UserWithRole, error) { return admin, nil },
		Permission: rbac.PermSkillRead,
		Authorizer: authorizerFunc(func(*rbac.UserWithRole, rbac.Permission) (bool, error) { return false, boom }),
	})(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.False(t, errors.IsForbidden(err))
}
