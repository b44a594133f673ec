package ports

import "github.com/reglet-dev/skillguard/domain/rbac"

// Authorizer decides whether a user holds an RBAC permission. A nil user is
// never authorized.
type Authorizer interface {
	Authorize(user *rbac.UserWithRole, permission rbac.Permission) (bool, error)
}
