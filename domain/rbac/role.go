package rbac

import (
	"fmt"
	"strings"
)

// Role is a user's role.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleDeveloper Role = "developer"
	RoleViewer    Role = "viewer"
)

// Roles returns all roles from highest to lowest.
func Roles() []Role {
	return []Role{RoleAdmin, RoleDeveloper, RoleViewer}
}

var roleLevels = map[Role]int{
	RoleAdmin:     3,
	RoleDeveloper: 2,
	RoleViewer:    1,
}

// IsValid returns true if the role is one of the declared roles.
func (r Role) IsValid() bool {
	_, ok := roleLevels[r]
	return ok
}

// ParseRole converts s (case-insensitive) into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// RoleLevel returns the rank of role used for hierarchy comparisons.
// Unknown roles rank 0.
func RoleLevel(role Role) int {
	return roleLevels[role]
}

// HasHigherOrEqualRole reports whether a ranks at or above b.
func HasHigherOrEqualRole(a, b Role) bool {
	return RoleLevel(a) >= RoleLevel(b)
}
