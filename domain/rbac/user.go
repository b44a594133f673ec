package rbac

import (
	"errors"
	"time"
)

// ErrUserNotFound is returned by user stores for unknown users.
var ErrUserNotFound = errors.New("user not found")

// UserWithRole is an authenticated human principal. Subject is the stable
// identity-provider key ("provider|sub") of the user's latest login, if any.
type UserWithRole struct {
	ID             string    `json:"id" yaml:"id"`
	Subject        string    `json:"subject,omitempty" yaml:"subject,omitempty"`
	Email          string    `json:"email" yaml:"email"`
	Name           string    `json:"name,omitempty" yaml:"name,omitempty"`
	Role           Role      `json:"role" yaml:"role"`
	OrganizationID string    `json:"organizationId,omitempty" yaml:"organizationId,omitempty"`
	CreatedAt      time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt" yaml:"updatedAt"`
}

// Can reports whether the user's role grants permission.
func (u *UserWithRole) Can(permission Permission) bool {
	return u != nil && HasPermission(u.Role, permission)
}
