package entities

// PermissionCheckResult is the outcome of a single permission check.
// Reason is meant for audit logs; Permission echoes the checked capability.
type PermissionCheckResult struct {
	Granted    bool   `json:"granted"`
	Reason     string `json:"reason"`
	Permission string `json:"permission,omitempty"`
}

// Allow builds a granted result.
func Allow(permission, reason string) PermissionCheckResult {
	return PermissionCheckResult{Granted: true, Reason: reason, Permission: permission}
}

// Deny builds a denied result.
func Deny(permission, reason string) PermissionCheckResult {
	return PermissionCheckResult{Granted: false, Reason: reason, Permission: permission}
}
