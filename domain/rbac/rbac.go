package rbac

import "slices"

// grantedPermissions lists what each non-admin role may do.
var grantedPermissions = map[Role][]Permission{
	RoleDeveloper: {
		PermAgentCreate, PermAgentRead, PermAgentUpdate, PermAgentDelete, PermAgentExecute,
		PermConversationCreate, PermConversationRead, PermConversationDelete, PermConversationExport,
		PermDreamCreate, PermDreamRead, PermDreamDelete,
		PermSkillInstall, PermSkillRead, PermSkillExecute, PermSkillUninstall,
		PermMarketplaceRead, PermMarketplacePublish, PermMarketplaceInstall,
		PermUserRead,
		PermCostRead,
	},
	RoleViewer: {
		PermAgentRead,
		PermConversationRead,
		PermDreamRead,
		PermSkillRead,
		PermMarketplaceRead,
		PermCostRead,
	},
}

// rolePermissions is the lookup table. Initialized once, read-only afterwards.
var rolePermissions = buildRolePermissions()

func buildRolePermissions() map[Role]map[Permission]struct{} {
	table := map[Role]map[Permission]struct{}{
		RoleAdmin: toSet(AllPermissions()),
	}
	for role, perms := range grantedPermissions {
		table[role] = toSet(perms)
	}
	return table
}

func toSet(perms []Permission) map[Permission]struct{} {
	set := make(map[Permission]struct{}, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}

// RolePermissions returns the permissions of role in declaration order.
func RolePermissions(role Role) []Permission {
	if role == RoleAdmin {
		return AllPermissions()
	}
	return slices.Clone(grantedPermissions[role])
}

// HasPermission reports whether role grants permission.
func HasPermission(role Role, permission Permission) bool {
	_, ok := rolePermissions[role][permission]
	return ok
}

// CanAccessOrOwn grants access when the user's role has permission or the
// user owns the resource. An empty ownerID never matches.
func CanAccessOrOwn(user *UserWithRole, permission Permission, ownerID string) bool {
	if user == nil {
		return false
	}
	if HasPermission(user.Role, permission) {
		return true
	}
	return ownerID != "" && user.ID == ownerID
}
