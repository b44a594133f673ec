package rbac

// Permission is a system-level action in "resource:action" form.
type Permission string

// Agent permissions
const (
	PermAgentCreate  Permission = "agent:create"
	PermAgentRead    Permission = "agent:read"
	PermAgentUpdate  Permission = "agent:update"
	PermAgentDelete  Permission = "agent:delete"
	PermAgentExecute Permission = "agent:execute"
)

// Conversation permissions
const (
	PermConversationCreate Permission = "conversation:create"
	PermConversationRead   Permission = "conversation:read"
	PermConversationDelete Permission = "conversation:delete"
	PermConversationExport Permission = "conversation:export"
)

// Dream permissions
const (
	PermDreamCreate Permission = "dream:create"
	PermDreamRead   Permission = "dream:read"
	PermDreamDelete Permission = "dream:delete"
)

// Skill permissions
const (
	PermSkillInstall   Permission = "skill:install"
	PermSkillRead      Permission = "skill:read"
	PermSkillExecute   Permission = "skill:execute"
	PermSkillUninstall Permission = "skill:uninstall"
)

// Marketplace permissions
const (
	PermMarketplaceRead     Permission = "marketplace:read"
	PermMarketplacePublish  Permission = "marketplace:publish"
	PermMarketplaceInstall  Permission = "marketplace:install"
	PermMarketplaceModerate Permission = "marketplace:moderate"
)

// User management permissions
const (
	PermUserCreate Permission = "user:create"
	PermUserRead   Permission = "user:read"
	PermUserUpdate Permission = "user:update"
	PermUserDelete Permission = "user:delete"
)

// Cost permissions
const (
	PermCostRead   Permission = "cost:read"
	PermCostManage Permission = "cost:manage"
)

// Audit permissions
const (
	PermAuditRead   Permission = "audit:read"
	PermAuditExport Permission = "audit:export"
)

// System configuration permissions
const (
	PermSystemConfigRead   Permission = "system-config:read"
	PermSystemConfigUpdate Permission = "system-config:update"
)

// AllPermissions returns every declared permission. It is the single
// registry of the enumeration; the admin role is derived from it.
func AllPermissions() []Permission {
	return []Permission{
		PermAgentCreate, PermAgentRead, PermAgentUpdate, PermAgentDelete, PermAgentExecute,
		PermConversationCreate, PermConversationRead, PermConversationDelete, PermConversationExport,
		PermDreamCreate, PermDreamRead, PermDreamDelete,
		PermSkillInstall, PermSkillRead, PermSkillExecute, PermSkillUninstall,
		PermMarketplaceRead, PermMarketplacePublish, PermMarketplaceInstall, PermMarketplaceModerate,
		PermUserCreate, PermUserRead, PermUserUpdate, PermUserDelete,
		PermCostRead, PermCostManage,
		PermAuditRead, PermAuditExport,
		PermSystemConfigRead, PermSystemConfigUpdate,
	}
}

// IsValid reports whether p is a declared permission.
func (p Permission) IsValid() bool {
	for _, known := range AllPermissions() {
		if known == p {
			return true
		}
	}
	return false
}

// Strings converts permissions to their textual form.
func Strings(perms []Permission) []string {
	out := make([]string, len(perms))
	for i, p := range perms {
		out[i] = string(p)
	}
	return out
}
