package ports

import "github.com/reglet-dev/skillguard/domain/entities"

// Checker evaluates concrete skill operations against declared permissions.
type Checker interface {
	CheckFilesystemRead(path string) entities.PermissionCheckResult
	CheckFilesystemWrite(path string) entities.PermissionCheckResult
	CheckFilesystemDelete(path string) entities.PermissionCheckResult
	CheckNetwork(protocol, domain string) entities.PermissionCheckResult
	CheckAPI(endpoint string) entities.PermissionCheckResult
	CheckAI(provider, model string) entities.PermissionCheckResult
	CheckSystem(op string) entities.PermissionCheckResult
	CheckKV(op, key string) entities.PermissionCheckResult
	Check(permission string) (entities.PermissionCheckResult, error)
	Evaluate(request string) (entities.PermissionCheckResult, error)
}
