package ports

import (
	"context"

	"github.com/reglet-dev/skillguard/domain/entities"
)

// DenialHandler is called when a skill permission check is denied.
// Implementations can log, count metrics, or write audit records.
type DenialHandler interface {
	// OnDenial receives the skill name and the denied result. result.Reason
	// is suitable for direct emission to an audit log.
	OnDenial(ctx context.Context, skill string, result entities.PermissionCheckResult)
}
