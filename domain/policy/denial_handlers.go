package policy

import (
	"context"
	"log/slog"

	"github.com/reglet-dev/skillguard/domain/entities"
	"github.com/reglet-dev/skillguard/domain/ports"
)

// Ensure implementations satisfy the interface.
var _ ports.DenialHandler = (*SlogDenialHandler)(nil)
var _ ports.DenialHandler = (*NopDenialHandler)(nil)
var _ ports.DenialHandler = (MultiDenialHandler)(nil)

// SlogDenialHandler writes one warning per denied check.
type SlogDenialHandler struct {
	Logger *slog.Logger
}

func (h *SlogDenialHandler) OnDenial(ctx context.Context, skill string, result entities.PermissionCheckResult) {
	logger := h.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.WarnContext(ctx, "permission denied",
		slog.String("skill", skill),
		slog.String("category", CategoryOf(result.Permission)),
		slog.String("permission", result.Permission),
		slog.String("reason", result.Reason),
	)
}

// NopDenialHandler does nothing.
type NopDenialHandler struct{}

func (h *NopDenialHandler) OnDenial(context.Context, string, entities.PermissionCheckResult) {}

// MultiDenialHandler fans a denial out to several handlers in order.
type MultiDenialHandler []ports.DenialHandler

func (m MultiDenialHandler) OnDenial(ctx context.Context, skill string, result entities.PermissionCheckResult) {
	for _, h := range m {
		if h != nil {
			h.OnDenial(ctx, skill, result)
		}
	}
}

// CategoryOf returns the category segment of a permission string, or
// "unknown" when it cannot be parsed.
func CategoryOf(permission string) string {
	p, err := entities.ParsePermission(permission)
	if err != nil || p.Category == "" {
		return "unknown"
	}
	return string(p.Category)
}
