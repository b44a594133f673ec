package skill

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/reglet-dev/skillguard/domain/entities"
	"github.com/reglet-dev/skillguard/domain/errors"
	"github.com/reglet-dev/skillguard/domain/policy"
	"github.com/reglet-dev/skillguard/domain/ports"
)

type registryConfig struct {
	denialHandler ports.DenialHandler
	logger        *slog.Logger
}

func defaultRegistryConfig() registryConfig {
	return registryConfig{
		denialHandler: &policy.NopDenialHandler{},
		logger:        slog.Default(),
	}
}

// RegistryOption configures a Registry.
type RegistryOption func(*registryConfig)

// WithDenialHandler sets the handler that receives every denied check.
func WithDenialHandler(h ports.DenialHandler) RegistryOption {
	return func(c *registryConfig) {
		if h != nil {
			c.denialHandler = h
		}
	}
}

// WithLogger sets the logger used for install and uninstall events.
func WithLogger(l *slog.Logger) RegistryOption {
	return func(c *registryConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// Registry holds one PermissionChecker per installed skill.
// Checkers are never shared between skills; reinstalling a skill replaces
// its checker atomically.
type Registry struct {
	config   registryConfig
	mu       sync.RWMutex
	checkers map[string]*policy.PermissionChecker
}

// NewRegistry creates an empty Registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	cfg := defaultRegistryConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Registry{
		config:   cfg,
		checkers: make(map[string]*policy.PermissionChecker),
	}
}

// Install builds the checker for manifest and registers it under its name.
func (r *Registry) Install(manifest *entities.SkillManifest) error {
	if manifest == nil || manifest.Name == "" {
		return fmt.Errorf("cannot install skill without a name")
	}
	checker := policy.NewPermissionChecker(manifest.Permissions)

	r.mu.Lock()
	_, replaced := r.checkers[manifest.Name]
	r.checkers[manifest.Name] = checker
	r.mu.Unlock()

	r.config.logger.Info("skill installed",
		slog.String("skill", manifest.Name),
		slog.String("version", manifest.Version),
		slog.Int("permissions", len(manifest.Permissions)),
		slog.Bool("replaced", replaced),
	)
	return nil
}

// Uninstall removes skill. It reports whether the skill was installed.
func (r *Registry) Uninstall(skill string) bool {
	r.mu.Lock()
	_, ok := r.checkers[skill]
	delete(r.checkers, skill)
	r.mu.Unlock()

	if ok {
		r.config.logger.Info("skill uninstalled", slog.String("skill", skill))
	}
	return ok
}

// Checker returns the checker of skill.
func (r *Registry) Checker(skill string) (*policy.PermissionChecker, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.checkers[skill]
	return c, ok
}

// Skills returns the installed skill names in sorted order.
func (r *Registry) Skills() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.checkers))
	for name := range r.checkers {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Authorize evaluates request (in permission grammar, see
// policy.PermissionChecker.Evaluate) for skill. A denied result is reported
// to the denial handler and returned as an *errors.CapabilityError.
func (r *Registry) Authorize(ctx context.Context, skill, request string) error {
	return r.guard(ctx, skill, request, func(c *policy.PermissionChecker) (entities.PermissionCheckResult, error) {
		return c.Evaluate(request)
	})
}

// AuthorizeContext is Authorize for the skill named in ctx (see WithSkillName).
func (r *Registry) AuthorizeContext(ctx context.Context, request string) error {
	skill, ok := SkillNameFromContext(ctx)
	if !ok {
		return &errors.CapabilityError{Permission: request, Reason: "No skill in context"}
	}
	return r.Authorize(ctx, skill, request)
}

// GuardFilesystemRead checks a read of path by skill.
func (r *Registry) GuardFilesystemRead(ctx context.Context, skill, path string) error {
	return r.guardResult(ctx, skill, "fs:read:"+path, func(c *policy.PermissionChecker) entities.PermissionCheckResult {
		return c.CheckFilesystemRead(path)
	})
}

// GuardFilesystemWrite checks a write to path by skill.
func (r *Registry) GuardFilesystemWrite(ctx context.Context, skill, path string) error {
	return r.guardResult(ctx, skill, "fs:write:"+path, func(c *policy.PermissionChecker) entities.PermissionCheckResult {
		return c.CheckFilesystemWrite(path)
	})
}

// GuardFilesystemDelete checks a deletion of path by skill.
func (r *Registry) GuardFilesystemDelete(ctx context.Context, skill, path string) error {
	return r.guardResult(ctx, skill, "fs:delete:"+path, func(c *policy.PermissionChecker) entities.PermissionCheckResult {
		return c.CheckFilesystemDelete(path)
	})
}

// GuardNetwork checks network access by skill.
func (r *Registry) GuardNetwork(ctx context.Context, skill, protocol, domain string) error {
	return r.guardResult(ctx, skill, "network:"+protocol, func(c *policy.PermissionChecker) entities.PermissionCheckResult {
		return c.CheckNetwork(protocol, domain)
	})
}

// GuardAPI checks an API call by skill.
func (r *Registry) GuardAPI(ctx context.Context, skill, endpoint string) error {
	return r.guardResult(ctx, skill, "api:"+endpoint, func(c *policy.PermissionChecker) entities.PermissionCheckResult {
		return c.CheckAPI(endpoint)
	})
}

// GuardAI checks use of an AI provider and model by skill.
func (r *Registry) GuardAI(ctx context.Context, skill, provider, model string) error {
	return r.guardResult(ctx, skill, "ai:"+provider, func(c *policy.PermissionChecker) entities.PermissionCheckResult {
		return c.CheckAI(provider, model)
	})
}

// GuardSystem checks a system operation by skill.
func (r *Registry) GuardSystem(ctx context.Context, skill, op string) error {
	return r.guardResult(ctx, skill, "system:"+op, func(c *policy.PermissionChecker) entities.PermissionCheckResult {
		return c.CheckSystem(op)
	})
}

// GuardKV checks a key-value store operation by skill.
func (r *Registry) GuardKV(ctx context.Context, skill, op, key string) error {
	return r.guardResult(ctx, skill, "kv:"+op+":"+key, func(c *policy.PermissionChecker) entities.PermissionCheckResult {
		return c.CheckKV(op, key)
	})
}

func (r *Registry) guardResult(ctx context.Context, skill, permission string, check func(*policy.PermissionChecker) entities.PermissionCheckResult) error {
	return r.guard(ctx, skill, permission, func(c *policy.PermissionChecker) (entities.PermissionCheckResult, error) {
		return check(c), nil
	})
}

func (r *Registry) guard(ctx context.Context, skill, permission string, check func(*policy.PermissionChecker) (entities.PermissionCheckResult, error)) error {
	result, err := r.decide(ctx, skill, permission, check)
	if err != nil {
		return err
	}
	if result.Granted {
		return nil
	}
	return &errors.CapabilityError{Skill: skill, Permission: result.Permission, Reason: result.Reason}
}

// Evaluate is Authorize returning the full check result. Denials still reach
// the denial handler; only malformed requests produce an error.
func (r *Registry) Evaluate(ctx context.Context, skill, request string) (entities.PermissionCheckResult, error) {
	return r.decide(ctx, skill, request, func(c *policy.PermissionChecker) (entities.PermissionCheckResult, error) {
		return c.Evaluate(request)
	})
}

func (r *Registry) decide(ctx context.Context, skill, permission string, check func(*policy.PermissionChecker) (entities.PermissionCheckResult, error)) (entities.PermissionCheckResult, error) {
	checker, ok := r.Checker(skill)
	if !ok {
		result := entities.Deny(permission, fmt.Sprintf("Skill %s is not installed", skill))
		r.config.denialHandler.OnDenial(ctx, skill, result)
		return result, nil
	}

	result, err := check(checker)
	if err != nil {
		return entities.PermissionCheckResult{}, err
	}
	if !result.Granted {
		r.config.denialHandler.OnDenial(ctx, skill, result)
	}
	return result, nil
}
