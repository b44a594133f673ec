package policy

import (
	"fmt"

	"github.com/reglet-dev/skillguard/domain/entities"
)

// PermissionChecker decides whether a skill may perform a concrete operation.
// It is built once per installed skill and is immutable afterwards, so a single
// instance is safe for concurrent use. Checks never perform I/O; callers report
// denials through a ports.DenialHandler.
type PermissionChecker struct {
	raw   []string
	rawIx map[string]struct{}
	set   *entities.SkillPermissionSet
	globs globCache
}

// NewPermissionChecker builds the structured set for permissions eagerly and
// keeps the raw list for literal Check lookups.
func NewPermissionChecker(permissions []string) *PermissionChecker {
	return newPermissionChecker(permissions, entities.BuildPermissionSet(permissions))
}

// NewPermissionCheckerFromSet builds a checker over an already structured set,
// such as one carrying blocked domains that have no permission-string form.
// The set is copied; later changes to it do not affect the checker.
func NewPermissionCheckerFromSet(permissions []string, set *entities.SkillPermissionSet) *PermissionChecker {
	if set == nil {
		set = &entities.SkillPermissionSet{}
	}
	return newPermissionChecker(permissions, set.Clone())
}

func newPermissionChecker(permissions []string, set *entities.SkillPermissionSet) *PermissionChecker {
	rawIx := make(map[string]struct{}, len(permissions))
	for _, p := range permissions {
		rawIx[p] = struct{}{}
	}

	var patterns [][]string
	if set.Filesystem != nil {
		patterns = append(patterns, set.Filesystem.Read, set.Filesystem.Write, set.Filesystem.Delete)
	}
	if set.API != nil {
		patterns = append(patterns, set.API.AllowedEndpoints)
	}

	return &PermissionChecker{
		raw:   append([]string(nil), permissions...),
		rawIx: rawIx,
		set:   set,
		globs: newGlobCache(patterns...),
	}
}

// Permissions returns a copy of the raw permission strings.
func (c *PermissionChecker) Permissions() []string {
	return append([]string(nil), c.raw...)
}

// PermissionSet returns a copy of the structured set.
func (c *PermissionChecker) PermissionSet() *entities.SkillPermissionSet {
	return c.set.Clone()
}

// CheckFilesystemRead checks a read of path.
func (c *PermissionChecker) CheckFilesystemRead(path string) entities.PermissionCheckResult {
	return c.checkFilesystem("read", path)
}

// CheckFilesystemWrite checks a write to path.
func (c *PermissionChecker) CheckFilesystemWrite(path string) entities.PermissionCheckResult {
	return c.checkFilesystem("write", path)
}

// CheckFilesystemDelete checks a deletion of path.
func (c *PermissionChecker) CheckFilesystemDelete(path string) entities.PermissionCheckResult {
	return c.checkFilesystem("delete", path)
}

func (c *PermissionChecker) checkFilesystem(op, path string) entities.PermissionCheckResult {
	permission := "fs:" + op + ":" + path
	fs := c.set.Filesystem
	if fs == nil {
		return entities.Deny(permission, "No filesystem permissions declared")
	}

	var patterns []string
	switch op {
	case "read":
		patterns = fs.Read
	case "write":
		patterns = fs.Write
	case "delete":
		patterns = fs.Delete
	}

	if pattern, ok := c.globs.matchAnyPath(patterns, path); ok {
		return entities.Allow(permission, fmt.Sprintf("Filesystem %s of %s granted by pattern %q", op, path, pattern))
	}
	return entities.Deny(permission, fmt.Sprintf("Filesystem %s of %s not permitted", op, path))
}

// CheckNetwork checks network access over protocol. An empty domain
// authorizes the protocol alone and skips the domain lists. With a domain,
// it must pass the allow-list (when declared) and must not hit the
// block-list (when declared).
func (c *PermissionChecker) CheckNetwork(protocol, domain string) entities.PermissionCheckResult {
	permission := "network:" + protocol
	if domain != "" {
		permission += ":" + domain
	}

	n := c.set.Network
	if n == nil {
		return entities.Deny(permission, "No network permissions declared")
	}
	if !contains(n.Protocols, protocol) {
		return entities.Deny(permission, fmt.Sprintf("Protocol %s not permitted", protocol))
	}
	if domain == "" {
		return entities.Allow(permission, fmt.Sprintf("Protocol %s permitted", protocol))
	}

	if n.AllowedDomains != nil {
		if _, ok := matchAnyDomain(n.AllowedDomains, domain); !ok {
			return entities.Deny(permission, fmt.Sprintf("Domain %s not in allowed domains", domain))
		}
	}
	if n.BlockedDomains != nil {
		if pattern, ok := matchAnyDomain(n.BlockedDomains, domain); ok {
			return entities.Deny(permission, fmt.Sprintf("Domain %s is blocked by %q", domain, pattern))
		}
	}
	return entities.Allow(permission, fmt.Sprintf("Network access to %s over %s permitted", domain, protocol))
}

// CheckAPI checks a call to endpoint.
func (c *PermissionChecker) CheckAPI(endpoint string) entities.PermissionCheckResult {
	permission := "api:" + endpoint
	api := c.set.API
	if api == nil {
		return entities.Deny(permission, "No API permissions declared")
	}
	for _, pattern := range api.AllowedEndpoints {
		if c.globs.matchEndpoint(pattern, endpoint) {
			return entities.Allow(permission, fmt.Sprintf("API endpoint %s permitted by %q", endpoint, pattern))
		}
	}
	return entities.Deny(permission, fmt.Sprintf("API endpoint %s not permitted", endpoint))
}

// CheckAI checks use of an AI provider and, when model is non-empty, a model.
// An undeclared provider or model list places no restriction on that field;
// only the absence of the whole ai category denies.
func (c *PermissionChecker) CheckAI(provider, model string) entities.PermissionCheckResult {
	permission := "ai:" + provider
	if model != "" {
		permission += ":" + model
	}

	ai := c.set.AI
	if ai == nil {
		return entities.Deny(permission, "No AI permissions declared")
	}
	if ai.Providers != nil && !contains(ai.Providers, provider) {
		return entities.Deny(permission, fmt.Sprintf("AI provider %s not permitted", provider))
	}
	if model != "" && ai.Models != nil && !contains(ai.Models, model) {
		return entities.Deny(permission, fmt.Sprintf("AI model %s not permitted", model))
	}
	return entities.Allow(permission, fmt.Sprintf("AI provider %s permitted", provider))
}

// CheckSystem checks one of the system operations "exec", "env" or "spawn".
func (c *PermissionChecker) CheckSystem(op string) entities.PermissionCheckResult {
	permission := "system:" + op
	sys := c.set.System
	if sys == nil {
		return entities.Deny(permission, "No system permissions declared")
	}

	var allowed bool
	switch op {
	case "exec":
		allowed = sys.ExecCommands
	case "env":
		allowed = sys.EnvAccess
	case "spawn":
		allowed = sys.ProcessSpawn
	default:
		return entities.Deny(permission, fmt.Sprintf("Unknown system operation: %s", op))
	}

	if !allowed {
		return entities.Deny(permission, fmt.Sprintf("System %s not permitted", op))
	}
	return entities.Allow(permission, fmt.Sprintf("System %s permitted", op))
}

// CheckKV checks a key-value store "read" or "write" of key. Without a prefix
// list for the operation every key is allowed.
func (c *PermissionChecker) CheckKV(op, key string) entities.PermissionCheckResult {
	permission := "kv:" + op + ":" + key
	kv := c.set.KV
	if kv == nil {
		return entities.Deny(permission, "No KV permissions declared")
	}

	var allowed bool
	var prefixes []string
	switch op {
	case "read":
		allowed, prefixes = kv.Read, kv.ReadPrefixes
	case "write":
		allowed, prefixes = kv.Write, kv.WritePrefixes
	default:
		return entities.Deny(permission, fmt.Sprintf("Unknown KV operation: %s", op))
	}

	if !allowed {
		return entities.Deny(permission, fmt.Sprintf("KV %s not permitted", op))
	}
	if prefixes != nil && !hasAnyPrefix(key, prefixes) {
		return entities.Deny(permission, fmt.Sprintf("Key %s does not match any permitted %s prefix", key, op))
	}
	return entities.Allow(permission, fmt.Sprintf("KV %s of %s permitted", op, key))
}

// Check tests literal membership of permission in the declared list,
// bypassing structured matching. Malformed strings return a *entities.ParseError.
func (c *PermissionChecker) Check(permission string) (entities.PermissionCheckResult, error) {
	if _, err := entities.ParsePermission(permission); err != nil {
		return entities.PermissionCheckResult{}, err
	}
	if _, ok := c.rawIx[permission]; ok {
		return entities.Allow(permission, fmt.Sprintf("Permission %s declared", permission)), nil
	}
	return entities.Deny(permission, fmt.Sprintf("Permission %s not declared", permission)), nil
}

// Evaluate checks a request written in permission grammar against the
// structured set:
//
//	fs:<read|write|delete>:<path>
//	network:<protocol>[:<domain>]
//	api:<endpoint>  or  api:<name>:<endpoint>
//	ai:<provider>[:<model>]
//	system:<exec|env|spawn>
//	kv:<read|write>:<key>
//
// Categories without structured matching (env, memory, external and unknown
// ones) fall back to Check.
func (c *PermissionChecker) Evaluate(request string) (entities.PermissionCheckResult, error) {
	p, err := entities.ParsePermission(request)
	if err != nil {
		return entities.PermissionCheckResult{}, err
	}

	switch p.Category {
	case entities.CategoryFilesystem:
		switch p.Resource {
		case "read":
			return c.CheckFilesystemRead(p.Path), nil
		case "write":
			return c.CheckFilesystemWrite(p.Path), nil
		case "delete":
			return c.CheckFilesystemDelete(p.Path), nil
		}
		return entities.Deny(request, fmt.Sprintf("Unknown filesystem operation: %s", p.Resource)), nil
	case entities.CategoryNetwork:
		return c.CheckNetwork(p.Resource, p.Path), nil
	case entities.CategoryAPI:
		return c.CheckAPI(p.PathOr(p.Resource)), nil
	case entities.CategoryAI:
		return c.CheckAI(p.Resource, p.Path), nil
	case entities.CategorySystem:
		return c.CheckSystem(p.Resource), nil
	case entities.CategoryKV:
		return c.CheckKV(p.Resource, p.Path), nil
	default:
		return c.Check(request)
	}
}
