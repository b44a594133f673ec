// Package casbinrbac mirrors the static role table into a Casbin enforcer so
// route authorization and policy listings can be served by Casbin.
package casbinrbac

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/reglet-dev/skillguard/domain/ports"
	"github.com/reglet-dev/skillguard/domain/rbac"
)

var _ ports.Authorizer = (*Enforcer)(nil)

//go:embed model.conf
var casbinModelContent string

// Enforcer answers RBAC questions from a Casbin policy seeded with
// rbac.RolePermissions for every role.
type Enforcer struct {
	e *casbin.SyncedEnforcer
}

// NewEnforcer builds an in-memory enforcer holding the role table.
func NewEnforcer() (*Enforcer, error) {
	m, err := model.NewModelFromString(casbinModelContent)
	if err != nil {
		return nil, fmt.Errorf("parse casbin model: %w", err)
	}
	e, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create casbin enforcer: %w", err)
	}

	var rules [][]string
	for _, role := range rbac.Roles() {
		for _, perm := range rbac.RolePermissions(role) {
			obj, act := split(perm)
			rules = append(rules, []string{string(role), obj, act})
		}
	}
	if _, err := e.AddPolicies(rules); err != nil {
		return nil, fmt.Errorf("seed casbin policies: %w", err)
	}
	return &Enforcer{e: e}, nil
}

func split(p rbac.Permission) (obj, act string) {
	obj, act, _ = strings.Cut(string(p), ":")
	return obj, act
}

// RoleCan reports whether role grants permission.
func (e *Enforcer) RoleCan(role rbac.Role, permission rbac.Permission) (bool, error) {
	obj, act := split(permission)
	return e.e.Enforce(string(role), obj, act)
}

// Authorize reports whether the current role of u grants permission. It
// satisfies ports.Authorizer.
func (e *Enforcer) Authorize(u *rbac.UserWithRole, permission rbac.Permission) (bool, error) {
	if u == nil {
		return false, nil
	}
	return e.RoleCan(u.Role, permission)
}

// Policy returns the permissions of role as resource:action strings.
func (e *Enforcer) Policy(role rbac.Role) ([]rbac.Permission, error) {
	rules, err := e.e.GetPermissionsForUser(string(role))
	if err != nil {
		return nil, err
	}
	out := make([]rbac.Permission, 0, len(rules))
	for _, r := range rules {
		if len(r) < 3 {
			continue
		}
		out = append(out, rbac.Permission(r[1]+":"+r[2]))
	}
	return out, nil
}
