// Package rbac implements role-based access control for human users.
//
// Roles form a closed, totally ordered set (admin > developer > viewer). Each
// role maps to a fixed set of Permission values. The admin set is derived from
// AllPermissions, so a newly declared permission is admin-only until another
// role is granted it explicitly. The role table is built once at package
// initialization and never mutated, so lookups need no synchronization.
package rbac
