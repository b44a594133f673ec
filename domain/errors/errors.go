// Package errors provides the authorization error taxonomy.
// All error types support unwrapping via errors.As() and errors.Is().
package errors

import (
	stdErrors "errors"
	"fmt"
	"strings"

	"github.com/reglet-dev/skillguard/domain/entities"
)

// ErrorDetail is an alias to entities.ErrorDetail for convenience.
type ErrorDetail = entities.ErrorDetail

// ParseError is an alias to entities.ParseError, raised for permission
// strings with fewer than two colon-separated parts.
type ParseError = entities.ParseError

// DetailedError is implemented by errors that can convert themselves to a
// structured ErrorDetail. New error types only need to implement it.
type DetailedError interface {
	error
	ToErrorDetail() *entities.ErrorDetail
}

// ToErrorDetail converts a Go error to our structured ErrorDetail.
func ToErrorDetail(err error) *entities.ErrorDetail {
	if err == nil {
		return nil
	}

	var e *entities.ErrorDetail
	if stdErrors.As(err, &e) {
		return e
	}

	var de DetailedError
	if stdErrors.As(err, &de) {
		return de.ToErrorDetail()
	}

	return entities.NewErrorDetail("internal", err.Error())
}

// UnauthorizedError means no authenticated principal is present.
// It is terminal for the current request.
type UnauthorizedError struct {
	Message string
}

func (e *UnauthorizedError) Error() string {
	if e.Message == "" {
		return "authentication required"
	}
	return e.Message
}

// ToErrorDetail implements DetailedError.
func (e *UnauthorizedError) ToErrorDetail() *entities.ErrorDetail {
	return entities.NewErrorDetail("unauthorized", e.Error()).WithCode("unauthenticated")
}

// ForbiddenError means an authenticated principal lacks permissions.
// Permissions lists exactly the permissions that caused the failure.
type ForbiddenError struct {
	Message     string
	Permissions []string
}

func (e *ForbiddenError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "permission denied: requires " + strings.Join(e.Permissions, ", ")
}

// ToErrorDetail implements DetailedError.
func (e *ForbiddenError) ToErrorDetail() *entities.ErrorDetail {
	return entities.NewErrorDetail("forbidden", e.Error()).
		WithCode("permission_denied").
		WithDetails(map[string]any{"permissions": e.Permissions})
}

// IsUnauthorized reports whether err wraps an *UnauthorizedError.
func IsUnauthorized(err error) bool {
	var target *UnauthorizedError
	return stdErrors.As(err, &target)
}

// IsForbidden reports whether err wraps a *ForbiddenError.
func IsForbidden(err error) bool {
	var target *ForbiddenError
	return stdErrors.As(err, &target)
}

// CapabilityError is returned when a skill operation is denied by its permissions.
type CapabilityError struct {
	Skill      string
	Permission string
	Reason     string
}

func (e *CapabilityError) Error() string {
	if e.Skill != "" {
		return fmt.Sprintf("skill %s: capability denied: %s (%s)", e.Skill, e.Permission, e.Reason)
	}
	return fmt.Sprintf("capability denied: %s (%s)", e.Permission, e.Reason)
}

// ToErrorDetail implements DetailedError.
func (e *CapabilityError) ToErrorDetail() *entities.ErrorDetail {
	return entities.NewErrorDetail("capability", e.Error()).
		WithCode(e.Permission).
		WithDetails(map[string]any{"skill": e.Skill, "reason": e.Reason})
}

// ApprovalError is returned when dangerous permissions were not approved.
type ApprovalError struct {
	Skill       string
	Permissions []string
}

func (e *ApprovalError) Error() string {
	return fmt.Sprintf("skill %s requires approval for: %s", e.Skill, strings.Join(e.Permissions, ", "))
}

// ToErrorDetail implements DetailedError.
func (e *ApprovalError) ToErrorDetail() *entities.ErrorDetail {
	return entities.NewErrorDetail("capability", e.Error()).
		WithCode("approval_required").
		WithDetails(map[string]any{"skill": e.Skill, "permissions": e.Permissions})
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Err   error
	Field string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config validation failed for field '%s': %v", e.Field, e.Err)
	}
	return fmt.Sprintf("config validation failed: %v", e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *ConfigError) ToErrorDetail() *entities.ErrorDetail {
	return entities.NewErrorDetail("config", e.Error()).WithCode(e.Field)
}

// SchemaError represents a schema generation or validation error.
type SchemaError struct {
	Err  error
	Type string
}

func (e *SchemaError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("schema error for type %s: %v", e.Type, e.Err)
	}
	return fmt.Sprintf("schema error: %v", e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *SchemaError) ToErrorDetail() *entities.ErrorDetail {
	return entities.NewErrorDetail("validation", e.Error()).WithCode("schema")
}
