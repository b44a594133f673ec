package entities

import "fmt"

// ErrorDetail is the structured, serializable form of an authorization error.
// Types: "parse", "unauthorized", "forbidden", "capability", "config", "validation", "internal".
type ErrorDetail struct {
	// Details contains additional error context (missing permissions, skill name, ...).
	Details map[string]any `json:"details,omitempty"`

	// Message is a human-readable error description.
	Message string `json:"message"`

	// Type categorizes the error.
	Type string `json:"type"`

	// Code is a machine-readable error code.
	Code string `json:"code,omitempty"`
}

// Error implements the error interface.
func (e *ErrorDetail) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if e.Type != "" && e.Type != "internal" {
		msg = fmt.Sprintf("%s: %s", e.Type, msg)
	}
	if e.Code != "" {
		msg = fmt.Sprintf("%s [%s]", msg, e.Code)
	}
	return msg
}

// NewErrorDetail creates a new ErrorDetail with the given type and message.
func NewErrorDetail(errorType, message string) *ErrorDetail {
	return &ErrorDetail{
		Type:    errorType,
		Message: message,
	}
}

// WithDetails attaches details and returns e.
func (e *ErrorDetail) WithDetails(details map[string]any) *ErrorDetail {
	e.Details = details
	return e
}

// WithCode attaches a code and returns e.
func (e *ErrorDetail) WithCode(code string) *ErrorDetail {
	e.Code = code
	return e
}

// ParseError reports a permission string with fewer than two colon-separated parts.
type ParseError struct {
	Permission string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid permission format: %q (expected category:resource[:path])", e.Permission)
}

// ToErrorDetail converts the error to its structured form.
func (e *ParseError) ToErrorDetail() *ErrorDetail {
	return NewErrorDetail("parse", e.Error()).WithCode("invalid_permission")
}
