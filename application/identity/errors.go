package identity

import "errors"

var (
	// ErrUnknownProvider is returned for a provider name that was not configured.
	ErrUnknownProvider = errors.New("unknown identity provider")

	// ErrInvalidState is returned when an OAuth callback carries a state
	// value that was never issued, was already used, belongs to another
	// provider or has expired.
	ErrInvalidState = errors.New("invalid or expired oauth state")

	// ErrMissingEmail is returned when a provider does not disclose an email address.
	ErrMissingEmail = errors.New("identity provider returned no email")
)
