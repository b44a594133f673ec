package entities

// ValidationResult represents the outcome of a manifest validation.
type ValidationResult struct {
	Valid    bool
	Errors   []ValidationError
	Warnings []ValidationError
}

// ValidationError represents a specific validation finding.
type ValidationError struct {
	Field   string
	Message string
}
