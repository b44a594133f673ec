package ports

// ApprovalStore persists which dangerous permissions a user approved per skill.
type ApprovalStore interface {
	// Load returns approved permissions keyed by skill name.
	// Returns an empty map (not an error) if nothing was approved yet.
	Load() (map[string][]string, error)

	// Approve records permissions as approved for skill.
	Approve(skill string, permissions []string) error

	// Revoke removes all approvals for skill.
	Revoke(skill string) error

	// ConfigPath returns the path to the backing store (for user messaging).
	ConfigPath() string
}
