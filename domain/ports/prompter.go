package ports

import "github.com/reglet-dev/skillguard/domain/entities"

// Prompter handles interactive approval of dangerous permissions.
type Prompter interface {
	// IsInteractive returns true if running in an interactive terminal.
	IsInteractive() bool

	// PromptForApproval asks the user to approve one permission.
	// Returns: approved (allow this time), always (persist to store), error.
	PromptForApproval(req entities.ApprovalRequest) (approved bool, always bool, err error)
}
