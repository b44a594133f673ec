package skill

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/reglet-dev/skillguard/domain/entities"
	"github.com/reglet-dev/skillguard/domain/errors"
	"github.com/reglet-dev/skillguard/domain/ports"
)

type approverConfig struct {
	logger *slog.Logger
}

// ApproverOption configures an Approver.
type ApproverOption func(*approverConfig)

// WithApproverLogger sets the logger used to record approval decisions.
func WithApproverLogger(l *slog.Logger) ApproverOption {
	return func(c *approverConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// Approver makes sure every permission of a skill that RequiresApproval
// has been approved, either earlier (recorded in the store) or now
// (through the prompter).
type Approver struct {
	config   approverConfig
	store    ports.ApprovalStore
	prompter ports.Prompter
}

// NewApprover creates an Approver. prompter may be nil, in which case
// unapproved permissions always fail.
func NewApprover(store ports.ApprovalStore, prompter ports.Prompter, opts ...ApproverOption) *Approver {
	cfg := approverConfig{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Approver{config: cfg, store: store, prompter: prompter}
}

// Pending returns the dangerous permissions of manifest not yet approved in the store.
func (a *Approver) Pending(manifest *entities.SkillManifest) ([]string, error) {
	dangerous := manifest.DangerousPermissions()
	if len(dangerous) == 0 {
		return nil, nil
	}

	approved, err := a.store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load approvals: %w", err)
	}

	var pending []string
	for _, p := range dangerous {
		if !slices.Contains(approved[manifest.Name], p) && !slices.Contains(pending, p) {
			pending = append(pending, p)
		}
	}
	return pending, nil
}

// Review asks for approval of every pending permission of manifest.
// Without an interactive prompter it returns an *errors.ApprovalError
// listing all pending permissions. Interactively, permissions answered
// with "always" are persisted; any rejected permission fails the review
// with an *errors.ApprovalError listing the rejected ones.
func (a *Approver) Review(manifest *entities.SkillManifest) error {
	pending, err := a.Pending(manifest)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		return nil
	}

	if a.prompter == nil || !a.prompter.IsInteractive() {
		return &errors.ApprovalError{Skill: manifest.Name, Permissions: pending}
	}

	var persist, rejected []string
	for _, p := range pending {
		approved, always, err := a.prompter.PromptForApproval(entities.NewApprovalRequest(manifest.Name, p))
		if err != nil {
			return fmt.Errorf("failed to prompt for %s: %w", p, err)
		}
		switch {
		case !approved:
			rejected = append(rejected, p)
		case always:
			persist = append(persist, p)
		}
		a.config.logger.Info("permission reviewed",
			slog.String("skill", manifest.Name),
			slog.String("permission", p),
			slog.Bool("approved", approved),
			slog.Bool("always", always),
		)
	}

	if len(persist) > 0 {
		if err := a.store.Approve(manifest.Name, persist); err != nil {
			return fmt.Errorf("failed to save approvals to %s: %w", a.store.ConfigPath(), err)
		}
	}
	if len(rejected) > 0 {
		return &errors.ApprovalError{Skill: manifest.Name, Permissions: rejected}
	}
	return nil
}

// Approve records every dangerous permission of manifest as approved without prompting.
func (a *Approver) Approve(manifest *entities.SkillManifest) ([]string, error) {
	pending, err := a.Pending(manifest)
	if err != nil || len(pending) == 0 {
		return nil, err
	}
	if err := a.store.Approve(manifest.Name, pending); err != nil {
		return nil, fmt.Errorf("failed to save approvals to %s: %w", a.store.ConfigPath(), err)
	}
	return pending, nil
}

// Revoke forgets all approvals of skill.
func (a *Approver) Revoke(skill string) error {
	return a.store.Revoke(skill)
}
