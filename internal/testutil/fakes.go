package testutil

import (
	"context"
	"slices"
	"sync"

	"github.com/reglet-dev/skillguard/domain/entities"
	"github.com/reglet-dev/skillguard/domain/ports"
)

var (
	_ ports.ApprovalStore = (*MemoryApprovalStore)(nil)
	_ ports.Prompter      = (*ScriptedPrompter)(nil)
	_ ports.DenialHandler = (*RecordingDenialHandler)(nil)
)

// MemoryApprovalStore is an in-memory ports.ApprovalStore.
type MemoryApprovalStore struct {
	mu        sync.Mutex
	approvals map[string][]string
	LoadErr   error
}

// NewMemoryApprovalStore returns a store seeded with approvals.
func NewMemoryApprovalStore(approvals map[string][]string) *MemoryApprovalStore {
	s := &MemoryApprovalStore{approvals: make(map[string][]string)}
	for k, v := range approvals {
		s.approvals[k] = slices.Clone(v)
	}
	return s
}

func (s *MemoryApprovalStore) Load() (map[string][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.LoadErr != nil {
		return nil, s.LoadErr
	}
	out := make(map[string][]string, len(s.approvals))
	for k, v := range s.approvals {
		out[k] = slices.Clone(v)
	}
	return out, nil
}

func (s *MemoryApprovalStore) Approve(skill string, permissions []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range permissions {
		if !slices.Contains(s.approvals[skill], p) {
			s.approvals[skill] = append(s.approvals[skill], p)
		}
	}
	return nil
}

func (s *MemoryApprovalStore) Revoke(skill string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.approvals, skill)
	return nil
}

func (s *MemoryApprovalStore) ConfigPath() string { return "memory" }

// Answer is one scripted prompt response.
type Answer struct {
	Approved bool
	Always   bool
}

// ScriptedPrompter answers approval prompts from a fixed script keyed by permission.
// Unscripted permissions are rejected.
type ScriptedPrompter struct {
	Interactive bool
	Answers     map[string]Answer
	Asked       []entities.ApprovalRequest
}

func (p *ScriptedPrompter) IsInteractive() bool { return p.Interactive }

func (p *ScriptedPrompter) PromptForApproval(req entities.ApprovalRequest) (bool, bool, error) {
	p.Asked = append(p.Asked, req)
	a := p.Answers[req.Permission]
	return a.Approved, a.Always, nil
}

// Denial is one recorded denial.
type Denial struct {
	Skill  string
	Result entities.PermissionCheckResult
}

// RecordingDenialHandler records every denial it receives.
type RecordingDenialHandler struct {
	mu      sync.Mutex
	denials []Denial
}

func (h *RecordingDenialHandler) OnDenial(_ context.Context, skill string, result entities.PermissionCheckResult) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.denials = append(h.denials, Denial{Skill: skill, Result: result})
}

// Denials returns a copy of the recorded denials.
func (h *RecordingDenialHandler) Denials() []Denial {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.denials)
}
