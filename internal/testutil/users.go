package testutil

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/reglet-dev/skillguard/domain/ports"
	"github.com/reglet-dev/skillguard/domain/rbac"
)

var _ ports.UserStore = (*MemoryUserStore)(nil)

// MemoryUserStore is an in-memory ports.UserStore with the same matching
// rules as the database store. Returned users are copies.
type MemoryUserStore struct {
	mu    sync.Mutex
	users map[string]*rbac.UserWithRole
	Now   func() time.Time
}

// NewMemoryUserStore returns an empty store.
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[string]*rbac.UserWithRole), Now: time.Now}
}

func (s *MemoryUserStore) Get(_ context.Context, id string) (*rbac.UserWithRole, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		c := *u
		return &c, nil
	}
	return nil, rbac.ErrUserNotFound
}

func (s *MemoryUserStore) GetByEmail(_ context.Context, email string) (*rbac.UserWithRole, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.find(func(u *rbac.UserWithRole) bool { return sameEmail(u.Email, email) })
}

func (s *MemoryUserStore) GetBySubject(_ context.Context, subject string) (*rbac.UserWithRole, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.find(func(u *rbac.UserWithRole) bool { return subject != "" && u.Subject == subject })
}

func (s *MemoryUserStore) Upsert(_ context.Context, u *rbac.UserWithRole) (*rbac.UserWithRole, error) {
	if u == nil || strings.TrimSpace(u.Email) == "" {
		return nil, errors.New("user email is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.Now()

	stored, err := s.find(func(x *rbac.UserWithRole) bool { return u.Subject != "" && x.Subject == u.Subject })
	if err != nil {
		stored, err = s.find(func(x *rbac.UserWithRole) bool { return sameEmail(x.Email, u.Email) })
	}
	if err != nil {
		created := *u
		if created.ID == "" {
			created.ID = uuid.NewString()
		}
		if created.Role == "" {
			created.Role = rbac.RoleViewer
		}
		created.CreatedAt, created.UpdatedAt = now, now
		s.users[created.ID] = &created
		c := created
		return &c, nil
	}

	target := s.users[stored.ID]
	target.Email = u.Email
	if u.Subject != "" {
		target.Subject = u.Subject
	}
	if u.Name != "" {
		target.Name = u.Name
	}
	if u.Role != "" {
		target.Role = u.Role
	}
	if u.OrganizationID != "" {
		target.OrganizationID = u.OrganizationID
	}
	target.UpdatedAt = now
	c := *target
	return &c, nil
}

func (s *MemoryUserStore) find(match func(*rbac.UserWithRole) bool) (*rbac.UserWithRole, error) {
	for _, u := range s.users {
		if match(u) {
			c := *u
			return &c, nil
		}
	}
	return nil, rbac.ErrUserNotFound
}

func sameEmail(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
