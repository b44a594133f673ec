package userstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/reglet-dev/skillguard/domain/ports"
	"github.com/reglet-dev/skillguard/domain/rbac"
	"github.com/uptrace/bun"
)

// Ensure BunStore implements ports.UserStore.
var _ ports.UserStore = (*BunStore)(nil)

// userRow is the users table. EmailKey is the normalized email used for
// lookups; Subject is NULL until the user logs in through a provider.
type userRow struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID             string    `bun:"id,pk"`
	Subject        *string   `bun:"subject,unique"`
	Email          string    `bun:"email,notnull"`
	EmailKey       string    `bun:"email_key,notnull,unique"`
	Name           string    `bun:"name"`
	Role           rbac.Role `bun:"role,notnull"`
	OrganizationID string    `bun:"organization_id"`
	CreatedAt      time.Time `bun:"created_at,notnull"`
	UpdatedAt      time.Time `bun:"updated_at,notnull"`
}

func (r *userRow) toUser() *rbac.UserWithRole {
	u := &rbac.UserWithRole{
		ID:             r.ID,
		Email:          r.Email,
		Name:           r.Name,
		Role:           r.Role,
		OrganizationID: r.OrganizationID,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
	if r.Subject != nil {
		u.Subject = *r.Subject
	}
	return u
}

type storeConfig struct {
	now   func() time.Time
	newID func() string
}

func defaultStoreConfig() storeConfig {
	return storeConfig{
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

// Option configures a BunStore.
type Option func(*storeConfig)

// WithClock sets the time source used for CreatedAt and UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(c *storeConfig) {
		c.now = now
	}
}

// WithIDGenerator sets the generator of new user ids. Default is uuid.NewString.
func WithIDGenerator(newID func() string) Option {
	return func(c *storeConfig) {
		c.newID = newID
	}
}

// BunStore implements ports.UserStore on a Bun database.
type BunStore struct {
	db     *bun.DB
	config storeConfig
}

// NewBunStore creates a store over db. Call Migrate before first use.
func NewBunStore(db *bun.DB, opts ...Option) *BunStore {
	cfg := defaultStoreConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &BunStore{db: db, config: cfg}
}

// Migrate creates the users table if it does not exist.
func (s *BunStore) Migrate(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*userRow)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}

// Get returns the user with id.
func (s *BunStore) Get(ctx context.Context, id string) (*rbac.UserWithRole, error) {
	row, err := selectUser(ctx, s.db, "id = ?", id)
	if err != nil {
		return nil, err
	}
	return row.toUser(), nil
}

// GetByEmail returns the user with email, compared case-insensitively.
func (s *BunStore) GetByEmail(ctx context.Context, email string) (*rbac.UserWithRole, error) {
	row, err := selectUser(ctx, s.db, "email_key = ?", emailKey(email))
	if err != nil {
		return nil, err
	}
	return row.toUser(), nil
}

// GetBySubject returns the user last seen with subject.
func (s *BunStore) GetBySubject(ctx context.Context, subject string) (*rbac.UserWithRole, error) {
	if subject == "" {
		return nil, rbac.ErrUserNotFound
	}
	row, err := selectUser(ctx, s.db, "subject = ?", subject)
	if err != nil {
		return nil, err
	}
	return row.toUser(), nil
}

// Upsert creates u or updates the matching user inside one transaction.
func (s *BunStore) Upsert(ctx context.Context, u *rbac.UserWithRole) (*rbac.UserWithRole, error) {
	if u == nil || strings.TrimSpace(u.Email) == "" {
		return nil, errEmailRequired
	}
	now := s.config.now()

	var out *rbac.UserWithRole
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		row, err := matchUser(ctx, tx, u)
		switch {
		case errors.Is(err, rbac.ErrUserNotFound):
			row = s.newRow(u, now)
			if _, err := tx.NewInsert().Model(row).Exec(ctx); err != nil {
				return fmt.Errorf("create user: %w", err)
			}
		case err != nil:
			return err
		default:
			applyUpdate(row, u, now)
			if _, err := tx.NewUpdate().Model(row).WherePK().Exec(ctx); err != nil {
				return fmt.Errorf("update user: %w", err)
			}
		}
		out = row.toUser()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *BunStore) newRow(u *rbac.UserWithRole, now time.Time) *userRow {
	row := &userRow{
		ID:             u.ID,
		Subject:        subjectOf(u),
		Email:          strings.TrimSpace(u.Email),
		EmailKey:       emailKey(u.Email),
		Name:           u.Name,
		Role:           u.Role,
		OrganizationID: u.OrganizationID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if row.ID == "" {
		row.ID = s.config.newID()
	}
	if row.Role == "" {
		row.Role = rbac.RoleViewer
	}
	return row
}

func applyUpdate(row *userRow, u *rbac.UserWithRole, now time.Time) {
	row.Email = strings.TrimSpace(u.Email)
	row.EmailKey = emailKey(u.Email)
	if s := subjectOf(u); s != nil {
		row.Subject = s
	}
	if u.Name != "" {
		row.Name = u.Name
	}
	if u.Role != "" {
		row.Role = u.Role
	}
	if u.OrganizationID != "" {
		row.OrganizationID = u.OrganizationID
	}
	row.UpdatedAt = now
}

func matchUser(ctx context.Context, db bun.IDB, u *rbac.UserWithRole) (*userRow, error) {
	if u.Subject != "" {
		row, err := selectUser(ctx, db, "subject = ?", u.Subject)
		if !errors.Is(err, rbac.ErrUserNotFound) {
			return row, err
		}
	}
	return selectUser(ctx, db, "email_key = ?", emailKey(u.Email))
}

func selectUser(ctx context.Context, db bun.IDB, where string, arg any) (*userRow, error) {
	row := new(userRow)
	err := db.NewSelect().
		Model(row).
		Where(where, arg).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, rbac.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return row, nil
}

func subjectOf(u *rbac.UserWithRole) *string {
	if u.Subject == "" {
		return nil
	}
	s := u.Subject
	return &s
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
