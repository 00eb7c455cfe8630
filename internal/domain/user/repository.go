package user

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines persistence for product user records.
type Repository interface {
	// Create creates a new user
	Create(ctx context.Context, u *User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)

	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*User, error)

	// Update updates an existing user
	Update(ctx context.Context, u *User) error

	// Delete removes a user record
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteMany removes several user records at once
	DeleteMany(ctx context.Context, ids []uuid.UUID) (int64, error)

	// List retrieves one page of users plus aggregate counters over the
	// whole match set, newest signup first
	List(ctx context.Context, filter ListFilter) (*ListResult, error)

	// ActiveEmails returns the emails of active-status users, optionally
	// restricted to the given emails (all active users when nil)
	ActiveEmails(ctx context.Context, emails []string) ([]string, error)

	// ListSignups returns (email, signup date) pairs for every user with a
	// non-null signup date, for retention cohort grouping
	ListSignups(ctx context.Context) (map[string]time.Time, error)

	// ListSourceSaves returns saved-source entries created inside the
	// half-open window [start, end)
	ListSourceSaves(ctx context.Context, start, end time.Time) ([]SourceSave, error)
}

// BetaRepository defines persistence for the beta-program roster.
type BetaRepository interface {
	// Create adds a roster entry
	Create(ctx context.Context, bu *BetaUser) error

	// GetByID retrieves a roster entry by ID
	GetByID(ctx context.Context, id uuid.UUID) (*BetaUser, error)

	// Update updates a roster entry
	Update(ctx context.Context, bu *BetaUser) error

	// SoftDelete marks roster entries deleted without removing them
	SoftDelete(ctx context.Context, ids []uuid.UUID) (int64, error)

	// List retrieves one page of roster entries, most recently modified
	// first, plus the total match count
	List(ctx context.Context, filter BetaListFilter) ([]*BetaUser, int64, error)

	// CountByStatus returns entry counts per roster status for the filter
	CountByStatus(ctx context.Context, filter BetaListFilter) (map[string]int64, error)

	// EmailsByCohort returns the distinct emails tagged with the cohort
	// label; an empty label returns the whole roster
	EmailsByCohort(ctx context.Context, cohort string) ([]string, error)
}
