package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pendium/hippo-admin/internal/domain/user"
)

// UserRepository implements user.Repository with PostgreSQL. Deletion is
// a soft delete; every read excludes rows with a deleted_at stamp.
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL user repository.
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `
	id, email, name, profession, role, status, signup_date,
	num_logins, usage, follow_up_usage, feedback_count, source_click_count,
	saved_sources, clicked_sources, stripe_customer_id, created_at, updated_at`

// Create creates a new user record.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	saved, err := json.Marshal(u.SavedSources)
	if err != nil {
		return fmt.Errorf("failed to encode saved sources: %w", err)
	}
	clicked, err := json.Marshal(u.ClickedSources)
	if err != nil {
		return fmt.Errorf("failed to encode clicked sources: %w", err)
	}

	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, now(), now())`

	_, err = r.db.Exec(ctx, query,
		u.ID, u.Email, u.Name, u.Profession, u.Role, u.Status, u.SignupDate,
		u.NumLogins, u.Usage, u.FollowUpUsage, u.FeedbackCount, u.SourceClickCount,
		saved, clicked, nullString(u.StripeCustomerID),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return user.ErrEmailAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND deleted_at IS NULL`
	return r.scanUser(r.db.QueryRow(ctx, query, id))
}

// GetByEmail retrieves a user by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 AND deleted_at IS NULL`
	return r.scanUser(r.db.QueryRow(ctx, query, email))
}

// Update applies profile changes. The usage counters are owned by the
// product pipeline and deliberately left out of the SET list.
func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	query := `
		UPDATE users
		SET email = $2, name = $3, profession = $4, role = $5, status = $6,
		    stripe_customer_id = $7, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL`

	tag, err := r.db.Exec(ctx, query,
		u.ID, u.Email, u.Name, u.Profession, u.Role, u.Status,
		nullString(u.StripeCustomerID),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return user.ErrEmailAlreadyExists
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

// Delete soft-deletes one user record.
func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

// DeleteMany soft-deletes several user records at once.
func (r *UserRepository) DeleteMany(ctx context.Context, ids []uuid.UUID) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET deleted_at = now() WHERE id = ANY($1) AND deleted_at IS NULL`, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to delete users: %w", err)
	}
	return tag.RowsAffected(), nil
}

// List returns one page of users, newest signup first, with aggregate
// counters computed over the whole match set.
func (r *UserRepository) List(ctx context.Context, filter user.ListFilter) (*user.ListResult, error) {
	where, args := listFilter(filter)

	result := &user.ListResult{Users: []*user.User{}}
	aggregate := `
		SELECT COUNT(*), COALESCE(SUM(usage), 0), COALESCE(SUM(feedback_count), 0)
		FROM users ` + where
	if err := r.db.QueryRow(ctx, aggregate, args...).Scan(
		&result.Total, &result.TotalUsage, &result.TotalFeedback); err != nil {
		return nil, fmt.Errorf("failed to aggregate users: %w", err)
	}

	query := `
		SELECT ` + userColumns + `
		FROM users ` + where + `
		ORDER BY signup_date DESC NULLS LAST, created_at DESC
		LIMIT ` + placeholder(len(args)+1) + ` OFFSET ` + placeholder(len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		u, err := r.scanUser(rows)
		if err != nil {
			return nil, err
		}
		result.Users = append(result.Users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read users: %w", err)
	}
	return result, nil
}

// ActiveEmails returns the emails of active-status users, restricted to
// the given emails when non-nil.
func (r *UserRepository) ActiveEmails(ctx context.Context, emails []string) ([]string, error) {
	query := `SELECT email FROM users WHERE status = $1 AND deleted_at IS NULL`
	args := []interface{}{user.StatusActive}
	if emails != nil {
		query += ` AND email = ANY($2)`
		args = append(args, emails)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list active emails: %w", err)
	}
	defer rows.Close()

	active := make([]string, 0)
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("failed to scan active email: %w", err)
		}
		active = append(active, email)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read active emails: %w", err)
	}
	return active, nil
}

// ListSignups returns (email, signup date) for every user with a known
// signup date.
func (r *UserRepository) ListSignups(ctx context.Context) (map[string]time.Time, error) {
	rows, err := r.db.Query(ctx,
		`SELECT email, signup_date FROM users WHERE signup_date IS NOT NULL AND deleted_at IS NULL`)
	if err != nil {
		return nil, fmt.Errorf("failed to list signups: %w", err)
	}
	defer rows.Close()

	signups := make(map[string]time.Time)
	for rows.Next() {
		var email string
		var signup time.Time
		if err := rows.Scan(&email, &signup); err != nil {
			return nil, fmt.Errorf("failed to scan signup: %w", err)
		}
		signups[email] = signup
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read signups: %w", err)
	}
	return signups, nil
}

// ListSourceSaves unnests the saved-sources JSONB arrays into per-entry
// rows created inside [start, end).
func (r *UserRepository) ListSourceSaves(ctx context.Context, start, end time.Time) ([]user.SourceSave, error) {
	query := `
		SELECT u.email, (src->>'createdAt')::timestamptz AS saved_at
		FROM users u, jsonb_array_elements(u.saved_sources) AS src
		WHERE u.deleted_at IS NULL
		  AND src->>'createdAt' IS NOT NULL
		  AND (src->>'createdAt')::timestamptz >= $1
		  AND (src->>'createdAt')::timestamptz < $2`

	rows, err := r.db.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list source saves: %w", err)
	}
	defer rows.Close()

	saves := make([]user.SourceSave, 0)
	for rows.Next() {
		var save user.SourceSave
		if err := rows.Scan(&save.Email, &save.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan source save: %w", err)
		}
		saves = append(saves, save)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read source saves: %w", err)
	}
	return saves, nil
}

func (r *UserRepository) scanUser(row pgx.Row) (*user.User, error) {
	var u user.User
	var saved, clicked []byte
	var stripeID *string

	err := row.Scan(
		&u.ID, &u.Email, &u.Name, &u.Profession, &u.Role, &u.Status, &u.SignupDate,
		&u.NumLogins, &u.Usage, &u.FollowUpUsage, &u.FeedbackCount, &u.SourceClickCount,
		&saved, &clicked, &stripeID, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	if len(saved) > 0 {
		if err := json.Unmarshal(saved, &u.SavedSources); err != nil {
			return nil, fmt.Errorf("failed to decode saved sources: %w", err)
		}
	}
	if len(clicked) > 0 {
		if err := json.Unmarshal(clicked, &u.ClickedSources); err != nil {
			return nil, fmt.Errorf("failed to decode clicked sources: %w", err)
		}
	}
	if stripeID != nil {
		u.StripeCustomerID = *stripeID
	}
	return &u, nil
}

func listFilter(filter user.ListFilter) (string, []interface{}) {
	clauses := []string{"deleted_at IS NULL"}
	args := []interface{}{}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		p := placeholder(len(args))
		clauses = append(clauses, fmt.Sprintf(
			"(email ILIKE %s OR name ILIKE %s OR status ILIKE %s)", p, p, p))
	}
	if filter.Emails != nil {
		args = append(args, filter.Emails)
		clauses = append(clauses, "email = ANY("+placeholder(len(args))+")")
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		clauses = append(clauses, "status = "+placeholder(len(args)))
	}

	return "WHERE " + strings.Join(clauses, " AND "), args
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
