package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pendium/hippo-admin/internal/domain/user"
)

// BetaUserRepository implements user.BetaRepository with PostgreSQL.
// Roster entries are only ever soft-deleted so historical cohorts keep
// resolving.
type BetaUserRepository struct {
	db *pgxpool.Pool
}

// NewBetaUserRepository creates a new PostgreSQL beta roster repository.
func NewBetaUserRepository(db *pgxpool.Pool) *BetaUserRepository {
	return &BetaUserRepository{db: db}
}

const betaColumns = `
	id, name, email, cohort, status, profession, invite_sent,
	usage, source, is_deleted, date_added, date_modified`

// Create adds a roster entry.
func (r *BetaUserRepository) Create(ctx context.Context, bu *user.BetaUser) error {
	query := `
		INSERT INTO beta_users (` + betaColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, false, $10, $11)`

	_, err := r.db.Exec(ctx, query,
		bu.ID, bu.Name, bu.Email, bu.Cohort, bu.Status, bu.Profession,
		bu.InviteSent, bu.Usage, bu.Source, bu.DateAdded, bu.DateModified,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return user.ErrEmailAlreadyExists
		}
		return fmt.Errorf("failed to create beta user: %w", err)
	}
	return nil
}

// GetByID retrieves a roster entry by ID.
func (r *BetaUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*user.BetaUser, error) {
	query := `SELECT ` + betaColumns + ` FROM beta_users WHERE id = $1 AND is_deleted = false`
	return r.scanBetaUser(r.db.QueryRow(ctx, query, id))
}

// Update updates a roster entry.
func (r *BetaUserRepository) Update(ctx context.Context, bu *user.BetaUser) error {
	query := `
		UPDATE beta_users
		SET name = $2, email = $3, cohort = $4, status = $5, profession = $6,
		    invite_sent = $7, usage = $8, source = $9, date_modified = $10
		WHERE id = $1 AND is_deleted = false`

	tag, err := r.db.Exec(ctx, query,
		bu.ID, bu.Name, bu.Email, bu.Cohort, bu.Status, bu.Profession,
		bu.InviteSent, bu.Usage, bu.Source, bu.DateModified,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return user.ErrEmailAlreadyExists
		}
		return fmt.Errorf("failed to update beta user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrBetaUserNotFound
	}
	return nil
}

// SoftDelete marks roster entries deleted, returning how many matched.
func (r *BetaUserRepository) SoftDelete(ctx context.Context, ids []uuid.UUID) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE beta_users
		SET is_deleted = true, date_modified = now()
		WHERE id = ANY($1) AND is_deleted = false`, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to soft delete beta users: %w", err)
	}
	return tag.RowsAffected(), nil
}

// List returns one roster page, most recently modified first, plus the
// total match count.
func (r *BetaUserRepository) List(ctx context.Context, filter user.BetaListFilter) ([]*user.BetaUser, int64, error) {
	where, args := betaFilter(filter, true)

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM beta_users `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count beta users: %w", err)
	}

	query := `
		SELECT ` + betaColumns + `
		FROM beta_users ` + where + `
		ORDER BY date_modified DESC NULLS LAST, date_added DESC
		LIMIT ` + placeholder(len(args)+1) + ` OFFSET ` + placeholder(len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list beta users: %w", err)
	}
	defer rows.Close()

	users := make([]*user.BetaUser, 0)
	for rows.Next() {
		bu, err := r.scanBetaUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, bu)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read beta users: %w", err)
	}
	return users, total, nil
}

// CountByStatus tallies roster entries per status. The search filter
// applies; the status filter does not, so the dashboard counters always
// describe the whole searched set.
func (r *BetaUserRepository) CountByStatus(ctx context.Context, filter user.BetaListFilter) (map[string]int64, error) {
	where, args := betaFilter(filter, false)

	rows, err := r.db.Query(ctx,
		`SELECT status, COUNT(*) FROM beta_users `+where+` GROUP BY status`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count roster statuses: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read status counts: %w", err)
	}
	return counts, nil
}

// EmailsByCohort returns the distinct emails tagged with the cohort
// label; an empty label returns the whole roster.
func (r *BetaUserRepository) EmailsByCohort(ctx context.Context, cohort string) ([]string, error) {
	query := `SELECT DISTINCT email FROM beta_users WHERE is_deleted = false`
	args := []interface{}{}
	if cohort != "" {
		args = append(args, cohort)
		query += ` AND cohort = $1`
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list cohort emails: %w", err)
	}
	defer rows.Close()

	emails := make([]string, 0)
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("failed to scan cohort email: %w", err)
		}
		emails = append(emails, email)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read cohort emails: %w", err)
	}
	return emails, nil
}

func (r *BetaUserRepository) scanBetaUser(row pgx.Row) (*user.BetaUser, error) {
	var bu user.BetaUser
	err := row.Scan(
		&bu.ID, &bu.Name, &bu.Email, &bu.Cohort, &bu.Status, &bu.Profession,
		&bu.InviteSent, &bu.Usage, &bu.Source, &bu.IsDeleted,
		&bu.DateAdded, &bu.DateModified,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrBetaUserNotFound
		}
		return nil, fmt.Errorf("failed to scan beta user: %w", err)
	}
	return &bu, nil
}

func betaFilter(filter user.BetaListFilter, withStatus bool) (string, []interface{}) {
	clauses := []string{"is_deleted = false"}
	args := []interface{}{}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		p := placeholder(len(args))
		clauses = append(clauses, fmt.Sprintf("(email ILIKE %s OR name ILIKE %s)", p, p))
	}
	if withStatus && filter.Status != "" {
		args = append(args, filter.Status)
		clauses = append(clauses, "status = "+placeholder(len(args)))
	}

	return "WHERE " + strings.Join(clauses, " AND "), args
}
