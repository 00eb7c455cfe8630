package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pendium/hippo-admin/internal/domain/usage"
)

// UsageRepository implements usage.Repository with PostgreSQL.
type UsageRepository struct {
	db *pgxpool.Pool
}

// NewUsageRepository creates a new PostgreSQL usage repository.
func NewUsageRepository(db *pgxpool.Pool) *UsageRepository {
	return &UsageRepository{db: db}
}

// ListEntries returns one page of usage entries, newest first.
func (r *UsageRepository) ListEntries(ctx context.Context, limit, offset int) ([]usage.Entry, error) {
	query := `
		SELECT id, timestamp, api_key, input_count, output_count
		FROM usage_entries
		ORDER BY timestamp DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list usage entries: %w", err)
	}
	defer rows.Close()

	entries := make([]usage.Entry, 0)
	for rows.Next() {
		var e usage.Entry
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.APIKey, &e.InputCount, &e.OutputCount); err != nil {
			return nil, fmt.Errorf("failed to scan usage entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read usage entries: %w", err)
	}
	return entries, nil
}

// ListCustomers returns every API customer, newest first.
func (r *UsageRepository) ListCustomers(ctx context.Context) ([]usage.APICustomer, error) {
	query := `
		SELECT id, customer_email, customer_name, api_key, customer_id,
		       status, permissions, rate_limit, date_created, date_expires
		FROM api_customers
		ORDER BY date_created DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list API customers: %w", err)
	}
	defer rows.Close()

	customers := make([]usage.APICustomer, 0)
	for rows.Next() {
		var c usage.APICustomer
		if err := rows.Scan(&c.ID, &c.Email, &c.Name, &c.APIKey, &c.CustomerID,
			&c.Status, &c.Permissions, &c.RateLimit, &c.DateCreated, &c.DateExpires); err != nil {
			return nil, fmt.Errorf("failed to scan API customer: %w", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read API customers: %w", err)
	}
	return customers, nil
}
