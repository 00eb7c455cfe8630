// Package usage holds the API-metering records exposed by the admin
// usage endpoint.
package usage

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Entry is one metered API call, keyed by API key.
type Entry struct {
	ID          uuid.UUID `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	APIKey      string    `json:"api_key"`
	InputCount  int64     `json:"input_count"`
	OutputCount int64     `json:"output_count"`
}

// APICustomer is one external API consumer.
type APICustomer struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"customer_email"`
	Name        string     `json:"customer_name"`
	APIKey      string     `json:"api_key"`
	CustomerID  string     `json:"customer_id"`
	Status      string     `json:"status"`
	Permissions string     `json:"permissions,omitempty"`
	RateLimit   string     `json:"rate_limit,omitempty"`
	DateCreated time.Time  `json:"date_created"`
	DateExpires *time.Time `json:"date_expires,omitempty"`
}

// Repository reads metering records.
type Repository interface {
	// ListEntries returns one page of usage entries, newest first.
	ListEntries(ctx context.Context, limit, offset int) ([]Entry, error)

	// ListCustomers returns every API customer.
	ListCustomers(ctx context.Context) ([]APICustomer, error)
}
