package billing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// SubscriptionStatus mirrors the payment processor's subscription states
// this backend cares about.
type SubscriptionStatus string

const (
	StatusActive   SubscriptionStatus = "active"
	StatusTrialing SubscriptionStatus = "trialing"
	StatusCanceled SubscriptionStatus = "canceled"
)

// Customer is a read-only projection of a payment-processor customer.
type Customer struct {
	ID      string
	Email   string
	Created time.Time
}

// SubscriptionItem is one line item of a subscription.
type SubscriptionItem struct {
	ProductID   string
	ProductName string
	UnitAmount  int64 // cents
	Currency    string
}

// Subscription is a read-only projection of a processor subscription.
type Subscription struct {
	ID         string
	CustomerID string
	Status     SubscriptionStatus
	Created    time.Time
	Items      []SubscriptionItem
}

// Provider lists customers and subscriptions created inside a half-open
// window [start, end). Implementations are strictly read-only: this
// backend never mutates subscription state.
type Provider interface {
	ListCustomers(ctx context.Context, start, end time.Time) ([]Customer, error)
	ListSubscriptions(ctx context.Context, start, end time.Time) ([]Subscription, error)
}

// PlanCounts breaks one plan tier down by subscription state.
type PlanCounts struct {
	Active    int `json:"active"`
	Trialing  int `json:"trialing"`
	Cancelled int `json:"cancelled"`
}

// RevenueSnapshot is the revenueSnapshot KPI payload.
type RevenueSnapshot struct {
	TotalCustomers int             `json:"totalCustomers"`
	Pro            PlanCounts      `json:"pro"`
	Basic          PlanCounts      `json:"basic"`
	NoSubscription int             `json:"noSubscription"`
	ConversionRate float64         `json:"conversionRate"`
	MonthlyRevenue decimal.Decimal `json:"monthlyRevenue"`
	Currency       string          `json:"currency,omitempty"`
}
