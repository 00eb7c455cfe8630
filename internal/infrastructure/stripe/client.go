// Package stripe adapts the Stripe SDK to the billing.Provider interface.
// Everything here is read-only: the admin backend reports on subscription
// state, it never changes it.
package stripe

import (
	"context"
	"time"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/customer"
	"github.com/stripe/stripe-go/v81/subscription"

	"github.com/pendium/hippo-admin/internal/domain/billing"
)

const pageSize = 100

// Client implements billing.Provider using the real Stripe SDK.
type Client struct{}

// NewClient configures the SDK with the given API key.
func NewClient(apiKey string) *Client {
	stripe.Key = apiKey
	return &Client{}
}

// ListCustomers returns customers created inside [start, end).
func (c *Client) ListCustomers(ctx context.Context, start, end time.Time) ([]billing.Customer, error) {
	params := &stripe.CustomerListParams{
		CreatedRange: &stripe.RangeQueryParams{
			GreaterThanOrEqual: start.Unix(),
			LesserThan:         end.Unix(),
		},
	}
	params.Context = ctx
	params.Limit = stripe.Int64(pageSize)

	var customers []billing.Customer
	iter := customer.List(params)
	for iter.Next() {
		cu := iter.Customer()
		customers = append(customers, billing.Customer{
			ID:      cu.ID,
			Email:   cu.Email,
			Created: time.Unix(cu.Created, 0),
		})
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return customers, nil
}

// ListSubscriptions returns subscriptions created inside [start, end),
// including canceled ones: the revenue snapshot counts those separately
// rather than ignoring them.
func (c *Client) ListSubscriptions(ctx context.Context, start, end time.Time) ([]billing.Subscription, error) {
	params := &stripe.SubscriptionListParams{
		CreatedRange: &stripe.RangeQueryParams{
			GreaterThanOrEqual: start.Unix(),
			LesserThan:         end.Unix(),
		},
		Status: stripe.String("all"),
	}
	params.Context = ctx
	params.Limit = stripe.Int64(pageSize)
	params.AddExpand("data.items.data.price.product")

	var subs []billing.Subscription
	iter := subscription.List(params)
	for iter.Next() {
		subs = append(subs, fromStripeSubscription(iter.Subscription()))
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return subs, nil
}

func fromStripeSubscription(s *stripe.Subscription) billing.Subscription {
	sub := billing.Subscription{
		ID:      s.ID,
		Status:  billing.SubscriptionStatus(s.Status),
		Created: time.Unix(s.Created, 0),
	}
	if s.Customer != nil {
		sub.CustomerID = s.Customer.ID
	}
	if s.Items == nil {
		return sub
	}
	for _, item := range s.Items.Data {
		if item.Price == nil {
			continue
		}
		out := billing.SubscriptionItem{
			UnitAmount: item.Price.UnitAmount,
			Currency:   string(item.Price.Currency),
		}
		if item.Price.Product != nil {
			out.ProductID = item.Price.Product.ID
			out.ProductName = item.Price.Product.Name
		}
		sub.Items = append(sub.Items, out)
	}
	return sub
}
