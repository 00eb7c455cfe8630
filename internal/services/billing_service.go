package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/pendium/hippo-admin/internal/domain/billing"
	"github.com/pendium/hippo-admin/internal/domain/kpi"
)

// BillingService computes the revenue snapshot from the payment
// processor's read-only listing API. Provider failures are surfaced as
// billing.ErrProviderUnavailable so they stay distinguishable from store
// failures: a Stripe outage must not take store-backed KPIs with it.
type BillingService struct {
	provider billing.Provider
	logger   *zap.Logger
}

// NewBillingService creates a billing snapshot service.
func NewBillingService(provider billing.Provider, logger *zap.Logger) *BillingService {
	return &BillingService{provider: provider, logger: logger}
}

// Snapshot enumerates customers and subscriptions created inside the
// window and classifies each subscription as pro/basic by product
// substring match.
func (s *BillingService) Snapshot(ctx context.Context, w kpi.Window) (*billing.RevenueSnapshot, error) {
	customers, err := s.provider.ListCustomers(ctx, w.Start, w.End)
	if err != nil {
		return nil, fmt.Errorf("%w: listing customers: %v", billing.ErrProviderUnavailable, err)
	}
	subs, err := s.provider.ListSubscriptions(ctx, w.Start, w.End)
	if err != nil {
		return nil, fmt.Errorf("%w: listing subscriptions: %v", billing.ErrProviderUnavailable, err)
	}

	snapshot := &billing.RevenueSnapshot{
		TotalCustomers: len(customers),
		MonthlyRevenue: decimal.Zero,
	}

	for _, sub := range subs {
		counts := &snapshot.Basic
		if isProSubscription(sub) {
			counts = &snapshot.Pro
		}
		switch sub.Status {
		case billing.StatusActive:
			counts.Active++
			for _, item := range sub.Items {
				snapshot.MonthlyRevenue = snapshot.MonthlyRevenue.Add(
					decimal.NewFromInt(item.UnitAmount).Div(decimal.NewFromInt(100)))
				if snapshot.Currency == "" {
					snapshot.Currency = item.Currency
				}
			}
		case billing.StatusTrialing:
			counts.Trialing++
		default:
			counts.Cancelled++
		}
	}

	subscribed := snapshot.Pro.Active + snapshot.Pro.Trialing +
		snapshot.Basic.Active + snapshot.Basic.Trialing
	snapshot.NoSubscription = snapshot.TotalCustomers - subscribed

	paidActive := snapshot.Pro.Active + snapshot.Basic.Active
	snapshot.ConversionRate = safeDiv(float64(paidActive), float64(snapshot.TotalCustomers)) * 100

	return snapshot, nil
}

// isProSubscription reports whether any line item looks like the pro
// plan. The processor's product ids and names are matched on the "pro"
// substring, same as the dashboard always has.
func isProSubscription(sub billing.Subscription) bool {
	for _, item := range sub.Items {
		if strings.Contains(strings.ToLower(item.ProductID), "pro") ||
			strings.Contains(strings.ToLower(item.ProductName), "pro") {
			return true
		}
	}
	return false
}
