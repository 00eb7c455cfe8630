package services

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pendium/hippo-admin/internal/domain/billing"
	"github.com/pendium/hippo-admin/internal/domain/kpi"
)

func TestBillingService_Snapshot(t *testing.T) {
	provider := new(MockBillingProvider)
	svc := NewBillingService(provider, zap.NewNop())
	w := marchWindow()

	provider.On("ListCustomers", mock.Anything, w.Start, w.End).
		Return([]billing.Customer{
			{ID: "cus_1"}, {ID: "cus_2"}, {ID: "cus_3"}, {ID: "cus_4"},
		}, nil)
	provider.On("ListSubscriptions", mock.Anything, w.Start, w.End).
		Return([]billing.Subscription{
			{
				ID: "sub_1", Status: billing.StatusActive,
				Items: []billing.SubscriptionItem{
					{ProductName: "HippoAI Pro", UnitAmount: 4999, Currency: "usd"},
				},
			},
			{
				ID: "sub_2", Status: billing.StatusActive,
				Items: []billing.SubscriptionItem{
					{ProductName: "HippoAI Basic", UnitAmount: 999, Currency: "usd"},
				},
			},
			{
				ID: "sub_3", Status: billing.StatusTrialing,
				Items: []billing.SubscriptionItem{
					{ProductID: "prod_pro_monthly"},
				},
			},
			{
				ID: "sub_4", Status: billing.StatusCanceled,
				Items: []billing.SubscriptionItem{
					{ProductName: "HippoAI Basic"},
				},
			},
		}, nil)

	snapshot, err := svc.Snapshot(context.Background(), w)
	require.NoError(t, err)

	assert.Equal(t, 4, snapshot.TotalCustomers)
	assert.Equal(t, billing.PlanCounts{Active: 1, Trialing: 1}, snapshot.Pro)
	assert.Equal(t, billing.PlanCounts{Active: 1, Cancelled: 1}, snapshot.Basic)
	assert.Equal(t, 1, snapshot.NoSubscription)
	assert.Equal(t, 50.0, snapshot.ConversionRate)
	assert.True(t, snapshot.MonthlyRevenue.Equal(decimal.NewFromFloat(59.98)),
		"got %s", snapshot.MonthlyRevenue)
	assert.Equal(t, "usd", snapshot.Currency)
}

func TestBillingService_SnapshotWithNoCustomers(t *testing.T) {
	provider := new(MockBillingProvider)
	svc := NewBillingService(provider, zap.NewNop())
	w := marchWindow()

	provider.On("ListCustomers", mock.Anything, w.Start, w.End).
		Return([]billing.Customer{}, nil)
	provider.On("ListSubscriptions", mock.Anything, w.Start, w.End).
		Return([]billing.Subscription{}, nil)

	snapshot, err := svc.Snapshot(context.Background(), w)
	require.NoError(t, err)

	assert.Zero(t, snapshot.TotalCustomers)
	assert.Zero(t, snapshot.ConversionRate)
	assert.True(t, snapshot.MonthlyRevenue.IsZero())
}

func TestBillingService_ProviderFailureIsDistinguishable(t *testing.T) {
	provider := new(MockBillingProvider)
	svc := NewBillingService(provider, zap.NewNop())
	w := marchWindow()

	provider.On("ListCustomers", mock.Anything, w.Start, w.End).
		Return(nil, errors.New("stripe: rate limited"))

	_, err := svc.Snapshot(context.Background(), w)
	assert.ErrorIs(t, err, billing.ErrProviderUnavailable)
}

func TestBillingService_SubscriptionListingFailure(t *testing.T) {
	provider := new(MockBillingProvider)
	svc := NewBillingService(provider, zap.NewNop())
	w := kpi.Window{Start: day(2025, 5, 1), End: day(2025, 6, 1)}

	provider.On("ListCustomers", mock.Anything, w.Start, w.End).
		Return([]billing.Customer{{ID: "cus_1"}}, nil)
	provider.On("ListSubscriptions", mock.Anything, w.Start, w.End).
		Return(nil, errors.New("stripe: connection reset"))

	_, err := svc.Snapshot(context.Background(), w)
	assert.ErrorIs(t, err, billing.ErrProviderUnavailable)
}
