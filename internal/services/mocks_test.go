package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/pendium/hippo-admin/internal/domain/billing"
	"github.com/pendium/hippo-admin/internal/domain/event"
	"github.com/pendium/hippo-admin/internal/domain/user"
)

// MockChatLogRepository implements event.ChatLogRepository for testing
type MockChatLogRepository struct {
	mock.Mock
}

func (m *MockChatLogRepository) ListQueryEvents(ctx context.Context, start, end time.Time, emails []string) ([]event.QueryEvent, error) {
	args := m.Called(ctx, start, end, emails)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]event.QueryEvent), args.Error(1)
}

func (m *MockChatLogRepository) DistinctActiveEmails(ctx context.Context, start, end time.Time) ([]string, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockChatLogRepository) LastActivity(ctx context.Context, emails []string) (map[string]time.Time, error) {
	args := m.Called(ctx, emails)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]time.Time), args.Error(1)
}

func (m *MockChatLogRepository) List(ctx context.Context, filter event.ChatLogFilter) ([]*event.ChatLog, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*event.ChatLog), args.Get(1).(int64), args.Error(2)
}

func (m *MockChatLogRepository) CountPerDay(ctx context.Context, filter event.ChatLogFilter) (map[string]int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

func (m *MockChatLogRepository) DistinctEmails(ctx context.Context, filter event.ChatLogFilter) ([]string, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockFeatureInteractionRepository implements
// event.FeatureInteractionRepository for testing
type MockFeatureInteractionRepository struct {
	mock.Mock
}

func (m *MockFeatureInteractionRepository) ListByNames(ctx context.Context, start, end time.Time, names []string) ([]event.FeatureInteraction, error) {
	args := m.Called(ctx, start, end, names)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]event.FeatureInteraction), args.Error(1)
}

// MockFeedbackRepository implements event.FeedbackRepository for testing
type MockFeedbackRepository struct {
	mock.Mock
}

func (m *MockFeedbackRepository) ListInWindow(ctx context.Context, start, end time.Time) ([]event.UserFeedback, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]event.UserFeedback), args.Error(1)
}

// MockUserRepository implements user.Repository for testing
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, u *user.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, u *user.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockUserRepository) DeleteMany(ctx context.Context, ids []uuid.UUID) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, filter user.ListFilter) (*user.ListResult, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.ListResult), args.Error(1)
}

func (m *MockUserRepository) ActiveEmails(ctx context.Context, emails []string) ([]string, error) {
	args := m.Called(ctx, emails)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockUserRepository) ListSignups(ctx context.Context) (map[string]time.Time, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]time.Time), args.Error(1)
}

func (m *MockUserRepository) ListSourceSaves(ctx context.Context, start, end time.Time) ([]user.SourceSave, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]user.SourceSave), args.Error(1)
}

// MockBetaRepository implements user.BetaRepository for testing
type MockBetaRepository struct {
	mock.Mock
}

func (m *MockBetaRepository) Create(ctx context.Context, bu *user.BetaUser) error {
	return m.Called(ctx, bu).Error(0)
}

func (m *MockBetaRepository) GetByID(ctx context.Context, id uuid.UUID) (*user.BetaUser, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.BetaUser), args.Error(1)
}

func (m *MockBetaRepository) Update(ctx context.Context, bu *user.BetaUser) error {
	return m.Called(ctx, bu).Error(0)
}

func (m *MockBetaRepository) SoftDelete(ctx context.Context, ids []uuid.UUID) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBetaRepository) List(ctx context.Context, filter user.BetaListFilter) ([]*user.BetaUser, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*user.BetaUser), args.Get(1).(int64), args.Error(2)
}

func (m *MockBetaRepository) CountByStatus(ctx context.Context, filter user.BetaListFilter) (map[string]int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}

func (m *MockBetaRepository) EmailsByCohort(ctx context.Context, cohort string) ([]string, error) {
	args := m.Called(ctx, cohort)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockBillingProvider implements billing.Provider for testing
type MockBillingProvider struct {
	mock.Mock
}

func (m *MockBillingProvider) ListCustomers(ctx context.Context, start, end time.Time) ([]billing.Customer, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.Customer), args.Error(1)
}

func (m *MockBillingProvider) ListSubscriptions(ctx context.Context, start, end time.Time) ([]billing.Subscription, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.Subscription), args.Error(1)
}
