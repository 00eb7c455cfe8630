package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pendium/hippo-admin/internal/domain/event"
	"github.com/pendium/hippo-admin/internal/domain/user"
)

type userFixture struct {
	users *MockUserRepository
	beta  *MockBetaRepository
	chats *MockChatLogRepository
	svc   *UserService
}

func newUserFixture(t *testing.T, now time.Time) *userFixture {
	t.Helper()
	resolver, err := NewWindowResolver("UTC", zap.NewNop())
	require.NoError(t, err)
	resolver.now = func() time.Time { return now }

	f := &userFixture{
		users: new(MockUserRepository),
		beta:  new(MockBetaRepository),
		chats: new(MockChatLogRepository),
	}
	f.svc = NewUserService(f.users, f.beta, f.chats, resolver, zap.NewNop())
	return f
}

func TestUserService_ChurnPanel(t *testing.T) {
	now := day(2025, 6, 15)
	f := newUserFixture(t, now)

	roster := []string{"a@x.com", "b@x.com", "c@x.com", "d@x.com", "e@x.com"}
	f.beta.On("EmailsByCohort", mock.Anything, "").Return(roster, nil)
	f.users.On("ActiveEmails", mock.Anything, roster).Return(roster, nil)
	// Only three of the five are active in the last-month window.
	f.chats.On("ListQueryEvents", mock.Anything, day(2025, 5, 15), now, roster).
		Return([]event.QueryEvent{
			{Email: "a@x.com", CreatedAt: day(2025, 6, 1)},
			{Email: "b@x.com", CreatedAt: day(2025, 6, 2)},
			{Email: "c@x.com", CreatedAt: day(2025, 6, 3)},
		}, nil)

	panel, err := f.svc.churnPanel(context.Background(), "", "")
	require.NoError(t, err)

	assert.Equal(t, 5, panel.TotalUsers)
	assert.Equal(t, 2, panel.UsersChurned)
	assert.Equal(t, "40.00%", panel.ChurnRate)
	// The May 15 - Jun 15 window spans 31 days: 40% / (31/7) weeks.
	assert.Equal(t, "9.03%", panel.ChurnPerWeek)
}

func TestUserService_ChurnPanelWithEmptyRoster(t *testing.T) {
	f := newUserFixture(t, day(2025, 6, 15))

	f.beta.On("EmailsByCohort", mock.Anything, "").Return([]string{}, nil)
	f.users.On("ActiveEmails", mock.Anything, []string{}).Return([]string{}, nil)

	panel, err := f.svc.churnPanel(context.Background(), "", "")
	require.NoError(t, err)

	assert.Equal(t, ChurnPanel{ChurnRate: "0.00%", ChurnPerWeek: "0.00%"}, panel)
	f.chats.AssertNotCalled(t, "ListQueryEvents")
}

func TestUserService_WeeklyQueries(t *testing.T) {
	f := newUserFixture(t, day(2025, 6, 15))

	events := []event.QueryEvent{
		// ISO week 23 of 2025 starts Monday June 2.
		{Email: "a@x.com", CreatedAt: day(2025, 6, 2)},
		{Email: "a@x.com", CreatedAt: day(2025, 6, 4)},
		{Email: "b@x.com", CreatedAt: day(2025, 6, 5)},
		// Week 24: only a, once.
		{Email: "a@x.com", CreatedAt: day(2025, 6, 9)},
		// Not on the roster: ignored.
		{Email: "outsider@x.com", CreatedAt: day(2025, 6, 9)},
	}

	byWeek, changes := f.svc.weeklyQueries(events, []string{"a@x.com", "b@x.com"})

	assert.Equal(t, map[string]map[string]int{
		"2025-W23": {"a@x.com": 2, "b@x.com": 1},
		"2025-W24": {"a@x.com": 1},
	}, byWeek)

	// The first week seeds the series; later weeks are deltas, including
	// a negative entry for users who vanished.
	assert.Equal(t, map[string]map[string]int{
		"2025-W23": {"a@x.com": 2, "b@x.com": 1},
		"2025-W24": {"a@x.com": -1, "b@x.com": -1},
	}, changes)
}

func TestUserService_GroupEmails(t *testing.T) {
	f := newUserFixture(t, day(2025, 6, 15))

	f.beta.On("EmailsByCohort", mock.Anything, "").Return([]string{"a@x.com"}, nil)
	f.beta.On("EmailsByCohort", mock.Anything, "B").Return([]string{"b@x.com"}, nil)

	ctx := context.Background()

	emails, err := f.svc.groupEmails(ctx, UserListQuery{Email: "pin@x.com"})
	require.NoError(t, err)
	assert.Equal(t, []string{"pin@x.com"}, emails)

	emails, err = f.svc.groupEmails(ctx, UserListQuery{Group: "all"})
	require.NoError(t, err)
	assert.Nil(t, emails)

	emails, err = f.svc.groupEmails(ctx, UserListQuery{Group: "beta"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a@x.com"}, emails)

	emails, err = f.svc.groupEmails(ctx, UserListQuery{Group: "B"})
	require.NoError(t, err)
	assert.Equal(t, []string{"b@x.com"}, emails)

	// Unknown groups match nobody instead of silently matching everyone.
	emails, err = f.svc.groupEmails(ctx, UserListQuery{Group: "Z"})
	require.NoError(t, err)
	assert.NotNil(t, emails)
	assert.Empty(t, emails)
}

func TestUserService_Overview(t *testing.T) {
	now := day(2025, 6, 15)
	f := newUserFixture(t, now)

	roster := []string{"a@x.com", "b@x.com"}
	f.beta.On("EmailsByCohort", mock.Anything, "").Return(roster, nil)
	f.users.On("List", mock.Anything, user.ListFilter{Limit: 10}).
		Return(&user.ListResult{Users: []*user.User{}, Total: 2}, nil)
	f.users.On("ActiveEmails", mock.Anything, roster).Return(roster, nil)

	// All-time events for the activity panel and weekly buckets.
	f.chats.On("ListQueryEvents", mock.Anything, time.Unix(0, 0), now, []string(nil)).
		Return([]event.QueryEvent{
			{Email: "a@x.com", CreatedAt: day(2025, 6, 2)},
			{Email: "b@x.com", CreatedAt: day(2025, 6, 2)},
		}, nil)
	// Churn window events.
	f.chats.On("ListQueryEvents", mock.Anything, day(2025, 5, 15), now, roster).
		Return([]event.QueryEvent{
			{Email: "a@x.com", CreatedAt: day(2025, 6, 2)},
		}, nil)

	overview, err := f.svc.Overview(context.Background(), UserListQuery{})
	require.NoError(t, err)

	assert.Equal(t, int64(2), overview.Total)
	assert.Equal(t, map[string]DayActivity{
		"2025-06-02": {Count: 2, Users: []string{"a@x.com", "b@x.com"}},
	}, overview.DailyActiveUsers)
	assert.Equal(t, 1, overview.Churn.UsersChurned)
	assert.Equal(t, "50.00%", overview.Churn.ChurnRate)
	assert.Equal(t, map[string]int{"a@x.com": 1, "b@x.com": 1}, overview.QueriesByUserAndWeek["2025-W23"])
}

func TestUserService_CreateDefaults(t *testing.T) {
	f := newUserFixture(t, day(2025, 6, 15))

	f.users.On("Create", mock.Anything, mock.MatchedBy(func(u *user.User) bool {
		return u.ID != uuid.Nil && u.Status == user.StatusActive
	})).Return(nil)

	err := f.svc.Create(context.Background(), &user.User{Email: "new@x.com"})
	require.NoError(t, err)
	f.users.AssertExpectations(t)
}

func TestUserService_CreateValidation(t *testing.T) {
	f := newUserFixture(t, day(2025, 6, 15))

	assert.ErrorIs(t, f.svc.Create(context.Background(), nil), user.ErrUserNil)
	assert.ErrorIs(t, f.svc.Create(context.Background(), &user.User{}), user.ErrEmailRequired)
	f.users.AssertNotCalled(t, "Create")
}

func TestUserService_UpdateRequiresID(t *testing.T) {
	f := newUserFixture(t, day(2025, 6, 15))

	err := f.svc.Update(context.Background(), &user.User{Email: "a@x.com"})
	assert.ErrorIs(t, err, user.ErrInvalidUserID)
	f.users.AssertNotCalled(t, "Update")
}

func TestUserService_DeleteManyWithNoIDs(t *testing.T) {
	f := newUserFixture(t, day(2025, 6, 15))

	n, err := f.svc.DeleteMany(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	f.users.AssertNotCalled(t, "DeleteMany")
}
