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

	"github.com/pendium/hippo-admin/internal/domain/user"
)

func newBetaListService(repo user.BetaRepository, now time.Time) *BetaListService {
	svc := NewBetaListService(repo, zap.NewNop())
	svc.now = func() time.Time { return now }
	return svc
}

func TestBetaListService_ListZeroFillsStatusCounts(t *testing.T) {
	repo := new(MockBetaRepository)
	svc := newBetaListService(repo, day(2025, 6, 15))

	wantFilter := user.BetaListFilter{Search: "x.com", Limit: 10}
	repo.On("List", mock.Anything, wantFilter).
		Return([]*user.BetaUser{{Email: "a@x.com"}}, int64(1), nil)
	repo.On("CountByStatus", mock.Anything, wantFilter).
		Return(map[string]int64{"signed_up": 1}, nil)

	overview, err := svc.List(context.Background(), user.BetaListFilter{Search: "x.com"})
	require.NoError(t, err)

	assert.Equal(t, int64(1), overview.Total)
	require.Len(t, overview.Users, 1)

	// Every known status shows up, even when no roster entry has it.
	assert.Equal(t, map[string]int64{
		"signed_up":        1,
		"logged_in":        0,
		"used_hippo":       0,
		"never_used_hippo": 0,
		"never_signed_up":  0,
	}, overview.StatusCounts)
}

func TestBetaListService_ListWithEmptyRoster(t *testing.T) {
	repo := new(MockBetaRepository)
	svc := newBetaListService(repo, day(2025, 6, 15))

	repo.On("List", mock.Anything, mock.Anything).Return(nil, int64(0), nil)
	repo.On("CountByStatus", mock.Anything, mock.Anything).Return(map[string]int64{}, nil)

	overview, err := svc.List(context.Background(), user.BetaListFilter{})
	require.NoError(t, err)

	assert.NotNil(t, overview.Users)
	assert.Empty(t, overview.Users)
}

func TestBetaListService_CreateStampsDefaults(t *testing.T) {
	repo := new(MockBetaRepository)
	now := day(2025, 6, 15)
	svc := newBetaListService(repo, now)

	repo.On("Create", mock.Anything, mock.MatchedBy(func(bu *user.BetaUser) bool {
		return bu.ID != uuid.Nil && bu.DateAdded.Equal(now)
	})).Return(nil)

	err := svc.Create(context.Background(), &user.BetaUser{Email: "a@x.com", Cohort: "A"})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestBetaListService_CreateValidation(t *testing.T) {
	repo := new(MockBetaRepository)
	svc := newBetaListService(repo, day(2025, 6, 15))

	assert.ErrorIs(t, svc.Create(context.Background(), nil), user.ErrUserNil)
	assert.ErrorIs(t, svc.Create(context.Background(), &user.BetaUser{}), user.ErrEmailRequired)
	repo.AssertNotCalled(t, "Create")
}

func TestBetaListService_UpdateStampsModifiedTime(t *testing.T) {
	repo := new(MockBetaRepository)
	now := day(2025, 6, 15)
	svc := newBetaListService(repo, now)

	repo.On("Update", mock.Anything, mock.MatchedBy(func(bu *user.BetaUser) bool {
		return bu.DateModified != nil && bu.DateModified.Equal(now)
	})).Return(nil)

	err := svc.Update(context.Background(), &user.BetaUser{ID: uuid.New(), Email: "a@x.com"})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestBetaListService_RemoveWithNoIDs(t *testing.T) {
	repo := new(MockBetaRepository)
	svc := newBetaListService(repo, day(2025, 6, 15))

	n, err := svc.Remove(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	repo.AssertNotCalled(t, "SoftDelete")
}
