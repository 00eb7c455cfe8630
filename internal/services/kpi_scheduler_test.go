package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pendium/hippo-admin/internal/domain/event"
	"github.com/pendium/hippo-admin/internal/domain/kpi"
)

type memorySnapshotCache struct {
	entries map[kpi.Kind][]byte
}

func newMemorySnapshotCache() *memorySnapshotCache {
	return &memorySnapshotCache{entries: make(map[kpi.Kind][]byte)}
}

func (c *memorySnapshotCache) Set(_ context.Context, kind kpi.Kind, payload []byte, _ time.Duration) error {
	c.entries[kind] = payload
	return nil
}

func (c *memorySnapshotCache) Get(_ context.Context, kind kpi.Kind) ([]byte, error) {
	return c.entries[kind], nil
}

func TestKPIScheduler_WarmSnapshots(t *testing.T) {
	now := day(2025, 6, 15)
	f := newKPIFixture(t, now)
	cache := newMemorySnapshotCache()

	f.chats.On("ListQueryEvents", mock.Anything, day(2025, 5, 15), now, []string(nil)).
		Return([]event.QueryEvent{
			{Email: "a@x.com", CreatedAt: day(2025, 6, 1), Turns: 2},
		}, nil)

	resolver := f.svc.resolver
	sched := NewKPIScheduler(f.svc, cache, resolver, "0 3 * * *", time.Hour, zap.NewNop())

	sched.WarmSnapshots(context.Background())

	assert.Len(t, cache.entries, len(snapshotKinds))

	payload, err := sched.CachedResult(context.Background(), kpi.KindDailyActiveUsers)
	require.NoError(t, err)
	require.NotNil(t, payload)

	var result kpi.Result
	require.NoError(t, json.Unmarshal(payload, &result))
	assert.Equal(t, "Daily Active Users", result.KPI)
}

func TestKPIScheduler_WarmSnapshotsContinuesPastFailures(t *testing.T) {
	now := day(2025, 6, 15)
	f := newKPIFixture(t, now)
	cache := newMemorySnapshotCache()

	f.chats.On("ListQueryEvents", mock.Anything, day(2025, 5, 15), now, []string(nil)).
		Return(nil, errors.New("store down")).Once()
	f.chats.On("ListQueryEvents", mock.Anything, day(2025, 5, 15), now, []string(nil)).
		Return([]event.QueryEvent{
			{Email: "a@x.com", CreatedAt: day(2025, 6, 1), Turns: 2},
		}, nil)

	sched := NewKPIScheduler(f.svc, cache, f.svc.resolver, "0 3 * * *", time.Hour, zap.NewNop())
	sched.WarmSnapshots(context.Background())

	// The first KPI failed; the remaining three were still warmed.
	assert.Len(t, cache.entries, len(snapshotKinds)-1)
	assert.NotContains(t, cache.entries, kpi.KindDailyActiveUsers)
	assert.Contains(t, cache.entries, kpi.KindMonthlyChurnRate)
}

func TestKPIScheduler_StartRejectsBadSpec(t *testing.T) {
	f := newKPIFixture(t, day(2025, 6, 15))
	sched := NewKPIScheduler(f.svc, newMemorySnapshotCache(), f.svc.resolver, "not a cron spec", time.Hour, zap.NewNop())

	assert.Error(t, sched.Start())
}

func TestKPIScheduler_CachedResultMissIsNil(t *testing.T) {
	f := newKPIFixture(t, day(2025, 6, 15))
	sched := NewKPIScheduler(f.svc, newMemorySnapshotCache(), f.svc.resolver, "0 3 * * *", time.Hour, zap.NewNop())

	payload, err := sched.CachedResult(context.Background(), kpi.KindTotalQueries)
	require.NoError(t, err)
	assert.Nil(t, payload)
}
