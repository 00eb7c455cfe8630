package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/pendium/hippo-admin/internal/domain/kpi"
)

// SnapshotCache stores serialized KPI results with an expiry, keyed by
// KPI kind. Backed by redis in production.
type SnapshotCache interface {
	Set(ctx context.Context, kind kpi.Kind, payload []byte, ttl time.Duration) error
	Get(ctx context.Context, kind kpi.Kind) ([]byte, error)
}

// Dashboard landing-page KPIs worth precomputing: each scans the full
// chat history, so the nightly warm run keeps the first dashboard load
// off the cold path.
var snapshotKinds = []kpi.Kind{
	kpi.KindDailyActiveUsers,
	kpi.KindAverageDailyQueries,
	kpi.KindWeeklyUserEngagement,
	kpi.KindMonthlyChurnRate,
}

// KPIScheduler precomputes dashboard KPIs on a cron schedule and parks
// the results in the snapshot cache.
type KPIScheduler struct {
	kpis     *KPIService
	cache    SnapshotCache
	resolver *WindowResolver
	cron     *cron.Cron
	spec     string
	ttl      time.Duration
	logger   *zap.Logger
}

// NewKPIScheduler creates a scheduler that warms the snapshot cache on
// the given cron spec, evaluated in the canonical timezone.
func NewKPIScheduler(
	kpis *KPIService,
	cache SnapshotCache,
	resolver *WindowResolver,
	spec string,
	ttl time.Duration,
	logger *zap.Logger,
) *KPIScheduler {
	return &KPIScheduler{
		kpis:     kpis,
		cache:    cache,
		resolver: resolver,
		cron:     cron.New(cron.WithLocation(resolver.Location())),
		spec:     spec,
		ttl:      ttl,
		logger:   logger,
	}
}

// Start registers the warm job and begins the cron loop. An invalid spec
// is a config error and fails startup.
func (s *KPIScheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		s.WarmSnapshots(ctx)
	})
	if err != nil {
		return fmt.Errorf("registering snapshot schedule %q: %w", s.spec, err)
	}
	s.cron.Start()
	s.logger.Info("KPI snapshot scheduler started", zap.String("schedule", s.spec))
	return nil
}

// Stop halts the cron loop and waits for a running warm pass to finish.
func (s *KPIScheduler) Stop() {
	<-s.cron.Stop().Done()
}

// WarmSnapshots computes each dashboard KPI over the trailing month and
// caches the serialized result. Failures are logged per KPI; one bad
// computation never blocks the rest of the warm pass.
func (s *KPIScheduler) WarmSnapshots(ctx context.Context) {
	window, err := s.resolver.Resolve(RangeQuery{Preset: PresetLastMonth})
	if err != nil {
		s.logger.Error("resolving snapshot window", zap.Error(err))
		return
	}
	params := kpi.Params{Window: window, Cohort: kpi.Everyone()}

	for _, kind := range snapshotKinds {
		result, err := s.kpis.Compute(ctx, kind, params)
		if err != nil {
			s.logger.Error("snapshot computation failed",
				zap.String("kpi", string(kind)), zap.Error(err))
			continue
		}
		payload, err := json.Marshal(result)
		if err != nil {
			s.logger.Error("snapshot serialization failed",
				zap.String("kpi", string(kind)), zap.Error(err))
			continue
		}
		if err := s.cache.Set(ctx, kind, payload, s.ttl); err != nil {
			s.logger.Error("snapshot cache write failed",
				zap.String("kpi", string(kind)), zap.Error(err))
			continue
		}
	}
	s.logger.Info("KPI snapshots warmed",
		zap.Int("kpis", len(snapshotKinds)),
		zap.Time("window_start", window.Start),
		zap.Time("window_end", window.End))
}

// CachedResult returns a previously warmed snapshot, or (nil, nil) when
// the kind was never warmed or the entry expired.
func (s *KPIScheduler) CachedResult(ctx context.Context, kind kpi.Kind) ([]byte, error) {
	return s.cache.Get(ctx, kind)
}
