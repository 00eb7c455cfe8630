package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/pendium/hippo-admin/internal/config"
	"github.com/pendium/hippo-admin/internal/domain/event"
	"github.com/pendium/hippo-admin/internal/domain/kpi"
	"github.com/pendium/hippo-admin/internal/domain/user"
)

// KPIService is the aggregation engine: a library of named KPI
// computations over the event store, plus the dispatcher that maps a KPI
// kind to its computation. Every computation is a pure read of the store
// snapshot; no state is shared across requests.
type KPIService struct {
	chats    event.ChatLogRepository
	features event.FeatureInteractionRepository
	feedback event.FeedbackRepository
	users    user.Repository
	billing  *BillingService
	resolver *WindowResolver
	cfg      config.AnalyticsConfig
	logger   *zap.Logger
	now      func() time.Time
}

// NewKPIService wires the aggregation engine.
func NewKPIService(
	chats event.ChatLogRepository,
	features event.FeatureInteractionRepository,
	feedback event.FeedbackRepository,
	users user.Repository,
	billing *BillingService,
	resolver *WindowResolver,
	cfg config.AnalyticsConfig,
	logger *zap.Logger,
) *KPIService {
	return &KPIService{
		chats:    chats,
		features: features,
		feedback: feedback,
		users:    users,
		billing:  billing,
		resolver: resolver,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// Compute dispatches one KPI computation. The kind is already a member of
// the closed enumeration; params carry the resolved window, cohort and
// optional bin boundaries.
func (s *KPIService) Compute(ctx context.Context, kind kpi.Kind, params kpi.Params) (*kpi.Result, error) {
	var (
		data interface{}
		err  error
	)

	switch kind {
	case kpi.KindDailyActiveUsers:
		data, err = s.dailyActiveUsers(ctx, params)
	case kpi.KindAverageDailyQueries:
		data, err = s.averageDailyQueries(ctx, params)
	case kpi.KindTotalQueries:
		data, err = s.totalQueries(ctx, params)
	case kpi.KindWeeklyUserEngagement:
		data, err = s.weeklyUserEngagement(ctx, params)
	case kpi.KindWeeklyUserTurnover:
		data, err = s.weeklyUserTurnover(ctx, params)
	case kpi.KindMonthlyChurnRate:
		data, err = s.monthlyChurnRate(ctx, params)
	case kpi.KindInactiveUsers:
		data, err = s.inactiveUsers(ctx, params)
	case kpi.KindQueriesDistribution:
		data, err = s.queriesPerUserDistribution(ctx, params)
	case kpi.KindTokenDistribution:
		data, err = s.tokenUsageDistribution(ctx, params)
	case kpi.KindRetentionCohorts:
		data, err = s.retentionCohorts(ctx, params)
	case kpi.KindSaveSourcesFrequency:
		data, err = s.saveSourcesFrequency(ctx, params)
	case kpi.KindPrimaryLiteratureRate:
		data, err = s.primaryLiteratureRate(ctx, params)
	case kpi.KindCalculatorCount:
		data, err = s.calculatorCount(ctx, params)
	case kpi.KindFeedbackBreakdown:
		data, err = s.feedbackBreakdown(ctx, params)
	case kpi.KindRevenueSnapshot:
		data, err = s.billing.Snapshot(ctx, params.Window)
	default:
		return nil, kpi.ErrUnknownKPI
	}

	if err != nil {
		s.logger.Error("KPI computation failed",
			zap.String("kpi", string(kind)),
			zap.Time("window_start", params.Window.Start),
			zap.Time("window_end", params.Window.End),
			zap.Bool("cohort_filtered", !params.Cohort.Unfiltered()),
			zap.Error(err))
		return nil, err
	}

	return &kpi.Result{KPI: kind.Label(), Data: data}, nil
}

// cohortEmails translates a cohort filter into the repository's optional
// email restriction. The second return is true when the cohort is a
// filtered empty set, which matches nobody: callers skip the store
// entirely and return a zero-filled payload.
func cohortEmails(c kpi.Cohort) ([]string, bool) {
	if c.Unfiltered() {
		return nil, false
	}
	if c.Size() == 0 {
		return nil, true
	}
	return c.Emails(), false
}

// queryEvents fetches the window's qualifying chat events under the
// cohort filter, or nil without touching the store for an empty cohort.
func (s *KPIService) queryEvents(ctx context.Context, params kpi.Params) ([]event.QueryEvent, error) {
	emails, empty := cohortEmails(params.Cohort)
	if empty {
		return nil, nil
	}
	evs, err := s.chats.ListQueryEvents(ctx, params.Window.Start, params.Window.End, emails)
	if err != nil {
		return nil, fmt.Errorf("failed to load chat events: %w", err)
	}
	return evs, nil
}

func (s *KPIService) dayKey(t time.Time) string {
	return s.resolver.DayKey(t)
}

// weekIndex buckets an instant into 7-day windows anchored at the query's
// own start instant, not the ISO calendar.
func weekIndex(t, start time.Time) int {
	return int(t.Sub(start) / (7 * 24 * time.Hour))
}

func monthOf(t time.Time, loc *time.Location) (year int, month int) {
	local := t.In(loc)
	return local.Year(), int(local.Month())
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
