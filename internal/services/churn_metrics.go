package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/pendium/hippo-admin/internal/domain/kpi"
)

// weeklyUserTurnover reports per 7-day bucket the active-user count, the
// count-based new/churned approximation, and the turnover rate. The first
// bucket reports all actives as new with zero churn.
func (s *KPIService) weeklyUserTurnover(ctx context.Context, params kpi.Params) ([]kpi.WeeklyTurnover, error) {
	evs, err := s.queryEvents(ctx, params)
	if err != nil {
		return nil, err
	}

	byWeek := make(map[int]map[string]struct{})
	for _, ev := range evs {
		week := weekIndex(ev.CreatedAt, params.Window.Start)
		if byWeek[week] == nil {
			byWeek[week] = make(map[string]struct{})
		}
		byWeek[week][ev.Email] = struct{}{}
	}

	weeks := make([]int, 0, len(byWeek))
	for w := range byWeek {
		weeks = append(weeks, w)
	}
	sort.Ints(weeks)

	out := make([]kpi.WeeklyTurnover, 0, len(weeks))
	for i, w := range weeks {
		active := len(byWeek[w])
		if i == 0 {
			out = append(out, kpi.WeeklyTurnover{
				Week:        w,
				ActiveUsers: active,
				NewUsers:    active,
			})
			continue
		}

		prev := len(byWeek[weeks[i-1]])
		newUsers := active - prev
		if newUsers < 0 {
			newUsers = 0
		}
		churned := prev - active + newUsers
		if churned < 0 {
			churned = 0
		}
		out = append(out, kpi.WeeklyTurnover{
			Week:             w,
			ActiveUsers:      active,
			NewUsers:         newUsers,
			ChurnedUsers:     churned,
			ChangePercentage: safeDiv(float64(active-prev), float64(prev)) * 100,
			TurnoverRate:     safeDiv(float64(churned), float64(prev)) * 100,
		})
	}
	return out, nil
}

// monthlyChurnRate groups active emails by calendar month and reports the
// product's historical net-flow ratio between consecutive months:
// (|prev\cur| - |cur\prev|) / |prev|. It is not a textbook churn rate and
// goes negative when the active set grows; the dashboard depends on the
// exact values, so the formula is kept as-is. The first month has no
// predecessor and is omitted.
func (s *KPIService) monthlyChurnRate(ctx context.Context, params kpi.Params) ([]kpi.MonthlyChurn, error) {
	evs, err := s.queryEvents(ctx, params)
	if err != nil {
		return nil, err
	}

	type monthKey struct{ year, month int }
	byMonth := make(map[monthKey]map[string]struct{})
	for _, ev := range evs {
		year, month := monthOf(ev.CreatedAt, s.resolver.Location())
		key := monthKey{year, month}
		if byMonth[key] == nil {
			byMonth[key] = make(map[string]struct{})
		}
		byMonth[key][ev.Email] = struct{}{}
	}

	months := make([]monthKey, 0, len(byMonth))
	for k := range byMonth {
		months = append(months, k)
	}
	sort.Slice(months, func(i, j int) bool {
		if months[i].year != months[j].year {
			return months[i].year < months[j].year
		}
		return months[i].month < months[j].month
	})

	out := make([]kpi.MonthlyChurn, 0)
	for i := 1; i < len(months); i++ {
		prev, cur := byMonth[months[i-1]], byMonth[months[i]]
		lost := setDifferenceSize(prev, cur)
		gained := setDifferenceSize(cur, prev)
		out = append(out, kpi.MonthlyChurn{
			Month:     months[i].month,
			Year:      months[i].year,
			ChurnRate: safeDiv(float64(lost-gained), float64(len(prev))),
		})
	}
	return out, nil
}

// inactiveUsers reports the cohort members with no qualifying activity in
// the window, how stale each one is, and the resulting churn rates.
func (s *KPIService) inactiveUsers(ctx context.Context, params kpi.Params) (*kpi.ChurnSummary, error) {
	emails, empty := cohortEmails(params.Cohort)
	if empty {
		return &kpi.ChurnSummary{InactiveUsers: []kpi.InactiveUser{}}, nil
	}

	active, err := s.users.ActiveEmails(ctx, emails)
	if err != nil {
		return nil, fmt.Errorf("failed to load active users: %w", err)
	}

	activeInWindow, err := s.chats.DistinctActiveEmails(ctx, params.Window.Start, params.Window.End)
	if err != nil {
		return nil, fmt.Errorf("failed to load window activity: %w", err)
	}
	seen := make(map[string]struct{}, len(activeInWindow))
	for _, e := range activeInWindow {
		seen[e] = struct{}{}
	}

	inactive := make([]string, 0)
	for _, e := range active {
		if _, ok := seen[e]; !ok {
			inactive = append(inactive, e)
		}
	}
	sort.Strings(inactive)

	lastSeen, err := s.chats.LastActivity(ctx, inactive)
	if err != nil {
		return nil, fmt.Errorf("failed to load last activity: %w", err)
	}

	report := make([]kpi.InactiveUser, 0, len(inactive))
	for _, e := range inactive {
		entry := kpi.InactiveUser{Email: e}
		if last, ok := lastSeen[e]; ok {
			days := params.Window.End.Sub(last).Hours() / 24
			entry.DaysSinceLastActive = &days
		}
		report = append(report, entry)
	}

	churnRate := safeDiv(float64(len(inactive)), float64(len(active))) * 100
	weeks := params.Window.End.Sub(params.Window.Start).Hours() / 24 / 7

	return &kpi.ChurnSummary{
		CohortSize:    len(active),
		InactiveCount: len(inactive),
		ChurnRate:     churnRate,
		ChurnPerWeek:  safeDiv(churnRate, weeks),
		InactiveUsers: report,
	}, nil
}

// retentionCohorts groups users by signup month. A user counts as
// retained when their last event falls within the trailing 30 days of
// query time.
func (s *KPIService) retentionCohorts(ctx context.Context, params kpi.Params) ([]kpi.RetentionCohort, error) {
	signups, err := s.users.ListSignups(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load signups: %w", err)
	}

	now := s.now().In(s.resolver.Location())
	evs, err := s.chats.ListQueryEvents(ctx, time.Unix(0, 0), now, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load chat events: %w", err)
	}

	type activity struct {
		days  map[string]struct{}
		first time.Time
		last  time.Time
	}
	byEmail := make(map[string]*activity)
	for _, ev := range evs {
		a := byEmail[ev.Email]
		if a == nil {
			a = &activity{days: make(map[string]struct{}), first: ev.CreatedAt, last: ev.CreatedAt}
			byEmail[ev.Email] = a
		}
		a.days[s.dayKey(ev.CreatedAt)] = struct{}{}
		if ev.CreatedAt.Before(a.first) {
			a.first = ev.CreatedAt
		}
		if ev.CreatedAt.After(a.last) {
			a.last = ev.CreatedAt
		}
	}

	retainedSince := now.AddDate(0, 0, -30)

	type cohortAgg struct {
		total        int
		active       int
		activeDays   int
		lifespanDays float64
		withEvents   int
	}
	byMonth := make(map[string]*cohortAgg)
	for email, signup := range signups {
		month := signup.In(s.resolver.Location()).Format("2006-01")
		agg := byMonth[month]
		if agg == nil {
			agg = &cohortAgg{}
			byMonth[month] = agg
		}
		agg.total++
		if a, ok := byEmail[email]; ok {
			agg.withEvents++
			agg.activeDays += len(a.days)
			agg.lifespanDays += a.last.Sub(a.first).Hours() / 24
			if !a.last.Before(retainedSince) {
				agg.active++
			}
		}
	}

	months := make([]string, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Strings(months)

	out := make([]kpi.RetentionCohort, 0, len(months))
	for _, m := range months {
		agg := byMonth[m]
		out = append(out, kpi.RetentionCohort{
			Month:           m,
			TotalUsers:      agg.total,
			ActiveUsers:     agg.active,
			RetentionRate:   safeDiv(float64(agg.active), float64(agg.total)) * 100,
			AvgActiveDays:   safeDiv(float64(agg.activeDays), float64(agg.total)),
			AvgLifespanDays: safeDiv(agg.lifespanDays, float64(agg.withEvents)),
		})
	}
	return out, nil
}

func setDifferenceSize(a, b map[string]struct{}) int {
	n := 0
	for k := range a {
		if _, ok := b[k]; !ok {
			n++
		}
	}
	return n
}
