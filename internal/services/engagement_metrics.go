package services

import (
	"context"
	"sort"

	"github.com/pendium/hippo-admin/internal/domain/kpi"
)

// dailyActiveUsers counts distinct emails per calendar day.
func (s *KPIService) dailyActiveUsers(ctx context.Context, params kpi.Params) ([]kpi.DailyActiveUsers, error) {
	evs, err := s.queryEvents(ctx, params)
	if err != nil {
		return nil, err
	}

	byDay := make(map[string]map[string]struct{})
	for _, ev := range evs {
		day := s.dayKey(ev.CreatedAt)
		if byDay[day] == nil {
			byDay[day] = make(map[string]struct{})
		}
		byDay[day][ev.Email] = struct{}{}
	}

	out := make([]kpi.DailyActiveUsers, 0, len(byDay))
	for _, day := range sortedDayKeys(byDay) {
		out = append(out, kpi.DailyActiveUsers{
			Date:        day,
			ActiveUsers: len(byDay[day]),
		})
	}
	return out, nil
}

// averageDailyQueries reports, per day, total turns, distinct users and
// turns per user. Days with zero users report 0, never NaN.
func (s *KPIService) averageDailyQueries(ctx context.Context, params kpi.Params) ([]kpi.DailyQueryStats, error) {
	evs, err := s.queryEvents(ctx, params)
	if err != nil {
		return nil, err
	}

	type dayAgg struct {
		users map[string]struct{}
		turns int
	}
	byDay := make(map[string]*dayAgg)
	for _, ev := range evs {
		day := s.dayKey(ev.CreatedAt)
		agg := byDay[day]
		if agg == nil {
			agg = &dayAgg{users: make(map[string]struct{})}
			byDay[day] = agg
		}
		agg.users[ev.Email] = struct{}{}
		agg.turns += ev.Turns
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)

	out := make([]kpi.DailyQueryStats, 0, len(days))
	for _, day := range days {
		agg := byDay[day]
		out = append(out, kpi.DailyQueryStats{
			Date:           day,
			UniqueUsers:    len(agg.users),
			TotalQueries:   agg.turns,
			AverageQueries: safeDiv(float64(agg.turns), float64(len(agg.users))),
		})
	}
	return out, nil
}

// totalQueries reports turn counts per day.
func (s *KPIService) totalQueries(ctx context.Context, params kpi.Params) ([]kpi.DailyTotalQueries, error) {
	evs, err := s.queryEvents(ctx, params)
	if err != nil {
		return nil, err
	}

	byDay := make(map[string]int)
	for _, ev := range evs {
		byDay[s.dayKey(ev.CreatedAt)] += ev.Turns
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)

	out := make([]kpi.DailyTotalQueries, 0, len(days))
	for _, day := range days {
		out = append(out, kpi.DailyTotalQueries{Date: day, TotalQueries: byDay[day]})
	}
	return out, nil
}

// weeklyUserEngagement reports queries per user for each 7-day bucket
// anchored at the window start, with week-over-week deltas. The first
// bucket in the series always reports zero change.
func (s *KPIService) weeklyUserEngagement(ctx context.Context, params kpi.Params) ([]kpi.WeeklyEngagement, error) {
	evs, err := s.queryEvents(ctx, params)
	if err != nil {
		return nil, err
	}

	type weekAgg struct {
		users map[string]struct{}
		turns int
	}
	byWeek := make(map[int]*weekAgg)
	for _, ev := range evs {
		week := weekIndex(ev.CreatedAt, params.Window.Start)
		agg := byWeek[week]
		if agg == nil {
			agg = &weekAgg{users: make(map[string]struct{})}
			byWeek[week] = agg
		}
		agg.users[ev.Email] = struct{}{}
		agg.turns += ev.Turns
	}

	weeks := make([]int, 0, len(byWeek))
	for w := range byWeek {
		weeks = append(weeks, w)
	}
	sort.Ints(weeks)

	out := make([]kpi.WeeklyEngagement, 0, len(weeks))
	for i, w := range weeks {
		agg := byWeek[w]
		perUser := safeDiv(float64(agg.turns), float64(len(agg.users)))

		entry := kpi.WeeklyEngagement{
			Week:           w,
			TotalQueries:   agg.turns,
			UniqueUsers:    len(agg.users),
			QueriesPerUser: perUser,
		}
		if i > 0 {
			prev := out[i-1].QueriesPerUser
			entry.ChangeInQueriesPerUser = perUser - prev
			entry.PercentageChange = safeDiv(perUser-prev, prev) * 100
		}
		out = append(out, entry)
	}
	return out, nil
}

func sortedDayKeys(m map[string]map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
