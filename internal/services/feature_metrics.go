package services

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/pendium/hippo-admin/internal/domain/kpi"
)

// Interaction discriminants correlated with reading primary literature.
var primaryLiteratureInteractions = []string{"opened_source", "clicked_intext_link"}

// saveSourcesFrequency reports, per day, how many sources were saved and
// by how many distinct users.
func (s *KPIService) saveSourcesFrequency(ctx context.Context, params kpi.Params) ([]kpi.DailySourceSaves, error) {
	saves, err := s.users.ListSourceSaves(ctx, params.Window.Start, params.Window.End)
	if err != nil {
		return nil, fmt.Errorf("failed to load source saves: %w", err)
	}

	type dayAgg struct {
		users map[string]struct{}
		saved int
	}
	byDay := make(map[string]*dayAgg)
	for _, save := range saves {
		if !params.Cohort.Contains(save.Email) {
			continue
		}
		day := s.dayKey(save.CreatedAt)
		agg := byDay[day]
		if agg == nil {
			agg = &dayAgg{users: make(map[string]struct{})}
			byDay[day] = agg
		}
		agg.users[save.Email] = struct{}{}
		agg.saved++
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)

	out := make([]kpi.DailySourceSaves, 0, len(days))
	for _, day := range days {
		agg := byDay[day]
		avg := safeDiv(float64(agg.saved), float64(len(agg.users)))
		out = append(out, kpi.DailySourceSaves{
			Date:                day,
			TotalSourcesSaved:   agg.saved,
			UniqueUsers:         len(agg.users),
			AverageSourcesSaved: math.Round(avg*100) / 100,
		})
	}
	return out, nil
}

// primaryLiteratureRate reports, per day, the fraction of chat threads
// with at least one correlated opened_source / clicked_intext_link
// interaction.
func (s *KPIService) primaryLiteratureRate(ctx context.Context, params kpi.Params) ([]kpi.DailyFeatureRate, error) {
	evs, err := s.queryEvents(ctx, params)
	if err != nil {
		return nil, err
	}

	interactions, err := s.features.ListByNames(ctx, params.Window.Start, params.Window.End, primaryLiteratureInteractions)
	if err != nil {
		return nil, fmt.Errorf("failed to load feature interactions: %w", err)
	}
	threadsWithInteraction := make(map[string]struct{}, len(interactions))
	for _, in := range interactions {
		threadsWithInteraction[in.ThreadUUID] = struct{}{}
	}

	type dayAgg struct {
		total       int
		interacting int
	}
	byDay := make(map[string]*dayAgg)
	for _, ev := range evs {
		day := s.dayKey(ev.CreatedAt)
		agg := byDay[day]
		if agg == nil {
			agg = &dayAgg{}
			byDay[day] = agg
		}
		agg.total++
		if _, ok := threadsWithInteraction[ev.ThreadUUID]; ok {
			agg.interacting++
		}
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)

	out := make([]kpi.DailyFeatureRate, 0, len(days))
	for _, day := range days {
		agg := byDay[day]
		out = append(out, kpi.DailyFeatureRate{
			Date:                      day,
			TotalChatLogs:             agg.total,
			ChatLogsWithInteraction:   agg.interacting,
			PercentageWithInteraction: safeDiv(float64(agg.interacting), float64(agg.total)) * 100,
		})
	}
	return out, nil
}

// calculatorCount reports raw calculator_submitted interaction counts per
// day.
func (s *KPIService) calculatorCount(ctx context.Context, params kpi.Params) ([]kpi.DailyInteractionCount, error) {
	if _, empty := cohortEmails(params.Cohort); empty {
		return []kpi.DailyInteractionCount{}, nil
	}

	interactions, err := s.features.ListByNames(ctx, params.Window.Start, params.Window.End, []string{"calculator_submitted"})
	if err != nil {
		return nil, fmt.Errorf("failed to load feature interactions: %w", err)
	}

	byDay := make(map[string]int)
	for _, in := range interactions {
		if !params.Cohort.Contains(in.Email) {
			continue
		}
		byDay[s.dayKey(in.Timestamp)]++
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)

	out := make([]kpi.DailyInteractionCount, 0, len(days))
	for _, day := range days {
		out = append(out, kpi.DailyInteractionCount{Date: day, InteractionCount: byDay[day]})
	}
	return out, nil
}

// feedbackBreakdown aggregates like/dislike volume and complaint flags
// over the window.
func (s *KPIService) feedbackBreakdown(ctx context.Context, params kpi.Params) (*kpi.FeedbackBreakdown, error) {
	records, err := s.feedback.ListInWindow(ctx, params.Window.Start, params.Window.End)
	if err != nil {
		return nil, fmt.Errorf("failed to load feedback: %w", err)
	}

	out := &kpi.FeedbackBreakdown{Complaints: map[string]int{}}
	for _, rec := range records {
		if !params.Cohort.Contains(rec.Email) {
			continue
		}
		out.Total++
		if rec.IsLiked {
			out.Liked++
		} else {
			out.Disliked++
		}
		for flag, set := range map[string]bool{
			"inaccurateInformation": rec.Feedback.InaccurateInformation,
			"inaccurateSources":     rec.Feedback.InaccurateSources,
			"notRelevant":           rec.Feedback.NotRelevant,
			"hallucinations":        rec.Feedback.Hallucinations,
			"outdated":              rec.Feedback.Outdated,
			"tooLengthy":            rec.Feedback.TooLengthy,
			"formatting":            rec.Feedback.Formatting,
			"missingSources":        rec.Feedback.MissingSources,
		} {
			if set {
				out.Complaints[flag]++
			}
		}
	}
	return out, nil
}
