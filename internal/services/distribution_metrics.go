package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/pendium/hippo-admin/internal/domain/kpi"
)

// queriesPerUserDistribution bins each user's turn count over the window.
func (s *KPIService) queriesPerUserDistribution(ctx context.Context, params kpi.Params) (*kpi.Distribution, error) {
	evs, err := s.queryEvents(ctx, params)
	if err != nil {
		return nil, err
	}

	perUser := make(map[string]float64)
	for _, ev := range evs {
		perUser[ev.Email] += float64(ev.Turns)
	}

	return s.bin("queriesPerUser", perUser, params.Bins, s.cfg.DefaultQueryBins)
}

// tokenUsageDistribution bins each user's total token usage (input plus
// output) over the window.
func (s *KPIService) tokenUsageDistribution(ctx context.Context, params kpi.Params) (*kpi.Distribution, error) {
	evs, err := s.queryEvents(ctx, params)
	if err != nil {
		return nil, err
	}

	perUser := make(map[string]float64)
	for _, ev := range evs {
		perUser[ev.Email] += float64(ev.InputTokens + ev.OutputTokens)
	}

	return s.bin("tokenUsage", perUser, params.Bins, s.cfg.DefaultTokenBins)
}

// bin places every per-user value into half-open [b[i], b[i+1]) buckets.
// Values below the first boundary or at/above the last land in the
// overflow bucket, so bucket counts always sum to the number of users
// with a defined metric value.
func (s *KPIService) bin(metric string, perUser map[string]float64, bins, defaults []float64) (*kpi.Distribution, error) {
	boundaries := bins
	if len(boundaries) == 0 {
		boundaries = defaults
	}
	if err := validateBins(boundaries); err != nil {
		return nil, err
	}

	buckets := make([]kpi.Bucket, 0, len(boundaries))
	for i := 0; i+1 < len(boundaries); i++ {
		buckets = append(buckets, kpi.Bucket{
			Label: fmt.Sprintf("%g-%g", boundaries[i], boundaries[i+1]),
			Lower: boundaries[i],
			Upper: boundaries[i+1],
		})
	}
	overflow := kpi.Bucket{Label: "Other", Overflow: true}

	emails := make([]string, 0, len(perUser))
	for e := range perUser {
		emails = append(emails, e)
	}
	sort.Strings(emails)

	for _, e := range emails {
		v := perUser[e]
		placed := false
		for i := range buckets {
			if v >= buckets[i].Lower && v < buckets[i].Upper {
				buckets[i].Count++
				buckets[i].Members = append(buckets[i].Members, e)
				placed = true
				break
			}
		}
		if !placed {
			overflow.Count++
			overflow.Members = append(overflow.Members, e)
		}
	}

	return &kpi.Distribution{
		Metric:     metric,
		Boundaries: boundaries,
		Buckets:    append(buckets, overflow),
		TotalUsers: len(perUser),
	}, nil
}

// validateBins enforces strictly increasing boundaries with at least one
// bin.
func validateBins(boundaries []float64) error {
	if len(boundaries) < 2 {
		return kpi.ErrInvalidBins
	}
	for i := 1; i < len(boundaries); i++ {
		if boundaries[i] <= boundaries[i-1] {
			return kpi.ErrInvalidBins
		}
	}
	return nil
}
