package services

import (
	"context"
	"fmt"

	"github.com/pendium/hippo-admin/internal/domain/kpi"
	"github.com/pendium/hippo-admin/internal/domain/user"
)

// CohortService resolves user-group selectors into concrete email sets by
// consulting the beta roster.
type CohortService struct {
	betaRepo user.BetaRepository
}

// NewCohortService creates a cohort resolver over the beta roster.
func NewCohortService(betaRepo user.BetaRepository) *CohortService {
	return &CohortService{betaRepo: betaRepo}
}

// Resolve maps a cohort selector to a cohort filter.
//
// "all" and its legacy alias "beta" (and the empty selector) resolve to
// the unfiltered sentinel: no restriction at all. A known cohort label
// resolves to the roster emails carrying that tag. Anything else resolves
// to an empty set, which filters to nobody; that is deliberately distinct
// from unfiltered.
func (s *CohortService) Resolve(ctx context.Context, selector string) (kpi.Cohort, error) {
	switch selector {
	case "", "all", "beta":
		return kpi.Everyone(), nil
	}

	if !user.KnownCohort(selector) {
		return kpi.CohortOf(nil), nil
	}

	emails, err := s.betaRepo.EmailsByCohort(ctx, selector)
	if err != nil {
		return kpi.Cohort{}, fmt.Errorf("failed to resolve cohort %q: %w", selector, err)
	}
	return kpi.CohortOf(emails), nil
}
