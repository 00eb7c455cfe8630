package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pendium/hippo-admin/internal/domain/user"
)

// BetaListService manages the beta-program roster. Removal is always a
// soft delete so historical cohort membership keeps resolving for KPIs.
type BetaListService struct {
	repo   user.BetaRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewBetaListService creates a new beta roster service.
func NewBetaListService(repo user.BetaRepository, logger *zap.Logger) *BetaListService {
	return &BetaListService{repo: repo, logger: logger, now: time.Now}
}

// BetaOverview is one roster page plus status tallies over the match set.
type BetaOverview struct {
	Users        []*user.BetaUser `json:"users"`
	Total        int64            `json:"totalUsers"`
	StatusCounts map[string]int64 `json:"statusCounts"`
}

// List returns one roster page with per-status counts. Every known status
// appears in the tally, zero-valued when absent, so the dashboard renders
// a stable set of counters.
func (s *BetaListService) List(ctx context.Context, filter user.BetaListFilter) (*BetaOverview, error) {
	if filter.Limit <= 0 {
		filter.Limit = 10
	}

	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing beta roster: %w", err)
	}
	counts, err := s.repo.CountByStatus(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("counting roster statuses: %w", err)
	}
	for _, status := range user.BetaStatusTypes {
		if _, ok := counts[status]; !ok {
			counts[status] = 0
		}
	}
	if users == nil {
		users = []*user.BetaUser{}
	}

	return &BetaOverview{Users: users, Total: total, StatusCounts: counts}, nil
}

// Get retrieves one roster entry.
func (s *BetaListService) Get(ctx context.Context, id uuid.UUID) (*user.BetaUser, error) {
	return s.repo.GetByID(ctx, id)
}

// Create validates and stores a roster entry.
func (s *BetaListService) Create(ctx context.Context, bu *user.BetaUser) error {
	if bu == nil {
		return user.ErrUserNil
	}
	if bu.Email == "" {
		return user.ErrEmailRequired
	}
	if bu.Cohort != "" && !user.KnownCohort(bu.Cohort) {
		s.logger.Warn("unrecognized cohort label on roster entry",
			zap.String("email", bu.Email),
			zap.String("cohort", bu.Cohort))
	}
	if bu.ID == uuid.Nil {
		bu.ID = uuid.New()
	}
	if bu.DateAdded.IsZero() {
		bu.DateAdded = s.now()
	}
	return s.repo.Create(ctx, bu)
}

// Update applies changes to a roster entry and stamps the modified time.
func (s *BetaListService) Update(ctx context.Context, bu *user.BetaUser) error {
	if bu == nil {
		return user.ErrUserNil
	}
	if bu.ID == uuid.Nil {
		return user.ErrInvalidUserID
	}
	modified := s.now()
	bu.DateModified = &modified
	return s.repo.Update(ctx, bu)
}

// Remove soft-deletes roster entries, returning how many were marked.
func (s *BetaListService) Remove(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return s.repo.SoftDelete(ctx, ids)
}
