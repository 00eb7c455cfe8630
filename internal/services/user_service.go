package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pendium/hippo-admin/internal/domain/event"
	"github.com/pendium/hippo-admin/internal/domain/kpi"
	"github.com/pendium/hippo-admin/internal/domain/user"
)

// UserService handles the admin user listing with its dashboard side
// panels, plus plain CRUD on user records.
type UserService struct {
	users    user.Repository
	beta     user.BetaRepository
	chats    event.ChatLogRepository
	resolver *WindowResolver
	logger   *zap.Logger
}

// NewUserService creates a new user service.
func NewUserService(
	users user.Repository,
	beta user.BetaRepository,
	chats event.ChatLogRepository,
	resolver *WindowResolver,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		users:    users,
		beta:     beta,
		chats:    chats,
		resolver: resolver,
		logger:   logger,
	}
}

// UserListQuery carries the admin listing parameters. Group narrows the
// page to a beta cohort ("all" and "" mean everyone, "beta" means the
// whole roster); ChurnPreset and ChurnCohort select the window and roster
// slice for the churn side panel.
type UserListQuery struct {
	Page        int
	PerPage     int
	Search      string
	Email       string
	Group       string
	Status      string
	ChurnPreset string
	ChurnCohort string
}

// DayActivity is one day of the all-time active-user panel.
type DayActivity struct {
	Count int      `json:"count"`
	Users []string `json:"users"`
}

// ChurnPanel summarizes roster churn over the selected window. Rates are
// pre-formatted percentage strings, matching what the dashboard renders.
type ChurnPanel struct {
	TotalUsers   int    `json:"totalUsers"`
	UsersChurned int    `json:"usersChurned"`
	ChurnRate    string `json:"churnRate"`
	ChurnPerWeek string `json:"churnPerWeek"`
}

// UserOverview is the full admin user-listing payload: one page of users
// with match-set aggregates, plus the dashboard panels computed over the
// beta roster.
type UserOverview struct {
	*user.ListResult
	DailyActiveUsers     map[string]DayActivity    `json:"dailyActiveUsers"`
	Churn                ChurnPanel                `json:"churnData"`
	QueriesByUserAndWeek map[string]map[string]int `json:"queriesByUserAndWeek"`
	WeekOverWeekChanges  map[string]map[string]int `json:"weekOverWeekChanges"`
}

// Overview assembles the admin user listing and its side panels.
func (s *UserService) Overview(ctx context.Context, q UserListQuery) (*UserOverview, error) {
	if q.PerPage <= 0 {
		q.PerPage = 10
	}
	if q.Page <= 0 {
		q.Page = 1
	}

	emails, err := s.groupEmails(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("resolving user group: %w", err)
	}

	page, err := s.users.List(ctx, user.ListFilter{
		Search: q.Search,
		Emails: emails,
		Status: q.Status,
		Limit:  q.PerPage,
		Offset: (q.Page - 1) * q.PerPage,
	})
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}

	allTime := kpi.Window{Start: time.Unix(0, 0), End: s.resolver.Now()}
	events, err := s.chats.ListQueryEvents(ctx, allTime.Start, allTime.End, nil)
	if err != nil {
		return nil, fmt.Errorf("listing chat events: %w", err)
	}

	churn, err := s.churnPanel(ctx, q.ChurnPreset, q.ChurnCohort)
	if err != nil {
		return nil, err
	}

	roster, err := s.cohortRoster(ctx, q.ChurnCohort)
	if err != nil {
		return nil, fmt.Errorf("resolving churn cohort: %w", err)
	}
	byWeek, changes := s.weeklyQueries(events, roster)

	return &UserOverview{
		ListResult:           page,
		DailyActiveUsers:     s.dailyActivity(events),
		Churn:                churn,
		QueriesByUserAndWeek: byWeek,
		WeekOverWeekChanges:  changes,
	}, nil
}

// groupEmails maps the listing group filter onto an email restriction:
// nil means no restriction, an empty slice matches nobody.
func (s *UserService) groupEmails(ctx context.Context, q UserListQuery) ([]string, error) {
	if q.Email != "" {
		return []string{q.Email}, nil
	}
	switch {
	case q.Group == "" || q.Group == "all":
		return nil, nil
	case q.Group == "beta":
		return s.beta.EmailsByCohort(ctx, "")
	case user.KnownCohort(q.Group):
		return s.beta.EmailsByCohort(ctx, q.Group)
	}
	s.logger.Warn("unknown user group filter", zap.String("group", q.Group))
	return []string{}, nil
}

// cohortRoster returns the beta roster slice for the churn panels. Unlike
// KPI cohorts, an empty or "all" selector here means the whole roster:
// the panels always describe beta users.
func (s *UserService) cohortRoster(ctx context.Context, cohort string) ([]string, error) {
	if cohort == "all" || !user.KnownCohort(cohort) {
		cohort = ""
	}
	return s.beta.EmailsByCohort(ctx, cohort)
}

func (s *UserService) dailyActivity(events []event.QueryEvent) map[string]DayActivity {
	seen := make(map[string]map[string]struct{})
	for _, ev := range events {
		day := s.resolver.DayKey(ev.CreatedAt)
		if seen[day] == nil {
			seen[day] = make(map[string]struct{})
		}
		seen[day][ev.Email] = struct{}{}
	}

	out := make(map[string]DayActivity, len(seen))
	for day, users := range seen {
		out[day] = DayActivity{Count: len(users), Users: sortedKeys(users)}
	}
	return out
}

func (s *UserService) churnPanel(ctx context.Context, preset, cohort string) (ChurnPanel, error) {
	if preset == "" {
		preset = PresetLastMonth
	}
	w, err := s.resolver.Resolve(RangeQuery{Preset: preset})
	if err != nil {
		return ChurnPanel{}, err
	}

	roster, err := s.cohortRoster(ctx, cohort)
	if err != nil {
		return ChurnPanel{}, fmt.Errorf("resolving churn cohort: %w", err)
	}
	active, err := s.users.ActiveEmails(ctx, roster)
	if err != nil {
		return ChurnPanel{}, fmt.Errorf("listing active users: %w", err)
	}
	if len(active) == 0 {
		return ChurnPanel{ChurnRate: "0.00%", ChurnPerWeek: "0.00%"}, nil
	}

	events, err := s.chats.ListQueryEvents(ctx, w.Start, w.End, active)
	if err != nil {
		return ChurnPanel{}, fmt.Errorf("listing chat events: %w", err)
	}
	activeInWindow := make(map[string]struct{}, len(events))
	for _, ev := range events {
		activeInWindow[ev.Email] = struct{}{}
	}

	churned := 0
	for _, email := range active {
		if _, ok := activeInWindow[email]; !ok {
			churned++
		}
	}

	rate := safeDiv(float64(churned), float64(len(active))) * 100
	perWeek := safeDiv(rate, w.Days()/7)
	return ChurnPanel{
		TotalUsers:   len(active),
		UsersChurned: churned,
		ChurnRate:    fmt.Sprintf("%.2f%%", rate),
		ChurnPerWeek: fmt.Sprintf("%.2f%%", perWeek),
	}, nil
}

// weeklyQueries buckets roster chat activity by ISO week and derives the
// per-user week-over-week deltas the dashboard charts.
func (s *UserService) weeklyQueries(events []event.QueryEvent, roster []string) (map[string]map[string]int, map[string]map[string]int) {
	inRoster := make(map[string]struct{}, len(roster))
	for _, email := range roster {
		inRoster[email] = struct{}{}
	}

	byWeek := make(map[string]map[string]int)
	for _, ev := range events {
		if _, ok := inRoster[ev.Email]; !ok {
			continue
		}
		year, week := ev.CreatedAt.In(s.resolver.Location()).ISOWeek()
		key := fmt.Sprintf("%d-W%02d", year, week)
		if byWeek[key] == nil {
			byWeek[key] = make(map[string]int)
		}
		byWeek[key][ev.Email]++
	}

	weeks := make([]string, 0, len(byWeek))
	for key := range byWeek {
		weeks = append(weeks, key)
	}
	sort.Strings(weeks)

	changes := make(map[string]map[string]int, len(byWeek))
	for i, key := range weeks {
		changes[key] = make(map[string]int)
		if i == 0 {
			for email, count := range byWeek[key] {
				changes[key][email] = count
			}
			continue
		}
		prev := byWeek[weeks[i-1]]
		for email, count := range byWeek[key] {
			changes[key][email] = count - prev[email]
		}
		for email, count := range prev {
			if _, ok := byWeek[key][email]; !ok {
				changes[key][email] = -count
			}
		}
	}
	return byWeek, changes
}

// Get retrieves a user by ID.
func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return s.users.GetByID(ctx, id)
}

// Create validates and stores a new user record.
func (s *UserService) Create(ctx context.Context, u *user.User) error {
	if u == nil {
		return user.ErrUserNil
	}
	if u.Email == "" {
		return user.ErrEmailRequired
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Status == "" {
		u.Status = user.StatusActive
	}
	return s.users.Create(ctx, u)
}

// Update applies profile changes to an existing user.
func (s *UserService) Update(ctx context.Context, u *user.User) error {
	if u == nil {
		return user.ErrUserNil
	}
	if u.ID == uuid.Nil {
		return user.ErrInvalidUserID
	}
	return s.users.Update(ctx, u)
}

// Delete removes one user record.
func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.users.Delete(ctx, id)
}

// DeleteMany removes several user records, returning how many were found.
func (s *UserService) DeleteMany(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return s.users.DeleteMany(ctx, ids)
}
