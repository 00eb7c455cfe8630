package services

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/pendium/hippo-admin/internal/domain/event"
)

// ChatLogService assembles the admin chat-log browser payload: one page
// of conversations plus the per-day volume histogram.
type ChatLogService struct {
	repo     event.ChatLogRepository
	resolver *WindowResolver
	logger   *zap.Logger
}

// NewChatLogService creates a new chat log service.
func NewChatLogService(repo event.ChatLogRepository, resolver *WindowResolver, logger *zap.Logger) *ChatLogService {
	return &ChatLogService{repo: repo, resolver: resolver, logger: logger}
}

// DayVolume is one day of the chat volume histogram. Cumulative is the
// running total of all matching chats up to and including that day.
type DayVolume struct {
	Count      int `json:"count"`
	Cumulative int `json:"accumulativeCount"`
}

// ChatLogQuery narrows the browser listing. Range is a date-range preset
// resolved against the canonical timezone; Date pins a single calendar
// day and wins over Range.
type ChatLogQuery struct {
	Search string
	Email  string
	Date   string
	Range  string
	Page   int
	Limit  int
}

// ChatLogPage is the full browser payload.
type ChatLogPage struct {
	Chats      []*event.ChatLog     `json:"chatLogs"`
	Total      int64                `json:"totalCount"`
	PerDay     map[string]DayVolume `json:"dateCounts"`
	UserEmails []string             `json:"users"`
}

// List returns one page of chat logs with the histogram and distinct
// sender list computed over the whole match set.
func (s *ChatLogService) List(ctx context.Context, q ChatLogQuery) (*ChatLogPage, error) {
	if q.Limit <= 0 {
		q.Limit = 10
	}
	if q.Page <= 0 {
		q.Page = 1
	}

	filter := event.ChatLogFilter{
		Search: q.Search,
		Email:  q.Email,
		Date:   q.Date,
		Limit:  q.Limit,
		Offset: (q.Page - 1) * q.Limit,
	}
	if q.Date == "" && q.Range != "" && q.Range != PresetAllTime {
		w, err := s.resolver.Resolve(RangeQuery{Preset: q.Range})
		if err != nil {
			return nil, err
		}
		filter.Since = &w.Start
	}

	chats, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing chat logs: %w", err)
	}
	if chats == nil {
		chats = []*event.ChatLog{}
	}

	counts, err := s.repo.CountPerDay(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("counting chats per day: %w", err)
	}
	emails, err := s.repo.DistinctEmails(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing chat senders: %w", err)
	}
	if emails == nil {
		emails = []string{}
	}

	return &ChatLogPage{
		Chats:      chats,
		Total:      total,
		PerDay:     accumulate(counts),
		UserEmails: emails,
	}, nil
}

// accumulate folds daily counts into running totals in calendar order.
// Day keys are canonical-zone YYYY-MM-DD strings, so lexical order is
// chronological order.
func accumulate(counts map[string]int) map[string]DayVolume {
	days := make([]string, 0, len(counts))
	for day := range counts {
		days = append(days, day)
	}
	sort.Strings(days)

	out := make(map[string]DayVolume, len(counts))
	running := 0
	for _, day := range days {
		running += counts[day]
		out[day] = DayVolume{Count: counts[day], Cumulative: running}
	}
	return out
}
