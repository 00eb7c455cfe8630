package event

import (
	"context"
	"time"
)

// ChatLogRepository reads the chat event collection. All windowed methods
// take a half-open [start, end) interval and push the filter down to the
// store; rows with NULL timestamps never qualify. A nil emails slice means
// no user restriction (callers translate cohort filters before reaching
// the repository).
type ChatLogRepository interface {
	// ListQueryEvents returns the aggregation projections of user-role chat
	// logs inside the window, optionally restricted to the given emails.
	ListQueryEvents(ctx context.Context, start, end time.Time, emails []string) ([]QueryEvent, error)

	// DistinctActiveEmails returns the distinct emails with at least one
	// user-role chat log inside the window.
	DistinctActiveEmails(ctx context.Context, start, end time.Time) ([]string, error)

	// LastActivity returns the most recent chat timestamp per email, for
	// the given emails (all users when nil).
	LastActivity(ctx context.Context, emails []string) (map[string]time.Time, error)

	// List returns chat logs for the admin browsing endpoint, newest
	// first, plus the total match count.
	List(ctx context.Context, filter ChatLogFilter) ([]*ChatLog, int64, error)

	// CountPerDay returns chat-log counts grouped by canonical-zone
	// calendar day for the browsing endpoint histogram.
	CountPerDay(ctx context.Context, filter ChatLogFilter) (map[string]int, error)

	// DistinctEmails returns the distinct emails matching the filter.
	DistinctEmails(ctx context.Context, filter ChatLogFilter) ([]string, error)
}

// FeatureInteractionRepository reads the append-only feature interaction
// collection.
type FeatureInteractionRepository interface {
	// ListByNames returns interactions inside the window whose discriminant
	// is one of names.
	ListByNames(ctx context.Context, start, end time.Time, names []string) ([]FeatureInteraction, error)
}

// FeedbackRepository reads user feedback records.
type FeedbackRepository interface {
	// ListInWindow returns feedback created inside the window.
	ListInWindow(ctx context.Context, start, end time.Time) ([]UserFeedback, error)
}
