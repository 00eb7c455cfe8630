package user

import (
	"time"

	"github.com/google/uuid"
)

// Status values carried by product user records.
const (
	StatusActive = "active"
)

// User is one product user record. The usage counters are mutated by the
// product itself; this backend reads them and only mutates profile fields
// through the admin CRUD endpoints.
type User struct {
	ID               uuid.UUID     `json:"id"`
	Email            string        `json:"email"`
	Name             string        `json:"name,omitempty"`
	Profession       string        `json:"profession,omitempty"`
	Role             string        `json:"role"`
	Status           string        `json:"status"`
	SignupDate       *time.Time    `json:"signup_date,omitempty"`
	NumLogins        int           `json:"num_logins"`
	Usage            int           `json:"usage"`
	FollowUpUsage    int           `json:"follow_up_usage"`
	FeedbackCount    int           `json:"feedback_count"`
	SourceClickCount int           `json:"sourceClickCount"`
	SavedSources     []SavedSource `json:"sources,omitempty"`
	ClickedSources   []string      `json:"clicked_sources,omitempty"`
	StripeCustomerID string        `json:"stripe_customer_id,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// SavedSource is one entry of a user's saved-sources list.
type SavedSource struct {
	Title     string    `json:"title,omitempty"`
	URL       string    `json:"url,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// SourceSave is the aggregation projection of one saved-source entry.
type SourceSave struct {
	Email     string
	CreatedAt time.Time
}

// ListFilter narrows admin user listings.
type ListFilter struct {
	Search string   // substring match over email, name, status
	Emails []string // nil: no restriction; empty: matches nobody
	Status string
	Limit  int
	Offset int
}

// ListResult is one page of users plus aggregate counters over the whole
// match set (not just the page).
type ListResult struct {
	Users         []*User `json:"users"`
	Total         int64   `json:"totalUsers"`
	TotalUsage    int64   `json:"totalUsageCount"`
	TotalFeedback int64   `json:"totalFeedbackCount"`
}

// Cohort labels recognized by the beta roster.
var CohortLabels = []string{"A", "B", "C", "D", "none"}

// KnownCohort reports whether label is one of the roster's cohort tags.
func KnownCohort(label string) bool {
	for _, l := range CohortLabels {
		if l == label {
			return true
		}
	}
	return false
}

// BetaUser is one beta-program roster entry.
type BetaUser struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name,omitempty"`
	Email        string     `json:"email"`
	Cohort       string     `json:"cohort,omitempty"`
	Status       string     `json:"status,omitempty"`
	Profession   string     `json:"profession,omitempty"`
	InviteSent   bool       `json:"invite_sent"`
	Usage        int        `json:"usage"`
	Source       string     `json:"source"`
	IsDeleted    bool       `json:"isDeleted,omitempty"`
	DateAdded    time.Time  `json:"date_added"`
	DateModified *time.Time `json:"date_modified,omitempty"`
}

// BetaStatusTypes are the roster statuses counted by the listing endpoint.
var BetaStatusTypes = []string{
	"signed_up",
	"logged_in",
	"used_hippo",
	"never_used_hippo",
	"never_signed_up",
}

// BetaListFilter narrows beta roster listings. Soft-deleted entries are
// always excluded.
type BetaListFilter struct {
	Search string
	Status string
	Limit  int
	Offset int
}
