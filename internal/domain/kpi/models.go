package kpi

import (
	"time"
)

// Kind identifies one KPI computation. The set is closed: anything that
// does not parse into a Kind is rejected at the API boundary before any
// store access happens.
type Kind string

const (
	KindDailyActiveUsers      Kind = "dailyActiveUsers"
	KindAverageDailyQueries   Kind = "averageDailyQueries"
	KindTotalQueries          Kind = "totalQueries"
	KindWeeklyUserEngagement  Kind = "weeklyUserEngagement"
	KindWeeklyUserTurnover    Kind = "userTurnoverRateWeekly"
	KindMonthlyChurnRate      Kind = "churnRate"
	KindInactiveUsers         Kind = "inactiveUsers"
	KindQueriesDistribution   Kind = "queriesPerUserDistribution"
	KindTokenDistribution     Kind = "tokenUsageDistribution"
	KindRetentionCohorts      Kind = "retentionCohorts"
	KindSaveSourcesFrequency  Kind = "featureUseFrequencySaveSources"
	KindPrimaryLiteratureRate Kind = "featureUseFrequencyPrimaryLiteratureVsSource"
	KindCalculatorCount       Kind = "featureInteractionRateCalculator"
	KindFeedbackBreakdown     Kind = "feedbackBreakdown"
	KindRevenueSnapshot       Kind = "revenueSnapshot"
)

// Labels as reported in the result envelope.
var labels = map[Kind]string{
	KindDailyActiveUsers:      "Daily Active Users",
	KindAverageDailyQueries:   "Average Daily Queries Per User",
	KindTotalQueries:          "Total Queries per Day",
	KindWeeklyUserEngagement:  "Weekly User Engagement (Change in Queries per User)",
	KindWeeklyUserTurnover:    "Weekly User Turnover",
	KindMonthlyChurnRate:      "Churn Rate",
	KindInactiveUsers:         "Inactive Users",
	KindQueriesDistribution:   "Queries Per User Distribution",
	KindTokenDistribution:     "Token Usage Distribution",
	KindRetentionCohorts:      "Retention Cohorts",
	KindSaveSourcesFrequency:  "Feature Use Frequency (Save Sources)",
	KindPrimaryLiteratureRate: "Feature Use Frequency (Primary Literature or Source)",
	KindCalculatorCount:       "Raw Feature Interaction Count (Calculator Submitted)",
	KindFeedbackBreakdown:     "User Feedback Breakdown",
	KindRevenueSnapshot:       "Revenue Snapshot",
}

// kindOrder fixes the catalog ordering; the labels map is for lookups.
var kindOrder = []Kind{
	KindDailyActiveUsers,
	KindAverageDailyQueries,
	KindTotalQueries,
	KindWeeklyUserEngagement,
	KindWeeklyUserTurnover,
	KindMonthlyChurnRate,
	KindInactiveUsers,
	KindQueriesDistribution,
	KindTokenDistribution,
	KindRetentionCohorts,
	KindSaveSourcesFrequency,
	KindPrimaryLiteratureRate,
	KindCalculatorCount,
	KindFeedbackBreakdown,
	KindRevenueSnapshot,
}

// ParseKind maps a query-string KPI name to its Kind.
func ParseKind(name string) (Kind, error) {
	k := Kind(name)
	if _, ok := labels[k]; !ok {
		return "", ErrUnknownKPI
	}
	return k, nil
}

// Label returns the human-readable label for the result envelope.
func (k Kind) Label() string {
	return labels[k]
}

// Kinds returns every supported KPI name in a stable order, for the
// catalog endpoint.
func Kinds() []Kind {
	out := make([]Kind, len(kindOrder))
	copy(out, kindOrder)
	return out
}

// Window is a half-open time interval [Start, End). Events at Start are
// included; events at End are excluded.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window. Zero timestamps are
// never inside any window.
func (w Window) Contains(t time.Time) bool {
	if t.IsZero() {
		return false
	}
	return !t.Before(w.Start) && t.Before(w.End)
}

// Days returns the window length in (fractional) days.
func (w Window) Days() float64 {
	return w.End.Sub(w.Start).Hours() / 24
}

// Cohort is the resolved user-group filter. The unfiltered sentinel means
// "match everyone" and is distinct from an empty email set, which matches
// nobody.
type Cohort struct {
	unfiltered bool
	emails     map[string]struct{}
}

// Everyone returns the unfiltered cohort sentinel.
func Everyone() Cohort {
	return Cohort{unfiltered: true}
}

// CohortOf returns a cohort restricted to the given emails. An empty list
// yields a cohort that matches nobody.
func CohortOf(emails []string) Cohort {
	set := make(map[string]struct{}, len(emails))
	for _, e := range emails {
		set[e] = struct{}{}
	}
	return Cohort{emails: set}
}

// Unfiltered reports whether the cohort places no restriction on users.
func (c Cohort) Unfiltered() bool {
	return c.unfiltered
}

// Contains reports whether the cohort admits the given email.
func (c Cohort) Contains(email string) bool {
	if c.unfiltered {
		return true
	}
	_, ok := c.emails[email]
	return ok
}

// Emails returns the member list of a filtered cohort, nil when unfiltered.
func (c Cohort) Emails() []string {
	if c.unfiltered {
		return nil
	}
	out := make([]string, 0, len(c.emails))
	for e := range c.emails {
		out = append(out, e)
	}
	return out
}

// Size returns the member count of a filtered cohort.
func (c Cohort) Size() int {
	return len(c.emails)
}

// Params carries the resolved, typed inputs of one KPI computation. They
// are resolved once at the boundary and passed by value; computation
// functions never re-parse raw query parameters.
type Params struct {
	Window Window
	Cohort Cohort
	Bins   []float64
}

// Result is the envelope every KPI computation returns.
type Result struct {
	KPI  string      `json:"kpi"`
	Data interface{} `json:"data"`
}

// DailyActiveUsers is one day of the dailyActiveUsers series.
type DailyActiveUsers struct {
	Date        string `json:"date"`
	ActiveUsers int    `json:"activeUsers"`
}

// DailyQueryStats is one day of the averageDailyQueries series.
type DailyQueryStats struct {
	Date           string  `json:"date"`
	UniqueUsers    int     `json:"uniqueUsers"`
	TotalQueries   int     `json:"totalQueries"`
	AverageQueries float64 `json:"averageQueries"`
}

// DailyTotalQueries is one day of the totalQueries series.
type DailyTotalQueries struct {
	Date         string `json:"date"`
	TotalQueries int    `json:"totalQueries"`
}

// WeeklyEngagement is one bucket of the weeklyUserEngagement series.
// Week is the zero-based index of the 7-day bucket anchored at the window
// start, not an ISO calendar week.
type WeeklyEngagement struct {
	Week                   int     `json:"week"`
	TotalQueries           int     `json:"totalQueries"`
	UniqueUsers            int     `json:"uniqueUsers"`
	QueriesPerUser         float64 `json:"queriesPerUser"`
	ChangeInQueriesPerUser float64 `json:"changeInQueriesPerUser"`
	PercentageChange       float64 `json:"percentageChange"`
}

// WeeklyTurnover is one bucket of the userTurnoverRateWeekly series.
type WeeklyTurnover struct {
	Week             int     `json:"week"`
	ActiveUsers      int     `json:"activeUsers"`
	NewUsers         int     `json:"newUsers"`
	ChurnedUsers     int     `json:"churnedUsers"`
	ChangePercentage float64 `json:"changePercentage"`
	TurnoverRate     float64 `json:"turnoverRate"`
}

// MonthlyChurn is one month of the churnRate series. The rate is the
// net-flow ratio the product has always reported; it can go negative when
// the active set grows faster than it shrinks.
type MonthlyChurn struct {
	Month     int     `json:"month"`
	Year      int     `json:"year"`
	ChurnRate float64 `json:"churnRate"`
}

// InactiveUser describes one cohort member with no qualifying activity in
// the window. DaysSinceLastActive is nil for users that never had any
// event.
type InactiveUser struct {
	Email               string   `json:"email"`
	DaysSinceLastActive *float64 `json:"daysSinceLastActive"`
}

// ChurnSummary is the inactiveUsers payload.
type ChurnSummary struct {
	CohortSize    int            `json:"cohortSize"`
	InactiveCount int            `json:"inactiveCount"`
	ChurnRate     float64        `json:"churnRate"`
	ChurnPerWeek  float64        `json:"churnPerWeek"`
	InactiveUsers []InactiveUser `json:"inactiveUsers"`
}

// Bucket is one half-open bin [Lower, Upper) of a distribution. The
// overflow bucket has Overflow set and collects values below the first or
// at/above the last boundary.
type Bucket struct {
	Label    string   `json:"label"`
	Lower    float64  `json:"lower"`
	Upper    float64  `json:"upper"`
	Overflow bool     `json:"overflow,omitempty"`
	Count    int      `json:"count"`
	Members  []string `json:"members,omitempty"`
}

// Distribution is the payload of the binned KPIs.
type Distribution struct {
	Metric     string    `json:"metric"`
	Boundaries []float64 `json:"boundaries"`
	Buckets    []Bucket  `json:"buckets"`
	TotalUsers int       `json:"totalUsers"`
}

// RetentionCohort is one signup-month row of the retentionCohorts table.
type RetentionCohort struct {
	Month           string  `json:"month"`
	TotalUsers      int     `json:"totalUsers"`
	ActiveUsers     int     `json:"activeUsers"`
	RetentionRate   float64 `json:"retentionRate"`
	AvgActiveDays   float64 `json:"avgActiveDays"`
	AvgLifespanDays float64 `json:"avgLifespanDays"`
}

// DailyFeatureRate is one day of the primary-literature interaction series.
type DailyFeatureRate struct {
	Date                      string  `json:"date"`
	TotalChatLogs             int     `json:"totalChatLogs"`
	ChatLogsWithInteraction   int     `json:"chatLogsWithInteraction"`
	PercentageWithInteraction float64 `json:"percentageWithInteraction"`
}

// DailyInteractionCount is one day of a raw interaction-count series.
type DailyInteractionCount struct {
	Date             string `json:"date"`
	InteractionCount int    `json:"interactionCount"`
}

// DailySourceSaves is one day of the save-sources frequency series.
type DailySourceSaves struct {
	Date                string  `json:"date"`
	TotalSourcesSaved   int     `json:"totalSourcesSaved"`
	UniqueUsers         int     `json:"uniqueUsers"`
	AverageSourcesSaved float64 `json:"averageSourcesSaved"`
}

// FeedbackBreakdown aggregates user feedback over the window.
type FeedbackBreakdown struct {
	Total      int            `json:"total"`
	Liked      int            `json:"liked"`
	Disliked   int            `json:"disliked"`
	Complaints map[string]int `json:"complaints"`
}
