package services

import (
	"time"

	"go.uber.org/zap"

	"github.com/pendium/hippo-admin/internal/domain/kpi"
)

// Date-range presets accepted by the admin endpoints.
const (
	PresetLastWeek  = "last-week"
	PresetLastMonth = "last-month"
	PresetLastYear  = "last-year"
	PresetAllTime   = "all-time"
)

const calendarDate = "2006-01-02"

// RangeQuery is a caller-supplied date range: either an explicit calendar
// date pair (inclusive on both ends from the caller's point of view) or a
// named preset.
type RangeQuery struct {
	StartDate string
	EndDate   string
	Preset    string
}

// WindowResolver normalizes date ranges into half-open [start, end)
// instants in the product's single operating timezone. Every calendar
// boundary in the KPI engine comes from here; individual computations
// never do their own timezone math.
type WindowResolver struct {
	loc    *time.Location
	logger *zap.Logger
	now    func() time.Time
}

// NewWindowResolver builds a resolver for the named IANA timezone.
func NewWindowResolver(timezone string, logger *zap.Logger) (*WindowResolver, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, err
	}
	return &WindowResolver{loc: loc, logger: logger, now: time.Now}, nil
}

// Location returns the canonical timezone.
func (r *WindowResolver) Location() *time.Location {
	return r.loc
}

// Now returns the current instant in the canonical timezone.
func (r *WindowResolver) Now() time.Time {
	return r.now().In(r.loc)
}

// Resolve turns a range query into a concrete window. An explicit pair
// wins over a preset. The caller's end date is fully included: the window
// end is the midnight after it. Unknown presets fall back to last-week;
// the fallback is logged so typos in callers stay observable.
func (r *WindowResolver) Resolve(q RangeQuery) (kpi.Window, error) {
	if q.StartDate != "" || q.EndDate != "" {
		return r.resolveExplicit(q.StartDate, q.EndDate)
	}

	now := r.now().In(r.loc)
	switch q.Preset {
	case PresetLastWeek, "":
	case PresetLastMonth:
		return kpi.Window{Start: now.AddDate(0, -1, 0), End: now}, nil
	case PresetLastYear:
		return kpi.Window{Start: now.AddDate(-1, 0, 0), End: now}, nil
	case PresetAllTime:
		return kpi.Window{Start: time.Unix(0, 0).In(r.loc), End: now}, nil
	default:
		r.logger.Warn("unknown date-range preset, defaulting to last-week",
			zap.String("preset", q.Preset))
	}
	return kpi.Window{Start: now.AddDate(0, 0, -7), End: now}, nil
}

func (r *WindowResolver) resolveExplicit(startDate, endDate string) (kpi.Window, error) {
	start, err := time.ParseInLocation(calendarDate, startDate, r.loc)
	if err != nil {
		return kpi.Window{}, kpi.ErrInvalidDateRange
	}
	endDay, err := time.ParseInLocation(calendarDate, endDate, r.loc)
	if err != nil {
		return kpi.Window{}, kpi.ErrInvalidDateRange
	}
	if endDay.Before(start) {
		return kpi.Window{}, kpi.ErrInvalidDateRange
	}
	return kpi.Window{Start: start, End: endDay.AddDate(0, 0, 1)}, nil
}

// DayKey formats an instant as its calendar day in the canonical zone.
func (r *WindowResolver) DayKey(t time.Time) string {
	return t.In(r.loc).Format(calendarDate)
}
