package kpi

import "errors"

var (
	// ErrUnknownKPI is returned for KPI names outside the closed Kind set.
	ErrUnknownKPI = errors.New("invalid KPI specified")

	// ErrInvalidDateRange is returned when an explicit date range cannot be
	// parsed or ends before it starts.
	ErrInvalidDateRange = errors.New("invalid date range")

	// ErrInvalidBins is returned when bucket boundaries are not strictly
	// increasing or fail to parse.
	ErrInvalidBins = errors.New("bucket boundaries must be strictly increasing numbers")
)
