package billing

import "errors"

var (
	// ErrProviderUnavailable is returned when the payment processor cannot
	// be reached or rejects the listing call. It is surfaced distinctly
	// from store failures so processor-backed KPIs fail independently.
	ErrProviderUnavailable = errors.New("billing provider unavailable")
)
