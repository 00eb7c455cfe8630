package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pendium/hippo-admin/internal/domain/billing"
	"github.com/pendium/hippo-admin/internal/domain/kpi"
	"github.com/pendium/hippo-admin/internal/services"
)

// SnapshotSource serves KPI payloads precomputed out of band, already
// serialized as the result envelope. A nil source disables snapshot
// serving and every request computes fresh.
type SnapshotSource interface {
	CachedResult(ctx context.Context, kind kpi.Kind) ([]byte, error)
}

// KPIHandler serves the KPI computation endpoint and the KPI catalog.
type KPIHandler struct {
	kpis      *services.KPIService
	resolver  *services.WindowResolver
	cohorts   *services.CohortService
	snapshots SnapshotSource
}

// NewKPIHandler creates a new KPI handler. snapshots may be nil.
func NewKPIHandler(kpis *services.KPIService, resolver *services.WindowResolver, cohorts *services.CohortService, snapshots SnapshotSource) *KPIHandler {
	return &KPIHandler{kpis: kpis, resolver: resolver, cohorts: cohorts, snapshots: snapshots}
}

// Compute handles GET /api/kpi.
func (h *KPIHandler) Compute(c *gin.Context) {
	kind, err := kpi.ParseKind(c.Query("kpi"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "INVALID_KPI",
			Message: "Invalid KPI specified",
			Details: err.Error(),
		})
		return
	}

	if payload, ok := h.snapshot(c, kind); ok {
		c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
		return
	}

	window, err := h.resolver.Resolve(services.RangeQuery{
		StartDate: c.Query("startDate"),
		EndDate:   c.Query("endDate"),
		Preset:    c.Query("dateRange"),
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "INVALID_DATE_RANGE",
			Message: "Invalid date range",
			Details: err.Error(),
		})
		return
	}

	bins, err := parseBins(c.Query("bins"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "INVALID_BINS",
			Message: "Invalid bucket boundaries",
			Details: err.Error(),
		})
		return
	}

	cohort, err := h.cohorts.Resolve(c.Request.Context(), c.Query("cohort"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "COHORT_RESOLUTION_FAILED",
			Message: "Failed to resolve cohort",
			Details: err.Error(),
		})
		return
	}

	result, err := h.kpis.Compute(c.Request.Context(), kind, kpi.Params{
		Window: window,
		Cohort: cohort,
		Bins:   bins,
	})
	if err != nil {
		h.computeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Catalog handles GET /api/kpi/catalog: the closed set of KPI names with
// their display labels, for dashboard pickers.
func (h *KPIHandler) Catalog(c *gin.Context) {
	kinds := kpi.Kinds()
	catalog := make([]gin.H, 0, len(kinds))
	for _, kind := range kinds {
		catalog = append(catalog, gin.H{
			"kpi":   string(kind),
			"label": kind.Label(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"kpis": catalog})
}

// snapshot returns the warmed payload when the request matches the shape
// the warmer computes: trailing-month window, no cohort filter, default
// bins. Anything else, and any cache miss or read error, falls through
// to a fresh computation.
func (h *KPIHandler) snapshot(c *gin.Context, kind kpi.Kind) ([]byte, bool) {
	if h.snapshots == nil {
		return nil, false
	}
	if c.Query("startDate") != "" || c.Query("endDate") != "" || c.Query("bins") != "" {
		return nil, false
	}
	if c.Query("dateRange") != services.PresetLastMonth {
		return nil, false
	}
	switch c.Query("cohort") {
	case "", "all", "beta":
	default:
		return nil, false
	}
	payload, err := h.snapshots.CachedResult(c.Request.Context(), kind)
	if err != nil || payload == nil {
		return nil, false
	}
	return payload, true
}

// computeError maps engine failures to transport errors. A billing
// provider outage is the upstream's fault and surfaces as 502, distinct
// from our own store failures.
func (h *KPIHandler) computeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, kpi.ErrInvalidBins):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "INVALID_BINS",
			Message: "Invalid bucket boundaries",
			Details: err.Error(),
		})
	case errors.Is(err, billing.ErrProviderUnavailable):
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Code:    "PROVIDER_UNAVAILABLE",
			Message: "Billing provider unavailable",
			Details: err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "KPI_COMPUTATION_FAILED",
			Message: "Failed to compute KPI",
			Details: err.Error(),
		})
	}
}

// parseBins decodes the optional CSV boundary list. Validation of the
// boundary ordering happens in the engine; here we only require numbers.
func parseBins(raw string) ([]float64, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	bins := make([]float64, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, kpi.ErrInvalidBins
		}
		bins = append(bins, v)
	}
	return bins, nil
}
