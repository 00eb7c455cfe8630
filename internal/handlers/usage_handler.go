package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pendium/hippo-admin/internal/domain/usage"
)

// UsageHandler serves the API metering listing.
type UsageHandler struct {
	repo usage.Repository
}

// NewUsageHandler creates a new usage handler.
func NewUsageHandler(repo usage.Repository) *UsageHandler {
	return &UsageHandler{repo: repo}
}

// List handles GET /api/usage.
func (h *UsageHandler) List(c *gin.Context) {
	page := intQuery(c, "page", 1)
	perPage := intQuery(c, "perPage", 50)

	entries, err := h.repo.ListEntries(c.Request.Context(), perPage, (page-1)*perPage)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "USAGE_LIST_FAILED",
			Message: "Failed to list usage entries",
			Details: err.Error(),
		})
		return
	}
	customers, err := h.repo.ListCustomers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "USAGE_LIST_FAILED",
			Message: "Failed to list API customers",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"usage":     entries,
		"customers": customers,
	})
}
