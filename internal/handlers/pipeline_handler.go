package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PipelineHandler relays the ingestion pipeline's status endpoint. The
// pipeline is a separate service that populates the event collections;
// this backend only ever reads those, so the dashboard polls the
// pipeline through here instead of talking to it directly.
type PipelineHandler struct {
	statusURL string
	client    *http.Client
	logger    *zap.Logger
}

// NewPipelineHandler creates a pipeline status handler. An empty URL
// means no pipeline is configured for this deployment.
func NewPipelineHandler(statusURL string, logger *zap.Logger) *PipelineHandler {
	return &PipelineHandler{
		statusURL: statusURL,
		client:    &http.Client{Timeout: 10 * time.Second},
		logger:    logger,
	}
}

// Status handles GET /api/pipeline/status.
func (h *PipelineHandler) Status(c *gin.Context) {
	if h.statusURL == "" {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Code:    "PIPELINE_NOT_CONFIGURED",
			Message: "No ingestion pipeline is configured",
		})
		return
	}

	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodGet, h.statusURL, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "PIPELINE_STATUS_FAILED",
			Message: "Failed to build pipeline status request",
			Details: err.Error(),
		})
		return
	}

	resp, err := h.client.Do(req)
	if err != nil {
		h.logger.Warn("pipeline status check failed",
			zap.String("url", h.statusURL), zap.Error(err))
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Code:    "PIPELINE_UNREACHABLE",
			Message: "Ingestion pipeline did not respond",
			Details: err.Error(),
		})
		return
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	c.JSON(http.StatusOK, gin.H{
		"reachable":  true,
		"statusCode": resp.StatusCode,
		"healthy":    resp.StatusCode >= 200 && resp.StatusCode < 300,
	})
}
