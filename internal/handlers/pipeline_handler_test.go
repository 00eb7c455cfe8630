package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newPipelineRouter(t *testing.T, statusURL string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/api/pipeline/status", NewPipelineHandler(statusURL, zap.NewNop()).Status)
	return router
}

func TestPipelineHandler_RelaysUpstreamStatus(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer upstream.Close()

	router := newPipelineRouter(t, upstream.URL)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/pipeline/status", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Reachable  bool `json:"reachable"`
		StatusCode int  `json:"statusCode"`
		Healthy    bool `json:"healthy"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Reachable)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, resp.Healthy)
}

func TestPipelineHandler_UpstreamErrorIsUnhealthy(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer upstream.Close()

	router := newPipelineRouter(t, upstream.URL)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/pipeline/status", nil))

	// The relay itself succeeded; the payload carries the bad news.
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"healthy":false`)
	assert.Contains(t, w.Body.String(), `"statusCode":503`)
}

func TestPipelineHandler_UnreachablePipelineIsBadGateway(t *testing.T) {
	// Grab a URL that is guaranteed dead by closing its listener first.
	upstream := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	deadURL := upstream.URL
	upstream.Close()

	router := newPipelineRouter(t, deadURL)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/pipeline/status", nil))

	assert.Equal(t, http.StatusBadGateway, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "PIPELINE_UNREACHABLE", resp.Code)
}

func TestPipelineHandler_UnconfiguredPipelineIsNotFound(t *testing.T) {
	router := newPipelineRouter(t, "")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/pipeline/status", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "PIPELINE_NOT_CONFIGURED")
}
