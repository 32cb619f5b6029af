package metrics

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthStatus_ServeHTTP(t *testing.T) {
	h := NewHealthStatus()
	h.SetKernelCount(12)
	h.SetStrategyLoaded(true)
	h.RecordRun("run-1")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status         string `json:"status"`
		StrategyLoaded bool   `json:"strategy_loaded"`
		KernelCount    int    `json:"kernel_count"`
		LastRunAt      string `json:"last_run_at"`
		LastRunID      string `json:"last_run_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body.Status)
	assert.True(t, body.StrategyLoaded)
	assert.Equal(t, 12, body.KernelCount)
	assert.NotEmpty(t, body.LastRunAt)
	assert.Equal(t, "run-1", body.LastRunID)
}

func TestHealthStatus_Defaults(t *testing.T) {
	h := NewHealthStatus()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	var body struct {
		StrategyLoaded bool   `json:"strategy_loaded"`
		LastRunAt      string `json:"last_run_at"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.StrategyLoaded)
	assert.Empty(t, body.LastRunAt)
}
