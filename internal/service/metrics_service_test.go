package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/swim-planner-api/internal/models"
)

func TestMetricsServiceRecordsGenerationOutcomes(t *testing.T) {
	m := NewMetricsService()
	m.RecordSubmission()
	m.RecordSubmission()
	m.RecordGeneration(models.GenerationCompleted, "", 3*time.Second)
	m.RecordGeneration(models.GenerationFailed, "UPSTREAM_ERROR", time.Second)
	m.RecordReaped(2)
	m.RecordReaped(0)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	assert.Contains(t, body, `class_generation_jobs_total{code="",outcome="completed"} 1`)
	assert.Contains(t, body, `class_generation_jobs_total{code="UPSTREAM_ERROR",outcome="failed"} 1`)
	assert.Contains(t, body, "class_generation_reaped_total 2")

	snap := m.Snapshot()
	assert.Equal(t, uint64(2), snap.GenerationsSubmitted)
	assert.Equal(t, uint64(1), snap.GenerationsCompleted)
	assert.Equal(t, uint64(1), snap.GenerationsFailed)
	assert.Equal(t, uint64(2), snap.GenerationsReaped)
}

func TestMetricsServiceCacheRatioAndHandler(t *testing.T) {
	m := NewMetricsService()
	m.RecordCacheOperation(true, time.Millisecond)
	m.RecordCacheOperation(false, time.Millisecond)
	m.ObserveHTTPRequest("GET", "/api/v1/class-generations/:id", 200, 5*time.Millisecond)

	snap := m.Snapshot()
	assert.Equal(t, 0.5, snap.CacheHitRatio)
	assert.Equal(t, uint64(1), snap.RequestsTotal)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "class_generation_submissions_total")
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var m *MetricsService
	m.RecordSubmission()
	m.RecordGeneration(models.GenerationFailed, "X", time.Second)
	m.RecordReaped(1)
	assert.Equal(t, MetricsSnapshot{}, m.Snapshot())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
