// Package health provides health checking functionality for the
// diagnosis search service.
package health

import (
	"math"
	"net/http"
	"time"

	"github.com/idea4rc/diagnosis-search/interfaces"
)

// HealthCheckerImpl implements the interfaces.HealthChecker interface
type HealthCheckerImpl struct {
	dataStore interfaces.DataStore
}

// NewHealthChecker creates a new health checker with injected dependencies
func NewHealthChecker(dataStore interfaces.DataStore) interfaces.HealthChecker {
	return &HealthCheckerImpl{
		dataStore: dataStore,
	}
}

// HealthCheck returns HTTP-specific health data. An empty vocabulary is
// unhealthy; a stale one degrades before it fails.
func (h *HealthCheckerImpl) HealthCheck() (status string, data map[string]any, httpStatus int) {
	snap := h.dataStore.GetSnapshot()
	lastUpdate := h.dataStore.GetLastUpdated()
	isUpdating := h.dataStore.IsUpdating()

	dataAge := time.Since(lastUpdate)

	termCount := 0
	nodeCount := 0
	if snap != nil {
		termCount = len(snap.Terms)
		if snap.Index != nil {
			nodeCount = snap.Index.NodeCount()
		}
	}

	switch {
	case termCount == 0:
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable

	case dataAge > 48*time.Hour:
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable

	case dataAge > 24*time.Hour:
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable

	case isUpdating && dataAge > 6*time.Hour:
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable

	default:
		status = "healthy"
		httpStatus = http.StatusOK
	}

	data = map[string]any{
		"last_update":     lastUpdate.Format(time.RFC3339),
		"data_age_hours":  math.Round(dataAge.Hours()*10) / 10,
		"terms":           termCount,
		"hierarchy_nodes": nodeCount,
		"is_updating":     isUpdating,
	}

	return status, data, httpStatus
}

// CalculateNextUpdate returns the next scheduled reload time
func (h *HealthCheckerImpl) CalculateNextUpdate() time.Time {
	now := time.Now()

	// Reloads run at 06:00 and 18:00 local time
	sixAM := time.Date(now.Year(), now.Month(), now.Day(), 6, 0, 0, 0, now.Location())
	sixPM := time.Date(now.Year(), now.Month(), now.Day(), 18, 0, 0, 0, now.Location())

	if now.Before(sixAM) {
		return sixAM
	}

	if now.Before(sixPM) {
		return sixPM
	}

	return sixAM.AddDate(0, 0, 1)
}
