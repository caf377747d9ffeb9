package health

import (
	"net/http"
	"testing"
	"time"

	"github.com/idea4rc/diagnosis-search/data"
	"github.com/idea4rc/diagnosis-search/search"
	"github.com/idea4rc/diagnosis-search/vocabularyparser/entities"
)

func TestHealthCheckEmptyVocabulary(t *testing.T) {
	checker := NewHealthChecker(data.NewContainer())

	status, details, httpStatus := checker.HealthCheck()
	if status != "unhealthy" {
		t.Errorf("status = %s, want unhealthy", status)
	}
	if httpStatus != http.StatusServiceUnavailable {
		t.Errorf("httpStatus = %d, want 503", httpStatus)
	}
	if details["terms"] != 0 {
		t.Errorf("terms = %v, want 0", details["terms"])
	}
}

func TestHealthCheckHealthyAfterLoad(t *testing.T) {
	container := data.NewContainer()
	terms := []entities.Term{{ID: "100", Code: "100", Name: "Carcinoma"}}
	container.UpdateSnapshot(search.NewSnapshot(terms, nil))

	checker := NewHealthChecker(container)
	status, details, httpStatus := checker.HealthCheck()
	if status != "healthy" {
		t.Errorf("status = %s, want healthy", status)
	}
	if httpStatus != http.StatusOK {
		t.Errorf("httpStatus = %d, want 200", httpStatus)
	}
	if details["terms"] != 1 {
		t.Errorf("terms = %v, want 1", details["terms"])
	}
	if details["is_updating"] != false {
		t.Errorf("is_updating = %v, want false", details["is_updating"])
	}
}

func TestCalculateNextUpdate(t *testing.T) {
	checker := NewHealthChecker(data.NewContainer())

	next := checker.CalculateNextUpdate()
	now := time.Now()

	if !next.After(now) {
		t.Errorf("next update %v is not in the future", next)
	}
	if next.Sub(now) > 24*time.Hour {
		t.Errorf("next update %v is more than a day away", next)
	}
	if h := next.Hour(); h != 6 && h != 18 {
		t.Errorf("next update hour = %d, want 6 or 18", h)
	}
	if next.Minute() != 0 || next.Second() != 0 {
		t.Errorf("next update %v is not on the hour", next)
	}
}
