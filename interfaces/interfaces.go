// Package interfaces defines core abstractions for the diagnosis search
// service to improve testability, maintainability, and separation of
// concerns.
package interfaces

import (
	"time"

	"github.com/idea4rc/diagnosis-search/search"
	"github.com/idea4rc/diagnosis-search/vocabularyparser/entities"
)

// DataQualityReport provides a summary of data quality issues found in
// one ingested vocabulary generation.
type DataQualityReport struct {
	DuplicateIDs         []string // term IDs appearing more than once
	TermsWithoutTopo     int      // terms with an empty topography code
	UnresolvedSites      int      // terms whose code matched no hierarchy rule
	SkippedTopoRows      int      // topography rows missing names or with bad codes
	EmptyNormalizedNames int      // terms whose name normalizes to nothing
}

// DataStore defines the contract for snapshot storage. It provides
// thread-safe access to the current vocabulary snapshot with atomic
// swaps for zero-downtime reloads.
type DataStore interface {
	GetSnapshot() *search.Snapshot
	GetLastUpdated() time.Time
	IsUpdating() bool
	GetServerStartTime() time.Time
	SetServerStartTime(t time.Time)

	UpdateSnapshot(snap *search.Snapshot)
	BeginUpdate() bool
	EndUpdate()
}

// Parser defines the contract for ingesting the diagnosis vocabulary
// and topography reference from external sources.
type Parser interface {
	// ParseAll downloads and parses both sources, returning the raw
	// terms (normalized names filled, site IDs not yet resolved), the
	// topography rows, and skip counters.
	ParseAll() ([]entities.Term, []entities.TopographyRow, *entities.ParseStats, error)
}

// Scheduler defines the contract for scheduled reloads and staleness
// monitoring.
type Scheduler interface {
	Start() error
	Stop()
}

// HealthChecker defines the contract for health check reporting.
type HealthChecker interface {
	// HealthCheck returns current system health status
	HealthCheck() (status string, details map[string]any, httpStatus int)

	// CalculateNextUpdate returns the next scheduled reload time
	CalculateNextUpdate() time.Time
}

// DataValidator defines the contract for data validation operations.
type DataValidator interface {
	// ValidateTerm checks if a term entity is valid
	ValidateTerm(t *entities.Term) error

	// ReportDataQuality generates a quality report for one parsed
	// generation before it is published
	ReportDataQuality(terms []entities.Term, stats *entities.ParseStats) *DataQualityReport

	// ValidateInput validates user input strings
	ValidateInput(input string) error

	// ValidateNodeID parses and validates a hierarchy node ID
	ValidateNodeID(input string) (int32, error)
}
