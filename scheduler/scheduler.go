// Package scheduler provides automated vocabulary reloads and staleness
// monitoring for the diagnosis search service. It handles cron-based
// reloads and coordinates snapshot swaps with the data container using
// dependency injection.
package scheduler

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/idea4rc/diagnosis-search/interfaces"
	"github.com/idea4rc/diagnosis-search/logging"
	"github.com/idea4rc/diagnosis-search/metrics"
	"github.com/idea4rc/diagnosis-search/search"
	"github.com/idea4rc/diagnosis-search/topography"
	"github.com/idea4rc/diagnosis-search/validation"
)

// Compile-time check to ensure Scheduler implements Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

// Scheduler handles vocabulary reloads and staleness monitoring using
// dependency injection
type Scheduler struct {
	dataStore interfaces.DataStore
	parser    interfaces.Parser
	scheduler *gocron.Scheduler
}

// NewScheduler creates a new scheduler instance with injected dependencies
func NewScheduler(dataStore interfaces.DataStore, parser interfaces.Parser) *Scheduler {
	return &Scheduler{
		dataStore: dataStore,
		parser:    parser,
		scheduler: gocron.NewScheduler(time.Local),
	}
}

// Start performs the initial load, then schedules reloads at 06:00 and
// 18:00 daily and starts the staleness watchdog.
func (s *Scheduler) Start() error {
	if err := s.reload(); err != nil {
		logging.Error("Failed to perform initial vocabulary load", "error", err)
		return fmt.Errorf("initial vocabulary load failed: %w", err)
	}

	_, err := s.scheduler.Every(1).Days().At("06:00;18:00").Do(func() {
		if err := s.reload(); err != nil {
			logging.Error("Failed to reload vocabulary", "error", err)
		}
	})

	if err != nil {
		logging.Error("Failed to schedule reloads", "error", err)
		return fmt.Errorf("failed to schedule reloads: %w", err)
	}

	s.scheduler.StartAsync()

	s.startStalenessMonitoring()

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// reload performs one complete ingest-validate-build-swap cycle. The
// new snapshot is built entirely off to the side; readers keep the old
// one until the single atomic swap at the end.
func (s *Scheduler) reload() error {
	// Prevent concurrent reloads
	if !s.dataStore.BeginUpdate() {
		logging.Info("Reload already in progress, skipping...")
		return nil
	}
	defer s.dataStore.EndUpdate()

	logging.Info(fmt.Sprintf("Starting vocabulary reload at: %s", time.Now().Format(time.RFC3339)))
	start := time.Now()

	terms, rows, stats, err := s.parser.ParseAll()
	if err != nil {
		logging.Error("Failed to parse vocabulary sources", "error", err)
		return fmt.Errorf("failed to parse vocabulary sources: %w", err)
	}

	index, buildStats := topography.Build(terms, rows)
	stats.UnparseableCodes = buildStats.RowsSkipped

	validator := validation.NewDataValidator()
	report := validator.ReportDataQuality(terms, stats)

	if len(report.DuplicateIDs) > 0 {
		logging.Warn("Duplicate term IDs detected",
			"total", len(report.DuplicateIDs),
			"id_list", report.DuplicateIDs,
		)
	}

	if report.TermsWithoutTopo > 0 {
		logging.Warn("Terms without a topography code",
			"count", report.TermsWithoutTopo,
		)
	}

	// Unresolved terms stay searchable by text, they are only invisible
	// to topography-filtered queries
	if buildStats.UnresolvedTerms > 0 {
		logging.Warn("Terms with no resolved topography site",
			"count", buildStats.UnresolvedTerms,
		)
	}

	if report.SkippedTopoRows > 0 {
		logging.Warn("Topography rows skipped during build",
			"count", report.SkippedTopoRows,
		)
	}

	// Atomic swap (zero downtime replacement)
	s.dataStore.UpdateSnapshot(search.NewSnapshot(terms, index))

	metrics.VocabularyTerms.Set(float64(len(terms)))
	metrics.VocabularyLastReload.SetToCurrentTime()

	elapsed := time.Since(start)
	logging.Info("Vocabulary reload completed",
		"duration", elapsed.String(),
		"term_count", len(terms),
		"hierarchy_nodes", index.NodeCount(),
	)

	return nil
}

// startStalenessMonitoring warns when the snapshot has not been
// replaced for more than a full reload cycle.
func (s *Scheduler) startStalenessMonitoring() {
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			lastUpdate := s.dataStore.GetLastUpdated()
			if time.Since(lastUpdate) > 25*time.Hour {
				logging.Warn("Vocabulary hasn't been reloaded in over 25 hours")
			}
		}
	}()
}
