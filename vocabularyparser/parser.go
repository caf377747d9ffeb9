package vocabularyparser

import (
	"fmt"
	"os"
	"sync"

	"github.com/idea4rc/diagnosis-search/interfaces"
	"github.com/idea4rc/diagnosis-search/logging"
	"github.com/idea4rc/diagnosis-search/vocabularyparser/entities"
)

// Compile-time check to ensure VocabularyParser implements Parser
var _ interfaces.Parser = (*VocabularyParser)(nil)

// VocabularyParser implements the Parser interface. Sources may be
// http(s) URLs or local paths; fetched copies land in DataDir.
type VocabularyParser struct {
	vocabularySource string
	topographySource string
	dataDir          string
}

// NewVocabularyParser creates a parser for the two configured sources.
func NewVocabularyParser(vocabularySource, topographySource, dataDir string) *VocabularyParser {
	return &VocabularyParser{
		vocabularySource: vocabularySource,
		topographySource: topographySource,
		dataDir:          dataDir,
	}
}

// ParseAll fetches and parses both sources concurrently and returns the
// raw terms (normalized names filled), the topography rows, and skip
// counters. It fails only on total source failure; malformed rows are
// skipped and counted.
func (p *VocabularyParser) ParseAll() ([]entities.Term, []entities.TopographyRow, *entities.ParseStats, error) {
	if err := os.MkdirAll(p.dataDir, 0750); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	stats := &entities.ParseStats{}
	var (
		wg       sync.WaitGroup
		terms    []entities.Term
		rows     []entities.TopographyRow
		termsErr error
		rowsErr  error
	)

	// The two stats halves are disjoint, so the goroutines can share
	// one ParseStats without coordination.
	wg.Add(2)
	go func() {
		defer wg.Done()
		path, err := fetchFile(p.dataDir, "diagnosis-codes", p.vocabularySource)
		if err != nil {
			termsErr = err
			return
		}
		terms, termsErr = parseVocabulary(path, stats)
	}()
	go func() {
		defer wg.Done()
		path, err := fetchFile(p.dataDir, "topography", p.topographySource)
		if err != nil {
			rowsErr = err
			return
		}
		rows, rowsErr = parseTopography(path, stats)
	}()
	wg.Wait()

	if termsErr != nil {
		return nil, nil, nil, fmt.Errorf("vocabulary ingestion failed: %w", termsErr)
	}
	if rowsErr != nil {
		return nil, nil, nil, fmt.Errorf("topography ingestion failed: %w", rowsErr)
	}

	if skipped := stats.Skipped(); skipped > 0 {
		logging.Warn("Skipped malformed vocabulary rows",
			"total", skipped,
			"short_rows", stats.SkippedShortRows,
			"missing_id", stats.SkippedNoID,
			"missing_name", stats.SkippedNoName,
		)
	}
	if stats.SkippedNoICDO > 0 {
		logging.Warn("Skipped topography rows without ICD-O-3 code", "total", stats.SkippedNoICDO)
	}

	logging.Info("Vocabulary sources parsed",
		"terms", len(terms),
		"topography_rows", len(rows),
	)

	return terms, rows, stats, nil
}
