package vocabularyparser

import (
	"encoding/csv"
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/idea4rc/diagnosis-search/logging"
	"github.com/idea4rc/diagnosis-search/search"
	"github.com/idea4rc/diagnosis-search/vocabularyparser/entities"
)

// Diagnosis list columns. Column D carries the concept ID, which is
// also the standardized output code of this dataset.
const (
	colTopoCode = 2 // column C
	colID       = 3 // column D
	colName     = 5 // column F
	minColumns  = 6
)

// parseVocabulary reads the diagnosis list CSV into terms. The header
// row is skipped; rows that are too short or missing an ID or name are
// skipped and counted, never fail the load. Name normalization runs on
// a worker pool since it dominates load time on large vocabularies.
func parseVocabulary(path string, stats *entities.ParseStats) ([]entities.Term, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open vocabulary file: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			logging.Warn("Failed to close vocabulary file", "error", err)
		}
	}()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // ragged rows are skipped below, not fatal

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse vocabulary csv: %w", err)
	}
	if len(rows) > 0 {
		rows = rows[1:] // header
	}

	terms := make([]entities.Term, 0, len(rows))
	for _, row := range rows {
		if len(row) < minColumns {
			stats.SkippedShortRows++
			continue
		}

		id := strings.TrimSpace(row[colID])
		topo := strings.TrimSpace(row[colTopoCode])
		name := strings.TrimSpace(row[colName])

		if id == "" {
			stats.SkippedNoID++
			continue
		}
		if name == "" {
			stats.SkippedNoName++
			continue
		}

		terms = append(terms, entities.Term{
			ID:       id,
			Code:     id,
			Name:     name,
			TopoCode: topo,
		})
	}
	stats.VocabularyRows = len(terms)

	if err := normalizeTerms(terms); err != nil {
		return nil, err
	}

	return terms, nil
}

// normalizeTerms fills NormalizedName for every term using an ants
// worker pool. Each task writes its own slice index, so completion
// order does not matter.
func normalizeTerms(terms []entities.Term) error {
	pool, err := ants.NewPool(runtime.NumCPU())
	if err != nil {
		return fmt.Errorf("failed to create normalization pool: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i := range terms {
		i := i
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			terms[i].NormalizedName = search.Normalize(terms[i].Name)
		})
		if err != nil {
			wg.Done()
			return fmt.Errorf("failed to submit normalization task: %w", err)
		}
	}
	wg.Wait()

	return nil
}
