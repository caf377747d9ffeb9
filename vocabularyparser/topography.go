package vocabularyparser

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/idea4rc/diagnosis-search/logging"
	"github.com/idea4rc/diagnosis-search/vocabularyparser/entities"
)

// Topography reference columns: Subsite, ICD-O-3, Site, Group,
// Macrogrouping.
const (
	topoColICDO3 = 1
	topoColSite  = 2
	topoColGroup = 3
	topoColMacro = 4
)

// parseTopography reads the topography reference CSV. Rows with an
// empty ICD-O-3 cell are skipped and counted.
func parseTopography(path string, stats *entities.ParseStats) ([]entities.TopographyRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open topography file: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			logging.Warn("Failed to close topography file", "error", err)
		}
	}()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse topography csv: %w", err)
	}
	if len(records) > 0 {
		records = records[1:] // header
	}

	rows := make([]entities.TopographyRow, 0, len(records))
	for _, record := range records {
		if len(record) <= topoColICDO3 {
			stats.SkippedNoICDO++
			continue
		}

		icdo3 := strings.TrimSpace(record[topoColICDO3])
		if icdo3 == "" {
			stats.SkippedNoICDO++
			continue
		}

		row := entities.TopographyRow{ICDO3: icdo3}
		if len(record) > topoColSite {
			row.Site = strings.TrimSpace(record[topoColSite])
		}
		if len(record) > topoColGroup {
			row.Group = strings.TrimSpace(record[topoColGroup])
		}
		if len(record) > topoColMacro {
			row.Macrogrouping = strings.TrimSpace(record[topoColMacro])
		}
		rows = append(rows, row)
	}
	stats.TopographyRows = len(rows)

	return rows, nil
}
