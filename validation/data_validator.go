// Package validation provides data validation functionality for the
// diagnosis search service.
package validation

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/idea4rc/diagnosis-search/interfaces"
	"github.com/idea4rc/diagnosis-search/search"
	"github.com/idea4rc/diagnosis-search/vocabularyparser/entities"
)

// Pre-compiled regex patterns, compiled once at package initialization
// and reused for all validations
var (
	// Query input: letters (including accented), digits, whitespace and
	// the punctuation the normalizer knows how to fold away
	inputRegex = regexp.MustCompile(`^[\p{L}\p{N}\s\-_/,\.\+'()]+$`)

	// Dangerous substrings checked before the regex; strings.Contains
	// is much cheaper than a regex for plain substring matching
	dangerousPatterns = []string{
		"<script", "</script>", "javascript:", "onload=", "onerror=",
		"eval(", "expression(", "@import",
		"union select", "drop table", "delete from", "insert into",
		"../", "..\\", "%2e%2e", "file://",
		"`", "$(", "${",
	}
)

// DataValidatorImpl implements the interfaces.DataValidator interface
type DataValidatorImpl struct{}

// NewDataValidator creates a new data validator
func NewDataValidator() interfaces.DataValidator {
	return &DataValidatorImpl{}
}

// ValidateTerm checks if a term entity is valid
func (v *DataValidatorImpl) ValidateTerm(t *entities.Term) error {
	if t == nil {
		return fmt.Errorf("term is nil")
	}

	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("empty term id")
	}

	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("empty name for term %s", t.ID)
	}

	if len(t.Name) > 500 {
		return fmt.Errorf("name too long for term %s: %d characters", t.ID, len(t.Name))
	}

	if strings.TrimSpace(t.Code) == "" {
		return fmt.Errorf("empty code for term %s", t.ID)
	}

	return nil
}

// ReportDataQuality generates a data quality report for one parsed
// generation. It never rejects the generation; callers log the report
// and publish anyway, so a noisy source degrades visibility, not
// availability.
func (v *DataValidatorImpl) ReportDataQuality(terms []entities.Term, stats *entities.ParseStats) *interfaces.DataQualityReport {
	report := &interfaces.DataQualityReport{}

	seen := make(map[string]int, len(terms))
	for i := range terms {
		seen[terms[i].ID]++

		if terms[i].TopoCode == "" {
			report.TermsWithoutTopo++
		}
		if terms[i].SiteID == 0 {
			report.UnresolvedSites++
		}
		if terms[i].NormalizedName == "" {
			report.EmptyNormalizedNames++
		}
	}

	for id, count := range seen {
		if count > 1 {
			report.DuplicateIDs = append(report.DuplicateIDs, id)
		}
	}
	sort.Strings(report.DuplicateIDs)

	if stats != nil {
		report.SkippedTopoRows = stats.SkippedNoICDO + stats.UnparseableCodes
	}

	return report
}

// ValidateInput validates user-supplied query text before it reaches
// the engine.
func (v *DataValidatorImpl) ValidateInput(input string) error {
	if len(input) > 200 {
		return fmt.Errorf("input too long: %d characters (max 200)", len(input))
	}

	lower := strings.ToLower(input)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lower, pattern) {
			return fmt.Errorf("input contains disallowed pattern")
		}
	}

	if !inputRegex.MatchString(input) {
		return fmt.Errorf("input contains invalid characters")
	}

	// Anything that normalizes to nothing can never match a term
	if search.Normalize(input) == "" {
		return fmt.Errorf("input contains no searchable characters")
	}

	return nil
}

// ValidateNodeID parses a hierarchy node ID from user input. Node IDs
// are dense positive handles assigned at build time.
func (v *DataValidatorImpl) ValidateNodeID(input string) (int32, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return 0, fmt.Errorf("empty node id")
	}

	id, err := strconv.ParseInt(input, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("node id must be a number: %w", err)
	}

	if id < 1 {
		return 0, fmt.Errorf("node id must be positive, got: %d", id)
	}

	return int32(id), nil
}
