package entities

// Term represents one vocabulary entry mapping a diagnosis name to a
// standardized code. Terms are immutable after the snapshot they belong
// to has been published.
type Term struct {
	ID             string `json:"id"`
	Code           string `json:"code"`
	Name           string `json:"name"`
	NormalizedName string `json:"-"` // Pre-computed: search.Normalize(Name)
	TopoCode       string `json:"topoCode"`
	SiteID         int32  `json:"siteId,omitempty"` // 0 when no topography site resolved
}

// ParseStats counts rows skipped during ingestion. Malformed rows are
// skipped and counted, never propagated into the snapshot.
type ParseStats struct {
	VocabularyRows    int `json:"vocabularyRows"`
	SkippedShortRows  int `json:"skippedShortRows"`
	SkippedNoID       int `json:"skippedNoId"`
	SkippedNoName     int `json:"skippedNoName"`
	TopographyRows    int `json:"topographyRows"`
	SkippedNoICDO     int `json:"skippedNoIcdo"`
	UnparseableCodes  int `json:"unparseableCodes"`
}

// Skipped returns the total number of skipped vocabulary rows.
func (s *ParseStats) Skipped() int {
	return s.SkippedShortRows + s.SkippedNoID + s.SkippedNoName
}
