package validation

import (
	"reflect"
	"strings"
	"testing"

	"github.com/idea4rc/diagnosis-search/vocabularyparser/entities"
)

func TestValidateTerm(t *testing.T) {
	v := NewDataValidator()

	valid := &entities.Term{ID: "100", Code: "100", Name: "Carcinoma"}
	if err := v.ValidateTerm(valid); err != nil {
		t.Errorf("valid term rejected: %v", err)
	}

	tests := []struct {
		name string
		term *entities.Term
	}{
		{"nil term", nil},
		{"empty id", &entities.Term{Code: "100", Name: "Carcinoma"}},
		{"empty name", &entities.Term{ID: "100", Code: "100"}},
		{"empty code", &entities.Term{ID: "100", Name: "Carcinoma"}},
		{"name too long", &entities.Term{ID: "100", Code: "100", Name: strings.Repeat("a", 501)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := v.ValidateTerm(tt.term); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestValidateInput(t *testing.T) {
	v := NewDataValidator()

	valid := []string{
		"leiomyosarcoma",
		"well-differentiated liposarcoma",
		"Carcinoma, NOS",
		"Ewing's sarcoma (extraskeletal)",
		"tumeur bénigne",
		"grade 2",
	}
	for _, input := range valid {
		if err := v.ValidateInput(input); err != nil {
			t.Errorf("valid input %q rejected: %v", input, err)
		}
	}

	invalid := []struct {
		name  string
		input string
	}{
		{"too long", strings.Repeat("a", 201)},
		{"script tag", "<script>alert(1)</script>"},
		{"sql", "x union select name from terms"},
		{"path traversal", "../etc/passwd"},
		{"shell expansion", "$(rm files)"},
		{"angle bracket", "sarcoma <nos>"},
		{"semicolon", "sarcoma; drop"},
		{"unsearchable", "().+"},
		{"empty", ""},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			if err := v.ValidateInput(tt.input); err == nil {
				t.Errorf("invalid input %q accepted", tt.input)
			}
		})
	}
}

func TestValidateNodeID(t *testing.T) {
	v := NewDataValidator()

	id, err := v.ValidateNodeID(" 42 ")
	if err != nil || id != 42 {
		t.Errorf("ValidateNodeID(\" 42 \") = %d, %v", id, err)
	}

	for _, input := range []string{"", "abc", "0", "-3", "99999999999999999999"} {
		if _, err := v.ValidateNodeID(input); err == nil {
			t.Errorf("invalid node id %q accepted", input)
		}
	}
}

func TestReportDataQuality(t *testing.T) {
	v := NewDataValidator()

	terms := []entities.Term{
		{ID: "100", Name: "a", NormalizedName: "a", TopoCode: "C34.1", SiteID: 3},
		{ID: "101", Name: "b", NormalizedName: "b", TopoCode: "", SiteID: 0},
		{ID: "100", Name: "c", NormalizedName: "c", TopoCode: "C50", SiteID: 6},
		{ID: "102", Name: "+", NormalizedName: "", TopoCode: "C99", SiteID: 0},
		{ID: "103", Name: "d", NormalizedName: "d", TopoCode: "C50", SiteID: 6},
		{ID: "103", Name: "e", NormalizedName: "e", TopoCode: "C50", SiteID: 6},
	}
	stats := &entities.ParseStats{SkippedNoICDO: 2, UnparseableCodes: 1}

	report := v.ReportDataQuality(terms, stats)

	// Sorted for deterministic logs
	if want := []string{"100", "103"}; !reflect.DeepEqual(report.DuplicateIDs, want) {
		t.Errorf("DuplicateIDs = %v, want %v", report.DuplicateIDs, want)
	}
	if report.TermsWithoutTopo != 1 {
		t.Errorf("TermsWithoutTopo = %d, want 1", report.TermsWithoutTopo)
	}
	if report.UnresolvedSites != 2 {
		t.Errorf("UnresolvedSites = %d, want 2", report.UnresolvedSites)
	}
	if report.EmptyNormalizedNames != 1 {
		t.Errorf("EmptyNormalizedNames = %d, want 1", report.EmptyNormalizedNames)
	}
	if report.SkippedTopoRows != 3 {
		t.Errorf("SkippedTopoRows = %d, want 3", report.SkippedTopoRows)
	}
}

func TestReportDataQualityNilStats(t *testing.T) {
	v := NewDataValidator()
	report := v.ReportDataQuality(nil, nil)
	if report.SkippedTopoRows != 0 || len(report.DuplicateIDs) != 0 {
		t.Errorf("empty report expected, got %+v", report)
	}
}
