package fuzz

import "testing"

func TestRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want int
	}{
		{"identical", "sarcoma", "sarcoma", 100},
		{"both empty", "", "", 100},
		{"left empty", "", "sarcoma", 0},
		{"right empty", "sarcoma", "", 0},
		{"single substitution", "abcd", "abce", 75},
		{"disjoint", "abc", "xyz", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Ratio(tt.a, tt.b); got != tt.want {
				t.Errorf("Ratio(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestRatioSymmetric(t *testing.T) {
	a, b := "leiomyosarcoma", "myxosarcoma"
	if Ratio(a, b) != Ratio(b, a) {
		t.Errorf("Ratio is not symmetric: %d vs %d", Ratio(a, b), Ratio(b, a))
	}
}

func TestPartialRatio(t *testing.T) {
	if got := PartialRatio("lung", "carcinoma of the lung"); got != 100 {
		t.Errorf("contained substring should score 100, got %d", got)
	}

	if got := PartialRatio("", "lung"); got != 0 {
		t.Errorf("empty string should score 0, got %d", got)
	}

	// Equal lengths fall back to plain Ratio
	if got, want := PartialRatio("abcd", "abce"), Ratio("abcd", "abce"); got != want {
		t.Errorf("equal-length PartialRatio = %d, want Ratio result %d", got, want)
	}
}

func TestTokenSortRatio(t *testing.T) {
	if got := TokenSortRatio("sarcoma of uterus", "uterus of sarcoma"); got != 100 {
		t.Errorf("reordered tokens should score 100, got %d", got)
	}

	if got := TokenSortRatio("lung carcinoma", "breast carcinoma"); got == 100 {
		t.Error("different token sets should not score 100")
	}
}

func TestTokenSetRatio(t *testing.T) {
	// A token subset of the other string scores 100
	if got := TokenSetRatio("sarcoma", "sarcoma of the uterus"); got != 100 {
		t.Errorf("token subset should score 100, got %d", got)
	}

	if got := TokenSetRatio("uterus sarcoma", "sarcoma of the uterus"); got != 100 {
		t.Errorf("reordered subset should score 100, got %d", got)
	}

	// A misspelling in the distinguishing token stays high but below 100
	got := TokenSetRatio("well differentiated liposarcoma", "well differenciated liposarcoma")
	if got < 90 || got >= 100 {
		t.Errorf("near-miss should score in [90,100), got %d", got)
	}

	if got := TokenSetRatio("same text", "same text"); got != 100 {
		t.Errorf("identical strings should score 100, got %d", got)
	}
}

func TestTokenSetRatioDuplicateTokens(t *testing.T) {
	// Duplicate tokens collapse into the set, so repetition is harmless
	if got := TokenSetRatio("lung lung carcinoma", "carcinoma lung"); got != 100 {
		t.Errorf("duplicate tokens should not affect the score, got %d", got)
	}
}
