// Package termmatch maps free-text mentions of diagnosis terms to their
// codes using a JSON dictionary and fuzzy token-set matching. It backs
// the offline annotation CLI rather than the HTTP API.
package termmatch

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/idea4rc/diagnosis-search/fuzz"
	"github.com/idea4rc/diagnosis-search/search"
)

// topMatches caps how many dictionary entries are considered per lookup
const topMatches = 10

// entry is one dictionary term with its associated codes
type entry struct {
	Term       string
	Normalized string
	Codes      []string
}

// Matcher matches free text against a term-to-codes dictionary
type Matcher struct {
	entries []entry
}

// LoadDictionary reads a JSON dictionary mapping term names to either a
// single code or an array of codes
func LoadDictionary(path string) (*Matcher, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dictionary: %w", err)
	}

	var dict map[string]json.RawMessage
	if err := json.Unmarshal(raw, &dict); err != nil {
		return nil, fmt.Errorf("failed to parse dictionary: %w", err)
	}

	m := &Matcher{entries: make([]entry, 0, len(dict))}
	for term, value := range dict {
		codes, err := decodeCodes(value)
		if err != nil {
			return nil, fmt.Errorf("invalid codes for term %q: %w", term, err)
		}

		normalized := search.Normalize(term)
		if normalized == "" || len(codes) == 0 {
			continue
		}

		m.entries = append(m.entries, entry{
			Term:       term,
			Normalized: normalized,
			Codes:      codes,
		})
	}

	// Dictionary order is map order, sort for stable match ranking
	sort.Slice(m.entries, func(i, j int) bool {
		return m.entries[i].Term < m.entries[j].Term
	})

	return m, nil
}

// decodeCodes accepts both "C49.9" and ["C49.9", "C48.0"] value shapes
func decodeCodes(value json.RawMessage) ([]string, error) {
	var single string
	if err := json.Unmarshal(value, &single); err == nil {
		if single == "" {
			return nil, nil
		}
		return []string{single}, nil
	}

	var many []string
	if err := json.Unmarshal(value, &many); err != nil {
		return nil, fmt.Errorf("expected a code string or array of code strings")
	}

	codes := make([]string, 0, len(many))
	for _, code := range many {
		if code != "" {
			codes = append(codes, code)
		}
	}
	return codes, nil
}

// Size returns the number of usable dictionary entries
func (m *Matcher) Size() int {
	return len(m.entries)
}

// scored pairs a dictionary entry with its similarity to the query
type scored struct {
	entry entry
	score int
}

// Match scores the text against every dictionary term and returns the
// codes of the best matches at or above the threshold, best first.
// Codes are deduplicated preserving rank order.
func (m *Matcher) Match(text string, threshold int) []string {
	normalized := search.Normalize(text)
	if normalized == "" {
		return nil
	}

	if threshold < 0 {
		threshold = 0
	} else if threshold > 100 {
		threshold = 100
	}

	candidates := make([]scored, 0, len(m.entries))
	for _, e := range m.entries {
		score := fuzz.TokenSetRatio(normalized, e.Normalized)
		if score >= threshold {
			candidates = append(candidates, scored{entry: e, score: score})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.score != b.score {
			return a.score > b.score
		}
		aExact := a.entry.Normalized == normalized
		bExact := b.entry.Normalized == normalized
		if aExact != bExact {
			return aExact
		}
		if len(a.entry.Term) != len(b.entry.Term) {
			return len(a.entry.Term) < len(b.entry.Term)
		}
		return a.entry.Term < b.entry.Term
	})

	if len(candidates) > topMatches {
		candidates = candidates[:topMatches]
	}

	seen := make(map[string]bool)
	codes := make([]string, 0, len(candidates))
	for _, c := range candidates {
		for _, code := range c.entry.Codes {
			if !seen[code] {
				seen[code] = true
				codes = append(codes, code)
			}
		}
	}

	return codes
}
