// Package fuzz implements integer fuzzy string similarity scores in the
// range 0..100. All functions expect already-normalized input (see
// search.Normalize); they do no case folding of their own.
//
// The edit-distance primitive is Wagner-Fischer with substitution cost 2
// (the indel distance), so similarity is 100*(1 - dist/(len(a)+len(b))).
package fuzz

import (
	"math"
	"sort"
	"strings"

	"github.com/xrash/smetrics"
)

// Ratio returns the whole-string indel similarity of a and b.
// Two empty strings are identical (100); exactly one empty string
// shares nothing with the other (0).
func Ratio(a, b string) int {
	if a == b {
		return 100
	}
	if a == "" || b == "" {
		return 0
	}

	dist := smetrics.WagnerFischer(a, b, 1, 1, 2)
	return int(math.Round(100 * (1 - float64(dist)/float64(len(a)+len(b)))))
}

// PartialRatio returns the best Ratio of the shorter string against
// every window of its length in the longer string. A string fully
// contained in the other scores 100.
func PartialRatio(a, b string) int {
	if a == b {
		return 100
	}
	if a == "" || b == "" {
		return 0
	}

	shorter, longer := []rune(a), []rune(b)
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if len(shorter) == len(longer) {
		return Ratio(string(shorter), string(longer))
	}

	s := string(shorter)
	best := 0
	for i := 0; i+len(shorter) <= len(longer); i++ {
		window := string(longer[i : i+len(shorter)])
		if score := Ratio(s, window); score > best {
			best = score
			if best == 100 {
				break
			}
		}
	}
	return best
}

// TokenSortRatio tokenizes both strings, sorts the tokens and compares
// the space-joined results. Reordering tokens has no effect on the score.
func TokenSortRatio(a, b string) int {
	return Ratio(sortedTokens(a), sortedTokens(b))
}

// TokenSetRatio is the fuzzywuzzy token-set construction: split both
// strings into unique sorted token sets, then compare the intersection
// against each full set and the two full sets against each other,
// keeping the best score. A token subset of the other string scores 100,
// and the score is symmetric under reordering of shared tokens.
func TokenSetRatio(a, b string) int {
	if a == b {
		return 100
	}

	setA := tokenSet(a)
	setB := tokenSet(b)

	var common, diffA, diffB []string
	for _, tok := range setA {
		if contains(setB, tok) {
			common = append(common, tok)
		} else {
			diffA = append(diffA, tok)
		}
	}
	for _, tok := range setB {
		if !contains(setA, tok) {
			diffB = append(diffB, tok)
		}
	}

	t0 := strings.Join(common, " ")
	t1 := strings.TrimSpace(t0 + " " + strings.Join(diffA, " "))
	t2 := strings.TrimSpace(t0 + " " + strings.Join(diffB, " "))

	best := Ratio(t0, t1)
	if score := Ratio(t0, t2); score > best {
		best = score
	}
	if score := Ratio(t1, t2); score > best {
		best = score
	}
	return best
}

func sortedTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// tokenSet returns the sorted unique tokens of s.
func tokenSet(s string) []string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)

	out := tokens[:0]
	for i, tok := range tokens {
		if i == 0 || tokens[i-1] != tok {
			out = append(out, tok)
		}
	}
	return out
}

// contains does a binary search over a sorted token set.
func contains(set []string, tok string) bool {
	i := sort.SearchStrings(set, tok)
	return i < len(set) && set[i] == tok
}
