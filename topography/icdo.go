// Package topography builds and queries the three-level anatomical
// filter hierarchy (Macrogrouping > Group > Site) and resolves diagnosis
// topography codes against ICD-O-3 code expressions.
package topography

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Rule matches a single diagnosis topography code. A prefix rule for
// "C53" matches "C53" itself and anything under it ("C53.1"); an exact
// rule matches the code verbatim.
type Rule struct {
	Code   string
	Prefix bool
}

var (
	decimalRangeRe = regexp.MustCompile(`^C(\d+)\.(\d+)-(?:C\d+\.)?(\d+)$`)
	majorRe        = regexp.MustCompile(`^C?(\d+)$`)
	simpleRe       = regexp.MustCompile(`^C(\d+)(?:\.(\d+))?`)
)

// ExpandCode expands an ICD-O-3 code expression into match rules.
//
// Supported forms:
//
//	C10.0          one exact rule
//	C12            one prefix rule
//	C34.1-34.9     decimal range, exact rules C34.1 .. C34.9
//	C15.0-C15.9    decimal range, repeated major accepted
//	C53-C54-C55    major range, prefix rules C53 .. C55
//
// Majors are zero-padded to two digits. Unparseable expressions expand
// to zero rules; the caller counts those rows as skipped.
func ExpandCode(expr string) []Rule {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil
	}

	if m := decimalRangeRe.FindStringSubmatch(expr); m != nil {
		major, _ := strconv.Atoi(m[1])
		start, _ := strconv.Atoi(m[2])
		end, _ := strconv.Atoi(m[3])

		rules := make([]Rule, 0, end-start+1)
		for minor := start; minor <= end; minor++ {
			rules = append(rules, Rule{Code: fmt.Sprintf("C%02d.%d", major, minor)})
		}
		return rules
	}

	if strings.Contains(expr, "-") {
		parts := strings.Split(expr, "-")
		majors := make([]int, 0, len(parts))
		for _, p := range parts {
			m := majorRe.FindStringSubmatch(strings.TrimSpace(p))
			if m == nil {
				majors = nil
				break
			}
			n, _ := strconv.Atoi(m[1])
			majors = append(majors, n)
		}
		if len(majors) > 0 {
			var rules []Rule
			for major := majors[0]; major <= majors[len(majors)-1]; major++ {
				rules = append(rules, Rule{Code: fmt.Sprintf("C%02d", major), Prefix: true})
			}
			return rules
		}
	}

	if m := simpleRe.FindStringSubmatch(expr); m != nil {
		major, _ := strconv.Atoi(m[1])
		if m[2] != "" {
			return []Rule{{Code: fmt.Sprintf("C%02d.%s", major, m[2])}}
		}
		return []Rule{{Code: fmt.Sprintf("C%02d", major), Prefix: true}}
	}

	return nil
}

// Matches reports whether code satisfies any of the rules.
func Matches(code string, rules []Rule) bool {
	for _, r := range rules {
		if r.Prefix {
			if code == r.Code || strings.HasPrefix(code, r.Code+".") {
				return true
			}
		} else if code == r.Code {
			return true
		}
	}
	return false
}
