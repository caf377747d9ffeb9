package topography

import (
	"reflect"
	"testing"
)

func TestExpandCode(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want []Rule
	}{
		{
			"exact code",
			"C10.0",
			[]Rule{{Code: "C10.0"}},
		},
		{
			"exact code zero-padded",
			"C9.5",
			[]Rule{{Code: "C09.5"}},
		},
		{
			"bare major is a prefix",
			"C12",
			[]Rule{{Code: "C12", Prefix: true}},
		},
		{
			"major zero-padded",
			"C7",
			[]Rule{{Code: "C07", Prefix: true}},
		},
		{
			"decimal range",
			"C34.1-34.3",
			[]Rule{{Code: "C34.1"}, {Code: "C34.2"}, {Code: "C34.3"}},
		},
		{
			"decimal range with repeated major",
			"C15.0-C15.2",
			[]Rule{{Code: "C15.0"}, {Code: "C15.1"}, {Code: "C15.2"}},
		},
		{
			"major range",
			"C53-C54-C55",
			[]Rule{
				{Code: "C53", Prefix: true},
				{Code: "C54", Prefix: true},
				{Code: "C55", Prefix: true},
			},
		},
		{
			"major range fills gaps",
			"C60-C63",
			[]Rule{
				{Code: "C60", Prefix: true},
				{Code: "C61", Prefix: true},
				{Code: "C62", Prefix: true},
				{Code: "C63", Prefix: true},
			},
		},
		{
			"whitespace trimmed",
			"  C40.2  ",
			[]Rule{{Code: "C40.2"}},
		},
		{"empty", "", nil},
		{"garbage", "not a code", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExpandCode(tt.expr)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExpandCode(%q) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestMatches(t *testing.T) {
	prefix := []Rule{{Code: "C53", Prefix: true}}
	exact := []Rule{{Code: "C34.1"}}

	tests := []struct {
		name  string
		code  string
		rules []Rule
		want  bool
	}{
		{"prefix matches itself", "C53", prefix, true},
		{"prefix matches subsite", "C53.4", prefix, true},
		{"prefix does not match longer major", "C530", prefix, false},
		{"prefix does not match other major", "C54.0", prefix, false},
		{"exact matches", "C34.1", exact, true},
		{"exact does not match subsite", "C34.10", exact, false},
		{"exact does not match major", "C34", exact, false},
		{"no rules", "C34.1", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Matches(tt.code, tt.rules); got != tt.want {
				t.Errorf("Matches(%q, %v) = %v, want %v", tt.code, tt.rules, got, tt.want)
			}
		})
	}
}
