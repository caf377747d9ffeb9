package config

import (
	"strings"
	"testing"
)

// clearEnv blanks every known variable so tests see only what they set
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range GetEnvVars() {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "8000" {
		t.Errorf("Port = %s, want 8000", cfg.Port)
	}
	if cfg.Address != "127.0.0.1" {
		t.Errorf("Address = %s, want 127.0.0.1", cfg.Address)
	}
	if cfg.Env != "dev" {
		t.Errorf("Env = %s, want dev", cfg.Env)
	}
	if cfg.ResultTableLimit != 500 {
		t.Errorf("ResultTableLimit = %d, want 500", cfg.ResultTableLimit)
	}
	if cfg.SearchWorkers != 0 {
		t.Errorf("SearchWorkers = %d, want 0", cfg.SearchWorkers)
	}
	if cfg.DataDir != "files" {
		t.Errorf("DataDir = %s, want files", cfg.DataDir)
	}
	if !strings.HasPrefix(cfg.VocabularySource, "https://") {
		t.Errorf("VocabularySource = %s, want an https URL", cfg.VocabularySource)
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "prod")
	t.Setenv("RESULT_TABLE_LIMIT", "100")
	t.Setenv("SEARCH_WORKERS", "8")
	t.Setenv("VOCABULARY_SOURCE", "files/local-vocab.csv")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9090" || cfg.Env != "prod" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.ResultTableLimit != 100 || cfg.SearchWorkers != 8 {
		t.Errorf("search overrides not applied: %+v", cfg)
	}
	if cfg.VocabularySource != "files/local-vocab.csv" {
		t.Errorf("VocabularySource = %s", cfg.VocabularySource)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"port not a number", "PORT", "abc"},
		{"port out of range", "PORT", "70000"},
		{"privileged port", "PORT", "80"},
		{"unknown env", "ENV", "production-ish"},
		{"unknown log level", "LOG_LEVEL", "verbose"},
		{"public address", "ADDRESS", "8.8.8.8"},
		{"bad address", "ADDRESS", "not-an-ip"},
		{"zero table limit", "RESULT_TABLE_LIMIT", "0"},
		{"huge table limit", "RESULT_TABLE_LIMIT", "20000"},
		{"negative workers", "SEARCH_WORKERS", "-1"},
		{"too many workers", "SEARCH_WORKERS", "1000"},
		{"source traversal", "VOCABULARY_SOURCE", "../outside.csv"},
		{"retention too long", "LOG_RETENTION_WEEKS", "60"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			if _, err := Load(); err == nil {
				t.Errorf("%s=%s accepted, expected an error", tt.key, tt.value)
			}
		})
	}
}

func TestValidateAddressAcceptsPrivateRanges(t *testing.T) {
	for _, addr := range []string{"127.0.0.1", "localhost", "::1", "10.0.0.5", "192.168.1.20", "172.16.0.1"} {
		if err := validateAddress(addr); err != nil {
			t.Errorf("validateAddress(%q) = %v", addr, err)
		}
	}
}

func TestGetEnvVars(t *testing.T) {
	vars := GetEnvVars()
	want := []string{"PORT", "RESULT_TABLE_LIMIT", "SEARCH_WORKERS", "VOCABULARY_SOURCE", "TOPOGRAPHY_SOURCE", "DATA_DIR"}
	for _, key := range want {
		found := false
		for _, v := range vars {
			if v == key {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("GetEnvVars missing %s", key)
		}
	}
}
