package logging

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestGetWeekKey(t *testing.T) {
	key := getWeekKey(time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC))
	if key != "2026-W02" {
		t.Errorf("getWeekKey = %s, want 2026-W02", key)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"garbage", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestRotatingLoggerWritesPrefixedFile(t *testing.T) {
	dir := t.TempDir()
	rl := NewRotatingLogger(dir, 4, 1024*1024)
	defer rl.Close()

	if _, err := rl.Write([]byte("hello\n")); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 log file, got %d", len(entries))
	}

	name := entries[0].Name()
	if !strings.HasPrefix(name, logFilePrefix) || !strings.HasSuffix(name, ".log") {
		t.Errorf("unexpected log file name %q", name)
	}

	content, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "hello\n" {
		t.Errorf("content = %q", content)
	}
}

func TestRotatingLoggerSizeRotation(t *testing.T) {
	dir := t.TempDir()
	rl := NewRotatingLogger(dir, 4, 64) // tiny limit to force rotation
	defer rl.Close()

	for i := 0; i < 10; i++ {
		if _, err := rl.Write([]byte(fmt.Sprintf("line %d padded to some length\n", i))); err != nil {
			t.Fatalf("write %d failed: %v", i, err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) < 2 {
		t.Errorf("expected size rotation to create multiple files, got %d", len(entries))
	}
}

func TestLoggingMiddleware(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	var gotStatus int
	handler := LoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		fmt.Fprint(w, "body")
		gotStatus = http.StatusTeapot
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/search", nil))

	if gotStatus != http.StatusTeapot {
		t.Fatal("handler did not run")
	}
	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want 418", rec.Code)
	}
	if rec.Body.String() != "body" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestLoggingMiddlewareSkipsProbes(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	for _, path := range []string{"/health", "/metrics"} {
		called := false
		handler := LoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if !called {
			t.Errorf("%s: handler not called", path)
		}
	}
}

func TestResponseWriterWrapperCapture(t *testing.T) {
	rec := httptest.NewRecorder()
	ww := &responseWriterWrapper{ResponseWriter: rec, statusCode: 200}

	ww.WriteHeader(http.StatusNotFound)
	n, err := ww.Write([]byte("not found"))
	if err != nil || n != 9 {
		t.Fatalf("write = %d, %v", n, err)
	}

	if ww.statusCode != http.StatusNotFound {
		t.Errorf("statusCode = %d, want 404", ww.statusCode)
	}
	if ww.bytesWritten != 9 {
		t.Errorf("bytesWritten = %d, want 9", ww.bytesWritten)
	}
}
