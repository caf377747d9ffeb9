package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/idea4rc/diagnosis-search/config"
)

func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestRealIPMiddleware(t *testing.T) {
	var gotRemote string
	handler := RealIPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRemote = r.RemoteAddr
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if gotRemote != "203.0.113.7" {
		t.Errorf("RemoteAddr = %q, want first forwarded IP", gotRemote)
	}
}

func TestBlockDirectAccessMiddleware(t *testing.T) {
	t.Run("proxied request passes", func(t *testing.T) {
		var called bool
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Real-IP", "203.0.113.7")

		rec := httptest.NewRecorder()
		BlockDirectAccessMiddleware(okHandler(&called)).ServeHTTP(rec, req)
		if !called || rec.Code != http.StatusOK {
			t.Errorf("proxied request blocked: called=%v code=%d", called, rec.Code)
		}
	})

	t.Run("localhost passes", func(t *testing.T) {
		var called bool
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "127.0.0.1:54321"

		rec := httptest.NewRecorder()
		BlockDirectAccessMiddleware(okHandler(&called)).ServeHTTP(rec, req)
		if !called {
			t.Error("localhost request blocked")
		}
	})

	t.Run("direct external access blocked", func(t *testing.T) {
		var called bool
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "203.0.113.7:54321"

		rec := httptest.NewRecorder()
		BlockDirectAccessMiddleware(okHandler(&called)).ServeHTTP(rec, req)
		if called || rec.Code != http.StatusForbidden {
			t.Errorf("direct access not blocked: called=%v code=%d", called, rec.Code)
		}
	})
}

func TestRequestSizeMiddleware(t *testing.T) {
	cfg := &config.Config{MaxRequestBody: 100, MaxHeaderSize: 4096}

	t.Run("small body passes", func(t *testing.T) {
		var called bool
		req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(`{"query":"x"}`))

		rec := httptest.NewRecorder()
		RequestSizeMiddleware(cfg)(okHandler(&called)).ServeHTTP(rec, req)
		if !called {
			t.Error("small request blocked")
		}
	})

	t.Run("oversized content-length rejected", func(t *testing.T) {
		var called bool
		req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader("x"))
		req.Header.Set("Content-Length", "5000")

		rec := httptest.NewRecorder()
		RequestSizeMiddleware(cfg)(okHandler(&called)).ServeHTTP(rec, req)
		if called || rec.Code != http.StatusRequestEntityTooLarge {
			t.Errorf("oversized body not rejected: called=%v code=%d", called, rec.Code)
		}
	})

	t.Run("oversized headers rejected", func(t *testing.T) {
		var called bool
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Padding", strings.Repeat("a", 5000))

		rec := httptest.NewRecorder()
		RequestSizeMiddleware(cfg)(okHandler(&called)).ServeHTTP(rec, req)
		if called || rec.Code != http.StatusRequestHeaderFieldsTooLarge {
			t.Errorf("oversized headers not rejected: called=%v code=%d", called, rec.Code)
		}
	})
}

func TestGetTokenCost(t *testing.T) {
	tests := []struct {
		path string
		want int64
	}{
		{"/", 0},
		{"/favicon.ico", 0},
		{"/health", 5},
		{"/metrics", 5},
		{"/database", 200},
		{"/search", 50},
		{"/filters", 10},
		{"/filters/groups/3", 10},
		{"/database/2", 20},
		{"/diagnosis/8140001", 20},
		{"/unknown", 20},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, tt.path, nil)
		if got := getTokenCost(req); got != tt.want {
			t.Errorf("getTokenCost(%s) = %d, want %d", tt.path, got, tt.want)
		}
	}
}

func TestRateLimiterBuckets(t *testing.T) {
	rl := NewRateLimiter()

	a := rl.getBucket("10.0.0.1")
	b := rl.getBucket("10.0.0.2")
	if a == b {
		t.Error("different clients must get different buckets")
	}
	if again := rl.getBucket("10.0.0.1"); again != a {
		t.Error("same client must reuse its bucket")
	}
}

func TestRateLimitHandlerExhaustion(t *testing.T) {
	var called int
	handler := RateLimitHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called++
	}))

	// The /database route costs 200 tokens, the bucket caps at 1000
	req := httptest.NewRequest(http.MethodGet, "/database", nil)
	req.RemoteAddr = "198.51.100.42:1000"

	var limited bool
	for i := 0; i < 10; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code == http.StatusTooManyRequests {
			limited = true
			break
		}
	}

	if !limited {
		t.Error("rate limiter never engaged after exhausting the bucket")
	}
	if called == 0 {
		t.Error("no requests were admitted before the limit")
	}
}
