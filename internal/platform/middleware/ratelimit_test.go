package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/labstack/echo/v4"
)

func rateLimitedRequest(t *testing.T, handler echo.HandlerFunc, clientIP string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments", nil)
	if clientIP != "" {
		req.Header.Set(echo.HeaderXRealIP, clientIP)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return rec, handler(c)
}

func TestRateLimit_AllowsBurst(t *testing.T) {
	handler := RateLimit(RateLimitConfig{RequestsPerSecond: 10, BurstSize: 5})(okHandler)

	for i := 0; i < 5; i++ {
		rec, err := rateLimitedRequest(t, handler, "")
		if err != nil {
			t.Fatalf("request %d inside the burst failed: %v", i+1, err)
		}
		if got := rec.Header().Get("X-RateLimit-Limit"); got != "10" {
			t.Errorf("request %d: expected X-RateLimit-Limit 10, got %q", i+1, got)
		}
	}
}

func TestRateLimit_RejectsBeyondBurst(t *testing.T) {
	handler := RateLimit(RateLimitConfig{RequestsPerSecond: 1, BurstSize: 2})(okHandler)

	for i := 0; i < 2; i++ {
		if _, err := rateLimitedRequest(t, handler, ""); err != nil {
			t.Fatalf("request %d inside the burst failed: %v", i+1, err)
		}
	}

	rec, err := rateLimitedRequest(t, handler, "")
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 beyond the burst, got %v", err)
	}
	if rec.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Error("expected zero remaining on a limited request")
	}
	retry, convErr := strconv.Atoi(rec.Header().Get("Retry-After"))
	if convErr != nil || retry < 1 {
		t.Errorf("expected Retry-After of at least 1s, got %q", rec.Header().Get("Retry-After"))
	}
}

func TestRateLimit_BucketsArePerClient(t *testing.T) {
	handler := RateLimit(RateLimitConfig{RequestsPerSecond: 1, BurstSize: 1})(okHandler)

	if _, err := rateLimitedRequest(t, handler, "203.0.113.10"); err != nil {
		t.Fatalf("first client should pass: %v", err)
	}
	if _, err := rateLimitedRequest(t, handler, "203.0.113.10"); err == nil {
		t.Fatal("first client should be limited on its second request")
	}
	if _, err := rateLimitedRequest(t, handler, "203.0.113.20"); err != nil {
		t.Fatalf("second client has its own bucket: %v", err)
	}
}

func TestDefaultRateLimitConfig(t *testing.T) {
	cfg := DefaultRateLimitConfig()
	if cfg.RequestsPerSecond != 100 || cfg.BurstSize != 200 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestTokenBucket_ZeroRateStillAnswersRetryAfter(t *testing.T) {
	b := newTokenBucket(0, 1)
	b.allow()
	if ra := b.retryAfter(); ra != 1 {
		t.Errorf("expected retry-after 1 with no refill, got %d", ra)
	}
}

func TestBucketStore_OneBucketPerKey(t *testing.T) {
	store := newRateLimiterStore(RateLimitConfig{RequestsPerSecond: 10, BurstSize: 5})

	a := store.getBucket("10.0.0.1")
	if a == nil {
		t.Fatal("expected a bucket")
	}
	if b := store.getBucket("10.0.0.1"); a != b {
		t.Error("expected the same bucket for the same key")
	}
	if c := store.getBucket("10.0.0.2"); a == c {
		t.Error("expected a fresh bucket for a new key")
	}
}
