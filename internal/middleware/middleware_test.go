package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/paiban/weekshift/internal/config"
	"github.com/paiban/weekshift/internal/metrics"
	"github.com/paiban/weekshift/pkg/logger"
)

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = r.Context().Value(logger.RequestIDKey).(string)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Header().Get("X-Request-ID") == "" || seen != rec.Header().Get("X-Request-ID") {
		t.Errorf("generated id should be echoed and stored in context, header=%q ctx=%q", rec.Header().Get("X-Request-ID"), seen)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "req-123" {
		t.Errorf("Expected req-123, got %q", got)
	}
}

func TestLogging_RecordsMetrics(t *testing.T) {
	reg := metrics.NewRegistry()
	h := Logging(reg, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/v1/schedule/generate", nil))

	var buf strings.Builder
	reg.Expose(&buf)
	want := `weekshift_http_requests_total{method="POST",path="/api/v1/schedule/generate",status="202"} 1`
	if !strings.Contains(buf.String(), want) {
		t.Errorf("metrics missing %q:\n%s", want, buf.String())
	}
}

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SecurityHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("X-Content-Type-Options should be nosniff")
	}
	if !strings.Contains(rec.Header().Get("Content-Security-Policy"), "style-src") {
		t.Error("CSP should allow inline styles for the schedule page")
	}
}

func TestRecovery(t *testing.T) {
	h := Recovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "INTERNAL_ERROR") {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	tests := []struct {
		name   string
		cfg    config.CORSConfig
		origin string
		method string
		allow  string
		status int
	}{
		{"通配", config.CORSConfig{Enabled: true, Origins: []string{"*"}}, "https://x.example", http.MethodGet, "*", http.StatusTeapot},
		{"白名单内", config.CORSConfig{Enabled: true, Origins: []string{"https://a.example"}}, "https://a.example", http.MethodGet, "https://a.example", http.StatusTeapot},
		{"白名单外", config.CORSConfig{Enabled: true, Origins: []string{"https://a.example"}}, "https://b.example", http.MethodGet, "", http.StatusTeapot},
		{"预检请求", config.CORSConfig{Enabled: true, Origins: []string{"*"}}, "https://x.example", http.MethodOptions, "*", http.StatusOK},
		{"关闭", config.CORSConfig{Enabled: false}, "https://x.example", http.MethodGet, "", http.StatusTeapot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/", nil)
			req.Header.Set("Origin", tt.origin)
			rec := httptest.NewRecorder()
			CORS(tt.cfg, next).ServeHTTP(rec, req)

			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.allow {
				t.Errorf("Allow-Origin = %q, want %q", got, tt.allow)
			}
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
		})
	}
}

func TestRateLimiter(t *testing.T) {
	now := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2)
	rl.lastRefill = now
	rl.now = func() time.Time { return now }

	// 初始令牌为2
	if !rl.Allow() || !rl.Allow() {
		t.Fatal("first two requests should pass")
	}
	if rl.Allow() {
		t.Error("third request should be limited")
	}

	// 1秒后补充2个令牌
	now = now.Add(time.Second)
	if !rl.Allow() {
		t.Error("request after refill should pass")
	}
}

func TestRateLimit(t *testing.T) {
	rl := NewRateLimiter(1)
	rl.now = func() time.Time { return rl.lastRefill }

	h := RateLimit(rl, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("first request should pass, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("Expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "1" {
		t.Error("Retry-After should be set")
	}

	var body map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["code"] != "RATE_LIMITED" {
		t.Errorf("unexpected body: %v", body)
	}
}
