package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/khanhnv2901/sitecheck/internal/domain/check"
)

type fakeScans struct {
	mu     sync.Mutex
	inputs []string
}

func (f *fakeScans) Scan(ctx context.Context, raw string) *check.Result {
	f.mu.Lock()
	f.inputs = append(f.inputs, raw)
	f.mu.Unlock()

	if raw == "" {
		return check.NewResult(raw, false, "Invalid URL provided", []check.Finding{
			check.NewFinding(check.ProbeTarget, check.SeverityFail, "invalid target: empty URL"),
		}, time.Now(), 0)
	}
	return check.NewResult("https://"+raw, true, "Secure: this website implements good security practices", []check.Finding{
		check.NewFinding(check.ProbeHTTPS, check.SeverityPass, "site uses HTTPS"),
		check.NewFinding(check.ProbeHeaders, check.SeverityFail, "missing X-Frame-Options - prevents clickjacking attacks"),
	}, time.Now(), 5*time.Millisecond)
}

func (f *fakeScans) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inputs)
}

type failingHealth struct{}

func (failingHealth) Check(ctx context.Context) error { return errors.New("disk on fire") }

func newTestServer(t *testing.T, cfg Config) *Server {
	t.Helper()
	if cfg.Logger == nil {
		cfg.Logger = zaptest.NewLogger(t)
	}
	srv := NewServer(cfg)
	t.Cleanup(srv.Close)
	return srv
}

func TestWriteJSON(t *testing.T) {
	rr := httptest.NewRecorder()
	writeJSON(rr, http.StatusCreated, map[string]string{"status": "ok"})

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rr.Code)
	}
	if got := rr.Header().Get("Content-Type"); got != "application/json" {
		t.Fatalf("expected application/json content-type, got %s", got)
	}
	if !strings.Contains(rr.Body.String(), `"status":"ok"`) {
		t.Fatalf("unexpected body: %s", rr.Body.String())
	}
}

func TestWriteErrorInternal(t *testing.T) {
	s := &Server{cfg: Config{Logger: zaptest.NewLogger(t)}}

	rr := httptest.NewRecorder()
	s.writeError(rr, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusInternalServerError, errors.New("boom"))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "internal server error") {
		t.Fatalf("expected sanitized message, got %s", rr.Body.String())
	}
	if strings.Contains(rr.Body.String(), "boom") {
		t.Fatalf("internal error leaked: %s", rr.Body.String())
	}
}

func TestWriteErrorClient(t *testing.T) {
	s := &Server{}
	rr := httptest.NewRecorder()
	s.writeError(rr, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusBadRequest, errors.New("bad input"))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "bad input") {
		t.Fatalf("expected original error message, got %s", rr.Body.String())
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, Config{})

	for _, path := range []string{"/api/v1/health", "/api/health"} {
		rr := httptest.NewRecorder()
		srv.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		if rr.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, rr.Code)
		}
		if rr.Header().Get("X-Request-ID") == "" {
			t.Errorf("%s: expected request ID header", path)
		}
	}
}

func TestHealthFailureIsSanitized(t *testing.T) {
	srv := newTestServer(t, Config{Health: failingHealth{}})

	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "disk on fire") {
		t.Fatalf("health error leaked: %s", rr.Body.String())
	}
}

func TestScanEndpoint(t *testing.T) {
	scans := &fakeScans{}
	srv := newTestServer(t, Config{Scans: scans})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/scan", strings.NewReader(`{"url":"example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var body struct {
		Target   string `json:"target"`
		Secure   bool   `json:"secure"`
		Summary  string `json:"summary"`
		Findings []struct {
			Check    string `json:"check"`
			Severity string `json:"severity"`
			Message  string `json:"message"`
		} `json:"findings"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body.Target != "https://example.com" || !body.Secure {
		t.Errorf("unexpected body %+v", body)
	}
	if len(body.Findings) != 2 || body.Findings[1].Severity != "fail" {
		t.Errorf("unexpected findings %+v", body.Findings)
	}
}

func TestScanEndpointInvalidURLStillReturnsResult(t *testing.T) {
	srv := newTestServer(t, Config{Scans: &fakeScans{}})

	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/scan", strings.NewReader(`{"url":""}`)))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Invalid URL provided") {
		t.Errorf("expected invalid verdict, got %s", rr.Body.String())
	}
}

func TestScanEndpointMalformedJSON(t *testing.T) {
	scans := &fakeScans{}
	srv := newTestServer(t, Config{Scans: scans})

	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/scan", strings.NewReader(`{"url":`)))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if scans.calls() != 0 {
		t.Errorf("malformed request must not scan")
	}
}

func TestScanEndpointOversizedBody(t *testing.T) {
	srv := newTestServer(t, Config{Scans: &fakeScans{}})

	body := `{"url":"` + strings.Repeat("a", 2<<20) + `"}`
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/scan", strings.NewReader(body)))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestScanEndpointMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, Config{Scans: &fakeScans{}})

	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/scan", nil))

	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}

func TestScanEndpointAuth(t *testing.T) {
	srv := newTestServer(t, Config{Scans: &fakeScans{}, AuthToken: "secret"})

	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/scan", strings.NewReader(`{"url":"example.com"}`)))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rr.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/scan", strings.NewReader(`{"url":"example.com"}`))
	req.Header.Set("X-Auth-Token", "secret")
	rr = httptest.NewRecorder()
	srv.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", rr.Code)
	}
}

func TestRateLimit(t *testing.T) {
	scans := &fakeScans{}
	srv := newTestServer(t, Config{Scans: scans, RateLimit: 1, RateBurst: 2})

	var codes []int
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/scan", strings.NewReader(`{"url":"example.com"}`))
		req.RemoteAddr = "203.0.113.7:4242"
		rr := httptest.NewRecorder()
		srv.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Fatalf("expected burst to be allowed, got %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after burst, got %v", codes)
	}
	if scans.calls() != 2 {
		t.Errorf("expected 2 scans, got %d", scans.calls())
	}

	// A different client has its own budget.
	req := httptest.NewRequest(http.MethodPost, "/api/v1/scan", strings.NewReader(`{"url":"example.com"}`))
	req.RemoteAddr = "198.51.100.1:4242"
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("expected independent limiter per IP, got %d", rr.Code)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name      string
		remote    string
		forwarded string
		want      string
	}{
		{"remote addr", "192.0.2.1:1234", "", "192.0.2.1"},
		{"ipv6 remote", "[2001:db8::1]:443", "", "2001:db8::1"},
		{"bare address", "192.0.2.5", "", "192.0.2.5"},
		{"forwarded header ignored", "10.0.0.1:1", "203.0.113.9, 10.0.0.2", "10.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if got := clientIP(req); got != tt.want {
				t.Errorf("clientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func scanFrom(srv *Server, remote, forwarded string) int {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/scan", strings.NewReader(`{"url":"example.com"}`))
	req.RemoteAddr = remote
	req.Header.Set("X-Forwarded-For", forwarded)
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)
	return rr.Code
}

func TestRateLimit_RotatingForwardedFor(t *testing.T) {
	scans := &fakeScans{}
	srv := newTestServer(t, Config{Scans: scans, RateLimit: 1, RateBurst: 1})

	accepted := 0
	for i := 0; i < 20; i++ {
		if scanFrom(srv, "203.0.113.7:4242", fmt.Sprintf("198.51.100.%d", i+1)) == http.StatusOK {
			accepted++
		}
	}
	if accepted != 1 {
		t.Errorf("expected one request through the limiter, got %d", accepted)
	}
	if scans.calls() != 1 {
		t.Errorf("expected 1 scan, got %d", scans.calls())
	}
}

func TestRateLimit_TrustProxy(t *testing.T) {
	scans := &fakeScans{}
	srv := newTestServer(t, Config{Scans: scans, RateLimit: 1, RateBurst: 1, TrustProxy: true})

	// Same proxy, distinct clients behind it.
	if code := scanFrom(srv, "10.0.0.1:1", "198.51.100.1"); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if code := scanFrom(srv, "10.0.0.1:1", "198.51.100.2"); code != http.StatusOK {
		t.Fatalf("expected separate budget per forwarded client, got %d", code)
	}
	if code := scanFrom(srv, "10.0.0.1:1", "198.51.100.1"); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 for repeated forwarded client, got %d", code)
	}
}

func TestCORS(t *testing.T) {
	srv := newTestServer(t, Config{Scans: &fakeScans{}, CORSOrigins: []string{"https://app.example"}})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/scan", nil)
	req.Header.Set("Origin", "https://app.example")
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204 preflight, got %d", rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example" {
		t.Errorf("unexpected allow origin %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("Origin", "https://evil.example")
	rr = httptest.NewRecorder()
	srv.ServeHTTP(rr, req)
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("expected no CORS header for unlisted origin, got %q", got)
	}
}

func TestNotFound(t *testing.T) {
	srv := newTestServer(t, Config{})

	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}
