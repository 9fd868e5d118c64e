package http

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/ledgercheck/internal/adapter/http/handler"
	apimiddleware "github.com/iho/ledgercheck/internal/adapter/http/middleware"
	"github.com/iho/ledgercheck/internal/domain"
	"github.com/iho/ledgercheck/internal/infrastructure/metrics"
	"github.com/iho/ledgercheck/internal/usecase"
)

type stubLedgerService struct {
	fixes int
}

func (s *stubLedgerService) Issues(ctx context.Context) (*usecase.CheckReport, error) {
	return &usecase.CheckReport{
		Issues:    []domain.Issue{{ID: "issue-1", Check: "cross-entries", Entity: domain.LedgerRef, Label: "orphan"}},
		CheckedAt: time.Now(),
	}, nil
}

func (s *stubLedgerService) Recheck(ctx context.Context) (*usecase.CheckReport, error) {
	return s.Issues(ctx)
}

func (s *stubLedgerService) ApplyFix(ctx context.Context, issueID string, fixIndex int) (string, error) {
	s.fixes++
	return "done", nil
}

func newRouterConfig(opts ...func(*RouterConfig)) RouterConfig {
	cfg := RouterConfig{
		IssueHandler:  handler.NewIssueHandler(&stubLedgerService{}),
		HealthHandler: handler.NewHealthHandler(nil),
		Logger:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

func TestNewRouter_HealthEndpointAvailable(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /health to return 200, got %d", rec.Code)
	}
}

func TestNewRouter_IssueRoutes(t *testing.T) {
	router := NewRouter(newRouterConfig())

	testCases := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/api/v1/issues", http.StatusOK},
		{http.MethodGet, "/api/v1/issues/issue-1", http.StatusOK},
		{http.MethodPost, "/api/v1/issues/recheck", http.StatusOK},
		{http.MethodPost, "/api/v1/issues/issue-1/fixes/0", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusNotFound},
	}

	for _, tc := range testCases {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		if rec.Code != tc.status {
			t.Fatalf("%s %s: expected %d, got %d", tc.method, tc.path, tc.status, rec.Code)
		}
	}
}

func TestNewRouter_RateLimiterGuardsFixes(t *testing.T) {
	service := &stubLedgerService{}
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.IssueHandler = handler.NewIssueHandler(service)
		cfg.FixLimiter = apimiddleware.NewRateLimiter(0.001, 1)
	}))

	send := func(method, path string) int {
		req := httptest.NewRequest(method, path, nil)
		req.RemoteAddr = "1.2.3.4:1234"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := send(http.MethodPost, "/api/v1/issues/issue-1/fixes/0"); code != http.StatusOK {
		t.Fatalf("expected first fix to succeed, got %d", code)
	}
	if code := send(http.MethodPost, "/api/v1/issues/issue-1/fixes/0"); code != http.StatusTooManyRequests {
		t.Fatalf("expected second fix to be throttled, got %d", code)
	}
	if code := send(http.MethodGet, "/api/v1/issues"); code != http.StatusOK {
		t.Fatalf("expected reads to bypass the limiter, got %d", code)
	}
	if service.fixes != 1 {
		t.Fatalf("expected 1 executed fix, got %d", service.fixes)
	}
}

func TestNewRouter_MetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.Metrics = m
		cfg.MetricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	}))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/issues/issue-1", nil))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected /metrics to return 200, got %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `path="/api/v1/issues/:id"`) {
		t.Fatalf("expected normalized path in metrics output")
	}
}
