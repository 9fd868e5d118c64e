package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type observation struct {
	method string
	path   string
	status int
}

type observerStub struct {
	seen []observation
}

func (o *observerStub) ObserveHTTP(method, path string, status int, _ time.Duration) {
	o.seen = append(o.seen, observation{method, path, status})
}

func TestMetricsMiddlewareRecordsRequest(t *testing.T) {
	testCases := []struct {
		name       string
		method     string
		path       string
		statusCode int
		expected   string
	}{
		{
			name:       "normalizes fix path",
			method:     http.MethodPost,
			path:       "/api/v1/issues/01HZX/fixes/1",
			statusCode: http.StatusConflict,
			expected:   "/api/v1/issues/:id/fixes/:index",
		},
		{
			name:       "keeps non-matching path as-is",
			method:     http.MethodGet,
			path:       "/health",
			statusCode: http.StatusOK,
			expected:   "/health",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			observer := &observerStub{}
			handlerCalled := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
				w.WriteHeader(tc.statusCode)
			})

			req := httptest.NewRequest(tc.method, tc.path, nil)
			rr := httptest.NewRecorder()

			Metrics(observer)(next).ServeHTTP(rr, req)

			if !handlerCalled {
				t.Fatalf("next handler was not invoked")
			}
			if len(observer.seen) != 1 {
				t.Fatalf("expected 1 observation, got %d", len(observer.seen))
			}
			got := observer.seen[0]
			if got.path != tc.expected || got.status != tc.statusCode || got.method != tc.method {
				t.Fatalf("unexpected observation %+v", got)
			}
		})
	}
}

func TestNormalizePath(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "issue path",
			input:    "/api/v1/issues/01HZX",
			expected: "/api/v1/issues/:id",
		},
		{
			name:     "fix path",
			input:    "/api/v1/issues/01HZX/fixes/3",
			expected: "/api/v1/issues/:id/fixes/:index",
		},
		{
			name:     "recheck",
			input:    "/api/v1/issues/recheck",
			expected: "/api/v1/issues/recheck",
		},
		{
			name:     "issue list",
			input:    "/api/v1/issues",
			expected: "/api/v1/issues",
		},
		{
			name:     "non-matching path",
			input:    "/metrics",
			expected: "/metrics",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := normalizePath(tc.input); got != tc.expected {
				t.Fatalf("normalizePath(%q) = %q, expected %q", tc.input, got, tc.expected)
			}
		})
	}
}
