package middleware

import (
	"net/http"
	"strings"
	"time"
)

// HTTPObserver records served requests.
type HTTPObserver interface {
	ObserveHTTP(method, path string, status int, duration time.Duration)
}

// Metrics returns a middleware that reports every request to observer.
func Metrics(observer HTTPObserver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			observer.ObserveHTTP(r.Method, normalizePath(r.URL.Path), wrapped.statusCode, time.Since(start))
		})
	}
}

// normalizePath replaces issue IDs and fix indexes with placeholders to keep
// label cardinality bounded.
//
//	/api/v1/issues/01ABC/fixes/2 -> /api/v1/issues/:id/fixes/:index
func normalizePath(path string) string {
	const prefix = "/api/v1/issues/"
	rest, ok := strings.CutPrefix(path, prefix)
	if !ok || rest == "" || rest == "recheck" {
		return path
	}

	parts := strings.Split(rest, "/")
	parts[0] = ":id"
	if len(parts) >= 3 && parts[1] == "fixes" && parts[2] != "" {
		parts[2] = ":index"
	}
	return prefix + strings.Join(parts, "/")
}
