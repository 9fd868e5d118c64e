package handler

import (
	"context"
	"net/http"
	"time"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	probe func(ctx context.Context) error
}

// NewHealthHandler creates a new HealthHandler. probe reports whether the
// ledger file is reachable; nil means always ready.
func NewHealthHandler(probe func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{probe: probe}
}

// Liveness returns 200 if the service is alive.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readiness returns 200 if the service is ready to accept traffic.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if h.probe != nil {
		if err := h.probe(ctx); err != nil {
			writeError(w, http.StatusServiceUnavailable, "ledger unavailable", err.Error())
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
		"ledger": "ok",
	})
}
