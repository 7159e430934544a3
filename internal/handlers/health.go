package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/fr4ncode/order-system/internal/platform/httpx"
)

// ReadinessCheck probes one dependency and returns an error when it is unavailable.
type ReadinessCheck func(ctx context.Context) error

// HealthHandlers serves the liveness and readiness endpoints.
type HealthHandlers struct {
	startTime time.Time
	checks    map[string]ReadinessCheck
}

// HealthOption customises the health handlers.
type HealthOption func(*HealthHandlers)

// WithReadinessCheck registers a named dependency probe for /readyz.
func WithReadinessCheck(name string, check ReadinessCheck) HealthOption {
	return func(h *HealthHandlers) {
		if name != "" && check != nil {
			h.checks[name] = check
		}
	}
}

// NewHealthHandlers constructs health handlers with the provided probes.
func NewHealthHandlers(opts ...HealthOption) *HealthHandlers {
	h := &HealthHandlers{
		startTime: time.Now(),
		checks:    map[string]ReadinessCheck{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// Healthz reports process liveness.
func (h *HealthHandlers) Healthz(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"uptime":    time.Since(h.startTime).String(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Readyz runs every registered dependency probe and reports aggregate readiness.
func (h *HealthHandlers) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	results := make(map[string]string, len(h.checks))
	ready := true
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			results[name] = err.Error()
			ready = false
			continue
		}
		results[name] = "ok"
	}

	status := http.StatusOK
	state := "ok"
	if !ready {
		status = http.StatusServiceUnavailable
		state = "degraded"
	}

	httpx.WriteJSON(w, status, map[string]any{
		"status": state,
		"checks": results,
	})
}
