package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/ashureev/bloomify/internal/agent"
	"github.com/go-chi/chi/v5"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	svc      agent.Processor
	provider string
	timeout  time.Duration
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(svc agent.Processor, provider string, timeout time.Duration) *HealthHandler {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HealthHandler{svc: svc, provider: provider, timeout: timeout}
}

// Health reports the provider, model and session store status.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	status := map[string]interface{}{
		"status":   "ok",
		"provider": h.provider,
	}
	statusCode := http.StatusOK

	var stats agent.Stats
	err := h.svc.Ping(ctx)
	if err == nil {
		stats, err = h.svc.GetStats(ctx)
	}
	if err != nil {
		slog.Error("Health check failed", "error", err)
		status["status"] = "degraded"
		status["sessions"] = "unreachable"
		statusCode = http.StatusServiceUnavailable
	} else {
		status["model"] = stats.Model
		status["sessions"] = stats.Sessions
		status["shared_sessions"] = stats.Shared
	}

	JSON(w, statusCode, status)
}

// RegisterHealth registers the health check route.
func (h *HealthHandler) RegisterHealth(r chi.Router) {
	r.Get("/health", h.Health)
}
