package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/taskapi/internal/api/shared"
	"github.com/phrazzld/taskapi/internal/platform/logger"
)

// Pinger reports whether the task backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	backend Pinger
	timeout time.Duration
	logger  *slog.Logger
}

// NewHealthHandler creates a HealthHandler that checks backend with the
// given timeout.
func NewHealthHandler(backend Pinger, timeout time.Duration, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		backend: backend,
		timeout: timeout,
		logger:  logger.With(slog.String("component", "health_handler")),
	}
}

// Live handles GET /health.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// Ready handles GET /health/ready.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.backend.Ping(ctx); err != nil {
		logger.FromContextOrDefault(r.Context(), h.logger).Warn("readiness check failed")
		shared.RespondWithErrorAndLog(w, r, http.StatusServiceUnavailable, "Task backend unavailable", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "ready"})
}
