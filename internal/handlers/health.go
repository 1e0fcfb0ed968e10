package handlers

import (
	"net/http"

	common "github.com/bobmcallan/vire-dashboard/internal/common"
	"github.com/bobmcallan/vire-dashboard/internal/snapshot"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	logger   *common.Logger
	provider snapshot.Provider
}

// NewHealthHandler creates a new health handler. With a nil provider only
// liveness is reported.
func NewHealthHandler(logger *common.Logger, provider snapshot.Provider) *HealthHandler {
	return &HealthHandler{logger: logger, provider: provider}
}

// ServeHTTP handles GET /api/health. The snapshot source is loaded and
// validated; a failure reports 503 so the dashboard is not marked ready.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	if h.provider != nil {
		if _, err := h.provider.Snapshot(r.Context()); err != nil {
			if h.logger != nil {
				h.logger.Warn().Str("error", err.Error()).Msg("health check: snapshot unavailable")
			}
			WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status":   "degraded",
				"snapshot": err.Error(),
			})
			return
		}
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"snapshot": "ok",
	})
}
