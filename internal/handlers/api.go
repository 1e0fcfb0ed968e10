package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/bobmcallan/vire-dashboard/internal/cache"
	common "github.com/bobmcallan/vire-dashboard/internal/common"
	"github.com/bobmcallan/vire-dashboard/internal/dashboard"
	"github.com/bobmcallan/vire-dashboard/internal/models"
	"github.com/bobmcallan/vire-dashboard/internal/snapshot"
)

const jsonContentType = "application/json"

// ChartFailure reports one chart that could not be built.
type ChartFailure struct {
	Chart string `json:"chart"`
	Error string `json:"error"`
}

// ChartsResponse is the body of GET /api/dashboard/charts.
type ChartsResponse struct {
	Defaults dashboard.ChartDefaults        `json:"defaults"`
	Charts   map[string]dashboard.ChartSpec `json:"charts"`
	Failures []ChartFailure                 `json:"failures,omitempty"`
}

// ActivityResponse is the body of GET /api/dashboard/activity.
type ActivityResponse struct {
	Labels []string  `json:"labels"`
	Counts []float64 `json:"counts"`
}

// DashboardAPIHandler serves the dashboard data as JSON: KPI text, chart
// specifications, monthly activity and the raw snapshot.
type DashboardAPIHandler struct {
	logger   *common.Logger
	provider snapshot.Provider
	charts   *dashboard.ChartBuilder
	cache    *cache.RenderCache
}

// NewDashboardAPIHandler creates the JSON API handler. renderCache may be nil.
func NewDashboardAPIHandler(logger *common.Logger, provider snapshot.Provider, renderCache *cache.RenderCache) *DashboardAPIHandler {
	return &DashboardAPIHandler{
		logger:   logger,
		provider: provider,
		charts:   dashboard.NewChartBuilder(logger),
		cache:    renderCache,
	}
}

// FailuresOf converts the joined chart errors of a build into response entries.
func FailuresOf(err error) []ChartFailure {
	var out []ChartFailure
	for _, cerr := range dashboard.ChartErrors(err) {
		out = append(out, ChartFailure{Chart: cerr.Chart, Error: cerr.Err.Error()})
	}
	return out
}

// KPIsHandler handles GET /api/dashboard/kpis.
func (h *DashboardAPIHandler) KPIsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}
	h.serveCached(w, r, cache.MakeKey("kpis", "all"), func(s *models.Snapshot) (interface{}, int) {
		return map[string]interface{}{
			"portfolio_name": s.DisplayName(),
			"kpis":           dashboard.KPIs(s),
		}, http.StatusOK
	})
}

// ChartsHandler handles GET /api/dashboard/charts and
// GET /api/dashboard/charts/{id}.
func (h *DashboardAPIHandler) ChartsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/dashboard/charts"), "/")
	if id == "" {
		h.serveCached(w, r, cache.MakeKey("charts", "all"), func(s *models.Snapshot) (interface{}, int) {
			specs, err := h.charts.Specs(s)
			return ChartsResponse{
				Defaults: dashboard.DefaultChartDefaults(),
				Charts:   specs,
				Failures: FailuresOf(err),
			}, http.StatusOK
		})
		return
	}

	def, ok := dashboard.ChartByID(id)
	if !ok {
		WriteError(w, http.StatusNotFound, fmt.Sprintf("unknown chart %q", id))
		return
	}
	h.serveCached(w, r, cache.MakeKey("chart", id), func(s *models.Snapshot) (interface{}, int) {
		spec, err := def.Spec(s)
		if err != nil {
			return map[string]string{"status": "error", "chart": id, "error": err.Error()}, http.StatusUnprocessableEntity
		}
		return spec, http.StatusOK
	})
}

// ActivityHandler handles GET /api/dashboard/activity.
func (h *DashboardAPIHandler) ActivityHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}
	h.serveCached(w, r, cache.MakeKey("activity", "all"), func(s *models.Snapshot) (interface{}, int) {
		labels, counts := dashboard.MonthlyActivity(s.Transactions)
		return ActivityResponse{Labels: labels, Counts: counts}, http.StatusOK
	})
}

// SnapshotHandler handles GET /api/dashboard/snapshot.
func (h *DashboardAPIHandler) SnapshotHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}
	s, ok := h.load(w, r)
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, s)
}

func (h *DashboardAPIHandler) load(w http.ResponseWriter, r *http.Request) (*models.Snapshot, bool) {
	s, err := h.provider.Snapshot(r.Context())
	if err != nil {
		if h.logger != nil {
			h.logger.Error().Str("path", r.URL.Path).Str("error", err.Error()).Msg("failed to load snapshot")
		}
		WriteError(w, http.StatusInternalServerError, "snapshot unavailable")
		return nil, false
	}
	return s, true
}

// serveCached serves a JSON body from the render cache, building it from the
// current snapshot on a miss. Only 200 responses are cached.
func (h *DashboardAPIHandler) serveCached(w http.ResponseWriter, r *http.Request, key string, build func(*models.Snapshot) (interface{}, int)) {
	if out, ok := h.cache.Get(key); ok {
		writeRaw(w, http.StatusOK, out.ContentType, out.Body)
		return
	}

	s, ok := h.load(w, r)
	if !ok {
		return
	}

	payload, status := build(s)
	body, err := json.Marshal(payload)
	if err != nil {
		if h.logger != nil {
			h.logger.Error().Str("path", r.URL.Path).Str("error", err.Error()).Msg("failed to encode response")
		}
		WriteError(w, http.StatusInternalServerError, "failed to encode response")
		return
	}
	body = append(body, '\n')

	if status == http.StatusOK {
		h.cache.Set(key, &cache.Rendered{ContentType: jsonContentType, Body: body})
	}
	writeRaw(w, status, jsonContentType, body)
}
