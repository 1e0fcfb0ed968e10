package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"github.com/bobmcallan/vire-dashboard/internal/cache"
	common "github.com/bobmcallan/vire-dashboard/internal/common"
	"github.com/bobmcallan/vire-dashboard/internal/config"
	"github.com/bobmcallan/vire-dashboard/internal/dashboard"
	"github.com/bobmcallan/vire-dashboard/internal/models"
	"github.com/bobmcallan/vire-dashboard/internal/snapshot"
)

const htmlContentType = "text/html; charset=utf-8"

// DashboardHandler serves the rendered portfolio dashboard page.
type DashboardHandler struct {
	logger     *common.Logger
	templates  *template.Template
	provider   snapshot.Provider
	page       *dashboard.Page
	cache      *cache.RenderCache
	defaultTab string
	devMode    bool
}

// NewDashboardHandler creates a new dashboard handler. renderCache may be nil.
func NewDashboardHandler(logger *common.Logger, templates *template.Template, provider snapshot.Provider, renderCache *cache.RenderCache, defaultTab string, devMode bool) *DashboardHandler {
	return &DashboardHandler{
		logger:     logger,
		templates:  templates,
		provider:   provider,
		page:       dashboard.NewPage(logger),
		cache:      renderCache,
		defaultTab: defaultTab,
		devMode:    devMode,
	}
}

// ServeHTTP handles GET /. The optional tab query parameter selects the
// initially active panel.
func (h *DashboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if !RequireMethod(w, r, "GET") {
		return
	}

	tab := r.URL.Query().Get("tab")
	if tab == "" {
		tab = h.defaultTab
	}

	out, err := h.cache.GetOrRender(cache.MakeKey("page", tab), func() (*cache.Rendered, error) {
		return h.render(r.Context(), tab)
	})
	if err != nil {
		if errors.Is(err, dashboard.ErrUnknownTab) {
			http.Error(w, fmt.Sprintf("Unknown tab %q", tab), http.StatusBadRequest)
			return
		}
		if h.logger != nil {
			h.logger.Error().Str("tab", tab).Str("error", err.Error()).Msg("failed to render dashboard")
		}
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	writeRaw(w, http.StatusOK, out.ContentType, out.Body)
}

func (h *DashboardHandler) render(ctx context.Context, tab string) (*cache.Rendered, error) {
	s, err := h.provider.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	body, err := RenderPage(h.templates, h.page, s, tab, h.devMode)
	if err != nil {
		return nil, err
	}
	return &cache.Rendered{ContentType: htmlContentType, Body: body}, nil
}

// RenderPage executes the dashboard template for s and runs the render pass
// over it, returning the finished HTML. An empty tab keeps the markup default.
func RenderPage(templates *template.Template, page *dashboard.Page, s *models.Snapshot, tab string, devMode bool) ([]byte, error) {
	var shell bytes.Buffer
	if err := templates.ExecuteTemplate(&shell, "dashboard.html", pageData(s, devMode)); err != nil {
		return nil, fmt.Errorf("failed to execute dashboard template: %w", err)
	}

	doc, err := page.Render(&shell, s, tab)
	if err != nil {
		return nil, err
	}

	var body bytes.Buffer
	if err := doc.Render(&body); err != nil {
		return nil, fmt.Errorf("failed to write dashboard: %w", err)
	}
	return body.Bytes(), nil
}

func pageData(s *models.Snapshot, devMode bool) map[string]interface{} {
	return map[string]interface{}{
		"Page":          "dashboard",
		"DevMode":       devMode,
		"PortfolioName": s.DisplayName(),
		"PortalVersion": config.CurrentBuild().Version,
	}
}
