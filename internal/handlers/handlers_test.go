package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bobmcallan/vire-dashboard/internal/cache"
	"github.com/bobmcallan/vire-dashboard/internal/dashboard"
	"github.com/bobmcallan/vire-dashboard/internal/models"
	"github.com/bobmcallan/vire-dashboard/internal/snapshot"
)

// countingProvider wraps a provider and counts snapshot loads.
type countingProvider struct {
	inner snapshot.Provider
	calls int32
}

func (p *countingProvider) Snapshot(ctx context.Context) (*models.Snapshot, error) {
	atomic.AddInt32(&p.calls, 1)
	return p.inner.Snapshot(ctx)
}

type failingProvider struct{ err error }

func (p failingProvider) Snapshot(context.Context) (*models.Snapshot, error) {
	return nil, p.err
}

type staticProvider struct{ s *models.Snapshot }

func (p staticProvider) Snapshot(context.Context) (*models.Snapshot, error) {
	return p.s, nil
}

func loadTemplates(t *testing.T) *template.Template {
	t.Helper()
	templates, err := LoadTemplates(FindPagesDir())
	if err != nil {
		t.Fatalf("failed to load templates: %v", err)
	}
	return templates
}

func newDashboardHandler(t *testing.T, provider snapshot.Provider, c *cache.RenderCache) *DashboardHandler {
	t.Helper()
	return NewDashboardHandler(nil, loadTemplates(t), provider, c, "overview", false)
}

func get(h http.Handler, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", target, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// --- Health and version ---

func TestHealthHandler_ReturnsOK(t *testing.T) {
	handler := NewHealthHandler(nil, snapshot.SampleProvider{})

	w := get(handler, "/api/health")

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %s", body["status"])
	}
}

func TestHealthHandler_SnapshotUnavailable(t *testing.T) {
	handler := NewHealthHandler(nil, failingProvider{err: errors.New("disk gone")})

	w := get(handler, "/api/health")

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "disk gone") {
		t.Errorf("expected snapshot error in body, got %s", w.Body.String())
	}
}

func TestHealthHandler_RejectsNonGET(t *testing.T) {
	handler := NewHealthHandler(nil, nil)

	req := httptest.NewRequest("POST", "/api/health", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", w.Code)
	}
}

func TestVersionHandler_ReturnsJSON(t *testing.T) {
	w := get(NewVersionHandler(nil), "/api/version")

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", ct)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	for _, key := range []string{"version", "build", "git_commit", "go_version"} {
		if _, ok := body[key]; !ok {
			t.Errorf("expected %s field in response", key)
		}
	}
}

func TestVersionHandler_RejectsNonGET(t *testing.T) {
	req := httptest.NewRequest("DELETE", "/api/version", nil)
	w := httptest.NewRecorder()

	NewVersionHandler(nil).ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", w.Code)
	}
}

// --- Helpers ---

func TestRequireMethod_Matches(t *testing.T) {
	req := httptest.NewRequest("HEAD", "/test", nil)
	w := httptest.NewRecorder()

	if !RequireMethod(w, req, "GET") {
		t.Error("expected HEAD to satisfy GET")
	}
}

func TestRequireMethod_Mismatch(t *testing.T) {
	req := httptest.NewRequest("POST", "/test", nil)
	w := httptest.NewRecorder()

	if RequireMethod(w, req, "GET") {
		t.Error("expected RequireMethod to return false for mismatching method")
	}
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", w.Code)
	}
	if allow := w.Header().Get("Allow"); allow != "GET" {
		t.Errorf("expected Allow: GET, got %q", allow)
	}
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()

	WriteError(w, http.StatusBadRequest, "something went wrong")

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if body["error"] != "something went wrong" {
		t.Errorf("expected error message 'something went wrong', got %s", body["error"])
	}
	if body["status"] != "error" {
		t.Errorf("expected status 'error', got %s", body["status"])
	}
}

// --- Dashboard page ---

func TestDashboardHandler_RendersSample(t *testing.T) {
	w := get(newDashboardHandler(t, snapshot.SampleProvider{}, nil), "/")

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != htmlContentType {
		t.Errorf("expected %s, got %s", htmlContentType, ct)
	}

	doc, err := dashboard.ParseDocument(strings.NewReader(w.Body.String()))
	if err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}

	checks := map[string]string{
		"portfolioName": "Tech Growth Portfolio",
		"totalValueKPI": "$28,750.00",
		"gainPctKPI":    "+13.19%",
		"volatilityKPI": "18.2%",
		"drawdownKPI":   "-12.5%",
	}
	for id, want := range checks {
		n, err := doc.ElementByID(id)
		if err != nil {
			t.Errorf("missing #%s: %v", id, err)
			continue
		}
		if got := dashboard.TextContent(n); got != want {
			t.Errorf("#%s: expected %q, got %q", id, want, got)
		}
	}

	if n := len(doc.ElementsByClass(dashboard.ChartSpecClass)); n != 7 {
		t.Errorf("expected 7 embedded charts, got %d", n)
	}
	if active := dashboard.NewTabController().Active(doc); active != "overview" {
		t.Errorf("expected overview active, got %s", active)
	}
}

func TestDashboardHandler_TabQuery(t *testing.T) {
	w := get(newDashboardHandler(t, snapshot.SampleProvider{}, nil), "/?tab=transactions")

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	doc, err := dashboard.ParseDocument(strings.NewReader(w.Body.String()))
	if err != nil {
		t.Fatal(err)
	}
	if active := dashboard.NewTabController().Active(doc); active != "transactions" {
		t.Errorf("expected transactions active, got %s", active)
	}
}

func TestDashboardHandler_UnknownTab(t *testing.T) {
	w := get(newDashboardHandler(t, snapshot.SampleProvider{}, nil), "/?tab=settings")

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}

func TestDashboardHandler_SnapshotFailure(t *testing.T) {
	w := get(newDashboardHandler(t, failingProvider{err: errors.New("boom")}, nil), "/")

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "boom") {
		t.Error("internal error detail leaked to the client")
	}
}

func TestDashboardHandler_UnknownPath(t *testing.T) {
	w := get(newDashboardHandler(t, snapshot.SampleProvider{}, nil), "/nope")

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
}

func TestDashboardHandler_CachesPerTab(t *testing.T) {
	provider := &countingProvider{inner: snapshot.SampleProvider{}}
	handler := newDashboardHandler(t, provider, cache.New(time.Minute, 8))

	first := get(handler, "/")
	second := get(handler, "/")
	get(handler, "/?tab=holdings")

	if got := atomic.LoadInt32(&provider.calls); got != 2 {
		t.Errorf("expected 2 snapshot loads (overview, holdings), got %d", got)
	}
	if first.Body.String() != second.Body.String() {
		t.Error("expected cached page to be served unchanged")
	}
}

func TestRenderPage_PortfolioNameEscaped(t *testing.T) {
	s := snapshot.Sample()
	s.PortfolioName = `<b>Mine</b>`

	body, err := RenderPage(loadTemplates(t), dashboard.NewPage(nil), s, "", false)
	if err != nil {
		t.Fatalf("RenderPage failed: %v", err)
	}
	if strings.Contains(string(body), "<b>Mine</b>") {
		t.Error("portfolio name must be escaped")
	}
}

// --- JSON API ---

func TestDashboardAPI_KPIs(t *testing.T) {
	api := NewDashboardAPIHandler(nil, snapshot.SampleProvider{}, nil)

	w := get(http.HandlerFunc(api.KPIsHandler), "/api/dashboard/kpis")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var body struct {
		PortfolioName string            `json:"portfolio_name"`
		KPIs          map[string]string `json:"kpis"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if body.PortfolioName != "Tech Growth Portfolio" {
		t.Errorf("unexpected portfolio name %q", body.PortfolioName)
	}
	if body.KPIs["investedKPI"] != "$25,400.00" {
		t.Errorf("expected investedKPI $25,400.00, got %q", body.KPIs["investedKPI"])
	}
	if body.KPIs["sharpe2KPI"] != "1.42" {
		t.Errorf("expected sharpe2KPI 1.42, got %q", body.KPIs["sharpe2KPI"])
	}
}

func TestDashboardAPI_AllCharts(t *testing.T) {
	api := NewDashboardAPIHandler(nil, snapshot.SampleProvider{}, nil)

	w := get(http.HandlerFunc(api.ChartsHandler), "/api/dashboard/charts")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var body ChartsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if len(body.Charts) != 7 {
		t.Errorf("expected 7 charts, got %d", len(body.Charts))
	}
	if len(body.Failures) != 0 {
		t.Errorf("expected no failures, got %v", body.Failures)
	}
	if body.Defaults.BorderColor != dashboard.ColorGrid {
		t.Errorf("expected defaults border color %s, got %s", dashboard.ColorGrid, body.Defaults.BorderColor)
	}
}

func TestDashboardAPI_OneChart(t *testing.T) {
	api := NewDashboardAPIHandler(nil, snapshot.SampleProvider{}, nil)

	w := get(http.HandlerFunc(api.ChartsHandler), "/api/dashboard/charts/activityChart")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var spec dashboard.ChartSpec
	if err := json.Unmarshal(w.Body.Bytes(), &spec); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	want := []string{"2024-01", "2024-02", "2024-03", "2024-04", "2024-08"}
	if strings.Join(spec.Data.Labels, ",") != strings.Join(want, ",") {
		t.Errorf("expected labels %v, got %v", want, spec.Data.Labels)
	}
}

func TestDashboardAPI_UnknownChart(t *testing.T) {
	api := NewDashboardAPIHandler(nil, snapshot.SampleProvider{}, nil)

	w := get(http.HandlerFunc(api.ChartsHandler), "/api/dashboard/charts/pizzaChart")
	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
}

func TestDashboardAPI_ChartFailureReported(t *testing.T) {
	s := snapshot.Sample()
	s.Holdings = nil
	api := NewDashboardAPIHandler(nil, staticProvider{s: s}, nil)

	w := get(http.HandlerFunc(api.ChartsHandler), "/api/dashboard/charts/sectorChart")
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected status 422, got %d", w.Code)
	}

	w = get(http.HandlerFunc(api.ChartsHandler), "/api/dashboard/charts")
	var body ChartsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if len(body.Charts) != 4 || len(body.Failures) != 3 {
		t.Errorf("expected 4 charts and 3 failures, got %d and %d", len(body.Charts), len(body.Failures))
	}
}

func TestDashboardAPI_ActivityChartWithoutTransactions(t *testing.T) {
	s := snapshot.Sample()
	s.Transactions = nil
	api := NewDashboardAPIHandler(nil, staticProvider{s: s}, nil)

	w := get(http.HandlerFunc(api.ChartsHandler), "/api/dashboard/charts/activityChart")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var spec dashboard.ChartSpec
	if err := json.Unmarshal(w.Body.Bytes(), &spec); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if len(spec.Data.Labels) != 0 || len(spec.Data.Datasets) != 1 || len(spec.Data.Datasets[0].Data) != 0 {
		t.Errorf("expected an empty activity series, got %+v", spec.Data)
	}
}

func TestDashboardAPI_Activity(t *testing.T) {
	api := NewDashboardAPIHandler(nil, snapshot.SampleProvider{}, nil)

	w := get(http.HandlerFunc(api.ActivityHandler), "/api/dashboard/activity")

	var body ActivityResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if len(body.Labels) != 5 || len(body.Counts) != 5 {
		t.Errorf("expected 5 months, got %v %v", body.Labels, body.Counts)
	}
}

func TestDashboardAPI_Snapshot(t *testing.T) {
	api := NewDashboardAPIHandler(nil, snapshot.SampleProvider{}, nil)

	w := get(http.HandlerFunc(api.SnapshotHandler), "/api/dashboard/snapshot")

	var s models.Snapshot
	if err := json.Unmarshal(w.Body.Bytes(), &s); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if len(s.Holdings) != 3 || len(s.Transactions) != 5 {
		t.Errorf("unexpected snapshot shape: %d holdings, %d transactions", len(s.Holdings), len(s.Transactions))
	}
}

func TestDashboardAPI_SnapshotFailure(t *testing.T) {
	api := NewDashboardAPIHandler(nil, failingProvider{err: errors.New("nope")}, nil)

	w := get(http.HandlerFunc(api.KPIsHandler), "/api/dashboard/kpis")
	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", w.Code)
	}
}

func TestDashboardAPI_CachedResponses(t *testing.T) {
	provider := &countingProvider{inner: snapshot.SampleProvider{}}
	api := NewDashboardAPIHandler(nil, provider, cache.New(time.Minute, 8))

	get(http.HandlerFunc(api.KPIsHandler), "/api/dashboard/kpis")
	get(http.HandlerFunc(api.KPIsHandler), "/api/dashboard/kpis")

	if got := atomic.LoadInt32(&provider.calls); got != 1 {
		t.Errorf("expected one snapshot load, got %d", got)
	}
}

// --- Static files ---

func TestStaticHandler_ServesScript(t *testing.T) {
	w := get(NewStaticHandler(nil, FindPagesDir()), "/static/js/dashboard.js")

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "switchTab") {
		t.Error("expected dashboard.js to define switchTab")
	}
}

func TestStaticHandler_RejectsTraversal(t *testing.T) {
	handler := NewStaticHandler(nil, FindPagesDir())

	req := httptest.NewRequest("GET", "/static/x", nil)
	req.URL.Path = "/static/../dashboard.html"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404 for traversal, got %d", w.Code)
	}
}

func TestStaticHandler_Directory(t *testing.T) {
	w := get(NewStaticHandler(nil, FindPagesDir()), "/static/js/")

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404 for a directory, got %d", w.Code)
	}
}
