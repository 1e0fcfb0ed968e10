package handlers

import (
	"fmt"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	common "github.com/bobmcallan/vire-dashboard/internal/common"
)

// FindPagesDir locates the pages directory.
func FindPagesDir() string {
	dirs := []string{
		"./pages",
		"../pages",
		"../../pages",
		".",
	}

	for _, dir := range dirs {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			abs, _ := filepath.Abs(dir)
			return abs
		}
	}

	return "."
}

// LoadTemplates parses the page templates and their partials from pagesDir.
func LoadTemplates(pagesDir string) (*template.Template, error) {
	templates, err := template.ParseGlob(filepath.Join(pagesDir, "*.html"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page templates in %s: %w", pagesDir, err)
	}
	if _, err := templates.ParseGlob(filepath.Join(pagesDir, "partials", "*.html")); err != nil {
		return nil, fmt.Errorf("failed to parse partials in %s: %w", pagesDir, err)
	}
	return templates, nil
}

// StaticHandler serves static files (CSS, JS) below pagesDir/static.
type StaticHandler struct {
	logger    *common.Logger
	staticDir string
}

// NewStaticHandler creates a static file handler rooted at pagesDir/static.
func NewStaticHandler(logger *common.Logger, pagesDir string) *StaticHandler {
	staticDir, _ := filepath.Abs(filepath.Join(pagesDir, "static"))
	return &StaticHandler{logger: logger, staticDir: staticDir}
}

// ServeHTTP handles GET /static/*.
func (h *StaticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/static/")
	fullPath, _ := filepath.Abs(filepath.Join(h.staticDir, path))

	// Security: prevent directory traversal
	if !strings.HasPrefix(fullPath, h.staticDir+string(filepath.Separator)) {
		http.NotFound(w, r)
		return
	}

	if info, err := os.Stat(fullPath); err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}

	http.ServeFile(w, r, fullPath)
}
