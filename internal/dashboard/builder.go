package dashboard

import (
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	common "github.com/bobmcallan/vire-dashboard/internal/common"
	"github.com/bobmcallan/vire-dashboard/internal/models"
)

// ChartBackend draws a chart specification into a named container.
type ChartBackend interface {
	Draw(containerID string, spec ChartSpec) error
}

// ChartError records the failure of a single chart.
type ChartError struct {
	Chart string
	Err   error
}

func (e *ChartError) Error() string {
	return fmt.Sprintf("chart %s: %v", e.Chart, e.Err)
}

func (e *ChartError) Unwrap() error { return e.Err }

// ChartBuilder builds every dashboard chart and submits it to a backend.
type ChartBuilder struct {
	logger *common.Logger
	charts []ChartDef
}

// NewChartBuilder creates a builder for the dashboard charts. logger may be nil.
func NewChartBuilder(logger *common.Logger) *ChartBuilder {
	return &ChartBuilder{logger: logger, charts: Charts}
}

// Build draws all charts. A failing chart does not stop the others; the
// returned error joins one *ChartError per failed chart.
func (b *ChartBuilder) Build(s *models.Snapshot, backend ChartBackend) error {
	var errs []error
	for _, def := range b.charts {
		if err := b.buildOne(def, s, backend); err != nil {
			cerr := &ChartError{Chart: def.ID, Err: err}
			if b.logger != nil {
				b.logger.Warn().Str("chart", def.ID).Str("error", err.Error()).Msg("chart skipped")
			}
			errs = append(errs, cerr)
		}
	}
	return errors.Join(errs...)
}

// Specs returns the specification of every chart that builds, keyed by id.
func (b *ChartBuilder) Specs(s *models.Snapshot) (map[string]ChartSpec, error) {
	rec := make(specRecorder)
	err := b.Build(s, rec)
	return rec, err
}

// ChartErrors unpacks the per-chart failures joined into err by Build.
func ChartErrors(err error) []*ChartError {
	if err == nil {
		return nil
	}
	var out []*ChartError
	var cerr *ChartError
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			if errors.As(e, &cerr) {
				out = append(out, cerr)
			}
		}
		return out
	}
	if errors.As(err, &cerr) {
		out = append(out, cerr)
	}
	return out
}

func (b *ChartBuilder) buildOne(def ChartDef, s *models.Snapshot, backend ChartBackend) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	spec, err := def.Spec(s)
	if err != nil {
		return err
	}
	return backend.Draw(def.ID, spec)
}

type specRecorder map[string]ChartSpec

func (r specRecorder) Draw(containerID string, spec ChartSpec) error {
	r[containerID] = spec
	return nil
}

// ChartSpecClass marks the script elements carrying chart specifications.
const ChartSpecClass = "chart-spec"

// DocumentBackend embeds chart specifications in a dashboard document as JSON
// scripts placed after their container. Drawing into a container that already
// holds a chart replaces it.
type DocumentBackend struct {
	doc *Document
}

// NewDocumentBackend creates a backend writing into doc.
func NewDocumentBackend(doc *Document) *DocumentBackend {
	return &DocumentBackend{doc: doc}
}

// Draw implements ChartBackend.
func (b *DocumentBackend) Draw(containerID string, spec ChartSpec) error {
	container, err := b.doc.ElementByID(containerID)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(spec)
	if err != nil {
		return fmt.Errorf("failed to encode chart: %w", err)
	}

	b.destroy(containerID)

	script := element(atom.Script, "type", "application/json", "class", ChartSpecClass, "data-chart", containerID)
	script.AppendChild(textNode(string(payload)))
	container.Parent.InsertBefore(script, container.NextSibling)
	return nil
}

// SetDefaults embeds the page-wide chart defaults, replacing earlier ones.
func (b *DocumentBackend) SetDefaults(d ChartDefaults) error {
	body := find(b.doc.root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.DataAtom == atom.Body
	})
	if body == nil {
		return fmt.Errorf("%w: body", ErrElementNotFound)
	}
	payload, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to encode chart defaults: %w", err)
	}
	if old, err := b.doc.ElementByID("chartDefaults"); err == nil {
		old.Parent.RemoveChild(old)
	}
	script := element(atom.Script, "type", "application/json", "id", "chartDefaults")
	script.AppendChild(textNode(string(payload)))
	body.AppendChild(script)
	return nil
}

// Specs returns the raw JSON of every embedded chart keyed by container id.
func (b *DocumentBackend) Specs() map[string]string {
	out := make(map[string]string)
	for _, n := range b.doc.ElementsByClass(ChartSpecClass) {
		out[Attr(n, "data-chart")] = TextContent(n)
	}
	return out
}

func (b *DocumentBackend) destroy(containerID string) {
	for _, n := range b.doc.ElementsByClass(ChartSpecClass) {
		if Attr(n, "data-chart") == containerID {
			n.Parent.RemoveChild(n)
		}
	}
}
