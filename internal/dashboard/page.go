package dashboard

import (
	"io"

	common "github.com/bobmcallan/vire-dashboard/internal/common"
	"github.com/bobmcallan/vire-dashboard/internal/models"
)

// Page runs one complete render pass: text and tables first, then charts,
// then the requested tab.
type Page struct {
	Renderer *Renderer
	Charts   *ChartBuilder
	Tabs     *TabController
	logger   *common.Logger
}

// NewPage wires the renderer, chart builder and tab controller. logger may be nil.
func NewPage(logger *common.Logger) *Page {
	return &Page{
		Renderer: NewRenderer(),
		Charts:   NewChartBuilder(logger),
		Tabs:     NewTabController(),
		logger:   logger,
	}
}

// Render parses markup and renders the snapshot into it. Chart failures are
// logged and leave the affected container empty; every other failure aborts
// the pass. An empty tab keeps the panel marked active in the markup.
func (p *Page) Render(markup io.Reader, s *models.Snapshot, tab string) (*Document, error) {
	doc, err := ParseDocument(markup)
	if err != nil {
		return nil, err
	}
	if err := p.Renderer.Render(doc, s); err != nil {
		return nil, err
	}

	backend := NewDocumentBackend(doc)
	if err := backend.SetDefaults(DefaultChartDefaults()); err != nil {
		return nil, err
	}
	if err := p.Charts.Build(s, backend); err != nil && p.logger != nil {
		p.logger.Warn().Str("error", err.Error()).Msg("dashboard rendered with missing charts")
	}

	if tab != "" {
		if err := p.Tabs.Activate(doc, tab); err != nil {
			return nil, err
		}
	}
	return doc, nil
}
