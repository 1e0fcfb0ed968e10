package dashboard

import (
	"fmt"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/bobmcallan/vire-dashboard/internal/models"
)

// Element ids of the dashboard markup.
const (
	HoldingsTableID     = "holdingsTable"
	TransactionsTableID = "transactionsTable"
)

// KPISlot binds a named output element to the text it shows for a snapshot.
type KPISlot struct {
	ID     string
	Format func(*models.Snapshot) string
}

// KPISlots lists every KPI element, in page order.
var KPISlots = []KPISlot{
	{"totalValueKPI", func(s *models.Snapshot) string { return FormatCurrency(s.TotalValue) }},
	{"investedKPI", func(s *models.Snapshot) string { return FormatCurrency(s.TotalInvested) }},
	{"gainKPI", func(s *models.Snapshot) string { return FormatCurrency(s.TotalGain) }},
	{"gainPctKPI", func(s *models.Snapshot) string { return FormatReturnKPI(s.TotalReturnPct) }},
	{"sharpeKPI", func(s *models.Snapshot) string { return FormatRatio(s.SharpeRatio) }},
	{"volatilityKPI", func(s *models.Snapshot) string { return FormatFraction(s.AnnualVolatility) }},
	{"sharpe2KPI", func(s *models.Snapshot) string { return FormatRatio(s.SharpeRatio) }},
	{"drawdownKPI", func(s *models.Snapshot) string { return FormatFraction(s.MaxDrawdown) }},
	{"returnKPI", func(s *models.Snapshot) string { return FormatReturnKPI(s.TotalReturnPct) }},
}

// KPIs returns the text of every KPI slot keyed by element id.
func KPIs(s *models.Snapshot) map[string]string {
	out := make(map[string]string, len(KPISlots))
	for _, slot := range KPISlots {
		out[slot.ID] = slot.Format(s)
	}
	return out
}

// Cell is one rendered table cell: its text, an optional cell class and an
// optional class for a wrapping span.
type Cell struct {
	Text      string
	Class     string
	SpanClass string
}

// HoldingRow returns the eight cells of a holdings table row.
func HoldingRow(h models.Holding) []Cell {
	style := "negative"
	if h.IsGain() {
		style = "positive"
	}
	return []Cell{
		{Text: h.Ticker, SpanClass: "ticker"},
		{Text: h.Company},
		{Text: FormatShares(h.Shares)},
		{Text: FormatPrice(h.PurchasePrice)},
		{Text: FormatPrice(h.CurrentPrice)},
		{Text: FormatCurrency(h.CurrentValue)},
		{Text: FormatCurrency(h.GainLoss), Class: style},
		{Text: FormatSignedPercent(h.GainLossPct), Class: style},
	}
}

// TransactionRow returns the six cells of a transactions table row.
func TransactionRow(t models.Transaction) []Cell {
	action := "action-sell"
	if t.IsBuy() {
		action = "action-buy"
	}
	return []Cell{
		{Text: t.Date},
		{Text: t.Ticker, SpanClass: "ticker"},
		{Text: t.Action, SpanClass: action},
		{Text: FormatShares(t.Shares)},
		{Text: FormatPrice(t.Price)},
		{Text: FormatCurrency(t.Total)},
	}
}

// Renderer writes KPI text and table rows into a dashboard document.
type Renderer struct{}

// NewRenderer creates a Renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render validates the snapshot, then fills every KPI slot and both tables.
// Table bodies are cleared before rows are appended, so rendering the same
// snapshot twice leaves the document unchanged.
func (r *Renderer) Render(doc *Document, s *models.Snapshot) error {
	if err := s.Validate(); err != nil {
		return err
	}

	// Resolve every target before writing so a missing element leaves the
	// document untouched.
	for _, slot := range KPISlots {
		if _, err := doc.ElementByID(slot.ID); err != nil {
			return fmt.Errorf("kpi slot: %w", err)
		}
	}
	holdings, err := doc.TableBody(HoldingsTableID)
	if err != nil {
		return fmt.Errorf("holdings table: %w", err)
	}
	transactions, err := doc.TableBody(TransactionsTableID)
	if err != nil {
		return fmt.Errorf("transactions table: %w", err)
	}

	for _, slot := range KPISlots {
		if err := doc.SetText(slot.ID, slot.Format(s)); err != nil {
			return err
		}
	}

	clearChildren(holdings)
	for _, h := range s.Holdings {
		holdings.AppendChild(row(HoldingRow(h)))
	}

	clearChildren(transactions)
	for _, t := range s.Transactions {
		transactions.AppendChild(row(TransactionRow(t)))
	}

	return nil
}

func row(cells []Cell) *html.Node {
	tr := element(atom.Tr)
	for _, c := range cells {
		td := element(atom.Td)
		if c.Class != "" {
			setAttr(td, "class", c.Class)
		}
		content := textNode(c.Text)
		if c.SpanClass != "" {
			span := element(atom.Span, "class", c.SpanClass)
			span.AppendChild(content)
			content = span
		}
		td.AppendChild(content)
		tr.AppendChild(td)
	}
	return tr
}
