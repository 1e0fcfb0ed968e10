package dashboard

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/bobmcallan/vire-dashboard/internal/models"
)

func loadDocument(t *testing.T) *Document {
	t.Helper()
	f, err := os.Open("testdata/dashboard.html")
	require.NoError(t, err)
	defer f.Close()

	doc, err := ParseDocument(f)
	require.NoError(t, err)
	return doc
}

func aaplSnapshot() *models.Snapshot {
	return &models.Snapshot{
		PortfolioName:    "Single",
		TotalValue:       1200,
		TotalInvested:    1000,
		TotalGain:        200,
		TotalReturnPct:   20,
		SharpeRatio:      1.234,
		AnnualVolatility: 0.183,
		MaxDrawdown:      -0.125,
		Holdings: []models.Holding{
			{Ticker: "AAPL", Company: "Apple Inc.", Shares: 10, PurchasePrice: 100, CurrentPrice: 120, CurrentValue: 1200, GainLoss: 200, GainLossPct: 20, Sector: "Technology"},
		},
		Transactions: []models.Transaction{
			{Date: "2024-01-05", Ticker: "AAPL", Action: "BUY", Shares: 5, Price: 100, Total: 500},
			{Date: "2024-01-20", Ticker: "AAPL", Action: "BUY", Shares: 5, Price: 100, Total: 500},
			{Date: "2024-02-02", Ticker: "AAPL", Action: "SELL", Shares: 1, Price: 120, Total: 120},
		},
		MetricsHistory: []models.MetricPoint{
			{Date: "2024-01-01", Value: 1000, Return: 0, Volatility: 0.15},
			{Date: "2024-02-01", Value: 1200, Return: 20, Volatility: 0.162},
		},
	}
}

// tableRows returns the cells of every row in the table body as text.
func tableRows(t *testing.T, doc *Document, tableID string) [][]*html.Node {
	t.Helper()
	body, err := doc.TableBody(tableID)
	require.NoError(t, err)

	var rows [][]*html.Node
	for tr := body.FirstChild; tr != nil; tr = tr.NextSibling {
		if tr.Type != html.ElementNode {
			continue
		}
		var cells []*html.Node
		for td := tr.FirstChild; td != nil; td = td.NextSibling {
			if td.Type == html.ElementNode {
				cells = append(cells, td)
			}
		}
		rows = append(rows, cells)
	}
	return rows
}

func textOf(t *testing.T, doc *Document, id string) string {
	t.Helper()
	n, err := doc.ElementByID(id)
	require.NoError(t, err)
	return TextContent(n)
}

type fakeBackend struct {
	drawn map[string]ChartSpec
	fail  map[string]error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{drawn: map[string]ChartSpec{}, fail: map[string]error{}}
}

func (b *fakeBackend) Draw(id string, spec ChartSpec) error {
	if err, ok := b.fail[id]; ok {
		return err
	}
	b.drawn[id] = spec
	return nil
}
