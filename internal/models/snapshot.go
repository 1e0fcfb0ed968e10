// Package models defines the portfolio snapshot rendered by the dashboard.
package models

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// ActionBuy is the only transaction action rendered with the buy style.
// Every other action value is treated as a sell.
const ActionBuy = "BUY"

// monthLayout is the zero-padded year-month key taken from transaction dates.
const monthLayout = "2006-01"

// Snapshot is the complete, pre-computed portfolio data for one dashboard view.
// It is read-only for the duration of a render pass.
type Snapshot struct {
	PortfolioName    string        `json:"portfolio_name" yaml:"portfolio_name"`
	TotalValue       float64       `json:"total_value" yaml:"total_value"`
	TotalInvested    float64       `json:"total_invested" yaml:"total_invested"`
	TotalGain        float64       `json:"total_gain" yaml:"total_gain"`
	TotalReturnPct   float64       `json:"total_return_pct" yaml:"total_return_pct"`
	SharpeRatio      float64       `json:"sharpe_ratio" yaml:"sharpe_ratio"`
	AnnualVolatility float64       `json:"annual_volatility" yaml:"annual_volatility"` // fraction, 0.182 = 18.2%
	MaxDrawdown      float64       `json:"max_drawdown" yaml:"max_drawdown"`           // fraction, usually negative
	Holdings         []Holding     `json:"holdings" yaml:"holdings"`
	Transactions     []Transaction `json:"transactions" yaml:"transactions"`
	MetricsHistory   []MetricPoint `json:"metrics_history" yaml:"metrics_history"`
}

// DefaultPortfolioName is shown when a snapshot carries no name.
const DefaultPortfolioName = "Portfolio"

// DisplayName returns the portfolio name for headings.
func (s *Snapshot) DisplayName() string {
	if name := strings.TrimSpace(s.PortfolioName); name != "" {
		return name
	}
	return DefaultPortfolioName
}

// Holding is a single owned position with cost basis and current market value.
type Holding struct {
	Ticker        string  `json:"ticker" yaml:"ticker"`
	Company       string  `json:"company" yaml:"company"`
	Shares        float64 `json:"shares" yaml:"shares"`
	PurchasePrice float64 `json:"purchase_price" yaml:"purchase_price"`
	CurrentPrice  float64 `json:"current_price" yaml:"current_price"`
	CurrentValue  float64 `json:"current_value" yaml:"current_value"`
	GainLoss      float64 `json:"gain_loss" yaml:"gain_loss"`
	GainLossPct   float64 `json:"gain_loss_pct" yaml:"gain_loss_pct"`
	Sector        string  `json:"sector" yaml:"sector"`
}

// IsGain reports whether the holding is rendered with the positive style.
func (h Holding) IsGain() bool {
	return h.GainLossPct >= 0
}

// Transaction is a single buy or sell recorded against the portfolio.
type Transaction struct {
	Date   string  `json:"date" yaml:"date"`
	Ticker string  `json:"ticker" yaml:"ticker"`
	Action string  `json:"action" yaml:"action"`
	Shares float64 `json:"shares" yaml:"shares"`
	Price  float64 `json:"price" yaml:"price"`
	Total  float64 `json:"total" yaml:"total"`
}

// Month returns the YYYY-MM key of the transaction date.
func (t Transaction) Month() string {
	if len(t.Date) < len(monthLayout) {
		return t.Date
	}
	return t.Date[:len(monthLayout)]
}

// IsBuy reports whether the action is exactly BUY.
func (t Transaction) IsBuy() bool {
	return t.Action == ActionBuy
}

// MetricPoint is one sample of the portfolio metrics history.
type MetricPoint struct {
	Date       string  `json:"date" yaml:"date"`
	Value      float64 `json:"value" yaml:"value"`
	Return     float64 `json:"return" yaml:"return"`
	Volatility float64 `json:"volatility" yaml:"volatility"`
}

// ValidationError lists every shape problem found in a snapshot.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid snapshot: %s", strings.Join(e.Issues, "; "))
}

// Validate checks the snapshot shape once before rendering.
// It returns a *ValidationError naming every offending field, or nil.
func (s *Snapshot) Validate() error {
	if s == nil {
		return &ValidationError{Issues: []string{"snapshot is nil"}}
	}

	var issues []string
	finite := func(name string, v float64) {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			issues = append(issues, fmt.Sprintf("%s is not a finite number", name))
		}
	}

	finite("total_value", s.TotalValue)
	finite("total_invested", s.TotalInvested)
	finite("total_gain", s.TotalGain)
	finite("total_return_pct", s.TotalReturnPct)
	finite("sharpe_ratio", s.SharpeRatio)
	finite("annual_volatility", s.AnnualVolatility)
	finite("max_drawdown", s.MaxDrawdown)

	for i, h := range s.Holdings {
		prefix := fmt.Sprintf("holdings[%d]", i)
		if strings.TrimSpace(h.Ticker) == "" {
			issues = append(issues, prefix+".ticker is empty")
		}
		finite(prefix+".shares", h.Shares)
		finite(prefix+".purchase_price", h.PurchasePrice)
		finite(prefix+".current_price", h.CurrentPrice)
		finite(prefix+".current_value", h.CurrentValue)
		finite(prefix+".gain_loss", h.GainLoss)
		finite(prefix+".gain_loss_pct", h.GainLossPct)
	}

	for i, t := range s.Transactions {
		prefix := fmt.Sprintf("transactions[%d]", i)
		if _, err := time.Parse(monthLayout, t.Month()); err != nil {
			issues = append(issues, fmt.Sprintf("%s.date %q does not start with YYYY-MM", prefix, t.Date))
		}
		finite(prefix+".shares", t.Shares)
		finite(prefix+".price", t.Price)
		finite(prefix+".total", t.Total)
	}

	for i, m := range s.MetricsHistory {
		prefix := fmt.Sprintf("metrics_history[%d]", i)
		if m.Date == "" {
			issues = append(issues, prefix+".date is empty")
		}
		finite(prefix+".value", m.Value)
		finite(prefix+".return", m.Return)
		finite(prefix+".volatility", m.Volatility)
	}

	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}
