package dashboard

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/bobmcallan/vire-dashboard/internal/models"
)

// ChartType is the Chart.js chart type tag.
type ChartType string

const (
	ChartDoughnut ChartType = "doughnut"
	ChartPie      ChartType = "pie"
	ChartLine     ChartType = "line"
	ChartBar      ChartType = "bar"
)

// Palette colors shared by every chart.
const (
	ColorPrimary   = "#1a73e8"
	ColorSuccess   = "#27ae60"
	ColorDanger    = "#e74c3c"
	ColorWarning   = "#f39c12"
	ColorSecondary = "#34495e"
	ColorMuted     = "#7f8c8d"
	ColorText      = "#2c3e50"
	ColorGrid      = "#e0e6ed"
)

// slicePalette cycles over pie and doughnut slices.
var slicePalette = []string{ColorPrimary, ColorSecondary, ColorMuted}

// ChartSpec is a complete Chart.js configuration.
type ChartSpec struct {
	Type    ChartType    `json:"type"`
	Data    ChartData    `json:"data"`
	Options ChartOptions `json:"options"`
}

// ChartData holds the labels and the datasets aligned to them.
type ChartData struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// Dataset is one series. BackgroundColor is a single color or one per point.
type Dataset struct {
	Label                string      `json:"label,omitempty"`
	Data                 []float64   `json:"data"`
	BackgroundColor      interface{} `json:"backgroundColor,omitempty"`
	BorderColor          string      `json:"borderColor,omitempty"`
	BorderWidth          int         `json:"borderWidth,omitempty"`
	BorderRadius         int         `json:"borderRadius,omitempty"`
	BorderSkipped        *bool       `json:"borderSkipped,omitempty"`
	Tension              float64     `json:"tension,omitempty"`
	Fill                 bool        `json:"fill,omitempty"`
	PointRadius          int         `json:"pointRadius,omitempty"`
	PointHoverRadius     int         `json:"pointHoverRadius,omitempty"`
	PointBackgroundColor string      `json:"pointBackgroundColor,omitempty"`
}

// ChartOptions is the shared configuration bundle.
type ChartOptions struct {
	Responsive          bool            `json:"responsive"`
	MaintainAspectRatio bool            `json:"maintainAspectRatio"`
	Plugins             Plugins         `json:"plugins"`
	Scales              map[string]Axis `json:"scales,omitempty"`
}

type Plugins struct {
	Legend  Legend  `json:"legend"`
	Tooltip Tooltip `json:"tooltip"`
}

type Legend struct {
	Position string       `json:"position"`
	Labels   LegendLabels `json:"labels"`
}

type LegendLabels struct {
	Padding int    `json:"padding"`
	Font    Font   `json:"font"`
	Color   string `json:"color"`
}

type Font struct {
	Size   int    `json:"size"`
	Weight string `json:"weight,omitempty"`
}

type Tooltip struct {
	BackgroundColor string `json:"backgroundColor"`
	Padding         int    `json:"padding"`
	TitleFont       Font   `json:"titleFont"`
	BodyFont        Font   `json:"bodyFont"`
	BorderColor     string `json:"borderColor"`
	BorderWidth     int    `json:"borderWidth"`
}

type Axis struct {
	BeginAtZero bool  `json:"beginAtZero"`
	Ticks       Ticks `json:"ticks"`
}

type Ticks struct {
	Color string `json:"color"`
}

// ChartDefaults are the global Chart.js defaults applied once per page.
type ChartDefaults struct {
	FontFamily  string `json:"fontFamily"`
	Color       string `json:"color"`
	BorderColor string `json:"borderColor"`
}

// DefaultChartDefaults returns the page-wide chart defaults.
func DefaultChartDefaults() ChartDefaults {
	return ChartDefaults{
		FontFamily:  "-apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto",
		Color:       ColorMuted,
		BorderColor: ColorGrid,
	}
}

func baseOptions() ChartOptions {
	return ChartOptions{
		Responsive:          true,
		MaintainAspectRatio: true,
		Plugins: Plugins{
			Legend: Legend{
				Position: "bottom",
				Labels: LegendLabels{
					Padding: 15,
					Font:    Font{Size: 12, Weight: "500"},
					Color:   ColorText,
				},
			},
			Tooltip: Tooltip{
				BackgroundColor: "rgba(44, 62, 80, 0.9)",
				Padding:         12,
				TitleFont:       Font{Size: 13, Weight: "600"},
				BodyFont:        Font{Size: 12},
				BorderColor:     ColorPrimary,
				BorderWidth:     1,
			},
		},
	}
}

func axisOptions(beginAtZero bool) ChartOptions {
	opts := baseOptions()
	opts.Scales = map[string]Axis{
		"y": {BeginAtZero: beginAtZero, Ticks: Ticks{Color: ColorMuted}},
		"x": {Ticks: Ticks{Color: ColorMuted}},
	}
	return opts
}

// colorRule decides the dataset colors for a series.
type colorRule func(values []float64) interface{}

func fixedColor(c string) colorRule {
	return func([]float64) interface{} { return c }
}

func cyclingPalette(palette []string) colorRule {
	return func([]float64) interface{} {
		out := make([]string, len(palette))
		copy(out, palette)
		return out
	}
}

// signColors colors each bar by the sign of its value.
func signColors(gain, loss string) colorRule {
	return func(values []float64) interface{} {
		out := make([]string, len(values))
		for i, v := range values {
			if v >= 0 {
				out[i] = gain
			} else {
				out[i] = loss
			}
		}
		return out
	}
}

// ChartDef declares one dashboard chart: where it goes, how its labels and
// series are read from the snapshot, and how it is styled.
type ChartDef struct {
	ID          string
	Type        ChartType
	Label       string
	Labels      func(*models.Snapshot) []string
	Series      func(*models.Snapshot) []float64
	Colors      colorRule
	LineColor   string
	FillColor   string
	BeginAtZero bool
	// AllowEmpty draws empty axes instead of failing when the series is empty.
	AllowEmpty bool
}

// Spec builds the Chart.js configuration for the snapshot.
func (c ChartDef) Spec(s *models.Snapshot) (ChartSpec, error) {
	labels := c.Labels(s)
	values := c.Series(s)

	if len(values) == 0 {
		if !c.AllowEmpty {
			return ChartSpec{}, errors.New("series is empty")
		}
		labels, values = []string{}, []float64{}
	}
	if len(labels) != len(values) {
		return ChartSpec{}, fmt.Errorf("%d labels for %d values", len(labels), len(values))
	}
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ChartSpec{}, fmt.Errorf("value %d (%s) is not finite", i, labels[i])
		}
	}

	ds := Dataset{Label: c.Label, Data: values}
	spec := ChartSpec{Type: c.Type}

	switch c.Type {
	case ChartPie, ChartDoughnut:
		ds.BackgroundColor = c.Colors(values)
		ds.BorderColor = "white"
		ds.BorderWidth = 2
		spec.Options = baseOptions()
	case ChartLine:
		ds.BorderColor = c.LineColor
		ds.BackgroundColor = c.FillColor
		ds.Tension = 0.4
		ds.Fill = true
		ds.BorderWidth = 2
		ds.PointRadius = 3
		ds.PointHoverRadius = 5
		ds.PointBackgroundColor = c.LineColor
		spec.Options = axisOptions(c.BeginAtZero)
	case ChartBar:
		skipped := false
		ds.BackgroundColor = c.Colors(values)
		ds.BorderRadius = 4
		ds.BorderSkipped = &skipped
		spec.Options = axisOptions(c.BeginAtZero)
	default:
		return ChartSpec{}, fmt.Errorf("unsupported chart type %q", c.Type)
	}

	spec.Data = ChartData{Labels: labels, Datasets: []Dataset{ds}}
	return spec, nil
}

func holdingTickers(s *models.Snapshot) []string {
	out := make([]string, len(s.Holdings))
	for i, h := range s.Holdings {
		out[i] = h.Ticker
	}
	return out
}

func holdingSectors(s *models.Snapshot) []string {
	out := make([]string, len(s.Holdings))
	for i, h := range s.Holdings {
		out[i] = h.Sector
	}
	return out
}

func holdingValues(s *models.Snapshot) []float64 {
	out := make([]float64, len(s.Holdings))
	for i, h := range s.Holdings {
		out[i] = h.CurrentValue
	}
	return out
}

func holdingReturns(s *models.Snapshot) []float64 {
	out := make([]float64, len(s.Holdings))
	for i, h := range s.Holdings {
		out[i] = h.GainLossPct
	}
	return out
}

func metricDates(s *models.Snapshot) []string {
	out := make([]string, len(s.MetricsHistory))
	for i, m := range s.MetricsHistory {
		out[i] = m.Date
	}
	return out
}

func metricSeries(pick func(models.MetricPoint) float64) func(*models.Snapshot) []float64 {
	return func(s *models.Snapshot) []float64 {
		out := make([]float64, len(s.MetricsHistory))
		for i, m := range s.MetricsHistory {
			out[i] = pick(m)
		}
		return out
	}
}

func activityLabels(s *models.Snapshot) []string {
	labels, _ := MonthlyActivity(s.Transactions)
	return labels
}

func activityCounts(s *models.Snapshot) []float64 {
	_, counts := MonthlyActivity(s.Transactions)
	return counts
}

// Charts declares the seven dashboard charts in page order.
var Charts = []ChartDef{
	{
		ID:     "allocationChart",
		Type:   ChartDoughnut,
		Labels: holdingTickers,
		Series: holdingValues,
		Colors: cyclingPalette(slicePalette),
	},
	{
		ID:        "valueChart",
		Type:      ChartLine,
		Label:     "Portfolio Value",
		Labels:    metricDates,
		Series:    metricSeries(func(m models.MetricPoint) float64 { return m.Value }),
		LineColor: ColorPrimary,
		FillColor: "rgba(26, 115, 232, 0.08)",
	},
	{
		ID:        "volatilityChart",
		Type:      ChartLine,
		Label:     "Volatility (%)",
		Labels:    metricDates,
		Series:    metricSeries(func(m models.MetricPoint) float64 { return RoundFraction(m.Volatility) }),
		LineColor: ColorWarning,
		FillColor: "rgba(243, 156, 18, 0.08)",
	},
	{
		ID:          "returnChart",
		Type:        ChartLine,
		Label:       "Return (%)",
		Labels:      metricDates,
		Series:      metricSeries(func(m models.MetricPoint) float64 { return m.Return }),
		LineColor:   ColorSuccess,
		FillColor:   "rgba(39, 174, 96, 0.08)",
		BeginAtZero: true,
	},
	{
		ID:          "holdingPerformanceChart",
		Type:        ChartBar,
		Label:       "Return (%)",
		Labels:      holdingTickers,
		Series:      holdingReturns,
		Colors:      signColors(ColorSuccess, ColorDanger),
		BeginAtZero: true,
	},
	{
		ID:     "sectorChart",
		Type:   ChartPie,
		Labels: holdingSectors,
		Series: holdingValues,
		Colors: cyclingPalette(slicePalette),
	},
	{
		ID:          "activityChart",
		Type:        ChartBar,
		Label:       "Transactions",
		Labels:      activityLabels,
		Series:      activityCounts,
		Colors:      fixedColor(ColorPrimary),
		BeginAtZero: true,
		AllowEmpty:  true,
	},
}

// ChartByID returns the chart declared for a container id.
func ChartByID(id string) (ChartDef, bool) {
	for _, c := range Charts {
		if c.ID == id {
			return c, true
		}
	}
	return ChartDef{}, false
}

// MonthlyActivity counts transactions per YYYY-MM key in one pass. Labels are
// sorted ascending and counts are aligned to them.
func MonthlyActivity(transactions []models.Transaction) ([]string, []float64) {
	byMonth := make(map[string]int)
	for _, t := range transactions {
		byMonth[t.Month()]++
	}

	labels := make([]string, 0, len(byMonth))
	for month := range byMonth {
		labels = append(labels, month)
	}
	sort.Strings(labels)

	counts := make([]float64, len(labels))
	for i, month := range labels {
		counts[i] = float64(byMonth[month])
	}
	return labels, counts
}
