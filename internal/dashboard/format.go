// Package dashboard renders a portfolio snapshot into the dashboard document:
// KPI text, holdings and transactions tables, chart specifications and tabs.
package dashboard

import (
	"math"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// groupFormatter formats minor units with en-US grouping and no symbol.
// The "$" is prepended by the callers so negative values read "$-1.00".
var groupFormatter = money.NewFormatter(2, ".", ",", "", "1")

var (
	hundred  = decimal.NewFromInt(100)
	maxCents = decimal.NewFromInt(math.MaxInt64)
)

// FormatCurrency formats v as "$" plus a grouped amount with two decimals.
// 1234567.5 -> "$1,234,567.50".
func FormatCurrency(v float64) string {
	if s, ok := nonFinite(v); ok {
		return "$" + s
	}
	amount := decimal.NewFromFloat(v).Round(2)
	cents := amount.Shift(2)
	if cents.Abs().GreaterThan(maxCents) {
		return "$" + keepSign(v, groupDigits(amount.StringFixed(2)))
	}
	return "$" + keepSign(v, groupFormatter.Format(cents.IntPart()))
}

// FormatPrice formats v as "$" plus two decimals without grouping.
func FormatPrice(v float64) string {
	return "$" + fixed(v, 2)
}

// FormatPercent formats v with two decimals and a "%" suffix.
func FormatPercent(v float64) string {
	return fixed(v, 2) + "%"
}

// FormatReturnKPI always prefixes a literal "+", whatever the sign of v.
func FormatReturnKPI(v float64) string {
	return "+" + FormatPercent(v)
}

// FormatSignedPercent prefixes "+" when v >= 0; negative values keep their minus.
func FormatSignedPercent(v float64) string {
	if v >= 0 {
		return "+" + FormatPercent(v)
	}
	return FormatPercent(v)
}

// FormatRatio formats v with two decimals and no symbol.
func FormatRatio(v float64) string {
	return fixed(v, 2)
}

// FormatFraction formats a [0,1] fraction as a percentage with one decimal.
// 0.183 -> "18.3%".
func FormatFraction(v float64) string {
	if s, ok := nonFinite(v); ok {
		return s + "%"
	}
	return keepSign(v, decimal.NewFromFloat(v).Mul(hundred).StringFixed(1)) + "%"
}

// FormatShares returns the shortest decimal form of a share count.
func FormatShares(v float64) string {
	if s, ok := nonFinite(v); ok {
		return s
	}
	return decimal.NewFromFloat(v).String()
}

// RoundFraction returns v*100 rounded to one decimal, as charted for volatility.
func RoundFraction(v float64) float64 {
	if _, ok := nonFinite(v); ok {
		return v
	}
	return decimal.NewFromFloat(v).Mul(hundred).Round(1).InexactFloat64()
}

func fixed(v float64, places int32) string {
	if s, ok := nonFinite(v); ok {
		return s
	}
	return keepSign(v, decimal.NewFromFloat(v).StringFixed(places))
}

// keepSign restores the minus on negative values that round to zero,
// so -0.001 prints "-0.00" as a browser's toFixed does.
func keepSign(v float64, s string) string {
	if v < 0 && !strings.HasPrefix(s, "-") {
		return "-" + s
	}
	return s
}

// groupDigits inserts thousands separators into a plain decimal string.
// Used for amounts whose cents overflow int64.
func groupDigits(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	whole, frac, hasFrac := strings.Cut(s, ".")
	var b strings.Builder
	b.WriteString(sign)
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}

// nonFinite spells NaN and infinities the way a browser prints them.
func nonFinite(v float64) (string, bool) {
	switch {
	case math.IsNaN(v):
		return "NaN", true
	case math.IsInf(v, 1):
		return "Infinity", true
	case math.IsInf(v, -1):
		return "-Infinity", true
	}
	return "", false
}
