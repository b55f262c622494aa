package clean

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/sells-group/marketing-cli/internal/normalize"
)

var hundred = decimal.NewFromInt(100)

// Ratios are 0, never null or infinite, when an input is missing or the
// denominator is zero.

// pct returns num/den*100 rounded to 2 places.
func pct(num int64, den *int64) float64 {
	if den == nil || *den == 0 {
		return 0
	}
	return decimal.NewFromInt(num).Mul(hundred).Div(decimal.NewFromInt(*den)).Round(2).InexactFloat64()
}

// pctOf is pct with a nullable numerator.
func pctOf(num, den *int64) float64 {
	if num == nil {
		return 0
	}
	return pct(*num, den)
}

// perUnit returns amount/count rounded to places.
func perUnit(amount *decimal.Decimal, count *int64, places int32) decimal.Decimal {
	if amount == nil || count == nil || *count == 0 {
		return decimal.Zero
	}
	return amount.Div(decimal.NewFromInt(*count)).Round(places)
}

// roas returns revenue/spend rounded to 2 places.
func roas(revenue, spend *decimal.Decimal) float64 {
	if revenue == nil || spend == nil || spend.IsZero() {
		return 0
	}
	return revenue.Div(*spend).Round(2).InexactFloat64()
}

// roiPct returns (revenue-spend)/spend*100 rounded to 2 places.
func roiPct(revenue, spend *decimal.Decimal) float64 {
	if revenue == nil || spend == nil || spend.IsZero() {
		return 0
	}
	return revenue.Sub(*spend).Mul(hundred).Div(*spend).Round(2).InexactFloat64()
}

// clamp lowers *v to limit when both are present; it reports whether it did.
func clamp(v, limit *int64) bool {
	if v == nil || limit == nil || *v <= *limit {
		return false
	}
	*v = *limit
	return true
}

// wholeYears counts complete years from start to end.
func wholeYears(start, end time.Time) int64 {
	years := end.Year() - start.Year()
	if end.Month() < start.Month() || (end.Month() == start.Month() && end.Day() < start.Day()) {
		years--
	}
	return int64(years)
}

// cell turns an optional value into a row value; nil stays NULL.
func cell[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

// date resolves a date column and counts text that matched no layout.
func (s *Stats) date(b *normalize.Builder, column, raw string, layouts []normalize.DateLayout) *time.Time {
	d := b.Date(column, raw, layouts)
	if d == nil && b.Err() == nil && !normalize.IsMissing(raw) {
		s.UnparsedDates++
	}
	return d
}

// col returns row[i], or "" for short rows.
func col(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
