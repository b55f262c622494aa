package normalize

import (
	"strings"

	"github.com/shopspring/decimal"
)

// currencySymbols may prefix a money value.
const currencySymbols = "$€£"

// Decimal parses raw as a decimal number.
func Decimal(raw string) Field[decimal.Decimal] {
	if IsMissing(raw) {
		return null[decimal.Decimal](raw)
	}
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return invalid[decimal.Decimal](raw)
	}
	return valid(d, raw)
}

// Int parses raw as a decimal and truncates toward negative infinity, so
// "21347.0" and "21347.9" both read as 21347. Thousands separators are
// ignored. Values outside the int64 range are Invalid.
func Int(raw string) Field[int64] {
	d := Decimal(strings.ReplaceAll(raw, ",", ""))
	if d.State != Valid {
		return Field[int64]{State: d.State, Raw: raw}
	}
	fl := d.Value.Floor()
	if !fl.BigInt().IsInt64() {
		return invalid[int64](raw)
	}
	return valid(fl.IntPart(), raw)
}

// Count is Int restricted to values >= 0.
func Count(raw string) Field[int64] {
	f := Int(raw)
	if f.State == Valid && f.Value < 0 {
		return invalid[int64](raw)
	}
	return f
}

// Currency strips one leading currency symbol and thousands separators,
// then parses the remainder as a decimal rounded to cents.
func Currency(raw string) Field[decimal.Decimal] {
	if IsMissing(raw) {
		return null[decimal.Decimal](raw)
	}
	s := strings.TrimSpace(raw)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = strings.TrimSpace(s[1:])
	}
	for _, sym := range currencySymbols {
		if after, ok := strings.CutPrefix(s, string(sym)); ok {
			s = strings.TrimSpace(after)
			break
		}
	}
	s = strings.ReplaceAll(s, ",", "")
	if neg {
		s = "-" + s
	}
	d := Decimal(s)
	if d.State != Valid {
		return Field[decimal.Decimal]{State: d.State, Raw: raw}
	}
	return valid(d.Value.Round(2), raw)
}
