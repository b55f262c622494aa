package normalize

import (
	"strings"
	"time"
)

// DateLayout is one recognized textual date format.
type DateLayout struct {
	Name   string // human form, e.g. "MM/DD/YYYY"
	Layout string // time.Parse layout
}

// Recognized formats. Month and day accept one or two digits.
var (
	ISODate   = DateLayout{Name: "YYYY-MM-DD", Layout: "2006-1-2"}
	USSlash   = DateLayout{Name: "MM/DD/YYYY", Layout: "1/2/2006"}
	USDash    = DateLayout{Name: "MM-DD-YYYY", Layout: "1-2-2006"}
	DayFirst  = DateLayout{Name: "DD-MM-YYYY", Layout: "2-1-2006"}
	AllLayout = []DateLayout{ISODate, USSlash, USDash, DayFirst}
)

// Date tries each layout in order and returns the first successful parse as
// a UTC calendar date. Text matching no layout is Null, never Invalid: an
// unrecognized format is a known gap, not a data error.
func Date(raw string, layouts []DateLayout) Field[time.Time] {
	if IsMissing(raw) {
		return null[time.Time](raw)
	}
	s := strings.TrimSpace(raw)
	for _, l := range layouts {
		if t, err := time.Parse(l.Layout, s); err == nil {
			return valid(t, raw)
		}
	}
	return null[time.Time](raw)
}
