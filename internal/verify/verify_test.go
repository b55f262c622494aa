package verify

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/marketing-cli/internal/clean"
	"github.com/sells-group/marketing-cli/internal/warehouse"
)

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

var opts = Options{AsOf: *day(2024, 6, 30), NullRatioWarn: 0.5}

func checks(r Report) map[string]Severity {
	out := make(map[string]Severity)
	for _, f := range r.Findings {
		if out[f.Check] != Warn {
			out[f.Check] = f.Severity
		}
	}
	return out
}

func TestCheck_Clean(t *testing.T) {
	p := &warehouse.Profile{
		Table: "clean_paid_ads", Rows: 10, DistinctKeys: 10,
		Nulls:   []warehouse.NullCount{{Column: "revenue", Count: 2}},
		MinDate: day(2024, 1, 1), MaxDate: day(2024, 6, 30),
	}
	r := Check("paid_ads", p, &clean.Stats{RowsIn: 10, RowsOut: 10}, opts)
	assert.Empty(t, r.Findings)
	assert.Zero(t, r.Warnings())
}

func TestCheck_RowDeltaExplained(t *testing.T) {
	p := &warehouse.Profile{Table: "clean_customer_master", Rows: 7, DistinctKeys: 7}
	r := Check("customer_master", p, &clean.Stats{RowsIn: 10, Dropped: 2, Duplicates: 1, Repaired: 1}, opts)

	got := checks(r)
	assert.Equal(t, Info, got["row_delta"])
	assert.Equal(t, Info, got["repaired"])
	assert.Zero(t, r.Warnings())
	assert.Contains(t, r.Findings[0].Message, "10 staging rows, 7 clean rows")
}

func TestCheck_RowDeltaUnexplained(t *testing.T) {
	p := &warehouse.Profile{Table: "clean_customer_master", Rows: 5, DistinctKeys: 5}
	r := Check("customer_master", p, &clean.Stats{RowsIn: 10, Dropped: 2}, opts)

	assert.Equal(t, Warn, checks(r)["row_delta"])
	assert.Equal(t, 1, r.Warnings())
}

func TestCheck_Warnings(t *testing.T) {
	p := &warehouse.Profile{
		Table: "clean_email_campaigns", Rows: 4, DistinctKeys: 3,
		Nulls: []warehouse.NullCount{
			{Column: "cost", Count: 3},
			{Column: "delivered", Count: 2},
		},
		MaxDate: day(2025, 1, 1),
	}
	r := Check("email_campaigns", p, &clean.Stats{RowsIn: 4, UnparsedDates: 2}, opts)

	got := checks(r)
	assert.Equal(t, Warn, got["duplicate_keys"])
	assert.Equal(t, Warn, got["future_dates"])
	assert.Equal(t, Warn, got["null_ratio"])
	assert.Equal(t, Warn, got["unparsed_dates"])
	assert.NotContains(t, got, "row_delta")
	// delivered is exactly at the threshold
	assert.Equal(t, 4, r.Warnings())
}

func TestCheck_EmptyTableWithoutStats(t *testing.T) {
	r := Check("paid_ads", &warehouse.Profile{Table: "clean_paid_ads"}, nil, Options{})
	require.Len(t, r.Findings, 1)
	assert.Equal(t, "empty", r.Findings[0].Check)
	assert.Equal(t, Warn, r.Findings[0].Severity)
}

func TestCheck_ZeroAsOfSkipsFutureDates(t *testing.T) {
	p := &warehouse.Profile{Table: "t", Rows: 1, DistinctKeys: 1, MaxDate: day(2999, 1, 1)}
	r := Check("x", p, nil, Options{})
	assert.Empty(t, r.Findings)
}

func TestRenderer_Render(t *testing.T) {
	reports := []Report{
		Check("paid_ads", &warehouse.Profile{
			Table: "clean_paid_ads", Rows: 3, DistinctKeys: 2,
			Nulls:   []warehouse.NullCount{{Column: "revenue", Count: 1}, {Column: "spend", Count: 0}},
			MinDate: day(2024, 1, 1), MaxDate: day(2024, 2, 1),
		}, nil, opts),
	}

	var buf bytes.Buffer
	Renderer{}.Render(&buf, reports)
	out := buf.String()

	assert.Contains(t, out, "clean_paid_ads")
	assert.Contains(t, out, "2024-01-01")
	assert.Contains(t, out, "revenue=1")
	assert.NotContains(t, out, "spend=0")
	assert.Contains(t, out, "duplicate_keys")
	assert.Contains(t, out, "1 rows share a key")
}

func TestRenderer_NoFindings(t *testing.T) {
	var buf bytes.Buffer
	Renderer{}.Render(&buf, []Report{{
		Dataset: "paid_ads",
		Profile: &warehouse.Profile{Table: "clean_paid_ads", Rows: 1, DistinctKeys: 1},
	}})
	assert.Contains(t, buf.String(), "no findings")
	assert.Contains(t, buf.String(), "-")
}
