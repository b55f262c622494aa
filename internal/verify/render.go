package verify

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

// Renderer writes reports as terminal tables.
type Renderer struct {
	UseColor bool
}

// Render writes a profile table followed by a findings table.
func (v Renderer) Render(w io.Writer, reports []Report) {
	profiles := tablewriter.NewWriter(w)
	profiles.SetHeader([]string{"Dataset", "Table", "Rows", "Distinct Keys", "Min Date", "Max Date", "Nulls"})
	profiles.SetBorder(false)
	profiles.SetAutoWrapText(false)
	profiles.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, r := range reports {
		p := r.Profile
		profiles.Append([]string{
			r.Dataset,
			p.Table,
			strconv.FormatInt(p.Rows, 10),
			strconv.FormatInt(p.DistinctKeys, 10),
			dateString(p.MinDate),
			dateString(p.MaxDate),
			nullsString(r),
		})
	}
	profiles.Render()

	findings := tablewriter.NewWriter(w)
	findings.SetHeader([]string{"Dataset", "Check", "Severity", "Message"})
	findings.SetBorder(false)
	findings.SetAutoWrapText(false)
	findings.SetAlignment(tablewriter.ALIGN_LEFT)
	n := 0
	for _, r := range reports {
		for _, f := range r.Findings {
			findings.Append([]string{r.Dataset, f.Check, v.severity(f.Severity), f.Message})
			n++
		}
	}
	if n == 0 {
		fmt.Fprintln(w, v.ok("no findings"))
		return
	}
	fmt.Fprintln(w)
	findings.Render()
}

func (v Renderer) severity(s Severity) string {
	if !v.UseColor {
		return string(s)
	}
	if s == Warn {
		return color.YellowString(string(s))
	}
	return color.CyanString(string(s))
}

func (v Renderer) ok(s string) string {
	if !v.UseColor {
		return s
	}
	return color.GreenString(s)
}

func dateString(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(time.DateOnly)
}

// nullsString lists columns that have at least one NULL.
func nullsString(r Report) string {
	var parts []string
	for _, n := range r.Profile.Nulls {
		if n.Count > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", n.Column, n.Count))
		}
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " ")
}
