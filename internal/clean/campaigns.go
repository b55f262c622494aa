package clean

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/sells-group/marketing-cli/internal/dedup"
	"github.com/sells-group/marketing-cli/internal/model"
	"github.com/sells-group/marketing-cli/internal/normalize"
	"github.com/sells-group/marketing-cli/internal/warehouse"
)

const emailCampaignsName = "email_campaigns"

// EmailCampaigns cleans staging_email_campaigns into clean_email_campaigns.
type EmailCampaigns struct{}

func (EmailCampaigns) Name() string { return emailCampaignsName }

func (EmailCampaigns) Staging() warehouse.StagingSpec {
	return warehouse.StagingSpec{
		Table: "staging_email_campaigns",
		Columns: []string{
			"campaign_id", "campaign_name", "send_date", "emails_sent", "delivered",
			"opens", "clicks", "unsubscribes", "cost",
		},
	}
}

func (EmailCampaigns) Table() warehouse.TableSpec {
	return warehouse.TableSpec{
		Name: "clean_email_campaigns",
		Columns: []warehouse.Column{
			{Name: "campaign_id", Type: warehouse.TypeText, NotNull: true},
			{Name: "campaign_name", Type: warehouse.TypeText},
			{Name: "send_date", Type: warehouse.TypeDate},
			{Name: "emails_sent", Type: warehouse.TypeInteger},
			{Name: "delivered", Type: warehouse.TypeInteger},
			{Name: "opens", Type: warehouse.TypeInteger},
			{Name: "clicks", Type: warehouse.TypeInteger},
			{Name: "unsubscribes", Type: warehouse.TypeInteger},
			{Name: "cost", Type: warehouse.TypeDecimal},
			{Name: "open_rate_pct", Type: warehouse.TypeFloat, NotNull: true},
			{Name: "click_through_rate_pct", Type: warehouse.TypeFloat, NotNull: true},
			{Name: "cost_per_email", Type: warehouse.TypeDecimal, NotNull: true},
		},
		Indexes: []string{"campaign_id", "send_date"},
	}
}

func (EmailCampaigns) Profile() warehouse.ProfileSpec {
	return warehouse.ProfileSpec{
		Table:       "clean_email_campaigns",
		Key:         "campaign_id",
		DateColumn:  "send_date",
		NullColumns: []string{"campaign_name", "send_date", "emails_sent", "delivered", "cost"},
	}
}

func (EmailCampaigns) Clean(rows [][]string, _ Options) (*Result, error) {
	raws := make([]model.RawCampaign, len(rows))
	for i, r := range rows {
		raws[i] = model.RawCampaign{
			CampaignID:   col(r, 0),
			CampaignName: col(r, 1),
			SendDate:     col(r, 2),
			EmailsSent:   col(r, 3),
			Delivered:    col(r, 4),
			Opens:        col(r, 5),
			Clicks:       col(r, 6),
			Unsubscribes: col(r, 7),
			Cost:         col(r, 8),
		}
	}

	campaigns, stats, err := CleanCampaigns(raws)
	if err != nil {
		return nil, err
	}

	res := &Result{Stats: stats, Rows: make([][]any, len(campaigns))}
	for i, c := range campaigns {
		res.Rows[i] = []any{
			c.CampaignID, cell(c.CampaignName), cell(c.SendDate),
			cell(c.EmailsSent), cell(c.Delivered), cell(c.Opens), cell(c.Clicks), cell(c.Unsubscribes),
			cell(c.Cost), c.OpenRatePct, c.ClickThroughRatePct, c.CostPerEmail,
		}
	}
	return res, nil
}

type campaignRow struct {
	raw model.RawCampaign
	rec model.Campaign
}

// campaignKey identifies one send: the same campaign_id sent under another
// name or on another day is a distinct row.
type campaignKey struct {
	id, name, date string
}

func (r campaignRow) key() campaignKey {
	k := campaignKey{id: r.rec.CampaignID}
	if r.rec.CampaignName != nil {
		k.name = *r.rec.CampaignName
	}
	if r.rec.SendDate != nil {
		k.date = r.rec.SendDate.Format(time.DateOnly)
	}
	return k
}

// campaignOrder prefers the largest emails_sent, then falls back to the raw
// text so the survivor never depends on read order.
var campaignOrder = dedup.Chain(
	dedup.Larger(func(r campaignRow) *int64 { return r.rec.EmailsSent }),
	func(a, b campaignRow) int { return slices.Compare(a.raw.Fields(), b.raw.Fields()) },
)

// CleanCampaigns types, deduplicates, clamps and derives email campaign rows.
// Rows without a campaign_id are dropped. The funnel is clamped so that
// clicks <= opens <= delivered <= emails_sent wherever both sides are known.
func CleanCampaigns(raws []model.RawCampaign) ([]model.Campaign, Stats, error) {
	stats := Stats{RowsIn: len(raws)}

	rows := make([]campaignRow, 0, len(raws))
	for _, raw := range raws {
		id := normalize.Text(raw.CampaignID)
		if !id.OK() {
			stats.Dropped++
			continue
		}

		var b normalize.Builder
		rec := model.Campaign{
			CampaignID:   id.Value,
			CampaignName: b.Text("campaign_name", raw.CampaignName),
			SendDate:     stats.date(&b, "send_date", raw.SendDate, campaignDates),
			EmailsSent:   b.Count("emails_sent", raw.EmailsSent),
			Delivered:    b.Count("delivered", raw.Delivered),
			Opens:        b.Count("opens", raw.Opens),
			Clicks:       b.Count("clicks", raw.Clicks),
			Unsubscribes: b.Count("unsubscribes", raw.Unsubscribes),
			Cost:         b.Currency("cost", raw.Cost),
		}
		if err := rowError(emailCampaignsName, id.Value, &b); err != nil {
			return nil, stats, err
		}
		rows = append(rows, campaignRow{raw: raw, rec: rec})
	}

	rows, stats.Duplicates = dedup.Survivors(rows, campaignRow.key, campaignOrder)

	slices.SortFunc(rows, func(a, b campaignRow) int {
		ka, kb := a.key(), b.key()
		return cmp.Or(
			strings.Compare(ka.id, kb.id),
			strings.Compare(ka.name, kb.name),
			strings.Compare(ka.date, kb.date),
			slices.Compare(a.raw.Fields(), b.raw.Fields()),
		)
	})

	out := make([]model.Campaign, len(rows))
	for i, r := range rows {
		c := r.rec
		if repairFunnel(&c) {
			stats.Repaired++
		}
		c.OpenRatePct = pctOf(c.Opens, c.Delivered)
		c.ClickThroughRatePct = pctOf(c.Clicks, c.Opens)
		c.CostPerEmail = perUnit(c.Cost, c.EmailsSent, 4)
		out[i] = c
	}
	stats.RowsOut = len(out)
	return out, stats, nil
}

// repairFunnel clamps each stage to the one before it. The cascade runs in
// funnel order so a clamped delivered count also bounds opens.
func repairFunnel(c *model.Campaign) bool {
	d := clamp(c.Delivered, c.EmailsSent)
	o := clamp(c.Opens, c.Delivered)
	k := clamp(c.Clicks, c.Opens)
	return d || o || k
}
