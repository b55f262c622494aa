package clean

import (
	"cmp"
	"slices"
	"strings"

	"github.com/sells-group/marketing-cli/internal/model"
	"github.com/sells-group/marketing-cli/internal/normalize"
	"github.com/sells-group/marketing-cli/internal/warehouse"
)

const paidAdsName = "paid_ads"

// PaidAds cleans staging_paid_ads into clean_paid_ads.
type PaidAds struct{}

func (PaidAds) Name() string { return paidAdsName }

func (PaidAds) Staging() warehouse.StagingSpec {
	return warehouse.StagingSpec{
		Table: "staging_paid_ads",
		Columns: []string{
			"ad_id", "date", "platform", "ad_type", "impressions", "clicks",
			"spend", "revenue", "conversions",
		},
	}
}

func (PaidAds) Table() warehouse.TableSpec {
	return warehouse.TableSpec{
		Name: "clean_paid_ads",
		Columns: []warehouse.Column{
			{Name: "ad_id", Type: warehouse.TypeText, NotNull: true},
			{Name: "ad_date", Type: warehouse.TypeDate},
			{Name: "platform", Type: warehouse.TypeText},
			{Name: "ad_type", Type: warehouse.TypeText},
			{Name: "impressions", Type: warehouse.TypeInteger},
			{Name: "clicks", Type: warehouse.TypeInteger},
			{Name: "spend", Type: warehouse.TypeDecimal},
			{Name: "revenue", Type: warehouse.TypeDecimal},
			{Name: "conversions", Type: warehouse.TypeInteger},
			{Name: "ctr_pct", Type: warehouse.TypeFloat, NotNull: true},
			{Name: "cpc", Type: warehouse.TypeDecimal, NotNull: true},
			{Name: "roas", Type: warehouse.TypeFloat, NotNull: true},
			{Name: "roi_pct", Type: warehouse.TypeFloat, NotNull: true},
		},
		Indexes: []string{"ad_id", "platform", "ad_date"},
	}
}

func (PaidAds) Profile() warehouse.ProfileSpec {
	return warehouse.ProfileSpec{
		Table:       "clean_paid_ads",
		Key:         "ad_id",
		DateColumn:  "ad_date",
		NullColumns: []string{"ad_date", "platform", "spend", "revenue", "conversions"},
	}
}

func (PaidAds) Clean(rows [][]string, _ Options) (*Result, error) {
	raws := make([]model.RawAd, len(rows))
	for i, r := range rows {
		raws[i] = model.RawAd{
			AdID:        col(r, 0),
			Date:        col(r, 1),
			Platform:    col(r, 2),
			AdType:      col(r, 3),
			Impressions: col(r, 4),
			Clicks:      col(r, 5),
			Spend:       col(r, 6),
			Revenue:     col(r, 7),
			Conversions: col(r, 8),
		}
	}

	ads, stats, err := CleanAds(raws)
	if err != nil {
		return nil, err
	}

	res := &Result{Stats: stats, Rows: make([][]any, len(ads))}
	for i, a := range ads {
		res.Rows[i] = []any{
			a.AdID, cell(a.AdDate), cell(a.Platform), cell(a.AdType),
			cell(a.Impressions), cell(a.Clicks), cell(a.Spend), cell(a.Revenue), cell(a.Conversions),
			a.CTRPct, a.CPC, a.ROAS, a.ROIPct,
		}
	}
	return res, nil
}

type adRow struct {
	raw model.RawAd
	rec model.Ad
}

// CleanAds types ad rows, canonicalizes platforms and derives CTR, CPC,
// ROAS and ROI. Rows without an ad_id are dropped.
func CleanAds(raws []model.RawAd) ([]model.Ad, Stats, error) {
	stats := Stats{RowsIn: len(raws)}

	rows := make([]adRow, 0, len(raws))
	for _, raw := range raws {
		id := normalize.Text(raw.AdID)
		if !id.OK() {
			stats.Dropped++
			continue
		}

		var b normalize.Builder
		rec := model.Ad{
			AdID:        id.Value,
			AdDate:      stats.date(&b, "date", raw.Date, adDates),
			Platform:    category(AdPlatforms, raw.Platform),
			AdType:      b.Text("ad_type", raw.AdType),
			Impressions: b.Count("impressions", raw.Impressions),
			Clicks:      b.Count("clicks", raw.Clicks),
			Spend:       b.Currency("spend", raw.Spend),
			Revenue:     b.Currency("revenue", raw.Revenue),
			Conversions: b.Count("conversions", raw.Conversions),
		}
		if err := rowError(paidAdsName, id.Value, &b); err != nil {
			return nil, stats, err
		}

		rec.CTRPct = pctOf(rec.Clicks, rec.Impressions)
		rec.CPC = perUnit(rec.Spend, rec.Clicks, 4)
		rec.ROAS = roas(rec.Revenue, rec.Spend)
		rec.ROIPct = roiPct(rec.Revenue, rec.Spend)
		rows = append(rows, adRow{raw: raw, rec: rec})
	}

	slices.SortFunc(rows, func(a, b adRow) int {
		return cmp.Or(
			strings.Compare(a.rec.AdID, b.rec.AdID),
			slices.Compare(a.raw.Fields(), b.raw.Fields()),
		)
	})

	out := make([]model.Ad, len(rows))
	for i, r := range rows {
		out[i] = r.rec
	}
	stats.RowsOut = len(out)
	return out, stats, nil
}
