package clean

import (
	"slices"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/marketing-cli/internal/model"
)

func i64(v int64) *int64 { return &v }

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func decEq(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

func findCampaign(t *testing.T, cs []model.Campaign, id string) model.Campaign {
	t.Helper()
	for _, c := range cs {
		if c.CampaignID == id {
			return c
		}
	}
	t.Fatalf("campaign %s not found", id)
	return model.Campaign{}
}

func TestCleanCampaigns_TypesAndDerives(t *testing.T) {
	out, stats, err := CleanCampaigns([]model.RawCampaign{{
		CampaignID:   " C1 ",
		CampaignName: " Spring Sale ",
		SendDate:     "03/05/2024",
		EmailsSent:   "21347.0",
		Delivered:    "21000",
		Opens:        "5250",
		Clicks:       "525",
		Unsubscribes: "12",
		Cost:         "$1,067.35",
	}})
	require.NoError(t, err)
	require.Len(t, out, 1)

	c := out[0]
	assert.Equal(t, "C1", c.CampaignID)
	assert.Equal(t, "Spring Sale", *c.CampaignName)
	assert.Equal(t, day(2024, 3, 5), *c.SendDate)
	assert.Equal(t, int64(21347), *c.EmailsSent)
	assert.Equal(t, int64(12), *c.Unsubscribes)
	decEq(t, "1067.35", *c.Cost)
	assert.Equal(t, 25.0, c.OpenRatePct)
	assert.Equal(t, 10.0, c.ClickThroughRatePct)
	decEq(t, "0.05", c.CostPerEmail)
	assert.Equal(t, Stats{RowsIn: 1, RowsOut: 1}, stats)
}

func TestCleanCampaigns_FunnelClampCascades(t *testing.T) {
	out, stats, err := CleanCampaigns([]model.RawCampaign{{
		CampaignID: "C2",
		EmailsSent: "100",
		Delivered:  "120",
		Opens:      "130",
		Clicks:     "200",
		Cost:       "50",
	}})
	require.NoError(t, err)
	require.Len(t, out, 1)

	c := out[0]
	assert.Equal(t, int64(100), *c.Delivered)
	assert.Equal(t, int64(100), *c.Opens)
	assert.Equal(t, int64(100), *c.Clicks)
	assert.Equal(t, 100.0, c.OpenRatePct)
	assert.Equal(t, 100.0, c.ClickThroughRatePct)
	decEq(t, "0.5", c.CostPerEmail)
	assert.Equal(t, 1, stats.Repaired)
}

func TestCleanCampaigns_FunnelMonotonic(t *testing.T) {
	raws := []model.RawCampaign{
		{CampaignID: "a", EmailsSent: "10", Delivered: "9", Opens: "12", Clicks: "3"},
		{CampaignID: "b", EmailsSent: "10", Delivered: "", Opens: "50", Clicks: "60"},
		{CampaignID: "c", EmailsSent: "", Delivered: "40", Opens: "30", Clicks: "35"},
		{CampaignID: "d", EmailsSent: "5", Delivered: "5", Opens: "5", Clicks: "5"},
	}
	out, stats, err := CleanCampaigns(raws)
	require.NoError(t, err)

	leq := func(lo, hi *int64) bool { return lo == nil || hi == nil || *lo <= *hi }
	for _, c := range out {
		assert.True(t, leq(c.Delivered, c.EmailsSent), "campaign %s delivered", c.CampaignID)
		assert.True(t, leq(c.Opens, c.Delivered), "campaign %s opens", c.CampaignID)
		assert.True(t, leq(c.Clicks, c.Opens), "campaign %s clicks", c.CampaignID)
	}
	assert.Equal(t, int64(9), *findCampaign(t, out, "a").Opens)
	// Unknown delivered leaves opens unbounded by sent.
	assert.Equal(t, int64(50), *findCampaign(t, out, "b").Opens)
	assert.Equal(t, int64(50), *findCampaign(t, out, "b").Clicks)
	assert.Equal(t, 3, stats.Repaired)
}

func TestCleanCampaigns_ZeroAndNullDenominators(t *testing.T) {
	out, _, err := CleanCampaigns([]model.RawCampaign{
		{CampaignID: "zero", EmailsSent: "0", Delivered: "0", Opens: "0", Cost: "$10.00"},
		{CampaignID: "unsent", Cost: "10"},
	})
	require.NoError(t, err)

	for _, c := range out {
		assert.True(t, c.CostPerEmail.IsZero(), "campaign %s", c.CampaignID)
		assert.Zero(t, c.OpenRatePct)
		assert.Zero(t, c.ClickThroughRatePct)
	}
	require.Len(t, out, 2)
	assert.Nil(t, findCampaign(t, out, "unsent").EmailsSent)
}

func TestCleanCampaigns_DedupKeepsLargestSend(t *testing.T) {
	raws := []model.RawCampaign{
		{CampaignID: "C5", CampaignName: "Promo", SendDate: "2024-01-10", EmailsSent: ""},
		{CampaignID: "C5", CampaignName: "Promo", SendDate: "2024-01-10", EmailsSent: "500"},
		{CampaignID: "C5", CampaignName: "Promo", SendDate: "01/10/2024", EmailsSent: "800"},
		{CampaignID: "C5", CampaignName: "Promo", SendDate: "2024-02-10", EmailsSent: "100"},
	}
	out, stats, err := CleanCampaigns(raws)
	require.NoError(t, err)

	require.Len(t, out, 2)
	assert.Equal(t, 2, stats.Duplicates)
	assert.Equal(t, day(2024, 1, 10), *out[0].SendDate)
	assert.Equal(t, int64(800), *out[0].EmailsSent)
	assert.Equal(t, day(2024, 2, 10), *out[1].SendDate)
}

func TestCleanCampaigns_DropsMissingKey(t *testing.T) {
	out, stats, err := CleanCampaigns([]model.RawCampaign{
		{CampaignID: "", EmailsSent: "garbage"},
		{CampaignID: "null"},
		{CampaignID: "C1"},
	})
	require.NoError(t, err)
	assert.Len(t, out, 1)
	assert.Equal(t, 2, stats.Dropped)
}

func TestCleanCampaigns_GarbageNumberFailsDataset(t *testing.T) {
	_, _, err := CleanCampaigns([]model.RawCampaign{
		{CampaignID: "C1", EmailsSent: "10"},
		{CampaignID: "C6", EmailsSent: "10", Opens: "lots", Clicks: "also bad"},
	})
	require.Error(t, err)

	re, ok := AsRowError(err)
	require.True(t, ok)
	assert.Equal(t, "email_campaigns", re.Dataset)
	assert.Equal(t, "C6", re.Key)
	assert.Equal(t, "opens", re.Column)
	assert.Equal(t, "lots", re.Raw)
	assert.Contains(t, err.Error(), `cannot parse "lots"`)
}

func TestCleanCampaigns_NegativeCountFailsDataset(t *testing.T) {
	_, _, err := CleanCampaigns([]model.RawCampaign{
		{CampaignID: "C7", EmailsSent: "-10", Delivered: "5", Opens: "3", Clicks: "1", Cost: "$20"},
	})
	re, ok := AsRowError(err)
	require.True(t, ok)
	assert.Equal(t, "C7", re.Key)
	assert.Equal(t, "emails_sent", re.Column)
	assert.Equal(t, "-10", re.Raw)
}

func TestCleanCampaigns_OversizedCountFailsDataset(t *testing.T) {
	out, _, err := CleanCampaigns([]model.RawCampaign{
		{CampaignID: "C8", EmailsSent: "99999999999999999999"},
	})
	assert.Nil(t, out)
	re, ok := AsRowError(err)
	require.True(t, ok)
	assert.Equal(t, "emails_sent", re.Column)
	assert.Equal(t, "99999999999999999999", re.Raw)
}

func TestCleanCampaigns_UnparsedDatesCounted(t *testing.T) {
	out, stats, err := CleanCampaigns([]model.RawCampaign{
		{CampaignID: "a", SendDate: "March 5th"},
		{CampaignID: "b", SendDate: "03-05-2024"},
		{CampaignID: "c", SendDate: ""},
	})
	require.NoError(t, err)
	assert.Nil(t, findCampaign(t, out, "a").SendDate)
	// Campaign dashes are day first.
	assert.Equal(t, day(2024, 5, 3), *findCampaign(t, out, "b").SendDate)
	assert.Equal(t, 1, stats.UnparsedDates)
}

func campaignStagingRows() [][]string {
	return [][]string{
		{"C1", "Spring Sale", "2024-03-05", "1000", "900", "300", "30", "2", "$100.00"},
		{"C1", "Spring Sale", "2024-03-05", "1200", "1300", "300", "30", "2", "$100.00"},
		{"C2", "Promo", "25-03-2024", "21347.0", "", "", "", "", ""},
		{"", "No Key", "2024-03-05", "1", "1", "1", "1", "0", "1"},
		{"C3", "", "n/a", "0", "0", "0", "0", "0", "$5"},
	}
}

func TestEmailCampaigns_CleanIsIdempotent(t *testing.T) {
	rows := campaignStagingRows()
	first, err := EmailCampaigns{}.Clean(rows, Options{})
	require.NoError(t, err)

	second, err := EmailCampaigns{}.Clean(campaignStagingRows(), Options{})
	require.NoError(t, err)
	assert.Equal(t, first, second)

	reversed := campaignStagingRows()
	slices.Reverse(reversed)
	third, err := EmailCampaigns{}.Clean(reversed, Options{})
	require.NoError(t, err)
	assert.Equal(t, first.Rows, third.Rows)
}

func TestEmailCampaigns_RowShape(t *testing.T) {
	res, err := EmailCampaigns{}.Clean(campaignStagingRows(), Options{})
	require.NoError(t, err)

	width := len(EmailCampaigns{}.Table().Columns)
	for _, r := range res.Rows {
		assert.Len(t, r, width)
	}
	assert.Equal(t, Stats{RowsIn: 5, RowsOut: 3, Dropped: 1, Duplicates: 1, Repaired: 1}, res.Stats)

	c1 := res.Rows[0]
	assert.Equal(t, "C1", c1[0])
	assert.Equal(t, int64(1200), c1[3])
	assert.Equal(t, int64(1200), c1[4]) // delivered clamped to sent
	assert.Equal(t, 25.0, c1[9])

	c3 := res.Rows[2]
	assert.Nil(t, c3[1])
	assert.Nil(t, c3[2])
}
