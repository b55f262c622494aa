package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// RawAd is one staging_paid_ads row.
type RawAd struct {
	AdID        string
	Date        string
	Platform    string
	AdType      string
	Impressions string
	Clicks      string
	Spend       string
	Revenue     string
	Conversions string
}

// Fields returns the columns in staging order.
func (a RawAd) Fields() []string {
	return []string{
		a.AdID,
		a.Date,
		a.Platform,
		a.AdType,
		a.Impressions,
		a.Clicks,
		a.Spend,
		a.Revenue,
		a.Conversions,
	}
}

// Ad is one ad unit's performance record after cleaning.
type Ad struct {
	AdID        string
	AdDate      *time.Time
	Platform    *string
	AdType      *string
	Impressions *int64
	Clicks      *int64
	Spend       *decimal.Decimal
	Revenue     *decimal.Decimal
	Conversions *int64

	CTRPct float64
	CPC    decimal.Decimal
	ROAS   float64
	ROIPct float64
}
