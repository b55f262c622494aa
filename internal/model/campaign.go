// Package model defines raw staged rows and the typed clean records built from them.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// RawCampaign is one staging_email_campaigns row, every column as text.
type RawCampaign struct {
	CampaignID   string
	CampaignName string
	SendDate     string
	EmailsSent   string
	Delivered    string
	Opens        string
	Clicks       string
	Unsubscribes string
	Cost         string
}

// Fields returns the columns in staging order.
func (c RawCampaign) Fields() []string {
	return []string{
		c.CampaignID,
		c.CampaignName,
		c.SendDate,
		c.EmailsSent,
		c.Delivered,
		c.Opens,
		c.Clicks,
		c.Unsubscribes,
		c.Cost,
	}
}

// Campaign is one outbound email send batch after cleaning.
type Campaign struct {
	CampaignID   string
	CampaignName *string
	SendDate     *time.Time
	EmailsSent   *int64
	Delivered    *int64
	Opens        *int64
	Clicks       *int64
	Unsubscribes *int64
	Cost         *decimal.Decimal

	OpenRatePct         float64
	ClickThroughRatePct float64
	CostPerEmail        decimal.Decimal
}
