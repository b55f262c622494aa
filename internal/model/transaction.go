package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// RawTransaction is one staging_customer_transactions row.
type RawTransaction struct {
	TransactionID     string
	CustomerID        string
	TransactionDate   string
	OrderValue        string
	ItemsPurchased    string
	ReferralSource    string
	CampaignReference string
	DiscountApplied   string
}

// Fields returns the columns in staging order.
func (t RawTransaction) Fields() []string {
	return []string{
		t.TransactionID,
		t.CustomerID,
		t.TransactionDate,
		t.OrderValue,
		t.ItemsPurchased,
		t.ReferralSource,
		t.CampaignReference,
		t.DiscountApplied,
	}
}

// Transaction is one customer purchase after cleaning.
type Transaction struct {
	TransactionID     string
	CustomerID        string
	TransactionDate   *time.Time
	OrderValue        *decimal.Decimal
	ItemsPurchased    *int64
	ReferralSource    string
	CampaignReference *string
	DiscountApplied   decimal.Decimal

	NetRevenue   *decimal.Decimal
	AvgItemValue decimal.Decimal
}
