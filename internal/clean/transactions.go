package clean

import (
	"cmp"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sells-group/marketing-cli/internal/model"
	"github.com/sells-group/marketing-cli/internal/normalize"
	"github.com/sells-group/marketing-cli/internal/warehouse"
)

const transactionsName = "customer_transactions"

// Transactions cleans staging_customer_transactions into
// clean_customer_transactions.
type Transactions struct{}

func (Transactions) Name() string { return transactionsName }

func (Transactions) Staging() warehouse.StagingSpec {
	return warehouse.StagingSpec{
		Table: "staging_customer_transactions",
		Columns: []string{
			"transaction_id", "customer_id", "transaction_date", "order_value",
			"items_purchased", "referral_source", "campaign_reference", "discount_applied",
		},
	}
}

func (Transactions) Table() warehouse.TableSpec {
	return warehouse.TableSpec{
		Name: "clean_customer_transactions",
		Columns: []warehouse.Column{
			{Name: "transaction_id", Type: warehouse.TypeText, NotNull: true},
			{Name: "customer_id", Type: warehouse.TypeText, NotNull: true},
			{Name: "transaction_date", Type: warehouse.TypeDate},
			{Name: "order_value", Type: warehouse.TypeDecimal},
			{Name: "items_purchased", Type: warehouse.TypeInteger},
			{Name: "referral_source", Type: warehouse.TypeText, NotNull: true},
			{Name: "campaign_reference", Type: warehouse.TypeText},
			{Name: "discount_applied", Type: warehouse.TypeDecimal, NotNull: true},
			{Name: "net_revenue", Type: warehouse.TypeDecimal},
			{Name: "avg_item_value", Type: warehouse.TypeDecimal, NotNull: true},
		},
		Indexes: []string{"transaction_id", "customer_id", "campaign_reference", "transaction_date"},
	}
}

func (Transactions) Profile() warehouse.ProfileSpec {
	return warehouse.ProfileSpec{
		Table:       "clean_customer_transactions",
		Key:         "transaction_id",
		DateColumn:  "transaction_date",
		NullColumns: []string{"transaction_date", "order_value", "items_purchased", "campaign_reference"},
	}
}

func (Transactions) Clean(rows [][]string, _ Options) (*Result, error) {
	raws := make([]model.RawTransaction, len(rows))
	for i, r := range rows {
		raws[i] = model.RawTransaction{
			TransactionID:     col(r, 0),
			CustomerID:        col(r, 1),
			TransactionDate:   col(r, 2),
			OrderValue:        col(r, 3),
			ItemsPurchased:    col(r, 4),
			ReferralSource:    col(r, 5),
			CampaignReference: col(r, 6),
			DiscountApplied:   col(r, 7),
		}
	}

	txns, stats, err := CleanTransactions(raws)
	if err != nil {
		return nil, err
	}

	res := &Result{Stats: stats, Rows: make([][]any, len(txns))}
	for i, t := range txns {
		res.Rows[i] = []any{
			t.TransactionID, t.CustomerID, cell(t.TransactionDate), cell(t.OrderValue),
			cell(t.ItemsPurchased), t.ReferralSource, cell(t.CampaignReference), t.DiscountApplied,
			cell(t.NetRevenue), t.AvgItemValue,
		}
	}
	return res, nil
}

type transactionRow struct {
	raw model.RawTransaction
	rec model.Transaction
}

// CleanTransactions types purchase rows and derives net revenue and average
// item value. Rows missing transaction_id or customer_id are dropped.
func CleanTransactions(raws []model.RawTransaction) ([]model.Transaction, Stats, error) {
	stats := Stats{RowsIn: len(raws)}

	rows := make([]transactionRow, 0, len(raws))
	for _, raw := range raws {
		id := normalize.Text(raw.TransactionID)
		customer := normalize.Text(raw.CustomerID)
		if !id.OK() || !customer.OK() {
			stats.Dropped++
			continue
		}

		var b normalize.Builder
		rec := model.Transaction{
			TransactionID:     id.Value,
			CustomerID:        customer.Value,
			TransactionDate:   stats.date(&b, "transaction_date", raw.TransactionDate, defaultDates),
			OrderValue:        b.Currency("order_value", raw.OrderValue),
			ItemsPurchased:    b.Count("items_purchased", raw.ItemsPurchased),
			ReferralSource:    referral(raw.ReferralSource),
			CampaignReference: b.Text("campaign_reference", raw.CampaignReference),
			DiscountApplied:   decimal.Zero,
		}
		if discount := b.Currency("discount_applied", raw.DiscountApplied); discount != nil {
			rec.DiscountApplied = *discount
		}
		if err := rowError(transactionsName, id.Value, &b); err != nil {
			return nil, stats, err
		}

		if rec.OrderValue != nil {
			net := rec.OrderValue.Sub(rec.DiscountApplied)
			rec.NetRevenue = &net
		}
		rec.AvgItemValue = perUnit(rec.OrderValue, rec.ItemsPurchased, 2)
		rows = append(rows, transactionRow{raw: raw, rec: rec})
	}

	slices.SortFunc(rows, func(a, b transactionRow) int {
		return cmp.Or(
			strings.Compare(a.rec.TransactionID, b.rec.TransactionID),
			slices.Compare(a.raw.Fields(), b.raw.Fields()),
		)
	})

	out := make([]model.Transaction, len(rows))
	for i, r := range rows {
		out[i] = r.rec
	}
	stats.RowsOut = len(out)
	return out, stats, nil
}
