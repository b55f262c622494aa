package clean

import (
	"slices"
	"strings"

	"github.com/sells-group/marketing-cli/internal/dedup"
	"github.com/sells-group/marketing-cli/internal/model"
	"github.com/sells-group/marketing-cli/internal/normalize"
	"github.com/sells-group/marketing-cli/internal/warehouse"
)

const customersName = "customer_master"

// Customers cleans staging_customer_master into clean_customer_master.
type Customers struct{}

func (Customers) Name() string { return customersName }

func (Customers) Staging() warehouse.StagingSpec {
	return warehouse.StagingSpec{
		Table: "staging_customer_master",
		Columns: []string{
			"customer_id", "signup_date", "age", "state", "customer_segment",
			"email_opt_in", "lifetime_orders",
		},
	}
}

func (Customers) Table() warehouse.TableSpec {
	return warehouse.TableSpec{
		Name: "clean_customer_master",
		Columns: []warehouse.Column{
			{Name: "customer_id", Type: warehouse.TypeText, NotNull: true},
			{Name: "signup_date", Type: warehouse.TypeDate},
			{Name: "age", Type: warehouse.TypeInteger},
			{Name: "state", Type: warehouse.TypeText},
			{Name: "customer_segment", Type: warehouse.TypeText},
			{Name: "email_opt_in", Type: warehouse.TypeBool, NotNull: true},
			{Name: "lifetime_orders", Type: warehouse.TypeInteger},
			{Name: "customer_tenure_years", Type: warehouse.TypeInteger},
			{Name: "age_group", Type: warehouse.TypeText, NotNull: true},
		},
		Indexes: []string{"customer_id", "customer_segment", "signup_date"},
	}
}

func (Customers) Profile() warehouse.ProfileSpec {
	return warehouse.ProfileSpec{
		Table:       "clean_customer_master",
		Key:         "customer_id",
		DateColumn:  "signup_date",
		NullColumns: []string{"signup_date", "age", "state", "customer_segment"},
	}
}

func (Customers) Clean(rows [][]string, opts Options) (*Result, error) {
	raws := make([]model.RawCustomer, len(rows))
	for i, r := range rows {
		raws[i] = model.RawCustomer{
			CustomerID:      col(r, 0),
			SignupDate:      col(r, 1),
			Age:             col(r, 2),
			State:           col(r, 3),
			CustomerSegment: col(r, 4),
			EmailOptIn:      col(r, 5),
			LifetimeOrders:  col(r, 6),
		}
	}

	customers, stats, err := CleanCustomers(raws, opts)
	if err != nil {
		return nil, err
	}

	res := &Result{Stats: stats, Rows: make([][]any, len(customers))}
	for i, c := range customers {
		res.Rows[i] = []any{
			c.CustomerID, cell(c.SignupDate), cell(c.Age), cell(c.State), cell(c.CustomerSegment),
			c.EmailOptIn, cell(c.LifetimeOrders), cell(c.TenureYears), c.AgeGroup,
		}
	}
	return res, nil
}

type customerRow struct {
	raw model.RawCustomer
	rec model.Customer
	// ageRepaired is set when an out-of-range age was nulled.
	ageRepaired bool
}

// customerOrder ranks duplicate customer rows: a known age first, then a
// known state, then the latest signup. The raw text breaks remaining ties.
var customerOrder = dedup.Chain(
	dedup.PreferPresent(func(r customerRow) bool { return r.rec.Age != nil }),
	dedup.PreferPresent(func(r customerRow) bool { return r.rec.State != nil }),
	dedup.Larger(func(r customerRow) *int64 {
		if r.rec.SignupDate == nil {
			return nil
		}
		u := r.rec.SignupDate.Unix()
		return &u
	}),
	func(a, b customerRow) int { return slices.Compare(a.raw.Fields(), b.raw.Fields()) },
)

// CleanCustomers types, range-checks and deduplicates customer rows, keeping
// one row per customer_id. Ages outside 18-100 become NULL. Tenure is whole
// years from signup to opts.AsOf.
func CleanCustomers(raws []model.RawCustomer, opts Options) ([]model.Customer, Stats, error) {
	stats := Stats{RowsIn: len(raws)}

	rows := make([]customerRow, 0, len(raws))
	for _, raw := range raws {
		id := normalize.Text(raw.CustomerID)
		if !id.OK() {
			stats.Dropped++
			continue
		}

		var b normalize.Builder
		rec := model.Customer{
			CustomerID:      id.Value,
			SignupDate:      stats.date(&b, "signup_date", raw.SignupDate, defaultDates),
			Age:             b.Int("age", raw.Age),
			State:           upper(b.Text("state", raw.State)),
			CustomerSegment: b.Text("customer_segment", raw.CustomerSegment),
			EmailOptIn:      normalize.Bool(raw.EmailOptIn),
			LifetimeOrders:  b.Count("lifetime_orders", raw.LifetimeOrders),
		}
		if err := rowError(customersName, id.Value, &b); err != nil {
			return nil, stats, err
		}

		row := customerRow{raw: raw, rec: rec}
		if rec.Age != nil && (*rec.Age < minAge || *rec.Age > maxAge) {
			row.rec.Age = nil
			row.ageRepaired = true
		}
		rows = append(rows, row)
	}

	rows, stats.Duplicates = dedup.Survivors(rows,
		func(r customerRow) string { return r.rec.CustomerID }, customerOrder)

	slices.SortFunc(rows, func(a, b customerRow) int {
		return strings.Compare(a.rec.CustomerID, b.rec.CustomerID)
	})

	out := make([]model.Customer, len(rows))
	for i, r := range rows {
		c := r.rec
		if r.ageRepaired {
			stats.Repaired++
		}
		if c.SignupDate != nil {
			years := wholeYears(*c.SignupDate, opts.AsOf)
			c.TenureYears = &years
		}
		c.AgeGroup = ageGroup(c.Age)
		out[i] = c
	}
	stats.RowsOut = len(out)
	return out, stats, nil
}

func upper(s *string) *string {
	if s == nil {
		return nil
	}
	u := strings.ToUpper(*s)
	return &u
}
