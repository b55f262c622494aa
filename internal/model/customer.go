package model

import "time"

// RawCustomer is one staging_customer_master row.
type RawCustomer struct {
	CustomerID      string
	SignupDate      string
	Age             string
	State           string
	CustomerSegment string
	EmailOptIn      string
	LifetimeOrders  string
}

// Fields returns the columns in staging order.
func (c RawCustomer) Fields() []string {
	return []string{
		c.CustomerID,
		c.SignupDate,
		c.Age,
		c.State,
		c.CustomerSegment,
		c.EmailOptIn,
		c.LifetimeOrders,
	}
}

// Customer is one deduplicated customer record after cleaning.
type Customer struct {
	CustomerID      string
	SignupDate      *time.Time
	Age             *int64
	State           *string
	CustomerSegment *string
	EmailOptIn      bool
	LifetimeOrders  *int64

	// TenureYears is whole years from SignupDate to the run's as-of date.
	TenureYears *int64
	AgeGroup    string
}
