package normalize

import (
	"time"

	"github.com/shopspring/decimal"
)

// Builder coerces the fields of one record. The first Invalid field is
// remembered and every later call becomes a no-op returning nil, so a
// record builder can be written as straight-line code and checked once
// with Err.
type Builder struct {
	err *FieldError
}

// Err returns the first coercion failure, or nil.
func (b *Builder) Err() error {
	if b.err == nil {
		return nil
	}
	return b.err
}

// FieldError returns the first coercion failure with its concrete type.
func (b *Builder) FieldError() *FieldError { return b.err }

func record[T any](b *Builder, column, kind string, f Field[T]) *T {
	if b.err != nil {
		return nil
	}
	if f.State == Invalid {
		b.err = &FieldError{Column: column, Kind: kind, Raw: f.Raw}
		return nil
	}
	return f.Ptr()
}

// Text returns the trimmed text or nil.
func (b *Builder) Text(column, raw string) *string {
	return record(b, column, "text", Text(raw))
}

// Int returns the floor-truncated integer or nil.
func (b *Builder) Int(column, raw string) *int64 {
	return record(b, column, "integer", Int(raw))
}

// Count returns the floor-truncated non-negative integer or nil. Negative
// values fail the record.
func (b *Builder) Count(column, raw string) *int64 {
	return record(b, column, "count", Count(raw))
}

// Decimal returns the parsed decimal or nil.
func (b *Builder) Decimal(column, raw string) *decimal.Decimal {
	return record(b, column, "decimal", Decimal(raw))
}

// Currency returns the currency-stripped amount or nil.
func (b *Builder) Currency(column, raw string) *decimal.Decimal {
	return record(b, column, "currency", Currency(raw))
}

// Date returns the resolved date or nil. Dates never fail the record.
func (b *Builder) Date(column, raw string, layouts []DateLayout) *time.Time {
	return record(b, column, "date", Date(raw, layouts))
}
