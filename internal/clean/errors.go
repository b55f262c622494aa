package clean

import (
	"errors"
	"fmt"

	"github.com/sells-group/marketing-cli/internal/normalize"
)

// RowError reports a staging value that could not be coerced. It aborts the
// cleaner for its dataset only.
type RowError struct {
	Dataset string
	Key     string
	Column  string
	Raw     string
	Err     error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("clean: %s row %q: column %s: cannot parse %q", e.Dataset, e.Key, e.Column, e.Raw)
}

func (e *RowError) Unwrap() error { return e.Err }

func rowError(dataset, key string, b *normalize.Builder) error {
	fe := b.FieldError()
	if fe == nil {
		return nil
	}
	return &RowError{Dataset: dataset, Key: key, Column: fe.Column, Raw: fe.Raw, Err: fe}
}

// AsRowError extracts a *RowError from err's chain.
func AsRowError(err error) (*RowError, bool) {
	var re *RowError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}
