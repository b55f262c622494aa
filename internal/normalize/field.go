// Package normalize coerces free-text staging values into typed fields.
//
// Every coercion returns a Field tagged Valid, Null or Invalid. Null covers
// blank and explicit-missing text; Invalid is reserved for text that is present
// but cannot be read as the requested type, and callers treat it as fatal.
package normalize

import (
	"fmt"
	"strings"
)

// State tags the outcome of a coercion.
type State uint8

const (
	Null State = iota
	Valid
	Invalid
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Null:
		return "null"
	case Valid:
		return "valid"
	case Invalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Field is a tagged coercion result.
type Field[T any] struct {
	Value T
	State State
	Raw   string
}

// Ptr returns a pointer to the value, or nil unless the field is Valid.
func (f Field[T]) Ptr() *T {
	if f.State != Valid {
		return nil
	}
	v := f.Value
	return &v
}

// OK reports whether the field holds a value.
func (f Field[T]) OK() bool { return f.State == Valid }

func valid[T any](v T, raw string) Field[T] { return Field[T]{Value: v, State: Valid, Raw: raw} }
func null[T any](raw string) Field[T]      { return Field[T]{State: Null, Raw: raw} }
func invalid[T any](raw string) Field[T]   { return Field[T]{State: Invalid, Raw: raw} }

// FieldError describes a value that could not be coerced.
type FieldError struct {
	Column string
	Kind   string
	Raw    string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("normalize: column %s: cannot read %q as %s", e.Column, e.Raw, e.Kind)
}

// missingTokens are treated the same as blank input.
var missingTokens = map[string]bool{
	"":     true,
	"null": true,
	"n/a":  true,
	"na":   true,
	"none": true,
	"nan":  true,
}

// IsMissing reports whether raw is blank or an explicit missing marker.
func IsMissing(raw string) bool {
	return missingTokens[strings.ToLower(strings.TrimSpace(raw))]
}

// Text trims raw; blank and missing markers become Null.
func Text(raw string) Field[string] {
	if IsMissing(raw) {
		return null[string](raw)
	}
	return valid(strings.TrimSpace(raw), raw)
}

// truthy is the closed vocabulary of values read as true.
var truthy = map[string]bool{
	"TRUE": true,
	"YES":  true,
	"1":    true,
	"T":    true,
	"Y":    true,
}

// Bool is closed-world: anything outside the truthy vocabulary, null
// included, is false.
func Bool(raw string) bool {
	return truthy[strings.ToUpper(strings.TrimSpace(raw))]
}
