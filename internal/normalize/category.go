package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Title title-cases the trimmed input ("paid SOCIAL" → "Paid Social").
func Title(s string) string {
	return cases.Title(language.English).String(strings.TrimSpace(s))
}

// Squash lower-cases s and drops everything but letters and digits, so
// "Paid_Search", "paid search" and "PAID-SEARCH" all read "paidsearch".
func Squash(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Matcher tests a squashed category value.
type Matcher func(squashed string) bool

// Equals matches any of the given values after squashing them.
func Equals(values ...string) Matcher {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[Squash(v)] = true
	}
	return func(s string) bool { return set[s] }
}

// Contains matches when the squashed value contains sub.
func Contains(sub string) Matcher {
	sub = Squash(sub)
	return func(s string) bool { return strings.Contains(s, sub) }
}

// Pattern matches the squashed value against re.
func Pattern(re *regexp.Regexp) Matcher {
	return re.MatchString
}

// Any matches when at least one of ms matches.
func Any(ms ...Matcher) Matcher {
	return func(s string) bool {
		for _, m := range ms {
			if m(s) {
				return true
			}
		}
		return false
	}
}

// Rule maps matching values to a canonical category.
type Rule struct {
	Match Matcher
	Value string
}

// Rules is an ordered category map. The first matching rule wins; when none
// matches, Fallback is applied to the trimmed input.
type Rules struct {
	Rules    []Rule
	Fallback func(string) string
}

// Apply maps raw to its canonical category.
func (r Rules) Apply(raw string) string {
	s := Squash(raw)
	for _, rule := range r.Rules {
		if rule.Match(s) {
			return rule.Value
		}
	}
	if r.Fallback == nil {
		return strings.TrimSpace(raw)
	}
	return r.Fallback(raw)
}
