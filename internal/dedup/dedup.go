// Package dedup picks one survivor per natural key.
package dedup

import "cmp"

// Compare orders two rows of the same group; a negative result means a is
// preferred over b.
type Compare[T any] func(a, b T) int

// Survivors groups rows by key and keeps the most preferred row of each
// group according to cmp. Losing rows are discarded whole; nothing is
// merged into the survivor. Survivors are returned in first-appearance
// order of their key, along with the number of rows discarded.
//
// cmp should be a total order (end the chain with a full-row comparison) so
// the survivor does not depend on input order.
func Survivors[T any, K comparable](rows []T, key func(T) K, cmp Compare[T]) ([]T, int) {
	best := make(map[K]int, len(rows))
	var order []K
	out := make([]T, 0, len(rows))

	for _, r := range rows {
		k := key(r)
		i, seen := best[k]
		if !seen {
			best[k] = len(out)
			order = append(order, k)
			out = append(out, r)
			continue
		}
		if cmp(r, out[i]) < 0 {
			out[i] = r
		}
	}

	return out, len(rows) - len(order)
}

// Chain combines comparisons; the first non-zero result decides.
func Chain[T any](cmps ...Compare[T]) Compare[T] {
	return func(a, b T) int {
		for _, c := range cmps {
			if r := c(a, b); r != 0 {
				return r
			}
		}
		return 0
	}
}

// PreferPresent ranks rows where present is true ahead of rows where it is
// false.
func PreferPresent[T any](present func(T) bool) Compare[T] {
	return func(a, b T) int {
		pa, pb := present(a), present(b)
		switch {
		case pa && !pb:
			return -1
		case !pa && pb:
			return 1
		default:
			return 0
		}
	}
}

// Larger prefers the row whose value is larger. Rows without a value rank
// after rows with one.
func Larger[T any, V cmp.Ordered](get func(T) *V) Compare[T] {
	return func(a, b T) int {
		va, vb := get(a), get(b)
		switch {
		case va == nil && vb == nil:
			return 0
		case va == nil:
			return 1
		case vb == nil:
			return -1
		default:
			return cmp.Compare(*vb, *va)
		}
	}
}
