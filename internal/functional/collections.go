// Package functional provides small generic collection helpers; the CLI
// uses SortedKeys to print findings in a deterministic order.
package functional

import (
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"
)

// Merge merges b into a: if x is in b but not a, a[x] := b[x]; if x is in
// both, a[x] := both(a[x], b[x]).
func Merge[T comparable, S any](a map[T]S, b map[T]S, both func(x, y S) S) {
	for x, yb := range b {
		if ya, ok := a[x]; ok {
			a[x] = both(ya, yb)
		} else {
			a[x] = yb
		}
	}
}

// SetToOrderedSlice converts a set represented as a map from elements to
// booleans into a slice sorted in increasing order, dropping elements
// mapped to false.
func SetToOrderedSlice[T constraints.Ordered](set map[T]bool) []T {
	var s []T
	for r, present := range set {
		if present {
			s = append(s, r)
		}
	}
	slices.Sort(s)
	return s
}

// SortedKeys returns the keys of m sorted in increasing order.
func SortedKeys[T constraints.Ordered, V any](m map[T]V) []T {
	keys := make([]T, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Contains returns true when there is some y in a such that x == y.
func Contains[T comparable](a []T, x T) bool {
	return slices.Contains(a, x)
}
