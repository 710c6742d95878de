package common

import "slices"

// Coalesce picks the first value that differs from T's zero value.
// Used to fill unset staging fields with defaults.
//
// Parameters:
//   - values: candidates in priority order
//
// Returns:
//   - T: the first non-zero candidate, or the zero value when every candidate is zero
func Coalesce[T comparable](values ...T) T {
	var zero T
	if i := slices.IndexFunc(values, func(v T) bool { return v != zero }); i >= 0 {
		return values[i]
	}
	return zero
}

// FirstOr returns the first element of values, or fallback when values is empty.
// Surface capability lists are ordered by preference, so the first entry is the adapter's choice.
//
// Parameters:
//   - values: the ordered candidates
//   - fallback: the value used when values is empty
//
// Returns:
//   - T: values[0] or fallback
func FirstOr[T any](values []T, fallback T) T {
	if len(values) == 0 {
		return fallback
	}
	return values[0]
}
