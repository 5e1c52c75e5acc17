// Package keyframes validates and repairs interpolation breakpoint
// sequences. The timeline's interpolate primitive requires its input
// range to be strictly increasing; repair enforces that with the
// smallest possible correction to each violating element.
//
// The package operates on flat numeric slices only and never returns
// an error: a repaired (possibly unchanged) sequence always comes back.
package keyframes

import "math"

// IsValidRange reports whether every element is strictly greater than
// its predecessor. Sequences of length 0 or 1 are trivially valid.
func IsValidRange(seq []float64) bool {
	for i := 1; i < len(seq); i++ {
		if seq[i] <= seq[i-1] {
			return false
		}
	}
	return true
}

// ValidateInterpolationRange returns a strictly increasing copy of seq.
// A single left-to-right pass keeps every already-valid element
// unchanged; an element that fails to exceed its predecessor is
// replaced by predecessor+1. The first element is never altered.
func ValidateInterpolationRange(seq []float64) []float64 {
	out := make([]float64, len(seq))
	prev := math.Inf(-1)
	for i, v := range seq {
		if v > prev {
			out[i] = v
		} else {
			out[i] = prev + 1
		}
		prev = out[i]
	}
	return out
}

// ValidateRangePair repairs domain and reconciles codomain to the same
// length: excess trailing codomain elements are truncated, a short
// codomain is padded by repeating its last value. Codomain values are
// never otherwise altered. An empty codomain stays empty even when the
// domain is longer; there is no value to repeat.
func ValidateRangePair[T any](domain []float64, codomain []T) ([]float64, []T) {
	d := ValidateInterpolationRange(domain)
	if len(codomain) == len(d) {
		return d, append([]T(nil), codomain...)
	}
	if len(codomain) > len(d) {
		return d, append([]T(nil), codomain[:len(d)]...)
	}
	c := append([]T(nil), codomain...)
	if len(c) == 0 {
		return d, c
	}
	last := c[len(c)-1]
	for len(c) < len(d) {
		c = append(c, last)
	}
	return d, c
}
