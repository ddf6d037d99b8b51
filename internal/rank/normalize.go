package rank

import (
	"math"
	"sort"
)

// sanitize maps NaN and infinities to 0.0 in place of failing; evidence gaps
// are "no evidence", never errors.
func sanitize(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, v := range xs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out[i] = v
	}
	return out
}

// MinMax scales values to [0, 1] by (x − min) / (max − min). A constant
// column carries no rank information and maps to all zeros rather than NaN.
func MinMax(xs []float64) []float64 {
	if len(xs) == 0 {
		return nil
	}
	s := sanitize(xs)
	lo, hi := s[0], s[0]
	for _, v := range s[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	out := make([]float64, len(s))
	if hi == lo {
		return out
	}
	for i, v := range s {
		out[i] = (v - lo) / (hi - lo)
	}
	return out
}

// WinsorizeTop caps values above the q-th quantile at that quantile,
// dampening extreme upper-tail outliers before scaling. Values at or below
// the quantile pass through unchanged.
func WinsorizeTop(xs []float64, q float64) []float64 {
	if len(xs) == 0 {
		return nil
	}
	s := sanitize(xs)
	limit := Quantile(s, q)
	out := make([]float64, len(s))
	for i, v := range s {
		if v > limit {
			out[i] = limit
		} else {
			out[i] = v
		}
	}
	return out
}

// Quantile computes the q-th quantile with linear interpolation between
// order statistics. q is clamped to [0, 1].
func Quantile(xs []float64, q float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	if q < 0 {
		q = 0
	}
	if q > 1 {
		q = 1
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	pos := q * float64(len(sorted)-1)
	lower := int(math.Floor(pos))
	upper := int(math.Ceil(pos))
	if lower == upper {
		return sorted[lower]
	}
	frac := pos - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac
}
