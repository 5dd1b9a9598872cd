package safe

import "math"

// Div returns a/b, or 0 when b is zero or the result is not finite.
// Averages over empty collections use this instead of producing NaN.
func Div(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	r := a / b
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}

// EMA folds value into avg with the given decay: decay*avg + (1-decay)*value.
func EMA(avg, value, decay float64) float64 {
	return decay*avg + (1.0-decay)*value
}

// Mean returns the arithmetic mean of xs, or 0 for an empty slice.
func Mean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return Div(sum, float64(len(xs)))
}
