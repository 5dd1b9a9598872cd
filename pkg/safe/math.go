// Package safe holds overflow-checked integer arithmetic for the pence ledger
// and zero-guarded float helpers for the market statistics.
package safe

import "math"

// Add returns a+b and panics if the sum leaves the int64 range.
// Ledger overflow means the books are already wrong; there is nothing to recover.
func Add(a, b int64) int64 {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		panic("LEDGER_ADD_OVERFLOW")
	}
	return a + b
}

// Sub returns a-b and panics if the difference leaves the int64 range.
func Sub(a, b int64) int64 {
	if (b > 0 && a < math.MinInt64+b) || (b < 0 && a > math.MaxInt64+b) {
		panic("LEDGER_SUB_OVERFLOW")
	}
	return a - b
}

// Sum adds xs with Add.
func Sum(xs ...int64) int64 {
	var total int64
	for _, x := range xs {
		total = Add(total, x)
	}
	return total
}
