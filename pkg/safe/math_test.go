package safe

import (
	"math"
	"testing"
)

func TestAddSub(t *testing.T) {
	tests := []struct {
		name string
		op   func(a, b int64) int64
		a, b int64
		want int64
	}{
		{"add", Add, 19_500_000, 250, 19_500_250},
		{"add to max", Add, math.MaxInt64 - 1, 1, math.MaxInt64},
		{"add negative", Add, 100, -250, -150},
		{"sub", Sub, 30, 10, 20},
		{"sub to min", Sub, math.MinInt64 + 1, 1, math.MinInt64},
		{"sub negative", Sub, 0, -5, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.op(tt.a, tt.b); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestOverflowPanics(t *testing.T) {
	tests := []struct {
		name string
		fn   func()
	}{
		{"add overflow", func() { Add(math.MaxInt64, 1) }},
		{"add underflow", func() { Add(math.MinInt64, -1) }},
		{"sub overflow", func() { Sub(math.MaxInt64, -1) }},
		{"sub underflow", func() { Sub(math.MinInt64, 1) }},
		{"sum overflow", func() { Sum(math.MaxInt64/2, math.MaxInt64/2, 2) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("expected panic")
				}
			}()
			tt.fn()
		})
	}
}

func TestSum(t *testing.T) {
	if got := Sum(); got != 0 {
		t.Errorf("Sum() = %d, want 0", got)
	}
	if got := Sum(100, -40, 15); got != 75 {
		t.Errorf("Sum(100, -40, 15) = %d, want 75", got)
	}
}
