package quant

import (
	"testing"
)

// FuzzToPence tests price conversion with fuzzing.
func FuzzToPence(f *testing.F) {
	f.Add(0.0)
	f.Add(1.23)
	f.Add(-1.23)
	f.Add(0.001)
	f.Add(195000.0)

	f.Fuzz(func(t *testing.T, val float64) {
		// This should never panic, just validate it doesn't crash
		_ = ToPence(Price(val))
	})
}

// FuzzParsePrice tests price parsing with fuzzing.
func FuzzParsePrice(f *testing.F) {
	f.Add("0")
	f.Add("195000")
	f.Add("-1.5")
	f.Add("1e6")

	f.Fuzz(func(t *testing.T, s string) {
		// Should handle invalid input gracefully (return error, not panic)
		_, _ = ParsePrice(s)
	})
}

