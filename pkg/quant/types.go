package quant

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Price is a house price in pounds. Market statistics are exponential
// averages, so prices stay in floating point inside the core.
type Price float64

// Pence is a monetary amount in integer pence. Used by the settlement ledger
// where amounts are accumulated and must not drift.
type Pence int64

// Tick is one discrete simulation step (one market clearing).
type Tick int64

const (
	PenceScale = 100
)

// ToPence converts a Price to Pence, rounding half away from zero.
func ToPence(p Price) Pence {
	return Pence(math.Round(float64(p) * PenceScale))
}

// Float returns the price as a plain float64.
func (p Price) Float() float64 {
	return float64(p)
}

// IsValid reports whether p is a usable market price: finite and strictly positive.
func (p Price) IsValid() bool {
	f := float64(p)
	return f > 0 && !math.IsInf(f, 0) && !math.IsNaN(f)
}

func (p Price) String() string {
	return fmt.Sprintf("%.2f", float64(p))
}

func (p Pence) String() string {
	return decimal.New(int64(p), -2).StringFixed(2)
}

// ParsePrice parses a decimal string (e.g. "195000" or "1234.56") into a Price.
// Config files carry money as strings so that no precision is lost before the boundary.
func ParsePrice(s string) (Price, error) {
	if s == "" {
		return 0, fmt.Errorf("empty price")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("failed to parse price %q: %w", s, err)
	}
	f, _ := d.Float64()
	return Price(f), nil
}

// RoundPrice rounds p to whole pence for presentation.
func RoundPrice(p Price) Price {
	f, _ := decimal.NewFromFloat(float64(p)).Round(2).Float64()
	return Price(f)
}
