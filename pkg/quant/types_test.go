package quant

import (
	"math"
	"testing"
)

func TestToPence(t *testing.T) {
	tests := []struct {
		input    Price
		expected Pence
	}{
		{1.23, 123},
		{0.005, 1},
		{0.0, 0},
		{-1.23, -123},
		{195000, 19500000},
	}

	for _, tt := range tests {
		got := ToPence(tt.input)
		if got != tt.expected {
			t.Errorf("ToPence(%f) = %d; want %d", float64(tt.input), got, tt.expected)
		}
	}
}

func TestPence_String(t *testing.T) {
	p := Pence(123456)
	expected := "1234.56"
	if p.String() != expected {
		t.Errorf("Pence(123456).String() = %s; want %s", p.String(), expected)
	}
}

func TestPrice_IsValid(t *testing.T) {
	tests := []struct {
		name string
		p    Price
		want bool
	}{
		{"positive", 100, true},
		{"zero", 0, false},
		{"negative", -5, false},
		{"NaN", Price(math.NaN()), false},
		{"Inf", Price(math.Inf(1)), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.IsValid(); got != tt.want {
				t.Errorf("Price(%v).IsValid() = %v, want %v", float64(tt.p), got, tt.want)
			}
		})
	}
}

func TestParsePrice(t *testing.T) {
	p, err := ParsePrice("195000.50")
	if err != nil {
		t.Fatalf("ParsePrice failed: %v", err)
	}
	if p != 195000.50 {
		t.Errorf("expected 195000.50, got %v", p)
	}

	if _, err := ParsePrice("abc"); err == nil {
		t.Error("expected error for non-numeric price")
	}
	if _, err := ParsePrice(""); err == nil {
		t.Error("expected error for empty price")
	}
}

func TestRoundPrice(t *testing.T) {
	if got := RoundPrice(100.456); got != 100.46 {
		t.Errorf("RoundPrice(100.456) = %v, want 100.46", got)
	}
}
