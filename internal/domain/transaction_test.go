package domain

import "testing"

func TestTransaction_SoldToListRatio(t *testing.T) {
	tests := []struct {
		name    string
		price   float64
		initial float64
		want    float64
	}{
		{"Discount", 90, 100, 0.9},
		{"Premium", 110, 100, 1.1},
		{"Negligible initial price", 100, 0.01, 0},
		{"Zero initial price", 100, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := Transaction{Price: pricef(tt.price), InitialPrice: pricef(tt.initial)}
			if got := tx.SoldToListRatio(); got != tt.want {
				t.Errorf("SoldToListRatio() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSaleOffer_TicksListed(t *testing.T) {
	o := &SaleOffer{ListedTick: 3}
	if got := o.TicksListed(10); got != 7 {
		t.Errorf("TicksListed = %d, want 7", got)
	}
}
