package market

import (
	"testing"

	"housing_go/internal/domain"
)

func TestOfferIndex_CheapestBelow(t *testing.T) {
	offers := []*domain.SaleOffer{
		offerOf(1, 0, 1, 50, 50),
		offerOf(2, 2, 1, 120, 120),
		offerOf(3, 2, 1, 90, 90),
		offerOf(4, 4, 1, 400, 400),
	}
	for i, o := range offers {
		o.Seq = uint64(i + 1)
	}
	ix := newOfferIndex(offers)

	tests := []struct {
		ceiling int
		house   domain.HouseID
		found   bool
	}{
		{5, 4, true},
		{4, 3, true},
		{3, 3, true},
		{2, 1, true},
		{1, 1, true},
		{0, 0, false},
	}
	for _, tt := range tests {
		o, ok := ix.cheapestBelow(tt.ceiling)
		if ok != tt.found {
			t.Errorf("ceiling %d: found=%v, want %v", tt.ceiling, ok, tt.found)
			continue
		}
		if ok && o.House != tt.house {
			t.Errorf("ceiling %d: house %d, want %d", tt.ceiling, o.House, tt.house)
		}
	}

	ix.remove(offers[2])
	if o, _ := ix.cheapestBelow(3); o.House != 2 {
		t.Errorf("after removal expected house 2, got %d", o.House)
	}
	if ix.Len() != 3 {
		t.Errorf("expected 3 keys, got %d", ix.Len())
	}
}
