package event

import (
	"testing"

	"housing_go/internal/domain"
)

func TestEventPool(t *testing.T) {
	// Acquire and use
	ev := AcquireBidSubmittedEvent()
	ev.Buyer = 42
	ev.Price = 195000

	if ev.Buyer != 42 {
		t.Error("Buyer not set")
	}

	// Release
	ReleaseBidSubmittedEvent(ev)

	// Acquire again - should be reset
	ev2 := AcquireBidSubmittedEvent()
	if ev2.Buyer != 0 || ev2.Price != 0 {
		t.Error("Event should be reset after release")
	}
	ReleaseBidSubmittedEvent(ev2)
}

func TestFromIntent(t *testing.T) {
	tests := []struct {
		name   string
		intent domain.Intent
		want   Type
	}{
		{"list", domain.Intent{Kind: domain.IntentList, Household: 1, House: 2, Quality: 3, Price: 100}, EvOfferListed},
		{"reprice", domain.Intent{Kind: domain.IntentReprice, House: 2, Price: 90}, EvOfferRepriced},
		{"withdraw", domain.Intent{Kind: domain.IntentWithdraw, House: 2}, EvOfferWithdrawn},
		{"bid", domain.Intent{Kind: domain.IntentBid, Household: 5, Price: 120}, EvBidSubmitted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := FromIntent(tt.intent, 7)
			if ev == nil {
				t.Fatal("expected event")
			}
			if ev.GetType() != tt.want {
				t.Errorf("type = %v, want %v", ev.GetType(), tt.want)
			}
			if ev.GetTick() != 7 {
				t.Errorf("tick = %d, want 7", ev.GetTick())
			}
			SetSeq(ev, 99)
			if ev.GetSeq() != 99 {
				t.Errorf("seq = %d, want 99", ev.GetSeq())
			}
		})
	}

	if FromIntent(domain.Intent{Kind: "NOPE"}, 1) != nil {
		t.Error("unknown intent kind should yield nil")
	}
}

func TestFromIntent_ListCarriesFields(t *testing.T) {
	ev := FromIntent(domain.Intent{Kind: domain.IntentList, Household: 1, House: 2, Quality: 3, Price: 100}, 4)
	l, ok := ev.(*OfferListedEvent)
	if !ok {
		t.Fatalf("unexpected type %T", ev)
	}
	if l.Owner != 1 || l.House != 2 || l.Quality != 3 || l.Price != 100 {
		t.Errorf("fields not carried: %+v", l)
	}
}

// BenchmarkWithoutPool measures allocation without pool
func BenchmarkWithoutPool(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		ev := &BidSubmittedEvent{Buyer: 1, Price: 195000}
		_ = ev
	}
}

// BenchmarkWithPool measures allocation with pool
func BenchmarkWithPool(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		ev := AcquireBidSubmittedEvent()
		ev.Buyer = 1
		ev.Price = 195000
		ReleaseBidSubmittedEvent(ev)
	}
}
