package engine

import (
	"path/filepath"
	"testing"

	"housing_go/internal/event"
	"housing_go/internal/market"
	"housing_go/internal/storage"
	"housing_go/pkg/quant"
)

func newTestMarket(t *testing.T) *market.Market {
	t.Helper()
	m, err := market.New(market.DefaultConfig())
	if err != nil {
		t.Fatalf("market.New failed: %v", err)
	}
	return m
}

func newTestStore(t *testing.T) *storage.EventStore {
	t.Helper()
	store, err := storage.NewEventStore(filepath.Join(t.TempDir(), "events.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// tickScript lists two houses, bids on both and clears.
func tickScript(tick quant.Tick) []event.Event {
	base := event.BaseEvent{Tick: tick}
	h := uint64(tick) * 10
	return []event.Event{
		&event.OfferListedEvent{BaseEvent: base, House: houseID(h + 1), Owner: 1, Quality: 10, Price: 150000},
		&event.OfferListedEvent{BaseEvent: base, House: houseID(h + 2), Owner: 2, Quality: 30, Price: 260000},
		&event.BidSubmittedEvent{BaseEvent: base, Buyer: 3, Price: 270000},
		&event.BidSubmittedEvent{BaseEvent: base, Buyer: 4, Price: 155000},
		&event.MarketClearedEvent{BaseEvent: base},
	}
}

func quantTick(i int) quant.Tick { return quant.Tick(i) }
