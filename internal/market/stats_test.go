package market

import (
	"math"
	"testing"

	"housing_go/pkg/quant"
)

const eps = 1e-9

func TestTracker_InitialState(t *testing.T) {
	m := newTestMarket(t, 5)
	for q := 0; q < 5; q++ {
		if got, want := m.AverageSalePrice(q), float64(m.Curve().Price(q)); got != want {
			t.Errorf("band %d: average sale price %v, want reference %v", q, got, want)
		}
	}
	if m.Stats().AverageDaysOnMarket() != 30 {
		t.Errorf("expected initial days on market 30, got %v", m.Stats().AverageDaysOnMarket())
	}
	if m.Stats().SoldToListRatio() != 1 {
		t.Errorf("expected initial sold/list ratio 1, got %v", m.Stats().SoldToListRatio())
	}
	if m.Stats().PriceIndex() != 1 || m.PriceIndexAppreciation() != 0 {
		t.Errorf("expected index 1 and no appreciation")
	}
}

func TestTracker_SaleUpdatesEMAs(t *testing.T) {
	m := newTestMarket(t, 5)
	cfg := m.Config()
	ref2 := m.AverageSalePrice(2)

	if err := m.ListOffer(1, 2, 10, 100, 2); err != nil {
		t.Fatal(err)
	}
	if err := m.UpdateOfferPrice(1, 80); err != nil {
		t.Fatal(err)
	}
	if err := m.SubmitBid(20, 120); err != nil {
		t.Fatal(err)
	}
	txs := m.Clear(5)
	if len(txs) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(txs))
	}
	if txs[0].DaysOnMarket != 90 {
		t.Errorf("expected 90 days on market, got %v", txs[0].DaysOnMarket)
	}

	g := math.Exp(-1.0 / cfg.PriceHorizon)
	e := math.Exp(-1.0 / cfg.StatsHorizon)

	wantPrice := g*ref2 + (1-g)*80
	if got := m.AverageSalePrice(2); math.Abs(got-wantPrice) > eps {
		t.Errorf("average sale price: got %v, want %v", got, wantPrice)
	}
	wantDays := e*30 + (1-e)*90
	if got := m.Stats().AverageDaysOnMarket(); math.Abs(got-wantDays) > eps {
		t.Errorf("days on market: got %v, want %v", got, wantDays)
	}
	wantRatio := e*1 + (1-e)*0.8
	if got := m.Stats().SoldToListRatio(); math.Abs(got-wantRatio) > eps {
		t.Errorf("sold/list ratio: got %v, want %v", got, wantRatio)
	}
}

func TestTracker_UntouchedBandsAreUnchanged(t *testing.T) {
	m := newTestMarket(t, 5)
	before := m.Statistics(0).AverageSalePrice

	_ = m.ListOffer(1, 3, 10, 100, 0)
	_ = m.SubmitBid(20, 120)
	m.Clear(1)

	after := m.Statistics(1).AverageSalePrice
	for q := range before {
		if q == 3 {
			if after[q] == before[q] {
				t.Errorf("band 3 should have moved")
			}
			continue
		}
		if after[q] != before[q] {
			t.Errorf("band %d changed without a sale: %v -> %v", q, before[q], after[q])
		}
	}
}

func TestTracker_PriceIndexAndAppreciation(t *testing.T) {
	m := newTestMarket(t, 5)
	cfg := m.Config()
	m.Clear(1)

	var sum float64
	for q := 0; q < 5; q++ {
		sum += m.AverageSalePrice(q)
	}
	wantIndex := sum / (5 * m.Curve().Mean())
	if got := m.Stats().PriceIndex(); math.Abs(got-wantIndex) > eps {
		t.Errorf("price index: got %v, want %v", got, wantIndex)
	}

	f := math.Exp(-1.0 / cfg.AppreciationHorizon)
	wantAppr := (1 - f) * (wantIndex - 1)
	if got := m.Stats().Appreciation(); math.Abs(got-wantAppr) > eps {
		t.Errorf("appreciation: got %v, want %v", got, wantAppr)
	}
	if got := m.PriceIndexAppreciation(); math.Abs(got-12*wantAppr) > eps {
		t.Errorf("annual appreciation: got %v, want %v", got, 12*wantAppr)
	}

	// A second quiet tick: index unchanged, appreciation decays.
	m.Clear(2)
	if got := m.Stats().Appreciation(); math.Abs(got-f*wantAppr) > eps {
		t.Errorf("appreciation after quiet tick: got %v, want %v", got, f*wantAppr)
	}
}

func TestTracker_NegligibleListPriceSkipsRatio(t *testing.T) {
	m := newTestMarket(t, 5)
	tx := m.completeTransaction(bidOf(20, 1), offerOf(1, 2, 10, 0.01, 0.01), 1)
	if tx.SoldToListRatio() != 0 {
		t.Errorf("expected zero ratio for negligible list price")
	}
	if m.Stats().SoldToListRatio() != 1 {
		t.Errorf("ratio EMA should be untouched, got %v", m.Stats().SoldToListRatio())
	}
}

func TestDiagnostics_CapturedBeforeClearing(t *testing.T) {
	m := newTestMarket(t, 5)
	_ = m.ListOffer(2, 1, 10, 100, 0)
	_ = m.ListOffer(1, 3, 11, 300, 0)
	_ = m.SubmitBid(20, 150)
	_ = m.SubmitBid(21, 50)

	m.Clear(1)
	d := m.Diagnostics()

	if d.Tick != 1 || d.Bids != 2 || d.Offers != 2 {
		t.Fatalf("unexpected counts: %+v", d)
	}
	if d.Sales != 0 {
		t.Errorf("no sales before the first snapshot, got %d", d.Sales)
	}
	if d.AverageBidPrice != 100 || d.AverageOfferPrice != 200 {
		t.Errorf("averages: bid=%v offer=%v", d.AverageBidPrice, d.AverageOfferPrice)
	}
	// bids in submission order, offers in house order
	if d.BidPrices[0] != 150 || d.BidPrices[1] != 50 {
		t.Errorf("bid prices: %v", d.BidPrices)
	}
	if d.OfferPrices[0] != 300 || d.OfferPrices[1] != 100 {
		t.Errorf("offer prices: %v", d.OfferPrices)
	}

	// the 100 offer sold at tick 1; the next snapshot reports it
	m.Clear(2)
	d2 := m.Diagnostics()
	if d2.Sales != 1 || d2.Offers != 1 || d2.Bids != 0 {
		t.Errorf("second snapshot: %+v", d2)
	}
}

func TestDiagnostics_ReturnsCopy(t *testing.T) {
	m := newTestMarket(t, 5)
	_ = m.SubmitBid(20, 150)
	m.Clear(1)

	d := m.Diagnostics()
	d.BidPrices[0] = -1
	if m.Diagnostics().BidPrices[0] != 150 {
		t.Error("diagnostics leaked internal slice")
	}
}

func TestPriceCurve(t *testing.T) {
	m := newTestMarket(t, 5)
	curve := m.Stats().PriceCurve()
	if len(curve) != 5 {
		t.Fatalf("expected 5 points, got %d", len(curve))
	}
	for q, p := range curve {
		if p.Quality != q || p.Reference != p.Current {
			t.Errorf("point %d: %+v", q, p)
		}
	}
}

func bidOf(buyer uint64, price float64) bidRecord {
	return bidRecord{Buyer: householdID(buyer), Price: quant.Price(price)}
}
