// Package market implements a periodic double-auction housing market: an
// offer book, a per-tick bid queue, a quality-stratified clearing engine and
// the rolling statistics that the clearing feeds.
//
// A Market is not safe for concurrent use. Callers serialise access per
// instance (see internal/engine).
package market

import (
	"fmt"

	"housing_go/internal/domain"
	"housing_go/pkg/quant"
)

// Market is one housing market instance.
type Market struct {
	cfg   Config
	curve Curve
	book  *OfferBook
	bids  *BidQueue
	stats *Tracker
}

// New creates a market with fresh statistics seeded from the reference curve.
func New(cfg Config) (*Market, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid market config: %w", err)
	}
	curve := cfg.Curve()
	return &Market{
		cfg:   cfg,
		curve: curve,
		book:  newOfferBook(),
		bids:  newBidQueue(),
		stats: newTracker(cfg, curve),
	}, nil
}

// ListOffer puts house on the market at price. An existing listing for the
// same house is replaced, including its initial price and listing tick.
func (m *Market) ListOffer(house domain.HouseID, quality int, owner domain.HouseholdID, price quant.Price, tick quant.Tick) error {
	if quality < 0 || quality >= m.cfg.QualityBands {
		return fmt.Errorf("house %d quality %d: %w", house, quality, domain.ErrInvalidQuality)
	}
	if !price.IsValid() {
		return fmt.Errorf("house %d price %v: %w", house, float64(price), domain.ErrInvalidPrice)
	}
	m.book.put(domain.SaleOffer{
		House:        house,
		Owner:        owner,
		Quality:      quality,
		InitialPrice: price,
		CurrentPrice: price,
		ListedTick:   tick,
	})
	return nil
}

// UpdateOfferPrice changes the asking price of a listed house.
func (m *Market) UpdateOfferPrice(house domain.HouseID, price quant.Price) error {
	o, ok := m.book.get(house)
	if !ok {
		return fmt.Errorf("house %d: %w", house, domain.ErrOfferNotFound)
	}
	if !price.IsValid() {
		return fmt.Errorf("house %d price %v: %w", house, float64(price), domain.ErrInvalidPrice)
	}
	o.CurrentPrice = price
	return nil
}

// WithdrawOffer takes house off the market. Unlisted houses are ignored.
func (m *Market) WithdrawOffer(house domain.HouseID) {
	m.book.remove(house)
}

// SubmitBid registers a bid for the next clearing.
func (m *Market) SubmitBid(buyer domain.HouseholdID, price quant.Price) error {
	if buyer == domain.NoHousehold {
		return fmt.Errorf("bid price %v: %w", float64(price), domain.ErrInvalidBuyer)
	}
	if !price.IsValid() {
		return fmt.Errorf("buyer %d price %v: %w", buyer, float64(price), domain.ErrInvalidPrice)
	}
	m.bids.push(buyer, price)
	return nil
}

// Offer returns a copy of the listing for house.
func (m *Market) Offer(house domain.HouseID) (domain.SaleOffer, bool) {
	o, ok := m.book.get(house)
	if !ok {
		return domain.SaleOffer{}, false
	}
	return *o, true
}

// IsListed reports whether house has an open offer.
func (m *Market) IsListed(house domain.HouseID) bool {
	_, ok := m.book.get(house)
	return ok
}

// Offers returns copies of all open offers ordered by house.
func (m *Market) Offers() []domain.SaleOffer {
	sorted := m.book.sorted()
	out := make([]domain.SaleOffer, len(sorted))
	for i, o := range sorted {
		out[i] = *o
	}
	return out
}

func (m *Market) OfferCount() int { return m.book.Len() }
func (m *Market) BidCount() int   { return m.bids.Len() }

func (m *Market) Config() Config { return m.cfg }
func (m *Market) Curve() Curve   { return m.curve }

// Stats exposes the read accessors of the statistics tracker.
func (m *Market) Stats() *Tracker { return m.stats }

// AverageSalePrice is the smoothed sale price of band q.
func (m *Market) AverageSalePrice(q int) float64 { return m.stats.AverageSalePrice(q) }

// PriceIndexAppreciation is the annualised, smoothed appreciation of the price index.
func (m *Market) PriceIndexAppreciation() float64 { return m.stats.AnnualAppreciation() }

// Diagnostics returns the snapshot taken at the start of the latest clearing.
func (m *Market) Diagnostics() Diagnostics { return m.stats.Diagnostics() }

// Statistics returns a value copy of the aggregates, stamped with tick.
func (m *Market) Statistics(tick quant.Tick) Statistics { return m.stats.statistics(tick) }

// State is the persisted form of a Market.
type State struct {
	Offers       []domain.SaleOffer `json:"offers"`
	Bids         []domain.BidRecord `json:"bids"`
	NextOfferSeq uint64             `json:"next_offer_seq"`
	Stats        TrackerState       `json:"stats"`
}

// State captures everything needed to resume this market.
func (m *Market) State() State {
	return State{
		Offers:       m.Offers(),
		Bids:         m.bids.records(),
		NextOfferSeq: m.book.nextSeq,
		Stats:        m.stats.state(),
	}
}

// Restore replaces the market's contents with s.
func (m *Market) Restore(s State) error {
	if len(s.Stats.AverageSalePrice) != m.cfg.QualityBands {
		return fmt.Errorf("state has %d quality bands, market has %d", len(s.Stats.AverageSalePrice), m.cfg.QualityBands)
	}
	book := newOfferBook()
	for _, o := range s.Offers {
		if o.Quality < 0 || o.Quality >= m.cfg.QualityBands {
			return fmt.Errorf("restored house %d quality %d: %w", o.House, o.Quality, domain.ErrInvalidQuality)
		}
		offer := o
		book.offers[o.House] = &offer
	}
	book.nextSeq = s.NextOfferSeq
	m.book = book
	m.bids.restore(s.Bids)
	m.stats.restore(s.Stats)
	return nil
}
