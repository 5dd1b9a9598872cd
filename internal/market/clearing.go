package market

import (
	"housing_go/internal/domain"
	"housing_go/pkg/quant"
)

// Clear matches every pending bid against the open offers once, highest bid
// first, and returns the completed transactions in execution order. The bid
// queue is empty afterwards; unmatched offers stay listed.
func (m *Market) Clear(tick quant.Tick) []domain.Transaction {
	m.stats.snapshot(tick, m.book, m.bids)

	index := newOfferIndex(m.book.sorted())
	var txs []domain.Transaction

	for {
		bid, ok := m.bids.pop()
		if !ok {
			break
		}
		offer, ok := m.match(index, bid)
		if !ok {
			continue
		}
		txs = append(txs, m.completeTransaction(bid, offer, tick))
		index.remove(offer)
		m.book.remove(offer.House)
	}

	m.stats.updateIndex()
	return txs
}

// match finds the offer bid buys, if any. Bands are searched from the top.
// Only the cheapest offer of a band is tried: if it is too expensive or owned
// by the buyer, the whole band is skipped for this buyer, even when a dearer
// offer in the band would have been acceptable.
// TODO: band forfeiture reproduces the reference statistics; revisit whether
// trying the next offer in the band should become an option.
func (m *Market) match(index *offerIndex, bid domain.BidRecord) (*domain.SaleOffer, bool) {
	ceiling := m.cfg.QualityBands
	for {
		offer, ok := index.cheapestBelow(ceiling)
		if !ok {
			return nil, false
		}
		if offer.CurrentPrice <= bid.Price && offer.Owner != bid.Buyer {
			return offer, true
		}
		ceiling = offer.Quality
	}
}

func (m *Market) completeTransaction(bid domain.BidRecord, offer *domain.SaleOffer, tick quant.Tick) domain.Transaction {
	tx := domain.Transaction{
		Tick:         tick,
		House:        offer.House,
		Buyer:        bid.Buyer,
		Seller:       offer.Owner,
		Quality:      offer.Quality,
		Price:        offer.CurrentPrice,
		BidPrice:     bid.Price,
		InitialPrice: offer.InitialPrice,
		ListedTick:   offer.ListedTick,
		DaysOnMarket: m.stats.daysOnMarket(offer.TicksListed(tick)),
	}
	m.stats.recordSale(&tx)
	return tx
}
