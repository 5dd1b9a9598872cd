package market

import (
	"sort"

	"housing_go/internal/domain"
)

// OfferBook holds open listings keyed by house. It is exclusively owned by one Market.
type OfferBook struct {
	offers  map[domain.HouseID]*domain.SaleOffer
	nextSeq uint64
}

func newOfferBook() *OfferBook {
	return &OfferBook{offers: make(map[domain.HouseID]*domain.SaleOffer)}
}

// put inserts or replaces the listing for o.House and stamps a fresh arrival sequence.
func (b *OfferBook) put(o domain.SaleOffer) {
	b.nextSeq++
	o.Seq = b.nextSeq
	b.offers[o.House] = &o
}

func (b *OfferBook) get(h domain.HouseID) (*domain.SaleOffer, bool) {
	o, ok := b.offers[h]
	return o, ok
}

func (b *OfferBook) remove(h domain.HouseID) {
	delete(b.offers, h)
}

// Len returns the number of open offers.
func (b *OfferBook) Len() int {
	return len(b.offers)
}

// sorted returns the open offers ordered by house id, so that every walk over
// the book is deterministic.
func (b *OfferBook) sorted() []*domain.SaleOffer {
	out := make([]*domain.SaleOffer, 0, len(b.offers))
	for _, o := range b.offers {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].House < out[j].House })
	return out
}
