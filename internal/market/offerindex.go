package market

import (
	"math"

	"github.com/google/btree"

	"housing_go/internal/domain"
)

// offerKey orders offers by quality ascending, then price descending, then
// arrival descending. Within a band the greatest key is therefore the
// cheapest (and among equal prices the earliest listed) offer, so the
// predecessor of a band sentinel is the cheapest offer of the highest band
// below it.
type offerKey struct {
	quality int
	price   float64
	seq     uint64
	offer   *domain.SaleOffer
}

func lessOfferKey(a, b offerKey) bool {
	if a.quality != b.quality {
		return a.quality < b.quality
	}
	if a.price != b.price {
		return a.price > b.price
	}
	return a.seq > b.seq
}

// offerIndex is the working index rebuilt at the start of each clearing.
type offerIndex struct {
	tree *btree.BTreeG[offerKey]
}

const offerIndexDegree = 16

func newOfferIndex(offers []*domain.SaleOffer) *offerIndex {
	ix := &offerIndex{tree: btree.NewG(offerIndexDegree, lessOfferKey)}
	for _, o := range offers {
		ix.tree.ReplaceOrInsert(keyOf(o))
	}
	return ix
}

func keyOf(o *domain.SaleOffer) offerKey {
	return offerKey{
		quality: o.Quality,
		price:   float64(o.CurrentPrice),
		seq:     o.Seq,
		offer:   o,
	}
}

// cheapestBelow returns the cheapest offer in the highest occupied band
// strictly below ceiling.
func (ix *offerIndex) cheapestBelow(ceiling int) (*domain.SaleOffer, bool) {
	// The sentinel sorts before every real key of band ceiling: prices are
	// finite, so +Inf is "most expensive" and comes first in the band.
	sentinel := offerKey{quality: ceiling, price: math.Inf(1), seq: math.MaxUint64}

	var found *domain.SaleOffer
	ix.tree.DescendLessOrEqual(sentinel, func(k offerKey) bool {
		found = k.offer
		return false
	})
	return found, found != nil
}

func (ix *offerIndex) remove(o *domain.SaleOffer) {
	ix.tree.Delete(keyOf(o))
}

func (ix *offerIndex) Len() int {
	return ix.tree.Len()
}
