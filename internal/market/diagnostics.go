package market

import (
	"slices"

	"housing_go/pkg/quant"
)

// Diagnostics is captured at the start of each clearing, before any matching.
// It therefore describes the supply and demand carried into the tick, not the
// outcome of the tick.
type Diagnostics struct {
	Tick              quant.Tick `json:"tick"`
	Bids              int        `json:"bids"`
	Offers            int        `json:"offers"`
	Sales             int        `json:"sales"` // sales since the previous snapshot
	AverageBidPrice   float64    `json:"average_bid_price"`
	AverageOfferPrice float64    `json:"average_offer_price"`
	SoldToListRatio   float64    `json:"sold_to_list_ratio"`
	BidPrices         []float64  `json:"bid_prices"`
	OfferPrices       []float64  `json:"offer_prices"`
}

func (d Diagnostics) clone() Diagnostics {
	d.BidPrices = slices.Clone(d.BidPrices)
	d.OfferPrices = slices.Clone(d.OfferPrices)
	return d
}

// PricePoint pairs the reference price of a band with its current average sale price.
type PricePoint struct {
	Quality   int     `json:"quality"`
	Reference float64 `json:"reference"`
	Current   float64 `json:"current"`
}
