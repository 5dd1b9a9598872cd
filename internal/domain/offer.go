package domain

import "housing_go/pkg/quant"

// SaleOffer is an open listing on the market.
// InitialPrice and Quality are fixed at listing time; CurrentPrice may be revised.
type SaleOffer struct {
	House        HouseID     `json:"house"`
	Owner        HouseholdID `json:"owner"`
	Quality      int         `json:"quality"`
	InitialPrice quant.Price `json:"initial_price"`
	CurrentPrice quant.Price `json:"current_price"`
	ListedTick   quant.Tick  `json:"listed_tick"`
	// Seq orders listings by arrival; used to break price ties deterministically.
	Seq uint64 `json:"seq"`
}

// TicksListed returns how many ticks the offer has been on the market at tick now.
func (o *SaleOffer) TicksListed(now quant.Tick) quant.Tick {
	return now - o.ListedTick
}

// BidRecord is a buyer's maximum price for the current tick.
type BidRecord struct {
	Buyer HouseholdID `json:"buyer"`
	Price quant.Price `json:"price"`
	Seq   uint64      `json:"seq"`
}
