package domain

import "housing_go/pkg/quant"

// Transaction is a completed sale produced by a market clearing.
type Transaction struct {
	Tick         quant.Tick  `json:"tick"`
	House        HouseID     `json:"house"`
	Buyer        HouseholdID `json:"buyer"`
	Seller       HouseholdID `json:"seller"`
	Quality      int         `json:"quality"`
	Price        quant.Price `json:"price"`
	BidPrice     quant.Price `json:"bid_price"`
	InitialPrice quant.Price `json:"initial_price"`
	ListedTick   quant.Tick  `json:"listed_tick"`
	DaysOnMarket float64     `json:"days_on_market"`
}

// SoldToListRatio returns Price/InitialPrice, or 0 when the initial price is negligible.
func (t *Transaction) SoldToListRatio() float64 {
	if t.InitialPrice <= MinRatioListPrice {
		return 0
	}
	return float64(t.Price) / float64(t.InitialPrice)
}

// MinRatioListPrice is the initial list price at or below which a sale is
// excluded from the sold-to-list ratio.
const MinRatioListPrice quant.Price = 0.01
