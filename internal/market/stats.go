package market

import (
	"slices"

	"housing_go/internal/domain"
	"housing_go/pkg/quant"
	"housing_go/pkg/safe"
)

// Tracker keeps the rolling market statistics. It is owned by one Market and
// only reset at construction.
type Tracker struct {
	priceDecay        float64
	statsDecay        float64
	appreciationDecay float64
	daysPerTick       float64
	ticksPerYear      float64
	indexNorm         float64 // bands * reference mean

	reference []float64

	avgSalePrice    []float64
	avgDaysOnMarket float64
	avgSoldToList   float64

	priceIndex     float64
	lastPriceIndex float64
	appreciation   float64 // per tick, not annualised

	saleCount int
	diag      Diagnostics
}

func newTracker(cfg Config, curve Curve) *Tracker {
	t := &Tracker{
		priceDecay:        cfg.priceDecay(),
		statsDecay:        cfg.statsDecay(),
		appreciationDecay: cfg.appreciationDecay(),
		daysPerTick:       cfg.DaysPerTick,
		ticksPerYear:      cfg.TicksPerYear,
		indexNorm:         float64(cfg.QualityBands) * curve.Mean(),
		reference:         make([]float64, cfg.QualityBands),
		avgSalePrice:      make([]float64, cfg.QualityBands),
		avgDaysOnMarket:   cfg.InitialDaysOnMarket,
		avgSoldToList:     1.0,
		priceIndex:        1.0,
		lastPriceIndex:    1.0,
	}
	for q := range t.reference {
		t.reference[q] = float64(curve.Price(q))
		t.avgSalePrice[q] = t.reference[q]
	}
	return t
}

// snapshot records pre-clearing diagnostics from the book and queue.
func (t *Tracker) snapshot(tick quant.Tick, book *OfferBook, bids *BidQueue) {
	d := Diagnostics{
		Tick:            tick,
		Bids:            bids.Len(),
		Offers:          book.Len(),
		Sales:           t.saleCount,
		SoldToListRatio: t.avgSoldToList,
	}
	t.saleCount = 0

	records := bids.records()
	d.BidPrices = make([]float64, len(records))
	for i, b := range records {
		d.BidPrices[i] = float64(b.Price)
	}

	offers := book.sorted()
	d.OfferPrices = make([]float64, len(offers))
	for i, o := range offers {
		d.OfferPrices[i] = float64(o.CurrentPrice)
	}

	d.AverageBidPrice = safe.Mean(d.BidPrices)
	d.AverageOfferPrice = safe.Mean(d.OfferPrices)
	t.diag = d
}

// recordSale folds one transaction into the EMAs.
func (t *Tracker) recordSale(tx *domain.Transaction) {
	t.avgDaysOnMarket = safe.EMA(t.avgDaysOnMarket, tx.DaysOnMarket, t.statsDecay)
	t.avgSalePrice[tx.Quality] = safe.EMA(t.avgSalePrice[tx.Quality], float64(tx.Price), t.priceDecay)
	if tx.InitialPrice > domain.MinRatioListPrice {
		t.avgSoldToList = safe.EMA(t.avgSoldToList, tx.SoldToListRatio(), t.statsDecay)
	}
	t.saleCount++
}

// updateIndex recomputes the price index from the band averages and folds its
// change since the previous tick into the appreciation EMA.
func (t *Tracker) updateIndex() {
	var sum float64
	for _, p := range t.avgSalePrice {
		sum += p
	}
	t.priceIndex = safe.Div(sum, t.indexNorm)
	t.appreciation = safe.EMA(t.appreciation, t.priceIndex-t.lastPriceIndex, t.appreciationDecay)
	t.lastPriceIndex = t.priceIndex
}

func (t *Tracker) daysOnMarket(ticks quant.Tick) float64 {
	return float64(ticks) * t.daysPerTick
}

// AverageSalePrice returns the smoothed sale price of band q. Out-of-range bands return 0.
func (t *Tracker) AverageSalePrice(q int) float64 {
	if q < 0 || q >= len(t.avgSalePrice) {
		return 0
	}
	return t.avgSalePrice[q]
}

func (t *Tracker) AverageDaysOnMarket() float64 { return t.avgDaysOnMarket }
func (t *Tracker) SoldToListRatio() float64     { return t.avgSoldToList }
func (t *Tracker) PriceIndex() float64          { return t.priceIndex }

// Appreciation returns the smoothed per-tick change of the price index.
func (t *Tracker) Appreciation() float64 { return t.appreciation }

// AnnualAppreciation returns Appreciation scaled to one year of ticks.
func (t *Tracker) AnnualAppreciation() float64 {
	return t.ticksPerYear * t.appreciation
}

// Diagnostics returns a copy of the latest snapshot.
func (t *Tracker) Diagnostics() Diagnostics {
	return t.diag.clone()
}

// PriceCurve returns reference and current average sale price for every band.
func (t *Tracker) PriceCurve() []PricePoint {
	out := make([]PricePoint, len(t.reference))
	for q := range out {
		out[q] = PricePoint{Quality: q, Reference: t.reference[q], Current: t.avgSalePrice[q]}
	}
	return out
}

// Statistics is a value copy of the tracker's aggregates.
type Statistics struct {
	Tick                quant.Tick `json:"tick"`
	AverageSalePrice    []float64  `json:"average_sale_price"`
	AverageDaysOnMarket float64    `json:"average_days_on_market"`
	SoldToListRatio     float64    `json:"sold_to_list_ratio"`
	PriceIndex          float64    `json:"price_index"`
	AnnualAppreciation  float64    `json:"annual_appreciation"`
}

func (t *Tracker) statistics(tick quant.Tick) Statistics {
	return Statistics{
		Tick:                tick,
		AverageSalePrice:    slices.Clone(t.avgSalePrice),
		AverageDaysOnMarket: t.avgDaysOnMarket,
		SoldToListRatio:     t.avgSoldToList,
		PriceIndex:          t.priceIndex,
		AnnualAppreciation:  t.AnnualAppreciation(),
	}
}

// TrackerState is the persisted form of a Tracker.
type TrackerState struct {
	AverageSalePrice    []float64   `json:"average_sale_price"`
	AverageDaysOnMarket float64     `json:"average_days_on_market"`
	SoldToListRatio     float64     `json:"sold_to_list_ratio"`
	PriceIndex          float64     `json:"price_index"`
	LastPriceIndex      float64     `json:"last_price_index"`
	Appreciation        float64     `json:"appreciation"`
	SaleCount           int         `json:"sale_count"`
	Diagnostics         Diagnostics `json:"diagnostics"`
}

func (t *Tracker) state() TrackerState {
	return TrackerState{
		AverageSalePrice:    slices.Clone(t.avgSalePrice),
		AverageDaysOnMarket: t.avgDaysOnMarket,
		SoldToListRatio:     t.avgSoldToList,
		PriceIndex:          t.priceIndex,
		LastPriceIndex:      t.lastPriceIndex,
		Appreciation:        t.appreciation,
		SaleCount:           t.saleCount,
		Diagnostics:         t.diag.clone(),
	}
}

func (t *Tracker) restore(s TrackerState) {
	copy(t.avgSalePrice, s.AverageSalePrice)
	t.avgDaysOnMarket = s.AverageDaysOnMarket
	t.avgSoldToList = s.SoldToListRatio
	t.priceIndex = s.PriceIndex
	t.lastPriceIndex = s.LastPriceIndex
	t.appreciation = s.Appreciation
	t.saleCount = s.SaleCount
	t.diag = s.Diagnostics.clone()
}
