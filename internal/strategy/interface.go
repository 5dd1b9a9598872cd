package strategy

import (
	"housing_go/internal/domain"
	"housing_go/pkg/quant"
)

// MarketView is the read-only part of the market a participant may observe.
type MarketView interface {
	AverageSalePrice(q int) float64
	Offer(house domain.HouseID) (domain.SaleOffer, bool)
}

// Portfolio answers what a household owns.
type Portfolio interface {
	Holdings(hh domain.HouseholdID) []domain.House
	Balance(hh domain.HouseholdID) quant.Pence
}

// Participant defines the interface for household behaviour.
type Participant interface {
	ID() domain.HouseholdID

	// Decide appends this tick's intents to out and returns it.
	// Caller provides 'out' so a buffer can be reused across households.
	Decide(tick quant.Tick, view MarketView, folio Portfolio, out []domain.Intent) []domain.Intent
}
