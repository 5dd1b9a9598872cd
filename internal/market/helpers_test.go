package market

import (
	"housing_go/internal/domain"
	"housing_go/pkg/quant"
)

type bidRecord = domain.BidRecord

func householdID(id uint64) domain.HouseholdID { return domain.HouseholdID(id) }

func offerOf(house uint64, quality int, owner uint64, initial, current float64) *domain.SaleOffer {
	return &domain.SaleOffer{
		House:        domain.HouseID(house),
		Owner:        domain.HouseholdID(owner),
		Quality:      quality,
		InitialPrice: quant.Price(initial),
		CurrentPrice: quant.Price(current),
	}
}
