package domain

// HouseID identifies a house. Opaque to the market.
type HouseID uint64

// HouseholdID identifies a household. The market only compares it for equality
// (a household may not buy its own house).
type HouseholdID uint64

// NoHousehold is the zero identity; used for houses with no owner.
const NoHousehold HouseholdID = 0

// House is the market's view of a dwelling. Quality never changes after construction.
type House struct {
	ID      HouseID     `json:"id"`
	Quality int         `json:"quality"`
	Owner   HouseholdID `json:"owner"`
}
