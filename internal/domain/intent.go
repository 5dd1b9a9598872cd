package domain

import "housing_go/pkg/quant"

// IntentKind is what a participant wants to do on the market this tick.
type IntentKind string

const (
	IntentList     IntentKind = "LIST"
	IntentReprice  IntentKind = "REPRICE"
	IntentWithdraw IntentKind = "WITHDRAW"
	IntentBid      IntentKind = "BID"
)

// Intent is a participant decision. Fields irrelevant to the kind are zero.
type Intent struct {
	Kind      IntentKind
	Household HouseholdID
	House     HouseID
	Quality   int
	Price     quant.Price
}
