package event

import (
	"housing_go/internal/domain"
	"housing_go/pkg/quant"
)

// Type defines the type of event.
type Type uint16

const (
	EvOfferListed Type = iota + 1
	EvOfferRepriced
	EvOfferWithdrawn
	EvBidSubmitted
	EvMarketCleared
)

func (t Type) String() string {
	switch t {
	case EvOfferListed:
		return "OFFER_LISTED"
	case EvOfferRepriced:
		return "OFFER_REPRICED"
	case EvOfferWithdrawn:
		return "OFFER_WITHDRAWN"
	case EvBidSubmitted:
		return "BID_SUBMITTED"
	case EvMarketCleared:
		return "MARKET_CLEARED"
	default:
		return "UNKNOWN"
	}
}

// Event is the interface for all sequencer events.
type Event interface {
	GetSeq() uint64
	GetTick() quant.Tick
	GetType() Type
}

// BaseEvent contains common fields for all events.
type BaseEvent struct {
	Seq  uint64     `json:"seq"`
	Tick quant.Tick `json:"tick"`
}

func (e BaseEvent) GetSeq() uint64      { return e.Seq }
func (e BaseEvent) GetTick() quant.Tick { return e.Tick }

// OfferListedEvent puts a house on the market (or re-lists it).
type OfferListedEvent struct {
	BaseEvent
	House   domain.HouseID     `json:"house"`
	Owner   domain.HouseholdID `json:"owner"`
	Quality int                `json:"quality"`
	Price   quant.Price        `json:"price"`
}

func (e OfferListedEvent) GetType() Type { return EvOfferListed }

// OfferRepricedEvent changes the asking price of a listed house.
type OfferRepricedEvent struct {
	BaseEvent
	House domain.HouseID `json:"house"`
	Price quant.Price    `json:"price"`
}

func (e OfferRepricedEvent) GetType() Type { return EvOfferRepriced }

// OfferWithdrawnEvent takes a house off the market.
type OfferWithdrawnEvent struct {
	BaseEvent
	House domain.HouseID `json:"house"`
}

func (e OfferWithdrawnEvent) GetType() Type { return EvOfferWithdrawn }

// BidSubmittedEvent enqueues a purchase bid for the next clearing.
type BidSubmittedEvent struct {
	BaseEvent
	Buyer domain.HouseholdID `json:"buyer"`
	Price quant.Price        `json:"price"`
}

func (e BidSubmittedEvent) GetType() Type { return EvBidSubmitted }

// MarketClearedEvent runs one clearing cycle at Tick.
type MarketClearedEvent struct {
	BaseEvent
}

func (e MarketClearedEvent) GetType() Type { return EvMarketCleared }

// FromIntent converts a participant intent into the matching event.
// Seq is left zero; the caller stamps it.
func FromIntent(in domain.Intent, tick quant.Tick) Event {
	base := BaseEvent{Tick: tick}
	switch in.Kind {
	case domain.IntentList:
		return &OfferListedEvent{BaseEvent: base, House: in.House, Owner: in.Household, Quality: in.Quality, Price: in.Price}
	case domain.IntentReprice:
		return &OfferRepricedEvent{BaseEvent: base, House: in.House, Price: in.Price}
	case domain.IntentWithdraw:
		return &OfferWithdrawnEvent{BaseEvent: base, House: in.House}
	case domain.IntentBid:
		ev := AcquireBidSubmittedEvent()
		ev.BaseEvent = base
		ev.Buyer = in.Household
		ev.Price = in.Price
		return ev
	default:
		return nil
	}
}

// SetSeq stamps the sequence number on any event produced by this package.
func SetSeq(ev Event, seq uint64) {
	switch e := ev.(type) {
	case *OfferListedEvent:
		e.Seq = seq
	case *OfferRepricedEvent:
		e.Seq = seq
	case *OfferWithdrawnEvent:
		e.Seq = seq
	case *BidSubmittedEvent:
		e.Seq = seq
	case *MarketClearedEvent:
		e.Seq = seq
	}
}
