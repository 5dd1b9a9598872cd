package strategy

import (
	"fmt"
	"math/rand/v2"

	"housing_go/internal/domain"
	"housing_go/pkg/quant"
)

// Params tune the zero-intelligence household.
type Params struct {
	ListProbability     float64 // chance per tick of listing an unlisted house
	WithdrawProbability float64 // chance per tick of withdrawing a listed house
	Markup              float64 // max list markup over the band's average sale price
	PriceCut            float64 // fractional cut applied to a listing each unsold tick
	BidSpread           float64 // bids land in avg*(1±BidSpread)
}

// DefaultParams returns moderate behaviour that keeps the market liquid.
func DefaultParams() Params {
	return Params{
		ListProbability:     0.1,
		WithdrawProbability: 0.01,
		Markup:              0.1,
		PriceCut:            0.02,
		BidSpread:           0.1,
	}
}

func (p Params) Validate() error {
	for name, v := range map[string]float64{
		"list_probability":     p.ListProbability,
		"withdraw_probability": p.WithdrawProbability,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be in [0,1], got %v", name, v)
		}
	}
	if p.Markup < 0 {
		return fmt.Errorf("markup must be non-negative, got %v", p.Markup)
	}
	if p.PriceCut < 0 || p.PriceCut >= 1 {
		return fmt.Errorf("price_cut must be in [0,1), got %v", p.PriceCut)
	}
	if p.BidSpread < 0 || p.BidSpread >= 1 {
		return fmt.Errorf("bid_spread must be in [0,1), got %v", p.BidSpread)
	}
	return nil
}

// ZeroIntelligence is a household with randomised but budget-constrained behaviour.
// Owners list, cut and occasionally withdraw; households without a house bid on a
// random band, never above their cash. It is stateful (its rng) and deterministic
// for a given seed.
type ZeroIntelligence struct {
	id     domain.HouseholdID
	bands  int
	params Params
	rng    *rand.Rand
}

// NewZeroIntelligence creates a household seeded from (seed, id).
func NewZeroIntelligence(id domain.HouseholdID, bands int, params Params, seed uint64) *ZeroIntelligence {
	if bands <= 0 {
		panic("ZeroIntelligence: bands must be positive")
	}
	return &ZeroIntelligence{
		id:     id,
		bands:  bands,
		params: params,
		rng:    rand.New(rand.NewPCG(seed, uint64(id))),
	}
}

func (z *ZeroIntelligence) ID() domain.HouseholdID { return z.id }

func (z *ZeroIntelligence) Decide(tick quant.Tick, view MarketView, folio Portfolio, out []domain.Intent) []domain.Intent {
	holdings := folio.Holdings(z.id)

	if len(holdings) == 0 {
		return z.bid(view, folio, out)
	}

	for _, h := range holdings {
		offer, listed := view.Offer(h.ID)
		if !listed {
			if z.rng.Float64() < z.params.ListProbability {
				price := view.AverageSalePrice(h.Quality) * (1 + z.params.Markup*z.rng.Float64())
				out = append(out, domain.Intent{
					Kind: domain.IntentList, Household: z.id, House: h.ID, Quality: h.Quality, Price: quant.Price(price),
				})
			}
			continue
		}

		if z.rng.Float64() < z.params.WithdrawProbability {
			out = append(out, domain.Intent{Kind: domain.IntentWithdraw, Household: z.id, House: h.ID})
			continue
		}
		if z.params.PriceCut > 0 && offer.ListedTick < tick {
			cut := offer.CurrentPrice * quant.Price(1-z.params.PriceCut)
			out = append(out, domain.Intent{Kind: domain.IntentReprice, Household: z.id, House: h.ID, Price: cut})
		}
	}
	return out
}

func (z *ZeroIntelligence) bid(view MarketView, folio Portfolio, out []domain.Intent) []domain.Intent {
	cash := quant.Price(float64(folio.Balance(z.id)) / quant.PenceScale)
	if cash < 1 {
		return out
	}

	q := z.rng.IntN(z.bands)
	target := view.AverageSalePrice(q) * (1 + z.params.BidSpread*(2*z.rng.Float64()-1))
	price := min(quant.Price(target), cash)
	if !price.IsValid() {
		return out
	}
	return append(out, domain.Intent{Kind: domain.IntentBid, Household: z.id, Price: price})
}
