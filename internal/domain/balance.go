package domain

import (
	"fmt"
	"sort"

	"housing_go/pkg/quant"
	"housing_go/pkg/safe"
)

// Balance is a household's liquid cash in pence.
// Invariant: AmountPence >= 0.
type Balance struct {
	Household   HouseholdID `json:"household"`
	AmountPence quant.Pence `json:"amount,string"`
	LastTick    quant.Tick  `json:"last_tick"`
}

// Credit adds amount to the balance.
func (b *Balance) Credit(amount quant.Pence, tick quant.Tick) {
	if amount < 0 {
		panic(fmt.Sprintf("BALANCE_NEGATIVE_CREDIT: household=%d amount=%d", b.Household, amount))
	}
	b.AmountPence = quant.Pence(safe.Add(int64(b.AmountPence), int64(amount)))
	b.LastTick = tick
}

// Debit removes amount from the balance. Panics if funds are insufficient.
func (b *Balance) Debit(amount quant.Pence, tick quant.Tick) {
	if amount < 0 {
		panic(fmt.Sprintf("BALANCE_NEGATIVE_DEBIT: household=%d amount=%d", b.Household, amount))
	}
	if amount > b.AmountPence {
		panic(fmt.Sprintf("BALANCE_INSUFFICIENT: household=%d have=%d need=%d", b.Household, b.AmountPence, amount))
	}
	b.AmountPence = quant.Pence(safe.Sub(int64(b.AmountPence), int64(amount)))
	b.LastTick = tick
}

// CanAfford reports whether the balance covers amount.
func (b *Balance) CanAfford(amount quant.Pence) bool {
	return amount >= 0 && amount <= b.AmountPence
}

// VerifyInvariant panics if the balance is in an impossible state.
func (b *Balance) VerifyInvariant() {
	if b.AmountPence < 0 {
		panic(fmt.Sprintf("BALANCE_INVARIANT_VIOLATION: household=%d amount=%d", b.Household, b.AmountPence))
	}
}

// BalanceBook holds balances for all households.
type BalanceBook struct {
	balances map[HouseholdID]*Balance
}

// NewBalanceBook creates an empty book.
func NewBalanceBook() *BalanceBook {
	return &BalanceBook{balances: make(map[HouseholdID]*Balance)}
}

// Get returns the balance for hh, creating a zero balance on first access.
func (bb *BalanceBook) Get(hh HouseholdID) *Balance {
	b, ok := bb.balances[hh]
	if !ok {
		b = &Balance{Household: hh}
		bb.balances[hh] = b
	}
	return b
}

// VerifyAll checks the invariant of every balance.
func (bb *BalanceBook) VerifyAll() {
	for _, b := range bb.balances {
		b.VerifyInvariant()
	}
}

// Snapshot returns copies of all balances ordered by household.
func (bb *BalanceBook) Snapshot() []Balance {
	out := make([]Balance, 0, len(bb.balances))
	for _, b := range bb.balances {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Household < out[j].Household })
	return out
}
