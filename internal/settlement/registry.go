package settlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"housing_go/internal/domain"
	"housing_go/pkg/quant"
	"housing_go/pkg/safe"
)

var (
	ErrUnknownHouse      = errors.New("unknown house")
	ErrNotOwner          = errors.New("seller does not own house")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// Registry is the land registry and bank in one: it tracks house ownership and
// household cash. Cash is held in integer pence so repeated transfers don't drift.
type Registry struct {
	houses   map[domain.HouseID]*domain.House
	balances *domain.BalanceBook
	settled  int
	mu       sync.Mutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		houses:   make(map[domain.HouseID]*domain.House),
		balances: domain.NewBalanceBook(),
	}
}

// AddHouse registers a house. Re-registering an id replaces it.
func (r *Registry) AddHouse(h domain.House) {
	r.mu.Lock()
	defer r.mu.Unlock()
	house := h
	r.houses[h.ID] = &house
}

// Deposit credits cash to a household.
func (r *Registry) Deposit(hh domain.HouseholdID, amount quant.Pence) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.balances.Get(hh).Credit(amount, 0)
}

// Settle implements Settlement. All transactions are checked before any is
// applied, so a failed call leaves the registry untouched.
func (r *Registry) Settle(ctx context.Context, txs []domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// a buyer can only win one house per clearing, but check cumulative spend anyway
	spend := make(map[domain.HouseholdID]quant.Pence)
	for _, tx := range txs {
		house, ok := r.houses[tx.House]
		if !ok {
			return fmt.Errorf("failed to settle house %d: %w", tx.House, ErrUnknownHouse)
		}
		if house.Owner != tx.Seller {
			return fmt.Errorf("failed to settle house %d (owner %d, seller %d): %w", tx.House, house.Owner, tx.Seller, ErrNotOwner)
		}
		spend[tx.Buyer] = quant.Pence(safe.Add(int64(spend[tx.Buyer]), int64(quant.ToPence(tx.Price))))
		if !r.balances.Get(tx.Buyer).CanAfford(spend[tx.Buyer]) {
			return fmt.Errorf("failed to settle house %d for buyer %d: %w", tx.House, tx.Buyer, ErrInsufficientFunds)
		}
	}

	for _, tx := range txs {
		amount := quant.ToPence(tx.Price)
		r.balances.Get(tx.Buyer).Debit(amount, tx.Tick)
		r.balances.Get(tx.Seller).Credit(amount, tx.Tick)
		r.houses[tx.House].Owner = tx.Buyer
		r.settled++

		slog.Debug("SETTLED",
			slog.Uint64("house", uint64(tx.House)),
			slog.Uint64("buyer", uint64(tx.Buyer)),
			slog.Uint64("seller", uint64(tx.Seller)),
			slog.String("price", amount.String()))
	}

	r.balances.VerifyAll()
	return nil
}

// Owner returns the current owner of a house.
func (r *Registry) Owner(h domain.HouseID) (domain.HouseholdID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	house, ok := r.houses[h]
	if !ok {
		return domain.NoHousehold, false
	}
	return house.Owner, true
}

// Holdings returns the houses owned by hh, ordered by id.
func (r *Registry) Holdings(hh domain.HouseholdID) []domain.House {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.House
	for _, h := range r.houses {
		if h.Owner == hh {
			out = append(out, *h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Houses returns copies of all registered houses, ordered by id.
func (r *Registry) Houses() []domain.House {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.House, 0, len(r.houses))
	for _, h := range r.houses {
		out = append(out, *h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Balance returns the cash held by hh.
func (r *Registry) Balance(hh domain.HouseholdID) quant.Pence {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.balances.Get(hh).AmountPence
}

// Balances returns every household balance ordered by household.
func (r *Registry) Balances() []domain.Balance {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.balances.Snapshot()
}

// TotalCash sums all balances. Settlement only moves cash, so this is constant
// between deposits.
func (r *Registry) TotalCash() quant.Pence {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap := r.balances.Snapshot()
	amounts := make([]int64, len(snap))
	for i, b := range snap {
		amounts[i] = int64(b.AmountPence)
	}
	return quant.Pence(safe.Sum(amounts...))
}

// SettledCount returns how many transactions have been settled.
func (r *Registry) SettledCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.settled
}
