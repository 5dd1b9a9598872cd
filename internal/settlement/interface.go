package settlement

import (
	"context"

	"housing_go/internal/domain"
)

// Settlement applies cleared transactions to the world outside the market:
// who owns which house and who paid whom.
type Settlement interface {
	// Settle transfers ownership and cash for every transaction of one clearing.
	Settle(ctx context.Context, txs []domain.Transaction) error
}
