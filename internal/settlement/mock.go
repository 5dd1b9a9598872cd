package settlement

import (
	"context"
	"log/slog"
	"sync"

	"housing_go/internal/domain"
)

// LogSettlement only logs transactions. Used by replay, where ownership is not tracked.
type LogSettlement struct {
	mu      sync.Mutex
	settled []domain.Transaction
}

func NewLogSettlement() *LogSettlement {
	return &LogSettlement{}
}

func (l *LogSettlement) Settle(ctx context.Context, txs []domain.Transaction) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, tx := range txs {
		slog.Debug("LOG SETTLEMENT: Transaction",
			slog.Int64("tick", int64(tx.Tick)),
			slog.Uint64("house", uint64(tx.House)),
			slog.Float64("price", tx.Price.Float()),
		)
	}
	l.settled = append(l.settled, txs...)
	return nil
}

// Settled returns a copy of everything seen so far.
func (l *LogSettlement) Settled() []domain.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.Transaction, len(l.settled))
	copy(out, l.settled)
	return out
}
