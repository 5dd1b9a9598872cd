package backtest

import (
	"context"
	"fmt"
	"log/slog"

	"housing_go/internal/engine"
	"housing_go/internal/market"
	"housing_go/internal/settlement"
	"housing_go/internal/storage"
)

// Replayer reads the event log from SQLite and feeds it into a fresh Sequencer.
// Replay goes through the same code path as the live run, so the statistics it
// rebuilds must match the stored tick_stats exactly.
type Replayer struct {
	store *storage.EventStore
}

// Mismatch is one statistic that differs between the stored run and the replay.
type Mismatch struct {
	Tick     int64   `json:"tick"`
	Field    string  `json:"field"`
	Stored   float64 `json:"stored"`
	Replayed float64 `json:"replayed"`
}

// Result summarises a replay.
type Result struct {
	LastSeq    uint64
	Reports    []engine.TickReport
	Checked    int
	Mismatches []Mismatch
}

// NewReplayer opens the event database at dbPath.
func NewReplayer(dbPath string) (*Replayer, error) {
	store, err := storage.NewEventStore(dbPath)
	if err != nil {
		return nil, err
	}
	return &Replayer{store: store}, nil
}

// Store exposes the underlying event store (read-only use).
func (r *Replayer) Store() *storage.EventStore { return r.store }

func (r *Replayer) Close() error {
	return r.store.Close()
}

// RunReplay rebuilds the market from the log and verifies every replayed tick
// against the stored statistics. With snaps set, replay starts from the latest snapshot.
func (r *Replayer) RunReplay(ctx context.Context, cfg market.Config, snaps *storage.SnapshotManager) (*Result, error) {
	mkt, err := market.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create market: %w", err)
	}

	res := &Result{}
	seq := engine.NewSequencer(1, mkt, r.store, settlement.NewLogSettlement(), func(rep engine.TickReport) {
		res.Reports = append(res.Reports, rep)
	})
	if snaps != nil {
		seq.EnableSnapshots(snaps, 0, 0)
	}

	if err := seq.RecoverFromWAL(ctx); err != nil {
		return nil, fmt.Errorf("failed to replay: %w", err)
	}
	res.LastSeq = seq.GetNextSeq() - 1

	rows, err := r.store.LoadTicks(ctx)
	if err != nil {
		return nil, err
	}
	stored := make(map[int64]storage.TickRow, len(rows))
	for _, row := range rows {
		stored[row.Tick] = row
	}

	for _, rep := range res.Reports {
		row, ok := stored[int64(rep.Tick)]
		if !ok {
			slog.Warn("Replayed tick has no stored stats", slog.Int64("tick", int64(rep.Tick)))
			continue
		}
		res.Checked++
		res.Mismatches = append(res.Mismatches, compare(rep, row)...)
	}

	slog.Info("Replay finished",
		slog.Uint64("last_seq", res.LastSeq),
		slog.Int("ticks", len(res.Reports)),
		slog.Int("checked", res.Checked),
		slog.Int("mismatches", len(res.Mismatches)))
	return res, nil
}

func compare(rep engine.TickReport, row storage.TickRow) []Mismatch {
	var out []Mismatch
	check := func(field string, stored, replayed float64) {
		if stored != replayed {
			out = append(out, Mismatch{Tick: row.Tick, Field: field, Stored: stored, Replayed: replayed})
		}
	}
	st := rep.Statistics
	check("sales", float64(row.Sales), float64(len(rep.Transactions)))
	check("price_index", row.PriceIndex, st.PriceIndex)
	check("annual_appreciation", row.AnnualAppreciation, st.AnnualAppreciation)
	check("average_days_on_market", row.AverageDaysOnMarket, st.AverageDaysOnMarket)
	check("sold_to_list_ratio", row.SoldToListRatio, st.SoldToListRatio)
	return out
}
