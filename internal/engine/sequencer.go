package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"housing_go/internal/domain"
	"housing_go/internal/event"
	"housing_go/internal/market"
	"housing_go/internal/settlement"
	"housing_go/internal/storage"
	"housing_go/pkg/quant"
)

// TickReport is the outcome of one MarketCleared event.
type TickReport struct {
	Tick         quant.Tick           `json:"tick"`
	Seq          uint64               `json:"seq"`
	Transactions []domain.Transaction `json:"transactions"`
	Statistics   market.Statistics    `json:"statistics"`
	// Diagnostics describe the book as it stood before this clearing.
	Diagnostics market.Diagnostics `json:"diagnostics"`
}

// Sequencer is the core single-threaded event processor. It owns one market and
// is the only goroutine allowed to mutate it.
type Sequencer struct {
	inbox   chan event.Event
	market  *market.Market
	nextSeq uint64
	store   *storage.EventStore
	settle  settlement.Settlement

	snapshots     *storage.SnapshotManager
	snapshotEvery int64 // ticks between snapshots; 0 disables
	snapshotKeep  int

	replaying bool
	dumpPath  string

	// Boundary: used to notify reporting or other systems of each clearing
	onUpdate func(TickReport)

	lastReport TickReport
	mu         sync.RWMutex // guards market for external reads
}

// NewSequencer creates a new sequencer instance around mkt.
func NewSequencer(inboxSize int, mkt *market.Market, store *storage.EventStore, settle settlement.Settlement, onUpdate func(TickReport)) *Sequencer {
	return &Sequencer{
		inbox:    make(chan event.Event, inboxSize),
		market:   mkt,
		nextSeq:  1,
		store:    store,
		settle:   settle,
		onUpdate: onUpdate,
		dumpPath: "panic_dump.json",
	}
}

// EnableSnapshots saves a market snapshot every `every` clearings and keeps the latest `keep`.
func (s *Sequencer) EnableSnapshots(sm *storage.SnapshotManager, every int64, keep int) {
	s.snapshots = sm
	s.snapshotEvery = every
	s.snapshotKeep = keep
}

// SetDumpPath sets where DumpState writes on a panic in Run.
func (s *Sequencer) SetDumpPath(path string) {
	s.dumpPath = path
}

// RecoverFromWAL restores state from the latest snapshot (if any) and replays
// every later event through the same code path as live processing.
func (s *Sequencer) RecoverFromWAL(ctx context.Context) error {
	if s.store == nil {
		slog.Info("No store configured, starting fresh")
		return nil
	}

	lastSeq, err := s.store.GetLastSeq(ctx)
	if err != nil {
		return fmt.Errorf("failed to get last seq: %w", err)
	}

	if lastSeq == 0 {
		slog.Info("WAL is empty, starting fresh")
		return nil
	}

	if s.snapshots != nil {
		snap, err := s.snapshots.LoadLatest()
		if err != nil {
			return fmt.Errorf("failed to load snapshot: %w", err)
		}
		if snap != nil && snap.Seq <= lastSeq {
			s.mu.Lock()
			err := s.market.Restore(snap.Market)
			s.mu.Unlock()
			if err != nil {
				return fmt.Errorf("failed to restore snapshot %d: %w", snap.Seq, err)
			}
			s.nextSeq = snap.Seq + 1
			slog.Info("Restored market from snapshot", slog.Uint64("seq", snap.Seq))
		}
	}

	events, err := s.store.LoadEvents(ctx, s.nextSeq)
	if err != nil {
		return fmt.Errorf("failed to load events: %w", err)
	}

	slog.Info("Replaying events from WAL", slog.Int("count", len(events)), slog.Uint64("from_seq", s.nextSeq))

	for _, ev := range events {
		s.ReplayEvent(ctx, ev)
	}

	slog.Info("State recovered from WAL", slog.Uint64("next_seq", s.nextSeq))
	return nil
}

// ValidateSequence checks for gaps based on strictness policy.
// It reports whether the event should be processed.
func (s *Sequencer) ValidateSequence(evSeq uint64) bool {
	expected := s.nextSeq
	if evSeq == expected {
		return true
	}

	diff := int64(evSeq) - int64(expected)

	// Replay/Duplicate (old event)
	if diff < 0 {
		slog.Warn("SEQUENCE_DUPLICATE_IGNORED", slog.Uint64("expected", expected), slog.Uint64("got", evSeq))
		return false
	}

	// Small gaps are tolerated for availability
	if diff <= 10 {
		slog.Warn("SEQUENCE_GAP_TOLERATED",
			slog.Uint64("expected", expected),
			slog.Uint64("got", evSeq),
			slog.Int64("gap", diff))
		s.nextSeq = evSeq
		return true
	}

	panic(fmt.Sprintf("SEQUENCE_GAP_FATAL: expected %d, got %d", expected, evSeq))
}

// Inbox returns the event channel. Events sent here are owned by the sequencer.
func (s *Sequencer) Inbox() chan<- event.Event {
	return s.inbox
}

// Run starts the main event loop. This MUST be run in a single goroutine.
func (s *Sequencer) Run(ctx context.Context) {
	slog.Info("Sequencer started (Single-Thread Hotpath)")

	defer s.HaltOnPanic()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Sequencer stopping...")
			return
		case ev := <-s.inbox:
			// rejections are already logged
			_ = s.Apply(ctx, ev)
			if bid, ok := ev.(*event.BidSubmittedEvent); ok {
				event.ReleaseBidSubmittedEvent(bid)
			}
		}
	}
}

// HaltOnPanic dumps state and re-panics. It must be deferred directly by
// whoever drives the sequencer, so that a WAL failure leaves a post-mortem.
func (s *Sequencer) HaltOnPanic() {
	if r := recover(); r != nil {
		slog.Error("CRITICAL_PANIC_DETECTED", slog.Any("panic", r))
		s.DumpState(s.dumpPath)
		panic(fmt.Sprintf("HALTED: %v", r))
	}
}

// Apply processes one event synchronously. An event with seq 0 is stamped with
// the next sequence number. The returned error is the market's rejection (the
// event is still logged, and replay rejects it identically).
func (s *Sequencer) Apply(ctx context.Context, ev event.Event) error {
	if ev.GetSeq() == 0 {
		event.SetSeq(ev, s.nextSeq)
	}

	// 1. Sequence gap check (with tolerance policy)
	if !s.ValidateSequence(ev.GetSeq()) {
		return nil
	}

	// 2. WAL-first: Persistence
	if s.store != nil {
		if err := s.store.SaveEvent(ctx, ev); err != nil {
			panic(fmt.Sprintf("PERSISTENCE_FAILURE: %v", err))
		}
	}

	// 3. Logic dispatch
	err := s.dispatch(ctx, ev)

	// 4. Increment sequence
	s.nextSeq++
	return err
}

// ReplayEvent processes an event synchronously without WAL logging.
// This is used by recovery and the Replayer.
func (s *Sequencer) ReplayEvent(ctx context.Context, ev event.Event) {
	if ev.GetSeq() != s.nextSeq {
		panic(fmt.Sprintf("REPLAY_GAP_DETECTED: expected %d, got %d", s.nextSeq, ev.GetSeq()))
	}

	s.replaying = true
	_ = s.dispatch(ctx, ev)
	s.replaying = false

	s.nextSeq++
}

func (s *Sequencer) dispatch(ctx context.Context, ev event.Event) error {
	if e, ok := ev.(*event.MarketClearedEvent); ok {
		return s.handleClear(ctx, e)
	}

	err := s.mutate(ev)
	if err != nil {
		slog.Warn("EVENT_REJECTED",
			slog.Uint64("seq", ev.GetSeq()),
			slog.String("type", ev.GetType().String()),
			slog.Any("error", err))
	}
	return err
}

// mutate applies a book or queue event under the write lock.
func (s *Sequencer) mutate(ev event.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch e := ev.(type) {
	case *event.OfferListedEvent:
		return s.market.ListOffer(e.House, e.Quality, e.Owner, e.Price, e.Tick)
	case *event.OfferRepricedEvent:
		return s.market.UpdateOfferPrice(e.House, e.Price)
	case *event.OfferWithdrawnEvent:
		s.market.WithdrawOffer(e.House)
		return nil
	case *event.BidSubmittedEvent:
		return s.market.SubmitBid(e.Buyer, e.Price)
	default:
		return fmt.Errorf("unknown event type %v", ev.GetType())
	}
}

func (s *Sequencer) clear(e *event.MarketClearedEvent) TickReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	txs := s.market.Clear(e.Tick)
	s.lastReport = TickReport{
		Tick:         e.Tick,
		Seq:          e.Seq,
		Transactions: txs,
		Statistics:   s.market.Statistics(e.Tick),
		Diagnostics:  s.market.Diagnostics(),
	}
	return s.lastReport
}

func (s *Sequencer) handleClear(ctx context.Context, e *event.MarketClearedEvent) error {
	report := s.clear(e)
	txs := report.Transactions

	slog.Debug("MARKET_CLEARED",
		slog.Int64("tick", int64(report.Tick)),
		slog.Int("sales", len(txs)),
		slog.Int("bids", report.Diagnostics.Bids),
		slog.Int("offers", report.Diagnostics.Offers),
		slog.Float64("hpi", report.Statistics.PriceIndex))

	if s.store != nil && !s.replaying {
		if err := s.store.SaveTick(ctx, report.Statistics, report.Diagnostics, txs); err != nil {
			panic(fmt.Sprintf("PERSISTENCE_FAILURE: %v", err))
		}
	}

	var settleErr error
	if s.settle != nil {
		if err := s.settle.Settle(ctx, txs); err != nil {
			slog.Error("SETTLEMENT_FAILED", slog.Int64("tick", int64(report.Tick)), slog.Any("error", err))
			settleErr = fmt.Errorf("failed to settle tick %d: %w", report.Tick, err)
		}
	}

	if s.snapshots != nil && !s.replaying && s.snapshotEvery > 0 && int64(report.Tick)%s.snapshotEvery == 0 {
		s.saveSnapshot(e.Seq)
	}

	if s.onUpdate != nil {
		s.onUpdate(report)
	}
	return settleErr
}

func (s *Sequencer) saveSnapshot(seq uint64) {
	s.mu.RLock()
	snap := storage.CreateSnapshot(seq, s.market.State())
	s.mu.RUnlock()

	if err := s.snapshots.Save(snap); err != nil {
		slog.Error("Failed to save snapshot", slog.Uint64("seq", seq), slog.Any("error", err))
		return
	}
	if s.snapshotKeep > 0 {
		if err := s.snapshots.Cleanup(s.snapshotKeep); err != nil {
			slog.Warn("Failed to prune snapshots", slog.Any("error", err))
		}
	}
}

// GetNextSeq returns the sequence number the next event will receive.
func (s *Sequencer) GetNextSeq() uint64 {
	return s.nextSeq
}

// LastReport returns the most recent clearing report (external read).
func (s *Sequencer) LastReport() TickReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastReport
}

// Statistics returns a copy of the market aggregates (external read).
func (s *Sequencer) Statistics() market.Statistics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.market.Statistics(s.lastReport.Tick)
}

// AverageSalePrice implements strategy.MarketView.
func (s *Sequencer) AverageSalePrice(q int) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.market.AverageSalePrice(q)
}

// Offer implements strategy.MarketView.
func (s *Sequencer) Offer(house domain.HouseID) (domain.SaleOffer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.market.Offer(house)
}

// PriceCurve returns reference against current average price per band.
func (s *Sequencer) PriceCurve() []market.PricePoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.market.Stats().PriceCurve()
}

// DumpState writes the entire internal state to a file (for post-mortem).
func (s *Sequencer) DumpState(filename string) {
	slog.Info("Dumping internal state...", slog.String("file", filename))

	s.mu.RLock()
	data := struct {
		NextSeq    uint64       `json:"next_seq"`
		Market     market.State `json:"market"`
		LastReport TickReport   `json:"last_report"`
	}{
		NextSeq:    s.nextSeq,
		Market:     s.market.State(),
		LastReport: s.lastReport,
	}
	s.mu.RUnlock()

	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		slog.Error("Failed to marshal state", slog.Any("error", err))
		return
	}

	if err := os.WriteFile(filename, b, 0644); err != nil {
		slog.Error("Failed to write state dump", slog.Any("error", err))
	}
}
