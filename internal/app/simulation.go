package app

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"housing_go/internal/domain"
	"housing_go/internal/engine"
	"housing_go/internal/event"
	"housing_go/internal/infra"
	"housing_go/internal/market"
	"housing_go/internal/settlement"
	"housing_go/internal/storage"
	"housing_go/internal/strategy"
	"housing_go/pkg/quant"
)

// Simulation drives the market tick by tick: collect intents, apply them as
// events, clear.
type Simulation struct {
	cfg          *infra.Config
	seq          *engine.Sequencer
	registry     *settlement.Registry
	participants []strategy.Participant
	reports      []engine.TickReport
	rejected     int
}

// NewSimulation builds the world described by cfg. store and snaps may be nil.
func NewSimulation(cfg *infra.Config, store *storage.EventStore, snaps *storage.SnapshotManager) (*Simulation, error) {
	mkt, err := market.New(cfg.MarketConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create market: %w", err)
	}

	settle, registry, err := settlement.New(settlement.ModeRegistry)
	if err != nil {
		return nil, err
	}

	s := &Simulation{cfg: cfg, registry: registry}
	s.seq = engine.NewSequencer(cfg.Simulation.Households, mkt, store, settle, s.onTick)
	if snaps != nil && cfg.Storage.SnapshotEvery > 0 {
		s.seq.EnableSnapshots(snaps, cfg.Storage.SnapshotEvery, cfg.Storage.SnapshotKeep)
	}

	s.populate()
	return s, nil
}

// populate gives the first Houses households one house each, of random quality,
// and every household the same starting cash.
func (s *Simulation) populate() {
	sim := s.cfg.Simulation
	bands := s.cfg.Market.QualityBands
	rng := rand.New(rand.NewPCG(sim.Seed, 0))
	params := s.cfg.Participants()
	cash := s.cfg.InitialCash()

	for i := 1; i <= sim.Households; i++ {
		hh := domain.HouseholdID(i)
		if i <= sim.Houses {
			s.registry.AddHouse(domain.House{ID: domain.HouseID(i), Quality: rng.IntN(bands), Owner: hh})
		}
		if cash > 0 {
			s.registry.Deposit(hh, cash)
		}
		s.participants = append(s.participants, strategy.NewZeroIntelligence(hh, bands, params, sim.Seed))
	}
}

func (s *Simulation) onTick(r engine.TickReport) {
	s.reports = append(s.reports, r)
}

// Run executes the configured number of ticks.
// A panic from the sequencer (WAL failure, fatal sequence gap) dumps its
// state before propagating.
func (s *Simulation) Run(ctx context.Context) error {
	defer s.seq.HaltOnPanic()

	slog.Info("Simulation started",
		slog.Int("households", len(s.participants)),
		slog.Int("ticks", s.cfg.Simulation.Ticks))

	intents := make([]domain.Intent, 0, 8)
	for t := 1; t <= s.cfg.Simulation.Ticks; t++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.Step(ctx, quant.Tick(t), intents); err != nil {
			return err
		}

		if t%12 == 0 || t == s.cfg.Simulation.Ticks {
			r := s.seq.LastReport()
			slog.Info("TICK",
				slog.Int("tick", t),
				slog.Int("sales", len(r.Transactions)),
				slog.Int("offers", r.Diagnostics.Offers),
				slog.Float64("hpi", r.Statistics.PriceIndex),
				slog.Float64("appreciation", r.Statistics.AnnualAppreciation),
				slog.Float64("days_on_market", r.Statistics.AverageDaysOnMarket))
		}
	}

	slog.Info("Simulation finished",
		slog.Int("ticks", len(s.reports)),
		slog.Int("settled", s.registry.SettledCount()),
		slog.Int("rejected", s.rejected))
	return nil
}

// Step runs one tick. buf is scratch space reused across households.
func (s *Simulation) Step(ctx context.Context, tick quant.Tick, buf []domain.Intent) error {
	for _, p := range s.participants {
		buf = p.Decide(tick, s.seq, s.registry, buf[:0])
		for _, in := range buf {
			ev := event.FromIntent(in, tick)
			if ev == nil {
				continue
			}
			if err := s.seq.Apply(ctx, ev); err != nil {
				s.rejected++
			}
			if bid, ok := ev.(*event.BidSubmittedEvent); ok {
				event.ReleaseBidSubmittedEvent(bid)
			}
		}
	}

	if err := s.seq.Apply(ctx, &event.MarketClearedEvent{BaseEvent: event.BaseEvent{Tick: tick}}); err != nil {
		return fmt.Errorf("failed to clear tick %d: %w", tick, err)
	}
	return nil
}

// Reports returns every clearing report so far.
func (s *Simulation) Reports() []engine.TickReport { return s.reports }

// Sequencer exposes the engine for read access.
func (s *Simulation) Sequencer() *engine.Sequencer { return s.seq }

// Registry exposes ownership and cash.
func (s *Simulation) Registry() *settlement.Registry { return s.registry }

// Rejected counts intents the market refused.
func (s *Simulation) Rejected() int { return s.rejected }
