package backtest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"housing_go/internal/app"
	"housing_go/internal/infra"
	"housing_go/internal/storage"
	"housing_go/pkg/quant"
)

func recordRun(t *testing.T, tweak func(*infra.Config)) (*infra.Config, string, string) {
	t.Helper()
	cfg := infra.DefaultConfig()
	cfg.Market.QualityBands = 6
	cfg.Simulation.Households = 40
	cfg.Simulation.Houses = 30
	cfg.Simulation.Ticks = 18
	cfg.Simulation.Seed = 7
	cfg.Simulation.ListProbability = 0.4
	cfg.Storage.SnapshotEvery = 6
	cfg.Storage.Workspace = t.TempDir()
	if tweak != nil {
		tweak(cfg)
	}
	require.NoError(t, cfg.Validate())

	path := filepath.Join(t.TempDir(), "events.db")
	store, err := storage.NewEventStore(path)
	require.NoError(t, err)
	require.NoError(t, app.SaveMarketConfig(context.Background(), store, cfg.MarketConfig(), 0))
	snapDir := filepath.Join(t.TempDir(), "snapshots")

	sim, err := app.NewSimulation(cfg, store, storage.NewSnapshotManager(snapDir))
	require.NoError(t, err)
	require.NoError(t, sim.Run(context.Background()))
	require.NoError(t, store.Close())
	return cfg, path, snapDir
}

func TestReplayer_ReproducesRun(t *testing.T) {
	cfg, path, _ := recordRun(t, nil)

	r, err := NewReplayer(path)
	require.NoError(t, err)
	defer r.Close()

	res, err := r.RunReplay(context.Background(), cfg.MarketConfig(), nil)
	require.NoError(t, err)

	assert.Len(t, res.Reports, cfg.Simulation.Ticks)
	assert.Equal(t, cfg.Simulation.Ticks, res.Checked)
	assert.Empty(t, res.Mismatches)
	assert.Positive(t, res.LastSeq)
}

func TestReplayer_FromSnapshot(t *testing.T) {
	cfg, path, snapDir := recordRun(t, nil)

	r, err := NewReplayer(path)
	require.NoError(t, err)
	defer r.Close()

	res, err := r.RunReplay(context.Background(), cfg.MarketConfig(), storage.NewSnapshotManager(snapDir))
	require.NoError(t, err)

	// snapshot at tick 18 covers everything
	assert.Empty(t, res.Reports)
	assert.Empty(t, res.Mismatches)
}

func TestReplayer_DetectsDivergence(t *testing.T) {
	cfg, path, _ := recordRun(t, nil)

	r, err := NewReplayer(path)
	require.NoError(t, err)
	defer r.Close()

	// a different price horizon must change the index
	mc := cfg.MarketConfig()
	mc.PriceHorizon = 2
	res, err := r.RunReplay(context.Background(), mc, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Mismatches)
}

func TestReplayer_UsesRecordedMarketConfig(t *testing.T) {
	cfg, path, _ := recordRun(t, func(c *infra.Config) {
		c.Market.HPIShape = 0.7
		c.Market.Config.HPIMedian = quant.Price(250000)
		c.Market.StatsHorizon = 50
		c.Market.DaysPerTick = 7
	})

	r, err := NewReplayer(path)
	require.NoError(t, err)
	defer r.Close()
	ctx := context.Background()

	recorded, ok, err := app.LoadMarketConfig(ctx, r.Store())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, cfg.MarketConfig(), recorded)

	res, err := r.RunReplay(ctx, recorded, nil)
	require.NoError(t, err)
	assert.Equal(t, cfg.Simulation.Ticks, res.Checked)
	assert.Empty(t, res.Mismatches)

	// the defaults with only the band count carried over do not reproduce it
	fallback := infra.DefaultConfig().MarketConfig()
	fallback.QualityBands = recorded.QualityBands
	res, err = r.RunReplay(ctx, fallback, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Mismatches)
}
