package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"housing_go/internal/domain"
	"housing_go/internal/event"
	"housing_go/internal/infra"
	"housing_go/internal/market"
	"housing_go/internal/storage"
)

const (
	runInfoKey      = "run_info"
	marketConfigKey = "market_config"
)

// Bootstrap orchestrates the application startup sequence
type Bootstrap struct {
	Config     *infra.Config
	EventStore *storage.EventStore
	Snapshots  *storage.SnapshotManager
	RunInfo    domain.RunInfo

	WorkDir   string
	DataDir   string
	ReportDir string

	unlock func()
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap(cfg *infra.Config) *Bootstrap {
	return &Bootstrap{Config: cfg}
}

// Initialize performs core system initialization (logger, dirs, lock, DB).
// With fresh set, any previous run in the workspace is discarded; otherwise a
// workspace that already holds events is refused.
func (b *Bootstrap) Initialize(ctx context.Context, logOut io.Writer, fresh bool) error {
	cfg := b.Config

	slog.SetDefault(infra.NewLogger(cfg.Logging.Level, cfg.Logging.Format, logOut))
	slog.Info("Bootstrapping housing market...")

	// Runtime warmup: one pooled bid per household
	event.Warmup(cfg.Simulation.Households)

	b.WorkDir = infra.ResolveWorkspace(cfg.Storage.Workspace)
	b.DataDir = filepath.Join(b.WorkDir, "data")
	b.ReportDir = filepath.Join(b.WorkDir, "reports")
	snapDir := filepath.Join(b.WorkDir, "snapshots")

	for _, dir := range []string{b.DataDir, b.ReportDir} {
		if err := infra.EnsureDir(dir); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	// Singleton instance lock: one writer per workspace
	unlock, err := infra.CreateLockFile(b.WorkDir)
	if err != nil {
		return err
	}
	b.unlock = unlock

	dbPath := b.DBPath()
	if fresh {
		for _, p := range []string{dbPath, dbPath + "-wal", dbPath + "-shm"} {
			if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("failed to remove %s: %w", p, err)
			}
		}
		if err := os.RemoveAll(snapDir); err != nil {
			return fmt.Errorf("failed to clear snapshots: %w", err)
		}
	}

	store, err := storage.NewEventStore(dbPath)
	if err != nil {
		return err
	}
	b.EventStore = store
	b.Snapshots = storage.NewSnapshotManager(snapDir)

	last, err := store.GetLastSeq(ctx)
	if err != nil {
		return err
	}
	if last > 0 {
		return fmt.Errorf("workspace %s already holds a run (last seq %d); use --fresh or replay it", b.WorkDir, last)
	}

	b.RunInfo = domain.RunInfo{
		RunID:          uuid.NewString(),
		Seed:           cfg.Simulation.Seed,
		Households:     cfg.Simulation.Households,
		Houses:         cfg.Simulation.Houses,
		QualityBands:   cfg.Market.QualityBands,
		StartedAtUnixM: time.Now().UnixMicro(),
	}
	info, err := json.Marshal(b.RunInfo)
	if err != nil {
		return fmt.Errorf("failed to marshal run info: %w", err)
	}
	if err := store.UpsertMetadata(ctx, runInfoKey, string(info), b.RunInfo.StartedAtUnixM); err != nil {
		return fmt.Errorf("failed to store run info: %w", err)
	}

	if err := SaveMarketConfig(ctx, store, cfg.MarketConfig(), b.RunInfo.StartedAtUnixM); err != nil {
		return err
	}

	slog.Info("EventStore initialized (WAL-mode)",
		slog.String("path", dbPath),
		slog.String("run_id", b.RunInfo.RunID))
	return nil
}

// DBPath is the event database inside the workspace.
func (b *Bootstrap) DBPath() string {
	return filepath.Join(b.DataDir, b.Config.Storage.DBFile)
}

// Close releases the store and the instance lock.
func (b *Bootstrap) Close() {
	if b.EventStore != nil {
		if err := b.EventStore.Close(); err != nil {
			slog.Warn("Failed to close event store", slog.Any("error", err))
		}
	}
	if b.unlock != nil {
		b.unlock()
	}
}

// LoadRunInfo reads the run metadata stored by Initialize.
func LoadRunInfo(ctx context.Context, store *storage.EventStore) (domain.RunInfo, bool, error) {
	raw, ok, err := store.GetMetadata(ctx, runInfoKey)
	if err != nil || !ok {
		return domain.RunInfo{}, ok, err
	}
	var info domain.RunInfo
	if err := json.Unmarshal([]byte(raw), &info); err != nil {
		return domain.RunInfo{}, false, fmt.Errorf("failed to decode run info: %w", err)
	}
	return info, true, nil
}

// SaveMarketConfig records the market constants of a run, so a replay does not
// depend on the config in force when it is started.
func SaveMarketConfig(ctx context.Context, store *storage.EventStore, mc market.Config, ts int64) error {
	raw, err := json.Marshal(mc)
	if err != nil {
		return fmt.Errorf("failed to marshal market config: %w", err)
	}
	if err := store.UpsertMetadata(ctx, marketConfigKey, string(raw), ts); err != nil {
		return fmt.Errorf("failed to store market config: %w", err)
	}
	return nil
}

// LoadMarketConfig reads the market constants stored by SaveMarketConfig.
func LoadMarketConfig(ctx context.Context, store *storage.EventStore) (market.Config, bool, error) {
	raw, ok, err := store.GetMetadata(ctx, marketConfigKey)
	if err != nil || !ok {
		return market.Config{}, ok, err
	}
	var mc market.Config
	if err := json.Unmarshal([]byte(raw), &mc); err != nil {
		return market.Config{}, false, fmt.Errorf("failed to decode market config: %w", err)
	}
	if err := mc.Validate(); err != nil {
		return market.Config{}, false, fmt.Errorf("recorded market config: %w", err)
	}
	return mc, true, nil
}
