package infra

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestLoadDefaultConfig(t *testing.T) {
	cfg, err := LoadDefaultConfig()
	if err != nil {
		t.Fatalf("defaults should be valid: %v", err)
	}
	if cfg.MarketConfig().HPIMedian != 195000 {
		t.Errorf("expected parsed median 195000, got %v", cfg.MarketConfig().HPIMedian)
	}
	if cfg.InitialCash() != 25_000_000 {
		t.Errorf("expected 250000.00 in pence, got %d", cfg.InitialCash())
	}
}

func TestLoadConfig_OverlaysFile(t *testing.T) {
	path := writeFile(t, "config.yaml", `
market:
  quality_bands: 10
  hpi_median: "210000.50"
  price_horizon: 4
simulation:
  households: 50
  houses: 40
  ticks: 6
  seed: 99
  initial_cash: "1000.25"
storage:
  snapshot_every: 6
logging:
  level: debug
  format: json
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	m := cfg.MarketConfig()
	if m.QualityBands != 10 || m.PriceHorizon != 4 {
		t.Errorf("market overlay not applied: %+v", m)
	}
	if m.HPIMedian != 210000.5 {
		t.Errorf("median = %v, want 210000.5", m.HPIMedian)
	}
	// untouched keys keep their defaults
	if m.StatsHorizon != 200 || m.HPIShape != 0.555 {
		t.Errorf("defaults lost: %+v", m)
	}
	if cfg.Simulation.Households != 50 || cfg.Simulation.Seed != 99 {
		t.Errorf("simulation overlay not applied: %+v", cfg.Simulation)
	}
	if cfg.InitialCash() != 100025 {
		t.Errorf("initial cash = %d pence, want 100025", cfg.InitialCash())
	}
	if cfg.Storage.SnapshotEvery != 6 || cfg.Storage.DBFile != "housing.db" {
		t.Errorf("storage overlay wrong: %+v", cfg.Storage)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	path := writeFile(t, "config.yaml", "simulation:\n  ticks: 6\n")

	t.Setenv("HOUSING_TICKS", "12")
	t.Setenv("HOUSING_SEED", "7")
	t.Setenv("HOUSING_HPI_MEDIAN", "180000")
	t.Setenv("HOUSING_WORKSPACE", "/tmp/hw")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Simulation.Ticks != 12 || cfg.Simulation.Seed != 7 {
		t.Errorf("env did not win: ticks=%d seed=%d", cfg.Simulation.Ticks, cfg.Simulation.Seed)
	}
	if cfg.MarketConfig().HPIMedian != 180000 {
		t.Errorf("median override not applied")
	}
	if ResolveWorkspace(cfg.Storage.Workspace) != "/tmp/hw" {
		t.Errorf("workspace override not applied")
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		env     map[string]string
		wantErr string
	}{
		{"bad median", "market:\n  hpi_median: abc\n", nil, "hpi_median"},
		{"zero bands", "market:\n  quality_bands: 0\n", nil, "quality bands"},
		{"more houses than households", "simulation:\n  households: 5\n  houses: 6\n", nil, "houses"},
		{"negative snapshot", "storage:\n  snapshot_every: -1\n", nil, "snapshot"},
		{"bad format", "logging:\n  format: xml\n", nil, "log format"},
		{"bad price cut", "simulation:\n  price_cut: 1.5\n", nil, "price_cut"},
		{"bad env int", "", map[string]string{"HOUSING_TICKS": "many"}, "HOUSING_TICKS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := writeFile(t, "config.yaml", tt.yaml)
			_, err := LoadConfig(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadDotEnv(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Fatalf("missing .env should be ignored: %v", err)
	}

	path := writeFile(t, ".env", "HOUSING_TEST_DOTENV=hello\n")
	t.Setenv("HOUSING_TEST_DOTENV", "")
	os.Unsetenv("HOUSING_TEST_DOTENV")
	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv failed: %v", err)
	}
	if got := os.Getenv("HOUSING_TEST_DOTENV"); got != "hello" {
		t.Errorf("expected hello, got %q", got)
	}
}
