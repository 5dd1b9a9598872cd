package infra

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"housing_go/internal/market"
	"housing_go/internal/strategy"
	"housing_go/pkg/quant"
)

// Config holds every setting of the application.
// Values are layered: defaults, then the YAML file, then HOUSING_* environment variables.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Market struct {
		market.Config `yaml:",inline"`
		// Money is carried as a decimal string up to the boundary.
		HPIMedian string `yaml:"hpi_median"`
	} `yaml:"market"`

	Simulation struct {
		Households          int     `yaml:"households"`
		Houses              int     `yaml:"houses"`
		Ticks               int     `yaml:"ticks"`
		Seed                uint64  `yaml:"seed"`
		InitialCash         string  `yaml:"initial_cash"`
		ListProbability     float64 `yaml:"list_probability"`
		WithdrawProbability float64 `yaml:"withdraw_probability"`
		Markup              float64 `yaml:"markup"`
		PriceCut            float64 `yaml:"price_cut"`
		BidSpread           float64 `yaml:"bid_spread"`
	} `yaml:"simulation"`

	Storage struct {
		Workspace     string `yaml:"workspace"` // empty: GetWorkspaceDir()
		DBFile        string `yaml:"db_file"`
		SnapshotEvery int64  `yaml:"snapshot_every"` // ticks; 0 disables
		SnapshotKeep  int    `yaml:"snapshot_keep"`
	} `yaml:"storage"`

	Report struct {
		Enabled bool   `yaml:"enabled"`
		File    string `yaml:"file"`
	} `yaml:"report"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"` // text or json
	} `yaml:"logging"`
}

// DefaultConfig returns a runnable configuration without any file.
func DefaultConfig() *Config {
	var cfg Config
	cfg.App.Name = AppName
	cfg.App.Version = "0.1.0"

	cfg.Market.Config = market.DefaultConfig()
	cfg.Market.HPIMedian = "195000"

	p := strategy.DefaultParams()
	cfg.Simulation.Households = 1000
	cfg.Simulation.Houses = 800
	cfg.Simulation.Ticks = 240
	cfg.Simulation.Seed = 1
	cfg.Simulation.InitialCash = "250000"
	cfg.Simulation.ListProbability = p.ListProbability
	cfg.Simulation.WithdrawProbability = p.WithdrawProbability
	cfg.Simulation.Markup = p.Markup
	cfg.Simulation.PriceCut = p.PriceCut
	cfg.Simulation.BidSpread = p.BidSpread

	cfg.Storage.DBFile = "housing.db"
	cfg.Storage.SnapshotEvery = 12
	cfg.Storage.SnapshotKeep = 3

	cfg.Report.Enabled = true
	cfg.Report.File = "report.xlsx"

	cfg.Logging.Level = "info"
	cfg.Logging.Format = "text"
	return &cfg
}

// LoadDotEnv loads KEY=VALUE pairs from path into the environment.
// A missing file is not an error; existing variables win.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// LoadConfig reads the YAML file at path over the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := finish(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDefaultConfig applies environment overrides to the defaults.
func LoadDefaultConfig() (*Config, error) {
	cfg := DefaultConfig()
	if err := finish(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func finish(cfg *Config) error {
	if err := overrideWithEnv(cfg); err != nil {
		return fmt.Errorf("invalid environment override: %w", err)
	}
	median, err := quant.ParsePrice(cfg.Market.HPIMedian)
	if err != nil {
		return fmt.Errorf("invalid configuration: market.hpi_median: %w", err)
	}
	cfg.Market.Config.HPIMedian = median

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	if err := c.Market.Config.Validate(); err != nil {
		return fmt.Errorf("market: %w", err)
	}
	if err := c.Participants().Validate(); err != nil {
		return fmt.Errorf("simulation: %w", err)
	}

	if c.Simulation.Households <= 0 {
		return fmt.Errorf("households must be positive")
	}
	if c.Simulation.Houses < 0 || c.Simulation.Houses > c.Simulation.Households {
		return fmt.Errorf("houses must be in [0, households], got %d", c.Simulation.Houses)
	}
	if c.Simulation.Ticks <= 0 {
		return fmt.Errorf("ticks must be positive")
	}
	if cash, err := quant.ParsePrice(c.Simulation.InitialCash); err != nil || cash < 0 {
		return fmt.Errorf("invalid initial cash %q", c.Simulation.InitialCash)
	}

	if c.Storage.DBFile == "" {
		return fmt.Errorf("storage.db_file is required")
	}
	if c.Storage.SnapshotEvery < 0 || c.Storage.SnapshotKeep < 0 {
		return fmt.Errorf("snapshot settings must be non-negative")
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown log format: %s", c.Logging.Format)
	}
	return nil
}

// MarketConfig returns the market constants with the parsed median.
func (c *Config) MarketConfig() market.Config {
	return c.Market.Config
}

// Participants returns the household behaviour parameters.
func (c *Config) Participants() strategy.Params {
	return strategy.Params{
		ListProbability:     c.Simulation.ListProbability,
		WithdrawProbability: c.Simulation.WithdrawProbability,
		Markup:              c.Simulation.Markup,
		PriceCut:            c.Simulation.PriceCut,
		BidSpread:           c.Simulation.BidSpread,
	}
}

// InitialCash returns the per-household starting cash in pence.
func (c *Config) InitialCash() quant.Pence {
	p, _ := quant.ParsePrice(c.Simulation.InitialCash) // checked by Validate
	return quant.ToPence(p)
}

// overrideWithEnv overwrites values from HOUSING_* environment variables.
// Environment wins over the config file.
func overrideWithEnv(cfg *Config) error {
	if v := os.Getenv("HOUSING_HPI_MEDIAN"); v != "" {
		cfg.Market.HPIMedian = v
	}
	if v := os.Getenv("HOUSING_WORKSPACE"); v != "" {
		cfg.Storage.Workspace = v
	}
	if v := os.Getenv("HOUSING_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("HOUSING_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}

	ints := map[string]*int{
		"HOUSING_HOUSEHOLDS":    &cfg.Simulation.Households,
		"HOUSING_HOUSES":        &cfg.Simulation.Houses,
		"HOUSING_TICKS":         &cfg.Simulation.Ticks,
		"HOUSING_QUALITY_BANDS": &cfg.Market.QualityBands,
	}
	for key, dst := range ints {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = n
		}
	}

	if v := os.Getenv("HOUSING_SEED"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("HOUSING_SEED: %w", err)
		}
		cfg.Simulation.Seed = n
	}
	return nil
}
