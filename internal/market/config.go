package market

import (
	"fmt"
	"math"

	"housing_go/pkg/quant"
)

const (
	DefaultQualityBands = 48
	DefaultHPIMedian    = quant.Price(195000) // ONS 2013 HPI tables, table 34
	DefaultHPIShape     = 0.555
)

// Config holds the fixed constants of one market instance.
// Horizons are in ticks; each one becomes a decay constant exp(-1/horizon).
type Config struct {
	QualityBands int         `yaml:"quality_bands" json:"quality_bands"`
	HPIMedian    quant.Price `yaml:"-" json:"hpi_median"`
	HPIShape     float64     `yaml:"hpi_shape" json:"hpi_shape"`

	// StatsHorizon drives days-on-market and sold-to-list smoothing.
	StatsHorizon float64 `yaml:"stats_horizon" json:"stats_horizon"`
	// PriceHorizon drives per-band average sale price smoothing.
	PriceHorizon float64 `yaml:"price_horizon" json:"price_horizon"`
	// AppreciationHorizon drives the price index appreciation smoothing.
	AppreciationHorizon float64 `yaml:"appreciation_horizon" json:"appreciation_horizon"`

	DaysPerTick         float64 `yaml:"days_per_tick" json:"days_per_tick"`
	TicksPerYear        float64 `yaml:"ticks_per_year" json:"ticks_per_year"`
	InitialDaysOnMarket float64 `yaml:"initial_days_on_market" json:"initial_days_on_market"`
}

// DefaultConfig returns the monthly-tick calibration.
func DefaultConfig() Config {
	return Config{
		QualityBands:        DefaultQualityBands,
		HPIMedian:           DefaultHPIMedian,
		HPIShape:            DefaultHPIShape,
		StatsHorizon:        200,
		PriceHorizon:        8,
		AppreciationHorizon: 12,
		DaysPerTick:         30,
		TicksPerYear:        12,
		InitialDaysOnMarket: 30,
	}
}

// Validate checks configuration validity
func (c Config) Validate() error {
	if c.QualityBands <= 0 {
		return fmt.Errorf("quality bands must be positive, got %d", c.QualityBands)
	}
	if !c.HPIMedian.IsValid() {
		return fmt.Errorf("hpi median must be positive, got %v", c.HPIMedian)
	}
	if c.HPIShape <= 0 {
		return fmt.Errorf("hpi shape must be positive, got %v", c.HPIShape)
	}
	for name, h := range map[string]float64{
		"stats_horizon":        c.StatsHorizon,
		"price_horizon":        c.PriceHorizon,
		"appreciation_horizon": c.AppreciationHorizon,
	} {
		if h <= 0 {
			return fmt.Errorf("%s must be positive, got %v", name, h)
		}
	}
	if c.DaysPerTick <= 0 || c.TicksPerYear <= 0 {
		return fmt.Errorf("days per tick and ticks per year must be positive")
	}
	return nil
}

// Curve returns the reference price curve for this configuration.
func (c Config) Curve() Curve {
	return NewCurve(c.QualityBands, c.HPIMedian, c.HPIShape)
}

func (c Config) priceDecay() float64        { return decay(c.PriceHorizon) }
func (c Config) statsDecay() float64        { return decay(c.StatsHorizon) }
func (c Config) appreciationDecay() float64 { return decay(c.AppreciationHorizon) }

func decay(horizon float64) float64 {
	return math.Exp(-1.0 / horizon)
}
