package infra

import (
	"fmt"
	"io"
)

// ANSI Color Codes
const (
	ColorReset  = "\033[0m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorCyan   = "\033[36m"
)

// PrintBanner displays the startup banner with the run parameters.
func PrintBanner(w io.Writer, cfg *Config, runID string) {
	color := ColorGreen
	if cfg.Storage.SnapshotEvery == 0 {
		color = ColorYellow // no snapshots: recovery replays the whole log
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s###########################################################%s\n", color, ColorReset)
	fmt.Fprintf(w, "%s#                                                         #%s\n", color, ColorReset)
	fmt.Fprintf(w, "%s#               Housing Market Simulator                  #%s\n", color, ColorReset)
	fmt.Fprintf(w, "%s#                                                         #%s\n", color, ColorReset)
	fmt.Fprintf(w, "%s#   RUN:     %-44s #%s\n", color, runID, ColorReset)
	fmt.Fprintf(w, "%s#   VERSION: %-44s #%s\n", color, cfg.App.Version, ColorReset)
	fmt.Fprintf(w, "%s#   BANDS:   %-44d #%s\n", color, cfg.Market.QualityBands, ColorReset)
	fmt.Fprintf(w, "%s#   AGENTS:  %-44s #%s\n", color,
		fmt.Sprintf("%d households / %d houses", cfg.Simulation.Households, cfg.Simulation.Houses), ColorReset)
	fmt.Fprintf(w, "%s#   SEED:    %-44d #%s\n", color, cfg.Simulation.Seed, ColorReset)
	fmt.Fprintf(w, "%s#                                                         #%s\n", color, ColorReset)
	fmt.Fprintf(w, "%s###########################################################%s\n", ColorCyan, ColorReset)
	fmt.Fprintln(w)
}
