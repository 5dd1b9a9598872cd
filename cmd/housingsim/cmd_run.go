package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"housing_go/internal/app"
	"housing_go/internal/infra"
	"housing_go/internal/report"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a simulation and record it in the workspace",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if ticks, _ := cmd.Flags().GetInt("ticks"); ticks > 0 {
				cfg.Simulation.Ticks = ticks
			}
			if cmd.Flags().Changed("seed") {
				cfg.Simulation.Seed, _ = cmd.Flags().GetUint64("seed")
			}
			if ws, _ := cmd.Flags().GetString("workspace"); ws != "" {
				cfg.Storage.Workspace = ws
			}
			fresh, _ := cmd.Flags().GetBool("fresh")
			jsonOut, _ := cmd.Flags().GetBool("json")

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			bootstrap := app.NewBootstrap(cfg)
			defer bootstrap.Close()
			if err := bootstrap.Initialize(ctx, cmd.ErrOrStderr(), fresh); err != nil {
				return fmt.Errorf("bootstrapping failed: %w", err)
			}
			if !jsonOut {
				infra.PrintBanner(cmd.ErrOrStderr(), cfg, bootstrap.RunInfo.RunID)
			}

			sim, err := app.NewSimulation(cfg, bootstrap.EventStore, bootstrap.Snapshots)
			if err != nil {
				return err
			}
			sim.Sequencer().SetDumpPath(filepath.Join(bootstrap.WorkDir, "panic_dump.json"))
			if err := sim.Run(ctx); err != nil {
				return err
			}

			reportPath := ""
			if cfg.Report.Enabled {
				reportPath = filepath.Join(bootstrap.ReportDir, cfg.Report.File)
				if err := exportReport(ctx, bootstrap, sim, reportPath); err != nil {
					return err
				}
			}

			return printRunSummary(cmd, jsonOut, bootstrap, sim, reportPath)
		},
	}

	cmd.Flags().Int("ticks", 0, "Override simulation.ticks")
	cmd.Flags().Uint64("seed", 0, "Override simulation.seed")
	cmd.Flags().String("workspace", "", "Override storage.workspace")
	cmd.Flags().Bool("fresh", false, "Discard any previous run in the workspace")
	return cmd
}

func exportReport(ctx context.Context, b *app.Bootstrap, sim *app.Simulation, path string) error {
	ticks, err := b.EventStore.LoadTicks(ctx)
	if err != nil {
		return err
	}
	txs, err := b.EventStore.LoadTransactions(ctx)
	if err != nil {
		return err
	}
	return report.Export(path, report.Input{
		Run:          b.RunInfo,
		Ticks:        ticks,
		Curve:        sim.Sequencer().PriceCurve(),
		Transactions: txs,
	})
}

func printRunSummary(cmd *cobra.Command, jsonOut bool, b *app.Bootstrap, sim *app.Simulation, reportPath string) error {
	stats := sim.Sequencer().Statistics()
	var sales int
	for _, r := range sim.Reports() {
		sales += len(r.Transactions)
	}

	out := cmd.OutOrStdout()
	if jsonOut {
		return json.NewEncoder(out).Encode(map[string]any{
			"run_id":              b.RunInfo.RunID,
			"ticks":               len(sim.Reports()),
			"sales":               sales,
			"rejected":            sim.Rejected(),
			"price_index":         stats.PriceIndex,
			"annual_appreciation": stats.AnnualAppreciation,
			"days_on_market":      stats.AverageDaysOnMarket,
			"db":                  b.DBPath(),
			"report":              reportPath,
		})
	}

	fmt.Fprintf(out, "Run %s: %d ticks, %d sales\n", b.RunInfo.RunID, len(sim.Reports()), sales)
	fmt.Fprintf(out, "  price index          %.4f\n", stats.PriceIndex)
	fmt.Fprintf(out, "  annual appreciation  %.2f%%\n", 100*stats.AnnualAppreciation)
	fmt.Fprintf(out, "  days on market       %.1f\n", stats.AverageDaysOnMarket)
	fmt.Fprintf(out, "  event log            %s\n", b.DBPath())
	if reportPath != "" {
		fmt.Fprintf(out, "  report               %s\n", reportPath)
	}
	return nil
}
