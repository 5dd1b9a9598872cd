package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"housing_go/backtest"
	"housing_go/internal/app"
	"housing_go/internal/infra"
	"housing_go/internal/storage"
)

func newReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Rebuild a recorded run from its event log and verify the statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			jsonOut, _ := cmd.Flags().GetBool("json")
			useSnapshot, _ := cmd.Flags().GetBool("from-snapshot")

			workDir := infra.ResolveWorkspace(cfg.Storage.Workspace)
			if ws, _ := cmd.Flags().GetString("workspace"); ws != "" {
				workDir = ws
			}
			dbPath, _ := cmd.Flags().GetString("db")
			if dbPath == "" {
				dbPath = filepath.Join(workDir, "data", cfg.Storage.DBFile)
			}

			ctx := cmd.Context()
			r, err := backtest.NewReplayer(dbPath)
			if err != nil {
				return err
			}
			defer r.Close()

			// the recorded run's constants win over the config in force now
			mc, ok, err := app.LoadMarketConfig(ctx, r.Store())
			if err != nil {
				return err
			}
			if !ok {
				mc = cfg.MarketConfig()
				if info, found, err := app.LoadRunInfo(ctx, r.Store()); err != nil {
					return err
				} else if found {
					mc.QualityBands = info.QualityBands
				}
			}

			var snaps *storage.SnapshotManager
			if useSnapshot {
				snaps = storage.NewSnapshotManager(filepath.Join(workDir, "snapshots"))
			}

			res, err := r.RunReplay(ctx, mc, snaps)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				if err := json.NewEncoder(out).Encode(map[string]any{
					"last_seq":   res.LastSeq,
					"ticks":      len(res.Reports),
					"checked":    res.Checked,
					"mismatches": res.Mismatches,
				}); err != nil {
					return err
				}
			} else {
				fmt.Fprintf(out, "Replayed up to seq %d: %d ticks, %d checked, %d mismatches\n",
					res.LastSeq, len(res.Reports), res.Checked, len(res.Mismatches))
				for _, m := range res.Mismatches {
					fmt.Fprintf(out, "  tick %d %s: stored=%v replayed=%v\n", m.Tick, m.Field, m.Stored, m.Replayed)
				}
			}

			if len(res.Mismatches) > 0 {
				return fmt.Errorf("replay diverged in %d places", len(res.Mismatches))
			}
			return nil
		},
	}

	cmd.Flags().String("workspace", "", "Override storage.workspace")
	cmd.Flags().String("db", "", "Event database (default: <workspace>/data/<db_file>)")
	cmd.Flags().Bool("from-snapshot", false, "Start from the latest snapshot instead of seq 1")
	return cmd
}
