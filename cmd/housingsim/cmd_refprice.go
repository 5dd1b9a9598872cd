package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"housing_go/pkg/quant"
)

func newRefPriceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refprice",
		Short: "Print the reference price of every quality band",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			mc := cfg.MarketConfig()
			if bands, _ := cmd.Flags().GetInt("bands"); bands > 0 {
				mc.QualityBands = bands
			}
			if err := mc.Validate(); err != nil {
				return err
			}

			curve := mc.Curve()
			prices := curve.Prices()

			out := cmd.OutOrStdout()
			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				rows := make([]map[string]any, len(prices))
				for q, p := range prices {
					rows[q] = map[string]any{"quality": q, "price": p.String()}
				}
				return json.NewEncoder(out).Encode(map[string]any{
					"bands": mc.QualityBands,
					"mean":  quant.Price(curve.Mean()).String(),
					"curve": rows,
				})
			}

			fmt.Fprintf(out, "%-8s %14s\n", "QUALITY", "REFERENCE")
			for q, p := range prices {
				fmt.Fprintf(out, "%-8d %14s\n", q, p.String())
			}
			fmt.Fprintf(out, "mean %s\n", quant.Price(curve.Mean()).String())
			return nil
		},
	}
	cmd.Flags().Int("bands", 0, "Override market.quality_bands")
	return cmd
}
