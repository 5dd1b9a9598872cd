package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"housing_go/internal/infra"
)

var version = "0.1.0-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "housingsim",
		Short: "Housing market double-auction simulator",
		Long: `housingsim runs a periodic double-auction housing market.

Households bid and list houses every tick; each tick the market clears
bids against quality-banded offers and updates its price index.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "Config file (default: configs/config.yaml if present)")
	rootCmd.PersistentFlags().String("env-file", ".env", "Dotenv file loaded before the config")
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(),
		newReplayCmd(),
		newRefPriceCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "housingsim version %s\n", version)
		},
	}
}

// loadConfig resolves .env, then the YAML file, then HOUSING_* overrides.
func loadConfig(cmd *cobra.Command) (*infra.Config, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	if err := infra.LoadDotEnv(envFile); err != nil {
		return nil, err
	}

	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		if _, err := os.Stat(infra.DefaultConfigPath); err != nil {
			return infra.LoadDefaultConfig()
		}
		path = infra.DefaultConfigPath
	}
	return infra.LoadConfig(path)
}
