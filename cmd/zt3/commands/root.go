package commands

import (
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "zt3",
	Short: "ZT-3 daily stock screener",
	Long: `ZT-3 Stock Screener

Screens NSE equities daily: fetches recent candles per instrument,
computes EMA/volume/drawdown indicators, and evaluates the seven-rule
battery into pass, near-miss, and fail sets.

Usage:
  go run ./cmd/zt3 [command]

Examples:
  go run ./cmd/zt3 screen --universe stock_list.csv
  go run ./cmd/zt3 serve
  go run ./cmd/zt3 universe load --file stock_list.csv
  go run ./cmd/zt3 status`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}
