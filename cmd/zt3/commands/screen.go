package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	screenUniverseFile string
	screenJSONOutput   bool
)

// screenCmd runs one screening pass and exits.
var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "Run one screening pass over the universe",
	Long: `Runs the full pipeline once: load universe, fetch candles, compute
indicators, evaluate rules, and print the pass / near-miss summary.

The universe comes from Postgres by default, or from a CSV file with
--universe.

Example:
  go run ./cmd/zt3 screen
  go run ./cmd/zt3 screen --universe stock_list.csv --json`,
	RunE: runScreen,
}

func init() {
	rootCmd.AddCommand(screenCmd)

	screenCmd.Flags().StringVar(&screenUniverseFile, "universe", "", "CSV universe file (symbol,isin)")
	screenCmd.Flags().BoolVar(&screenJSONOutput, "json", false, "print the full summary as JSON to stdout")
}

func runScreen(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	source, err := a.instrumentSource(screenUniverseFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	instruments, err := source.List(ctx)
	if err != nil {
		return fmt.Errorf("load universe: %w", err)
	}

	summary, err := a.runner.RunOnce(ctx, instruments)
	if err != nil {
		return err
	}

	if screenJSONOutput {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(summary); err != nil {
			return fmt.Errorf("encode summary: %w", err)
		}
	}

	return nil
}
