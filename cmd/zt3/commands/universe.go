package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/JittoJoseph/ZT3-Stock-Screener/internal/universe"
)

var universeFile string

// universeCmd groups universe management subcommands.
var universeCmd = &cobra.Command{
	Use:   "universe",
	Short: "Manage the instrument universe",
	Long: `Loads and validates the instrument universe.

The universe is a CSV file with a symbol,isin header. "load" writes it
to Postgres as-is; "validate" probes each instrument key against the
market-data API first and stores only the keys the provider recognizes.

Example:
  go run ./cmd/zt3 universe load --file stock_list.csv
  go run ./cmd/zt3 universe validate --file stock_list.csv`,
}

// universeLoadCmd loads the CSV universe into Postgres.
var universeLoadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load the CSV universe into Postgres",
	RunE:  runUniverseLoad,
}

// universeValidateCmd validates instrument keys before storing.
var universeValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate instrument keys against the provider, then store",
	RunE:  runUniverseValidate,
}

func init() {
	rootCmd.AddCommand(universeCmd)
	universeCmd.AddCommand(universeLoadCmd)
	universeCmd.AddCommand(universeValidateCmd)

	universeCmd.PersistentFlags().StringVar(&universeFile, "file", "stock_list.csv", "CSV universe file (symbol,isin)")
}

func runUniverseLoad(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	if a.db == nil {
		return fmt.Errorf("universe load requires DATABASE_URL")
	}

	instruments, err := universe.LoadCSV(universeFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo := universe.NewRepository(a.db.Pool)
	if err := repo.Replace(ctx, instruments); err != nil {
		return err
	}

	fmt.Printf("Loaded %d instruments into the universe\n", len(instruments))
	return nil
}

func runUniverseValidate(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	if a.db == nil {
		return fmt.Errorf("universe validate requires DATABASE_URL")
	}

	instruments, err := universe.LoadCSV(universeFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	validator := universe.NewValidator(a.barSource(), a.cfg.Screener.PacingDelay, a.logger)
	valid, invalid, err := validator.Validate(ctx, instruments)
	if err != nil {
		return fmt.Errorf("validate universe: %w", err)
	}

	if len(valid) == 0 {
		return fmt.Errorf("no valid instruments; universe not updated")
	}

	repo := universe.NewRepository(a.db.Pool)
	if err := repo.Replace(ctx, valid); err != nil {
		return err
	}

	fmt.Printf("Stored %d valid instruments\n", len(valid))
	if len(invalid) > 0 {
		fmt.Printf("Rejected %d instruments with dead keys:\n", len(invalid))
		for _, instrument := range invalid {
			fmt.Printf("  %s (%s)\n", instrument.Symbol, instrument.ISIN)
		}
	}

	return nil
}
