package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/JittoJoseph/ZT3-Stock-Screener/internal/api"
	"github.com/JittoJoseph/ZT3-Stock-Screener/internal/api/handlers"
	"github.com/JittoJoseph/ZT3-Stock-Screener/internal/scheduler"
	"github.com/JittoJoseph/ZT3-Stock-Screener/internal/scheduler/jobs"
)

var serveUniverseFile string

// serveCmd runs the API server plus the daily screening schedule.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the API server and the daily screening schedule",
	Long: `Starts the HTTP API and registers the daily screening job
(weekdays at 18:30 IST).

Endpoints:
  GET  /health
  GET  /api/v1/screen/latest
  POST /api/v1/screen/run

Example:
  go run ./cmd/zt3 serve
  go run ./cmd/zt3 serve --universe stock_list.csv`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveUniverseFile, "universe", "", "CSV universe file (symbol,isin)")
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	source, err := a.instrumentSource(serveUniverseFile)
	if err != nil {
		return err
	}

	// NSE schedules are exchange-local.
	ist, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		return fmt.Errorf("load IST location: %w", err)
	}

	sched := scheduler.New(ist, a.logger)
	if err := sched.AddJob(jobs.NewScreeningJob(source, a.runner, a.logger)); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	screenHandler := handlers.NewScreenHandler(a.runner, source, a.logger)
	jobsHandler := handlers.NewJobsHandler(sched, a.logger)
	server := api.New(a.cfg, a.logger, api.NewRouter(screenHandler, jobsHandler, a.logger))

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		a.logger.WithField("signal", sig.String()).Info("Shutdown signal received")
	}

	return server.Stop(30 * time.Second)
}
