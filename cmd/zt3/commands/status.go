package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/JittoJoseph/ZT3-Stock-Screener/pkg/config"
	"github.com/JittoJoseph/ZT3-Stock-Screener/pkg/httputil"
	"github.com/JittoJoseph/ZT3-Stock-Screener/pkg/logger"
)

// statusCmd queries a running serve instance.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the status of a running screener server",
	Long: `Queries the local API server for health and the latest run summary.

Example:
  go run ./cmd/zt3 status`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(cfg)

	client := httputil.New(log, 5*time.Second)
	client.DisableRetry()

	base := fmt.Sprintf("http://localhost:%s", cfg.Port)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	resp, err := client.Get(ctx, base+"/health", nil)
	if err != nil {
		return fmt.Errorf("server not reachable on port %s: %w", cfg.Port, err)
	}
	body, err := httputil.ReadBody(resp)
	if err != nil {
		return err
	}
	fmt.Printf("Health: %s\n", string(body))

	resp, err = client.Get(ctx, base+"/api/v1/screen/latest", nil)
	if err != nil {
		return err
	}
	body, err = httputil.ReadBody(resp)
	if err != nil {
		return err
	}

	if resp.StatusCode == 404 {
		fmt.Println("No screening run has completed yet")
		return nil
	}

	var summary struct {
		RunAt time.Time `json:"run_at"`
		Stats struct {
			Total    int `json:"total"`
			Passed   int `json:"passed"`
			NearMiss int `json:"near_miss"`
			Failed   int `json:"failed"`
		} `json:"stats"`
	}
	if err := json.Unmarshal(body, &summary); err != nil {
		return fmt.Errorf("parse summary: %w", err)
	}

	fmt.Printf("Last run: %s\n", summary.RunAt.Format(time.RFC3339))
	fmt.Printf("Total: %d  Passed: %d  Near miss: %d  Failed: %d\n",
		summary.Stats.Total, summary.Stats.Passed, summary.Stats.NearMiss, summary.Stats.Failed)

	return nil
}
