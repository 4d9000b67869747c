package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"

	"github.com/JittoJoseph/ZT3-Stock-Screener/internal/contracts"
	"github.com/JittoJoseph/ZT3-Stock-Screener/internal/screener"
	"github.com/JittoJoseph/ZT3-Stock-Screener/pkg/logger"
)

// InstrumentSource provides the universe for an on-demand run.
type InstrumentSource interface {
	List(ctx context.Context) ([]contracts.Instrument, error)
}

// ScreenHandler serves screening results and on-demand run triggers.
type ScreenHandler struct {
	runner *screener.Runner
	source InstrumentSource
	logger *logger.Logger

	// running gates POST /screen/run to one run at a time.
	running atomic.Bool
}

// NewScreenHandler creates a new screen handler
func NewScreenHandler(runner *screener.Runner, source InstrumentSource, log *logger.Logger) *ScreenHandler {
	return &ScreenHandler{
		runner: runner,
		source: source,
		logger: log,
	}
}

// GetLatest returns the most recent run summary as JSON.
func (h *ScreenHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	summary, ok := h.runner.Latest()
	if !ok {
		writeError(w, http.StatusNotFound, "no screening run has completed yet")
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// TriggerRun starts a screening run in the background. Only one run may be
// in flight at a time.
func (h *ScreenHandler) TriggerRun(w http.ResponseWriter, r *http.Request) {
	if !h.running.CompareAndSwap(false, true) {
		writeError(w, http.StatusConflict, "a screening run is already in progress")
		return
	}

	go func() {
		defer h.running.Store(false)

		// Detached from the request context; the run outlives it.
		ctx := context.Background()

		instruments, err := h.source.List(ctx)
		if err != nil {
			h.logger.WithError(err).Error("Failed to load universe for on-demand run")
			return
		}

		if _, err := h.runner.RunOnce(ctx, instruments); err != nil {
			h.logger.WithError(err).Error("On-demand screening run failed")
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
