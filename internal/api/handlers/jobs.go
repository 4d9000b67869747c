package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/JittoJoseph/ZT3-Stock-Screener/internal/scheduler"
	"github.com/JittoJoseph/ZT3-Stock-Screener/pkg/logger"
)

// JobsHandler exposes the scheduler's job registry.
type JobsHandler struct {
	scheduler *scheduler.Scheduler
	logger    *logger.Logger
}

// NewJobsHandler creates a new jobs handler
func NewJobsHandler(sched *scheduler.Scheduler, log *logger.Logger) *JobsHandler {
	return &JobsHandler{
		scheduler: sched,
		logger:    log,
	}
}

// GetStats returns per-job schedules and execution statistics.
func (h *JobsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.scheduler.GetJobStats())
}

// TriggerJob runs a registered job immediately, outside its schedule.
func (h *JobsHandler) TriggerJob(w http.ResponseWriter, r *http.Request) {
	jobName := mux.Vars(r)["name"]

	if err := h.scheduler.RunJob(jobName); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	h.logger.WithField("job", jobName).Info("Job triggered via API")
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "started", "job": jobName})
}
