package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JittoJoseph/ZT3-Stock-Screener/pkg/config"
	"github.com/JittoJoseph/ZT3-Stock-Screener/pkg/logger"
)

type stubJob struct {
	name     string
	schedule string
	runs     atomic.Int32
}

func (j *stubJob) Name() string     { return j.name }
func (j *stubJob) Schedule() string { return j.schedule }
func (j *stubJob) Run(_ context.Context) error {
	j.runs.Add(1)
	return nil
}

func newTestScheduler(t *testing.T) *Scheduler {
	t.Helper()
	return New(time.UTC, logger.New(&config.Config{LogLevel: "fatal"}))
}

func TestAddJobRejectsDuplicates(t *testing.T) {
	s := newTestScheduler(t)

	require.NoError(t, s.AddJob(&stubJob{name: "a", schedule: "0 0 0 * * *"}))
	err := s.AddJob(&stubJob{name: "a", schedule: "0 0 0 * * *"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestAddJobRejectsBadSchedule(t *testing.T) {
	s := newTestScheduler(t)

	err := s.AddJob(&stubJob{name: "a", schedule: "not a cron expression"})
	require.Error(t, err)
}

func TestRunJobUnknown(t *testing.T) {
	s := newTestScheduler(t)

	err := s.RunJob("nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestRunJobExecutesAndRecordsHistory(t *testing.T) {
	s := newTestScheduler(t)
	job := &stubJob{name: "a", schedule: "0 0 0 * * *"}
	require.NoError(t, s.AddJob(job))

	require.NoError(t, s.RunJob("a"))

	require.Eventually(t, func() bool {
		stats, ok := s.GetJobStats()["a"]
		return ok && stats.TotalRuns == 1
	}, 2*time.Second, 10*time.Millisecond)

	stats := s.GetJobStats()["a"]
	assert.Equal(t, "0 0 0 * * *", stats.Schedule)
	assert.Equal(t, 1, stats.SuccessCount)
	assert.Zero(t, stats.FailureCount)
	assert.Equal(t, 1.0, stats.SuccessRate)
	require.NotNil(t, stats.LastRun)
	require.NotNil(t, stats.LastSuccess)
	assert.Nil(t, stats.LastFailure)

	assert.Equal(t, int32(1), job.runs.Load())
}

func TestJobHistoryAccounting(t *testing.T) {
	h := &JobHistory{}

	assert.Zero(t, h.SuccessRate(), "empty history has no success rate")
	_, ok := h.Latest()
	assert.False(t, ok)

	now := time.Now()
	h.AddResult(JobResult{JobName: "a", StartTime: now, Success: true})
	h.AddResult(JobResult{JobName: "a", StartTime: now.Add(time.Minute), Success: false, Error: errors.New("boom").Error()})
	h.AddResult(JobResult{JobName: "a", StartTime: now.Add(2 * time.Minute), Success: true})

	failed := h.FailedResults()
	require.Len(t, failed, 1)
	assert.Equal(t, "boom", failed[0].Error)

	assert.InDelta(t, 2.0/3.0, h.SuccessRate(), 1e-9)

	latest, ok := h.Latest()
	require.True(t, ok)
	assert.True(t, latest.Success)
	assert.Equal(t, now.Add(2*time.Minute), latest.StartTime)
}

func TestJobHistoryCapsAtHundred(t *testing.T) {
	h := &JobHistory{}
	for i := 0; i < 130; i++ {
		h.AddResult(JobResult{JobName: "a", Success: i%2 == 0})
	}

	assert.Len(t, h.Results, 100)
}
