package pipeline

import (
	"energy-pipeline/internal/model"
	"energy-pipeline/internal/store"
	"fmt"
	"log"
	"sync"
	"time"
)

// RunTracker follows every report of a run through its states and mirrors
// transitions into the run store when one is open.
type RunTracker struct {
	RunID   string
	Mutex   sync.RWMutex
	summary model.RunSummary
	index   map[string]int
}

// NewRunTracker creates a tracker with every report not started
func NewRunTracker(runID string, reports []Report) *RunTracker {
	rt := &RunTracker{
		RunID: runID,
		index: make(map[string]int, len(reports)),
		summary: model.RunSummary{
			RunID:     runID,
			Status:    "pending",
			StartTime: time.Now(),
		},
	}
	for i, r := range reports {
		rt.index[r.Name] = i
		rt.summary.Reports = append(rt.summary.Reports, model.ReportProgress{
			Report: r.Name,
			State:  model.StateNotStarted,
		})
	}
	return rt
}

// SetStatus updates the overall run status
func (rt *RunTracker) SetStatus(status string) {
	rt.Mutex.Lock()
	rt.summary.Status = status
	if status == "completed" || status == "failed" {
		rt.summary.EndTime = time.Now()
	}
	rt.Mutex.Unlock()

	if store.Enabled() {
		if err := store.UpdateRunStatus(rt.RunID, status); err != nil {
			log.Printf("⚠️ Failed to update run status: %v", err)
		}
	}
}

// StartPass marks a report as reading its input
func (rt *RunTracker) StartPass(report string, workerCount int) {
	now := time.Now()
	rt.transition(report, model.StateRunningPass, model.PassStats{WorkerCount: workerCount, StartTime: now}, &now, nil)
	fmt.Printf("📊 Pass '%s' started with %d workers\n", report, workerCount)
}

// EndPass stores the counters of a finished pass
func (rt *RunTracker) EndPass(report string, stats model.PassStats) {
	rt.transition(report, model.StatePassComplete, stats, &stats.StartTime, &stats.EndTime)
	fmt.Printf("📊 Pass '%s' completed: %d rows, %d accepted, %d skipped, %d invalid, %d keys (%.0f rows/s)\n",
		report, stats.RowsRead, stats.RowsAccepted, stats.RowsSkipped, stats.RowsInvalid, stats.Keys, stats.ThroughputRPS())
}

// ChartRendered marks the last state of a report
func (rt *RunTracker) ChartRendered(report string) {
	now := time.Now()
	stats := rt.stats(report)
	rt.transition(report, model.StateChartRendered, stats, &stats.StartTime, &now)
}

// Fail marks a report as failed and records the error
func (rt *RunTracker) Fail(report string, err error) {
	rt.Mutex.Lock()
	if i, ok := rt.index[report]; ok {
		rt.summary.Reports[i].Error = err.Error()
	}
	rt.Mutex.Unlock()

	now := time.Now()
	stats := rt.stats(report)
	rt.transition(report, model.StateFailed, stats, &stats.StartTime, &now)
}

// RecordExport keeps the outcome of a written artifact
func (rt *RunTracker) RecordExport(result model.ExportResult) {
	rt.Mutex.Lock()
	defer rt.Mutex.Unlock()
	rt.summary.Exports = append(rt.summary.Exports, result)
}

// RecordResult keeps the entries a report wrote
func (rt *RunTracker) RecordResult(result model.ReportResult) {
	rt.Mutex.Lock()
	defer rt.Mutex.Unlock()
	rt.summary.Results = append(rt.summary.Results, result)
}

// Log persists a stage log line when the run store is open
func (rt *RunTracker) Log(stage, level, message string, details map[string]interface{}) {
	if !store.Enabled() {
		return
	}
	if err := store.SavePipelineLog(rt.RunID, stage, level, message, details); err != nil {
		log.Printf("⚠️ Failed to save pipeline log: %v", err)
	}
}

// Summary returns a copy of the run summary
func (rt *RunTracker) Summary() model.RunSummary {
	rt.Mutex.RLock()
	defer rt.Mutex.RUnlock()
	s := rt.summary
	s.Reports = append([]model.ReportProgress(nil), rt.summary.Reports...)
	s.Exports = append([]model.ExportResult(nil), rt.summary.Exports...)
	s.Results = append([]model.ReportResult(nil), rt.summary.Results...)
	return s
}

func (rt *RunTracker) stats(report string) model.PassStats {
	rt.Mutex.RLock()
	defer rt.Mutex.RUnlock()
	if i, ok := rt.index[report]; ok {
		return rt.summary.Reports[i].Stats
	}
	return model.PassStats{}
}

func (rt *RunTracker) transition(report string, state model.ReportState, stats model.PassStats, startedAt, completedAt *time.Time) {
	rt.Mutex.Lock()
	if i, ok := rt.index[report]; ok {
		rt.summary.Reports[i].State = state
		rt.summary.Reports[i].Stats = stats
	}
	rt.Mutex.Unlock()

	if store.Enabled() {
		if err := store.SaveStageProgress(rt.RunID, report, state, startedAt, completedAt, stats); err != nil {
			log.Printf("⚠️ Failed to save progress for %s: %v", report, err)
		}
	}
}
