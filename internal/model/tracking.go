package model

import "time"

// ReportState is the lifecycle of one report within a run
type ReportState string

const (
	StateNotStarted    ReportState = "not_started"
	StateRunningPass   ReportState = "running_pass"
	StatePassComplete  ReportState = "pass_complete"
	StateChartRendered ReportState = "chart_rendered"
	StateFailed        ReportState = "failed"
)

// PassStats counts what happened to the rows of a single report pass
type PassStats struct {
	RowsRead     int64         `json:"rows_read"`
	RowsAccepted int64         `json:"rows_accepted"`
	RowsSkipped  int64         `json:"rows_skipped"` // failed a presence/shape/filter check
	RowsInvalid  int64         `json:"rows_invalid"` // non-numeric value, logged
	Keys         int           `json:"keys"`
	WorkerCount  int           `json:"worker_count"`
	StartTime    time.Time     `json:"start_time"`
	EndTime      time.Time     `json:"end_time"`
	Duration     time.Duration `json:"duration"`
}

// Add folds another shard's counters into s.
func (s *PassStats) Add(o PassStats) {
	s.RowsRead += o.RowsRead
	s.RowsAccepted += o.RowsAccepted
	s.RowsSkipped += o.RowsSkipped
	s.RowsInvalid += o.RowsInvalid
}

// ThroughputRPS returns rows read per second for the pass
func (s PassStats) ThroughputRPS() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return float64(s.RowsRead) / s.Duration.Seconds()
}

// ReportProgress is the tracked state of one report
type ReportProgress struct {
	Report string      `json:"report"`
	State  ReportState `json:"state"`
	Stats  PassStats   `json:"stats"`
	Error  string      `json:"error,omitempty"`
}

// RunSummary is what a finished run reports back to its caller
type RunSummary struct {
	RunID     string           `json:"run_id"`
	Status    string           `json:"status"`
	StartTime time.Time        `json:"start_time"`
	EndTime   time.Time        `json:"end_time"`
	Reports   []ReportProgress `json:"reports"`
	Results   []ReportResult   `json:"results"`
	Exports   []ExportResult   `json:"exports"`
}
