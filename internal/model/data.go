package model

import "time"

// ReportResult is the final output of one report pass
type ReportResult struct {
	Report  string    `json:"report"`
	Entries []Entry   `json:"entries"`
	Stats   PassStats `json:"stats"`
}

// ExportResult represents the result of an export operation
type ExportResult struct {
	Type        string    `json:"type"` // "tsv", "chart", "database"
	Path        string    `json:"path"` // file path or table name
	RecordCount int       `json:"record_count"`
	Success     bool      `json:"success"`
	Error       string    `json:"error,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}
