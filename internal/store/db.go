package store

import (
	"database/sql"
	"encoding/json"
	"energy-pipeline/internal/model"
	"errors"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotInitialized is returned when the run store was never opened
var ErrNotInitialized = errors.New("store: database not initialized")

var db *sql.DB

// Initialize DB connection
func InitDB(dbPath string) error {
	conn, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return err
	}
	conn.SetMaxOpenConns(1)

	// Create tables if not exists
	tables := []string{`
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		spec TEXT,
		status TEXT,
		created_at DATETIME,
		updated_at DATETIME
	);`, `
	CREATE TABLE IF NOT EXISTS run_errors (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT REFERENCES runs(id) ON DELETE CASCADE,
		error_message TEXT,
		created_at DATETIME
	);`, `
	CREATE TABLE IF NOT EXISTS report_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT REFERENCES runs(id) ON DELETE CASCADE,
		report TEXT,
		group_key TEXT,
		value REAL
	);`, `
	CREATE TABLE IF NOT EXISTS stage_progress (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT REFERENCES runs(id) ON DELETE CASCADE,
		report TEXT,
		state TEXT,
		started_at DATETIME,
		completed_at DATETIME,
		rows_read INTEGER,
		rows_accepted INTEGER,
		rows_skipped INTEGER,
		rows_invalid INTEGER,
		keys INTEGER
	);`, `
	CREATE TABLE IF NOT EXISTS pipeline_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT REFERENCES runs(id) ON DELETE CASCADE,
		stage TEXT,
		level TEXT,
		message TEXT,
		details TEXT,
		created_at DATETIME
	);`, `
	CREATE TABLE IF NOT EXISTS output_files (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT REFERENCES runs(id) ON DELETE CASCADE,
		report TEXT,
		file_name TEXT,
		file_path TEXT,
		file_type TEXT,
		file_size INTEGER,
		created_at DATETIME
	);`,
	}

	for _, ddl := range tables {
		if _, err := conn.Exec(ddl); err != nil {
			conn.Close()
			return err
		}
	}

	db = conn
	return nil
}

// Enabled reports whether InitDB succeeded
func Enabled() bool {
	return db != nil
}

// Close releases the connection; the store is disabled afterwards
func Close() error {
	if db == nil {
		return nil
	}
	err := db.Close()
	db = nil
	return err
}

// SaveRun stores a new run
func SaveRun(runID string, spec model.RunSpec) error {
	if db == nil {
		return ErrNotInitialized
	}
	specJSON, err := json.Marshal(spec)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	_, err = db.Exec(`INSERT INTO runs (id, spec, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		runID, string(specJSON), "pending", now, now)
	return err
}

// UpdateRunStatus updates run status
func UpdateRunStatus(runID string, status string) error {
	if db == nil {
		return ErrNotInitialized
	}
	now := time.Now().UTC()
	_, err := db.Exec(`UPDATE runs SET status = ?, updated_at = ? WHERE id = ?`, status, now, runID)
	return err
}

// SaveRunError records an error for a run
func SaveRunError(runID string, err error) error {
	if err == nil {
		return nil
	}
	if db == nil {
		return ErrNotInitialized
	}
	now := time.Now().UTC()
	_, e := db.Exec(`INSERT INTO run_errors (run_id, error_message, created_at) VALUES (?, ?, ?)`,
		runID, err.Error(), now)
	return e
}

// ListRuns returns all runs with basic info
func ListRuns() ([]map[string]interface{}, error) {
	if db == nil {
		return nil, ErrNotInitialized
	}
	rows, err := db.Query(`SELECT id, status, created_at, updated_at FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := []map[string]interface{}{}
	for rows.Next() {
		var id, status string
		var createdAt, updatedAt time.Time
		if err := rows.Scan(&id, &status, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, map[string]interface{}{
			"id":        id,
			"status":    status,
			"createdAt": createdAt,
			"updatedAt": updatedAt,
		})
	}
	return runs, rows.Err()
}

// GetRun fetches full run spec and status
func GetRun(runID string) (map[string]interface{}, error) {
	if db == nil {
		return nil, ErrNotInitialized
	}
	var specJSON string
	var status string
	var createdAt, updatedAt time.Time

	err := db.QueryRow(`SELECT spec, status, created_at, updated_at FROM runs WHERE id = ?`, runID).
		Scan(&specJSON, &status, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	var spec model.RunSpec
	if err := json.Unmarshal([]byte(specJSON), &spec); err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"id":        runID,
		"spec":      spec,
		"status":    status,
		"createdAt": createdAt,
		"updatedAt": updatedAt,
	}, nil
}

// GetRunErrors returns the errors recorded for a run, oldest first
func GetRunErrors(runID string) ([]map[string]interface{}, error) {
	if db == nil {
		return nil, ErrNotInitialized
	}
	rows, err := db.Query(`SELECT error_message, created_at FROM run_errors WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []map[string]interface{}{}
	for rows.Next() {
		var msg string
		var createdAt time.Time
		if err := rows.Scan(&msg, &createdAt); err != nil {
			return nil, err
		}
		out = append(out, map[string]interface{}{
			"error":     msg,
			"createdAt": createdAt,
		})
	}
	return out, rows.Err()
}

// DeleteRun removes a run; dependent rows go with it through foreign keys
func DeleteRun(runID string) error {
	if db == nil {
		return ErrNotInitialized
	}
	_, err := db.Exec(`DELETE FROM runs WHERE id = ?`, runID)
	return err
}
