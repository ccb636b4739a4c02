package store

import (
	"database/sql"
	"encoding/json"
	"energy-pipeline/internal/model"
	"time"
)

// SaveReportResults replaces the stored entries of one report of a run
func SaveReportResults(runID, report string, entries []model.Entry) error {
	if db == nil {
		return ErrNotInitialized
	}
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM report_results WHERE run_id = ? AND report = ?`, runID, report); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO report_results (run_id, report, group_key, value) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.Exec(runID, report, e.Key, e.Value); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetReportResults returns a run's entries grouped by report, in key order
func GetReportResults(runID string) (map[string][]model.Entry, error) {
	if db == nil {
		return nil, ErrNotInitialized
	}
	rows, err := db.Query(`SELECT report, group_key, value FROM report_results WHERE run_id = ? ORDER BY report, id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make(map[string][]model.Entry)
	for rows.Next() {
		var report string
		var e model.Entry
		if err := rows.Scan(&report, &e.Key, &e.Value); err != nil {
			return nil, err
		}
		results[report] = append(results[report], e)
	}
	return results, rows.Err()
}

// SaveStageProgress records a report's state transition and its pass counters
func SaveStageProgress(runID, report string, state model.ReportState, startedAt, completedAt *time.Time, stats model.PassStats) error {
	if db == nil {
		return ErrNotInitialized
	}
	var completed sql.NullTime
	if completedAt != nil {
		completed = sql.NullTime{Time: *completedAt, Valid: true}
	}
	var started sql.NullTime
	if startedAt != nil {
		started = sql.NullTime{Time: *startedAt, Valid: true}
	}
	_, err := db.Exec(`INSERT INTO stage_progress
		(run_id, report, state, started_at, completed_at, rows_read, rows_accepted, rows_skipped, rows_invalid, keys)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, report, string(state), started, completed,
		stats.RowsRead, stats.RowsAccepted, stats.RowsSkipped, stats.RowsInvalid, stats.Keys)
	return err
}

// GetStageProgress returns every recorded transition of a run
func GetStageProgress(runID string) ([]map[string]interface{}, error) {
	if db == nil {
		return nil, ErrNotInitialized
	}
	rows, err := db.Query(`SELECT report, state, started_at, completed_at, rows_read, rows_accepted, rows_skipped, rows_invalid, keys
		FROM stage_progress WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []map[string]interface{}{}
	for rows.Next() {
		var report, state string
		var started, completed sql.NullTime
		var read, accepted, skipped, invalid, keys int64
		if err := rows.Scan(&report, &state, &started, &completed, &read, &accepted, &skipped, &invalid, &keys); err != nil {
			return nil, err
		}
		row := map[string]interface{}{
			"report":        report,
			"state":         state,
			"rows_read":     read,
			"rows_accepted": accepted,
			"rows_skipped":  skipped,
			"rows_invalid":  invalid,
			"keys":          keys,
		}
		if started.Valid {
			row["started_at"] = started.Time
		}
		if completed.Valid {
			row["completed_at"] = completed.Time
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// SavePipelineLog persists one log line with free-form details
func SavePipelineLog(runID, stage, level, message string, details map[string]interface{}) error {
	if db == nil {
		return ErrNotInitialized
	}
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		return err
	}
	_, err = db.Exec(`INSERT INTO pipeline_logs (run_id, stage, level, message, details, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		runID, stage, level, message, string(detailsJSON), time.Now().UTC())
	return err
}

// GetPipelineLogs returns the newest limit log lines of a run
func GetPipelineLogs(runID string, limit int) ([]map[string]interface{}, error) {
	if db == nil {
		return nil, ErrNotInitialized
	}
	rows, err := db.Query(`SELECT stage, level, message, details, created_at FROM pipeline_logs
		WHERE run_id = ? ORDER BY id DESC LIMIT ?`, runID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []map[string]interface{}{}
	for rows.Next() {
		var stage, level, message, detailsJSON string
		var createdAt time.Time
		if err := rows.Scan(&stage, &level, &message, &detailsJSON, &createdAt); err != nil {
			return nil, err
		}
		var details map[string]interface{}
		if detailsJSON != "" {
			_ = json.Unmarshal([]byte(detailsJSON), &details)
		}
		out = append(out, map[string]interface{}{
			"stage":     stage,
			"level":     level,
			"message":   message,
			"details":   details,
			"createdAt": createdAt,
		})
	}
	return out, rows.Err()
}

// SaveOutputFile registers an artifact written by a run
func SaveOutputFile(runID, report, fileName, filePath, fileType string, fileSize int64) error {
	if db == nil {
		return ErrNotInitialized
	}
	_, err := db.Exec(`INSERT INTO output_files (run_id, report, file_name, file_path, file_type, file_size, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, report, fileName, filePath, fileType, fileSize, time.Now().UTC())
	return err
}

// GetOutputFiles lists the artifacts of a run
func GetOutputFiles(runID string) ([]map[string]interface{}, error) {
	if db == nil {
		return nil, ErrNotInitialized
	}
	rows, err := db.Query(`SELECT id, report, file_name, file_path, file_type, file_size, created_at
		FROM output_files WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []map[string]interface{}{}
	for rows.Next() {
		var id, size int64
		var report, name, path, fileType string
		var createdAt time.Time
		if err := rows.Scan(&id, &report, &name, &path, &fileType, &size, &createdAt); err != nil {
			return nil, err
		}
		out = append(out, map[string]interface{}{
			"id":        id,
			"report":    report,
			"file_name": name,
			"file_path": path,
			"file_type": fileType,
			"file_size": size,
			"createdAt": createdAt,
		})
	}
	return out, rows.Err()
}

// GetOutputFilePath resolves a registered artifact by name. Only files a
// run recorded can be resolved.
func GetOutputFilePath(runID, fileName string) (string, error) {
	if db == nil {
		return "", ErrNotInitialized
	}
	var path string
	err := db.QueryRow(`SELECT file_path FROM output_files WHERE run_id = ? AND file_name = ? ORDER BY id DESC LIMIT 1`,
		runID, fileName).Scan(&path)
	return path, err
}
