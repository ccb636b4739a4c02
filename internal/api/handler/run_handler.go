package handler

import (
	"database/sql"
	"encoding/json"
	"energy-pipeline/internal/store"
	"energy-pipeline/pkg/router"
	"energy-pipeline/pkg/utils"
	"errors"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const runsPrefix = "/api/v1/runs/"

// runIDFromPath extracts the run ID between the runs prefix and suffix
func runIDFromPath(path, suffix string) (string, bool) {
	if !strings.HasPrefix(path, runsPrefix) || !strings.HasSuffix(path, suffix) {
		return "", false
	}
	id := path[len(runsPrefix) : len(path)-len(suffix)]
	if id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}

func limitParam(r *http.Request, def int) int {
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			return parsed
		}
	}
	return def
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// ListRuns retrieves all recorded report runs
// @Summary List runs
// @Description Get all report runs with their current status
// @Tags runs
// @Produce json
// @Success 200 {array} map[string]interface{} "List of runs"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /runs [get]
func ListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := store.ListRuns()
	if err != nil {
		http.Error(w, "Failed to fetch runs", http.StatusInternalServerError)
		return
	}
	writeJSON(w, runs)
}

// GetRun retrieves a specific run
// @Summary Get run
// @Description Retrieve the configuration and status of a run
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} map[string]interface{} "Run details"
// @Failure 400 {object} map[string]interface{} "Invalid run ID"
// @Failure 404 {object} map[string]interface{} "Run not found"
// @Router /runs/{id} [get]
func GetRun(w http.ResponseWriter, r *http.Request) {
	runID, ok := runIDFromPath(r.URL.Path, "")
	if !ok {
		http.Error(w, "Run ID is required", http.StatusBadRequest)
		return
	}

	run, err := store.GetRun(runID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Run not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to fetch run", http.StatusInternalServerError)
		return
	}
	writeJSON(w, run)
}

// DeleteRun removes a run and everything recorded for it. Files on disk are kept.
// @Summary Delete run
// @Tags runs
// @Param id path string true "Run ID"
// @Success 204 "Run deleted"
// @Failure 400 {object} map[string]interface{} "Invalid run ID"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /runs/{id} [delete]
func DeleteRun(w http.ResponseWriter, r *http.Request) {
	runID, ok := runIDFromPath(r.URL.Path, "")
	if !ok {
		http.Error(w, "Run ID is required", http.StatusBadRequest)
		return
	}
	if err := store.DeleteRun(runID); err != nil {
		http.Error(w, "Failed to delete run", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetRunResults retrieves the aggregated entries of every report in a run
// @Summary Get run results
// @Description Retrieve the key/value entries written by each report
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} map[string]interface{} "Run results"
// @Failure 400 {object} map[string]interface{} "Invalid run ID"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /runs/{id}/results [get]
func GetRunResults(w http.ResponseWriter, r *http.Request) {
	runID, ok := runIDFromPath(r.URL.Path, "/results")
	if !ok {
		http.Error(w, "Run ID is required", http.StatusBadRequest)
		return
	}

	results, err := store.GetReportResults(runID)
	if err != nil {
		http.Error(w, "Failed to retrieve results", http.StatusInternalServerError)
		return
	}

	count := 0
	for _, entries := range results {
		count += len(entries)
	}
	writeJSON(w, map[string]interface{}{
		"run_id":  runID,
		"results": results,
		"count":   count,
	})
}

// GetRunProgress retrieves per-report pass state and row counts
// @Summary Get run progress
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} map[string]interface{} "Report progress"
// @Failure 400 {object} map[string]interface{} "Invalid run ID"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /runs/{id}/progress [get]
func GetRunProgress(w http.ResponseWriter, r *http.Request) {
	runID, ok := runIDFromPath(r.URL.Path, "/progress")
	if !ok {
		http.Error(w, "Run ID is required", http.StatusBadRequest)
		return
	}

	progress, err := store.GetStageProgress(runID)
	if err != nil {
		http.Error(w, "Failed to retrieve progress", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]interface{}{
		"run_id":   runID,
		"progress": progress,
		"count":    len(progress),
	})
}

// GET /api/v1/runs/{id}/logs
func GetRunLogs(w http.ResponseWriter, r *http.Request) {
	runID, ok := runIDFromPath(r.URL.Path, "/logs")
	if !ok {
		http.Error(w, "Run ID is required", http.StatusBadRequest)
		return
	}

	limit := limitParam(r, 100)
	logs, err := store.GetPipelineLogs(runID, limit)
	if err != nil {
		http.Error(w, "Failed to retrieve logs", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]interface{}{
		"run_id": runID,
		"logs":   logs,
		"count":  len(logs),
		"limit":  limit,
	})
}

// GetRunErrors retrieves errors that failed a run
// @Summary Get run errors
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} map[string]interface{} "Run errors"
// @Failure 400 {object} map[string]interface{} "Invalid run ID"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /runs/{id}/errors [get]
func GetRunErrors(w http.ResponseWriter, r *http.Request) {
	runID, ok := runIDFromPath(r.URL.Path, "/errors")
	if !ok {
		http.Error(w, "Run ID is required", http.StatusBadRequest)
		return
	}

	runErrors, err := store.GetRunErrors(runID)
	if err != nil {
		http.Error(w, "Failed to retrieve errors", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]interface{}{
		"run_id": runID,
		"errors": runErrors,
		"count":  len(runErrors),
	})
}

// GET /api/v1/runs/{id}/files
func GetRunFiles(w http.ResponseWriter, r *http.Request) {
	runID, ok := runIDFromPath(r.URL.Path, "/files")
	if !ok {
		http.Error(w, "Run ID is required", http.StatusBadRequest)
		return
	}

	files, err := store.GetOutputFiles(runID)
	if err != nil {
		http.Error(w, "Failed to retrieve files", http.StatusInternalServerError)
		return
	}
	for _, f := range files {
		if name, ok := f["file_name"].(string); ok {
			f["download_url"] = utils.DownloadURL(runID, name)
		}
	}
	writeJSON(w, map[string]interface{}{
		"run_id": runID,
		"files":  files,
		"count":  len(files),
	})
}

// DownloadFile serves a result table or chart recorded by a run
// @Summary Download output file
// @Description Download a TSV result or PNG chart produced by a run
// @Tags files
// @Produce octet-stream
// @Param id path string true "Run ID"
// @Param file path string true "File name, e.g. JOB1_CHART.png or building_type.tsv"
// @Success 200 {file} file "File content"
// @Failure 400 {object} map[string]interface{} "Invalid path"
// @Failure 404 {object} map[string]interface{} "File not found"
// @Router /download/{id}/{file} [get]
func DownloadFile(w http.ResponseWriter, r *http.Request) {
	// /api/v1/download/{id}/{file}
	if !strings.HasPrefix(r.URL.Path, "/api/v1/download/") || router.Segment(r, 5) != "" {
		http.Error(w, "Invalid path", http.StatusBadRequest)
		return
	}
	runID, fileName := router.Segment(r, 3), router.Segment(r, 4)
	if runID == "" || fileName == "" {
		http.Error(w, "Run ID and file name are required", http.StatusBadRequest)
		return
	}

	path, err := store.GetOutputFilePath(runID, fileName)
	if err != nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	if _, err := os.Stat(path); err != nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Disposition", "attachment; filename="+strconv.Quote(fileName))
	if filepath.Ext(fileName) == ".tsv" {
		w.Header().Set("Content-Type", "text/tab-separated-values")
	}
	http.ServeFile(w, r, path)
}
