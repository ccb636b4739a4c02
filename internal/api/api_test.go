package api

import (
	"encoding/json"
	"energy-pipeline/internal/model"
	"energy-pipeline/internal/store"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func seedStore(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := store.InitDB(filepath.Join(dir, "runs.db")); err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	if err := store.SaveRun("run-1", model.RunSpec{Input: "energy.csv"}); err != nil {
		t.Fatal(err)
	}
	if err := store.UpdateRunStatus("run-1", "completed"); err != nil {
		t.Fatal(err)
	}
	entries := []model.Entry{{Key: "Lincoln Square", Value: 2}, {Key: "Uptown", Value: 3}}
	if err := store.SaveReportResults("run-1", "therms_per_capita", entries); err != nil {
		t.Fatal(err)
	}
	now := time.Now()
	if err := store.SaveStageProgress("run-1", "therms_per_capita", model.StateChartRendered, &now, &now, model.PassStats{RowsRead: 2, Keys: 2}); err != nil {
		t.Fatal(err)
	}
	if err := store.SavePipelineLog("run-1", "therms_per_capita", "info", "Pass completed", nil); err != nil {
		t.Fatal(err)
	}

	tsv := filepath.Join(dir, "part-r-00000")
	if err := os.WriteFile(tsv, []byte("Lincoln Square\t2\nUptown\t3\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := store.SaveOutputFile("run-1", "therms_per_capita", "therms_per_capita.tsv", tsv, "tsv", 24); err != nil {
		t.Fatal(err)
	}
	return dir
}

func get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	r := NewRouter()
	r.Quiet = true
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestListAndGetRun(t *testing.T) {
	seedStore(t)

	rec := get(t, "/api/v1/runs")
	if rec.Code != http.StatusOK {
		t.Fatalf("list: status %d", rec.Code)
	}
	var runs []map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &runs); err != nil || len(runs) != 1 {
		t.Fatalf("list: %v %v", runs, err)
	}

	rec = get(t, "/api/v1/runs/run-1")
	if rec.Code != http.StatusOK {
		t.Fatalf("get: status %d", rec.Code)
	}
	if body := decode(t, rec); body["status"] != "completed" {
		t.Errorf("get: unexpected body %v", body)
	}

	if rec := get(t, "/api/v1/runs/unknown"); rec.Code != http.StatusNotFound {
		t.Errorf("unknown run: status %d", rec.Code)
	}
}

func TestRunSubresources(t *testing.T) {
	seedStore(t)

	tests := []struct {
		path  string
		field string
		count float64
	}{
		{"/api/v1/runs/run-1/results", "results", 2},
		{"/api/v1/runs/run-1/progress", "progress", 1},
		{"/api/v1/runs/run-1/logs?limit=5", "logs", 1},
		{"/api/v1/runs/run-1/errors", "errors", 0},
		{"/api/v1/runs/run-1/files", "files", 1},
	}
	for _, tt := range tests {
		rec := get(t, tt.path)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status %d", tt.path, rec.Code)
			continue
		}
		body := decode(t, rec)
		if body["run_id"] != "run-1" || body["count"] != tt.count {
			t.Errorf("%s: unexpected body %v", tt.path, body)
		}
		if _, ok := body[tt.field]; !ok {
			t.Errorf("%s: missing %q", tt.path, tt.field)
		}
	}

	files := decode(t, get(t, "/api/v1/runs/run-1/files"))["files"].([]interface{})
	if url := files[0].(map[string]interface{})["download_url"]; url != "/api/v1/download/run-1/therms_per_capita.tsv" {
		t.Errorf("download url: %v", url)
	}
}

func TestDownloadFile(t *testing.T) {
	seedStore(t)

	rec := get(t, "/api/v1/download/run-1/therms_per_capita.tsv")
	if rec.Code != http.StatusOK {
		t.Fatalf("download: status %d", rec.Code)
	}
	if rec.Body.String() != "Lincoln Square\t2\nUptown\t3\n" {
		t.Errorf("download body: %q", rec.Body.String())
	}

	if rec := get(t, "/api/v1/download/run-1/JOB9_CHART.png"); rec.Code != http.StatusNotFound {
		t.Errorf("unregistered file: status %d", rec.Code)
	}
}

func TestDeleteRun(t *testing.T) {
	seedStore(t)

	r := NewRouter()
	r.Quiet = true
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/runs/run-1", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: status %d", rec.Code)
	}
	if rec := get(t, "/api/v1/runs/run-1"); rec.Code != http.StatusNotFound {
		t.Errorf("deleted run still served: %d", rec.Code)
	}
}
