package pipeline

import (
	"context"
	"energy-pipeline/internal/chart"
	"energy-pipeline/internal/model"
	"energy-pipeline/internal/store"
	"energy-pipeline/pkg/utils"
	"fmt"
	"log"
	"path/filepath"
	"time"
)

// ------------------- Pipeline Runner -------------------

// Run executes the energy reports selected by spec.Reports (all three by
// default) over spec.Input.
func Run(ctx context.Context, runID string, spec model.RunSpec, renderer chart.Renderer) (model.RunSummary, error) {
	reports, err := SelectReports(spec.Reports)
	if err != nil {
		return model.RunSummary{RunID: runID, Status: "failed"}, err
	}
	return RunReports(ctx, runID, spec, reports, renderer)
}

// RunReports executes reports one after another. Each report reads the
// whole input on its own, writes its result file and then its chart. The
// first I/O error stops the run.
func RunReports(ctx context.Context, runID string, spec model.RunSpec, reports []Report, renderer chart.Renderer) (summary model.RunSummary, err error) {
	start := time.Now()
	fmt.Printf("🚀 Starting pipeline for run: %s\n", runID)

	tracker := NewRunTracker(runID, reports)
	tracker.SetStatus("running")

	// Defer function to handle status updates on completion/error
	defer func() {
		if err != nil {
			tracker.SetStatus("failed")
			if store.Enabled() {
				if e := store.SaveRunError(runID, err); e != nil {
					log.Printf("⚠️ Failed to save run error: %v", e)
				}
			}
		}
		summary = tracker.Summary()
	}()

	if timeout := utils.ParseDuration(spec.Concurrency.RunTimeout, 0); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if renderer == nil {
		renderer = chart.GonumRenderer{}
	}

	om := utils.NewOutputManager(spec.Export.OutputDir, spec.Export.ChartsDir)
	if err := om.EnsureOutputDirExists(); err != nil {
		return summary, fmt.Errorf("failed to create output directory: %w", err)
	}

	for _, report := range reports {
		result, err := runReport(ctx, tracker, om, spec, report, renderer)
		if err != nil {
			tracker.Fail(report.Name, err)
			tracker.Log(report.Name, "error", "Report failed", map[string]interface{}{
				"error": err.Error(),
			})
			return summary, fmt.Errorf("report %s: %w", report.Name, err)
		}
		tracker.RecordResult(result)
	}

	tracker.SetStatus("completed")
	fmt.Printf("🏁 Pipeline completed successfully for run: %s in %v\n", runID, time.Since(start))
	return summary, nil
}

func runReport(ctx context.Context, tracker *RunTracker, om *utils.OutputManager, spec model.RunSpec, report Report, renderer chart.Renderer) (model.ReportResult, error) {
	result := model.ReportResult{Report: report.Name}
	workerCount := spec.Concurrency.Workers
	if workerCount <= 0 {
		workerCount = 1
	}

	fmt.Printf("▶️ %s (%s)\n", report.Label, report.Name)

	// --- RESET OUTPUT ---
	if _, err := om.ResetReportDir(report.Name); err != nil {
		return result, err
	}

	// --- PASS ---
	tracker.StartPass(report.Name, workerCount)
	tracker.Log(report.Name, "info", "Starting pass", map[string]interface{}{
		"input":     spec.Input,
		"reduction": report.Reduction.String(),
		"workers":   workerCount,
	})

	input, err := OpenInput(spec.Input)
	if err != nil {
		return result, err
	}
	agg, stats, err := AggregatePass(ctx, input, report, PassOptions{
		Workers:           workerCount,
		ChannelBufferSize: spec.Concurrency.ChannelBufferSize,
		MaxLineBytes:      spec.MaxLineBytes,
		Verbose:           spec.Logging,
	})
	input.Close()
	if err != nil {
		return result, fmt.Errorf("pass over %s failed: %w", spec.Input, err)
	}

	// --- EXPORT ---
	entries := agg.Entries(report.Reduction)
	result.Entries = entries
	result.Stats = stats
	resultPath := om.ResultPath(report.Name)
	exportResult, err := exportToFile(resultPath, entries)
	tracker.RecordExport(exportResult)
	if err != nil {
		return result, err
	}
	tracker.EndPass(report.Name, stats)
	registerOutputFile(tracker, om, report.Name, report.Name+".tsv", resultPath)

	if store.Enabled() {
		tracker.RecordExport(exportToDatabase(tracker.RunID, report.Name, entries))
	}

	tracker.Log(report.Name, "info", "Pass completed", map[string]interface{}{
		"rows_read":     stats.RowsRead,
		"rows_accepted": stats.RowsAccepted,
		"rows_skipped":  stats.RowsSkipped,
		"rows_invalid":  stats.RowsInvalid,
		"keys":          stats.Keys,
		"duration_ms":   stats.Duration.Milliseconds(),
	})

	// --- CHART ---
	chartEntries, err := ReadResultFile(resultPath)
	if err != nil {
		return result, err
	}
	fmt.Printf("Chart for %s: %d categories\n", report.Chart.Title, len(chartEntries))

	chartPath := om.ChartPath(report.Chart.FileName)
	if err := chart.Save(renderer, chartPath, report.Chart, chartEntries); err != nil {
		tracker.RecordExport(model.ExportResult{
			Type:      "chart",
			Path:      chartPath,
			Error:     err.Error(),
			Timestamp: time.Now(),
		})
		return result, err
	}
	tracker.RecordExport(model.ExportResult{
		Type:        "chart",
		Path:        chartPath,
		RecordCount: len(chartEntries),
		Success:     true,
		Timestamp:   time.Now(),
	})
	registerOutputFile(tracker, om, report.Name, filepath.Base(chartPath), chartPath)
	tracker.ChartRendered(report.Name)
	tracker.Log(report.Name, "info", "Chart rendered", map[string]interface{}{
		"chart":    chartPath,
		"renderer": renderer.Name(),
	})

	fmt.Printf("✅ Report '%s' complete: %s, %s\n", report.Name, resultPath, chartPath)
	return result, nil
}

// registerOutputFile records an artifact in the run store
func registerOutputFile(tracker *RunTracker, om *utils.OutputManager, report, name, path string) {
	if !store.Enabled() {
		return
	}
	size, err := om.GetFileSize(path)
	if err != nil {
		log.Printf("⚠️ Failed to stat %s: %v", path, err)
		return
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}
	if err := store.SaveOutputFile(tracker.RunID, report, name, absPath, om.GetFileType(path), size); err != nil {
		log.Printf("⚠️ Failed to register output file %s: %v", path, err)
	}
}
