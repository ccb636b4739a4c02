package pipeline

import (
	"bufio"
	"energy-pipeline/internal/model"
	"energy-pipeline/internal/store"
	"energy-pipeline/pkg/utils"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ResultSeparator splits key and value in the result files
const ResultSeparator = "\t"

// WriteResultFile writes one "key<TAB>value" line per entry, replacing the
// file if it exists.
func WriteResultFile(path string, entries []model.Entry) (int, error) {
	file, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create result file: %w", err)
	}

	writer := bufio.NewWriter(file)
	recordCount := 0
	for _, e := range entries {
		if _, err := writer.WriteString(e.Key + ResultSeparator + utils.FormatValue(e.Value) + "\n"); err != nil {
			file.Close()
			return recordCount, fmt.Errorf("failed to write row: %w", err)
		}
		recordCount++
	}

	if err := writer.Flush(); err != nil {
		file.Close()
		return recordCount, fmt.Errorf("failed to flush result file: %w", err)
	}
	if err := file.Close(); err != nil {
		return recordCount, fmt.Errorf("failed to close result file: %w", err)
	}
	return recordCount, nil
}

// ReadResultFile loads a result file in file order. Lines that do not
// split into exactly a key and a value are ignored.
func ReadResultFile(path string) ([]model.Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open result file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), DefaultMaxLineBytes)

	var entries []model.Entry
	for scanner.Scan() {
		parts := strings.Split(scanner.Text(), ResultSeparator)
		if len(parts) != 2 {
			continue
		}
		value, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, fmt.Errorf("bad value for key %q in %s: %w", parts[0], path, err)
		}
		entries = append(entries, model.Entry{Key: parts[0], Value: value})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read result file: %w", err)
	}
	return entries, nil
}

// exportToFile writes a report's result file and describes the outcome
func exportToFile(path string, entries []model.Entry) (model.ExportResult, error) {
	recordCount, err := WriteResultFile(path, entries)
	result := model.ExportResult{
		Type:        "tsv",
		Path:        path,
		RecordCount: recordCount,
		Success:     err == nil,
		Timestamp:   time.Now(),
	}
	if err != nil {
		result.Error = err.Error()
		fmt.Printf("❌ Export to file failed: %v\n", err)
	} else {
		fmt.Printf("✅ Export to file successful: %d records exported to %s\n", recordCount, path)
	}
	return result, err
}

// exportToDatabase copies a report's entries into the run store. Failures
// are reported but never fail the run.
func exportToDatabase(runID, report string, entries []model.Entry) model.ExportResult {
	err := store.SaveReportResults(runID, report, entries)
	result := model.ExportResult{
		Type:        "database",
		Path:        "report_results",
		RecordCount: len(entries),
		Success:     err == nil,
		Timestamp:   time.Now(),
	}
	if err != nil {
		result.RecordCount = 0
		result.Error = err.Error()
		fmt.Printf("❌ Export to database failed: %v\n", err)
	}
	return result
}
