package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ResultFileName is the single output file written for every report.
const ResultFileName = "part-r-00000"

// OutputManager handles output file organization and path management
type OutputManager struct {
	BaseOutputDir string
	ChartsDir     string
}

// NewOutputManager creates a new output manager. Charts land in the base
// output dir unless chartsDir is set.
func NewOutputManager(baseOutputDir, chartsDir string) *OutputManager {
	if chartsDir == "" {
		chartsDir = baseOutputDir
	}
	return &OutputManager{
		BaseOutputDir: baseOutputDir,
		ChartsDir:     chartsDir,
	}
}

// ReportDir returns the directory owned by a report
func (om *OutputManager) ReportDir(report string) string {
	return filepath.Join(om.BaseOutputDir, report)
}

// ResetReportDir removes any previous output of a report and recreates
// its directory empty.
func (om *OutputManager) ResetReportDir(report string) (string, error) {
	dir := om.ReportDir(report)
	if err := os.RemoveAll(dir); err != nil {
		return "", fmt.Errorf("failed to remove previous output %s: %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report output directory: %w", err)
	}
	return dir, nil
}

// ResultPath is the tab-separated result file of a report
func (om *OutputManager) ResultPath(report string) string {
	return filepath.Join(om.ReportDir(report), ResultFileName)
}

// ChartPath generates a full path for a chart file
func (om *OutputManager) ChartPath(fileName string) string {
	// Clean the filename to remove any path separators
	return filepath.Join(om.ChartsDir, filepath.Base(fileName))
}

// DownloadURL is where the API serves a registered file of a run
func DownloadURL(runID, fileName string) string {
	return fmt.Sprintf("/api/v1/download/%s/%s", runID, filepath.Base(fileName))
}

// GetFileType determines the file type based on extension
func (om *OutputManager) GetFileType(fileName string) string {
	if filepath.Base(fileName) == ResultFileName {
		return "tsv"
	}
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".tsv":
		return "tsv"
	case ".png":
		return "png"
	case ".db":
		return "sqlite"
	default:
		return "unknown"
	}
}

// GetFileSize returns the size of a file in bytes
func (om *OutputManager) GetFileSize(filePath string) (int64, error) {
	fileInfo, err := os.Stat(filePath)
	if err != nil {
		return 0, err
	}
	return fileInfo.Size(), nil
}

// EnsureOutputDirExists ensures the base output and chart directories exist
func (om *OutputManager) EnsureOutputDirExists() error {
	if err := os.MkdirAll(om.BaseOutputDir, 0755); err != nil {
		return err
	}
	return os.MkdirAll(om.ChartsDir, 0755)
}
