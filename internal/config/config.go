// Package config loads run specs from JSON or YAML files and fills in
// defaults.
package config

import (
	"bytes"
	"encoding/json"
	"energy-pipeline/internal/model"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"
)

// Default values applied by ApplyDefaults
const (
	DefaultWorkers           = 1
	DefaultChannelBufferSize = 16
	DefaultMaxLineBytes      = 4 << 20
	DefaultRenderer          = "gonum"
	DefaultDBFile            = "runs.db"
)

// Load reads a run spec from path. The format follows the extension:
// .yaml/.yml for YAML, anything else is JSON.
func Load(path string) (model.RunSpec, error) {
	var spec model.RunSpec

	data, err := os.ReadFile(path)
	if err != nil {
		return spec, fmt.Errorf("failed to read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.UnmarshalStrict(data, &spec); err != nil {
			return spec, fmt.Errorf("failed to decode YAML config %s: %w", path, err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&spec); err != nil {
			return spec, fmt.Errorf("failed to decode JSON config %s: %w", path, err)
		}
	}
	return spec, nil
}

// ApplyDefaults fills every unset option. The run store defaults to a
// runs.db file inside the output directory.
func ApplyDefaults(spec *model.RunSpec) {
	if spec.Concurrency.Workers <= 0 {
		spec.Concurrency.Workers = DefaultWorkers
	}
	if spec.Concurrency.ChannelBufferSize <= 0 {
		spec.Concurrency.ChannelBufferSize = DefaultChannelBufferSize
	}
	if spec.MaxLineBytes <= 0 {
		spec.MaxLineBytes = DefaultMaxLineBytes
	}
	if spec.Export.Renderer == "" {
		spec.Export.Renderer = DefaultRenderer
	}
	if spec.Export.ChartsDir == "" {
		spec.Export.ChartsDir = spec.Export.OutputDir
	}
}

// DefaultDBPath is where the run store lives when nothing else is configured
func DefaultDBPath(outputDir string) string {
	return filepath.Join(outputDir, DefaultDBFile)
}

// Validate rejects specs that cannot run
func Validate(spec model.RunSpec) error {
	if spec.Input == "" {
		return fmt.Errorf("input path is required")
	}
	if spec.Export.OutputDir == "" {
		return fmt.Errorf("output directory is required")
	}
	switch strings.ToLower(spec.Export.Renderer) {
	case "", "gonum", "gochart", "go-chart":
	default:
		return fmt.Errorf("unknown renderer %q", spec.Export.Renderer)
	}
	return nil
}
