// Package chart renders report results as PNG bar charts.
package chart

import (
	"energy-pipeline/internal/model"
	"fmt"
	"image/color"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"
)

const (
	// Height of every chart in pixels
	Height = 600
	// NarrowWidth is used when every category is labelled
	NarrowWidth = 800
	// WideWidth is used when labels are thinned out
	WideWidth = 1200
	// LabelRotationDegrees tilts category labels upward
	LabelRotationDegrees = 45
	// TickFontSize in points
	TickFontSize = 10
)

var (
	// BarColor is the fill of every bar
	BarColor = color.RGBA{R: 255, A: 255}
	// GridColor is used for the horizontal grid lines
	GridColor = color.RGBA{R: 192, G: 192, B: 192, A: 255}
)

// Renderer draws one single-series vertical bar chart as PNG
type Renderer interface {
	Name() string
	Render(w io.Writer, spec model.ChartSpec, entries []model.Entry) error
}

// New returns the renderer registered under name; "" selects gonum
func New(name string) (Renderer, error) {
	switch strings.ToLower(name) {
	case "", "gonum":
		return GonumRenderer{}, nil
	case "gochart", "go-chart":
		return GoChartRenderer{}, nil
	default:
		return nil, fmt.Errorf("unknown chart renderer: %s", name)
	}
}

// Size returns the canvas size in pixels for a label skip setting
func Size(labelSkip int) (width, height int) {
	if labelSkip > 0 {
		return WideWidth, Height
	}
	return NarrowWidth, Height
}

// LabelVisible reports whether the category at index i keeps its label
func LabelVisible(i, labelSkip int) bool {
	return labelSkip <= 0 || i%labelSkip == 0
}

// TickLabels returns the label drawn under each bar; hidden ones are empty
func TickLabels(entries []model.Entry, labelSkip int) []string {
	labels := make([]string, len(entries))
	for i, e := range entries {
		if LabelVisible(i, labelSkip) {
			labels[i] = e.Key
		}
	}
	return labels
}

// Save renders entries into path, replacing any previous chart
func Save(r Renderer, path string, spec model.ChartSpec, entries []model.Entry) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create chart directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}

	if err := r.Render(file, spec, finiteEntries(entries)); err != nil {
		file.Close()
		return fmt.Errorf("failed to render chart %s: %w", spec.Title, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to write chart file: %w", err)
	}
	return nil
}

// finiteEntries drops keys whose value is NaN or infinite, which neither
// backend can draw. A sum that overflowed is the only way to get one.
func finiteEntries(entries []model.Entry) []model.Entry {
	out := make([]model.Entry, 0, len(entries))
	for _, e := range entries {
		if math.IsNaN(e.Value) || math.IsInf(e.Value, 0) {
			log.Printf("Skipping non-finite chart value: %s=%v", e.Key, e.Value)
			continue
		}
		out = append(out, e)
	}
	return out
}
