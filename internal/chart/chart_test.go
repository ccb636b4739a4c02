package chart

import (
	"bytes"
	"energy-pipeline/internal/model"
	"fmt"
	"image/png"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func categories(n int) []model.Entry {
	entries := make([]model.Entry, n)
	for i := range entries {
		entries[i] = model.Entry{Key: fmt.Sprintf("Community %02d", i), Value: float64(i + 1)}
	}
	return entries
}

func TestTickLabelsSkip(t *testing.T) {
	labels := TickLabels(categories(23), 5)

	visible := []int{}
	for i, l := range labels {
		if l != "" {
			visible = append(visible, i)
		}
	}
	want := []int{0, 5, 10, 15, 20}
	if fmt.Sprint(visible) != fmt.Sprint(want) {
		t.Fatalf("visible labels at %v, want %v", visible, want)
	}
	if labels[10] != "Community 10" {
		t.Errorf("label 10: got %q", labels[10])
	}
}

func TestTickLabelsNoSkip(t *testing.T) {
	for i, l := range TickLabels(categories(7), 0) {
		if l == "" {
			t.Errorf("label %d hidden with skip 0", i)
		}
	}
}

func TestSize(t *testing.T) {
	if w, h := Size(0); w != 800 || h != 600 {
		t.Errorf("Size(0) = %dx%d", w, h)
	}
	if w, h := Size(5); w != 1200 || h != 600 {
		t.Errorf("Size(5) = %dx%d", w, h)
	}
}

func TestNew(t *testing.T) {
	for name, want := range map[string]string{"": "gonum", "gonum": "gonum", "gochart": "gochart", "Go-Chart": "gochart"} {
		r, err := New(name)
		if err != nil {
			t.Fatalf("New(%q): %v", name, err)
		}
		if r.Name() != want {
			t.Errorf("New(%q) = %s, want %s", name, r.Name(), want)
		}
	}
	if _, err := New("svg"); err == nil {
		t.Error("expected error for unknown renderer")
	}
}

func TestRenderersProducePNG(t *testing.T) {
	tests := []struct {
		renderer Renderer
		skip     int
		entries  []model.Entry
	}{
		{GonumRenderer{}, 0, categories(4)},
		{GonumRenderer{}, 5, categories(23)},
		{GonumRenderer{}, 5, nil},
		{GoChartRenderer{}, 0, categories(4)},
		{GoChartRenderer{}, 5, categories(23)},
		{GoChartRenderer{}, 0, []model.Entry{{Key: "Only", Value: 0}}},
		{GoChartRenderer{}, 5, nil},
	}

	for _, tt := range tests {
		name := fmt.Sprintf("%s/skip%d/%d", tt.renderer.Name(), tt.skip, len(tt.entries))
		t.Run(name, func(t *testing.T) {
			spec := model.ChartSpec{Title: "Therms", XLabel: "Community", YLabel: "Therms per Person", LabelSkip: tt.skip}
			var buf bytes.Buffer
			if err := tt.renderer.Render(&buf, spec, tt.entries); err != nil {
				t.Fatalf("Render: %v", err)
			}
			cfg, err := png.DecodeConfig(&buf)
			if err != nil {
				t.Fatalf("not a PNG: %v", err)
			}
			w, h := Size(tt.skip)
			if cfg.Width != w || cfg.Height != h {
				t.Errorf("got %dx%d, want %dx%d", cfg.Width, cfg.Height, w, h)
			}
		})
	}
}

func TestSaveReplacesChart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "charts", "JOB1_CHART.png")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("stale"), 0644); err != nil {
		t.Fatal(err)
	}

	spec := model.ChartSpec{Title: "kWh", XLabel: "Building Type", YLabel: "Avg KWH", FileName: "JOB1_CHART.png"}
	if err := Save(GonumRenderer{}, path, spec, categories(3)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := png.DecodeConfig(f); err != nil {
		t.Errorf("saved chart is not a PNG: %v", err)
	}
}

func TestSaveSkipsNonFiniteValues(t *testing.T) {
	var logs bytes.Buffer
	log.SetOutput(&logs)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	entries := []model.Entry{
		{Key: "Loop", Value: 3},
		{Key: "Overflow", Value: math.Inf(1)},
		{Key: "Broken", Value: math.NaN()},
	}
	spec := model.ChartSpec{Title: "Therms", XLabel: "Community", YLabel: "Therms per Person"}
	for _, r := range []Renderer{GonumRenderer{}, GoChartRenderer{}} {
		path := filepath.Join(t.TempDir(), r.Name()+".png")
		if err := Save(r, path, spec, entries); err != nil {
			t.Fatalf("%s: Save: %v", r.Name(), err)
		}
	}
	if !strings.Contains(logs.String(), "Overflow") || !strings.Contains(logs.String(), "Broken") {
		t.Errorf("dropped values not logged: %q", logs.String())
	}
}

func TestGoChartEmptyFallbackIsLogged(t *testing.T) {
	var logs bytes.Buffer
	log.SetOutput(&logs)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	var buf bytes.Buffer
	spec := model.ChartSpec{Title: "Empty Report"}
	if err := (GoChartRenderer{}).Render(&buf, spec, nil); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(logs.String(), "rendering it with gonum") {
		t.Errorf("fallback not logged: %q", logs.String())
	}
}
