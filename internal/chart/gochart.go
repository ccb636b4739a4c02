package chart

import (
	"energy-pipeline/internal/model"
	"io"
	"log"
	"math"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// GoChartRenderer draws charts with go-chart. go-chart refuses bar charts
// without bars, so empty results are drawn by GonumRenderer instead.
type GoChartRenderer struct{}

func (GoChartRenderer) Name() string { return "gochart" }

func (GoChartRenderer) Render(w io.Writer, spec model.ChartSpec, entries []model.Entry) error {
	if len(entries) == 0 {
		log.Printf("go-chart cannot draw %q without bars, rendering it with gonum", spec.Title)
		return GonumRenderer{}.Render(w, spec, entries)
	}

	barFill := drawing.Color{R: BarColor.R, G: BarColor.G, B: BarColor.B, A: BarColor.A}
	labels := TickLabels(entries, spec.LabelSkip)
	bars := make([]gochart.Value, len(entries))
	for i, e := range entries {
		bars[i] = gochart.Value{
			Label: labels[i],
			Value: e.Value,
			Style: gochart.Style{
				FillColor:   barFill,
				StrokeColor: barFill,
				StrokeWidth: 1,
			},
		}
	}

	width, height := Size(spec.LabelSkip)
	graph := gochart.BarChart{
		Title:  spec.Title,
		Width:  width,
		Height: height,
		Background: gochart.Style{
			FillColor: drawing.ColorWhite,
			Padding: gochart.Box{
				Top:    40,
				Left:   20,
				Right:  20,
				Bottom: 140,
			},
		},
		Canvas: gochart.Style{
			FillColor: drawing.ColorWhite,
		},
		XAxis: gochart.Style{
			FontSize:            TickFontSize,
			TextRotationDegrees: LabelRotationDegrees,
		},
		YAxis: gochart.YAxis{
			Name:  spec.YLabel,
			Range: valueRange(entries),
			Style: gochart.Style{
				FontSize: TickFontSize,
			},
			GridMajorStyle: gochart.Style{
				StrokeColor: drawing.Color{R: GridColor.R, G: GridColor.G, B: GridColor.B, A: GridColor.A},
				StrokeWidth: 1,
			},
		},
		BarWidth:   int(barWidthFor(spec.LabelSkip, len(entries))),
		BarSpacing: 2,
		Bars:       bars,
	}

	return graph.Render(gochart.PNG, w)
}

// valueRange anchors the value axis at zero. go-chart rejects ranges with
// no extent, which a single bar or all-equal values would otherwise give.
func valueRange(entries []model.Entry) *gochart.ContinuousRange {
	lo, hi := 0.0, 0.0
	for _, e := range entries {
		lo = math.Min(lo, e.Value)
		hi = math.Max(hi, e.Value)
	}
	if hi == lo {
		hi = lo + 1
	}
	return &gochart.ContinuousRange{Min: lo, Max: hi}
}
