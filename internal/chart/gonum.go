package chart

import (
	"energy-pipeline/internal/model"
	"image/color"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// pixelDPI makes one point one pixel, so canvas sizes are exact
const pixelDPI = 72

// GonumRenderer draws charts with gonum/plot
type GonumRenderer struct{}

func (GonumRenderer) Name() string { return "gonum" }

func (GonumRenderer) Render(w io.Writer, spec model.ChartSpec, entries []model.Entry) error {
	p, err := newBarPlot(spec, entries)
	if err != nil {
		return err
	}

	width, height := Size(spec.LabelSkip)
	canvas := vgimg.NewWith(
		vgimg.UseWH(vg.Length(width), vg.Length(height)),
		vgimg.UseDPI(pixelDPI),
		vgimg.UseBackgroundColor(color.White),
	)
	p.Draw(draw.New(canvas))

	_, err = vgimg.PngCanvas{Canvas: canvas}.WriteTo(w)
	return err
}

// newBarPlot builds the plot without drawing it
func newBarPlot(spec model.ChartSpec, entries []model.Entry) (*plot.Plot, error) {
	p := plot.New()

	p.Title.Text = spec.Title
	p.X.Label.Text = spec.XLabel
	p.Y.Label.Text = spec.YLabel
	p.BackgroundColor = color.White

	grid := plotter.NewGrid()
	grid.Vertical.Color = nil
	grid.Horizontal.Color = GridColor
	p.Add(grid)

	if len(entries) > 0 {
		values := make(plotter.Values, len(entries))
		for i, e := range entries {
			values[i] = e.Value
		}

		barWidth := barWidthFor(spec.LabelSkip, len(entries))
		bars, err := plotter.NewBarChart(values, barWidth)
		if err != nil {
			return nil, err
		}
		bars.Color = BarColor
		bars.LineStyle.Width = 0
		p.Add(bars)
		p.Legend.Add(spec.YLabel, bars)
		p.Legend.Top = true

		p.NominalX(TickLabels(entries, spec.LabelSkip)...)
	}

	p.X.Tick.Label.Font.Size = vg.Points(TickFontSize)
	p.X.Tick.Label.Rotation = LabelRotationDegrees * math.Pi / 180
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
	p.Y.Tick.Label.Font.Size = vg.Points(TickFontSize)

	return p, nil
}

// barWidthFor spreads bars over the plotting width with a small gap
func barWidthFor(labelSkip, n int) vg.Length {
	width, _ := Size(labelSkip)
	usable := float64(width) * 0.8
	w := usable / float64(n) * 0.8
	if w < 1 {
		w = 1
	}
	if w > 60 {
		w = 60
	}
	return vg.Length(w)
}
