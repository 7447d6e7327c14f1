package chart

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/dustin/go-humanize"
	"github.com/lintang-b-s/BuildingEnergy/pkg/util"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const (
	DEFAULT_DPI  = 300
	DEFAULT_BINS = 40
)

var ErrNoData = errors.New("nothing to plot")

// Options. figure size in inches and raster resolution.
type Options struct {
	WidthInch  float64
	HeightInch float64
	DPI        int
}

func (o Options) withDefaults(width, height float64) Options {
	if o.WidthInch <= 0 {
		o.WidthInch = width
	}
	if o.HeightInch <= 0 {
		o.HeightInch = height
	}
	if o.DPI <= 0 {
		o.DPI = DEFAULT_DPI
	}
	return o
}

type HistogramPanel struct {
	Title  string
	XLabel string
	Values []float64
	Bins   int
}

// WriteBarChart. ranked bars with the value printed above each bar and rotated category labels.
func WriteBarChart(w io.Writer, title string, labels []string, values []float64, opts Options) error {
	if len(values) == 0 {
		return ErrNoData
	}
	if len(labels) != len(values) {
		return fmt.Errorf("got %d labels for %d values", len(labels), len(values))
	}
	opts = opts.withDefaults(10, 6)

	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = "Count"
	p.Y.Min = 0

	bars, err := plotter.NewBarChart(plotter.Values(values), vg.Points(20))
	if err != nil {
		return fmt.Errorf("bar chart: %w", err)
	}
	bars.LineStyle.Width = vg.Length(0)
	bars.Color = plotter.DefaultLineStyle.Color
	p.Add(bars)
	p.NominalX(labels...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = text.XRight
	p.X.Tick.Label.YAlign = text.YCenter

	xys := make(plotter.XYs, len(values))
	annotations := make([]string, len(values))
	maxValue := 0.0
	for i, v := range values {
		xys[i] = plotter.XY{X: float64(i), Y: v}
		annotations[i] = humanize.Commaf(v)
		maxValue = math.Max(maxValue, v)
	}
	labelsPlot, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: annotations})
	if err != nil {
		return fmt.Errorf("bar labels: %w", err)
	}
	for i := range labelsPlot.TextStyle {
		labelsPlot.TextStyle[i].XAlign = text.XCenter
	}
	labelsPlot.Offset = vg.Point{Y: vg.Points(3)}
	p.Add(labelsPlot)
	// headroom for the annotations
	p.Y.Max = maxValue * 1.1

	return writePNG(w, opts, func(dc draw.Canvas) {
		p.Draw(dc)
	})
}

// WriteHistograms. one histogram per panel, stacked vertically in a single figure.
func WriteHistograms(w io.Writer, panels []HistogramPanel, opts Options) error {
	if len(panels) == 0 {
		return ErrNoData
	}
	opts = opts.withDefaults(12, 5*float64(len(panels)))

	plots := make([][]*plot.Plot, len(panels))
	for i, panel := range panels {
		if len(panel.Values) == 0 {
			return fmt.Errorf("%w: panel %q is empty", ErrNoData, panel.Title)
		}
		bins := panel.Bins
		if bins <= 0 {
			bins = DEFAULT_BINS
		}

		p := plot.New()
		p.Title.Text = panel.Title
		p.X.Label.Text = panel.XLabel
		p.Y.Label.Text = "Count"

		h, err := plotter.NewHist(plotter.Values(panel.Values), bins)
		if err != nil {
			return fmt.Errorf("histogram %q: %w", panel.Title, err)
		}
		h.FillColor = plotter.DefaultLineStyle.Color
		p.Add(h)
		plots[i] = []*plot.Plot{p}
	}

	return writePNG(w, opts, func(dc draw.Canvas) {
		tiles := draw.Tiles{
			Rows: len(panels),
			Cols: 1,
			PadY: vg.Millimeter * 5,
		}
		canvases := plot.Align(plots, tiles, dc)
		for i := range plots {
			plots[i][0].Draw(canvases[i][0])
		}
	})
}

// SaveBarChart. WriteBarChart into filename, the file only appears once the image is complete.
func SaveBarChart(filename, title string, labels []string, values []float64, opts Options) error {
	return util.WriteFileAtomic(filename, func(bw *bufio.Writer) error {
		return WriteBarChart(bw, title, labels, values, opts)
	})
}

func SaveHistograms(filename string, panels []HistogramPanel, opts Options) error {
	return util.WriteFileAtomic(filename, func(bw *bufio.Writer) error {
		return WriteHistograms(bw, panels, opts)
	})
}

func writePNG(w io.Writer, opts Options, drawFn func(dc draw.Canvas)) error {
	img := vgimg.NewWith(
		vgimg.UseWH(vg.Length(opts.WidthInch)*vg.Inch, vg.Length(opts.HeightInch)*vg.Inch),
		vgimg.UseDPI(opts.DPI),
	)
	drawFn(draw.New(img))

	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}
