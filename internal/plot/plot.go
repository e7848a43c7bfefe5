// Package plot renders digitized series, detected peaks and contour
// diagnostics as PNG charts.
package plot

import (
	"fmt"
	"io"

	"pictograph/internal/calibrate"
	"pictograph/internal/curve"
	"pictograph/internal/fault"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"gonum.org/v1/gonum/floats"
)

// Options sets chart labels and pixel size.
type Options struct {
	Title  string
	XLabel string
	YLabel string
	Width  int
	Height int

	HideLabels bool // peak charts only: omit the x=... annotations
}

// Peak charts are rendered at a fixed size.
const (
	PeaksWidth  = 1000
	PeaksHeight = 600
)

// Series chart height limits. MinHeight leaves room for axes and title on
// very flat crops; MaxHeight bounds tall, narrow crops.
const (
	MinHeight = 200
	MaxHeight = 1500
)

// SeriesOptions returns labels for an extracted series with a size that keeps
// the aspect ratio of the cropped image: width is base*pixelsPerUnit. The
// height is kept within MinHeight and MaxHeight.
func SeriesOptions(imgWidth, imgHeight int, base float64, pixelsPerUnit int) (Options, error) {
	w, h, err := calibrate.FigureSize(imgWidth, imgHeight, base)
	if err != nil {
		return Options{}, err
	}
	return Options{
		Title:  "Extracted Spectrum",
		XLabel: "Wavelength (nm)",
		YLabel: "Intensity",
		Width:  int(w * float64(pixelsPerUnit)),
		Height: min(max(int(h*float64(pixelsPerUnit)), MinHeight), MaxHeight),
	}, nil
}

// PeaksOptions returns the labels and fixed size of a peak chart.
func PeaksOptions() Options {
	return Options{
		Title:  "Spectrum with Peaks",
		XLabel: "Wavenumber",
		YLabel: "Intensity",
		Width:  PeaksWidth,
		Height: PeaksHeight,
	}
}

// Series draws the extracted curve.
func Series(w io.Writer, s calibrate.Series, opts Options) error {
	if s.Len() == 0 {
		return fault.New(fault.StagePlot, fault.ErrInvalidParameter, "empty series")
	}
	graph := chart.Chart{
		Title:  opts.Title,
		Width:  opts.Width,
		Height: opts.Height,
		XAxis:  chart.XAxis{Name: opts.XLabel, Range: span(s.X)},
		YAxis:  chart.YAxis{Name: opts.YLabel, Range: span(s.Y)},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Spectrum",
				Style:   chart.Style{StrokeColor: chart.ColorBlue, StrokeWidth: 2},
				XValues: s.X,
				YValues: s.Y,
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return render(&graph, w)
}

// Peaks draws the series with each detected peak marked and labelled with
// its x value.
func Peaks(w io.Writer, s calibrate.Series, peaks []int, opts Options) error {
	if s.Len() == 0 {
		return fault.New(fault.StagePlot, fault.ErrInvalidParameter, "empty series")
	}
	if opts.Width == 0 {
		opts.Width, opts.Height = PeaksWidth, PeaksHeight
	}

	var px, py []float64
	var annotations []chart.Value2
	for _, i := range peaks {
		if i < 0 || i >= s.Len() {
			return fault.New(fault.StagePlot, fault.ErrInvalidParameter, "peak index %d outside series of %d points", i, s.Len())
		}
		px = append(px, s.X[i])
		py = append(py, s.Y[i])
		annotations = append(annotations, chart.Value2{Label: fmt.Sprintf("x=%.2f", s.X[i]), XValue: s.X[i], YValue: s.Y[i]})
	}

	graph := chart.Chart{
		Title:  opts.Title,
		Width:  opts.Width,
		Height: opts.Height,
		XAxis:  chart.XAxis{Name: opts.XLabel, Range: span(s.X)},
		YAxis:  chart.YAxis{Name: opts.YLabel, Range: span(s.Y)},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Spectrum",
				Style:   chart.Style{StrokeColor: chart.ColorBlue},
				XValues: s.X,
				YValues: s.Y,
			},
		},
	}
	if len(peaks) > 0 {
		graph.Series = append(graph.Series,
			chart.ContinuousSeries{
				Name: "Peaks",
				Style: chart.Style{
					StrokeColor: drawing.ColorTransparent,
					DotColor:    chart.ColorRed,
					DotWidth:    5,
				},
				XValues: px,
				YValues: py,
			},
		)
		if !opts.HideLabels {
			graph.Series = append(graph.Series, chart.AnnotationSeries{Annotations: annotations})
		}
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return render(&graph, w)
}

// Contour draws a traced outline in pixel space with the row axis flipped so
// the picture reads the right way up.
func Contour(w io.Writer, c curve.Contour, imgWidth, imgHeight int, opts Options) error {
	if len(c) == 0 {
		return fault.New(fault.StagePlot, fault.ErrInvalidParameter, "empty contour")
	}
	xs := make([]float64, len(c))
	ys := make([]float64, len(c))
	for i, p := range c {
		xs[i] = p.X
		ys[i] = float64(imgHeight) - p.Y
	}

	graph := chart.Chart{
		Title:  opts.Title,
		Width:  opts.Width,
		Height: opts.Height,
		XAxis:  chart.XAxis{Name: "Column (px)", Range: &chart.ContinuousRange{Min: 0, Max: float64(max(imgWidth, 1))}},
		YAxis:  chart.YAxis{Name: "Height (px)", Range: &chart.ContinuousRange{Min: 0, Max: float64(max(imgHeight, 1))}},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Longest contour",
				Style:   chart.Style{StrokeColor: chart.ColorAlternateGray, StrokeWidth: 1},
				XValues: xs,
				YValues: ys,
			},
		},
	}
	return render(&graph, w)
}

func render(graph *chart.Chart, w io.Writer) error {
	if graph.Width <= 0 || graph.Height <= 0 {
		return fault.New(fault.StagePlot, fault.ErrInvalidParameter, "chart size %dx%d", graph.Width, graph.Height)
	}
	if err := graph.Render(chart.PNG, w); err != nil {
		return fault.Wrap(fault.StagePlot, fault.ErrIOFailure, err)
	}
	return nil
}

// span returns an axis range covering v, widened when v has no extent.
func span(v []float64) *chart.ContinuousRange {
	lo, hi := floats.Min(v), floats.Max(v)
	if hi == lo {
		lo, hi = lo-1, hi+1
	}
	return &chart.ContinuousRange{Min: lo, Max: hi}
}
