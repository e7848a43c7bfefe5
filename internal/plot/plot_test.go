package plot

import (
	"bytes"
	"errors"
	"image"
	_ "image/png"
	"math"
	"testing"

	"pictograph/internal/calibrate"
	"pictograph/internal/curve"
	"pictograph/internal/fault"
)

func sineSeries(n int) calibrate.Series {
	s := calibrate.Series{X: make([]float64, n), Y: make([]float64, n)}
	for i := 0; i < n; i++ {
		s.X[i] = float64(i) * 10
		s.Y[i] = 500 + 400*math.Sin(float64(i)/8)
	}
	return s
}

func decodeSize(t *testing.T, data []byte) image.Point {
	t.Helper()
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Failed to decode chart: %v", err)
	}
	if format != "png" {
		t.Fatalf("Expected png, got %s", format)
	}
	return image.Pt(cfg.Width, cfg.Height)
}

func TestSeriesOptions(t *testing.T) {
	cases := []struct {
		name          string
		width, height int
		want          image.Point
	}{
		{"landscape", 400, 200, image.Pt(1000, 500)},
		{"portrait", 100, 150, image.Pt(1000, 1500)},
		{"flat", 1000, 10, image.Pt(1000, MinHeight)},
		{"tall", 20, 3000, image.Pt(1000, MaxHeight)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			o, err := SeriesOptions(c.width, c.height, 10, 100)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if o.Width != c.want.X || o.Height != c.want.Y {
				t.Errorf("Expected %v, got %dx%d", c.want, o.Width, o.Height)
			}
		})
	}
	if _, err := SeriesOptions(0, 10, 10, 100); !errors.Is(err, fault.ErrInvalidImage) {
		t.Errorf("Expected invalid image for zero width, got %v", err)
	}
}

func TestRenderCharts(t *testing.T) {
	s := sineSeries(120)

	var buf bytes.Buffer
	opts, _ := SeriesOptions(400, 200, 10, 100)
	if err := Series(&buf, s, opts); err != nil {
		t.Fatalf("Failed to render series: %v", err)
	}
	if got := decodeSize(t, buf.Bytes()); got != image.Pt(1000, 500) {
		t.Errorf("Expected 1000x500 series chart, got %v", got)
	}

	buf.Reset()
	if err := Peaks(&buf, s, []int{12, 62}, PeaksOptions()); err != nil {
		t.Fatalf("Failed to render peaks: %v", err)
	}
	if got := decodeSize(t, buf.Bytes()); got != image.Pt(PeaksWidth, PeaksHeight) {
		t.Errorf("Expected %dx%d peak chart, got %v", PeaksWidth, PeaksHeight, got)
	}

	buf.Reset()
	if err := Peaks(&buf, s, nil, Options{}); err != nil {
		t.Fatalf("Failed to render a peak chart without peaks: %v", err)
	}

	buf.Reset()
	c := curve.Contour{{X: 1, Y: 1}, {X: 20, Y: 5}, {X: 40, Y: 30}}
	if err := Contour(&buf, c, 50, 40, Options{Title: "contour", Width: 500, Height: 400}); err != nil {
		t.Fatalf("Failed to render contour: %v", err)
	}
	if got := decodeSize(t, buf.Bytes()); got != image.Pt(500, 400) {
		t.Errorf("Expected 500x400 contour chart, got %v", got)
	}
}

func TestRenderTallCrop(t *testing.T) {
	opts, err := SeriesOptions(20, 3000, 10, 100)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	s := calibrate.Series{X: []float64{0, 1, 2}, Y: []float64{0, 3000, 1500}}
	var buf bytes.Buffer
	if err := Series(&buf, s, opts); err != nil {
		t.Fatalf("Failed to render series: %v", err)
	}
	if got := decodeSize(t, buf.Bytes()); got != image.Pt(1000, MaxHeight) {
		t.Errorf("Expected a 1000x%d chart, got %v", MaxHeight, got)
	}
}

func TestRenderFlatSeries(t *testing.T) {
	s := calibrate.Series{X: []float64{1, 2, 3}, Y: []float64{5, 5, 5}}
	var buf bytes.Buffer
	if err := Series(&buf, s, Options{Width: 600, Height: 300}); err != nil {
		t.Errorf("Expected a flat series to render, got %v", err)
	}
}

func TestRenderErrors(t *testing.T) {
	var buf bytes.Buffer
	if err := Series(&buf, calibrate.Series{}, Options{Width: 10, Height: 10}); !errors.Is(err, fault.ErrInvalidParameter) {
		t.Errorf("Expected invalid parameter for an empty series, got %v", err)
	}
	if err := Peaks(&buf, sineSeries(5), []int{9}, PeaksOptions()); !errors.Is(err, fault.ErrInvalidParameter) {
		t.Errorf("Expected invalid parameter for an out-of-range peak, got %v", err)
	}
	if err := Contour(&buf, nil, 10, 10, Options{Width: 10, Height: 10}); !errors.Is(err, fault.ErrInvalidParameter) {
		t.Errorf("Expected invalid parameter for an empty contour, got %v", err)
	}
}
