// Package calibrate maps centerline pixel coordinates onto the chart's data axes.
package calibrate

import (
	"math"
	"strconv"
	"strings"

	"pictograph/internal/curve"
	"pictograph/internal/fault"
	"pictograph/pkg/geometry"
)

// Bounds are the data values at the edges of the cropped chart. XMin sits at
// the left edge, XMax at the right, YMax at the top and YMin at the bottom.
// Inverted axes are allowed.
type Bounds struct {
	XMin float64 `yaml:"xMin"`
	XMax float64 `yaml:"xMax"`
	YMin float64 `yaml:"yMin"`
	YMax float64 `yaml:"yMax"`
}

// Validate rejects non-finite bounds.
func (b Bounds) Validate() error {
	for _, v := range []float64{b.XMin, b.XMax, b.YMin, b.YMax} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fault.New(fault.StageCalibrate, fault.ErrInvalidParameter, "calibration bounds must be finite, got %+v", b)
		}
	}
	return nil
}

// ParseBounds reads the four bounds from text fields.
func ParseBounds(xMin, xMax, yMin, yMax string) (Bounds, error) {
	var vals [4]float64
	for i, s := range []string{xMin, xMax, yMin, yMax} {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return Bounds{}, fault.New(fault.StageCalibrate, fault.ErrInvalidParameter, "bad calibration value %q", s)
		}
		vals[i] = v
	}
	b := Bounds{XMin: vals[0], XMax: vals[1], YMin: vals[2], YMax: vals[3]}
	return b, b.Validate()
}

// Series is a digitized curve in data coordinates.
type Series struct {
	X []float64
	Y []float64
}

// Len returns the number of points.
func (s Series) Len() int {
	return len(s.X)
}

// Transform returns the pixel-to-data affine map for an image of the given size.
func Transform(b Bounds, width, height int) (geometry.AffineTransform, error) {
	if width <= 0 || height <= 0 {
		return geometry.AffineTransform{}, fault.New(fault.StageCalibrate, fault.ErrInvalidImage, "image size %dx%d", width, height)
	}
	if err := b.Validate(); err != nil {
		return geometry.AffineTransform{}, err
	}
	sx := (b.XMax - b.XMin) / float64(width)
	sy := (b.YMax - b.YMin) / float64(height)
	return geometry.Translation(b.XMin, b.YMax).Compose(geometry.Scale(sx, -sy)), nil
}

// Map converts every centerline point to data coordinates.
func Map(line curve.CenterLine, b Bounds, width, height int) (Series, error) {
	t, err := Transform(b, width, height)
	if err != nil {
		return Series{}, err
	}

	s := Series{X: make([]float64, len(line)), Y: make([]float64, len(line))}
	for i, p := range line {
		d := t.Apply(geometry.Point2D{X: float64(p.Col), Y: p.Row})
		s.X[i], s.Y[i] = d.X, d.Y
	}
	return s, nil
}

// ToPixel converts a data point back to pixel coordinates. It fails when an
// axis has zero span.
func ToPixel(p geometry.Point2D, b Bounds, width, height int) (geometry.Point2D, error) {
	t, err := Transform(b, width, height)
	if err != nil {
		return geometry.Point2D{}, err
	}
	inv, ok := t.Inverse()
	if !ok {
		return geometry.Point2D{}, fault.New(fault.StageCalibrate, fault.ErrInvalidParameter, "degenerate bounds %+v", b)
	}
	return inv.Apply(p), nil
}

// AspectRatio returns height/width.
func AspectRatio(width, height int) (float64, error) {
	if width <= 0 {
		return 0, fault.New(fault.StageCalibrate, fault.ErrInvalidImage, "image width %d", width)
	}
	return float64(height) / float64(width), nil
}

// FigureSize returns a figure size whose width is base and whose height
// follows the image aspect ratio.
func FigureSize(width, height int, base float64) (float64, float64, error) {
	aspect, err := AspectRatio(width, height)
	if err != nil {
		return 0, 0, err
	}
	return base, base * aspect, nil
}
