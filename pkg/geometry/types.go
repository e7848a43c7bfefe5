// Package geometry provides the small geometric types shared by the digitizer.
package geometry

import (
	"image"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Point2D is a point in pixel or data space. In pixel space X is the column
// and Y the row, both measured from the top-left corner.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distance returns the Euclidean distance to another point.
func (p Point2D) Distance(other Point2D) float64 {
	return math.Hypot(p.X-other.X, p.Y-other.Y)
}

// PathLength returns the summed segment lengths of a polyline.
func PathLength(points []Point2D) float64 {
	var total float64
	for i := 1; i < len(points); i++ {
		total += points[i].Distance(points[i-1])
	}
	return total
}

// BoundingBox computes the axis-aligned bounding box of a set of points.
func BoundingBox(points []Point2D) Rect {
	if len(points) == 0 {
		return Rect{}
	}
	minX, minY := points[0].X, points[0].Y
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Rect represents a rectangle with floating-point coordinates.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// RectInt represents a rectangle with integer pixel coordinates.
type RectInt struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// FromRectangle converts an image.Rectangle.
func FromRectangle(r image.Rectangle) RectInt {
	return RectInt{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
}

// Rectangle converts to an image.Rectangle.
func (r RectInt) Rectangle() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Empty reports whether the rectangle covers no pixels.
func (r RectInt) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Ratio returns width/height, or 1 for an empty rectangle.
func (r RectInt) Ratio() float64 {
	if r.Empty() {
		return 1.0
	}
	return float64(r.Width) / float64(r.Height)
}

// AffineTransform maps points with x' = A*x + B*y + TX and
// y' = C*x + D*y + TY.
type AffineTransform struct {
	A, B, TX float64
	C, D, TY float64
}

// Translation returns a translation transform.
func Translation(tx, ty float64) AffineTransform {
	return AffineTransform{A: 1, D: 1, TX: tx, TY: ty}
}

// Scale returns a scaling transform.
func Scale(sx, sy float64) AffineTransform {
	return AffineTransform{A: sx, D: sy}
}

// Apply applies the transform to a point.
func (t AffineTransform) Apply(p Point2D) Point2D {
	return Point2D{
		X: t.A*p.X + t.B*p.Y + t.TX,
		Y: t.C*p.X + t.D*p.Y + t.TY,
	}
}

// Compose returns t after other: the result applies other first.
func (t AffineTransform) Compose(other AffineTransform) AffineTransform {
	var m mat.Dense
	m.Mul(t.homogeneous(), other.homogeneous())
	return fromHomogeneous(&m)
}

// Inverse returns the inverse transform. The second result is false when the
// linear part is singular.
func (t AffineTransform) Inverse() (AffineTransform, bool) {
	h := t.homogeneous()
	if math.Abs(mat.Det(h)) < 1e-12 {
		return AffineTransform{}, false
	}
	var inv mat.Dense
	if err := inv.Inverse(h); err != nil {
		return AffineTransform{}, false
	}
	return fromHomogeneous(&inv), true
}

// homogeneous returns the 3x3 matrix acting on (x, y, 1) column vectors.
func (t AffineTransform) homogeneous() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		t.A, t.B, t.TX,
		t.C, t.D, t.TY,
		0, 0, 1,
	})
}

func fromHomogeneous(m mat.Matrix) AffineTransform {
	return AffineTransform{
		A: m.At(0, 0), B: m.At(0, 1), TX: m.At(0, 2),
		C: m.At(1, 0), D: m.At(1, 1), TY: m.At(1, 2),
	}
}
