package geometry

import (
	"image"
	"math"
	"testing"
)

func TestAffineRoundTrip(t *testing.T) {
	tr := Translation(10, 50).Compose(Scale(0.5, -2))
	inv, ok := tr.Inverse()
	if !ok {
		t.Fatalf("Expected transform to be invertible")
	}

	pts := []Point2D{{0, 0}, {3, 4}, {-7.5, 12.25}}
	for _, p := range pts {
		q := inv.Apply(tr.Apply(p))
		if p.Distance(q) > 1e-9 {
			t.Errorf("Expected %v after round trip, got %v", p, q)
		}
	}

	got := tr.Apply(Point2D{X: 4, Y: 1})
	if got.X != 12 || got.Y != 48 {
		t.Errorf("Expected (12, 48), got %v", got)
	}

	if _, ok := Scale(0, 1).Inverse(); ok {
		t.Errorf("Expected degenerate scale to have no inverse")
	}
}

func TestPathLengthAndBounds(t *testing.T) {
	pts := []Point2D{{0, 0}, {3, 4}, {3, 10}}
	if l := PathLength(pts); math.Abs(l-11) > 1e-12 {
		t.Errorf("Expected length 11, got %v", l)
	}
	if l := PathLength(pts[:1]); l != 0 {
		t.Errorf("Expected zero length for a single point, got %v", l)
	}
	bb := BoundingBox(pts)
	if bb.X != 0 || bb.Y != 0 || bb.Width != 3 || bb.Height != 10 {
		t.Errorf("Unexpected bounding box %+v", bb)
	}
}

func TestRectInt(t *testing.T) {
	r := FromRectangle(image.Rect(2, 3, 12, 8))
	if r.Width != 10 || r.Height != 5 {
		t.Fatalf("Expected 10x5, got %dx%d", r.Width, r.Height)
	}
	if r.Rectangle() != image.Rect(2, 3, 12, 8) {
		t.Errorf("Expected round trip to image.Rectangle, got %v", r.Rectangle())
	}
	if r.Ratio() != 2 {
		t.Errorf("Expected ratio 2, got %v", r.Ratio())
	}
	if (RectInt{}).Ratio() != 1 || !(RectInt{}).Empty() {
		t.Errorf("Expected empty rectangle with ratio 1")
	}
}
