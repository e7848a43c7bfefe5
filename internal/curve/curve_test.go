package curve

import (
	"errors"
	"math"
	"testing"

	"pictograph/internal/fault"
	"pictograph/internal/raster"
	"pictograph/pkg/geometry"
)

// diagonalImage draws a three-pixel-thick white band from the top-left to the
// bottom-right corner of a black 100x50 raster.
func diagonalImage() *raster.RGB {
	img := raster.NewRGB(100, 50)
	for c := 0; c < 100; c++ {
		center := c * 49 / 99
		for r := center - 1; r <= center+1; r++ {
			if r >= 0 && r < 50 {
				img.Set(c, r, 255, 255, 255)
			}
		}
	}
	return img
}

func maskFrom(rows ...string) *Mask {
	m := NewMask(len(rows[0]), len(rows))
	for y, row := range rows {
		for x, ch := range row {
			m.Set(x, y, ch == '#')
		}
	}
	return m
}

func TestOtsu(t *testing.T) {
	cases := []struct {
		name string
		gray []uint8
		want uint8
	}{
		{"two levels", []uint8{0, 0, 0, 255, 255}, 0},
		{"uniform", []uint8{77, 77, 77}, 77},
		{"bimodal", []uint8{10, 12, 11, 200, 210, 205}, 12},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Otsu(c.gray); got != c.want {
				t.Errorf("Expected %d, got %d", c.want, got)
			}
		})
	}
}

func TestBinarizePolarity(t *testing.T) {
	gray := []uint8{10, 200}
	bright := Binarize(gray, 2, 1, 100, Bright)
	dark := Binarize(gray, 2, 1, 100, Dark)
	if bright.At(0, 0) || !bright.At(1, 0) {
		t.Errorf("Expected bright polarity to keep the bright pixel, got %v", bright.Bits)
	}
	if !dark.At(0, 0) || dark.At(1, 0) {
		t.Errorf("Expected dark polarity to keep the dark pixel, got %v", dark.Bits)
	}
	if _, err := ParsePolarity("sideways"); err == nil {
		t.Errorf("Expected error for unknown polarity")
	}
}

func TestRemoveSmallObjects(t *testing.T) {
	m := maskFrom(
		"###.......",
		"###.......",
		"###..#####",
		".....#####",
		"#....#####",
		".#...#####",
		"..#..#####",
	)
	out := RemoveSmallObjects(m, 20)
	if out.Count() != 25 {
		t.Errorf("Expected only the 25-pixel block to survive, got %d pixels", out.Count())
	}
	if out.At(0, 0) || !out.At(5, 2) {
		t.Errorf("Expected small block removed and large block kept")
	}

	_, sizes := m.Components()
	if len(sizes) != 5 {
		t.Errorf("Expected 5 four-connected components, got %d (%v)", len(sizes), sizes)
	}
}

func TestFindContoursClosedSquare(t *testing.T) {
	m := maskFrom(
		".......",
		".......",
		"..###..",
		"..###..",
		"..###..",
		".......",
		".......",
	)
	contours := FindContours(m)
	if len(contours) != 1 {
		t.Fatalf("Expected 1 contour, got %d", len(contours))
	}
	c := contours[0]
	if !c.Closed() {
		t.Errorf("Expected a closed contour, got %v", c)
	}
	if len(c) != 13 {
		t.Errorf("Expected 12 distinct points plus the repeated start, got %d", len(c))
	}
	bb := geometry.BoundingBox(c)
	if bb.X != 1.5 || bb.Y != 1.5 || bb.Width != 3 || bb.Height != 3 {
		t.Errorf("Expected outline at half-pixel offsets, got %+v", bb)
	}
}

func TestFindContoursSaddle(t *testing.T) {
	m := maskFrom(
		"....",
		".#..",
		"..#.",
		"....",
	)
	contours := FindContours(m)
	if len(contours) != 2 {
		t.Fatalf("Expected diagonal pixels to stay separate, got %d contours", len(contours))
	}
	for _, c := range contours {
		if !c.Closed() || len(c) != 5 {
			t.Errorf("Expected closed 4-point diamond, got %v", c)
		}
	}
}

func TestFindContoursOpenAtBorder(t *testing.T) {
	m := maskFrom(
		"##...",
		"##...",
		"##...",
		"##...",
		"##...",
	)
	contours := FindContours(m)
	if len(contours) != 1 {
		t.Fatalf("Expected 1 contour, got %d", len(contours))
	}
	c := contours[0]
	if c.Closed() {
		t.Errorf("Expected an open contour at the border")
	}
	if len(c) != 5 {
		t.Errorf("Expected 5 points, got %d", len(c))
	}
	for _, p := range c {
		if p.X != 1.5 {
			t.Errorf("Expected all points on column 1.5, got %v", p)
		}
	}
}

func TestCollapseCenterLine(t *testing.T) {
	contours := []Contour{
		{{X: 0.5, Y: 2}, {X: 1.5, Y: 4}, {X: 2.5, Y: 6}},
		{{X: 0.2, Y: 4}, {X: 7, Y: 1}},
	}
	line := CollapseCenterLine(contours)
	want := CenterLine{{Row: 3, Col: 0}, {Row: 5, Col: 2}, {Row: 1, Col: 7}}
	if len(line) != len(want) {
		t.Fatalf("Expected %v, got %v", want, line)
	}
	for i := range want {
		if line[i] != want[i] {
			t.Errorf("Point %d: expected %v, got %v", i, want[i], line[i])
		}
	}
	if len(CollapseCenterLine(nil)) != 0 {
		t.Errorf("Expected empty centerline for no contours")
	}
}

func TestExtractDiagonal(t *testing.T) {
	res, err := Extract(diagonalImage(), DefaultOptions())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	line := res.CenterLine
	if len(line) < 40 || len(line) > 110 {
		t.Fatalf("Expected a centerline spanning most columns, got %d points", len(line))
	}
	for i, p := range line {
		expected := float64(p.Col) * 49 / 99
		if math.Abs(p.Row-expected) > 3 {
			t.Errorf("Column %d: expected row near %.1f, got %.2f", p.Col, expected, p.Row)
		}
		if i > 0 {
			if p.Col <= line[i-1].Col {
				t.Errorf("Expected strictly increasing columns, got %d after %d", p.Col, line[i-1].Col)
			}
			if p.Row < line[i-1].Row-1 {
				t.Errorf("Expected rows to follow the diagonal, got %.2f after %.2f", p.Row, line[i-1].Row)
			}
		}
	}
	if res.Image == nil || res.Image.Width != 100 {
		t.Errorf("Expected the input raster to be returned")
	}
}

func TestExtractNoCurve(t *testing.T) {
	cases := []struct {
		name string
		fill uint8
	}{
		{"black", 0},
		{"white", 255},
		{"gray", 128},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			img := raster.NewRGB(30, 20)
			for i := range img.Pix {
				img.Pix[i] = c.fill
			}
			_, err := Extract(img, DefaultOptions())
			if !errors.Is(err, fault.ErrNoCurveFound) {
				t.Errorf("Expected no curve found, got %v", err)
			}
		})
	}
}

func TestExtractIgnoresSpeckle(t *testing.T) {
	img := diagonalImage()
	// isolated dots far from the band
	for _, p := range [][2]int{{80, 5}, {90, 10}, {10, 40}} {
		img.Set(p[0], p[1], 255, 255, 255)
	}
	res, err := Extract(img, DefaultOptions())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if res.Mask.At(80, 5) || res.Mask.At(10, 40) {
		t.Errorf("Expected isolated dots to be removed")
	}
}

// thinDiagonal draws a one-pixel line in fg from the top-left to the
// bottom-right corner of a 100x50 raster filled with bg.
func thinDiagonal(bg, fg uint8) *raster.RGB {
	img := raster.NewRGB(100, 50)
	for i := range img.Pix {
		img.Pix[i] = bg
	}
	for c := 0; c < 100; c++ {
		img.Set(c, c*49/99, fg, fg, fg)
	}
	return img
}

func TestExtractThinBrightLine(t *testing.T) {
	// a one-pixel diagonal only touches itself at corners, so its 4-connected
	// pieces all fall under the minimum object size
	_, err := Extract(thinDiagonal(0, 255), DefaultOptions())
	if !errors.Is(err, fault.ErrNoCurveFound) {
		t.Errorf("Expected no curve found, got %v", err)
	}
}

func TestExtractThinDarkLine(t *testing.T) {
	res, err := Extract(thinDiagonal(255, 0), DefaultOptions())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	line := res.CenterLine
	if len(line) < 90 {
		t.Fatalf("Expected about 99 columns, got %d points", len(line))
	}
	if line[0].Col != 0 || line[len(line)-1].Col != 98 {
		t.Errorf("Expected columns 0..98, got %d..%d", line[0].Col, line[len(line)-1].Col)
	}
	for i, p := range line {
		expected := float64(p.Col * 49 / 99)
		if math.Abs(p.Row-expected) > 2 {
			t.Errorf("Column %d: expected row near %.1f, got %.2f", p.Col, expected, p.Row)
		}
		if i > 0 && p.Col <= line[i-1].Col {
			t.Errorf("Expected strictly increasing columns, got %d after %d", p.Col, line[i-1].Col)
		}
	}
}
