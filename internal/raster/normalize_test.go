package raster

import (
	"errors"
	"math"
	"testing"

	"pictograph/internal/fault"
)

func bufferOf(w, h, channels int, float bool, px ...float64) *Buffer {
	b := NewBuffer(w, h, channels, float)
	for i := range b.Samples {
		b.Samples[i] = px[i%len(px)]
	}
	return b
}

func TestToRGB(t *testing.T) {
	cases := []struct {
		name string
		buf  *Buffer
		want [3]uint8
	}{
		{"opaque 8-bit", bufferOf(2, 2, 3, false, 200, 100, 50), [3]uint8{200, 100, 50}},
		{"alpha premultiplied", bufferOf(2, 2, 4, false, 200, 100, 50, 128), [3]uint8{100, 50, 25}},
		{"full alpha", bufferOf(2, 2, 4, false, 10, 20, 30, 255), [3]uint8{10, 20, 30}},
		{"unit float", bufferOf(2, 2, 3, true, 0.5, 1, 0), [3]uint8{127, 255, 0}},
		{"float alpha", bufferOf(2, 2, 4, true, 1, 1, 1, 0.5), [3]uint8{127, 127, 127}},
		{"float above unit kept", bufferOf(2, 2, 3, true, 200.7, 3.2, 0), [3]uint8{200, 3, 0}},
		{"float clamped", bufferOf(2, 2, 3, true, 300, -4, 12), [3]uint8{255, 0, 12}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			out, err := ToRGB(c.buf, nil)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if len(out.Pix) != c.buf.Width*c.buf.Height*3 {
				t.Fatalf("Expected %d samples, got %d", c.buf.Width*c.buf.Height*3, len(out.Pix))
			}
			r, g, b := out.At(1, 1)
			if [3]uint8{r, g, b} != c.want {
				t.Errorf("Expected %v, got %v", c.want, [3]uint8{r, g, b})
			}
		})
	}
}

func TestNormalizeRejectsFewChannels(t *testing.T) {
	for _, ch := range []int{1, 2, 5} {
		_, err := Normalize(bufferOf(4, 4, ch, false, 10), nil)
		if !errors.Is(err, fault.ErrInvalidImage) {
			t.Errorf("Expected invalid image for %d channels, got %v", ch, err)
		}
	}
	if _, err := Normalize(NewBuffer(0, 0, 3, false), nil); !errors.Is(err, fault.ErrInvalidImage) {
		t.Errorf("Expected invalid image for empty buffer, got %v", err)
	}
}

func TestStretchIdempotentOnFullRange(t *testing.T) {
	m := NewRGB(10, 10)
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			if (x+y)%2 == 0 {
				m.Set(x, y, 255, 255, 255)
			}
		}
	}
	if lo, hi := Percentile(m, 2), Percentile(m, 98); lo != 0 || hi != 255 {
		t.Fatalf("Expected percentiles 0 and 255, got %v and %v", lo, hi)
	}
	once := Stretch(m)
	if !once.Equal(m) {
		t.Errorf("Expected stretch to leave a full-range image unchanged")
	}
	if !Stretch(once).Equal(once) {
		t.Errorf("Expected stretch to be idempotent")
	}
}

func TestStretchExpandsLowContrast(t *testing.T) {
	m := NewRGB(51, 4)
	for y := 0; y < 4; y++ {
		for x := 0; x < 51; x++ {
			v := uint8(100 + x)
			m.Set(x, y, v, v, v)
		}
	}
	out := Stretch(m)
	hist := Histogram(out)
	if hist[0] == 0 || hist[255] == 0 {
		t.Errorf("Expected stretched image to reach 0 and 255, got %d zeros and %d saturated", hist[0], hist[255])
	}
	if &out.Pix[0] == &m.Pix[0] {
		t.Errorf("Expected a new raster, not the input")
	}
}

func TestStretchUniformUnchanged(t *testing.T) {
	m := NewRGB(5, 5)
	for i := range m.Pix {
		m.Pix[i] = 77
	}
	out := Stretch(m)
	if !out.Equal(m) {
		t.Errorf("Expected uniform image to be unchanged")
	}
}

func TestPercentile(t *testing.T) {
	var hist [256]int
	for v := 0; v < 10; v++ {
		hist[v] = 1
	}
	cases := []struct {
		p    float64
		want float64
	}{
		{0, 0},
		{50, 4.5},
		{100, 9},
		{2, 0.18},
	}
	for _, c := range cases {
		got := PercentileFromHistogram(hist, c.p)
		if math.Abs(got-c.want) > 1e-9 {
			t.Errorf("Percentile %v: expected %v, got %v", c.p, c.want, got)
		}
	}
}

func TestNormalizeFullPipeline(t *testing.T) {
	buf := NewBuffer(20, 10, 4, false)
	for y := 0; y < 10; y++ {
		for x := 0; x < 20; x++ {
			v := float64(60 + 5*x)
			buf.Set(x, y, 0, v)
			buf.Set(x, y, 1, v)
			buf.Set(x, y, 2, v)
			buf.Set(x, y, 3, 255)
		}
	}
	out, err := Normalize(buf, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if out.Width != 20 || out.Height != 10 || len(out.Pix) != 600 {
		t.Fatalf("Unexpected output shape %dx%d with %d samples", out.Width, out.Height, len(out.Pix))
	}
	if r, _, _ := out.At(0, 0); r != 0 {
		t.Errorf("Expected darkest column to map to 0, got %d", r)
	}
	if r, _, _ := out.At(19, 0); r != 255 {
		t.Errorf("Expected brightest column to map to 255, got %d", r)
	}
}
