package raster

import (
	"io"
	"log"
	"math"

	"pictograph/internal/fault"
)

// Default percentiles used for the contrast stretch.
const (
	DefaultLowPercentile  = 2.0
	DefaultHighPercentile = 98.0
)

// StretchOptions selects the percentiles mapped to 0 and 255.
type StretchOptions struct {
	Low  float64
	High float64
}

// DefaultStretch returns the 2nd/98th percentile stretch.
func DefaultStretch() StretchOptions {
	return StretchOptions{Low: DefaultLowPercentile, High: DefaultHighPercentile}
}

// Normalize turns a raw buffer into an 8-bit RGB raster: alpha is
// premultiplied into the color channels and dropped, float samples are scaled
// to 8 bits, and the result is contrast-stretched. A nil logger discards the
// progress messages.
func Normalize(b *Buffer, logger *log.Logger) (*RGB, error) {
	return NormalizeWith(b, DefaultStretch(), logger)
}

// NormalizeWith is Normalize with explicit stretch percentiles.
func NormalizeWith(b *Buffer, opts StretchOptions, logger *log.Logger) (*RGB, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	rgb, err := ToRGB(b, logger)
	if err != nil {
		return nil, err
	}
	if opts.Low < 0 || opts.High > 100 || opts.Low > opts.High {
		return nil, fault.New(fault.StageNormalize, fault.ErrInvalidParameter,
			"stretch percentiles %v..%v out of range", opts.Low, opts.High)
	}
	return StretchPercentiles(rgb, opts.Low, opts.High), nil
}

// ToRGB performs the alpha and bit-depth steps of Normalize without the
// contrast stretch.
func ToRGB(b *Buffer, logger *log.Logger) (*RGB, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if b == nil || b.Channels < 3 || b.Channels > 4 {
		ch := 0
		if b != nil {
			ch = b.Channels
		}
		return nil, fault.New(fault.StageNormalize, fault.ErrInvalidImage, "expected 3 or 4 channels, got %d", ch)
	}
	if b.Width <= 0 || b.Height <= 0 || len(b.Samples) < b.Width*b.Height*b.Channels {
		return nil, fault.New(fault.StageNormalize, fault.ErrInvalidImage, "empty %dx%d image", b.Width, b.Height)
	}

	n := b.Width * b.Height
	color := make([]float64, n*3)
	if b.HasAlpha() {
		for i := 0; i < n; i++ {
			a := b.Samples[i*4+3]
			if !b.Float {
				a /= 255
			}
			color[i*3] = b.Samples[i*4] * a
			color[i*3+1] = b.Samples[i*4+1] * a
			color[i*3+2] = b.Samples[i*4+2] * a
		}
		logger.Printf("normalize: alpha channel removed")
	} else {
		copy(color, b.Samples[:n*3])
		logger.Printf("normalize: no alpha channel")
	}

	if b.Float {
		maxV := math.Inf(-1)
		for _, v := range color {
			maxV = math.Max(maxV, v)
		}
		if maxV <= 1.0 {
			for i := range color {
				color[i] *= 255
			}
			logger.Printf("normalize: float samples scaled to 8 bits")
		} else {
			logger.Printf("normalize: float samples already in 8-bit range")
		}
	}

	out := NewRGB(b.Width, b.Height)
	for i, v := range color {
		out.Pix[i] = clamp8(v)
	}
	return out, nil
}

// Stretch applies the default 2nd/98th percentile contrast stretch.
func Stretch(m *RGB) *RGB {
	return StretchPercentiles(m, DefaultLowPercentile, DefaultHighPercentile)
}

// StretchPercentiles maps the low and high percentiles of all samples to 0
// and 255, clipping outside that range. If both percentiles are equal the
// image is returned as an unchanged copy.
func StretchPercentiles(m *RGB, low, high float64) *RGB {
	hist := Histogram(m)
	lo := PercentileFromHistogram(hist, low)
	hi := PercentileFromHistogram(hist, high)

	out := m.Clone()
	if hi <= lo {
		return out
	}

	// Rounded rather than truncated so a full-range image maps onto itself.
	var lut [256]uint8
	for v := 0; v < 256; v++ {
		f := (float64(v) - lo) * 255 / (hi - lo)
		lut[v] = clamp8(math.Round(f))
	}
	for i, v := range out.Pix {
		out.Pix[i] = lut[v]
	}
	return out
}

// Histogram counts every sample of every channel.
func Histogram(m *RGB) [256]int {
	var hist [256]int
	for _, v := range m.Pix {
		hist[v]++
	}
	return hist
}

// Percentile returns the p-th percentile (0..100) of all samples, with linear
// interpolation between the two nearest ranks.
func Percentile(m *RGB, p float64) float64 {
	return PercentileFromHistogram(Histogram(m), p)
}

// PercentileFromHistogram computes a linearly interpolated percentile from a
// 256-bin histogram of integral values.
func PercentileFromHistogram(hist [256]int, p float64) float64 {
	total := 0
	for _, c := range hist {
		total += c
	}
	if total == 0 {
		return 0
	}

	pos := p / 100 * float64(total-1)
	lower := int(math.Floor(pos))
	frac := pos - float64(lower)
	upper := lower + 1
	if upper > total-1 {
		upper = total - 1
	}

	lv := rankValue(hist, lower)
	if frac == 0 {
		return lv
	}
	uv := rankValue(hist, upper)
	return lv + frac*(uv-lv)
}

// rankValue returns the value at rank k (0-based) of the sorted samples.
func rankValue(hist [256]int, k int) float64 {
	cum := 0
	for v, c := range hist {
		cum += c
		if cum > k {
			return float64(v)
		}
	}
	return 255
}
