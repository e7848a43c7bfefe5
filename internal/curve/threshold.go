package curve

import (
	"fmt"
	"strings"

	"pictograph/internal/raster"
	"pictograph/pkg/colorutil"
)

// Polarity selects which side of the threshold counts as curve.
type Polarity int

const (
	// Bright treats pixels above the threshold as curve.
	Bright Polarity = iota
	// Dark treats pixels at or below the threshold as curve.
	Dark
)

func (p Polarity) String() string {
	if p == Dark {
		return "dark"
	}
	return "bright"
}

// ParsePolarity accepts "bright" or "dark" (case-insensitive). Empty means bright.
func ParsePolarity(s string) (Polarity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "bright":
		return Bright, nil
	case "dark":
		return Dark, nil
	}
	return Bright, fmt.Errorf("unknown polarity %q", s)
}

// Grayscale converts an RGB raster to Rec. 709 luminance, row-major.
func Grayscale(img *raster.RGB) []uint8 {
	gray := make([]uint8, img.Width*img.Height)
	for i := range gray {
		gray[i] = colorutil.Luminance(img.Pix[i*3], img.Pix[i*3+1], img.Pix[i*3+2])
	}
	return gray
}

// Otsu computes the threshold that maximises between-class variance over the
// 256-bin histogram of gray. Levels up to and including the threshold form the
// dark class. An image with a single level returns that level, so nothing lies
// above it.
func Otsu(gray []uint8) uint8 {
	var hist [256]int
	total := len(gray)
	for _, g := range gray {
		hist[g]++
	}

	if total == 0 {
		return 128
	}

	// Uniform images have no second class.
	levels := 0
	only := 0
	for i, c := range hist {
		if c > 0 {
			levels++
			only = i
		}
	}
	if levels == 1 {
		return uint8(only)
	}

	var sum float64
	for i := 0; i < 256; i++ {
		sum += float64(i) * float64(hist[i])
	}

	var sumB float64
	var wB, wF int
	var maxVar float64
	threshold := uint8(0)

	for t := 0; t < 256; t++ {
		wB += hist[t]
		if wB == 0 {
			continue
		}
		wF = total - wB
		if wF == 0 {
			break
		}

		sumB += float64(t) * float64(hist[t])
		mB := sumB / float64(wB)
		mF := (sum - sumB) / float64(wF)

		variance := float64(wB) * float64(wF) * (mB - mF) * (mB - mF)
		if variance > maxVar {
			maxVar = variance
			threshold = uint8(t)
		}
	}

	return threshold
}

// Binarize marks curve pixels on the chosen side of the threshold.
func Binarize(gray []uint8, width, height int, threshold uint8, polarity Polarity) *Mask {
	m := NewMask(width, height)
	for i, g := range gray {
		if polarity == Dark {
			m.Bits[i] = g <= threshold
		} else {
			m.Bits[i] = g > threshold
		}
	}
	return m
}
