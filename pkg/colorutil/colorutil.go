// Package colorutil provides shared color utilities for the digitizer.
package colorutil

import (
	"image/color"
	"math"
)

// White is the background masked pixels are painted with.
var White = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// Rec. 709 luma weights, matching the usual rgb-to-gray conversion for
// scanned and photographed charts.
const (
	LumaR = 0.2125
	LumaG = 0.7154
	LumaB = 0.0721
)

// Luminance returns the weighted gray level of an 8-bit RGB triple.
func Luminance(r, g, b uint8) uint8 {
	y := LumaR*float64(r) + LumaG*float64(g) + LumaB*float64(b)
	return uint8(math.Min(255, math.Round(y)))
}

// IsWhite reports whether the triple is pure white.
func IsWhite(r, g, b uint8) bool {
	return r == 255 && g == 255 && b == 255
}

// RGBToHSV converts RGB (0-255) to HSV (OpenCV convention: H 0-180, S 0-255, V 0-255).
func RGBToHSV(r, g, b float64) (h, s, v float64) {
	r /= 255.0
	g /= 255.0
	b /= 255.0

	maxC := math.Max(r, math.Max(g, b))
	minC := math.Min(r, math.Min(g, b))
	diff := maxC - minC

	v = maxC * 255.0

	if maxC == 0 {
		s = 0
	} else {
		s = (diff / maxC) * 255.0
	}

	switch {
	case diff == 0:
		h = 0
	case maxC == r:
		h = 60 * math.Mod((g-b)/diff, 6)
	case maxC == g:
		h = 60 * ((b-r)/diff + 2)
	default:
		h = 60 * ((r-g)/diff + 4)
	}

	if h < 0 {
		h += 360
	}

	return h / 2, s, v
}

// HueName gives a coarse color name for an OpenCV hue, used to label clusters.
// Low-saturation colors are reported as gray levels instead.
func HueName(h, s, v float64) string {
	switch {
	case v < 50:
		return "black"
	case s < 40 && v > 220:
		return "white"
	case s < 40:
		return "gray"
	}
	deg := h * 2
	switch {
	case deg < 15 || deg >= 345:
		return "red"
	case deg < 45:
		return "orange"
	case deg < 70:
		return "yellow"
	case deg < 165:
		return "green"
	case deg < 195:
		return "cyan"
	case deg < 255:
		return "blue"
	case deg < 290:
		return "purple"
	default:
		return "magenta"
	}
}
