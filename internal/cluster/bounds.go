package cluster

import (
	"pictograph/internal/raster"
	"pictograph/pkg/colorutil"
	"pictograph/pkg/geometry"
)

// DefaultBaseSize is the longer side of a cluster preview in display units.
const DefaultBaseSize = 8.0

// BoundingBox returns the smallest rectangle holding every non-white pixel.
// The second result is false when the image is entirely white.
func BoundingBox(img *raster.RGB) (geometry.RectInt, bool) {
	minX, minY := img.Width, img.Height
	maxX, maxY := -1, -1
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			if colorutil.IsWhite(img.At(x, y)) {
				continue
			}
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)
		}
	}
	if maxX < 0 {
		return geometry.RectInt{}, false
	}
	return geometry.RectInt{X: minX, Y: minY, Width: maxX - minX + 1, Height: maxY - minY + 1}, true
}

// Ratio returns width/height of the non-white bounding box, or 1 when there
// are no non-white pixels.
func Ratio(img *raster.RGB) float64 {
	box, ok := BoundingBox(img)
	if !ok {
		return 1.0
	}
	return box.Ratio()
}

// DisplaySize scales the non-white region so its longer side equals base.
func DisplaySize(img *raster.RGB, base float64) (float64, float64) {
	ratio := Ratio(img)
	if ratio >= 1 {
		return base, base / ratio
	}
	return base * ratio, base
}

// Preview crops a masked image to its non-white region and scales it to its
// display size at pixelsPerUnit. All-white images are scaled whole.
func Preview(img *raster.RGB, base float64, pixelsPerUnit int) *raster.RGB {
	src := img
	if box, ok := BoundingBox(img); ok {
		src = raster.RGBFromImage(img.ToImage().SubImage(box.Rectangle()))
	}
	w, h := DisplaySize(img, base)
	return raster.Scale(src, int(w*float64(pixelsPerUnit)+0.5), int(h*float64(pixelsPerUnit)+0.5))
}
