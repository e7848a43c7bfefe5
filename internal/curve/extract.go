// Package curve separates a plotted curve from its background and reduces it
// to a single-valued centerline in pixel coordinates.
package curve

import (
	"io"
	"log"

	"pictograph/internal/fault"
	"pictograph/internal/raster"
	"pictograph/pkg/geometry"
)

// DefaultMinObjectSize is the smallest foreground component kept, in pixels.
const DefaultMinObjectSize = 20

// Options configures curve extraction.
type Options struct {
	MinObjectSize int
	Polarity      Polarity
	Logger        *log.Logger
}

// DefaultOptions returns the extraction settings used for photographed charts.
func DefaultOptions() Options {
	return Options{MinObjectSize: DefaultMinObjectSize, Polarity: Bright}
}

// Result holds everything computed while extracting a curve.
type Result struct {
	Image      *raster.RGB // input raster, unchanged
	Threshold  uint8
	Mask       *Mask // after small-object removal
	Contours   []Contour
	Longest    Contour
	CenterLine CenterLine
}

// Extract binarizes img with Otsu's threshold, drops speckle, traces the
// foreground outlines and collapses the longest one to a centerline.
func Extract(img *raster.RGB, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if img == nil || img.Width == 0 || img.Height == 0 {
		return nil, fault.New(fault.StageExtract, fault.ErrInvalidImage, "empty raster")
	}
	if opts.MinObjectSize < 0 {
		return nil, fault.New(fault.StageExtract, fault.ErrInvalidParameter, "min object size %d is negative", opts.MinObjectSize)
	}

	gray := Grayscale(img)
	threshold := Otsu(gray)
	mask := Binarize(gray, img.Width, img.Height, threshold, opts.Polarity)
	before := mask.Count()
	mask = RemoveSmallObjects(mask, opts.MinObjectSize)
	logger.Printf("extract: threshold %d (%s), %d foreground pixels, %d after removing small objects",
		threshold, opts.Polarity, before, mask.Count())

	contours := FindContours(mask)
	if len(contours) == 0 {
		return nil, fault.New(fault.StageExtract, fault.ErrNoCurveFound, "no contour at threshold %d", threshold)
	}

	longest, idx := Longest(contours)
	logger.Printf("extract: %d contours, using #%d with %d points (length %.1f px)",
		len(contours), idx, len(longest), geometry.PathLength(longest))

	return &Result{
		Image:      img,
		Threshold:  threshold,
		Mask:       mask,
		Contours:   contours,
		Longest:    longest,
		CenterLine: CollapseCenterLine([]Contour{longest}),
	}, nil
}
