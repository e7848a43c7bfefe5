// Package cluster groups chart pixels by color with k-means so a single
// colored curve can be isolated before digitizing.
package cluster

import (
	"image/color"
	"io"
	"log"
	"runtime"

	"pictograph/internal/fault"
	"pictograph/internal/raster"
	"pictograph/pkg/colorutil"

	"gocv.io/x/gocv"
)

// Options configures k-means clustering.
type Options struct {
	K             int
	Seed          int
	Attempts      int     // restarts, the best compactness wins
	MaxIterations int
	Epsilon       float64 // center movement that ends an attempt
	Logger        *log.Logger
}

// DefaultOptions returns the clustering parameters used by the application.
func DefaultOptions() Options {
	return Options{
		K:             4,
		Seed:          42,
		Attempts:      10,
		MaxIterations: 300,
		Epsilon:       1e-4,
	}
}

// Summary describes one cluster.
type Summary struct {
	Label    int
	Pixels   int
	Centroid color.RGBA
	Hue      float64 // OpenCV convention, 0-180
	Name     string
}

// Result is the outcome of clustering one raster.
type Result struct {
	K         int
	Labels    []int // one per pixel, row-major
	Centroids []color.RGBA
	Recolored *raster.RGB
	Masks     []*raster.RGB // recolored image with other clusters painted white
	Summaries []Summary
}

// Cluster partitions the pixels of img into opts.K color groups. Runs with the
// same seed on the same raster give the same labels and centroids. A K larger
// than the number of distinct colors is reduced to that number.
func Cluster(img *raster.RGB, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if opts.K < 1 {
		return nil, fault.New(fault.StageCluster, fault.ErrInvalidParameter, "k must be at least 1, got %d", opts.K)
	}
	if img == nil || img.Width == 0 || img.Height == 0 {
		return nil, fault.New(fault.StageCluster, fault.ErrInvalidImage, "empty raster")
	}
	if opts.Attempts < 1 {
		opts.Attempts = 1
	}
	if opts.MaxIterations < 1 {
		opts.MaxIterations = 1
	}

	k := opts.K
	if distinct := countColors(img, k); distinct < k {
		logger.Printf("cluster: only %d distinct colors, using k=%d instead of %d", distinct, distinct, k)
		k = distinct
	}

	labels, centers := kmeans(img, k, opts)
	logger.Printf("cluster: k-means finished with %d clusters over %d pixels", k, len(labels))

	res := &Result{K: k, Labels: labels, Centroids: centers}
	res.Recolored = recolor(img, labels, centers)
	res.Masks = make([]*raster.RGB, k)
	for c := 0; c < k; c++ {
		res.Masks[c] = MaskCluster(res.Recolored, labels, c)
	}
	res.Summaries = summarize(labels, centers)
	return res, nil
}

// kmeans runs OpenCV k-means on the pixel colors. The RNG OpenCV seeds from is
// thread-local, so the goroutine stays on one OS thread for the whole call.
func kmeans(img *raster.RGB, k int, opts Options) ([]int, []color.RGBA) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	gocv.SetRNGSeed(opts.Seed)

	n := img.Width * img.Height
	samples := gocv.NewMatWithSize(n, 3, gocv.MatTypeCV32F)
	defer samples.Close()
	for i := 0; i < n; i++ {
		samples.SetFloatAt(i, 0, float32(img.Pix[i*3]))
		samples.SetFloatAt(i, 1, float32(img.Pix[i*3+1]))
		samples.SetFloatAt(i, 2, float32(img.Pix[i*3+2]))
	}

	labelMat := gocv.NewMat()
	defer labelMat.Close()
	centerMat := gocv.NewMat()
	defer centerMat.Close()

	criteria := gocv.NewTermCriteria(gocv.EPS+gocv.MaxIter, opts.MaxIterations, opts.Epsilon)
	gocv.KMeans(samples, k, &labelMat, criteria, opts.Attempts, gocv.KMeansPPCenters, &centerMat)

	labels := make([]int, n)
	for i := 0; i < n; i++ {
		labels[i] = int(labelMat.GetIntAt(i, 0))
	}
	centers := make([]color.RGBA, k)
	for c := 0; c < k; c++ {
		centers[c] = color.RGBA{
			R: truncate8(centerMat.GetFloatAt(c, 0)),
			G: truncate8(centerMat.GetFloatAt(c, 1)),
			B: truncate8(centerMat.GetFloatAt(c, 2)),
			A: 255,
		}
	}
	return labels, centers
}

// countColors counts distinct colors, stopping once limit is reached.
func countColors(img *raster.RGB, limit int) int {
	seen := make(map[[3]uint8]struct{}, limit)
	for i := 0; i < len(img.Pix); i += 3 {
		seen[[3]uint8{img.Pix[i], img.Pix[i+1], img.Pix[i+2]}] = struct{}{}
		if len(seen) >= limit {
			return len(seen)
		}
	}
	return len(seen)
}

func recolor(img *raster.RGB, labels []int, centers []color.RGBA) *raster.RGB {
	out := raster.NewRGB(img.Width, img.Height)
	for i, l := range labels {
		c := centers[l]
		out.Pix[i*3], out.Pix[i*3+1], out.Pix[i*3+2] = c.R, c.G, c.B
	}
	return out
}

// MaskCluster keeps the pixels of img labelled c and paints the rest white.
// Cluster applies it to the recolored image.
func MaskCluster(img *raster.RGB, labels []int, c int) *raster.RGB {
	out := img.Clone()
	for i, l := range labels {
		if l != c {
			out.Pix[i*3], out.Pix[i*3+1], out.Pix[i*3+2] = colorutil.White.R, colorutil.White.G, colorutil.White.B
		}
	}
	return out
}

func summarize(labels []int, centers []color.RGBA) []Summary {
	counts := make([]int, len(centers))
	for _, l := range labels {
		counts[l]++
	}
	out := make([]Summary, len(centers))
	for c, col := range centers {
		h, s, v := colorutil.RGBToHSV(float64(col.R), float64(col.G), float64(col.B))
		out[c] = Summary{Label: c, Pixels: counts[c], Centroid: col, Hue: h, Name: colorutil.HueName(h, s, v)}
	}
	return out
}

func truncate8(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}
