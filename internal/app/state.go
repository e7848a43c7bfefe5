// Package app holds the digitizer session: the loaded image, the current crop
// or selected cluster, the last series and the event listeners clients use to
// follow along.
package app

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"log"
	"os"

	"pictograph/internal/calibrate"
	"pictograph/internal/cluster"
	"pictograph/internal/config"
	"pictograph/internal/curve"
	"pictograph/internal/export"
	"pictograph/internal/fault"
	"pictograph/internal/peaks"
	"pictograph/internal/plot"
	"pictograph/internal/raster"
	"pictograph/pkg/geometry"
)

// Session owns every intermediate result of one digitizing run. Each action
// replaces the fields it produces only when it succeeds.
type Session struct {
	Config *config.Config
	Logger *log.Logger

	// TempDir receives the short-lived PNG handed to clustering; empty means
	// the system default.
	TempDir string

	// Images
	SourcePath string
	Source     *raster.Buffer
	Current    *raster.Buffer // crop or selected cluster, what Digitize reads

	// Digitizing
	Bounds     calibrate.Bounds
	Extraction *curve.Result
	Series     *calibrate.Series
	Peaks      []int

	// Clustering
	Clusters *ClusterView

	// Event listeners
	listeners map[EventType][]EventListener
}

// EventType identifies different session events.
type EventType int

const (
	EventImageLoaded EventType = iota
	EventCropped
	EventSeriesComputed
	EventPeaksDetected
	EventClustersComputed
	EventClusterSelected
	EventExported
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// NewSession creates a session. A nil config means defaults and a nil logger
// discards progress messages.
func NewSession(cfg *config.Config, logger *log.Logger) *Session {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Session{
		Config:    cfg,
		Logger:    logger,
		Bounds:    cfg.Calibration,
		listeners: make(map[EventType][]EventListener),
	}
}

// On registers an event listener for the specified event type.
func (s *Session) On(event EventType, listener EventListener) {
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *Session) Emit(event EventType, data interface{}) {
	for _, listener := range s.listeners[event] {
		listener(data)
	}
}

// LoadImage reads an image file and makes it both the source and the current
// image.
func (s *Session) LoadImage(path string) error {
	buf, err := raster.Load(path)
	if err != nil {
		return err
	}
	s.SetImage(buf)
	s.SourcePath = path
	s.Logger.Printf("session: loaded %s (%dx%d, %d channels)", path, buf.Width, buf.Height, buf.Channels)
	return nil
}

// SetImage installs an already decoded image and drops everything derived
// from the previous one.
func (s *Session) SetImage(buf *raster.Buffer) {
	s.SourcePath = ""
	s.Source = buf
	s.Current = buf
	s.Extraction = nil
	s.Series = nil
	s.Peaks = nil
	s.Clusters = nil
	s.Emit(EventImageLoaded, buf)
}

// Crop makes the part of the source inside r the current image. The
// rectangle is in source pixels.
func (s *Session) Crop(r image.Rectangle) error {
	if s.Source == nil {
		return fault.New(fault.StageCrop, fault.ErrInvalidImage, "no image loaded")
	}
	cropped, err := raster.Crop(s.Source, r)
	if err != nil {
		return err
	}
	s.Current = cropped
	s.Clusters = nil
	s.Logger.Printf("session: cropped to %+v", geometry.FromRectangle(r.Intersect(s.Source.Bounds())))
	s.Emit(EventCropped, cropped)
	return nil
}

// CropFromDisplay crops with a selection drawn on a display widget of size
// label that shows the source scaled to shown and centred.
func (s *Session) CropFromDisplay(sel image.Rectangle, label, shown image.Point) error {
	if s.Source == nil {
		return fault.New(fault.StageCrop, fault.ErrInvalidImage, "no image loaded")
	}
	r := raster.DisplayToSource(sel, label, shown, image.Pt(s.Source.Width, s.Source.Height))
	return s.Crop(r)
}

// CropPreview renders the current image as a PNG scaled to the configured
// preview height.
func (s *Session) CropPreview() ([]byte, error) {
	if s.Current == nil {
		return nil, fault.New(fault.StageCrop, fault.ErrInvalidImage, "no image loaded")
	}
	rgb, err := raster.ToRGB(s.Current, s.Logger)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := raster.ScaleToHeight(rgb, s.Config.Crop.PreviewHeight).EncodePNG(&buf); err != nil {
		return nil, fault.Wrap(fault.StageCrop, fault.ErrIOFailure, err)
	}
	return buf.Bytes(), nil
}

// Digitized is what Digitize hands back to the client.
type Digitized struct {
	Series  calibrate.Series
	Chart   []byte // series chart, PNG
	Contour []byte // longest traced contour in pixel space, PNG
}

// Digitize normalizes the current image, extracts the curve and maps it
// through bounds. On failure the previous series is kept.
func (s *Session) Digitize(bounds calibrate.Bounds) (*Digitized, error) {
	if s.Current == nil {
		return nil, fault.New(fault.StageExtract, fault.ErrInvalidImage, "no image loaded")
	}
	if err := bounds.Validate(); err != nil {
		return nil, err
	}

	rgb, err := raster.NormalizeWith(s.Current, s.Config.StretchOptions(), s.Logger)
	if err != nil {
		return nil, err
	}

	opts := s.Config.ExtractOptions()
	opts.Logger = s.Logger
	res, err := curve.Extract(rgb, opts)
	if err != nil {
		return nil, err
	}

	series, err := calibrate.Map(res.CenterLine, bounds, rgb.Width, rgb.Height)
	if err != nil {
		return nil, err
	}

	chartOpts, err := plot.SeriesOptions(rgb.Width, rgb.Height, s.Config.Plot.BaseWidth, s.Config.Plot.PixelsPerUnit)
	if err != nil {
		return nil, err
	}
	chartOpts.Title = s.Config.Plot.Title
	chartOpts.XLabel = s.Config.Plot.XLabel
	chartOpts.YLabel = s.Config.Plot.YLabel

	out := &Digitized{Series: series}
	var chartBuf, contourBuf bytes.Buffer
	if err := plot.Series(&chartBuf, series, chartOpts); err != nil {
		return nil, err
	}
	contourOpts := plot.Options{Title: "Longest contour", Width: chartOpts.Width, Height: chartOpts.Height}
	if err := plot.Contour(&contourBuf, res.Longest, rgb.Width, rgb.Height, contourOpts); err != nil {
		return nil, err
	}
	out.Chart = chartBuf.Bytes()
	out.Contour = contourBuf.Bytes()

	s.Bounds = bounds
	s.Extraction = res
	s.Series = &out.Series
	s.Peaks = nil
	s.Logger.Printf("session: digitized %d points from %d contours", series.Len(), len(res.Contours))
	s.Emit(EventSeriesComputed, out)
	return out, nil
}

// DetectPeaks finds peaks in the last series and renders the annotated chart.
func (s *Session) DetectPeaks(sensitivity float64, minDistance int) ([]int, []byte, error) {
	if s.Series == nil {
		return nil, nil, fault.New(fault.StagePeaks, fault.ErrInvalidParameter, "no series to search")
	}
	idx, err := peaks.Detect(s.Series.Y, sensitivity, minDistance)
	if err != nil {
		return nil, nil, err
	}
	var buf bytes.Buffer
	if err := plot.Peaks(&buf, *s.Series, idx, plot.PeaksOptions()); err != nil {
		return nil, nil, err
	}
	s.Peaks = idx
	s.Logger.Printf("session: %d peaks at sensitivity %v, distance %d", len(idx), sensitivity, minDistance)
	s.Emit(EventPeaksDetected, idx)
	return idx, buf.Bytes(), nil
}

// ExportCSV writes the last series to path.
func (s *Session) ExportCSV(path string) error {
	if s.Series == nil {
		return fault.New(fault.StageExport, fault.ErrInvalidParameter, "no series to export")
	}
	if err := export.SaveCSV(path, *s.Series); err != nil {
		return err
	}
	s.Logger.Printf("session: wrote %d rows to %s", s.Series.Len(), path)
	s.Emit(EventExported, path)
	return nil
}

// ClusterEntry is one image of a cluster view with the size it should be
// displayed at, in figure units.
type ClusterEntry struct {
	Label  string
	Image  *raster.RGB
	Width  float64
	Height float64
}

// ClusterView lists the stretched input, the recolored image and then one
// mask per cluster.
type ClusterView struct {
	Result  *cluster.Result
	Entries []ClusterEntry
}

// Selectable returns only the per-cluster masks.
func (v *ClusterView) Selectable() []ClusterEntry {
	if len(v.Entries) < 2 {
		return nil
	}
	return v.Entries[2:]
}

// Cluster groups the current image into k colors. The image travels through a
// temporary PNG that is removed before returning.
func (s *Session) Cluster(k int) (*ClusterView, error) {
	if s.Current == nil {
		return nil, fault.New(fault.StageCluster, fault.ErrInvalidImage, "no image loaded")
	}

	tmp, err := os.CreateTemp(s.TempDir, "pictograph-*.png")
	if err != nil {
		return nil, fault.Wrap(fault.StageCluster, fault.ErrIOFailure, fmt.Errorf("failed to create temporary file: %w", err))
	}
	path := tmp.Name()
	defer os.Remove(path)
	if err := tmp.Close(); err != nil {
		return nil, fault.Wrap(fault.StageCluster, fault.ErrIOFailure, err)
	}

	if err := s.Current.SavePNG(path); err != nil {
		return nil, err
	}
	buf, err := raster.Load(path)
	if err != nil {
		return nil, err
	}
	rgb, err := raster.NormalizeWith(buf, s.Config.StretchOptions(), s.Logger)
	if err != nil {
		return nil, err
	}

	opts := s.Config.ClusterOptions()
	opts.K = k
	opts.Logger = s.Logger
	res, err := cluster.Cluster(rgb, opts)
	if err != nil {
		return nil, err
	}

	base := s.Config.Cluster.BaseSize
	view := &ClusterView{Result: res}
	add := func(label string, img *raster.RGB) {
		w, h := cluster.DisplaySize(img, base)
		view.Entries = append(view.Entries, ClusterEntry{Label: label, Image: img, Width: w, Height: h})
	}
	add("Contrast stretched", rgb)
	add(fmt.Sprintf("Clustered (k=%d)", res.K), res.Recolored)
	for c, m := range res.Masks {
		add(fmt.Sprintf("Cluster %d (%s)", c, res.Summaries[c].Name), m)
	}

	s.Clusters = view
	s.Emit(EventClustersComputed, view)
	return view, nil
}

// SelectCluster makes mask n of the last cluster view the current image.
func (s *Session) SelectCluster(n int) error {
	if s.Clusters == nil {
		return fault.New(fault.StageCluster, fault.ErrInvalidParameter, "no clusters computed")
	}
	sel := s.Clusters.Selectable()
	if n < 0 || n >= len(sel) {
		return fault.New(fault.StageCluster, fault.ErrInvalidParameter, "cluster %d out of range [0,%d)", n, len(sel))
	}
	s.Current = sel[n].Image.ToBuffer()
	s.Logger.Printf("session: selected %s", sel[n].Label)
	s.Emit(EventClusterSelected, n)
	return nil
}
