// Package main provides the pictograph command: digitize a curve from a chart
// image into calibrated x,y data.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"pictograph/internal/app"
	"pictograph/internal/config"
	"pictograph/internal/peaks"
	"pictograph/internal/raster"
	"pictograph/internal/version"
)

const appTitle = "Pictograph"

func main() {
	imagePath := flag.String("image", "", "Path to chart image (PNG, JPEG, GIF, BMP, TIFF or WebP)")
	crop := flag.String("crop", "", "Crop rectangle in source pixels: x,y,w,h")
	xMin := flag.Float64("xmin", 0, "Data x at the left edge of the crop")
	xMax := flag.Float64("xmax", 0, "Data x at the right edge of the crop")
	yMin := flag.Float64("ymin", 0, "Data y at the bottom edge of the crop")
	yMax := flag.Float64("ymax", 0, "Data y at the top edge of the crop")
	csvPath := flag.String("csv", "", "Write the series as CSV")
	chartPath := flag.String("chart", "", "Write the series chart PNG")
	contourPath := flag.String("contour", "", "Write the longest-contour diagnostic PNG")
	peaksPath := flag.String("peaks", "", "Detect peaks and write the annotated chart PNG")
	sensitivity := flag.String("sensitivity", "", "Minimum peak height (default from config)")
	minDistance := flag.String("min-distance", "", "Minimum samples between peaks (default from config)")
	configPath := flag.String("config", config.DefaultPath(), "Configuration file")
	initConfig := flag.Bool("init-config", false, "Write the default configuration to -config and exit")
	verbose := flag.Bool("v", false, "Log progress to stderr")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	logger := newLogger(*verbose)
	logger.Printf("Starting %s %s", appTitle, version.String())

	if *initConfig {
		if err := config.SaveConfig(config.DefaultConfig(), *configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote default configuration to %s\n", *configPath)
		return
	}

	if *imagePath == "" {
		fmt.Println("Usage: pictograph -image <path> [-crop x,y,w,h] [-xmin 0 -xmax 4000 -ymin 0 -ymax 1000] [-csv out.csv] [-chart out.png] [-peaks out.png]")
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Flags given on the command line override the configured calibration.
	bounds := cfg.Calibration
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "xmin":
			bounds.XMin = *xMin
		case "xmax":
			bounds.XMax = *xMax
		case "ymin":
			bounds.YMin = *yMin
		case "ymax":
			bounds.YMax = *yMax
		}
	})

	session := app.NewSession(cfg, logger)
	if err := session.LoadImage(*imagePath); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load image: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Loaded image: %dx%d pixels, %d channels\n", session.Source.Width, session.Source.Height, session.Source.Channels)

	if *crop != "" {
		r, err := raster.ParseRect(*crop)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		if err := session.Crop(r); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to crop: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Cropped to %dx%d\n", session.Current.Width, session.Current.Height)
	}

	fmt.Printf("Calibration: x %g..%g, y %g..%g\n", bounds.XMin, bounds.XMax, bounds.YMin, bounds.YMax)
	out, err := session.Digitize(bounds)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Digitizing failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Extracted %d points (threshold %d)\n", out.Series.Len(), session.Extraction.Threshold)

	writeFile(*chartPath, out.Chart, "series chart")
	writeFile(*contourPath, out.Contour, "contour chart")

	if *csvPath != "" {
		if err := session.ExportCSV(*csvPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to export CSV: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", *csvPath)
	}

	if *peaksPath != "" {
		s, d, err := peaks.ParseParams(*sensitivity, *minDistance)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		if *sensitivity == "" {
			s = cfg.Peaks.Sensitivity
		}
		if *minDistance == "" {
			d = cfg.Peaks.MinDistance
		}
		idx, chartPNG, err := session.DetectPeaks(s, d)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Peak detection failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("\nDetected %d peaks:\n", len(idx))
		fmt.Printf("%6s %14s %14s\n", "Index", "X", "Y")
		for _, p := range peaks.Describe(out.Series, idx) {
			fmt.Printf("%6d %14.4f %14.4f\n", p.Index, p.X, p.Y)
		}
		writeFile(*peaksPath, chartPNG, "peaks chart")
	}
}

// newLogger returns the standard logger when verbose and a discarding one
// otherwise.
func newLogger(verbose bool) *log.Logger {
	if verbose {
		return log.Default()
	}
	return log.New(io.Discard, "", 0)
}

func writeFile(path string, data []byte, what string) {
	if path == "" {
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", what, err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s to %s\n", what, path)
}
