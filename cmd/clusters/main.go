// Command clusters splits a chart image into k color clusters, writes a
// preview per cluster and optionally digitizes one of them.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"pictograph/internal/app"
	"pictograph/internal/cluster"
	"pictograph/internal/config"
	"pictograph/internal/raster"
)

func main() {
	imagePath := flag.String("image", "", "Path to chart image")
	crop := flag.String("crop", "", "Crop rectangle in source pixels: x,y,w,h")
	k := flag.Int("k", 0, "Number of clusters (default from config)")
	outDir := flag.String("out", ".", "Directory for the preview PNGs")
	pick := flag.Int("pick", -1, "Digitize this cluster (0-based) after clustering")
	csvPath := flag.String("csv", "", "With -pick: write the series as CSV")
	chartPath := flag.String("chart", "", "With -pick: write the series chart PNG")
	configPath := flag.String("config", config.DefaultPath(), "Configuration file")
	verbose := flag.Bool("v", false, "Log progress to stderr")
	flag.Parse()

	if *imagePath == "" {
		fmt.Println("Usage: clusters -image <path> [-crop x,y,w,h] [-k 4] [-out dir] [-pick n -csv out.csv]")
		os.Exit(1)
	}

	logger := log.New(io.Discard, "", 0)
	if *verbose {
		logger = log.New(os.Stderr, "", log.LstdFlags)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *k == 0 {
		*k = cfg.Cluster.K
	}

	session := app.NewSession(cfg, logger)
	if err := session.LoadImage(*imagePath); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load image: %v\n", err)
		os.Exit(1)
	}
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
	}
	fmt.Printf("Clustering %dx%d image into %d colors\n", session.Current.Width, session.Current.Height, *k)

	view, err := session.Cluster(*k)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Clustering failed: %v\n", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create %s: %v\n", *outDir, err)
		os.Exit(1)
	}
	ppu := cfg.Cluster.PixelsPerUnit
	for i, e := range view.Entries {
		var name string
		switch {
		case i == 0:
			name = "stretched.png"
		case i == 1:
			name = "clustered.png"
		default:
			name = fmt.Sprintf("cluster-%d.png", i-2)
		}
		path := filepath.Join(*outDir, name)
		if err := writePNG(path, cluster.Preview(e.Image, cfg.Cluster.BaseSize, ppu)); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", path, err)
			os.Exit(1)
		}
	}

	fmt.Printf("\n%d clusters:\n", view.Result.K)
	fmt.Printf("%-8s %10s %14s %8s %-8s\n", "Cluster", "Pixels", "Centroid", "Hue", "Name")
	for _, s := range view.Result.Summaries {
		fmt.Printf("%-8d %10d %4d,%4d,%4d %8.1f %-8s\n",
			s.Label, s.Pixels, s.Centroid.R, s.Centroid.G, s.Centroid.B, s.Hue, s.Name)
	}
	fmt.Printf("\nPreviews written to %s\n", *outDir)

	if *pick < 0 {
		return
	}
	if err := session.SelectCluster(*pick); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	out, err := session.Digitize(session.Bounds)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Digitizing cluster %d failed: %v\n", *pick, err)
		os.Exit(1)
	}
	fmt.Printf("Cluster %d: extracted %d points\n", *pick, out.Series.Len())
	if *csvPath != "" {
		if err := session.ExportCSV(*csvPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to export CSV: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", *csvPath)
	}
	if *chartPath != "" {
		if err := os.WriteFile(*chartPath, out.Chart, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write chart: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", *chartPath)
	}
}

func writePNG(path string, img *raster.RGB) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := img.EncodePNG(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
