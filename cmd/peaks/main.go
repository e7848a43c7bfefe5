// Command peaks runs peak detection on a digitized series stored as CSV.
package main

import (
	"flag"
	"fmt"
	"os"

	"pictograph/internal/export"
	"pictograph/internal/peaks"
	"pictograph/internal/plot"
)

func main() {
	csvPath := flag.String("csv", "", "Series CSV with x,y columns")
	sensitivity := flag.String("sensitivity", "", fmt.Sprintf("Minimum peak height (default %v)", peaks.DefaultSensitivity))
	minDistance := flag.String("min-distance", "", fmt.Sprintf("Minimum samples between peaks (default %d)", peaks.DefaultMinDistance))
	chartPath := flag.String("chart", "", "Write the annotated chart PNG")
	noLabels := flag.Bool("no-labels", false, "Omit the x=... peak labels on the chart")
	flag.Parse()

	if *csvPath == "" {
		fmt.Println("Usage: peaks -csv <series.csv> [-sensitivity 0.5] [-min-distance 20] [-chart out.png]")
		os.Exit(1)
	}

	s, d, err := peaks.ParseParams(*sensitivity, *minDistance)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	series, err := export.LoadCSV(*csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read series: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Loaded %d points from %s\n", series.Len(), *csvPath)
	fmt.Printf("Sensitivity: %v, min distance: %d\n", s, d)

	idx, err := peaks.Detect(series.Y, s, d)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Detection failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nDetected %d peaks:\n", len(idx))
	fmt.Printf("%6s %14s %14s\n", "Index", "X", "Y")
	for _, p := range peaks.Describe(series, idx) {
		fmt.Printf("%6d %14.4f %14.4f\n", p.Index, p.X, p.Y)
	}

	if *chartPath == "" {
		return
	}
	f, err := os.Create(*chartPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create chart: %v\n", err)
		os.Exit(1)
	}
	opts := plot.PeaksOptions()
	opts.HideLabels = *noLabels
	if err := plot.Peaks(f, series, idx, opts); err != nil {
		f.Close()
		fmt.Fprintf(os.Stderr, "Failed to render chart: %v\n", err)
		os.Exit(1)
	}
	if err := f.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write chart: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s\n", *chartPath)
}
