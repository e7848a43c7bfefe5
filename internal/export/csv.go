// Package export writes and reads digitized series as two-column CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"pictograph/internal/calibrate"
	"pictograph/internal/fault"
)

// Header is the first row of every exported file.
var Header = []string{"x", "y"}

// WriteCSV writes the series with a header row. Values use the shortest
// decimal form that parses back to the same float64.
func WriteCSV(w io.Writer, s calibrate.Series) error {
	if len(s.X) != len(s.Y) {
		return fault.New(fault.StageExport, fault.ErrInvalidParameter, "series has %d x and %d y values", len(s.X), len(s.Y))
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fault.Wrap(fault.StageExport, fault.ErrIOFailure, err)
	}
	for i := range s.X {
		row := []string{formatFloat(s.X[i]), formatFloat(s.Y[i])}
		if err := cw.Write(row); err != nil {
			return fault.Wrap(fault.StageExport, fault.ErrIOFailure, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fault.Wrap(fault.StageExport, fault.ErrIOFailure, err)
	}
	return nil
}

// SaveCSV writes the series to path, replacing any existing file.
func SaveCSV(path string, s calibrate.Series) error {
	f, err := os.Create(path)
	if err != nil {
		return fault.Wrap(fault.StageExport, fault.ErrIOFailure, fmt.Errorf("failed to create %s: %w", path, err))
	}
	if err := WriteCSV(f, s); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fault.Wrap(fault.StageExport, fault.ErrIOFailure, err)
	}
	return nil
}

// ReadCSV parses a file written by WriteCSV. A missing header is tolerated.
func ReadCSV(r io.Reader) (calibrate.Series, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return calibrate.Series{}, fault.Wrap(fault.StageExport, fault.ErrInvalidParameter, err)
	}
	if len(records) > 0 && strings.EqualFold(records[0][0], Header[0]) && strings.EqualFold(records[0][1], Header[1]) {
		records = records[1:]
	}

	s := calibrate.Series{X: make([]float64, len(records)), Y: make([]float64, len(records))}
	for i, rec := range records {
		x, errX := strconv.ParseFloat(rec[0], 64)
		y, errY := strconv.ParseFloat(rec[1], 64)
		if errX != nil || errY != nil {
			return calibrate.Series{}, fault.New(fault.StageExport, fault.ErrInvalidParameter, "row %d: bad values %q", i+1, rec)
		}
		s.X[i], s.Y[i] = x, y
	}
	return s, nil
}

// LoadCSV reads a series from path.
func LoadCSV(path string) (calibrate.Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return calibrate.Series{}, fault.Wrap(fault.StageExport, fault.ErrIOFailure, fmt.Errorf("failed to open %s: %w", path, err))
	}
	defer f.Close()
	return ReadCSV(f)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
