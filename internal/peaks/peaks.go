// Package peaks finds local maxima in a digitized series.
package peaks

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"pictograph/internal/calibrate"
	"pictograph/internal/fault"
)

// Defaults used when the caller leaves the inputs empty.
const (
	DefaultSensitivity = 0.5
	DefaultMinDistance = 20
)

// Peak is one detected maximum.
type Peak struct {
	Index int
	X     float64
	Y     float64
}

// Detect returns the indices of local maxima in y whose value is at least
// sensitivity, keeping only peaks at least minDistance samples apart. Flat
// tops count once, at their middle sample (rounded down). When peaks are too
// close the taller one wins; between equal heights the leftmost wins. The
// result is sorted ascending.
func Detect(y []float64, sensitivity float64, minDistance int) ([]int, error) {
	if math.IsNaN(sensitivity) || math.IsInf(sensitivity, 0) {
		return nil, fault.New(fault.StagePeaks, fault.ErrInvalidParameter, "sensitivity %v is not a finite number", sensitivity)
	}
	if minDistance < 1 {
		return nil, fault.New(fault.StagePeaks, fault.ErrInvalidParameter, "min distance %d must be at least 1", minDistance)
	}

	var candidates []int
	for _, p := range localMaxima(y) {
		if y[p] >= sensitivity {
			candidates = append(candidates, p)
		}
	}
	return suppress(candidates, y, minDistance), nil
}

// localMaxima finds samples larger than both neighbours, treating a run of
// equal samples as one.
func localMaxima(y []float64) []int {
	var out []int
	last := len(y) - 1
	i := 1
	for i < last {
		if y[i-1] < y[i] {
			ahead := i + 1
			for ahead < last && y[ahead] == y[i] {
				ahead++
			}
			if y[ahead] < y[i] {
				out = append(out, (i+ahead-1)/2)
				i = ahead
			}
		}
		i++
	}
	return out
}

// suppress removes peaks closer than distance to a taller one, visiting peaks
// from the tallest down.
func suppress(candidates []int, y []float64, distance int) []int {
	if distance == 1 || len(candidates) < 2 {
		return candidates
	}

	order := make([]int, len(candidates))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return y[candidates[order[a]]] > y[candidates[order[b]]]
	})

	keep := make([]bool, len(candidates))
	for i := range keep {
		keep[i] = true
	}
	for _, j := range order {
		if !keep[j] {
			continue
		}
		for k := j - 1; k >= 0 && candidates[j]-candidates[k] < distance; k-- {
			keep[k] = false
		}
		for k := j + 1; k < len(candidates) && candidates[k]-candidates[j] < distance; k++ {
			keep[k] = false
		}
	}

	var out []int
	for i, p := range candidates {
		if keep[i] {
			out = append(out, p)
		}
	}
	return out
}

// Describe pairs peak indices with their series coordinates.
func Describe(s calibrate.Series, indices []int) []Peak {
	out := make([]Peak, 0, len(indices))
	for _, i := range indices {
		if i >= 0 && i < s.Len() {
			out = append(out, Peak{Index: i, X: s.X[i], Y: s.Y[i]})
		}
	}
	return out
}

// ParseParams reads sensitivity and minimum distance from text fields.
// Empty fields fall back to the defaults.
func ParseParams(sensitivity, minDistance string) (float64, int, error) {
	s, d := DefaultSensitivity, DefaultMinDistance
	if v := strings.TrimSpace(sensitivity); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, 0, fault.New(fault.StagePeaks, fault.ErrInvalidParameter, "bad sensitivity %q", sensitivity)
		}
		s = f
	}
	if v := strings.TrimSpace(minDistance); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, fault.New(fault.StagePeaks, fault.ErrInvalidParameter, "bad min distance %q", minDistance)
		}
		d = n
	}
	return s, d, nil
}
