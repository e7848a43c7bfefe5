package curve

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// CenterPoint is one column of a collapsed curve.
type CenterPoint struct {
	Row float64
	Col int
}

// CenterLine holds one point per distinct column, sorted by column.
type CenterLine []CenterPoint

// CollapseCenterLine reduces contour points to a single-valued curve: every
// point is assigned to its column rounded half-to-even, and the rows in each
// column are averaged.
func CollapseCenterLine(contours []Contour) CenterLine {
	rows := make(map[int][]float64)
	for _, c := range contours {
		for _, p := range c {
			col := int(math.RoundToEven(p.X))
			rows[col] = append(rows[col], p.Y)
		}
	}

	line := make(CenterLine, 0, len(rows))
	for col, ys := range rows {
		line = append(line, CenterPoint{Row: stat.Mean(ys, nil), Col: col})
	}
	sort.Slice(line, func(i, j int) bool { return line[i].Col < line[j].Col })
	return line
}

// Rows returns the row of every point in order.
func (l CenterLine) Rows() []float64 {
	out := make([]float64, len(l))
	for i, p := range l {
		out[i] = p.Row
	}
	return out
}

// Cols returns the column of every point in order.
func (l CenterLine) Cols() []float64 {
	out := make([]float64, len(l))
	for i, p := range l {
		out[i] = float64(p.Col)
	}
	return out
}
