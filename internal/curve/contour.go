package curve

import "pictograph/pkg/geometry"

// Contour is an ordered iso-line in pixel space (X column, Y row). Closed
// contours repeat their first point at the end.
type Contour []geometry.Point2D

// Closed reports whether the contour ends where it starts.
func (c Contour) Closed() bool {
	return len(c) > 2 && c[0] == c[len(c)-1]
}

type segment struct {
	a, b geometry.Point2D
}

// FindContours traces the 0.5 iso-lines of a binary mask.
func FindContours(m *Mask) []Contour {
	field := make([]float64, len(m.Bits))
	for i, b := range m.Bits {
		if b {
			field[i] = 1
		}
	}
	return MarchingSquares(field, m.Width, m.Height, 0.5)
}

// MarchingSquares traces iso-lines of a row-major scalar field at the given
// level. Each cell of four neighbouring samples contributes up to two
// segments with linearly interpolated end points; ambiguous saddle cells keep
// the samples above the level apart. No padding is added, so curves that run
// into the border come back as open contours.
func MarchingSquares(field []float64, width, height int, level float64) []Contour {
	if width < 2 || height < 2 {
		return nil
	}

	at := func(r, c int) float64 { return field[r*width+c] }
	var segs []segment

	for r := 0; r < height-1; r++ {
		for c := 0; c < width-1; c++ {
			ul, ur := at(r, c), at(r, c+1)
			ll, lr := at(r+1, c), at(r+1, c+1)

			idx := 0
			if ul > level {
				idx |= 1
			}
			if ur > level {
				idx |= 2
			}
			if ll > level {
				idx |= 4
			}
			if lr > level {
				idx |= 8
			}
			if idx == 0 || idx == 15 {
				continue
			}

			fr, fc := float64(r), float64(c)
			top := geometry.Point2D{X: fc + frac(ul, ur, level), Y: fr}
			bottom := geometry.Point2D{X: fc + frac(ll, lr, level), Y: fr + 1}
			left := geometry.Point2D{X: fc, Y: fr + frac(ul, ll, level)}
			right := geometry.Point2D{X: fc + 1, Y: fr + frac(ur, lr, level)}

			switch idx {
			case 1, 14:
				segs = append(segs, segment{top, left})
			case 2, 13:
				segs = append(segs, segment{top, right})
			case 3, 12:
				segs = append(segs, segment{left, right})
			case 4, 11:
				segs = append(segs, segment{left, bottom})
			case 5, 10:
				segs = append(segs, segment{top, bottom})
			case 6:
				segs = append(segs, segment{top, right}, segment{left, bottom})
			case 7, 8:
				segs = append(segs, segment{right, bottom})
			case 9:
				segs = append(segs, segment{top, left}, segment{right, bottom})
			}
		}
	}

	return assemble(segs)
}

func frac(from, to, level float64) float64 {
	if to == from {
		return 0.5
	}
	return (level - from) / (to - from)
}

// assemble joins segments that share end points into polylines. Chains with
// a free end are traced first, starting from that end; what remains are loops.
func assemble(segs []segment) []Contour {
	ends := make(map[geometry.Point2D][]int, len(segs)*2)
	for i, s := range segs {
		ends[s.a] = append(ends[s.a], i)
		ends[s.b] = append(ends[s.b], i)
	}

	used := make([]bool, len(segs))
	trace := func(start geometry.Point2D) Contour {
		line := Contour{start}
		p := start
		for {
			next := -1
			for _, i := range ends[p] {
				if !used[i] {
					next = i
					break
				}
			}
			if next < 0 {
				return line
			}
			used[next] = true
			if segs[next].a == p {
				p = segs[next].b
			} else {
				p = segs[next].a
			}
			line = append(line, p)
		}
	}

	var contours []Contour
	for i, s := range segs {
		if used[i] {
			continue
		}
		for _, p := range []geometry.Point2D{s.a, s.b} {
			if len(ends[p]) == 1 && !used[i] {
				contours = append(contours, trace(p))
			}
		}
	}
	for i, s := range segs {
		if !used[i] {
			contours = append(contours, trace(s.a))
		}
	}
	return contours
}

// Longest returns the contour with the most points. Ties go to the first.
func Longest(contours []Contour) (Contour, int) {
	best := -1
	for i, c := range contours {
		if best < 0 || len(c) > len(contours[best]) {
			best = i
		}
	}
	if best < 0 {
		return nil, -1
	}
	return contours[best], best
}
