package curve

// Mask is a binary image, true for foreground, row-major from the top-left.
type Mask struct {
	Width  int
	Height int
	Bits   []bool
}

// NewMask allocates an empty mask.
func NewMask(width, height int) *Mask {
	return &Mask{Width: width, Height: height, Bits: make([]bool, width*height)}
}

// At reports whether the pixel at column x, row y is foreground.
func (m *Mask) At(x, y int) bool {
	return m.Bits[y*m.Width+x]
}

// Set marks the pixel at column x, row y.
func (m *Mask) Set(x, y int, v bool) {
	m.Bits[y*m.Width+x] = v
}

// Count returns the number of foreground pixels.
func (m *Mask) Count() int {
	n := 0
	for _, b := range m.Bits {
		if b {
			n++
		}
	}
	return n
}

// Components labels 4-connected foreground regions. It returns one label per
// pixel (-1 for background) and the pixel count of each label.
func (m *Mask) Components() ([]int, []int) {
	labels := make([]int, len(m.Bits))
	for i := range labels {
		labels[i] = -1
	}

	var sizes []int
	stack := make([]int, 0, 64)
	for start, fg := range m.Bits {
		if !fg || labels[start] >= 0 {
			continue
		}
		label := len(sizes)
		size := 0
		labels[start] = label
		stack = append(stack[:0], start)
		for len(stack) > 0 {
			i := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			size++

			x, y := i%m.Width, i/m.Width
			if x > 0 {
				stack = m.visit(labels, stack, i-1, label)
			}
			if x < m.Width-1 {
				stack = m.visit(labels, stack, i+1, label)
			}
			if y > 0 {
				stack = m.visit(labels, stack, i-m.Width, label)
			}
			if y < m.Height-1 {
				stack = m.visit(labels, stack, i+m.Width, label)
			}
		}
		sizes = append(sizes, size)
	}
	return labels, sizes
}

func (m *Mask) visit(labels, stack []int, i, label int) []int {
	if m.Bits[i] && labels[i] < 0 {
		labels[i] = label
		stack = append(stack, i)
	}
	return stack
}

// RemoveSmallObjects returns a copy of m without the 4-connected components
// that have fewer than minSize pixels.
func RemoveSmallObjects(m *Mask, minSize int) *Mask {
	out := NewMask(m.Width, m.Height)
	labels, sizes := m.Components()
	for i, l := range labels {
		out.Bits[i] = l >= 0 && sizes[l] >= minSize
	}
	return out
}
