package raster

import (
	"image"
	"strconv"
	"strings"

	"pictograph/internal/fault"
)

// DisplayToSource maps a selection drawn on a display widget back to source
// pixel coordinates. The widget has size label and shows the source image
// scaled to size shown, centred inside it. The selection origin is shifted
// by the centring offset and clamped at zero, its extent is clipped to the
// shown image, and both are scaled by source/shown and truncated.
func DisplayToSource(sel image.Rectangle, label, shown, source image.Point) image.Rectangle {
	if shown.X <= 0 || shown.Y <= 0 {
		return image.Rectangle{}
	}
	sel = sel.Canon()

	offX := floorDiv(label.X-shown.X, 2)
	offY := floorDiv(label.Y-shown.Y, 2)

	x := max(sel.Min.X-offX, 0)
	y := max(sel.Min.Y-offY, 0)
	w, h := sel.Dx(), sel.Dy()
	if x+w > shown.X {
		w = shown.X - x
	}
	if y+h > shown.Y {
		h = shown.Y - y
	}
	w, h = max(w, 0), max(h, 0)

	sx := float64(source.X) / float64(shown.X)
	sy := float64(source.Y) / float64(shown.Y)

	ox, oy := int(float64(x)*sx), int(float64(y)*sy)
	return image.Rect(ox, oy, ox+int(float64(w)*sx), oy+int(float64(h)*sy))
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// ParseRect reads a rectangle written as "x,y,w,h".
func ParseRect(s string) (image.Rectangle, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return image.Rectangle{}, fault.New(fault.StageCrop, fault.ErrInvalidParameter, "crop %q is not x,y,w,h", s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return image.Rectangle{}, fault.New(fault.StageCrop, fault.ErrInvalidParameter, "crop %q: bad number %q", s, p)
		}
		v[i] = n
	}
	if v[2] <= 0 || v[3] <= 0 {
		return image.Rectangle{}, fault.New(fault.StageCrop, fault.ErrInvalidParameter, "crop %q has no area", s)
	}
	return image.Rect(v[0], v[1], v[0]+v[2], v[1]+v[3]), nil
}
