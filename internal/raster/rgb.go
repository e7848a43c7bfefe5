package raster

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"

	xdraw "golang.org/x/image/draw"
)

// RGB is a normalized 8-bit, 3-channel raster, row-major from the top-left.
type RGB struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewRGB allocates a black raster.
func NewRGB(width, height int) *RGB {
	return &RGB{Width: width, Height: height, Pix: make([]uint8, width*height*3)}
}

// At returns the pixel at column x, row y.
func (m *RGB) At(x, y int) (r, g, b uint8) {
	i := (y*m.Width + x) * 3
	return m.Pix[i], m.Pix[i+1], m.Pix[i+2]
}

// Set stores the pixel at column x, row y.
func (m *RGB) Set(x, y int, r, g, b uint8) {
	i := (y*m.Width + x) * 3
	m.Pix[i], m.Pix[i+1], m.Pix[i+2] = r, g, b
}

// Clone returns an independent copy.
func (m *RGB) Clone() *RGB {
	out := &RGB{Width: m.Width, Height: m.Height, Pix: make([]uint8, len(m.Pix))}
	copy(out.Pix, m.Pix)
	return out
}

// Equal reports whether two rasters hold the same pixels.
func (m *RGB) Equal(other *RGB) bool {
	if m.Width != other.Width || m.Height != other.Height {
		return false
	}
	return bytes.Equal(m.Pix, other.Pix)
}

// Fill sets every pixel to one color.
func (m *RGB) Fill(c color.RGBA) {
	for i := 0; i < len(m.Pix); i += 3 {
		m.Pix[i], m.Pix[i+1], m.Pix[i+2] = c.R, c.G, c.B
	}
}

// ToImage converts to an opaque *image.RGBA.
func (m *RGB) ToImage() *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, m.Width, m.Height))
	for i, j := 0, 0; i < len(m.Pix); i, j = i+3, j+4 {
		out.Pix[j] = m.Pix[i]
		out.Pix[j+1] = m.Pix[i+1]
		out.Pix[j+2] = m.Pix[i+2]
		out.Pix[j+3] = 255
	}
	return out
}

// RGBFromImage copies any image into an RGB raster, compositing it onto black.
func RGBFromImage(img image.Image) *RGB {
	bounds := img.Bounds()
	out := NewRGB(bounds.Dx(), bounds.Dy())
	for y := 0; y < out.Height; y++ {
		for x := 0; x < out.Width; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			out.Set(x, y, uint8(r>>8), uint8(g>>8), uint8(b>>8))
		}
	}
	return out
}

// ToBuffer converts to a 3-channel integral Buffer.
func (m *RGB) ToBuffer() *Buffer {
	buf := NewBuffer(m.Width, m.Height, 3, false)
	for i, v := range m.Pix {
		buf.Samples[i] = float64(v)
	}
	return buf
}

// EncodePNG writes the raster as a PNG.
func (m *RGB) EncodePNG(w io.Writer) error {
	return png.Encode(w, m.ToImage())
}

// Scale resizes to width x height with Catmull-Rom interpolation.
func Scale(m *RGB, width, height int) *RGB {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), m.ToImage(), image.Rect(0, 0, m.Width, m.Height), xdraw.Src, nil)
	return RGBFromImage(dst)
}

// ScaleToHeight resizes to the given height keeping the aspect ratio.
func ScaleToHeight(m *RGB, height int) *RGB {
	if m.Height == 0 {
		return m.Clone()
	}
	width := int(float64(m.Width)*float64(height)/float64(m.Height) + 0.5)
	return Scale(m, width, height)
}
