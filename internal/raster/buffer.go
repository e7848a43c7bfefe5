// Package raster provides image loading, cropping and normalization to the
// 8-bit RGB rasters the curve extractor and color clusterer work on.
package raster

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"

	"pictograph/internal/fault"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Buffer is a raster as it arrives from a decoder or a UI copy: 3 or 4
// interleaved channels, row-major, top-left origin. Float marks samples that
// were stored in a floating type (typically in [0,1]); otherwise samples are
// integral values in [0,255].
type Buffer struct {
	Width    int
	Height   int
	Channels int
	Float    bool
	Samples  []float64
}

// NewBuffer allocates a zeroed buffer.
func NewBuffer(width, height, channels int, float bool) *Buffer {
	return &Buffer{
		Width:    width,
		Height:   height,
		Channels: channels,
		Float:    float,
		Samples:  make([]float64, width*height*channels),
	}
}

// At returns channel c of the pixel at column x, row y.
func (b *Buffer) At(x, y, c int) float64 {
	return b.Samples[(y*b.Width+x)*b.Channels+c]
}

// Set stores channel c of the pixel at column x, row y.
func (b *Buffer) Set(x, y, c int, v float64) {
	b.Samples[(y*b.Width+x)*b.Channels+c] = v
}

// HasAlpha reports whether the fourth channel is present.
func (b *Buffer) HasAlpha() bool {
	return b.Channels == 4
}

// Bounds returns the buffer rectangle anchored at the origin.
func (b *Buffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.Width, b.Height)
}

// FromImage converts a decoded image. Opaque images produce 3 channels,
// anything with transparency keeps a fourth, non-premultiplied alpha channel.
// 16-bit sources become float samples in [0,1].
func FromImage(img image.Image) *Buffer {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	channels := 4
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		channels = 3
	}

	wide := false
	switch img.(type) {
	case *image.RGBA64, *image.NRGBA64, *image.Gray16:
		wide = true
	}

	buf := NewBuffer(w, h, channels, wide)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := img.At(bounds.Min.X+x, bounds.Min.Y+y)
			var px [4]float64
			if wide {
				n := color.NRGBA64Model.Convert(c).(color.NRGBA64)
				px = [4]float64{float64(n.R) / 65535, float64(n.G) / 65535, float64(n.B) / 65535, float64(n.A) / 65535}
			} else {
				n := color.NRGBAModel.Convert(c).(color.NRGBA)
				px = [4]float64{float64(n.R), float64(n.G), float64(n.B), float64(n.A)}
			}
			copy(buf.Samples[(y*w+x)*channels:], px[:channels])
		}
	}
	return buf
}

// ToImage converts the buffer back to a Go image. Float buffers become
// 16-bit images, integral ones 8-bit. Buffers with fewer than 3 channels are
// rendered as gray.
func (b *Buffer) ToImage() image.Image {
	scale := 1.0
	if b.Float {
		for _, v := range b.Samples {
			if v > 1 {
				scale = 255
				break
			}
		}
	}

	sample := func(x, y, c int) float64 {
		if c >= b.Channels {
			c = 0
		}
		return b.At(x, y, c)
	}
	alpha := func(x, y int) (float64, bool) {
		switch b.Channels {
		case 4:
			return b.At(x, y, 3), true
		case 2:
			return b.At(x, y, 1), true
		}
		return 0, false
	}

	if b.Float {
		out := image.NewNRGBA64(b.Bounds())
		for y := 0; y < b.Height; y++ {
			for x := 0; x < b.Width; x++ {
				c := color.NRGBA64{
					R: to16(sample(x, y, 0) / scale),
					G: to16(sample(x, y, 1) / scale),
					B: to16(sample(x, y, 2) / scale),
					A: 0xffff,
				}
				if a, ok := alpha(x, y); ok {
					c.A = to16(a / scale)
				}
				out.SetNRGBA64(x, y, c)
			}
		}
		return out
	}

	out := image.NewNRGBA(b.Bounds())
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			c := color.NRGBA{
				R: clamp8(sample(x, y, 0)),
				G: clamp8(sample(x, y, 1)),
				B: clamp8(sample(x, y, 2)),
				A: 255,
			}
			if a, ok := alpha(x, y); ok {
				c.A = clamp8(a)
			}
			out.SetNRGBA(x, y, c)
		}
	}
	return out
}

// Load decodes an image file. PNG, JPEG, GIF, BMP, TIFF and WebP are supported.
func Load(path string) (*Buffer, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fault.Wrap(fault.StageLoad, fault.ErrIOFailure, fmt.Errorf("failed to open image: %w", err))
	}
	defer file.Close()

	return Decode(file)
}

// Decode reads an image from r.
func Decode(r io.Reader) (*Buffer, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fault.Wrap(fault.StageLoad, fault.ErrInvalidImage, fmt.Errorf("failed to decode image: %w", err))
	}
	return FromImage(img), nil
}

// SavePNG writes the buffer as a PNG file.
func (b *Buffer) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fault.Wrap(fault.StageExport, fault.ErrIOFailure, err)
	}
	if err := png.Encode(f, b.ToImage()); err != nil {
		f.Close()
		return fault.Wrap(fault.StageExport, fault.ErrIOFailure, err)
	}
	if err := f.Close(); err != nil {
		return fault.Wrap(fault.StageExport, fault.ErrIOFailure, err)
	}
	return nil
}

// Crop copies the part of b inside r. The rectangle is clipped to the image
// first; nothing left after clipping is an error.
func Crop(b *Buffer, r image.Rectangle) (*Buffer, error) {
	r = r.Canon().Intersect(b.Bounds())
	if r.Empty() {
		return nil, fault.New(fault.StageCrop, fault.ErrInvalidParameter,
			"crop rectangle lies outside the %dx%d image", b.Width, b.Height)
	}

	out := NewBuffer(r.Dx(), r.Dy(), b.Channels, b.Float)
	rowLen := r.Dx() * b.Channels
	for y := 0; y < r.Dy(); y++ {
		src := ((r.Min.Y+y)*b.Width + r.Min.X) * b.Channels
		copy(out.Samples[y*rowLen:(y+1)*rowLen], b.Samples[src:src+rowLen])
	}
	return out, nil
}

func clamp8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}

func to16(v float64) uint16 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 0xffff
	}
	return uint16(v*0xffff + 0.5)
}
