package raster

import (
	"image"
	"image/color"
)

// Surface is a rectangular RGBA pixel buffer that page renders draw onto.
// Each surface is exclusively owned by one render record; the scheduler's
// single-in-flight invariant guarantees no concurrent writers.
type Surface struct {
	width  int
	height int
	data   []uint8 // RGBA, 4 bytes per pixel
}

func New(width, height int) *Surface {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Surface{
		width:  width,
		height: height,
		data:   make([]uint8, width*height*4),
	}
}

func (s *Surface) Width() int  { return s.width }
func (s *Surface) Height() int { return s.height }

// Data returns the raw pixel data in RGBA order.
func (s *Surface) Data() []uint8 { return s.data }

// Resize reallocates the buffer to the given dimensions. Existing content
// is discarded; call Clear afterwards to set a background.
func (s *Surface) Resize(width, height int) {
	if width == s.width && height == s.height {
		return
	}
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	s.width = width
	s.height = height
	s.data = make([]uint8, width*height*4)
}

// Clear fills the surface with the given color.
func (s *Surface) Clear(c color.RGBA) {
	for i := 0; i < len(s.data); i += 4 {
		s.data[i+0] = c.R
		s.data[i+1] = c.G
		s.data[i+2] = c.B
		s.data[i+3] = c.A
	}
}

// Image exposes the buffer as an *image.RGBA sharing the same pixels, so
// renderers can use the x/image drawing utilities directly.
func (s *Surface) Image() *image.RGBA {
	return &image.RGBA{
		Pix:    s.data,
		Stride: s.width * 4,
		Rect:   image.Rect(0, 0, s.width, s.height),
	}
}
