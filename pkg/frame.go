package pkg

import (
	"image"
	"image/color"
)

var _ image.PalettedImage = &Frame{}

// Frame is a decoded 8-bit frame
type Frame struct {
	Width   int
	Height  int
	Pix     []byte
	palette color.Palette
}

// NewFrame wraps pix, which must hold width*height palette indices.
func NewFrame(width, height int, pix []byte, palette color.Palette) *Frame {
	return &Frame{
		Width:   width,
		Height:  height,
		Pix:     pix,
		palette: palette,
	}
}

func (f *Frame) ColorIndexAt(x, y int) uint8 {
	if x < 0 || y < 0 || x >= f.Width || y >= f.Height {
		return 0
	}

	absIdx := (y * f.Width) + x
	if absIdx >= len(f.Pix) {
		return 0
	}

	return f.Pix[absIdx]
}

func (f *Frame) ColorModel() color.Model {
	return f.Palette()
}

func (f *Frame) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.Width, f.Height)
}

func (f *Frame) At(x, y int) color.Color {
	return f.Palette()[f.ColorIndexAt(x, y)]
}

// Palette returns the frame palette, the grayscale ramp when none was set
func (f *Frame) Palette() color.Palette {
	if f.palette == nil {
		f.palette = defaultPalette()
	}

	return f.palette
}

func (f *Frame) SetPalette(p color.Palette) {
	f.palette = p
}

// Paletted returns the frame as an *image.Paletted sharing the pixel data.
func (f *Frame) Paletted() *image.Paletted {
	return &image.Paletted{
		Pix:     f.Pix[:f.Width*f.Height],
		Stride:  f.Width,
		Rect:    f.Bounds(),
		Palette: f.Palette(),
	}
}

// RGBA converts the frame through its palette into a new RGBA image.
func (f *Frame) RGBA() *image.RGBA {
	img := image.NewRGBA(f.Bounds())
	img.Pix = ImgIndexToRGBA(f.Pix[:f.Width*f.Height], f.Palette())

	return img
}
