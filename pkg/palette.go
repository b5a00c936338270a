package pkg

import (
	"fmt"
	"image/color"
	"math"
)

const (
	numColors = 256

	// VGAPaletteSize is the size of a palette of 6-bit RGB triplets
	VGAPaletteSize = numColors * 3
)

func defaultPalette() color.Palette {
	palette := make(color.Palette, numColors)

	for idx := range palette {
		palette[idx] = color.RGBA{
			R: uint8(idx),
			G: uint8(idx),
			B: uint8(idx),
			A: math.MaxUint8,
		}
	}

	return palette
}

// PaletteFromVGA converts 256 6-bit RGB triplets into a color.Palette.
func PaletteFromVGA(data []byte) (color.Palette, error) {
	if len(data) < VGAPaletteSize {
		return nil, fmt.Errorf("palette has %d bytes, need %d", len(data), VGAPaletteSize)
	}

	palette := make(color.Palette, numColors)

	for idx := range palette {
		r, g, b := data[idx*3]&0x3f, data[idx*3+1]&0x3f, data[idx*3+2]&0x3f

		// 6 to 8 bits, replicating the top bits so 0x3f maps to 0xff
		palette[idx] = color.RGBA{
			R: r<<2 | r>>4,
			G: g<<2 | g>>4,
			B: b<<2 | b>>4,
			A: math.MaxUint8,
		}
	}

	return palette, nil
}

// ImgIndexToRGBA converts the given indices byte slice and palette into
// a byte slice of RGBA values
func ImgIndexToRGBA(indexData []byte, palette color.Palette) []byte {
	const bytesPerPixel = 4

	colorData := make([]byte, len(indexData)*bytesPerPixel)

	for i, idx := range indexData {
		if int(idx) >= len(palette) {
			continue
		}

		r, g, b, a := palette[idx].RGBA()

		colorData[i*bytesPerPixel] = byte(r >> 8)
		colorData[i*bytesPerPixel+1] = byte(g >> 8)
		colorData[i*bytesPerPixel+2] = byte(b >> 8)
		colorData[i*bytesPerPixel+3] = byte(a >> 8)
	}

	return colorData
}
