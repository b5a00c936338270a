package pkg

// Granularity is the pixel footprint controlled by one pattern unit.
type Granularity struct {
	W, H int
}

// the five unit sizes used by the block opcodes
var (
	Unit1x1 = Granularity{W: 1, H: 1}
	Unit2x1 = Granularity{W: 2, H: 1}
	Unit1x2 = Granularity{W: 1, H: 2}
	Unit2x2 = Granularity{W: 2, H: 2}
	Unit4x4 = Granularity{W: 4, H: 4}
)

func (g Granularity) fillUnit(dst []byte, off, stride int, pel byte) {
	for y := 0; y < g.H; y++ {
		row := dst[off+y*stride : off+y*stride+g.W]
		for x := range row {
			row[x] = pel
		}
	}
}

// FillPattern paints a grid of cols x rows units starting at off. Each unit
// takes the color picked by its selector in pattern: one bit per unit when
// two colors are given, two bits per unit when four are given. Selectors are
// consumed from the least significant end, left to right then top to bottom.
//
// There is no bounds checking; the caller guarantees the footprint fits.
func (g Granularity) FillPattern(dst []byte, off, stride, cols, rows int, colors []byte, pattern uint64) {
	bits := uint(1)
	if len(colors) > 2 {
		bits = 2
	}

	mask := uint64(1)<<bits - 1

	for r := 0; r < rows; r++ {
		rowOff := off + r*g.H*stride

		for c := 0; c < cols; c++ {
			g.fillUnit(dst, rowOff+c*g.W, stride, colors[pattern&mask])
			pattern >>= bits
		}
	}
}

// FillUnits paints a grid of cols x rows units, one literal color per unit in
// raster order.
func (g Granularity) FillUnits(dst []byte, off, stride, cols, rows int, pixels []byte) {
	idx := 0

	for r := 0; r < rows; r++ {
		rowOff := off + r*g.H*stride

		for c := 0; c < cols; c++ {
			g.fillUnit(dst, rowOff+c*g.W, stride, pixels[idx])
			idx++
		}
	}
}

// packPattern reads up to 8 bytes as a little-endian selector word.
func packPattern(b []byte) uint64 {
	var pattern uint64

	for i := len(b) - 1; i >= 0; i-- {
		pattern = pattern<<8 | uint64(b[i])
	}

	return pattern
}
