package pkg

const (
	blockSize = 8

	// 0x55aa... puts color 0 on even (row+col) and color 1 on odd
	ditherPattern uint64 = 0x55aa55aa55aa55aa
)

// Position is the write cursor: a byte offset into the destination buffer
// plus the block column and row it corresponds to.
type Position struct {
	Offset int
	Col    int
	Row    int
}

// solid fills are painted as a single unit covering the block
var unitBlock = Granularity{W: blockSize, H: blockSize}

// advance moves one block right, jumping to the start of the next block row
// after the last column.
func (f *frame) advance(p Position) Position {
	p.Offset += blockSize
	p.Col++

	if p.Col == f.cols {
		p.Offset += (blockSize - 1) * f.width
		p.Col = 0
		p.Row++
	}

	return p
}

// fits reports whether an 8x8 footprint starting at off lies in the buffer.
func (f *frame) fits(off int) bool {
	return off >= 0 && off+(blockSize-1)*f.width+blockSize <= f.size
}

// quadrantOffset returns the offset of quadrant q of a block, in the order
// top-left, bottom-left, top-right, bottom-right.
func (f *frame) quadrantOffset(q int) int {
	return (q&1)*4*f.width + (q>>1)*4
}

// dispatch runs one opcode at pos. It consumes exactly op.PayloadSize bytes
// from cur and returns the position of the next block along with the
// advanced cursor. On a payload overrun nothing is written and the inputs
// are returned unchanged.
func (f *frame) dispatch(op Opcode, pos Position, cur Cursor) (Position, Cursor, error) {
	n, err := op.PayloadSize(cur)
	if err != nil {
		return pos, cur, err
	}

	next := cur
	data, err := next.Take(n)
	if err != nil {
		return pos, cur, err
	}

	if op == OpSkip {
		for i := 0; i < 2 && pos.Row < f.rows; i++ {
			pos = f.advance(pos)
		}

		return pos, next, nil
	}

	if !f.fits(pos.Offset) {
		f.anomaly(op, pos, "block footprint outside destination")
		return f.advance(pos), next, nil
	}

	off, w := pos.Offset, f.width

	switch op {
	case OpCopyReference:
		f.copyBlock(op, pos, f.hist, off)

	case OpUnchanged:

	case OpCopyFarForward, OpCopyFarBackward:
		x, y := relFar(data[0])
		if op == OpCopyFarBackward {
			x, y = -x, -y
		}

		f.copyBlock(op, pos, f.cur, off+x+y*w)

	case OpCopyReferenceNear:
		x := int(data[0]&0xf) - 8
		y := int(data[0]>>4) - 8
		f.copyBlock(op, pos, f.hist, off+x+y*w)

	case OpCopyReferenceFar:
		x := int(int8(data[0]))
		y := int(int8(data[1]))
		f.copyBlock(op, pos, f.hist, off+x+y*w)

	case OpPattern2:
		f.pattern2(off, data)

	case OpPattern2Split:
		f.pattern2Split(off, data)

	case OpPattern4:
		f.pattern4(off, data)

	case OpPattern4Split:
		f.pattern4Split(off, data)

	case OpRaw:
		Unit1x1.FillUnits(f.cur, off, w, 8, 8, data)

	case OpRaw2x2:
		Unit2x2.FillUnits(f.cur, off, w, 4, 4, data)

	case OpRaw4x4:
		Unit4x4.FillUnits(f.cur, off, w, 2, 2, data)

	case OpSolid:
		unitBlock.FillUnits(f.cur, off, w, 1, 1, data)

	case OpDither:
		Unit1x1.FillPattern(f.cur, off, w, 8, 8, data, ditherPattern)
	}

	return f.advance(pos), next, nil
}

// relFar decodes the one-byte offset of the far copy opcodes.
func relFar(b byte) (x, y int) {
	i := int(b)
	if i < 56 {
		return 8 + i%7, i / 7
	}

	return -14 + (i-56)%29, 8 + (i-56)/29
}

// copyBlock copies the 8x8 block at srcOff in src to pos in the destination.
// Rows are copied top to bottom so overlapping sources in the destination
// buffer read rows this block has not yet written.
func (f *frame) copyBlock(op Opcode, pos Position, src []byte, srcOff int) {
	if !f.fits(srcOff) {
		f.anomaly(op, pos, "copy source outside buffer")
		return
	}

	for y := 0; y < blockSize; y++ {
		d := pos.Offset + y*f.width
		s := srcOff + y*f.width
		copy(f.cur[d:d+blockSize], src[s:s+blockSize])
	}
}

// pattern2 expects P0 P1 followed by either eight 1bpp row bytes (P0 <= P1)
// or two bytes of nibble patterns over 2x2 cells, low nibble first.
func (f *frame) pattern2(off int, data []byte) {
	colors := data[:2]

	if data[0] <= data[1] {
		Unit1x1.FillPattern(f.cur, off, f.width, 8, 8, colors, packPattern(data[2:10]))
		return
	}

	Unit2x2.FillPattern(f.cur, off, f.width, 4, 4, colors, packPattern(data[2:4]))
}

func (f *frame) pattern2Split(off int, data []byte) {
	w := f.width

	switch {
	case data[0] <= data[1]:
		for q := 0; q < 4; q++ {
			chunk := data[q*4 : q*4+4]
			Unit1x1.FillPattern(f.cur, off+f.quadrantOffset(q), w, 4, 4, chunk[:2], packPattern(chunk[2:]))
		}

	case data[6] <= data[7]:
		// left and right halves
		for half := 0; half < 2; half++ {
			chunk := data[half*6 : half*6+6]
			Unit1x1.FillPattern(f.cur, off+half*4, w, 4, 8, chunk[:2], packPattern(chunk[2:]))
		}

	default:
		// top and bottom halves
		for half := 0; half < 2; half++ {
			chunk := data[half*6 : half*6+6]
			Unit1x1.FillPattern(f.cur, off+half*4*w, w, 8, 4, chunk[:2], packPattern(chunk[2:]))
		}
	}
}

// pattern4 picks the unit size from the ordering of its two color pairs.
func (f *frame) pattern4(off int, data []byte) {
	colors, w := data[:4], f.width

	switch {
	case data[0] <= data[1] && data[2] <= data[3]:
		// 16 bits per row does not fit one word, paint in two bands
		for half := 0; half < 2; half++ {
			bits := packPattern(data[4+half*8 : 12+half*8])
			Unit1x1.FillPattern(f.cur, off+half*4*w, w, 8, 4, colors, bits)
		}

	case data[0] <= data[1]:
		Unit2x2.FillPattern(f.cur, off, w, 4, 4, colors, packPattern(data[4:8]))

	case data[2] <= data[3]:
		Unit2x1.FillPattern(f.cur, off, w, 4, 8, colors, packPattern(data[4:12]))

	default:
		Unit1x2.FillPattern(f.cur, off, w, 8, 4, colors, packPattern(data[4:12]))
	}
}

func (f *frame) pattern4Split(off int, data []byte) {
	w := f.width

	switch {
	case data[0] <= data[1]:
		for q := 0; q < 4; q++ {
			chunk := data[q*8 : q*8+8]
			Unit1x1.FillPattern(f.cur, off+f.quadrantOffset(q), w, 4, 4, chunk[:4], packPattern(chunk[4:]))
		}

	case data[12] <= data[13]:
		for half := 0; half < 2; half++ {
			chunk := data[half*12 : half*12+12]
			Unit1x1.FillPattern(f.cur, off+half*4, w, 4, 8, chunk[:4], packPattern(chunk[4:]))
		}

	default:
		for half := 0; half < 2; half++ {
			chunk := data[half*12 : half*12+12]
			Unit1x1.FillPattern(f.cur, off+half*4*w, w, 8, 4, chunk[:4], packPattern(chunk[4:]))
		}
	}
}
