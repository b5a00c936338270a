package pkg

import "fmt"

// Opcode selects how one 8x8 block is rebuilt. Two opcodes are packed into
// every byte of the opcode map.
type Opcode byte

const (
	// OpCopyReference copies the block at the same position from the
	// reference (historical) buffer
	OpCopyReference Opcode = iota

	// OpUnchanged leaves the block as the destination buffer already holds it
	OpUnchanged

	// OpCopyFarForward copies from below/right within the frame being written
	OpCopyFarForward

	// OpCopyFarBackward copies from above/left within the frame being written
	OpCopyFarBackward

	// OpCopyReferenceNear copies from the reference buffer at a 4-bit offset
	OpCopyReferenceNear

	// OpCopyReferenceFar copies from the reference buffer at an 8-bit offset
	OpCopyReferenceFar

	// OpSkip leaves two blocks untouched
	OpSkip

	// OpPattern2 paints a two-color pattern over the block
	OpPattern2

	// OpPattern2Split paints two-color patterns per quadrant or half
	OpPattern2Split

	// OpPattern4 paints a four-color pattern over the block
	OpPattern4

	// OpPattern4Split paints four-color patterns per quadrant or half
	OpPattern4Split

	// OpRaw carries one byte per pixel
	OpRaw

	// OpRaw2x2 carries one byte per 2x2 cell
	OpRaw2x2

	// OpRaw4x4 carries one byte per 4x4 quadrant
	OpRaw4x4

	// OpSolid fills the block with one color
	OpSolid

	// OpDither checkerboards two colors
	OpDither
)

var opcodeNames = [...]string{
	"copy-reference",
	"unchanged",
	"copy-far-forward",
	"copy-far-backward",
	"copy-reference-near",
	"copy-reference-far",
	"skip",
	"pattern2",
	"pattern2-split",
	"pattern4",
	"pattern4-split",
	"raw",
	"raw2x2",
	"raw4x4",
	"solid",
	"dither",
}

func (op Opcode) String() string {
	if int(op) < len(opcodeNames) {
		return fmt.Sprintf("0x%x (%s)", byte(op), opcodeNames[op])
	}

	return fmt.Sprintf("0x%x", byte(op))
}

// opcodeAt returns the k-th opcode of the map; even k is the low nibble.
func opcodeAt(opMap []byte, k int) Opcode {
	m := opMap[k>>1]
	if k&1 == 0 {
		return Opcode(m & 0xf)
	}

	return Opcode(m >> 4)
}

// PayloadSize reports how many payload bytes op consumes when executed at
// the cursor. Opcodes whose size depends on their color bytes peek at them.
func (op Opcode) PayloadSize(c Cursor) (int, error) {
	switch op {
	case OpCopyReference, OpUnchanged, OpSkip:
		return 0, nil
	case OpCopyFarForward, OpCopyFarBackward, OpCopyReferenceNear, OpSolid:
		return 1, nil
	case OpCopyReferenceFar, OpDither:
		return 2, nil
	case OpPattern2:
		le, err := c.ordered(0, 1)
		if err != nil {
			return 0, err
		}

		if le {
			return 10, nil
		}

		return 4, nil
	case OpPattern2Split:
		le, err := c.ordered(0, 1)
		if err != nil {
			return 0, err
		}

		if le {
			return 16, nil
		}

		return 12, nil
	case OpPattern4:
		le01, err := c.ordered(0, 1)
		if err != nil {
			return 0, err
		}

		le23, err := c.ordered(2, 3)
		if err != nil {
			return 0, err
		}

		switch {
		case le01 && le23:
			return 20, nil
		case le01:
			return 8, nil
		default:
			return 12, nil
		}
	case OpPattern4Split:
		le, err := c.ordered(0, 1)
		if err != nil {
			return 0, err
		}

		if le {
			return 32, nil
		}

		return 24, nil
	case OpRaw:
		return 64, nil
	case OpRaw2x2:
		return 16, nil
	case OpRaw4x4:
		return 4, nil
	}

	return 0, nil
}

// ordered reports whether the byte at +i is not greater than the byte at +j.
func (c Cursor) ordered(i, j int) (bool, error) {
	a, err := c.Peek(i)
	if err != nil {
		return false, err
	}

	b, err := c.Peek(j)
	if err != nil {
		return false, err
	}

	return a <= b, nil
}
