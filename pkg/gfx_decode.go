package pkg

import (
	"errors"
	"fmt"

	"github.com/gravestench/mve/pkg/logging"
)

var (
	// ErrInvalidDimensions is returned for sizes that are not positive
	// multiples of 8
	ErrInvalidDimensions = errors.New("frame dimensions must be positive multiples of 8")

	// ErrShortBuffer is returned when a frame buffer is smaller than width*height
	ErrShortBuffer = errors.New("frame buffer too small")

	// ErrShortMap is returned when the opcode map has fewer nibbles than blocks
	ErrShortMap = errors.New("opcode map too small")
)

// Logger receives decoder diagnostics. *logging.Logger satisfies it.
type Logger interface {
	Debug(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Critical(format string, args ...interface{})
}

// Anomaly records a block the decoder could not rebuild as encoded.
type Anomaly struct {
	Op     Opcode
	Col    int
	Row    int
	Offset int
	Reason string
}

// FrameStats describes one frame decode.
type FrameStats struct {
	Opcodes   int
	Consumed  int
	Remaining int
	Anomalies []Anomaly
}

type frame struct {
	width, height int
	cols, rows    int
	size          int
	cur, hist     []byte
	log           Logger
	stats         *FrameStats
}

// DecodeFrame rebuilds dst from the opcode map and payload. hist is the
// reference buffer read by the copy-reference opcodes; dst is written in
// place and keeps its prior content wherever an opcode leaves a block alone.
//
// remaining is the caller's count of valid payload bytes. It is tracked for
// diagnostics only; reading past len(payload) fails the frame with
// ErrPayloadOverrun. Blocks that would copy from or write outside the
// buffers are skipped and reported in the returned stats, and decoding goes
// on.
func DecodeFrame(width, height int, dst, hist, opMap, payload []byte, remaining int, logger Logger) (*FrameStats, error) {
	f, err := newFrame(width, height, dst, hist, opMap, logger)
	if err != nil {
		return nil, err
	}

	cur := NewCursor(payload, remaining)
	pos := Position{}

	// each map byte holds the left block in its low nibble and the right
	// block in its high nibble; the row jump happens in advance. The nibble
	// follows the block position so a skip passes over its blocks' nibbles.
	for pos.Row < f.rows {
		op := opcodeAt(opMap, pos.Row*f.cols+pos.Col)
		at := pos

		pos, cur, err = f.dispatch(op, pos, cur)
		f.stats.Opcodes++

		if err != nil {
			f.stats.Consumed = cur.Position()
			f.stats.Remaining = cur.Remaining()

			return f.stats, fmt.Errorf("block %d,%d opcode %s: %w", at.Col, at.Row, op, err)
		}

		f.checkCursor(op, at, pos)
	}

	f.stats.Consumed = cur.Position()
	f.stats.Remaining = cur.Remaining()

	switch {
	case cur.Remaining() < 0:
		f.log.Warn("payload remaining counter went negative: %d", cur.Remaining())
	case cur.Remaining() > 0:
		f.log.Debug("%d payload bytes left after frame", cur.Remaining())
	}

	return f.stats, nil
}

func newFrame(width, height int, dst, hist, opMap []byte, logger Logger) (*frame, error) {
	if width <= 0 || height <= 0 || width%blockSize != 0 || height%blockSize != 0 {
		return nil, fmt.Errorf("%dx%d: %w", width, height, ErrInvalidDimensions)
	}

	size := width * height

	if len(dst) < size {
		return nil, fmt.Errorf("destination has %d bytes, need %d: %w", len(dst), size, ErrShortBuffer)
	}

	if len(hist) < size {
		return nil, fmt.Errorf("reference has %d bytes, need %d: %w", len(hist), size, ErrShortBuffer)
	}

	cols, rows := width/blockSize, height/blockSize
	if need := (cols*rows + 1) / 2; len(opMap) < need {
		return nil, fmt.Errorf("opcode map has %d bytes, need %d: %w", len(opMap), need, ErrShortMap)
	}

	if logger == nil {
		logger = logging.Default()
	}

	return &frame{
		width:  width,
		height: height,
		cols:   cols,
		rows:   rows,
		size:   size,
		cur:    dst[:size],
		hist:   hist[:size],
		log:    logger,
		stats:  &FrameStats{},
	}, nil
}

// checkCursor verifies the write cursor after the block at `at` ran. Once the
// last block row is done the cursor legitimately sits at the end.
func (f *frame) checkCursor(op Opcode, at, pos Position) {
	if pos.Row >= f.rows {
		return
	}

	if pos.Offset < 0 {
		f.anomaly(op, at, "write cursor below buffer start")
	} else if pos.Offset >= f.size {
		f.anomaly(op, at, "write cursor past buffer end")
	}
}

func (f *frame) anomaly(op Opcode, pos Position, reason string) {
	f.stats.Anomalies = append(f.stats.Anomalies, Anomaly{
		Op:     op,
		Col:    pos.Col,
		Row:    pos.Row,
		Offset: pos.Offset,
		Reason: reason,
	})

	f.log.Critical("%s at block %d,%d offset %d [%s]", reason, pos.Col, pos.Row, pos.Offset, op)
}
