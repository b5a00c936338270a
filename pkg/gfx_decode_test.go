package pkg

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravestench/mve/pkg/logging"
)

func testLogger() (*logging.Logger, *bytes.Buffer) {
	var out bytes.Buffer

	l := logging.New(&out)
	l.SetLevel(logging.LevelDebug)

	return l, &out
}

func TestDecodeFrameSolidRightBlock(t *testing.T) {
	const width, height = 16, 8

	dst := bytes.Repeat([]byte{0x33}, width*height)
	hist := make([]byte, width*height)
	l, _ := testLogger()

	// low nibble 0x1 leaves the left block, high nibble 0xe fills the right
	stats, err := DecodeFrame(width, height, dst, hist, []byte{0xe1}, []byte{0x05}, 1, l)
	require.NoError(t, err)

	assert.Equal(t, blockFunc(func(int, int) byte { return 0x33 }), blockOf(dst, 0, width))
	assert.Equal(t, blockFunc(func(int, int) byte { return 0x05 }), blockOf(dst, 8, width))
	assert.Equal(t, 2, stats.Opcodes)
	assert.Equal(t, 1, stats.Consumed)
	assert.Equal(t, 0, stats.Remaining)
	assert.Empty(t, stats.Anomalies)
}

func TestDecodeFrameAllUnchangedKeepsBuffer(t *testing.T) {
	const width, height = 32, 24

	hist := make([]byte, width*height)
	fillRamp(hist)

	dst := append([]byte(nil), hist...)
	opMap := bytes.Repeat([]byte{0x11}, (width/8)*(height/8)/2)

	stats, err := DecodeFrame(width, height, dst, hist, opMap, nil, 0, nil)
	require.NoError(t, err)

	assert.Equal(t, hist, dst)
	assert.Equal(t, 12, stats.Opcodes)
	assert.Equal(t, 0, stats.Consumed)
}

func TestDecodeFrameAllCopyReference(t *testing.T) {
	const width, height = 32, 16

	hist := make([]byte, width*height)
	fillRamp(hist)

	dst := make([]byte, width*height)
	opMap := make([]byte, (width/8)*(height/8)/2)

	_, err := DecodeFrame(width, height, dst, hist, opMap, nil, 0, nil)
	require.NoError(t, err)

	assert.Equal(t, hist, dst)
}

func TestDecodeFrameMixedRows(t *testing.T) {
	const width, height = 16, 16

	dst := make([]byte, width*height)
	hist := make([]byte, width*height)
	l, _ := testLogger()

	// row 0: solid 1, solid 2; row 1: dither 3/4, raw 4x4
	opMap := []byte{0xee, 0xdf}
	payload := []byte{1, 2, 3, 4, 10, 11, 12, 13}

	stats, err := DecodeFrame(width, height, dst, hist, opMap, payload, len(payload), l)
	require.NoError(t, err)

	assert.Equal(t, byte(1), dst[0])
	assert.Equal(t, byte(2), dst[8])
	assert.Equal(t, byte(3), dst[8*width])
	assert.Equal(t, byte(4), dst[8*width+1])
	assert.Equal(t, byte(10), dst[8*width+8])
	assert.Equal(t, byte(13), dst[15*width+15])
	assert.Equal(t, len(payload), stats.Consumed)
}

func TestDecodeFrameSkipEndsFrame(t *testing.T) {
	const width, height = 16, 8

	dst := make([]byte, width*height)
	l, _ := testLogger()

	// the skip covers both blocks, so the solid fill never runs
	stats, err := DecodeFrame(width, height, dst, make([]byte, width*height), []byte{0xe6}, []byte{9}, 1, l)
	require.NoError(t, err)

	assert.Equal(t, make([]byte, width*height), dst)
	assert.Equal(t, 1, stats.Opcodes)
	assert.Equal(t, 0, stats.Consumed)
	assert.Equal(t, 1, stats.Remaining)
}

func TestDecodeFrameSkipConsumesNibbles(t *testing.T) {
	const width, height = 32, 8

	dst := make([]byte, width*height)
	l, _ := testLogger()

	// block 0 skips blocks 0 and 1; blocks 2 and 3 run their own solid fills
	opMap := []byte{0x16, 0xee}

	stats, err := DecodeFrame(width, height, dst, make([]byte, width*height), opMap, []byte{9, 8}, 2, l)
	require.NoError(t, err)

	assert.Equal(t, make([]byte, 8), dst[:8])
	assert.Equal(t, make([]byte, 8), dst[8:16])
	assert.Equal(t, bytes.Repeat([]byte{9}, 8), dst[16:24])
	assert.Equal(t, bytes.Repeat([]byte{8}, 8), dst[24:32])
	assert.Equal(t, 3, stats.Opcodes)
	assert.Equal(t, 2, stats.Consumed)
}

func TestDecodeFrameOddBlockCount(t *testing.T) {
	dst := make([]byte, 64)

	stats, err := DecodeFrame(8, 8, dst, make([]byte, 64), []byte{0x0e}, []byte{7}, 1, nil)
	require.NoError(t, err)

	assert.Equal(t, bytes.Repeat([]byte{7}, 64), dst)
	assert.Equal(t, 1, stats.Opcodes)
}

func TestDecodeFramePayloadOverrun(t *testing.T) {
	const width, height = 16, 8

	dst := make([]byte, width*height)
	l, _ := testLogger()

	// the solid fill succeeds, the raw block needs 64 bytes and gets 10
	payload := make([]byte, 11)
	payload[0] = 0x44

	stats, err := DecodeFrame(width, height, dst, make([]byte, width*height), []byte{0xbe}, payload, len(payload), l)
	require.ErrorIs(t, err, ErrPayloadOverrun)
	assert.Contains(t, err.Error(), "block 1,0")

	assert.Equal(t, byte(0x44), dst[0])
	assert.Equal(t, make([]byte, 8), dst[8:16], "overrunning block writes nothing")
	assert.Equal(t, 1, stats.Consumed)
}

func TestDecodeFrameNegativeRemaining(t *testing.T) {
	l, out := testLogger()

	stats, err := DecodeFrame(8, 8, make([]byte, 64), make([]byte, 64), []byte{0x0e}, []byte{7}, 0, l)
	require.NoError(t, err)

	assert.Equal(t, -1, stats.Remaining)
	assert.Contains(t, out.String(), "[WARN] payload remaining counter went negative: -1")
}

func TestDecodeFrameOutOfRangeCopyIsContained(t *testing.T) {
	const width, height = 16, 8

	backing := bytes.Repeat([]byte{0xaa}, width*height+32)
	dst := backing[:width*height]
	for i := range dst {
		dst[i] = 0
	}

	hist := make([]byte, width*height)
	fillRamp(hist)

	l, out := testLogger()

	// block 0 copies in place, block 1 copies from 7 rows down, past the end
	payload := []byte{0x00, 0x00, 0x00, 0x07}

	stats, err := DecodeFrame(width, height, dst, hist, []byte{0x55}, payload, len(payload), l)
	require.NoError(t, err)

	assert.Equal(t, blockOf(hist, 0, width), blockOf(dst, 0, width))
	assert.Equal(t, make([]byte, 8), dst[8:16])
	assert.Equal(t, bytes.Repeat([]byte{0xaa}, 32), backing[width*height:], "no write past the destination")

	require.Len(t, stats.Anomalies, 1)
	assert.Equal(t, Anomaly{Op: OpCopyReferenceFar, Col: 1, Row: 0, Offset: 8, Reason: "copy source outside buffer"}, stats.Anomalies[0])
	assert.Contains(t, out.String(), "at block 1,0 offset 8")
}

func TestCheckCursor(t *testing.T) {
	f, out := newTestFrame(t, 16, 16)

	f.checkCursor(OpSkip, Position{}, Position{Offset: 16 * 16})
	f.checkCursor(OpSkip, Position{}, Position{Offset: -8})
	f.checkCursor(OpSkip, Position{}, Position{Offset: 16 * 16, Row: 2})

	require.Len(t, f.stats.Anomalies, 2)
	assert.Equal(t, "write cursor past buffer end", f.stats.Anomalies[0].Reason)
	assert.Equal(t, "write cursor below buffer start", f.stats.Anomalies[1].Reason)
	assert.Contains(t, out.String(), "[CRITICAL] write cursor past buffer end at block 0,0")
}

func TestDecodeFrameRejectsBadInput(t *testing.T) {
	buf := make([]byte, 256)

	tests := []struct {
		name          string
		width, height int
		dst, hist     []byte
		opMap         []byte
		err           error
	}{
		{"zero width", 0, 8, buf, buf, buf, ErrInvalidDimensions},
		{"width not multiple of 8", 12, 8, buf, buf, buf, ErrInvalidDimensions},
		{"height not multiple of 8", 8, 10, buf, buf, buf, ErrInvalidDimensions},
		{"short destination", 16, 16, buf[:255], buf, buf, ErrShortBuffer},
		{"short reference", 16, 16, buf, buf[:100], buf, ErrShortBuffer},
		{"short map", 16, 16, buf, buf, buf[:1], ErrShortMap},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeFrame(tt.width, tt.height, tt.dst, tt.hist, tt.opMap, nil, 0, nil)
			require.ErrorIs(t, err, tt.err)
		})
	}
}
