package pkg

import (
	"fmt"
	"image/color"
)

// Decoder decodes a sequence of frames, owning the two frame buffers and
// swapping their roles before every frame.
//
// After the swap the front buffer still holds the frame decoded two calls
// ago, which is what OpUnchanged keeps, and the back buffer holds the last
// decoded frame, which the copy-reference opcodes read.
type Decoder struct {
	width, height int
	front, back   []byte
	palette       color.Palette
	logger        Logger
	frames        int
}

// NewDecoder allocates both buffers for width x height frames. A nil logger
// uses the default logger.
func NewDecoder(width, height int, logger Logger) (*Decoder, error) {
	if width <= 0 || height <= 0 || width%blockSize != 0 || height%blockSize != 0 {
		return nil, fmt.Errorf("%dx%d: %w", width, height, ErrInvalidDimensions)
	}

	return &Decoder{
		width:  width,
		height: height,
		front:  make([]byte, width*height),
		back:   make([]byte, width*height),
		logger: logger,
	}, nil
}

func (d *Decoder) Width() int {
	return d.width
}

func (d *Decoder) Height() int {
	return d.height
}

// Frames returns how many frames were decoded successfully.
func (d *Decoder) Frames() int {
	return d.frames
}

func (d *Decoder) SetPalette(p color.Palette) {
	d.palette = p
}

// Decode swaps the buffers and decodes the next frame into the front one.
// The returned frame shares the decoder's buffer and is only valid until the
// next call after that.
//
// On error the swap is undone: Current and the copy-reference opcodes of the
// next call see the last good frame, and the partly written buffer is the
// one the next call overwrites.
func (d *Decoder) Decode(opMap, payload []byte) (*Frame, *FrameStats, error) {
	return d.DecodeWithRemaining(opMap, payload, len(payload))
}

// DecodeWithRemaining is Decode with an explicit remaining-byte count.
func (d *Decoder) DecodeWithRemaining(opMap, payload []byte, remaining int) (*Frame, *FrameStats, error) {
	d.front, d.back = d.back, d.front

	stats, err := DecodeFrame(d.width, d.height, d.front, d.back, opMap, payload, remaining, d.logger)
	if err != nil {
		d.front, d.back = d.back, d.front
		return nil, stats, fmt.Errorf("frame %d: %w", d.frames, err)
	}

	d.frames++

	return d.Current(), stats, nil
}

// Current returns the most recently decoded frame.
func (d *Decoder) Current() *Frame {
	return NewFrame(d.width, d.height, d.front, d.palette)
}

// Reset clears both buffers and the frame counter.
func (d *Decoder) Reset() {
	for i := range d.front {
		d.front[i] = 0
		d.back[i] = 0
	}

	d.frames = 0
}
