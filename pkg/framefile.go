package pkg

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"

	"github.com/gravestench/bitstream"
	"github.com/klauspost/compress/zstd"
)

// ErrBadMagic is returned when a frame dump does not start with FileMagic
var ErrBadMagic = errors.New("not a frame dump")

// FileMagic starts every uncompressed frame dump
const FileMagic = "MVE8"

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// Recording is a sequence of encoded frames sharing one size and palette.
type Recording struct {
	Width   int
	Height  int
	Palette []byte // 6-bit VGA triplets, nil when the dump carries none
	Frames  []*FrameRecord
}

// FrameRecord is the encoded form of one frame.
type FrameRecord struct {
	OpMap     []byte
	Payload   []byte
	Remaining int
}

// ColorPalette returns the recording palette, nil when there is none.
func (r *Recording) ColorPalette() (color.Palette, error) {
	if r.Palette == nil {
		return nil, nil
	}

	return PaletteFromVGA(r.Palette)
}

// Load reads a whole frame dump from r.
func Load(r io.Reader) (*Recording, error) {
	fileData, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading frame dump: %w", err)
	}

	return FromBytes(fileData)
}

// FromBytes decodes a frame dump, decompressing it first when it is zstd
// compressed.
func FromBytes(fileData []byte) (result *Recording, err error) {
	if bytes.HasPrefix(fileData, zstdMagic) {
		if fileData, err = decompress(fileData); err != nil {
			return nil, err
		}
	}

	result = &Recording{}
	d := &dumpDecoder{
		stream: bitstream.ReaderFromBytes(fileData...),
		left:   len(fileData),
	}

	numFrames, err := result.decodeHeader(d)
	if err != nil {
		return nil, fmt.Errorf("decoding header: %w", err)
	}

	if err = result.decodeFrames(d, numFrames); err != nil {
		return nil, fmt.Errorf("decoding frames: %w", err)
	}

	return result, nil
}

// dumpDecoder tracks how much input is left so lengths read from the file
// are checked before the stream is asked for them.
type dumpDecoder struct {
	stream *bitstream.Reader
	left   int
}

func (d *dumpDecoder) next(n int) error {
	if n < 0 || n > d.left {
		return fmt.Errorf("need %d bytes, %d left: %w", n, d.left, io.ErrUnexpectedEOF)
	}

	d.left -= n

	return nil
}

func (d *dumpDecoder) readBytes(n int) ([]byte, error) {
	if err := d.next(n); err != nil {
		return nil, err
	}

	if n == 0 {
		return []byte{}, nil
	}

	return d.stream.Next(n).Bytes().AsBytes()
}

func (d *dumpDecoder) readUint16() (uint16, error) {
	if err := d.next(2); err != nil {
		return 0, err
	}

	return d.stream.Next(2).Bytes().AsUInt16()
}

func (d *dumpDecoder) readInt32() (int32, error) {
	if err := d.next(4); err != nil {
		return 0, err
	}

	return d.stream.Next(4).Bytes().AsInt32()
}

func (d *dumpDecoder) readByte() (byte, error) {
	if err := d.next(1); err != nil {
		return 0, err
	}

	return d.stream.Next(1).Bytes().AsByte()
}

func (r *Recording) decodeHeader(d *dumpDecoder) (int, error) {
	const magicBytes = len(FileMagic)

	magic, err := d.readBytes(magicBytes)
	if err != nil {
		return 0, err
	}

	if string(magic) != FileMagic {
		return 0, fmt.Errorf("magic %q: %w", magic, ErrBadMagic)
	}

	width, err := d.readUint16()
	if err != nil {
		return 0, fmt.Errorf("width: %w", err)
	}

	height, err := d.readUint16()
	if err != nil {
		return 0, fmt.Errorf("height: %w", err)
	}

	r.Width, r.Height = int(width), int(height)

	if r.Width == 0 || r.Height == 0 || r.Width%blockSize != 0 || r.Height%blockSize != 0 {
		return 0, fmt.Errorf("%dx%d: %w", r.Width, r.Height, ErrInvalidDimensions)
	}

	numFrames, err := d.readInt32()
	if err != nil {
		return 0, fmt.Errorf("frame count: %w", err)
	}

	if numFrames < 0 {
		return 0, fmt.Errorf("negative frame count %d", numFrames)
	}

	hasPalette, err := d.readByte()
	if err != nil {
		return 0, fmt.Errorf("palette flag: %w", err)
	}

	if hasPalette != 0 {
		if r.Palette, err = d.readBytes(VGAPaletteSize); err != nil {
			return 0, fmt.Errorf("palette: %w", err)
		}
	}

	return int(numFrames), nil
}

func (r *Recording) decodeFrames(d *dumpDecoder, numFrames int) error {
	// every frame needs at least its three length fields
	const frameHeaderBytes = 12

	if numFrames > d.left/frameHeaderBytes {
		return fmt.Errorf("%d frames cannot fit in %d bytes: %w", numFrames, d.left, io.ErrUnexpectedEOF)
	}

	r.Frames = make([]*FrameRecord, numFrames)

	for idx := range r.Frames {
		mapLen, err := d.readInt32()
		if err != nil {
			return fmt.Errorf("frame %d map length: %w", idx, err)
		}

		payloadLen, err := d.readInt32()
		if err != nil {
			return fmt.Errorf("frame %d payload length: %w", idx, err)
		}

		remaining, err := d.readInt32()
		if err != nil {
			return fmt.Errorf("frame %d remaining: %w", idx, err)
		}

		rec := &FrameRecord{Remaining: int(remaining)}

		if rec.OpMap, err = d.readBytes(int(mapLen)); err != nil {
			return fmt.Errorf("frame %d map: %w", idx, err)
		}

		if rec.Payload, err = d.readBytes(int(payloadLen)); err != nil {
			return fmt.Errorf("frame %d payload: %w", idx, err)
		}

		r.Frames[idx] = rec
	}

	return nil
}

// WriteTo writes the recording as an uncompressed frame dump.
func (r *Recording) WriteTo(w io.Writer) (int64, error) {
	if r.Width <= 0 || r.Height <= 0 || r.Width > math.MaxUint16 || r.Height > math.MaxUint16 ||
		r.Width%blockSize != 0 || r.Height%blockSize != 0 {
		return 0, fmt.Errorf("%dx%d: %w", r.Width, r.Height, ErrInvalidDimensions)
	}

	buf := new(bytes.Buffer)

	buf.WriteString(FileMagic)
	_ = binary.Write(buf, binary.LittleEndian, uint16(r.Width))
	_ = binary.Write(buf, binary.LittleEndian, uint16(r.Height))
	_ = binary.Write(buf, binary.LittleEndian, int32(len(r.Frames)))

	if r.Palette != nil {
		if len(r.Palette) != VGAPaletteSize {
			return 0, fmt.Errorf("palette has %d bytes, need %d", len(r.Palette), VGAPaletteSize)
		}

		buf.WriteByte(1)
		buf.Write(r.Palette)
	} else {
		buf.WriteByte(0)
	}

	for _, rec := range r.Frames {
		_ = binary.Write(buf, binary.LittleEndian, int32(len(rec.OpMap)))
		_ = binary.Write(buf, binary.LittleEndian, int32(len(rec.Payload)))
		_ = binary.Write(buf, binary.LittleEndian, int32(rec.Remaining))
		buf.Write(rec.OpMap)
		buf.Write(rec.Payload)
	}

	return buf.WriteTo(w)
}

// Encode writes the recording, zstd compressed when compress is set.
func (r *Recording) Encode(w io.Writer, compress bool) error {
	if !compress {
		_, err := r.WriteTo(w)
		return err
	}

	raw := new(bytes.Buffer)
	if _, err := r.WriteTo(raw); err != nil {
		return err
	}

	enc, err := zstd.NewWriter(nil,
		zstd.WithEncoderConcurrency(1),
		zstd.WithEncoderLevel(zstd.SpeedBetterCompression),
	)
	if err != nil {
		return fmt.Errorf("zstd encoder: %w", err)
	}
	defer enc.Close()

	_, err = w.Write(enc.EncodeAll(raw.Bytes(), nil))

	return err
}

func decompress(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderLowmem(true),
	)
	if err != nil {
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}
	defer dec.Close()

	out, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decode: %w", err)
	}

	return out, nil
}
