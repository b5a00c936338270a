package mve

import (
	"image/color"
	"io"

	"github.com/gravestench/mve/pkg"
)

type (
	Frame       = pkg.Frame
	FrameStats  = pkg.FrameStats
	Anomaly     = pkg.Anomaly
	Decoder     = pkg.Decoder
	Opcode      = pkg.Opcode
	Logger      = pkg.Logger
	Recording   = pkg.Recording
	FrameRecord = pkg.FrameRecord
)

var (
	ErrPayloadOverrun    = pkg.ErrPayloadOverrun
	ErrInvalidDimensions = pkg.ErrInvalidDimensions
	ErrShortBuffer       = pkg.ErrShortBuffer
	ErrShortMap          = pkg.ErrShortMap
	ErrBadMagic          = pkg.ErrBadMagic
)

func DecodeFrame(width, height int, dst, hist, opMap, payload []byte, remaining int, logger Logger) (*FrameStats, error) {
	return pkg.DecodeFrame(width, height, dst, hist, opMap, payload, remaining, logger)
}

func NewDecoder(width, height int, logger Logger) (*Decoder, error) {
	return pkg.NewDecoder(width, height, logger)
}

func FromBytes(fileData []byte) (*Recording, error) {
	return pkg.FromBytes(fileData)
}

func Load(r io.Reader) (*Recording, error) {
	return pkg.Load(r)
}

func PaletteFromVGA(data []byte) (color.Palette, error) {
	return pkg.PaletteFromVGA(data)
}
