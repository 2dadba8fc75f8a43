package qoi

import (
	"encoding/binary"
	"fmt"
)

// Channels is the channel count tag carried in the header. It describes the
// source image only; the opcode stream always carries four channels.
type Channels uint8

const (
	// ChannelsUnknown is any tag other than 3 or 4.
	ChannelsUnknown Channels = iota
	// ChannelsRGB is tag 3.
	ChannelsRGB
	// ChannelsRGBA is tag 4.
	ChannelsRGBA
)

// String returns the string representation of the channel tag.
func (c Channels) String() string {
	switch c {
	case ChannelsRGB:
		return "RGB"
	case ChannelsRGBA:
		return "RGBA"
	default:
		return "Unknown"
	}
}

func (c Channels) tag() byte {
	switch c {
	case ChannelsRGB:
		return 3
	case ChannelsRGBA:
		return 4
	default:
		return 1
	}
}

func parseChannels(b byte) Channels {
	switch b {
	case 3:
		return ChannelsRGB
	case 4:
		return ChannelsRGBA
	default:
		return ChannelsUnknown
	}
}

// ColorSpace is the colorspace tag carried in the header. It is never
// interpreted by the codec.
type ColorSpace uint8

const (
	// ColorSpaceSRGB is sRGB with linear alpha, tag 0.
	ColorSpaceSRGB ColorSpace = iota
	// ColorSpaceLinear is all channels linear, tag 1.
	ColorSpaceLinear
	// ColorSpaceUnknown is any other tag.
	ColorSpaceUnknown
)

// String returns the string representation of the colorspace tag.
func (cs ColorSpace) String() string {
	switch cs {
	case ColorSpaceSRGB:
		return "sRGB"
	case ColorSpaceLinear:
		return "Linear"
	default:
		return "Unknown"
	}
}

func (cs ColorSpace) tag() byte {
	switch cs {
	case ColorSpaceSRGB:
		return 0
	case ColorSpaceLinear:
		return 1
	default:
		return 2
	}
}

func parseColorSpace(b byte) ColorSpace {
	switch b {
	case 0:
		return ColorSpaceSRGB
	case 1:
		return ColorSpaceLinear
	default:
		return ColorSpaceUnknown
	}
}

// Header is the fixed preamble of a QOI stream.
type Header struct {
	Width      uint32
	Height     uint32
	Channels   Channels
	ColorSpace ColorSpace
}

// PixelCount returns Width*Height without overflowing.
func (h Header) PixelCount() uint64 {
	return uint64(h.Width) * uint64(h.Height)
}

// Append appends the 14 byte encoding of h to b.
func (h Header) Append(b []byte) []byte {
	b = append(b, Magic...)
	b = binary.BigEndian.AppendUint32(b, h.Width)
	b = binary.BigEndian.AppendUint32(b, h.Height)
	return append(b, h.Channels.tag(), h.ColorSpace.tag())
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (h Header) MarshalBinary() ([]byte, error) {
	return h.Append(make([]byte, 0, headerSize)), nil
}

// ParseHeader reads the header at the start of b. Unknown channel and
// colorspace tags are accepted and reported as ChannelsUnknown and
// ColorSpaceUnknown.
func ParseHeader(b []byte) (Header, error) {
	if len(b) < headerSize {
		return Header{}, fmt.Errorf("%w: %d bytes", ErrHeaderTooShort, len(b))
	}
	if magic := string(b[:4]); magic != Magic {
		return Header{}, fmt.Errorf("%w: %q", ErrInvalidMagic, magic)
	}

	return Header{
		Width:      binary.BigEndian.Uint32(b[4:8]),
		Height:     binary.BigEndian.Uint32(b[8:12]),
		Channels:   parseChannels(b[12]),
		ColorSpace: parseColorSpace(b[13]),
	}, nil
}
