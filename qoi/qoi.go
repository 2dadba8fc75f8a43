// Package qoi implements a lossless encoder and decoder for the QOI image
// format.
//
// A QOI stream is a 14 byte header, a sequence of opcodes and an 8 byte end
// marker. Each opcode reconstructs one pixel (or a run of identical pixels)
// from the previous pixel and a 64 entry cache of recently seen colors, so
// both directions are a single pass over memory with no compression backend.
//
// Basic usage for decoding:
//
//	data, _ := os.ReadFile("image.qoi")
//	pixels, hdr, err := qoi.Decode(data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Basic usage for encoding:
//
//	data := qoi.Encode(pixels, qoi.Header{Width: w, Height: h, Channels: qoi.ChannelsRGBA})
//
// Importing the package also registers the "qoi" format with the image
// package, so image.Decode understands QOI files.
package qoi

import "errors"

// Magic is the four byte tag every QOI stream starts with.
const Magic = "qoif"

const (
	headerSize = 14
	markerSize = 8

	cacheSize = 64
	maxRun    = 62
)

// endMarker terminates the opcode stream.
var endMarker = [markerSize]byte{0, 0, 0, 0, 0, 0, 0, 1}

// Decode errors. Returned errors wrap one of these and can be tested with
// errors.Is.
var (
	ErrHeaderTooShort     = errors.New("qoi: header too short")
	ErrInvalidMagic       = errors.New("qoi: invalid magic")
	ErrTruncatedStream    = errors.New("qoi: truncated opcode stream")
	ErrUnrecognizedOpcode = errors.New("qoi: unrecognized opcode")
	ErrPaddingMismatch    = errors.New("qoi: end marker mismatch")
	ErrPixelCount         = errors.New("qoi: pixel count does not match image dimensions")
)
