package qoi

import (
	"bytes"
	"fmt"
)

// Decode parses a complete QOI stream and returns its pixels in row-major
// order together with the header. On error no pixels are returned.
func Decode(data []byte) ([]Pixel, Header, error) {
	d, err := newDecoder(data)
	if err != nil {
		return nil, Header{}, err
	}
	if err := d.decode(); err != nil {
		return nil, Header{}, err
	}
	return d.pixels, d.hdr, nil
}

// Analyze decodes data and reports how many opcodes of each kind it holds.
func Analyze(data []byte) (Header, OpCounts, error) {
	d, err := newDecoder(data)
	if err != nil {
		return Header{}, OpCounts{}, err
	}
	if err := d.decode(); err != nil {
		return Header{}, OpCounts{}, err
	}
	return d.hdr, d.counts, nil
}

type decoder struct {
	data   []byte
	hdr    Header
	want   uint64
	cache  cache
	prev   Pixel
	pixels []Pixel
	counts OpCounts
}

func newDecoder(data []byte) (*decoder, error) {
	hdr, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}

	// A single opcode byte yields at most maxRun pixels, which bounds the
	// allocation for headers that claim more pixels than the stream holds.
	want := hdr.PixelCount()
	capacity := uint64(0)
	if n := len(data) - headerSize - markerSize; n > 0 {
		capacity = min(want, uint64(n)*maxRun)
	}

	return &decoder{
		data:   data,
		hdr:    hdr,
		want:   want,
		cache:  newCache(),
		prev:   OpaqueBlack,
		pixels: make([]Pixel, 0, capacity),
	}, nil
}

func (d *decoder) decode() error {
	limit := len(d.data) - markerSize
	off := headerSize

	for off < limit {
		o, err := readOp(d.data, off, limit)
		if err != nil {
			return err
		}

		px, n := d.apply(o)
		if uint64(len(d.pixels))+uint64(n) > d.want {
			return fmt.Errorf("%w: stream exceeds %d pixels at offset %d", ErrPixelCount, d.want, off)
		}
		for range n {
			d.pixels = append(d.pixels, px)
		}

		d.prev = px
		d.counts[o.kind]++
		off += o.size()
	}

	if tail := d.data[off:]; !bytes.Equal(tail, endMarker[:]) {
		return fmt.Errorf("%w: got % x", ErrPaddingMismatch, tail)
	}
	if got := uint64(len(d.pixels)); got != d.want {
		return fmt.Errorf("%w: got %d, want %d", ErrPixelCount, got, d.want)
	}
	return nil
}

// apply reconstructs the pixel encoded by o and returns it with its repeat
// count. Every opcode except RUN stores its pixel in the cache.
func (d *decoder) apply(o op) (Pixel, int) {
	px := d.prev

	switch o.kind {
	case OpRGB:
		px.R, px.G, px.B = o.payload[0], o.payload[1], o.payload[2]
	case OpRGBA:
		px = Pixel{R: o.payload[0], G: o.payload[1], B: o.payload[2], A: o.payload[3]}
	case OpIndex:
		px = d.cache[o.tag&argMask6]
	case OpDiff:
		px.R = wrapAdd(px.R, int32(o.tag>>4&0x03)-2)
		px.G = wrapAdd(px.G, int32(o.tag>>2&0x03)-2)
		px.B = wrapAdd(px.B, int32(o.tag&0x03)-2)
	case OpLuma:
		dg := int32(o.tag&argMask6) - 32
		drg := int32(o.payload[0]>>4) - 8
		dbg := int32(o.payload[0]&0x0f) - 8
		px.R = wrapAdd(px.R, drg+dg)
		px.G = wrapAdd(px.G, dg)
		px.B = wrapAdd(px.B, dbg+dg)
	case OpRun:
		return px, int(o.tag&argMask6) + 1
	}

	d.cache.store(px)
	return px, 1
}

func wrapAdd(c uint8, d int32) uint8 {
	return uint8(int32(c) + d)
}
