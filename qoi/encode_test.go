package qoi

import (
	"bytes"
	"math/rand/v2"
	"testing"
)

// stream builds a complete QOI stream from a header and raw opcode bytes.
func stream(h Header, ops ...byte) []byte {
	b := h.Append(nil)
	b = append(b, ops...)
	return append(b, endMarker[:]...)
}

func rgb(r, g, b uint8) Pixel {
	return Pixel{R: r, G: g, B: b, A: 0xff}
}

func TestEncodeOpcodes(t *testing.T) {
	tests := []struct {
		name   string
		pixels []Pixel
		ops    []byte
	}{
		{
			name: "empty",
		},
		{
			name:   "rgb",
			pixels: []Pixel{rgb(10, 20, 30)},
			ops:    []byte{0xfe, 10, 20, 30},
		},
		{
			name:   "rgba on alpha change",
			pixels: []Pixel{{R: 1, G: 2, B: 3, A: 128}},
			ops:    []byte{0xff, 1, 2, 3, 128},
		},
		{
			name:   "rgba even for a small delta",
			pixels: []Pixel{{R: 1, G: 0, B: 0, A: 254}},
			ops:    []byte{0xff, 1, 0, 0, 254},
		},
		{
			name:   "diff",
			pixels: []Pixel{rgb(1, 1, 0), rgb(0, 0, 0)},
			ops:    []byte{0x7e, 0x56},
		},
		{
			name:   "diff range edges",
			pixels: []Pixel{rgb(10, 10, 10), rgb(8, 11, 9), rgb(10, 11, 9)},
			ops:    []byte{0xaa, 0x88, 0x4d, 0xa0, 0xa8},
		},
		{
			name:   "luma",
			pixels: []Pixel{rgb(17, 20, 25)},
			ops:    []byte{0xb4, 0x5d},
		},
		{
			name:   "luma range edges",
			pixels: []Pixel{rgb(100, 100, 100), rgb(138, 131, 123), rgb(98, 99, 98)},
			ops:    []byte{0xfe, 100, 100, 100, 0xbf, 0xf0, 0x80, 0x0f},
		},
		{
			name:   "index",
			pixels: []Pixel{rgb(10, 20, 30), rgb(200, 100, 50), rgb(10, 20, 30)},
			ops:    []byte{0xfe, 10, 20, 30, 0xfe, 200, 100, 50, 0x09},
		},
		{
			name:   "run from seed pixel",
			pixels: []Pixel{OpaqueBlack, OpaqueBlack, OpaqueBlack},
			ops:    []byte{0xc2},
		},
		{
			name:   "run after rgb",
			pixels: []Pixel{rgb(10, 20, 30), rgb(10, 20, 30), rgb(10, 20, 30)},
			ops:    []byte{0xfe, 10, 20, 30, 0xc1},
		},
		{
			name:   "run flushed before next opcode",
			pixels: []Pixel{OpaqueBlack, rgb(1, 1, 0)},
			ops:    []byte{0xc0, 0x7e},
		},
		{
			// The signed remainder makes 0 -> 255 a delta of 255, not -1.
			name:   "no wrapped diff",
			pixels: []Pixel{rgb(255, 0, 0), rgb(0, 0, 0)},
			ops:    []byte{0xfe, 255, 0, 0, 0xfe, 0, 0, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Header{Width: uint32(len(tt.pixels)), Height: 1, Channels: ChannelsRGBA}
			got := Encode(tt.pixels, h)
			want := stream(h, tt.ops...)
			if !bytes.Equal(got, want) {
				t.Errorf("Encode() = % x, want % x", got, want)
			}
		})
	}
}

func TestEncodeRunCap(t *testing.T) {
	tests := []struct {
		n   int
		ops []byte
	}{
		{1, []byte{0xc0}},
		{61, []byte{0xfc}},
		{62, []byte{0xfd}},
		{63, []byte{0xfd, 0xc0}},
		{124, []byte{0xfd, 0xfd}},
		{125, []byte{0xfd, 0xfd, 0xc0}},
	}

	for _, tt := range tests {
		pixels := make([]Pixel, tt.n)
		for i := range pixels {
			pixels[i] = OpaqueBlack
		}
		h := Header{Width: uint32(tt.n), Height: 1}

		got := Encode(pixels, h)
		want := stream(h, tt.ops...)
		if !bytes.Equal(got, want) {
			t.Errorf("Encode(%d identical pixels) = % x, want % x", tt.n, got[headerSize:], want[headerSize:])
		}
	}
}

func TestEncodeNeverEmitsReservedRun(t *testing.T) {
	pixels := make([]Pixel, 10_000)
	for i := range pixels {
		pixels[i] = rgb(9, 9, 9)
	}
	data := Encode(pixels, Header{Width: 100, Height: 100})

	for off := headerSize; off < len(data)-markerSize; {
		o, err := readOp(data, off, len(data)-markerSize)
		if err != nil {
			t.Fatalf("readOp(%d) error: %v", off, err)
		}
		if o.kind == OpRun && o.tag&argMask6 > maxRun-1 {
			t.Fatalf("RUN at offset %d encodes length %d", off, o.tag&argMask6+1)
		}
		off += o.size()
	}
}

// transition is one opcode of an encoded stream with the pixels it moved
// between.
type transition struct {
	kind     OpKind
	prev, px Pixel
}

// transitions walks an encoded stream with the decode engine.
func transitions(t *testing.T, data []byte) []transition {
	t.Helper()

	d, err := newDecoder(data)
	if err != nil {
		t.Fatalf("newDecoder() error: %v", err)
	}

	var res []transition
	limit := len(data) - markerSize
	for off := headerSize; off < limit; {
		o, err := readOp(data, off, limit)
		if err != nil {
			t.Fatalf("readOp(%d) error: %v", off, err)
		}
		px, _ := d.apply(o)
		res = append(res, transition{kind: o.kind, prev: d.prev, px: px})
		d.prev = px
		off += o.size()
	}
	return res
}

func TestEncodeOpcodeFieldRanges(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	pixels := make([]Pixel, 64*64)
	px := OpaqueBlack
	for i := range pixels {
		switch rng.IntN(6) {
		case 0:
			px = Pixel{R: uint8(rng.Uint32()), G: uint8(rng.Uint32()), B: uint8(rng.Uint32()), A: px.A}
		case 1:
			px.A = uint8(rng.Uint32())
		case 2:
			// Stay.
		default:
			dg := rng.IntN(64) - 32
			px.G += uint8(dg)
			px.R += uint8(dg + rng.IntN(20) - 10)
			px.B += uint8(dg + rng.IntN(20) - 10)
		}
		pixels[i] = px
	}

	data := Encode(pixels, Header{Width: 64, Height: 64})
	for i, tr := range transitions(t, data) {
		dr := delta(tr.px.R, tr.prev.R)
		dg := delta(tr.px.G, tr.prev.G)
		db := delta(tr.px.B, tr.prev.B)
		diff := isDiff(dr) && isDiff(dg) && isDiff(db)
		luma := isLuma(dg, dr-dg, db-dg)
		alphaChanged := tr.px.A != tr.prev.A

		switch tr.kind {
		case OpDiff:
			if alphaChanged || !diff {
				t.Errorf("op %d: DIFF from %v to %v", i, tr.prev, tr.px)
			}
		case OpLuma:
			if alphaChanged || diff || !luma {
				t.Errorf("op %d: LUMA from %v to %v", i, tr.prev, tr.px)
			}
		case OpRGB:
			if alphaChanged || diff || luma {
				t.Errorf("op %d: RGB from %v to %v", i, tr.prev, tr.px)
			}
		case OpRGBA:
			if !alphaChanged {
				t.Errorf("op %d: RGBA from %v to %v with unchanged alpha", i, tr.prev, tr.px)
			}
		case OpRun:
			if tr.px != tr.prev {
				t.Errorf("op %d: RUN changed pixel from %v to %v", i, tr.prev, tr.px)
			}
		}
	}
}

func TestDelta(t *testing.T) {
	tests := []struct {
		a, b uint8
		want int32
	}{
		{5, 3, 2},
		{3, 5, -2},
		{0, 255, -255},
		{255, 0, 255},
		{128, 128, 0},
	}

	for _, tt := range tests {
		if got := delta(tt.a, tt.b); got != tt.want {
			t.Errorf("delta(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestPixelHash(t *testing.T) {
	tests := []struct {
		px   Pixel
		want uint8
	}{
		{TransparentBlack, 0},
		{OpaqueBlack, 53},
		{rgb(10, 20, 30), 9},
		{rgb(200, 100, 50), 31},
		{Pixel{R: 255, G: 255, B: 255, A: 255}, (255*3 + 255*5 + 255*7 + 255*11) % 64},
	}

	for _, tt := range tests {
		if got := tt.px.Hash(); got != tt.want {
			t.Errorf("%v.Hash() = %d, want %d", tt.px, got, tt.want)
		}
	}
}
