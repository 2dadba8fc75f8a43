package qoi

import (
	"math/rand/v2"
	"slices"
	"testing"
)

func solid(w, h int, px Pixel) []Pixel {
	return slices.Repeat([]Pixel{px}, w*h)
}

func gradient(w, h int) []Pixel {
	pixels := make([]Pixel, 0, w*h)
	for y := range h {
		for x := range w {
			pixels = append(pixels, rgb(uint8(x*3), uint8(y*2), uint8(x+y)))
		}
	}
	return pixels
}

func noise(w, h int, seed uint64) []Pixel {
	rng := rand.New(rand.NewPCG(seed, seed))
	pixels := make([]Pixel, w*h)
	for i := range pixels {
		v := rng.Uint32()
		pixels[i] = Pixel{R: uint8(v), G: uint8(v >> 8), B: uint8(v >> 16), A: uint8(v >> 24)}
	}
	return pixels
}

// palette cycles through a few colors so that every repeat is non-adjacent
// and served from the cache.
func palette(w, h int) []Pixel {
	colors := []Pixel{rgb(250, 10, 10), rgb(10, 250, 10), rgb(10, 10, 250), rgb(128, 64, 32), {R: 1, G: 2, B: 3, A: 4}}
	pixels := make([]Pixel, w*h)
	for i := range pixels {
		pixels[i] = colors[(i*7)%len(colors)]
	}
	return pixels
}

func alphaRamp(w, h int) []Pixel {
	pixels := make([]Pixel, w*h)
	for i := range pixels {
		pixels[i] = Pixel{R: 40, G: 80, B: 120, A: uint8(i * 37)}
	}
	return pixels
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		w, h   int
		pixels []Pixel
	}{
		{name: "empty", w: 0, h: 0},
		{name: "1x1", w: 1, h: 1, pixels: []Pixel{{R: 9, G: 8, B: 7, A: 6}}},
		{name: "1x1 seed pixel", w: 1, h: 1, pixels: []Pixel{OpaqueBlack}},
		{name: "solid", w: 37, h: 23, pixels: solid(37, 23, rgb(12, 34, 56))},
		{name: "solid run boundary", w: 62, h: 2, pixels: solid(62, 2, OpaqueBlack)},
		{name: "solid transparent", w: 63, h: 1, pixels: solid(63, 1, TransparentBlack)},
		{name: "gradient", w: 64, h: 48, pixels: gradient(64, 48)},
		{name: "palette", w: 31, h: 17, pixels: palette(31, 17)},
		{name: "alpha", w: 20, h: 20, pixels: alphaRamp(20, 20)},
		{name: "noise", w: 50, h: 50, pixels: noise(50, 50, 7)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, meta := range []Header{
				{Channels: ChannelsRGBA, ColorSpace: ColorSpaceSRGB},
				{Channels: ChannelsRGB, ColorSpace: ColorSpaceLinear},
				{Channels: ChannelsUnknown, ColorSpace: ColorSpaceUnknown},
			} {
				h := Header{Width: uint32(tt.w), Height: uint32(tt.h), Channels: meta.Channels, ColorSpace: meta.ColorSpace}

				got, gotHeader, err := Decode(Encode(tt.pixels, h))
				if err != nil {
					t.Fatalf("Decode(Encode()) error: %v", err)
				}
				if gotHeader != h {
					t.Errorf("header = %+v, want %+v", gotHeader, h)
				}
				if len(got) != len(tt.pixels) {
					t.Fatalf("len(pixels) = %d, want %d", len(got), len(tt.pixels))
				}
				if i := firstDiff(got, tt.pixels); i >= 0 {
					t.Errorf("pixel %d = %v, want %v", i, got[i], tt.pixels[i])
				}
			}
		})
	}
}

func firstDiff(a, b []Pixel) int {
	for i := range min(len(a), len(b)) {
		if a[i] != b[i] {
			return i
		}
	}
	if len(a) != len(b) {
		return min(len(a), len(b))
	}
	return -1
}

func TestRoundTripCacheAliasing(t *testing.T) {
	a := OpaqueBlack
	b := rgb(64, 0, 0)
	if a.Hash() != b.Hash() {
		t.Fatalf("hashes differ: %d, %d", a.Hash(), b.Hash())
	}

	pixels := []Pixel{b, a, b, a, b, rgb(1, 2, 3), a, b}
	h := Header{Width: uint32(len(pixels)), Height: 1}
	data := Encode(pixels, h)

	got, _, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if !slices.Equal(got, pixels) {
		t.Errorf("Decode() = %v, want %v", got, pixels)
	}

	// Each colliding pixel evicts the other, so no INDEX is possible.
	_, counts, err := Analyze(data)
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	if n := counts.Get(OpIndex); n != 0 {
		t.Errorf("INDEX opcodes = %d, want 0", n)
	}
}

func TestRoundTripUsesIndex(t *testing.T) {
	data := Encode(palette(31, 17), Header{Width: 31, Height: 17})

	_, counts, err := Analyze(data)
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	if counts.Get(OpIndex) == 0 {
		t.Error("palette image encoded without INDEX opcodes")
	}
}

func TestDecodeEncodeDecodeStable(t *testing.T) {
	// Wrapped DIFF/LUMA opcodes are never produced by Encode, so the
	// re-encoded bytes differ while the pixels must not.
	h := Header{Width: 6, Height: 1, Channels: ChannelsRGB}
	foreign := stream(h, 0x5a, 0x80, 0x00, 0xc1, 0x35, 0xfe, 1, 2, 3)

	first, h1, err := Decode(foreign)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}

	again := Encode(first, h1)
	second, h2, err := Decode(again)
	if err != nil {
		t.Fatalf("Decode(Encode()) error: %v", err)
	}
	if h2 != h1 {
		t.Errorf("header = %+v, want %+v", h2, h1)
	}
	if !slices.Equal(second, first) {
		t.Errorf("second decode = %v, want %v", second, first)
	}

	third := Encode(second, h2)
	if !slices.Equal(third, again) {
		t.Errorf("canonical encoding not stable:\n% x\n% x", third, again)
	}
}

func BenchmarkEncode(b *testing.B) {
	pixels := gradient(512, 512)
	h := Header{Width: 512, Height: 512, Channels: ChannelsRGB}
	b.SetBytes(int64(len(pixels) * 4))

	for b.Loop() {
		Encode(pixels, h)
	}
}

func BenchmarkDecode(b *testing.B) {
	pixels := gradient(512, 512)
	data := Encode(pixels, Header{Width: 512, Height: 512, Channels: ChannelsRGB})
	b.SetBytes(int64(len(pixels) * 4))

	for b.Loop() {
		if _, _, err := Decode(data); err != nil {
			b.Fatal(err)
		}
	}
}
