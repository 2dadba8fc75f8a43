package qoi

import "image/color"

// Pixel is a non-premultiplied 8-bit RGBA value.
type Pixel struct {
	R, G, B, A uint8
}

var (
	// OpaqueBlack seeds the previous pixel of every encode and decode, and is
	// returned by out-of-range lookups.
	OpaqueBlack = Pixel{A: 0xff}
	// TransparentBlack seeds every cache slot.
	TransparentBlack = Pixel{}
)

// Hash returns the cache slot of p. Distinct pixels may share a slot.
func (p Pixel) Hash() uint8 {
	return (p.R*3 + p.G*5 + p.B*7 + p.A*11) % cacheSize
}

// NRGBA returns p as a color.NRGBA.
func (p Pixel) NRGBA() color.NRGBA {
	return color.NRGBA{R: p.R, G: p.G, B: p.B, A: p.A}
}

// RGBA implements color.Color.
func (p Pixel) RGBA() (r, g, b, a uint32) {
	return p.NRGBA().RGBA()
}

// cache holds the most recent pixel stored in each hash slot. Encoder and
// decoder evolve their caches in lockstep, which is what makes INDEX opcodes
// valid despite slot collisions.
type cache [cacheSize]Pixel

func newCache() cache {
	var c cache
	for i := range c {
		c[i] = TransparentBlack
	}
	return c
}

func (c *cache) store(p Pixel) {
	c[p.Hash()] = p
}

// delta is the channel difference a-b as a signed remainder. It is never
// folded into [0,256), so 0-255 is -255 rather than 1.
func delta(a, b uint8) int32 {
	return (int32(a) - int32(b)) % 256
}
