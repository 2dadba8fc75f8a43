package qoi

// Encode returns the QOI stream for pixels, which are in row-major order.
// The header is written as given; callers keep len(pixels) equal to
// h.Width*h.Height.
func Encode(pixels []Pixel, h Header) []byte {
	e := encoder{
		// Worst case is one RGBA opcode per pixel.
		out:   h.Append(make([]byte, 0, headerSize+len(pixels)*5+markerSize)),
		cache: newCache(),
		prev:  OpaqueBlack,
	}

	for _, px := range pixels {
		e.push(px)
		e.prev = px
	}
	e.flushRun()

	return append(e.out, endMarker[:]...)
}

type encoder struct {
	out   []byte
	cache cache
	prev  Pixel
	run   int
}

// push emits the opcode for px, or extends the pending run.
func (e *encoder) push(px Pixel) {
	if px == e.prev {
		e.run++
		if e.run == maxRun {
			e.flushRun()
		}
		return
	}
	e.flushRun()

	slot := px.Hash()
	if e.cache[slot] == px {
		e.out = append(e.out, tagIndex|slot)
		return
	}
	e.cache[slot] = px

	if px.A != e.prev.A {
		e.out = append(e.out, tagRGBA, px.R, px.G, px.B, px.A)
		return
	}

	dr := delta(px.R, e.prev.R)
	dg := delta(px.G, e.prev.G)
	db := delta(px.B, e.prev.B)

	switch {
	case isDiff(dr) && isDiff(dg) && isDiff(db):
		e.out = append(e.out, tagDiff|byte(dr+2)<<4|byte(dg+2)<<2|byte(db+2))
	case isLuma(dg, dr-dg, db-dg):
		drg, dbg := dr-dg, db-dg
		e.out = append(e.out, tagLuma|byte(dg+32), byte(drg+8)<<4|byte(dbg+8))
	default:
		e.out = append(e.out, tagRGB, px.R, px.G, px.B)
	}
}

func (e *encoder) flushRun() {
	if e.run > 0 {
		e.out = append(e.out, tagRun|byte(e.run-1))
		e.run = 0
	}
}

func isDiff(d int32) bool {
	return d >= -2 && d <= 1
}

func isLuma(dg, drg, dbg int32) bool {
	return dg >= -32 && dg <= 31 &&
		drg >= -8 && drg <= 7 &&
		dbg >= -8 && dbg <= 7
}
