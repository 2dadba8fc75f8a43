package qoi

import "fmt"

// Opcode tags.
const (
	tagIndex = 0b0000_0000 // 00iiiiii
	tagDiff  = 0b0100_0000 // 01rrggbb
	tagLuma  = 0b1000_0000 // 10gggggg rrrrbbbb
	tagRun   = 0b1100_0000 // 11llllll
	tagRGB   = 0b1111_1110 // 11111110 r g b
	tagRGBA  = 0b1111_1111 // 11111111 r g b a

	tagMask2 = 0b1100_0000
	argMask6 = 0b0011_1111
)

// OpKind identifies one of the six pixel reconstruction rules.
type OpKind uint8

const (
	OpIndex OpKind = iota
	OpDiff
	OpLuma
	OpRun
	OpRGB
	OpRGBA

	numOpKinds
)

// String returns the string representation of the opcode kind.
func (k OpKind) String() string {
	switch k {
	case OpIndex:
		return "INDEX"
	case OpDiff:
		return "DIFF"
	case OpLuma:
		return "LUMA"
	case OpRun:
		return "RUN"
	case OpRGB:
		return "RGB"
	case OpRGBA:
		return "RGBA"
	default:
		return "Unknown"
	}
}

// payloadSize is the number of bytes following the tag byte.
func (k OpKind) payloadSize() int {
	switch k {
	case OpLuma:
		return 1
	case OpRGB:
		return 3
	case OpRGBA:
		return 4
	default:
		return 0
	}
}

// OpCounts holds the number of opcodes of each kind in a stream.
type OpCounts [numOpKinds]int

// Get returns the count for k.
func (c *OpCounts) Get(k OpKind) int {
	if k >= numOpKinds {
		return 0
	}
	return c[k]
}

// Total returns the number of opcodes counted.
func (c *OpCounts) Total() int {
	var n int
	for _, v := range c {
		n += v
	}
	return n
}

// op is one decoded opcode: its kind, the tag byte and any payload bytes.
type op struct {
	kind    OpKind
	tag     byte
	payload []byte
}

// classify maps a tag byte to its opcode kind. The 8-bit tags must be tested
// before the 2-bit ones since both share the 11 prefix with RUN.
func classify(b byte) (OpKind, bool) {
	switch b {
	case tagRGB:
		return OpRGB, true
	case tagRGBA:
		return OpRGBA, true
	}

	switch b & tagMask2 {
	case tagIndex:
		return OpIndex, true
	case tagDiff:
		return OpDiff, true
	case tagLuma:
		return OpLuma, true
	case tagRun:
		return OpRun, true
	}
	return 0, false
}

// readOp decodes the opcode at stream[off:]. Payload bytes must lie entirely
// before limit.
func readOp(stream []byte, off, limit int) (op, error) {
	b := stream[off]
	kind, ok := classify(b)
	if !ok {
		return op{}, fmt.Errorf("%w: 0x%02x at offset %d", ErrUnrecognizedOpcode, b, off)
	}

	end := off + 1 + kind.payloadSize()
	if end > limit {
		return op{}, fmt.Errorf("%w: %s at offset %d needs %d bytes, %d left",
			ErrTruncatedStream, kind, off, end-off, limit-off)
	}

	return op{kind: kind, tag: b, payload: stream[off+1 : end]}, nil
}

// size is the number of stream bytes o occupies.
func (o op) size() int {
	return 1 + len(o.payload)
}
