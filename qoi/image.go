package qoi

import (
	"fmt"
	"image"
	"image/color"
	"io"
)

// Image holds an image in encoded form, decoded form, or both. The two forms
// are not kept in sync: Encode and Decode are one-shot conversions that
// return a new Image.
//
// Pixels are row-major; the pixel at (x, y) is Pixels[y*Width+x].
type Image struct {
	Header

	// Encoded is the QOI stream, or nil if the image was built from pixels.
	Encoded []byte
	// Pixels is the decoded pixel sequence, or nil if the image was loaded
	// from bytes and not decoded yet.
	Pixels []Pixel
}

var _ image.Image = (*Image)(nil)

// FromBytes wraps an encoded stream. Header fields are filled in when the
// stream starts with a valid header; validation is left to Decode.
func FromBytes(data []byte) *Image {
	img := &Image{Encoded: data}
	if h, err := ParseHeader(data); err == nil {
		img.Header = h
	}
	return img
}

// Load reads an encoded stream from r.
func Load(r io.Reader) (*Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("qoi: reading stream: %w", err)
	}
	return FromBytes(data), nil
}

// NewImage wraps a pixel sequence. len(pixels) should equal
// h.Width*h.Height.
func NewImage(h Header, pixels []Pixel) *Image {
	return &Image{Header: h, Pixels: pixels}
}

// Encode returns a new Image whose Encoded field holds the stream for the
// receiver's pixels.
func (img *Image) Encode() *Image {
	return &Image{
		Header:  img.Header,
		Encoded: Encode(img.Pixels, img.Header),
		Pixels:  img.Pixels,
	}
}

// Decode returns a new Image whose Pixels and Header come from the
// receiver's encoded stream. It returns nil and an error if the stream is
// malformed.
func (img *Image) Decode() (*Image, error) {
	pixels, h, err := Decode(img.Encoded)
	if err != nil {
		return nil, err
	}
	return &Image{
		Header:  h,
		Encoded: img.Encoded,
		Pixels:  pixels,
	}, nil
}

// Get returns the pixel at (x, y), or OpaqueBlack when (x, y) lies outside
// the image or the image holds no pixels.
func (img *Image) Get(x, y int) Pixel {
	if x < 0 || y < 0 || uint64(x) >= uint64(img.Width) || uint64(y) >= uint64(img.Height) {
		return OpaqueBlack
	}
	i := uint64(y)*uint64(img.Width) + uint64(x)
	if i >= uint64(len(img.Pixels)) {
		return OpaqueBlack
	}
	return img.Pixels[i]
}

// ColorModel implements image.Image.
func (img *Image) ColorModel() color.Model {
	return color.NRGBAModel
}

// Bounds implements image.Image.
func (img *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, int(img.Width), int(img.Height))
}

// At implements image.Image.
func (img *Image) At(x, y int) color.Color {
	return img.Get(x, y).NRGBA()
}

// Opaque reports whether every pixel has full alpha.
func (img *Image) Opaque() bool {
	for _, px := range img.Pixels {
		if px.A != 0xff {
			return false
		}
	}
	return true
}

// MarshalBinary implements encoding.BinaryMarshaler. It encodes the pixels
// when the image has any, and returns the existing stream otherwise.
func (img *Image) MarshalBinary() ([]byte, error) {
	if img.Pixels == nil && img.Encoded != nil {
		return img.Encoded, nil
	}
	return Encode(img.Pixels, img.Header), nil
}

// NRGBA copies the pixels into a new *image.NRGBA.
func (img *Image) NRGBA() *image.NRGBA {
	dst := image.NewNRGBA(img.Bounds())
	n := min(len(img.Pixels), len(dst.Pix)/4)
	for i, px := range img.Pixels[:n] {
		p := dst.Pix[i*4 : i*4+4 : i*4+4]
		p[0], p[1], p[2], p[3] = px.R, px.G, px.B, px.A
	}
	return dst
}
