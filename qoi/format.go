package qoi

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"

	"golang.org/x/image/draw"
)

// init registers the QOI format with the image package.
func init() {
	image.RegisterFormat("qoi", Magic, ReadImage, ReadConfig)
}

// Options holds the encoding options used when converting an image.Image.
type Options struct {
	// Channels is the channel tag written to the header. ChannelsUnknown
	// selects ChannelsRGB for opaque images and ChannelsRGBA otherwise.
	Channels Channels

	// ColorSpace is the colorspace tag written to the header.
	ColorSpace ColorSpace
}

// DefaultOptions returns the default encoding options.
func DefaultOptions() *Options {
	return &Options{
		Channels:   ChannelsUnknown,
		ColorSpace: ColorSpaceSRGB,
	}
}

// ReadImage reads a QOI stream from r and decodes it. The returned image is
// an *Image.
func ReadImage(r io.Reader) (image.Image, error) {
	src, err := Load(r)
	if err != nil {
		return nil, err
	}
	img, err := src.Decode()
	if err != nil {
		return nil, err
	}
	return img, nil
}

// ReadConfig reads only the header from r.
func ReadConfig(r io.Reader) (image.Config, error) {
	var buf [headerSize]byte
	n, err := io.ReadFull(r, buf[:])
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return image.Config{}, fmt.Errorf("qoi: reading header: %w", err)
	}

	h, err := ParseHeader(buf[:n])
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{
		ColorModel: color.NRGBAModel,
		Width:      int(h.Width),
		Height:     int(h.Height),
	}, nil
}

// FromImage converts m into a pixel-form Image.
func FromImage(m image.Image, o *Options) *Image {
	if o == nil {
		o = DefaultOptions()
	}

	b := m.Bounds()
	h := Header{
		Width:      uint32(b.Dx()),
		Height:     uint32(b.Dy()),
		Channels:   o.Channels,
		ColorSpace: o.ColorSpace,
	}

	var pixels []Pixel
	if src, ok := m.(*Image); ok {
		pixels = append([]Pixel(nil), src.Pixels...)
	} else {
		// Drawing goes through premultiplied color, so NRGBA sources are
		// read directly to keep translucent pixels exact.
		dst, ok := m.(*image.NRGBA)
		if !ok {
			dst = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
			draw.Draw(dst, dst.Bounds(), m, b.Min, draw.Src)
		}

		pixels = make([]Pixel, 0, b.Dx()*b.Dy())
		for y := range b.Dy() {
			off := dst.PixOffset(dst.Rect.Min.X, dst.Rect.Min.Y+y)
			row := dst.Pix[off : off+b.Dx()*4]
			for i := 0; i < len(row); i += 4 {
				pixels = append(pixels, Pixel{R: row[i], G: row[i+1], B: row[i+2], A: row[i+3]})
			}
		}
	}

	img := NewImage(h, pixels)
	if img.Channels == ChannelsUnknown {
		img.Channels = ChannelsRGBA
		if img.Opaque() {
			img.Channels = ChannelsRGB
		}
	}
	return img
}

// WriteImage writes m to w in QOI format.
func WriteImage(w io.Writer, m image.Image, o *Options) error {
	enc := FromImage(m, o).Encode()
	if _, err := w.Write(enc.Encoded); err != nil {
		return fmt.Errorf("qoi: writing stream: %w", err)
	}
	return nil
}
