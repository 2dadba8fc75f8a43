package convert

import (
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"sync"

	"github.com/mrjoshuak/go-jpeg2000"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// Formats lists the output formats accepted by encodeAs.
var Formats = []string{"png", "bmp", "tiff", "gif", "jpeg", "jp2"}

func encodeAs(w io.Writer, img image.Image, format string) error {
	var err error
	switch format {
	case "gif":
		err = gif.Encode(w, img, nil)
	case "jpeg":
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: 100})
	case "png":
		err = PNGEncoder(png.BestCompression).Encode(w, img)
	case "bmp":
		err = bmp.Encode(w, img)
	case "tiff":
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	case "jp2":
		err = jpeg2000.Encode(w, img, LosslessJP2())
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
	if err != nil {
		return fmt.Errorf("could not encode %s: %w", format, err)
	}
	return nil
}

// LosslessJP2 returns JPEG 2000 options using the reversible 5-3 wavelet.
func LosslessJP2() *jpeg2000.Options {
	o := jpeg2000.DefaultOptions()
	o.Lossless = true
	return o
}

// PNGEncoder returns an encoder sharing the package buffer pool.
func PNGEncoder(level png.CompressionLevel) *png.Encoder {
	return &png.Encoder{CompressionLevel: level, BufferPool: pngPool}
}

type pngEncoderBufferPool struct {
	pool sync.Pool
}

func (p *pngEncoderBufferPool) Get() *png.EncoderBuffer {
	return p.pool.Get().(*png.EncoderBuffer)
}

func (p *pngEncoderBufferPool) Put(buf *png.EncoderBuffer) {
	p.pool.Put(buf)
}

var pngPool = &pngEncoderBufferPool{
	pool: sync.Pool{
		New: func() any {
			return &png.EncoderBuffer{}
		},
	},
}
