package report

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"sync"
	"time"

	"qoitool/convert"
	"qoitool/parallel"
	"qoitool/qoi"

	"github.com/alecthomas/kong"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/mrjoshuak/go-jpeg2000"
)

// Sizes holds the encoded size of one image in several lossless formats.
// Raw is the bare pixel data with the channel count QOI would use.
type Sizes struct {
	Width, Height int

	Raw  int
	QOI  int
	PNG  int
	Zlib int
	Zstd int
	// JP2 is zero when JPEG 2000 was skipped.
	JP2 int

	EncodeTime time.Duration
	DecodeTime time.Duration
}

// Ratio returns size relative to the raw pixel data.
func (s *Sizes) Ratio(size int) float64 {
	if s.Raw == 0 {
		return 0
	}
	return float64(size) / float64(s.Raw)
}

var zstdEncoder = sync.OnceValues(func() (*zstd.Encoder, error) {
	return zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
})

// Measure encodes img with every format and records the sizes.
func Measure(img image.Image, withJP2 bool) (*Sizes, error) {
	src := qoi.FromImage(img, nil)
	s := &Sizes{Width: int(src.Width), Height: int(src.Height)}

	start := time.Now()
	enc := src.Encode()
	s.EncodeTime = time.Since(start)
	s.QOI = len(enc.Encoded)

	start = time.Now()
	if _, err := enc.Decode(); err != nil {
		return nil, fmt.Errorf("could not decode own stream: %w", err)
	}
	s.DecodeTime = time.Since(start)

	raw := rawBytes(src)
	s.Raw = len(raw)

	var buf bytes.Buffer
	if err := convert.PNGEncoder(png.BestCompression).Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("could not encode PNG: %w", err)
	}
	s.PNG = buf.Len()

	buf.Reset()
	zw, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(raw); err != nil {
		return nil, fmt.Errorf("could not compress zlib: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("could not compress zlib: %w", err)
	}
	s.Zlib = buf.Len()

	zenc, err := zstdEncoder()
	if err != nil {
		return nil, fmt.Errorf("could not create zstd encoder: %w", err)
	}
	s.Zstd = len(zenc.EncodeAll(raw, nil))

	if withJP2 {
		buf.Reset()
		if err := jpeg2000.Encode(&buf, img, convert.LosslessJP2()); err != nil {
			return nil, fmt.Errorf("could not encode JPEG 2000: %w", err)
		}
		s.JP2 = buf.Len()
	}

	return s, nil
}

// rawBytes flattens the pixels, dropping alpha for RGB images.
func rawBytes(img *qoi.Image) []byte {
	n := 4
	if img.Channels == qoi.ChannelsRGB {
		n = 3
	}
	raw := make([]byte, 0, len(img.Pixels)*n)
	for _, px := range img.Pixels {
		raw = append(raw, px.R, px.G, px.B)
		if n == 4 {
			raw = append(raw, px.A)
		}
	}
	return raw
}

type StatsCmd struct {
	Sources []string `arg:"" name:"source" help:"Images to measure"`
	JP2     bool     `name:"jp2" help:"Include JPEG 2000 lossless, which is slow on large images" default:"true" negatable:""`
}

func (c *StatsCmd) Validate(kctx *kong.Context) error {
	return checkSources(c.Sources)
}

func (c *StatsCmd) Run(worker parallel.WorkerFunc, wait parallel.WaitFunc) error {
	return parallel.Batch(worker, wait, c.Sources, func(logger *slog.Logger, file string) error {
		img, format, err := convert.LoadImage(file)
		if err != nil {
			return err
		}
		s, err := Measure(img, c.JP2)
		if err != nil {
			return err
		}

		logger.Info("sizes", "format", format, "width", s.Width, "height", s.Height,
			"raw", s.Raw, "qoi", s.QOI, "png", s.PNG, "zlib", s.Zlib, "zstd", s.Zstd, "jp2", s.JP2,
			"qoi_ratio", fmt.Sprintf("%.3f", s.Ratio(s.QOI)),
			"png_ratio", fmt.Sprintf("%.3f", s.Ratio(s.PNG)))
		logger.Info("timing", "encode", s.EncodeTime, "decode", s.DecodeTime)
		return nil
	})
}
