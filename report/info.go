// Package report prints stream details and compares QOI against other
// lossless encodings.
package report

import (
	"fmt"
	"log/slog"
	"os"

	"qoitool/convert"
	"qoitool/parallel"
	"qoitool/qoi"

	"github.com/alecthomas/kong"
)

// Info describes an encoded stream.
type Info struct {
	Header qoi.Header
	Size   int
	// Ops is only filled in when the stream was analyzed.
	Ops *qoi.OpCounts
}

// Describe parses the header of data and, with ops set, walks the whole
// stream counting opcodes.
func Describe(data []byte, ops bool) (*Info, error) {
	if !ops {
		h, err := qoi.ParseHeader(data)
		if err != nil {
			return nil, err
		}
		return &Info{Header: h, Size: len(data)}, nil
	}

	h, counts, err := qoi.Analyze(data)
	if err != nil {
		return nil, err
	}
	return &Info{Header: h, Size: len(data), Ops: &counts}, nil
}

// Attrs renders the info as log attributes.
func (i *Info) Attrs() []any {
	attrs := []any{
		"width", i.Header.Width,
		"height", i.Header.Height,
		"channels", i.Header.Channels,
		"colorspace", i.Header.ColorSpace,
		"pixels", i.Header.PixelCount(),
		"bytes", i.Size,
	}
	if i.Ops != nil {
		for k, n := range i.Ops {
			attrs = append(attrs, qoi.OpKind(k).String(), n)
		}
		attrs = append(attrs, "opcodes", i.Ops.Total())
	}
	return attrs
}

type InfoCmd struct {
	Files []string `arg:"" name:"file" help:"QOI files to describe"`
	Ops   bool     `help:"Decode the stream and count opcodes by kind" default:"false"`
}

func (c *InfoCmd) Validate(kctx *kong.Context) error {
	return checkSources(c.Files)
}

func (c *InfoCmd) Run(worker parallel.WorkerFunc, wait parallel.WaitFunc) error {
	return parallel.Batch(worker, wait, c.Files, func(logger *slog.Logger, file string) error {
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("could not read file: %w", err)
		}
		info, err := Describe(data, c.Ops)
		if err != nil {
			return err
		}
		logger.Info("info", info.Attrs()...)
		return nil
	})
}

func checkSources(files []string) error {
	if len(files) == 0 {
		return fmt.Errorf("no files given")
	}
	for _, file := range files {
		if err := convert.CheckSource(file); err != nil {
			return err
		}
	}
	return nil
}
