package convert

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"qoitool/parallel"
	"qoitool/qoi"

	"github.com/alecthomas/kong"
)

type EncodeCmd struct {
	Sources    []string    `arg:"" name:"source" help:"Images to encode (png, jpeg, gif, bmp, tiff, webp, jp2 or qoi)"`
	Dest       string      `help:"Destination folder. Defaults to the folder of each source"`
	Channels   string      `help:"Channel tag written to the header" enum:"auto,rgb,rgba" default:"auto"`
	ColorSpace string      `help:"Colorspace tag written to the header" name:"colorspace" enum:"srgb,linear" default:"srgb"`
	Force      bool        `help:"Overwrite existing destination files" default:"false"`
	Options    qoi.Options `kong:"-"`
}

func (c *EncodeCmd) Validate(kctx *kong.Context) error {
	if err := validateSources(c.Sources); err != nil {
		return err
	}
	if err := validateDest(&c.Dest); err != nil {
		return err
	}

	switch c.Channels {
	case "auto", "":
		c.Options.Channels = qoi.ChannelsUnknown
	case "rgb":
		c.Options.Channels = qoi.ChannelsRGB
	case "rgba":
		c.Options.Channels = qoi.ChannelsRGBA
	default:
		return fmt.Errorf("invalid channels: %q", c.Channels)
	}

	switch c.ColorSpace {
	case "srgb", "":
		c.Options.ColorSpace = qoi.ColorSpaceSRGB
	case "linear":
		c.Options.ColorSpace = qoi.ColorSpaceLinear
	default:
		return fmt.Errorf("invalid colorspace: %q", c.ColorSpace)
	}

	return nil
}

func (c *EncodeCmd) Run(worker parallel.WorkerFunc, wait parallel.WaitFunc) error {
	if err := makeDest(c.Dest); err != nil {
		return err
	}
	return parallel.Batch(worker, wait, c.Sources, c.encode)
}

func (c *EncodeCmd) encode(logger *slog.Logger, src string) error {
	img, format, err := LoadImage(src)
	if err != nil {
		return err
	}

	enc := qoi.FromImage(img, &c.Options).Encode()
	dir, name := destDir(c.Dest, src), destName(src, "qoi")
	err = writeFile(dir, name, c.Force, func(w io.Writer) error {
		_, err := w.Write(enc.Encoded)
		return err
	})
	if err != nil {
		return fmt.Errorf("could not save image: %w", err)
	}

	logger.Info("encoded", "from", format, "to", filepath.Join(dir, name),
		"width", enc.Width, "height", enc.Height, "channels", enc.Channels,
		"colorspace", enc.ColorSpace, "bytes", len(enc.Encoded))
	return nil
}

func validateSources(sources []string) error {
	if len(sources) == 0 {
		return fmt.Errorf("no source files given")
	}
	for i, src := range sources {
		abs, err := filepath.Abs(src)
		if err != nil {
			return fmt.Errorf("invalid source path %q: %w", src, err)
		}
		if err := CheckSource(abs); err != nil {
			return err
		}
		sources[i] = abs
	}
	return nil
}

func validateDest(dest *string) error {
	if *dest == "" {
		return nil
	}
	abs, err := filepath.Abs(*dest)
	if err != nil {
		return fmt.Errorf("invalid destination path %q: %w", *dest, err)
	}
	*dest = abs
	return nil
}

func makeDest(dest string) error {
	if dest == "" {
		return nil
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return fmt.Errorf("unable to create destination folder %q: %w", dest, err)
	}
	return nil
}
