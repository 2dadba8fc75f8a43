package convert

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"qoitool/parallel"
	"qoitool/qoi"

	"github.com/alecthomas/kong"
)

type DecodeCmd struct {
	Sources []string `arg:"" name:"source" help:"QOI files to decode"`
	Dest    string   `help:"Destination folder. Defaults to the folder of each source"`
	Format  string   `help:"Output format" enum:"png,bmp,tiff,gif,jpeg,jp2" default:"png"`
	Force   bool     `help:"Overwrite existing destination files" default:"false"`
}

func (c *DecodeCmd) Validate(kctx *kong.Context) error {
	if !slices.Contains(Formats, c.Format) {
		return fmt.Errorf("unsupported output format: %s", c.Format)
	}
	if err := validateSources(c.Sources); err != nil {
		return err
	}
	return validateDest(&c.Dest)
}

func (c *DecodeCmd) Run(worker parallel.WorkerFunc, wait parallel.WaitFunc) error {
	if err := makeDest(c.Dest); err != nil {
		return err
	}
	return parallel.Batch(worker, wait, c.Sources, c.decode)
}

func (c *DecodeCmd) decode(logger *slog.Logger, src string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("could not read image: %w", err)
	}

	img, err := qoi.FromBytes(data).Decode()
	if err != nil {
		return fmt.Errorf("could not decode image: %w", err)
	}

	dir, name := destDir(c.Dest, src), destName(src, c.Format)
	err = writeFile(dir, name, c.Force, func(w io.Writer) error {
		return encodeAs(w, img.NRGBA(), c.Format)
	})
	if err != nil {
		return fmt.Errorf("could not save image: %w", err)
	}

	logger.Info("decoded", "to", filepath.Join(dir, name),
		"width", img.Width, "height", img.Height, "channels", img.Channels,
		"colorspace", img.ColorSpace)
	return nil
}
