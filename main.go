package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"qoitool/convert"
	"qoitool/parallel"
	"qoitool/report"
	"qoitool/verify"

	"github.com/alecthomas/kong"
)

type CLI struct {
	Workers   int    `help:"Parallel workers, 0 for one per CPU" default:"0" env:"QOI_WORKERS"`
	LogLevel  string `help:"Minimum log level" enum:"debug,info,warn,error" default:"info" env:"QOI_LOG_LEVEL"`
	LogFormat string `help:"Log output format" enum:"text,json" default:"text" env:"QOI_LOG_FORMAT"`

	Encode convert.EncodeCmd `cmd:"" help:"Encode images to QOI"`
	Decode convert.DecodeCmd `cmd:"" help:"Decode QOI images to another format"`
	Check  verify.CheckCmd   `cmd:"" help:"Check that re-encoding QOI files reproduces them byte for byte"`
	Info   report.InfoCmd    `cmd:"" help:"Show QOI header fields and opcode counts"`
	Stats  report.StatsCmd   `cmd:"" help:"Compare QOI against other lossless encodings"`
}

func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	switch format {
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("qoitool"),
		kong.Description("Encode, decode and verify images in the Quite OK Image format."),
		kong.UsageOnError(),
	)

	logger, err := newLogger(os.Stderr, cli.LogLevel, cli.LogFormat)
	kctx.FatalIfErrorf(err)
	slog.SetDefault(logger)

	pool := parallel.Start(cli.Workers)
	slog.Debug("running", "command", kctx.Command(), "workers", pool.Workers())

	err = kctx.Run(pool.Do, pool.Wait)
	if n := pool.Panics(); n > 0 && err == nil {
		err = fmt.Errorf("%d jobs panicked", n)
	}
	kctx.FatalIfErrorf(err)
}
