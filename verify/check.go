// Package verify checks that the encoder reproduces existing QOI files
// byte for byte.
package verify

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync/atomic"
	"time"

	"qoitool/parallel"
	"qoitool/qoi"

	"github.com/alecthomas/kong"
)

var errMismatch = errors.New("re-encoded stream differs")

// Result describes one decode-encode cycle.
type Result struct {
	Header     qoi.Header
	DecodeTime time.Duration
	EncodeTime time.Duration

	Size          int
	ReencodedSize int

	// Mismatch is the offset of the first differing byte, -1 when the
	// streams are identical.
	Mismatch int
	// Original and Reencoded hold the bytes around Mismatch.
	Original  []byte
	Reencoded []byte

	// Stable reports whether decoding the re-encoded stream gives the same
	// pixels as decoding the original.
	Stable bool
}

// Identical reports whether the re-encoded stream equals the original.
func (r *Result) Identical() bool {
	return r.Mismatch < 0
}

// Check decodes data, encodes the pixels again and compares both streams.
// window bounds how many bytes on each side of the first mismatch are kept.
func Check(data []byte, window int) (*Result, error) {
	start := time.Now()
	pixels, h, err := qoi.Decode(data)
	if err != nil {
		return nil, err
	}
	r := &Result{Header: h, DecodeTime: time.Since(start), Size: len(data)}

	start = time.Now()
	encoded := qoi.Encode(pixels, h)
	r.EncodeTime = time.Since(start)
	r.ReencodedSize = len(encoded)

	r.Mismatch = FirstMismatch(data, encoded)
	if r.Mismatch >= 0 {
		r.Original = around(data, r.Mismatch, window)
		r.Reencoded = around(encoded, r.Mismatch, window)
	}

	again, h2, err := qoi.Decode(encoded)
	r.Stable = err == nil && h2 == h && slices.Equal(again, pixels)
	return r, nil
}

// FirstMismatch returns the offset of the first byte where a and b differ,
// the length of the shorter one if it is a prefix of the other, or -1 if
// they are equal.
func FirstMismatch(a, b []byte) int {
	n := min(len(a), len(b))
	for i := range n {
		if a[i] != b[i] {
			return i
		}
	}
	if len(a) != len(b) {
		return n
	}
	return -1
}

func around(b []byte, i, window int) []byte {
	lo := max(i-window, 0)
	hi := min(i+window, len(b))
	if lo >= hi {
		return nil
	}
	return b[lo:hi]
}

type CheckCmd struct {
	Pattern string `arg:"" optional:"" help:"Glob matching the QOI files to check" default:"qoi_test_images/*.qoi"`
	Window  int    `help:"Bytes shown on each side of the first mismatch" default:"10"`
}

func (c *CheckCmd) Validate(kctx *kong.Context) error {
	if c.Window < 0 {
		return fmt.Errorf("invalid window: %d", c.Window)
	}
	if _, err := filepath.Match(c.Pattern, ""); err != nil {
		return fmt.Errorf("invalid pattern %q: %w", c.Pattern, err)
	}
	return nil
}

func (c *CheckCmd) Run(worker parallel.WorkerFunc, wait parallel.WaitFunc) error {
	files, err := filepath.Glob(c.Pattern)
	if err != nil {
		return fmt.Errorf("invalid pattern %q: %w", c.Pattern, err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no files match %q", c.Pattern)
	}

	var passed atomic.Int64
	err = parallel.Batch(worker, wait, files, func(logger *slog.Logger, file string) error {
		if err := c.check(logger, file); err != nil {
			return err
		}
		passed.Add(1)
		return nil
	})

	slog.Info(fmt.Sprintf("%d out of %d files passed", passed.Load(), len(files)))
	return err
}

func (c *CheckCmd) check(logger *slog.Logger, file string) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("could not read file: %w", err)
	}

	r, err := Check(data, c.Window)
	if err != nil {
		return fmt.Errorf("could not decode file: %w", err)
	}

	logger.Info("decoded", "elapsed", r.DecodeTime, "width", r.Header.Width, "height", r.Header.Height)
	logger.Info("encoded", "elapsed", r.EncodeTime)
	if !r.Stable {
		logger.Warn("decoding the re-encoded stream changed the pixels")
	}

	if r.Identical() {
		logger.Info("PASS")
		return nil
	}

	logger.Warn("FAIL", "offset", r.Mismatch,
		"original", fmt.Sprintf("% x", r.Original),
		"reencoded", fmt.Sprintf("% x", r.Reencoded),
		"original_size", r.Size, "reencoded_size", r.ReencodedSize)
	return errMismatch
}
