package convert

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// CheckSource fails unless src is a regular file.
func CheckSource(src string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("cannot stat source file %q: %w", src, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("cannot read non-regular file %q: %s", info.Name(), info.Mode().String())
	}
	return nil
}

func checkDest(dest string, force bool) error {
	info, err := os.Stat(dest)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("cannot stat destination file %q: %w", dest, err)
		}
		return nil
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("cannot overwrite non-regular file %q: %s", info.Name(), info.Mode().String())
	}
	if !force {
		return fmt.Errorf("destination file already exists: %q", info.Name())
	}
	return nil
}

// destName swaps the extension of the source base name for ext.
func destName(src, ext string) string {
	base := filepath.Base(src)
	return strings.TrimSuffix(base, filepath.Ext(base)) + "." + ext
}

// destDir resolves where the output for src goes: dir when set, the
// source's own folder otherwise.
func destDir(dir, src string) string {
	if dir != "" {
		return dir
	}
	return filepath.Dir(src)
}

// writeFile streams write into a temporary file next to the destination
// and renames it into place once everything was flushed.
func writeFile(dir, name string, force bool, write func(io.Writer) error) (err error) {
	dest := filepath.Join(dir, name)
	if err := checkDest(dest, force); err != nil {
		return err
	}

	outFile, err := os.CreateTemp(dir, "."+name+".*")
	if err != nil {
		return fmt.Errorf("could not create temporary destination %q: %w", name, err)
	}
	defer func() {
		if defErr := outFile.Sync(); defErr != nil && err == nil {
			err = fmt.Errorf("could not flush temporary destination %q: %w", name, defErr)
		}
		if defErr := outFile.Close(); defErr != nil && err == nil {
			err = fmt.Errorf("could not close temporary destination %q: %w", name, defErr)
		}

		if err == nil {
			if defErr := os.Rename(outFile.Name(), dest); defErr != nil {
				err = fmt.Errorf("could not rename destination file %q: %w", name, defErr)
			}
		}
		if err != nil {
			os.Remove(outFile.Name())
		}
	}()

	return write(outFile)
}
