package convert

import (
	"fmt"
	"image"
	"os"

	_ "qoitool/qoi"

	_ "golang.org/x/image/webp"
)

// Decoders for gif, jpeg, png, bmp, tiff and jp2 are registered by the
// encoder imports in save.go.

// LoadImage decodes the image at path with whichever registered format
// matches its leading bytes.
func LoadImage(path string) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("could not open image %q: %w", path, err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, "", fmt.Errorf("could not decode image %q: %w", path, err)
	}
	return img, format, nil
}
