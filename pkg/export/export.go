// Package export writes rendered frames to image files.
package export

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/bmp"
)

// ErrUnsupportedFormat is returned for output formats with no encoder.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Format names an output encoding.
type Format string

const (
	FormatPNG  Format = "png"
	FormatWebP Format = "webp"
	FormatBMP  Format = "bmp"
)

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	switch Format(ext) {
	case FormatPNG, FormatWebP, FormatBMP:
		return Format(ext), nil
	}
	return "", fmt.Errorf("%q: %w", ext, ErrUnsupportedFormat)
}

// Encode writes img to w in the given format.
func Encode(w io.Writer, format Format, img image.Image) error {
	switch format {
	case FormatPNG:
		return png.Encode(w, img)
	case FormatWebP:
		return nativewebp.Encode(w, img, nil)
	case FormatBMP:
		return bmp.Encode(w, img)
	}
	return fmt.Errorf("%q: %w", format, ErrUnsupportedFormat)
}

// Save writes img to path, choosing the encoder from the extension. A
// failed encode removes the partial file.
func Save(path string, img image.Image) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	f, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if err := Encode(f, format, img); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("%s encode: %w", format, err)
	}
	return f.Close()
}
