// Package generator encodes rendered cards and parses the CSS colors
// used by template descriptors.
//
// All output follows a unified pipeline: render an image.Image first,
// then encode it in the format named by the output extension.
package generator

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// JPEGQuality is used for ".jpg" and ".jpeg" output.
const JPEGQuality = 92

// Generate writes img to output. The format is inferred from the file extension:
//   - ".png" → PNG image
//   - ".jpg", ".jpeg" → JPEG image
func Generate(output string, img image.Image) error {
	ext := strings.ToLower(filepath.Ext(output))
	if !Supported(ext) {
		return fmt.Errorf("unsupported format %q: use .png, .jpg or .jpeg", ext)
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create %s: %w", output, err)
	}
	if err := Encode(f, img, ext); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Encode writes img to w in the format named by ext (".png", ".jpg" or ".jpeg").
func Encode(w io.Writer, img image.Image, ext string) error {
	switch strings.ToLower(ext) {
	case ".png":
		if err := png.Encode(w, img); err != nil {
			return fmt.Errorf("encode PNG: %w", err)
		}
	case ".jpg", ".jpeg":
		if err := jpeg.Encode(w, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
			return fmt.Errorf("encode JPEG: %w", err)
		}
	default:
		return fmt.Errorf("unsupported format %q: use .png, .jpg or .jpeg", ext)
	}
	return nil
}

// EncodePNG returns img as PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, ".png"); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Supported reports whether ext names an output format.
func Supported(ext string) bool {
	switch strings.ToLower(ext) {
	case ".png", ".jpg", ".jpeg":
		return true
	}
	return false
}
