// face.go - Per-render font face cache and text measurement.
package fonts

import (
	"fmt"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
)

// FaceCache creates faces of one font at the sizes a render asks for.
// Faces are not safe for concurrent use, so neither is a FaceCache; each
// render owns its own.
type FaceCache struct {
	font  *opentype.Font
	faces map[float64]font.Face
}

// NewFaceCache returns an empty cache for f.
func NewFaceCache(f *opentype.Font) *FaceCache {
	return &FaceCache{font: f, faces: make(map[float64]font.Face)}
}

// Face returns the face at size pixels, creating it on first use.
func (c *FaceCache) Face(size float64) (font.Face, error) {
	if face, ok := c.faces[size]; ok {
		return face, nil
	}
	face, err := opentype.NewFace(c.font, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create font face: %w", err)
	}
	c.faces[size] = face
	return face, nil
}

// Measure returns the advance width of text at size in pixels. A face that
// cannot be created measures as zero width.
func (c *FaceCache) Measure(text string, size float64) float64 {
	face, err := c.Face(size)
	if err != nil {
		return 0
	}
	return float64(font.MeasureString(face, text)) / 64
}

// Close releases every cached face.
func (c *FaceCache) Close() error {
	for size, face := range c.faces {
		face.Close()
		delete(c.faces, size)
	}
	return nil
}
