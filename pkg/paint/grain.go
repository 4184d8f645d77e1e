// grain.go - Film-grain overlay.
package paint

import (
	"image"
	"image/color"
	"math"
	"math/rand/v2"

	"github.com/fogleman/gg"
)

// Grain overlay constants.
const (
	GrainDensity = 0.012 // dots per canvas pixel
	GrainGrayMin = 180   // inclusive
	GrainGrayMax = 250   // exclusive
	GrainAlpha   = 0.06
)

// GrainDots returns the number of dots drawn on a w×h canvas.
func GrainDots(w, h int) int {
	return int(math.Floor(float64(w) * float64(h) * GrainDensity))
}

// GrainLayer builds the grain overlay for a w×h canvas: single-pixel
// light-gray dots at uniformly random positions, composited source-over
// onto a transparent layer.
func GrainLayer(w, h int, rng *rand.Rand) *image.NRGBA {
	layer := image.NewNRGBA(image.Rect(0, 0, w, h))
	for range GrainDots(w, h) {
		gray := GrainGrayMin + rng.Float64()*(GrainGrayMax-GrainGrayMin)
		x := int(rng.Float64() * float64(w))
		y := int(rng.Float64() * float64(h))
		blendOver(layer, x, y, gray, GrainAlpha)
	}
	return layer
}

// Grain composites a fresh grain layer over the whole canvas.
func Grain(dc *gg.Context, rng *rand.Rand) {
	dc.DrawImage(GrainLayer(dc.Width(), dc.Height(), rng), 0, 0)
}

// blendOver composites a gray dot of the given alpha over one pixel.
func blendOver(img *image.NRGBA, x, y int, gray, alpha float64) {
	dst := img.NRGBAAt(x, y)
	da := float64(dst.A) / 255
	outA := alpha + da*(1-alpha)
	if outA == 0 {
		return
	}
	mix := func(d uint8) uint8 {
		v := (gray*alpha + float64(d)*da*(1-alpha)) / outA
		return uint8(math.Round(v))
	}
	img.SetNRGBA(x, y, color.NRGBA{
		R: mix(dst.R),
		G: mix(dst.G),
		B: mix(dst.B),
		A: uint8(math.Round(outA * 255)),
	})
}
