// gradient.go - Gradient stop defaults, spacing, and construction.
package paint

import (
	"image/color"

	"github.com/fogleman/gg"
	"github.com/xob0t/QuoteSnap/pkg/generator"
)

// DefaultStops replace a gradient descriptor with no recognisable colors.
var DefaultStops = []string{"#e8efff", "#f6f8fd"}

// Radial gradient geometry as fractions of the canvas.
const (
	RadialInnerX = 0.4  // of width
	RadialInnerY = 0.35 // of height
	RadialInnerR = 0.05 // of width
	RadialOuterR = 0.9  // of width; the outer circle is centered
)

// StopsOrDefault returns stops, or DefaultStops when stops is empty.
func StopsOrDefault(stops []string) []string {
	if len(stops) == 0 {
		return DefaultStops
	}
	return stops
}

// StopOffsets spaces n stops evenly over [0, 1]. A single stop sits at 0.
func StopOffsets(n int) []float64 {
	offsets := make([]float64, n)
	step := 1 / float64(max(n-1, 1))
	for i := range offsets {
		offsets[i] = min(float64(i)*step, 1)
	}
	return offsets
}

// LinearGradient runs top to bottom over a w×h canvas.
func LinearGradient(stops []string, w, h float64) gg.Gradient {
	g := gg.NewLinearGradient(0, 0, 0, h)
	addStops(g, stops)
	return g
}

// RadialGradient runs from a small off-center circle to a large centered one.
func RadialGradient(stops []string, w, h float64) gg.Gradient {
	g := gg.NewRadialGradient(
		w*RadialInnerX, h*RadialInnerY, w*RadialInnerR,
		w/2, h/2, w*RadialOuterR,
	)
	addStops(g, stops)
	return g
}

func addStops(g gg.Gradient, stops []string) {
	stops = StopsOrDefault(stops)
	for i, off := range StopOffsets(len(stops)) {
		g.AddColorStop(off, generator.ColorOr(stops[i], color.Transparent))
	}
}
