// fit.go - Font sizing, overflow shrink, and vertical centering.
package layout

import "math"

// MinFontSize is the hard floor for the resolved font size, in pixels.
const MinFontSize = 26

// Measurer measures text width at a given font size in pixels.
type Measurer interface {
	Measure(text string, size float64) float64
}

// MeasurerFunc adapts a plain function to Measurer.
type MeasurerFunc func(text string, size float64) float64

func (f MeasurerFunc) Measure(text string, size float64) float64 { return f(text, size) }

// Params carries the template and canvas values the engine needs.
type Params struct {
	CanvasWidth  float64
	CanvasHeight float64
	Padding      float64
	QuoteSize    float64
	PassageSize  float64
	LineHeight   float64 // multiplier of the font size
	YOffset      float64
	MinSize      float64 // defaults to MinFontSize when zero
}

// MaxLineWidth is the horizontal budget inside the padding.
func (p Params) MaxLineWidth() float64 { return p.CanvasWidth - 2*p.Padding }

// MaxBlockHeight is the vertical budget inside the padding.
func (p Params) MaxBlockHeight() float64 { return p.CanvasHeight - 2*p.Padding }

// Result is the outcome of one fit pass. It is owned by the caller.
type Result struct {
	Kind        Kind
	Lines       []string
	FontSize    float64
	LineHeight  float64
	TotalHeight float64
	// StartY is the vertical center of the first line.
	StartY float64
	// Shrunk reports whether the single shrink-and-rewrap pass ran.
	Shrunk bool
}

// Overflows reports whether the block is taller than the padded canvas.
// This can remain true after the shrink pass once the floor is reached.
func (r Result) Overflows(p Params) bool { return r.TotalHeight > p.MaxBlockHeight() }

// Fit lays text out for the given params.
//
// The text is wrapped at the base size for its Kind. If the block is taller
// than the vertical budget, the size is scaled by budget/height (floored and
// clamped to the minimum) and the text is re-wrapped once at the new size.
// No further iterations run; any remaining overflow is accepted.
func Fit(text string, p Params, m Measurer) Result {
	minSize := p.MinSize
	if minSize <= 0 {
		minSize = MinFontSize
	}

	kind := Classify(text)
	size := p.QuoteSize
	if kind == KindPassage {
		size = p.PassageSize
	}

	maxWidth := p.MaxLineWidth()
	maxHeight := p.MaxBlockHeight()

	res := wrapAt(text, size, maxWidth, p.LineHeight, m)
	res.Kind = kind

	if res.TotalHeight > maxHeight {
		scale := maxHeight / res.TotalHeight
		shrunk := math.Max(minSize, math.Floor(size*scale))
		res = wrapAt(text, shrunk, maxWidth, p.LineHeight, m)
		res.Kind = kind
		res.Shrunk = true
	}

	res.StartY = p.CanvasHeight/2 - res.TotalHeight/2 + res.LineHeight/2 + p.YOffset
	return res
}

func wrapAt(text string, size, maxWidth, lineHeight float64, m Measurer) Result {
	lines := Wrap(func(s string) float64 { return m.Measure(s, size) }, text, maxWidth)
	lh := size * lineHeight
	return Result{
		Lines:       lines,
		FontSize:    size,
		LineHeight:  lh,
		TotalHeight: float64(len(lines)) * lh,
	}
}
