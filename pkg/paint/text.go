// text.go - Centered text lines with width capping and shadows.
package paint

import (
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/xob0t/QuoteSnap/pkg/generator"
	"github.com/xob0t/QuoteSnap/pkg/template"
	"golang.org/x/image/font"
)

// TextStyle holds everything needed to draw one line of card text.
type TextStyle struct {
	Face     font.Face
	Color    color.Color
	Shadow   template.Shadow
	MaxWidth float64 // lines wider than this are condensed horizontally
}

// NewTextStyle parses the template's colors. Invalid colors are black.
func NewTextStyle(face font.Face, t template.Template, maxWidth float64) TextStyle {
	return TextStyle{
		Face:     face,
		Color:    generator.ColorOr(t.TextColor, color.Black),
		Shadow:   t.Shadow,
		MaxWidth: maxWidth,
	}
}

// DrawLine draws line centered horizontally on cx with its middle at cy.
// The shadow, if any, is drawn first.
func DrawLine(dc *gg.Context, st TextStyle, line string, cx, cy float64) {
	dc.SetFontFace(st.Face)
	w, _ := dc.MeasureString(line)
	scale := 1.0
	if st.MaxWidth > 0 && w > st.MaxWidth {
		scale = st.MaxWidth / w
	}

	if sh, ok := visibleShadow(st.Shadow); ok {
		drawShadow(dc, st, sh, line, cx, cy, w*scale, scale)
	}

	dc.SetColor(st.Color)
	drawScaled(dc, line, cx, cy, scale)
}

// shadowSpec is a shadow ready to draw.
type shadowSpec struct {
	dx, dy, sigma float64
	color         color.NRGBA
}

// visibleShadow reports whether a shadow would mark the canvas. A shadow
// with no offset and no blur is hidden under its text, so flat-color
// shadows never draw.
func visibleShadow(s template.Shadow) (shadowSpec, bool) {
	if s.Kind != template.ShadowOffset {
		return shadowSpec{}, false
	}
	c, err := generator.ParseCSSColor(s.Color)
	if err != nil || c.A == 0 {
		return shadowSpec{}, false
	}
	if s.Blur <= 0 && s.OffsetX == 0 && s.OffsetY == 0 {
		return shadowSpec{}, false
	}
	return shadowSpec{dx: s.OffsetX, dy: s.OffsetY, sigma: s.Blur / 2, color: c}, true
}

// drawShadow renders the line into a layer just large enough for the
// blurred glyphs, then composites it under the text position.
func drawShadow(dc *gg.Context, st TextStyle, sh shadowSpec, line string, cx, cy, width, scale float64) {
	m := st.Face.Metrics()
	ascent := float64(m.Ascent) / 64
	descent := float64(m.Descent) / 64
	_, fontHeight := dc.MeasureString(line)
	baseline := cy + fontHeight/2

	margin := math.Ceil(3*sh.sigma) + 2
	left := math.Floor(cx + sh.dx - width/2 - margin)
	top := math.Floor(baseline + sh.dy - ascent - margin)
	lw := int(math.Ceil(width + 2*margin + 1))
	lh := int(math.Ceil(ascent + descent + 2*margin + 1))
	if lw <= 0 || lh <= 0 {
		return
	}

	layer := gg.NewContext(lw, lh)
	layer.SetFontFace(st.Face)
	layer.SetColor(sh.color)
	drawScaled(layer, line, cx+sh.dx-left, cy+sh.dy-top, scale)

	img := layer.Image()
	if sh.sigma > 0 {
		img = imaging.Blur(img, sh.sigma)
	}
	dc.DrawImage(img, int(left), int(top))
}

// drawScaled draws s anchored at its center, squeezed horizontally by sx.
func drawScaled(dc *gg.Context, s string, x, y, sx float64) {
	if sx == 1 {
		dc.DrawStringAnchored(s, x, y, 0.5, 0.5)
		return
	}
	dc.Push()
	dc.Translate(x, y)
	dc.Scale(sx, 1)
	dc.DrawStringAnchored(s, 0, 0, 0.5, 0.5)
	dc.Pop()
}
