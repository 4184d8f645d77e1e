// Package render turns text and a template key into a finished quote card.
//
// A render runs strictly in order: background, fit and layout, text, grain,
// encode. Every render owns its canvas, faces and layout; the only shared
// state is the read-only catalog and the font registry.
package render

import (
	"context"
	"image"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/fogleman/gg"
	"github.com/xob0t/QuoteSnap/pkg/fonts"
	"github.com/xob0t/QuoteSnap/pkg/generator"
	"github.com/xob0t/QuoteSnap/pkg/layout"
	"github.com/xob0t/QuoteSnap/pkg/paint"
	"github.com/xob0t/QuoteSnap/pkg/template"
	"golang.org/x/image/font"
)

// Options configures a Renderer. Nil fields get defaults.
type Options struct {
	Catalog *template.Catalog // default: built-in templates
	Fonts   *fonts.Registry   // default: embedded fonts only
	Painter *paint.Painter    // default: no static root, no retries
	Logger  *slog.Logger
	// Rand returns the random source for one render's grain.
	// Default: a freshly seeded source per render.
	Rand func() *rand.Rand
}

// Renderer renders quote cards. It is safe for concurrent use.
type Renderer struct {
	catalog *template.Catalog
	fonts   *fonts.Registry
	painter *paint.Painter
	logger  *slog.Logger
	rand    func() *rand.Rand
}

// New creates a renderer.
func New(opts Options) *Renderer {
	r := &Renderer{
		catalog: opts.Catalog,
		fonts:   opts.Fonts,
		painter: opts.Painter,
		logger:  opts.Logger,
		rand:    opts.Rand,
	}
	if r.logger == nil {
		r.logger = slog.New(slog.DiscardHandler)
	}
	if r.catalog == nil {
		r.catalog = template.DefaultCatalog()
	}
	if r.fonts == nil {
		r.fonts = fonts.NewRegistry(fonts.Options{Logger: r.logger})
	}
	if r.painter == nil {
		r.painter = paint.NewPainter(paint.NewResolver(paint.ResolverOptions{}), r.logger)
	}
	if r.rand == nil {
		r.rand = func() *rand.Rand { return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())) }
	}
	return r
}

// Catalog returns the templates this renderer serves.
func (r *Renderer) Catalog() *template.Catalog { return r.catalog }

// Render returns the PNG encoding of a 1080×1350 card showing text in the
// template named by key. The key is checked before the text. Failures are *ValidationError, *AssetError or
// *EncodingError, or the context's error if it ends first.
func (r *Renderer) Render(ctx context.Context, text, key string) ([]byte, error) {
	data, _, err := r.RenderDetailed(ctx, text, key)
	return data, err
}

// RenderDetailed is Render that also returns the layout it drew.
func (r *Renderer) RenderDetailed(ctx context.Context, text, key string) ([]byte, layout.Result, error) {
	img, res, err := r.RenderImage(ctx, text, key)
	if err != nil {
		return nil, layout.Result{}, err
	}
	data, err := generator.EncodePNG(img)
	if err != nil {
		return nil, layout.Result{}, &EncodingError{Err: err}
	}
	return data, res, nil
}

// RenderImage draws the card and returns it unencoded.
func (r *Renderer) RenderImage(ctx context.Context, text, key string) (image.Image, layout.Result, error) {
	start := time.Now()

	k, err := template.ParseKey(key)
	if err != nil {
		return nil, layout.Result{}, &ValidationError{Field: "template", Reason: "Unknown template"}
	}
	t, ok := r.catalog.Lookup(k)
	if !ok {
		return nil, layout.Result{}, &ValidationError{Field: "template", Reason: "Unknown template"}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, layout.Result{}, &ValidationError{Field: "text", Reason: "Text is required"}
	}
	if err := ctx.Err(); err != nil {
		return nil, layout.Result{}, err
	}

	r.fonts.Ensure()
	faces := fonts.NewFaceCache(r.fonts.Resolve(t.FontFamily))
	defer faces.Close()

	dc := gg.NewContext(template.CanvasWidth, template.CanvasHeight)
	if err := r.painter.Paint(ctx, dc, t.Background); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, layout.Result{}, ctxErr
		}
		return nil, layout.Result{}, &AssetError{Ref: t.Background.Ref, Err: err}
	}

	params := Params(t)
	res := layout.Fit(text, params, faces)

	face, err := faceAt(faces, res.FontSize)
	if err != nil {
		return nil, layout.Result{}, err
	}
	style := paint.NewTextStyle(face, t, params.MaxLineWidth())
	cx := float64(template.CanvasWidth) / 2
	y := res.StartY
	for _, line := range res.Lines {
		if line != "" {
			paint.DrawLine(dc, style, line, cx, y)
		}
		y += res.LineHeight
	}

	if t.Grain {
		paint.Grain(dc, r.rand())
	}

	r.logger.Debug("card rendered",
		"template", k,
		"kind", res.Kind,
		"font_size", res.FontSize,
		"lines", len(res.Lines),
		"shrunk", res.Shrunk,
		"overflow", res.Overflows(params),
		"duration", time.Since(start),
	)
	return dc.Image(), res, nil
}

type faceSource interface {
	Face(size float64) (font.Face, error)
}

// faceAt returns the drawing face for size. Failures are *EncodingError.
func faceAt(src faceSource, size float64) (font.Face, error) {
	face, err := src.Face(size)
	if err != nil {
		return nil, &EncodingError{Err: err}
	}
	return face, nil
}

// Params maps a template onto layout parameters for the fixed canvas.
func Params(t template.Template) layout.Params {
	return layout.Params{
		CanvasWidth:  template.CanvasWidth,
		CanvasHeight: template.CanvasHeight,
		Padding:      t.Padding,
		QuoteSize:    t.QuoteSize,
		PassageSize:  t.PassageSize,
		LineHeight:   t.LineHeight,
		YOffset:      t.YOffset,
		MinSize:      layout.MinFontSize,
	}
}
