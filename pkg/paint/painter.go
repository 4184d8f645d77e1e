// Package paint draws card backgrounds, text lines, shadows and grain onto
// a gg canvas, and loads background images from the static root, the
// network, or data URIs.
package paint

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"

	"github.com/fogleman/gg"
	"github.com/xob0t/QuoteSnap/pkg/generator"
	"github.com/xob0t/QuoteSnap/pkg/template"
)

// Painter fills a canvas with a template background.
// It is safe for concurrent use; each call paints its own canvas.
type Painter struct {
	resolver *Resolver
	logger   *slog.Logger
}

// NewPainter creates a painter that loads images through resolver.
func NewPainter(resolver *Resolver, logger *slog.Logger) *Painter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Painter{resolver: resolver, logger: logger}
}

// Paint covers the whole canvas with bg. Image failures are returned as
// errors; there is no fallback background.
func (p *Painter) Paint(ctx context.Context, dc *gg.Context, bg template.Background) error {
	w, h := float64(dc.Width()), float64(dc.Height())

	switch bg.Kind {
	case template.BackgroundImage:
		if p.resolver == nil {
			return fmt.Errorf("load %s: no asset resolver", bg.Ref)
		}
		asset, err := p.resolver.Load(ctx, bg.Ref)
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		img, err := Decode(asset, dc.Width(), dc.Height())
		if err != nil {
			return fmt.Errorf("%s: %w", bg.Ref, err)
		}
		p.logger.Debug("background loaded", "ref", shortRef(bg.Ref), "svg", asset.SVG, "bytes", len(asset.Data))
		dc.DrawImage(img, 0, 0)

	case template.BackgroundLinearGradient:
		dc.SetFillStyle(LinearGradient(bg.Stops, w, h))
		dc.DrawRectangle(0, 0, w, h)
		dc.Fill()

	case template.BackgroundRadialGradient:
		dc.SetFillStyle(RadialGradient(bg.Stops, w, h))
		dc.DrawRectangle(0, 0, w, h)
		dc.Fill()

	case template.BackgroundSolid:
		dc.SetColor(generator.ColorOr(bg.Color, color.Black))
		dc.DrawRectangle(0, 0, w, h)
		dc.Fill()

	default:
		return fmt.Errorf("unknown background kind %v", bg.Kind)
	}
	return nil
}

// shortRef keeps data URIs out of logs.
func shortRef(ref string) string {
	if len(ref) > 64 {
		return ref[:61] + "..."
	}
	return ref
}
