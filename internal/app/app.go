// Package app wires a Renderer and its dependencies from a loaded Config.
package app

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/xob0t/QuoteSnap/internal/config"
	"github.com/xob0t/QuoteSnap/internal/logger"
	"github.com/xob0t/QuoteSnap/pkg/fonts"
	"github.com/xob0t/QuoteSnap/pkg/paint"
	"github.com/xob0t/QuoteSnap/pkg/render"
	"github.com/xob0t/QuoteSnap/pkg/template"
)

// Logger builds the process logger described by cfg.Log. The closer must be
// closed on shutdown.
func Logger(cfg *config.Config) (*slog.Logger, io.Closer) {
	return logger.NewLogger(cfg.Log.File, logger.ParseLevel(cfg.Log.Level), cfg.Log.MaxSizeMB)
}

// Fonts builds the font registry described by cfg.Fonts and registers the
// font directory.
func Fonts(cfg *config.Config, log *slog.Logger) *fonts.Registry {
	registry := fonts.NewRegistry(fonts.Options{
		Dir:      cfg.Fonts.Dir,
		Patterns: cfg.Fonts.Patterns,
		Logger:   log,
	})
	registry.Ensure()
	return registry
}

// NewRenderer builds a renderer from cfg and registers its fonts up front.
// Unknown override keys and unreadable fonts are logged as warnings.
func NewRenderer(cfg *config.Config, log *slog.Logger) (*render.Renderer, error) {
	catalog, warnings, err := template.LoadCatalog(cfg.Templates.Overrides)
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	for _, w := range warnings {
		log.Warn(w)
	}

	resolver := paint.NewResolver(paint.ResolverOptions{
		StaticRoot: cfg.Assets.StaticRoot,
		Retries:    cfg.Assets.FetchRetries,
		Timeout:    cfg.FetchTimeout(),
	})
	registry := Fonts(cfg, log)

	return render.New(render.Options{
		Catalog: catalog,
		Fonts:   registry,
		Painter: paint.NewPainter(resolver, log),
		Logger:  log,
	}), nil
}
