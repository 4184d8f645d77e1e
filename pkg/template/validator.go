// validator.go - Template sanity checks and override validation.
package template

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/xob0t/QuoteSnap/pkg/generator"
	"github.com/xob0t/QuoteSnap/pkg/layout"
)

// Validate checks that a template can be laid out on the fixed canvas.
func Validate(t Template) error {
	var errs []error
	if t.QuoteSize < layout.MinFontSize {
		errs = append(errs, fmt.Errorf("quote size %v is below the %dpx floor", t.QuoteSize, layout.MinFontSize))
	}
	if t.PassageSize < layout.MinFontSize {
		errs = append(errs, fmt.Errorf("passage size %v is below the %dpx floor", t.PassageSize, layout.MinFontSize))
	}
	if t.Padding < 0 || 2*t.Padding >= CanvasWidth || 2*t.Padding >= CanvasHeight {
		errs = append(errs, fmt.Errorf("padding %v leaves no room on a %dx%d canvas", t.Padding, CanvasWidth, CanvasHeight))
	}
	if t.LineHeight <= 0 {
		errs = append(errs, fmt.Errorf("line height %v must be positive", t.LineHeight))
	}
	if strings.TrimSpace(t.TextColor) == "" {
		errs = append(errs, errors.New("text color is required"))
	}
	if strings.TrimSpace(t.BackgroundSpec) == "" {
		errs = append(errs, errors.New("background is required"))
	}
	if bg := ParseBackground(t.BackgroundSpec); bg.Kind == BackgroundLinearGradient || bg.Kind == BackgroundRadialGradient {
		for _, stop := range bg.Stops {
			if _, err := generator.ParseCSSColor(stop); err != nil {
				errs = append(errs, fmt.Errorf("gradient stop: %w", err))
			}
		}
	}
	return errors.Join(errs...)
}

// ValidateOverrides reports override entries that name unknown templates.
// Returns warnings (never fatal errors); unknown entries are ignored.
func ValidateOverrides(overrides map[string]Override) []string {
	var warnings []string
	for name := range overrides {
		if _, err := ParseKey(name); err != nil {
			warnings = append(warnings, fmt.Sprintf("overrides reference unknown template %q, ignored", name))
		}
	}
	sort.Strings(warnings)
	return warnings
}

// FormatCatalog returns a human-readable listing of the catalog.
func FormatCatalog(c *Catalog) string {
	var b strings.Builder
	b.WriteString("Templates:\n")
	for _, t := range c.List() {
		fmt.Fprintf(&b, "\n  [%s] %s\n", t.Key, t.Label)
		fmt.Fprintf(&b, "    %-12s %s\n", "font:", t.FontFamily)
		fmt.Fprintf(&b, "    %-12s quote %gpx, passage %gpx, line height %g\n", "sizes:", t.QuoteSize, t.PassageSize, t.LineHeight)
		fmt.Fprintf(&b, "    %-12s %s (%s)\n", "background:", t.BackgroundSpec, t.Background.Kind)
		if t.Grain {
			fmt.Fprintf(&b, "    %-12s on\n", "grain:")
		}
	}
	return b.String()
}
