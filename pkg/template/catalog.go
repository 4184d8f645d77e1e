// catalog.go - Built-in templates and the immutable catalog.
package template

import "fmt"

// Builtins returns fresh copies of the built-in templates, unparsed.
func Builtins() map[Key]Template {
	return map[Key]Template{
		Typewriter: {
			Key:            Typewriter,
			Label:          "Typewriter",
			FontFamily:     "'Special Elite', 'Courier New', monospace, 'Inter', sans-serif",
			QuoteSize:      64,
			PassageSize:    48,
			TextColor:      "#2d1a0f",
			BackgroundSpec: "/textures/old-paper.png",
			ShadowSpec:     "0px 1px 0px rgba(0, 0, 0, 0.25)",
			Padding:        150,
			LineHeight:     1.5,
			Grain:          true,
		},
		Cosmic: {
			Key:            Cosmic,
			Label:          "Cosmic Night",
			FontFamily:     "'Inter', 'Noto Sans', 'Helvetica Neue', Arial, sans-serif",
			QuoteSize:      70,
			PassageSize:    54,
			TextColor:      "#f5f6f8",
			BackgroundSpec: "/textures/space-field.svg",
			ShadowSpec:     "0px 14px 36px rgba(8, 9, 15, 0.6)",
			Padding:        170,
			LineHeight:     1.42,
		},
		Nebula: {
			Key:            Nebula,
			Label:          "Golden Roost",
			FontFamily:     "'Playfair Display', 'Times New Roman', serif, 'Inter', sans-serif",
			QuoteSize:      72,
			PassageSize:    56,
			TextColor:      "#1e140a",
			BackgroundSpec: "/textures/pigeon-branch.svg",
			ShadowSpec:     "0px 10px 22px rgba(90, 70, 40, 0.3)",
			Padding:        170,
			LineHeight:     1.5,
			YOffset:        -60,
		},
		Cloudy: {
			Key:            Cloudy,
			Label:          "Dried Leaves",
			FontFamily:     "'Playfair Display', 'Times New Roman', serif, 'Inter', sans-serif",
			QuoteSize:      68,
			PassageSize:    52,
			TextColor:      "#2e241c",
			BackgroundSpec: "/textures/dried-leaves.svg",
			ShadowSpec:     "0px 10px 24px rgba(80, 65, 50, 0.35)",
			Padding:        170,
			LineHeight:     1.46,
			Grain:          true,
		},
	}
}

// Catalog is a read-only lookup table of parsed templates.
// It is safe for concurrent use.
type Catalog struct {
	templates map[Key]Template
}

// NewCatalog parses and validates the given templates. Every key in Keys
// must be present.
func NewCatalog(templates map[Key]Template) (*Catalog, error) {
	parsed := make(map[Key]Template, len(templates))
	for _, k := range Keys {
		t, ok := templates[k]
		if !ok {
			return nil, fmt.Errorf("template %q: missing", k)
		}
		t.Key = k
		if err := Validate(t); err != nil {
			return nil, fmt.Errorf("template %q: %w", k, err)
		}
		t.Background = ParseBackground(t.BackgroundSpec)
		t.Shadow = ParseShadow(t.ShadowSpec)
		parsed[k] = t
	}
	return &Catalog{templates: parsed}, nil
}

// DefaultCatalog builds the catalog of built-in templates.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(Builtins())
	if err != nil {
		panic(fmt.Errorf("built-in templates: %w", err))
	}
	return c
}

// Lookup returns a copy of the template for key.
func (c *Catalog) Lookup(key Key) (Template, bool) {
	t, ok := c.templates[key]
	if !ok {
		return Template{}, false
	}
	return t.clone(), true
}

// List returns copies of all templates in display order.
func (c *Catalog) List() []Template {
	out := make([]Template, 0, len(Keys))
	for _, k := range Keys {
		out = append(out, c.templates[k].clone())
	}
	return out
}
