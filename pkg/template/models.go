// Package template provides the closed set of quote-card templates and the
// parsing of their background and shadow descriptors.
package template

import (
	"fmt"
	"slices"
)

// ── Canvas ──

// Canvas dimensions are fixed for every template and every render.
const (
	CanvasWidth  = 1080
	CanvasHeight = 1350
)

// ── Keys ──

// Key identifies one of the built-in templates.
type Key string

const (
	Typewriter Key = "typewriter"
	Cosmic     Key = "cosmic"
	Nebula     Key = "nebula"
	Cloudy     Key = "cloudy"
)

// Keys lists every template key in display order.
var Keys = []Key{Typewriter, Cosmic, Nebula, Cloudy}

// ParseKey returns the Key named by s, or an error if s is not a known template.
func ParseKey(s string) (Key, error) {
	k := Key(s)
	if !slices.Contains(Keys, k) {
		return "", fmt.Errorf("unknown template %q", s)
	}
	return k, nil
}

// ── Template ──

// Template is the full visual configuration of one quote-card style.
// Values are read-only once the catalog is built.
type Template struct {
	Key         Key
	Label       string
	FontFamily  string  // CSS-like family list, first match wins
	QuoteSize   float64 // base font size for quotes (px)
	PassageSize float64 // base font size for passages (px)
	TextColor   string
	Padding     float64 // uniform margin (px)
	LineHeight  float64 // multiplier of the font size
	YOffset     float64 // shift applied after vertical centering (px)
	Grain       bool

	// BackgroundSpec and ShadowSpec keep the descriptors as written.
	BackgroundSpec string
	ShadowSpec     string

	// Background and Shadow are parsed from those descriptors when the catalog is built.
	Background Background
	Shadow     Shadow
}

// clone returns a copy that shares nothing mutable with t.
func (t Template) clone() Template {
	t.Background.Stops = slices.Clone(t.Background.Stops)
	return t
}

// ── Background ──

// BackgroundKind tags the variant held by a Background.
type BackgroundKind int

const (
	BackgroundSolid BackgroundKind = iota
	BackgroundLinearGradient
	BackgroundRadialGradient
	BackgroundImage
)

func (k BackgroundKind) String() string {
	switch k {
	case BackgroundSolid:
		return "solid"
	case BackgroundLinearGradient:
		return "linear-gradient"
	case BackgroundRadialGradient:
		return "radial-gradient"
	case BackgroundImage:
		return "image"
	default:
		return fmt.Sprintf("BackgroundKind(%d)", int(k))
	}
}

// Background is a classified background descriptor.
//   - BackgroundSolid: Color is a CSS color
//   - BackgroundLinearGradient, BackgroundRadialGradient: Stops lists the color
//     expressions in order (may be empty; painters substitute a default)
//   - BackgroundImage: Ref is a path, URL, or data URI
type Background struct {
	Kind  BackgroundKind
	Color string
	Stops []string
	Ref   string
}

// ── Shadow ──

// ShadowKind tags the variant held by a Shadow.
type ShadowKind int

const (
	ShadowNone ShadowKind = iota
	ShadowOffset
	ShadowFlatColor
)

// Shadow is a classified text-shadow descriptor. Offsets and blur are only
// meaningful for ShadowOffset; Color is set for both ShadowOffset and ShadowFlatColor.
type Shadow struct {
	Kind    ShadowKind
	OffsetX float64
	OffsetY float64
	Blur    float64
	Color   string
}
