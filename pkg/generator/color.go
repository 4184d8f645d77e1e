// color.go - CSS color parsing for template colors and gradient stops.
package generator

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// ParseCSSColor parses the CSS color forms used by template descriptors:
// "#rgb", "#rgba", "#rrggbb", "#rrggbbaa", rgb()/rgba(), hsl()/hsla(),
// named colors, and "transparent".
func ParseCSSColor(s string) (color.NRGBA, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "":
		return color.NRGBA{}, fmt.Errorf("empty color")
	case s == "transparent":
		return color.NRGBA{}, nil
	case strings.HasPrefix(s, "#"):
		return parseHex(s)
	case strings.HasPrefix(s, "rgb"):
		return parseRGBFunc(s)
	case strings.HasPrefix(s, "hsl"):
		return parseHSLFunc(s)
	}

	if c, ok := colornames.Map[s]; ok {
		return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255}, nil
	}
	return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
}

// ColorOr parses s, returning fallback when it is not a valid color.
func ColorOr(s string, fallback color.Color) color.Color {
	c, err := ParseCSSColor(s)
	if err != nil {
		return fallback
	}
	return c
}

// parseHex handles the four hex notations. Alpha digits are split off and
// the remaining RGB part is parsed by go-colorful.
func parseHex(s string) (color.NRGBA, error) {
	hex := s[1:]
	alpha := "ff"
	switch len(hex) {
	case 3, 6:
	case 4:
		alpha = strings.Repeat(hex[3:], 2)
		hex = hex[:3]
	case 8:
		alpha = hex[6:]
		hex = hex[:6]
	default:
		return color.NRGBA{}, fmt.Errorf("invalid color %q: expected 3, 4, 6 or 8 hex digits", s)
	}

	c, err := colorful.Hex("#" + hex)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	a, err := strconv.ParseUint(alpha, 16, 8)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid alpha in %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(a)}, nil
}

// funcArgs splits "name(a, b, c / d)" into its arguments. Commas, spaces and
// the slash before alpha are all accepted as separators.
func funcArgs(s string) ([]string, error) {
	open := strings.IndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") {
		return nil, fmt.Errorf("invalid color %q", s)
	}
	inner := s[open+1 : len(s)-1]
	args := strings.FieldsFunc(inner, func(r rune) bool {
		return r == ',' || r == '/' || r == ' ' || r == '\t'
	})
	if len(args) != 3 && len(args) != 4 {
		return nil, fmt.Errorf("invalid color %q: expected 3 or 4 components", s)
	}
	return args, nil
}

func parseRGBFunc(s string) (color.NRGBA, error) {
	args, err := funcArgs(s)
	if err != nil {
		return color.NRGBA{}, err
	}

	var ch [3]uint8
	for i := 0; i < 3; i++ {
		v, err := parseComponent(args[i], 255)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
		}
		ch[i] = clamp8(v)
	}

	a := uint8(255)
	if len(args) == 4 {
		v, err := parseComponent(args[3], 1)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
		}
		a = clamp8(v * 255)
	}
	return color.NRGBA{R: ch[0], G: ch[1], B: ch[2], A: a}, nil
}

func parseHSLFunc(s string) (color.NRGBA, error) {
	args, err := funcArgs(s)
	if err != nil {
		return color.NRGBA{}, err
	}

	h, err := strconv.ParseFloat(strings.TrimSuffix(args[0], "deg"), 64)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hue in %q: %w", s, err)
	}
	sat, err := parseComponent(args[1], 1)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid saturation in %q: %w", s, err)
	}
	light, err := parseComponent(args[2], 1)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid lightness in %q: %w", s, err)
	}

	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	r, g, b := colorful.Hsl(h, clampUnit(sat), clampUnit(light)).Clamped().RGB255()

	a := uint8(255)
	if len(args) == 4 {
		v, err := parseComponent(args[3], 1)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid alpha in %q: %w", s, err)
		}
		a = clamp8(v * 255)
	}
	return color.NRGBA{R: r, G: g, B: b, A: a}, nil
}

// parseComponent parses a number or a percentage. Percentages are scaled
// so that 100% equals full.
func parseComponent(s string, full float64) (float64, error) {
	if p, ok := strings.CutSuffix(s, "%"); ok {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return 0, err
		}
		return v / 100 * full, nil
	}
	return strconv.ParseFloat(s, 64)
}

func clamp8(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(255, v))))
}

func clampUnit(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
