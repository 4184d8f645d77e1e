// parser.go - Classification of background and text-shadow descriptors.
package template

import (
	"regexp"
	"strconv"
	"strings"
)

// colorStopRe matches hex, rgb()/rgba() and hsl()/hsla() color expressions.
var colorStopRe = regexp.MustCompile(`#[0-9a-fA-F]{3,8}|rgba?\([^)]+\)|hsla?\([^)]+\)`)

// imageRefRe matches descriptors that name an image file.
var imageRefRe = regexp.MustCompile(`(?i)\.(png|jpg|jpeg|webp|svg)$`)

// shadowRe matches "offsetX offsetY blur color" with optional px units.
var shadowRe = regexp.MustCompile(`(-?\d+(?:\.\d+)?)(?:px)?\s+(-?\d+(?:\.\d+)?)(?:px)?\s+(-?\d+(?:\.\d+)?)(?:px)?\s+(.+)`)

// IsImageRef reports whether the descriptor refers to an image: a path or URL
// with an image extension, or an image data URI.
func IsImageRef(desc string) bool {
	return imageRefRe.MatchString(desc) || strings.HasPrefix(desc, "data:image/")
}

// ExtractColorStops returns every color expression in a gradient descriptor,
// left to right, duplicates included. Angles and stop positions are ignored.
// It returns an empty slice when nothing matches.
func ExtractColorStops(desc string) []string {
	matches := colorStopRe.FindAllString(desc, -1)
	if matches == nil {
		return []string{}
	}
	return matches
}

// ParseBackground classifies a background descriptor.
func ParseBackground(desc string) Background {
	desc = strings.TrimSpace(desc)
	switch {
	case IsImageRef(desc):
		return Background{Kind: BackgroundImage, Ref: desc}
	case strings.HasPrefix(desc, "linear-gradient"):
		return Background{Kind: BackgroundLinearGradient, Stops: ExtractColorStops(desc)}
	case strings.HasPrefix(desc, "radial-gradient"):
		return Background{Kind: BackgroundRadialGradient, Stops: ExtractColorStops(desc)}
	default:
		return Background{Kind: BackgroundSolid, Color: desc}
	}
}

// ParseShadow classifies a text-shadow descriptor. A string that does not
// carry offsets and blur is taken as a bare shadow color.
func ParseShadow(desc string) Shadow {
	desc = strings.TrimSpace(desc)
	if desc == "" {
		return Shadow{Kind: ShadowNone}
	}

	m := shadowRe.FindStringSubmatch(desc)
	if m == nil {
		return Shadow{Kind: ShadowFlatColor, Color: desc}
	}

	// The regexp guarantees numeric groups.
	dx, _ := strconv.ParseFloat(m[1], 64)
	dy, _ := strconv.ParseFloat(m[2], 64)
	blur, _ := strconv.ParseFloat(m[3], 64)
	return Shadow{
		Kind:    ShadowOffset,
		OffsetX: dx,
		OffsetY: dy,
		Blur:    blur,
		Color:   strings.TrimSpace(m[4]),
	}
}
