// merge.go - Merge template overrides onto the built-in defaults.
package template

// Override holds optional replacements for one template's fields, as read
// from a TOML overrides file. Zero values mean "keep the default"; Grain and
// YOffset are pointers so that false and 0 can be set explicitly.
type Override struct {
	Label       string   `toml:"label"`
	FontFamily  string   `toml:"font_family"`
	QuoteSize   float64  `toml:"font_size_quote"`
	PassageSize float64  `toml:"font_size_passage"`
	TextColor   string   `toml:"text_color"`
	Background  string   `toml:"background"`
	TextShadow  string   `toml:"text_shadow"`
	Padding     float64  `toml:"padding"`
	LineHeight  float64  `toml:"line_height"`
	YOffset     *float64 `toml:"y_offset"`
	Grain       *bool    `toml:"grain"`
}

// MergeOverrides applies overrides to a copy of base. Entries for unknown
// templates are skipped; see ValidateOverrides for the matching warnings.
func MergeOverrides(base map[Key]Template, overrides map[string]Override) map[Key]Template {
	merged := make(map[Key]Template, len(base))
	for k, t := range base {
		merged[k] = t
	}

	for name, over := range overrides {
		k, err := ParseKey(name)
		if err != nil {
			continue
		}
		t, ok := merged[k]
		if !ok {
			continue
		}
		mergeTemplate(&t, over)
		merged[k] = t
	}
	return merged
}

// mergeTemplate applies non-zero override fields.
func mergeTemplate(base *Template, over Override) {
	if over.Label != "" {
		base.Label = over.Label
	}
	if over.FontFamily != "" {
		base.FontFamily = over.FontFamily
	}
	if over.QuoteSize > 0 {
		base.QuoteSize = over.QuoteSize
	}
	if over.PassageSize > 0 {
		base.PassageSize = over.PassageSize
	}
	if over.TextColor != "" {
		base.TextColor = over.TextColor
	}
	if over.Background != "" {
		base.BackgroundSpec = over.Background
	}
	if over.TextShadow != "" {
		base.ShadowSpec = over.TextShadow
	}
	if over.Padding > 0 {
		base.Padding = over.Padding
	}
	if over.LineHeight > 0 {
		base.LineHeight = over.LineHeight
	}
	if over.YOffset != nil {
		base.YOffset = *over.YOffset
	}
	if over.Grain != nil {
		base.Grain = *over.Grain
	}
}
