// loader.go - Load template overrides from TOML and build the catalog.
package template

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// overridesFile is the top-level structure of a template overrides file:
//
//	[templates.cosmic]
//	font_size_quote = 80
//	background = "radial-gradient(#1b1f3b, #05060b)"
type overridesFile struct {
	Templates map[string]Override `toml:"templates"`
}

// LoadOverrides reads and parses a TOML overrides file. Returns warnings for
// entries that are ignored.
func LoadOverrides(path string) (map[string]Override, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read overrides: %w", err)
	}
	return ParseOverrides(data)
}

// ParseOverrides parses TOML override data.
func ParseOverrides(data []byte) (map[string]Override, []string, error) {
	var f overridesFile
	md, err := toml.Decode(string(data), &f)
	if err != nil {
		return nil, nil, fmt.Errorf("parse overrides: %w", err)
	}

	var warnings []string
	for _, key := range md.Undecoded() {
		warnings = append(warnings, fmt.Sprintf("unknown overrides field %q, ignored", key.String()))
	}
	if f.Templates == nil {
		f.Templates = make(map[string]Override)
	}
	warnings = append(warnings, ValidateOverrides(f.Templates)...)
	return f.Templates, warnings, nil
}

// LoadCatalog builds the catalog from the built-ins plus the overrides file
// at path. An empty path, or a path that does not exist, yields the built-ins.
func LoadCatalog(path string) (*Catalog, []string, error) {
	if path == "" {
		return DefaultCatalog(), nil, nil
	}

	overrides, warnings, err := LoadOverrides(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultCatalog(), []string{fmt.Sprintf("overrides file %s not found, using built-in templates", path)}, nil
		}
		return nil, nil, err
	}

	c, err := NewCatalog(MergeOverrides(Builtins(), overrides))
	if err != nil {
		return nil, warnings, err
	}
	return c, warnings, nil
}
