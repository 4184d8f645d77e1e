// Package fonts registers font files by CSS family name and resolves
// CSS-like family lists to parsed OpenType fonts.
//
// Registration of the configured font directory happens once per Registry,
// on first use, and is safe under concurrent first calls. Families that
// cannot be resolved fall back to the embedded Go fonts.
package fonts

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/tdewolff/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// DefaultPatterns are the discovery globs used when none are configured.
var DefaultPatterns = []string{"**/*.{ttf,otf,woff,woff2}"}

// WeightNormal is the weight requested for card text.
const WeightNormal = 400

// candidate is a font file registered by name when present.
type candidate struct {
	file   string
	family string
	weight int
}

// interCandidates are looked up in the font directory before discovery.
var interCandidates = []candidate{
	{"inter-latin-600-normal.ttf", "Inter", 600},
	{"inter-latin-700-normal.ttf", "Inter", 700},
	{"inter-latin-500-normal.ttf", "Inter", 500},
}

// Options configures a Registry.
type Options struct {
	Dir      string   // font directory; empty disables file registration
	Patterns []string // discovery globs relative to Dir; nil uses DefaultPatterns
	Logger   *slog.Logger
}

// Registry maps lowercased family names to fonts by weight.
// It is safe for concurrent use.
type Registry struct {
	opts   Options
	logger *slog.Logger

	once     sync.Once
	warnings []string

	mu       sync.RWMutex
	families map[string]map[int]*opentype.Font
}

var (
	regularOnce sync.Once
	regular     *opentype.Font
	monoOnce    sync.Once
	mono        *opentype.Font
)

// Regular returns the embedded Go Regular font.
func Regular() *opentype.Font {
	regularOnce.Do(func() { regular = mustParse(goregular.TTF) })
	return regular
}

// Mono returns the embedded Go Mono font.
func Mono() *opentype.Font {
	monoOnce.Do(func() { mono = mustParse(gomono.TTF) })
	return mono
}

func mustParse(data []byte) *opentype.Font {
	f, err := opentype.Parse(data)
	if err != nil {
		panic(fmt.Errorf("parse embedded font: %w", err))
	}
	return f
}

// NewRegistry creates an empty registry. Files under opts.Dir are registered
// on the first call to Ensure or Resolve.
func NewRegistry(opts Options) *Registry {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.Patterns == nil {
		opts.Patterns = DefaultPatterns
	}
	return &Registry{
		opts:     opts,
		logger:   logger,
		families: make(map[string]map[int]*opentype.Font),
	}
}

// Ensure registers the configured font directory exactly once and returns
// the warnings collected while doing so. Later calls return the same warnings.
func (r *Registry) Ensure() []string {
	r.once.Do(func() {
		if r.opts.Dir == "" {
			return
		}
		if _, err := os.Stat(r.opts.Dir); err != nil {
			r.warnings = append(r.warnings, fmt.Sprintf("font directory %s: %v", r.opts.Dir, err))
			r.logger.Warn("font directory unavailable, using embedded fonts", "dir", r.opts.Dir, "error", err)
			return
		}
		for _, c := range interCandidates {
			path := filepath.Join(r.opts.Dir, c.file)
			if _, err := os.Stat(path); err != nil {
				r.logger.Debug("font candidate missing", "path", path)
				continue
			}
			if err := r.RegisterFile(path, c.family, c.weight); err != nil {
				r.warnings = append(r.warnings, err.Error())
			}
		}
		_, warnings := r.Discover(r.opts.Dir, r.opts.Patterns)
		r.warnings = append(r.warnings, warnings...)
		for _, w := range r.warnings {
			r.logger.Warn("font registration", "detail", w)
		}
	})
	return r.warnings
}

// Register parses font data (TTF, OTF, WOFF or WOFF2) and adds it under
// family and weight. Registering the same family and weight again replaces
// the earlier font.
func (r *Registry) Register(family string, weight int, data []byte) error {
	family = normalizeFamily(family)
	if family == "" {
		return fmt.Errorf("register font: empty family name")
	}

	data, err := toSFNT(data)
	if err != nil {
		return fmt.Errorf("register font %q: %w", family, err)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("register font %q: %w", family, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.families[family] == nil {
		r.families[family] = make(map[int]*opentype.Font)
	}
	r.families[family][weight] = f
	return nil
}

// RegisterFile reads and registers a font file.
func (r *Registry) RegisterFile(path, family string, weight int) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read font: %w", err)
	}
	if err := r.Register(family, weight, data); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	r.logger.Debug("font registered", "family", family, "weight", weight, "path", path)
	return nil
}

// Discover registers every file under dir that matches one of the glob
// patterns (doublestar syntax). Family names come from the font's name
// table; weights from the file name. Returns the number of fonts registered
// and a warning for each file that could not be used.
func (r *Registry) Discover(dir string, patterns []string) (int, []string) {
	fsys := os.DirFS(dir)
	seen := make(map[string]bool)
	var matches []string
	var warnings []string

	for _, pattern := range patterns {
		found, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("font pattern %q: %v", pattern, err))
			continue
		}
		for _, m := range found {
			if !seen[m] {
				seen[m] = true
				matches = append(matches, m)
			}
		}
	}
	slices.Sort(matches)

	n := 0
	for _, m := range matches {
		path := filepath.Join(dir, filepath.FromSlash(m))
		data, err := os.ReadFile(path)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("font %s: %v", path, err))
			continue
		}
		family, err := familyName(data)
		if err != nil || family == "" {
			family = familyFromFile(path)
		}
		weight := WeightFromName(filepath.Base(path))
		if err := r.Register(family, weight, data); err != nil {
			warnings = append(warnings, fmt.Sprintf("font %s: %v", path, err))
			continue
		}
		r.logger.Debug("font discovered", "family", family, "weight", weight, "path", path)
		n++
	}
	return n, warnings
}

// Families returns the registered family names, sorted.
func (r *Registry) Families() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.families))
	for name := range r.families {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// Resolve returns the font for the first usable entry of a CSS-like family
// list such as "'Inter', 'Noto Sans', Arial, sans-serif". Registered
// families match case-insensitively at the weight closest to normal.
// The generic "monospace" maps to Go Mono, other generics to Go Regular,
// and a list with no usable entry falls back to Go Regular.
func (r *Registry) Resolve(familyList string) *opentype.Font {
	r.Ensure()

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, name := range ParseFamilyList(familyList) {
		if weights, ok := r.families[name]; ok && len(weights) > 0 {
			return weights[matchWeight(weights, WeightNormal)]
		}
		switch name {
		case "monospace", "ui-monospace":
			return Mono()
		case "sans-serif", "serif", "system-ui", "ui-sans-serif", "ui-serif", "cursive", "fantasy":
			return Regular()
		}
	}
	return Regular()
}

// ParseFamilyList splits a CSS font-family value into lowercased names with
// quotes removed.
func ParseFamilyList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if name := normalizeFamily(part); name != "" {
			out = append(out, name)
		}
	}
	return out
}

func normalizeFamily(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `'"`)
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// matchWeight picks the registered weight for a desired one using the CSS
// font matching order for weights 400 and 500: the desired weight, then
// up to 500, then lighter weights descending, then heavier ascending.
func matchWeight(weights map[int]*opentype.Font, desired int) int {
	if _, ok := weights[desired]; ok {
		return desired
	}
	available := make([]int, 0, len(weights))
	for w := range weights {
		available = append(available, w)
	}
	slices.Sort(available)

	for _, w := range available {
		if w > desired && w <= 500 {
			return w
		}
	}
	for i := len(available) - 1; i >= 0; i-- {
		if available[i] < desired {
			return available[i]
		}
	}
	for _, w := range available {
		if w > desired {
			return w
		}
	}
	return available[0]
}

// weightWords maps common style names in font file names to weights.
var weightWords = map[string]int{
	"thin": 100, "hairline": 100,
	"extralight": 200, "ultralight": 200,
	"light":   300,
	"regular": 400, "normal": 400, "book": 400,
	"medium":   500,
	"semibold": 600, "demibold": 600,
	"bold":      700,
	"extrabold": 800, "ultrabold": 800,
	"black": 900, "heavy": 900,
}

// WeightFromName guesses a weight from a font file name such as
// "inter-latin-600-normal.ttf" or "PlayfairDisplay-Bold.ttf".
// Unrecognised names are normal weight.
func WeightFromName(name string) int {
	stem := strings.ToLower(strings.TrimSuffix(name, filepath.Ext(name)))
	tokens := strings.FieldsFunc(stem, func(r rune) bool {
		return r == '-' || r == '_' || r == ' ' || r == '.'
	})
	for _, tok := range tokens {
		switch tok {
		case "100", "200", "300", "400", "500", "600", "700", "800", "900":
			return int(tok[0]-'0') * 100
		}
	}
	// The last style word wins.
	weight := WeightNormal
	for _, tok := range tokens {
		if w, ok := weightWords[tok]; ok {
			weight = w
		}
	}
	return weight
}

// familyName reads the family name from the font's name table.
func familyName(data []byte) (string, error) {
	data, err := toSFNT(data)
	if err != nil {
		return "", err
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return "", err
	}
	var buf sfnt.Buffer
	if name, err := f.Name(&buf, sfnt.NameIDTypographicFamily); err == nil && name != "" {
		return name, nil
	}
	return f.Name(&buf, sfnt.NameIDFamily)
}

// familyFromFile derives a family from a file name: "inter-latin-600.ttf"
// gives "inter".
func familyFromFile(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if i := strings.IndexAny(stem, "-_"); i > 0 {
		stem = stem[:i]
	}
	return stem
}

// toSFNT converts WOFF and WOFF2 data to SFNT. Other data is returned as is.
func toSFNT(data []byte) ([]byte, error) {
	if len(data) < 4 || data[0] != 'w' || data[1] != 'O' || data[2] != 'F' {
		return data, nil
	}
	sfntData, err := font.ToSFNT(data)
	if err != nil {
		return nil, fmt.Errorf("convert web font to sfnt: %w", err)
	}
	return sfntData, nil
}
