// resolver.go - Locate and load background image references.
package paint

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// maxAssetBytes caps the size of a fetched or read background.
const maxAssetBytes = 32 << 20 // 32 MiB

// ErrOutsideRoot is returned for static paths that escape the static root.
var ErrOutsideRoot = errors.New("path escapes static root")

// Asset is the raw content of an image reference.
type Asset struct {
	Data []byte
	SVG  bool // content is SVG markup rather than a raster format
}

// ResolverOptions configures a Resolver.
type ResolverOptions struct {
	StaticRoot string        // directory that "/textures/x.png" style paths resolve against
	Retries    int           // retries for remote fetches
	Timeout    time.Duration // per-attempt timeout for remote fetches; zero means 10s

	// Assets, when set, is consulted for static paths before the static root.
	Assets func(ref string) ([]byte, bool)
}

// Resolver loads image references from the static root, over HTTP(S), or
// from data URIs. It is safe for concurrent use.
type Resolver struct {
	root   string
	assets func(ref string) ([]byte, bool)
	client *retryablehttp.Client
}

// NewResolver creates a resolver with its own retrying HTTP client.
func NewResolver(opts ResolverOptions) *Resolver {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := retryablehttp.NewClient()
	client.RetryMax = max(opts.Retries, 0)
	client.HTTPClient.Timeout = timeout
	client.Logger = nil // suppress retryablehttp's default logging

	return &Resolver{root: opts.StaticRoot, assets: opts.Assets, client: client}
}

// Load returns the content of ref.
//   - "http://" and "https://" URLs are fetched with retries
//   - "data:" URIs are decoded inline (base64 or percent-encoded)
//   - anything else is a path inside the static root
func (r *Resolver) Load(ctx context.Context, ref string) (Asset, error) {
	switch {
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return r.fetch(ctx, ref)
	case strings.HasPrefix(ref, "data:"):
		return decodeDataURI(ref)
	default:
		return r.readStatic(ref)
	}
}

func (r *Resolver) fetch(ctx context.Context, ref string) (Asset, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return Asset{}, fmt.Errorf("GET %s: %w", ref, err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return Asset{}, fmt.Errorf("GET %s: %w", ref, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Asset{}, fmt.Errorf("GET %s: status %d", ref, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxAssetBytes+1))
	if err != nil {
		return Asset{}, fmt.Errorf("reading response from %s: %w", ref, err)
	}
	if len(body) > maxAssetBytes {
		return Asset{}, fmt.Errorf("response from %s exceeds %d bytes", ref, maxAssetBytes)
	}

	u, _ := url.Parse(ref)
	svg := strings.Contains(resp.Header.Get("Content-Type"), "svg") ||
		(u != nil && strings.EqualFold(filepath.Ext(u.Path), ".svg"))
	return Asset{Data: body, SVG: svg || looksLikeSVG(body)}, nil
}

func (r *Resolver) readStatic(ref string) (Asset, error) {
	if r.assets != nil {
		if data, ok := r.assets(ref); ok {
			svg := strings.EqualFold(filepath.Ext(ref), ".svg") || looksLikeSVG(data)
			return Asset{Data: data, SVG: svg}, nil
		}
	}

	path, err := r.staticPath(ref)
	if err != nil {
		return Asset{}, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return Asset{}, fmt.Errorf("read %s: %w", ref, err)
	}
	if info.Size() > maxAssetBytes {
		return Asset{}, fmt.Errorf("read %s: file exceeds %d bytes", ref, maxAssetBytes)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Asset{}, fmt.Errorf("read %s: %w", ref, err)
	}

	svg := strings.EqualFold(filepath.Ext(path), ".svg") || looksLikeSVG(data)
	return Asset{Data: data, SVG: svg}, nil
}

// staticPath maps a reference onto the static root. Leading slashes are
// relative to the root, not the filesystem.
func (r *Resolver) staticPath(ref string) (string, error) {
	if r.root == "" {
		return "", fmt.Errorf("resolve %s: no static root configured", ref)
	}
	rel := filepath.FromSlash(strings.TrimLeft(ref, "/"))
	if !filepath.IsLocal(rel) {
		return "", fmt.Errorf("resolve %s: %w", ref, ErrOutsideRoot)
	}
	return filepath.Join(r.root, rel), nil
}

// decodeDataURI decodes "data:[<mediatype>][;base64],<data>".
func decodeDataURI(ref string) (Asset, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(ref, "data:"), ",")
	if !ok {
		return Asset{}, fmt.Errorf("data URI: missing comma")
	}

	var data []byte
	if strings.HasSuffix(header, ";base64") {
		decoded, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			// Some encoders drop padding.
			decoded, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
			if err != nil {
				return Asset{}, fmt.Errorf("data URI: %w", err)
			}
		}
		data = decoded
	} else {
		data = percentDecode(payload)
	}
	if len(data) > maxAssetBytes {
		return Asset{}, fmt.Errorf("data URI exceeds %d bytes", maxAssetBytes)
	}

	mediaType, _, _ := strings.Cut(header, ";")
	return Asset{Data: data, SVG: mediaType == "image/svg+xml" || looksLikeSVG(data)}, nil
}

// percentDecode decodes %XX escapes. A '%' not followed by two hex digits
// is kept as a literal byte.
func percentDecode(s string) []byte {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]) {
			out = append(out, unhex(s[i+1])<<4|unhex(s[i+2]))
			i += 2
			continue
		}
		out = append(out, s[i])
	}
	return out
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func unhex(c byte) byte {
	switch {
	case c >= 'a':
		return c - 'a' + 10
	case c >= 'A':
		return c - 'A' + 10
	}
	return c - '0'
}

// looksLikeSVG sniffs SVG markup.
func looksLikeSVG(data []byte) bool {
	head := strings.ToLower(strings.TrimSpace(string(data[:min(len(data), 512)])))
	return strings.HasPrefix(head, "<svg") || (strings.HasPrefix(head, "<?xml") && strings.Contains(head, "<svg"))
}
