package server

import (
	"bytes"
	"encoding/json"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xob0t/QuoteSnap/pkg/render"
	"github.com/xob0t/QuoteSnap/pkg/template"
)

// newTestServer serves a catalog where cosmic has a solid background and
// typewriter points at a texture that does not exist.
func newTestServer(t *testing.T) *Server {
	t.Helper()
	catalog, err := template.NewCatalog(template.MergeOverrides(template.Builtins(), map[string]template.Override{
		"cosmic":     {Background: "#101020"},
		"typewriter": {Background: "/textures/missing.png"},
	}))
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}

	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "textures"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "textures", "note.txt"), []byte("paper"), 0o644); err != nil {
		t.Fatal(err)
	}

	return New(render.New(render.Options{Catalog: catalog}), Options{StaticRoot: root})
}

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(newTestServer(t).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func postRender(t *testing.T, ts *httptest.Server, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(ts.URL+"/api/render", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func errorBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	var out struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return out.Error
}

// ///////////////////////////////////////////////
// POST /api/render
// ///////////////////////////////////////////////

func TestRenderOK(t *testing.T) {
	ts := testServer(t)
	resp := postRender(t, ts, `{"text": "Hello world", "template": "cosmic"}`)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); cd != `attachment; filename="quote.png"` {
		t.Errorf("Content-Disposition = %q", cd)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("body is not a PNG: %v", err)
	}
	if cfg.Width != 1080 || cfg.Height != 1350 {
		t.Errorf("size = %dx%d", cfg.Width, cfg.Height)
	}
}

func TestRenderErrors(t *testing.T) {
	ts := testServer(t)

	tests := []struct {
		name   string
		body   string
		status int
		msg    string
	}{
		{"numeric text", `{"text": 42, "template": "cosmic"}`, 400, "Invalid payload"},
		{"missing template", `{"text": "Hi"}`, 400, "Invalid payload"},
		{"null text", `{"text": null, "template": "cosmic"}`, 400, "Invalid payload"},
		{"malformed json", `{"text": `, 400, "Invalid payload"},
		{"unknown template", `{"text": "Hi", "template": "bogus"}`, 400, "Unknown template"},
		{"empty text", `{"text": "   ", "template": "cosmic"}`, 400, "Text is required"},
		{"empty text, unknown template", `{"text": "", "template": "bogus"}`, 400, "Unknown template"},
		{"missing texture", `{"text": "Hi", "template": "typewriter"}`, 500, "Failed to render image"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postRender(t, ts, tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}
			if msg := errorBody(t, resp); msg != tt.msg {
				t.Errorf("error = %q, want %q", msg, tt.msg)
			}
		})
	}
}

func TestRenderBodyTooLarge(t *testing.T) {
	s := newTestServer(t)
	body := `{"text": "` + strings.Repeat("a", MaxBodyBytes) + `", "template": "cosmic"}`
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/render", strings.NewReader(body)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

// ///////////////////////////////////////////////
// GET /api/templates and static files
// ///////////////////////////////////////////////

func TestTemplates(t *testing.T) {
	ts := testServer(t)
	resp, err := http.Get(ts.URL + "/api/templates")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var got []templateInfo
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != len(template.Keys) {
		t.Fatalf("got %d templates, want %d", len(got), len(template.Keys))
	}
	for i, k := range template.Keys {
		if got[i].Key != string(k) || got[i].Label == "" {
			t.Errorf("templates[%d] = %+v, want key %q with a label", i, got[i], k)
		}
	}
}

func TestStaticFiles(t *testing.T) {
	ts := testServer(t)
	resp, err := http.Get(ts.URL + "/textures/note.txt")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(data) != "paper" {
		t.Errorf("status = %d, body = %q", resp.StatusCode, data)
	}
}
