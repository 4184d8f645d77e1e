package paint

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/fogleman/gg"
	"github.com/xob0t/QuoteSnap/pkg/template"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

const testSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10"><rect x="0" y="0" width="10" height="10" fill="#ff0000"/></svg>`

func pngBytes(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func rgbAt(dc *gg.Context, x, y int) color.RGBA {
	return color.RGBAModel.Convert(dc.Image().At(x, y)).(color.RGBA)
}

// ///////////////////////////////////////////////
// Gradients
// ///////////////////////////////////////////////

func TestStopsOrDefault(t *testing.T) {
	if got := StopsOrDefault(nil); !reflect.DeepEqual(got, []string{"#e8efff", "#f6f8fd"}) {
		t.Errorf("StopsOrDefault(nil) = %q", got)
	}
	in := []string{"#ff0000", "#00ff00", "#0000ff"}
	if got := StopsOrDefault(in); !reflect.DeepEqual(got, in) {
		t.Errorf("StopsOrDefault(%q) = %q", in, got)
	}
}

func TestStopOffsets(t *testing.T) {
	tests := []struct {
		n    int
		want []float64
	}{
		{1, []float64{0}},
		{2, []float64{0, 1}},
		{3, []float64{0, 0.5, 1}},
		{5, []float64{0, 0.25, 0.5, 0.75, 1}},
	}
	for _, tt := range tests {
		if got := StopOffsets(tt.n); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("StopOffsets(%d) = %v, want %v", tt.n, got, tt.want)
		}
	}
}

// ///////////////////////////////////////////////
// Grain
// ///////////////////////////////////////////////

func TestGrainDots(t *testing.T) {
	if got := GrainDots(1080, 1350); got != 17496 {
		t.Errorf("GrainDots(1080, 1350) = %d, want 17496", got)
	}
}

func TestGrainLayer(t *testing.T) {
	layer := GrainLayer(200, 100, rand.New(rand.NewPCG(1, 2)))

	marked := 0
	for i := 0; i < len(layer.Pix); i += 4 {
		r, g, b, a := layer.Pix[i], layer.Pix[i+1], layer.Pix[i+2], layer.Pix[i+3]
		if a == 0 {
			continue
		}
		marked++
		if r != g || g != b {
			t.Fatalf("grain pixel is not gray: %d,%d,%d", r, g, b)
		}
		if r < GrainGrayMin || r > GrainGrayMax {
			t.Fatalf("grain gray %d outside [%d, %d]", r, GrainGrayMin, GrainGrayMax)
		}
	}
	if marked == 0 || marked > GrainDots(200, 100) {
		t.Errorf("marked pixels = %d, want 1..%d", marked, GrainDots(200, 100))
	}
}

func TestGrainLayerDeterministicForSeed(t *testing.T) {
	a := GrainLayer(64, 64, rand.New(rand.NewPCG(7, 7)))
	b := GrainLayer(64, 64, rand.New(rand.NewPCG(7, 7)))
	if !bytes.Equal(a.Pix, b.Pix) {
		t.Error("same seed should produce the same grain")
	}
}

func TestGrainIsFaint(t *testing.T) {
	dc := gg.NewContext(50, 50)
	dc.SetColor(color.Black)
	dc.Clear()
	Grain(dc, rand.New(rand.NewPCG(3, 4)))
	for y := 0; y < 50; y++ {
		for x := 0; x < 50; x++ {
			if c := rgbAt(dc, x, y); c.R > 40 {
				t.Fatalf("pixel (%d,%d) = %v, grain should be faint", x, y, c)
			}
		}
	}
}

// ///////////////////////////////////////////////
// Resolver
// ///////////////////////////////////////////////

func TestResolverStatic(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "textures"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "textures", "field.svg"), []byte(testSVG), 0o644); err != nil {
		t.Fatal(err)
	}
	r := NewResolver(ResolverOptions{StaticRoot: root})

	asset, err := r.Load(context.Background(), "/textures/field.svg")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !asset.SVG || string(asset.Data) != testSVG {
		t.Errorf("Load returned %+v", asset)
	}

	if _, err := r.Load(context.Background(), "/textures/missing.png"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file error = %v, want ErrNotExist", err)
	}
	if _, err := r.Load(context.Background(), "/../secret.png"); !errors.Is(err, ErrOutsideRoot) {
		t.Errorf("traversal error = %v, want ErrOutsideRoot", err)
	}
}

func TestResolverNoRoot(t *testing.T) {
	r := NewResolver(ResolverOptions{})
	if _, err := r.Load(context.Background(), "/textures/a.png"); err == nil {
		t.Error("Load without a static root should fail")
	}
}

func TestResolverAssetsHook(t *testing.T) {
	r := NewResolver(ResolverOptions{
		Assets: func(ref string) ([]byte, bool) {
			if ref == "/textures/field.svg" {
				return []byte(testSVG), true
			}
			return nil, false
		},
	})

	asset, err := r.Load(context.Background(), "/textures/field.svg")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !asset.SVG {
		t.Error("in-memory SVG should be flagged as SVG")
	}
	if _, err := r.Load(context.Background(), "/textures/other.png"); err == nil {
		t.Error("unknown in-memory ref without a static root should fail")
	}
}

func TestResolverDataURI(t *testing.T) {
	r := NewResolver(ResolverOptions{})
	raw := pngBytes(t, 2, 2, color.White)

	asset, err := r.Load(context.Background(), "data:image/png;base64,"+base64.StdEncoding.EncodeToString(raw))
	if err != nil {
		t.Fatalf("base64: %v", err)
	}
	if asset.SVG || !bytes.Equal(asset.Data, raw) {
		t.Error("base64 data URI decoded incorrectly")
	}

	asset, err = r.Load(context.Background(), "data:image/svg+xml,"+url.PathEscape(testSVG))
	if err != nil {
		t.Fatalf("percent-encoded: %v", err)
	}
	if !asset.SVG || string(asset.Data) != testSVG {
		t.Error("percent-encoded data URI decoded incorrectly")
	}

	literal := `<svg xmlns="http://www.w3.org/2000/svg" width="100%" height="100%"><rect width="100%" height="100%" fill="%23ff0000"/></svg>`
	asset, err = r.Load(context.Background(), "data:image/svg+xml,"+literal)
	if err != nil {
		t.Fatalf("raw SVG with literal percent signs: %v", err)
	}
	if want := strings.Replace(literal, "%23", "#", 1); string(asset.Data) != want {
		t.Errorf("raw SVG decoded to %q, want %q", asset.Data, want)
	}

	if _, err := r.Load(context.Background(), "data:image/png;base64"); err == nil {
		t.Error("data URI without a comma should fail")
	}
	if _, err := r.Load(context.Background(), "data:image/png;base64,!!!"); err == nil {
		t.Error("invalid base64 should fail")
	}
}

func TestPercentDecode(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"a%20b", "a b"},
		{"%3Csvg%3e", "<svg>"},
		{"100%", "100%"},
		{"100%\"", "100%\""},
		{"%zz%4", "%zz%4"},
		{"%%41", "%A"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := string(percentDecode(tt.in)); got != tt.want {
				t.Errorf("percentDecode(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestResolverHTTP(t *testing.T) {
	raw := pngBytes(t, 3, 3, color.White)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bg.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(raw)
	}))
	defer srv.Close()

	r := NewResolver(ResolverOptions{Retries: 0})
	asset, err := r.Load(context.Background(), srv.URL+"/bg.png")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if asset.SVG || !bytes.Equal(asset.Data, raw) {
		t.Error("fetched asset mismatch")
	}

	if _, err := r.Load(context.Background(), srv.URL+"/missing.png"); err == nil {
		t.Error("404 should fail")
	}
}

// ///////////////////////////////////////////////
// Decode
// ///////////////////////////////////////////////

func TestDecodeStretchesRaster(t *testing.T) {
	img, err := Decode(Asset{Data: pngBytes(t, 4, 2, color.White)}, 40, 50)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 40 || b.Dy() != 50 {
		t.Errorf("size = %dx%d, want 40x50", b.Dx(), b.Dy())
	}
}

func TestDecodeSVG(t *testing.T) {
	img, err := Decode(Asset{Data: []byte(testSVG), SVG: true}, 30, 40)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 30 || b.Dy() != 40 {
		t.Errorf("size = %dx%d, want 30x40", b.Dx(), b.Dy())
	}
	r, g, _, _ := img.At(15, 20).RGBA()
	if r>>8 < 250 || g>>8 > 5 {
		t.Errorf("center pixel = %v, want red", img.At(15, 20))
	}
}

func TestDecodeGarbage(t *testing.T) {
	if _, err := Decode(Asset{Data: []byte("nope")}, 10, 10); err == nil {
		t.Error("Decode should fail on garbage")
	}
}

// ///////////////////////////////////////////////
// Painter
// ///////////////////////////////////////////////

func TestPaintSolid(t *testing.T) {
	p := NewPainter(nil, nil)
	tests := []struct {
		desc string
		want color.RGBA
	}{
		{"#336699", color.RGBA{0x33, 0x66, 0x99, 255}},
		{"not-a-color", color.RGBA{0, 0, 0, 255}},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			dc := gg.NewContext(20, 20)
			if err := p.Paint(context.Background(), dc, template.ParseBackground(tt.desc)); err != nil {
				t.Fatalf("Paint: %v", err)
			}
			if got := rgbAt(dc, 10, 10); got != tt.want {
				t.Errorf("pixel = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPaintLinearGradient(t *testing.T) {
	dc := gg.NewContext(10, 100)
	bg := template.ParseBackground("linear-gradient(180deg, #000000, #ffffff)")
	if err := NewPainter(nil, nil).Paint(context.Background(), dc, bg); err != nil {
		t.Fatalf("Paint: %v", err)
	}
	top, bottom := rgbAt(dc, 5, 0), rgbAt(dc, 5, 99)
	if top.R > 10 || bottom.R < 245 {
		t.Errorf("top = %v, bottom = %v, want dark to light", top, bottom)
	}
	// Horizontal rows are uniform.
	if rgbAt(dc, 0, 50) != rgbAt(dc, 9, 50) {
		t.Error("linear gradient should not vary horizontally")
	}
}

func TestPaintRadialGradientDefaultStops(t *testing.T) {
	dc := gg.NewContext(108, 135)
	bg := template.ParseBackground("radial-gradient(circle, white, black)")
	if err := NewPainter(nil, nil).Paint(context.Background(), dc, bg); err != nil {
		t.Fatalf("Paint: %v", err)
	}
	// Default stops are both light blue-white.
	c := rgbAt(dc, 54, 67)
	if c.R < 0xe0 || c.B < 0xf0 {
		t.Errorf("center = %v, want default light stops", c)
	}
}

func TestPaintImage(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "bg.png"), pngBytes(t, 2, 2, color.RGBA{0, 200, 0, 255}), 0o644); err != nil {
		t.Fatal(err)
	}
	p := NewPainter(NewResolver(ResolverOptions{StaticRoot: root}), nil)

	dc := gg.NewContext(30, 30)
	if err := p.Paint(context.Background(), dc, template.ParseBackground("/bg.png")); err != nil {
		t.Fatalf("Paint: %v", err)
	}
	if c := rgbAt(dc, 15, 15); c.G < 190 || c.R > 10 {
		t.Errorf("pixel = %v, want green", c)
	}

	if err := p.Paint(context.Background(), dc, template.ParseBackground("/nope.png")); err == nil {
		t.Error("missing image should fail")
	}
}

// ///////////////////////////////////////////////
// Text
// ///////////////////////////////////////////////

func testCanvas(t *testing.T, size float64) (*gg.Context, font.Face) {
	t.Helper()
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		t.Fatal(err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72})
	if err != nil {
		t.Fatal(err)
	}
	dc := gg.NewContext(300, 100)
	dc.SetColor(color.White)
	dc.Clear()
	return dc, face
}

// inkBounds returns the bounding box of dark pixels, empty if none.
func inkBounds(dc *gg.Context) image.Rectangle {
	var r image.Rectangle
	for y := 0; y < dc.Height(); y++ {
		for x := 0; x < dc.Width(); x++ {
			if c := rgbAt(dc, x, y); c.R < 128 {
				r = r.Union(image.Rect(x, y, x+1, y+1))
			}
		}
	}
	return r
}

func TestDrawLineCentered(t *testing.T) {
	dc, face := testCanvas(t, 30)
	st := TextStyle{Face: face, Color: color.Black, MaxWidth: 280}
	DrawLine(dc, st, "Hello", 150, 50)

	ink := inkBounds(dc)
	if ink.Empty() {
		t.Fatal("nothing was drawn")
	}
	mid := float64(ink.Min.X+ink.Max.X) / 2
	if mid < 140 || mid > 160 {
		t.Errorf("ink centered at %v, want about 150", mid)
	}
	midY := float64(ink.Min.Y+ink.Max.Y) / 2
	if midY < 35 || midY > 65 {
		t.Errorf("ink vertical center at %v, want about 50", midY)
	}
}

func TestDrawLineCondensesToMaxWidth(t *testing.T) {
	dc, face := testCanvas(t, 30)
	st := TextStyle{Face: face, Color: color.Black, MaxWidth: 100}
	DrawLine(dc, st, "Incomprehensibilities", 150, 50)

	ink := inkBounds(dc)
	if ink.Empty() {
		t.Fatal("nothing was drawn")
	}
	if ink.Dx() > 104 {
		t.Errorf("ink width = %d, want at most about 100", ink.Dx())
	}
}

func TestDrawLineShadow(t *testing.T) {
	dc, face := testCanvas(t, 30)
	st := TextStyle{
		Face:     face,
		Color:    color.White,
		MaxWidth: 280,
		Shadow:   template.ParseShadow("0px 20px 0px #000000"),
	}
	DrawLine(dc, st, "Hello", 150, 40)

	// White text on white: only the offset shadow shows.
	ink := inkBounds(dc)
	if ink.Empty() {
		t.Fatal("shadow was not drawn")
	}
	if ink.Max.Y < 60 {
		t.Errorf("shadow ink ends at y=%d, want below the text", ink.Max.Y)
	}
}

func TestVisibleShadow(t *testing.T) {
	tests := []struct {
		desc string
		want bool
	}{
		{"", false},
		{"rgba(0, 0, 0, 0.4)", false},
		{"0px 0px 0px #000", false},
		{"0px 1px 0px rgba(0, 0, 0, 0.25)", true},
		{"0px 0px 8px #000", true},
		{"0px 4px 0px transparent", false},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			if _, got := visibleShadow(template.ParseShadow(tt.desc)); got != tt.want {
				t.Errorf("visibleShadow(%q) = %v, want %v", tt.desc, got, tt.want)
			}
		})
	}
}
