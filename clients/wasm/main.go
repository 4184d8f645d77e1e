//go:build js && wasm

// QuoteSnap WASM, a client-side renderer.
// Compiled with: GOOS=js GOARCH=wasm go build -o quotesnap.wasm ./clients/wasm/
package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"
	"syscall/js"

	"github.com/xob0t/QuoteSnap/pkg/fonts"
	"github.com/xob0t/QuoteSnap/pkg/paint"
	"github.com/xob0t/QuoteSnap/pkg/render"
)

// In-memory texture store keyed by static path, e.g. "/textures/old-paper.png".
var (
	assetsMu sync.RWMutex
	assets   = make(map[string][]byte)
)

var (
	registry = fonts.NewRegistry(fonts.Options{})
	renderer = render.New(render.Options{
		Fonts: registry,
		Painter: paint.NewPainter(paint.NewResolver(paint.ResolverOptions{
			Assets: lookupAsset,
		}), nil),
	})
)

func main() {
	fmt.Println("QuoteSnap WASM loaded")

	// Register JS-callable functions.
	js.Global().Set("goRenderQuote", js.FuncOf(renderQuote))
	js.Global().Set("goRegisterAsset", js.FuncOf(registerAsset))
	js.Global().Set("goRemoveAsset", js.FuncOf(removeAsset))
	js.Global().Set("goRegisterFont", js.FuncOf(registerFont))
	js.Global().Set("goReady", js.ValueOf(true))

	// Block forever (WASM must not exit).
	select {}
}

func lookupAsset(ref string) ([]byte, bool) {
	assetsMu.RLock()
	defer assetsMu.RUnlock()
	data, ok := assets[ref]
	return data, ok
}

// goRegisterAsset(path, base64Data) stores a texture in Go memory.
func registerAsset(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf("error: need path, base64Data")
	}
	data, err := base64.StdEncoding.DecodeString(args[1].String())
	if err != nil {
		return js.ValueOf("error: invalid base64: " + err.Error())
	}

	assetsMu.Lock()
	assets[args[0].String()] = data
	assetsMu.Unlock()
	return js.ValueOf("ok")
}

// goRemoveAsset(path) removes a texture from Go memory.
func removeAsset(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf("error: need path")
	}
	assetsMu.Lock()
	delete(assets, args[0].String())
	assetsMu.Unlock()
	return js.ValueOf("ok")
}

// goRegisterFont(family, weight, base64Data) adds a TTF, OTF, WOFF or WOFF2 font.
func registerFont(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return js.ValueOf("error: need family, weight, base64Data")
	}
	data, err := base64.StdEncoding.DecodeString(args[2].String())
	if err != nil {
		return js.ValueOf("error: invalid base64: " + err.Error())
	}
	if err := registry.Register(args[0].String(), args[1].Int(), data); err != nil {
		return js.ValueOf("error: " + err.Error())
	}
	return js.ValueOf("ok")
}

// goRenderQuote(text, template) renders a card and returns base64 PNG.
func renderQuote(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 || args[0].Type() != js.TypeString || args[1].Type() != js.TypeString {
		return js.ValueOf("error: Invalid payload")
	}

	data, err := renderer.Render(context.Background(), args[0].String(), args[1].String())
	if err != nil {
		return js.ValueOf("error: " + err.Error())
	}
	return js.ValueOf(base64.StdEncoding.EncodeToString(data))
}
