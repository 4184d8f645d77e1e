// QuoteSnap renders text onto styled 1080×1350 quote cards.
//
// Usage:
//
//	quotesnap -o <file> --template <key> [--text <text> | --file <path>]
//	quotesnap templates [--config <path>]
//	quotesnap serve [--config <path>] [--listen <addr>]
//	quotesnap init [--config <path>]
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xob0t/QuoteSnap/clients/server"
	"github.com/xob0t/QuoteSnap/internal/app"
	"github.com/xob0t/QuoteSnap/internal/config"
	"github.com/xob0t/QuoteSnap/internal/logger"
	"github.com/xob0t/QuoteSnap/pkg/generator"
	"github.com/xob0t/QuoteSnap/pkg/template"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "init":
		if err := runInit(os.Args[2:]); err != nil {
			fatal(err)
		}
	case "templates":
		if err := runTemplates(os.Args[2:]); err != nil {
			fatal(err)
		}
	case "serve":
		if err := server.RunServe(os.Args[2:]); err != nil {
			fatal(err)
		}
	case "help", "-h", "--help":
		printUsage()
	default:
		// Default: render mode (all flags on root).
		if err := run(os.Args[1:], os.Stdin); err != nil {
			fatal(err)
		}
	}
}

func run(args []string, stdin io.Reader) error {
	fs := flag.NewFlagSet("quotesnap", flag.ExitOnError)

	var (
		output   string
		key      string
		text     string
		textPath string
		cfgPath  string
	)

	fs.StringVar(&output, "o", "", "Output file path (.png, .jpg or .jpeg)")
	fs.StringVar(&output, "output", "", "Output file path (.png, .jpg or .jpeg)")
	fs.StringVar(&key, "template", string(template.Typewriter), "Template key")
	fs.StringVar(&key, "t", string(template.Typewriter), "Template key")
	fs.StringVar(&text, "text", "", "Text to render")
	fs.StringVar(&textPath, "file", "", "Read the text from a file")
	fs.StringVar(&cfgPath, "config", config.FileName, "Config file path")

	fs.Usage = printUsage
	if err := fs.Parse(args); err != nil {
		return err
	}

	if output == "" {
		printUsage()
		return fmt.Errorf("output file is required (-o)")
	}
	if !generator.Supported(filepath.Ext(output)) {
		return fmt.Errorf("unsupported output format %q (use .png, .jpg or .jpeg)", output)
	}

	text, err := readText(text, textPath, stdin)
	if err != nil {
		return err
	}

	cfg, warnings, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	log, closer := app.Logger(cfg)
	defer closer.Close()
	for _, w := range warnings {
		log.Warn(w)
	}

	renderer, err := app.NewRenderer(cfg, log)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RenderTimeout())
	defer cancel()

	fmt.Printf("Rendering: %s (%s)\n", output, key)
	img, res, err := renderer.RenderImage(ctx, text, key)
	if err != nil {
		return err
	}
	if err := generator.Generate(output, img); err != nil {
		return err
	}
	fmt.Printf("Done: %s (%s, %d lines at %.0fpx)\n", output, res.Kind, len(res.Lines), res.FontSize)
	return nil
}

// readText picks the text from --text, then --file, then stdin.
func readText(text, path string, stdin io.Reader) (string, error) {
	switch {
	case text != "":
		return text, nil
	case path != "":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read text: %w", err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}

func runTemplates(args []string) error {
	fs := flag.NewFlagSet("templates", flag.ExitOnError)
	var cfgPath string
	fs.StringVar(&cfgPath, "config", config.FileName, "Config file path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, cfgWarnings, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	catalog, warnings, err := template.LoadCatalog(cfg.Templates.Overrides)
	if err != nil {
		return err
	}
	registry := app.Fonts(cfg, logger.Discard())
	warnings = append(cfgWarnings, append(warnings, registry.Ensure()...)...)
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}

	fmt.Print(template.FormatCatalog(catalog))
	fmt.Print(formatFamilies(registry.Families()))
	return nil
}

// formatFamilies lists the registered font families.
func formatFamilies(families []string) string {
	if len(families) == 0 {
		return "\nFonts: embedded only (Go Regular, Go Mono)\n"
	}
	return "\nFonts: " + strings.Join(families, ", ") + "\n"
}

func runInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	var cfgPath string
	var force bool
	fs.StringVar(&cfgPath, "config", config.FileName, "Output path for the config file")
	fs.BoolVar(&force, "force", false, "Overwrite an existing file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if _, err := os.Stat(cfgPath); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", cfgPath)
	}
	if err := config.DefaultConfig().Save(cfgPath); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	fmt.Printf("Created: %s\n", cfgPath)
	fmt.Println("Run: quotesnap -o quote.png --template cosmic --text \"Hello world\"")
	return nil
}

func fatal(err error) {
	logger.Fail(logger.NewStderrLogger(logger.LevelInfo), "quotesnap failed", "error", err)
	os.Exit(1)
}

func printUsage() {
	fmt.Printf(`QuoteSnap - Quote Card Renderer (Pure Go)

USAGE:
    quotesnap -o <file> --template <key> [--text <text> | --file <path>]
    quotesnap templates [--config <path>]
    quotesnap serve [--config <path>] [--listen <addr>]
    quotesnap init [--config <path>] [--force]

RENDER MODE:
    -o, --output <path>      Output file (.png, .jpg or .jpeg)
    -t, --template <key>     typewriter, cosmic, nebula or cloudy (default: typewriter)
    --text <text>            Text to render
    --file <path>            Read the text from a file (stdin if neither is given)
    --config <path>          Config file (default: %s)

SERVER:
    quotesnap serve          POST /api/render, GET /api/templates, textures at /

EXAMPLES:
    quotesnap init
    quotesnap templates
    quotesnap -o card.png --template cosmic --text "Stay hungry. Stay foolish."
    echo "Hello world" | quotesnap -o card.jpg -t cloudy
    quotesnap serve --listen :8080
`, config.FileName)
}
