// Package server provides the QuoteSnap HTTP API and static texture host.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/xob0t/QuoteSnap/internal/app"
	"github.com/xob0t/QuoteSnap/internal/config"
	"github.com/xob0t/QuoteSnap/internal/logger"
	"github.com/xob0t/QuoteSnap/pkg/render"
)

// MaxBodyBytes caps the size of a render request body.
const MaxBodyBytes = 1 << 20

// ── Server ──

// Options configures a Server.
type Options struct {
	StaticRoot    string        // served at "/"; empty disables static files
	RenderTimeout time.Duration // zero means 30s
	Logger        *slog.Logger
}

// Server serves the render API.
type Server struct {
	renderer *render.Renderer
	static   string
	timeout  time.Duration
	logger   *slog.Logger
}

// New creates a server around r.
func New(r *render.Renderer, opts Options) *Server {
	s := &Server{
		renderer: r,
		static:   opts.StaticRoot,
		timeout:  opts.RenderTimeout,
		logger:   opts.Logger,
	}
	if s.timeout <= 0 {
		s.timeout = 30 * time.Second
	}
	if s.logger == nil {
		s.logger = logger.Discard()
	}
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// API routes.
	mux.HandleFunc("POST /api/render", s.handleRender)
	mux.HandleFunc("GET /api/templates", s.handleTemplates)

	// Static files.
	if s.static != "" {
		mux.Handle("GET /", http.FileServer(http.Dir(s.static)))
	}

	return s.trace(mux)
}

// trace logs every request at trace level.
func (s *Server) trace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		logger.Trace(s.logger, "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration", time.Since(start),
		)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// RunServe loads the config named by --config and serves until interrupted.
func RunServe(args []string) error {
	cfgPath := config.FileName
	var listen string
	for i, a := range args {
		if i+1 >= len(args) {
			break
		}
		switch a {
		case "--config", "-c":
			cfgPath = args[i+1]
		case "--listen", "-l":
			listen = args[i+1]
		}
	}

	cfg, warnings, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if listen != "" {
		cfg.Server.Listen = listen
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
	s := New(renderer, Options{
		StaticRoot:    cfg.Assets.StaticRoot,
		RenderTimeout: cfg.RenderTimeout(),
		Logger:        log,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.ListenAndServe(ctx, cfg.Server.Listen)
}

// ListenAndServe serves on addr until ctx ends, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	hs := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("QuoteSnap listening", "addr", addr)
		errCh <- hs.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := hs.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ── Render ──

// renderRequest keeps fields raw so non-string values can be rejected.
type renderRequest struct {
	Text     any `json:"text"`
	Template any `json:"template"`
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)

	var req renderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	text, okText := req.Text.(string)
	key, okKey := req.Template.(string)
	if !okText || !okKey {
		writeError(w, http.StatusBadRequest, "Invalid payload")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	data, err := s.renderer.Render(ctx, text, key)
	if err != nil {
		var ve *render.ValidationError
		if errors.As(err, &ve) {
			writeError(w, http.StatusBadRequest, ve.Reason)
			return
		}
		s.logger.Error("Render error", "template", key, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to render image")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", `attachment; filename="quote.png"`)
	w.Write(data)
}

// ── Templates ──

type templateInfo struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

func (s *Server) handleTemplates(w http.ResponseWriter, r *http.Request) {
	list := s.renderer.Catalog().List()
	out := make([]templateInfo, 0, len(list))
	for _, t := range list {
		out = append(out, templateInfo{Key: string(t.Key), Label: t.Label})
	}
	writeJSON(w, http.StatusOK, out)
}

// ── Helpers ──

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
