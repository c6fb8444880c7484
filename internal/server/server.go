// Package server exposes the form pipeline over HTTP: server-rendered
// forms, saves, print views and the attachment endpoints.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/goliatone/go-applyform/internal/logger"
	"github.com/goliatone/go-applyform/internal/metrics"
	"github.com/goliatone/go-applyform/pkg/applications"
	"github.com/goliatone/go-applyform/pkg/attachments"
	"github.com/goliatone/go-applyform/pkg/orchestrator"
	"github.com/goliatone/go-applyform/pkg/renderers/vanilla"
)

// DefaultMaxUploadBytes caps attachment uploads when no limit is configured.
const DefaultMaxUploadBytes int64 = 2 << 30

var (
	errRequestTooLarge = errors.New("server: request body too large")
	errInvalidForm     = errors.New("server: malformed form body")
)

// Dependencies are the collaborators the handlers call.
type Dependencies struct {
	Orchestrator *orchestrator.Orchestrator
	Forms        applications.FormFetcher
	Responses    ResponseStore
	// Attachments is optional; without it the attachment routes answer 503.
	Attachments attachments.Client
	Metrics     *metrics.Metrics
	Gatherer    prometheus.Gatherer
	Logger      logger.Logger
}

// Options tune request handling.
type Options struct {
	Address        string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxUploadBytes int64
	UpdateOnInput  bool
	ThemeName      string
	ThemeVariant   string
}

// Server holds the router and its dependencies.
type Server struct {
	deps   Dependencies
	opts   Options
	logger logger.Logger
	router chi.Router
}

// New wires the routes.
func New(deps Dependencies, opts Options) *Server {
	if deps.Logger == nil {
		deps.Logger = logger.NewNoOpLogger()
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = DefaultMaxUploadBytes
	}
	s := &Server{deps: deps, opts: opts, logger: deps.Logger}
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.deps.Gatherer, promhttp.HandlerOpts{}))
	r.Handle(orchestrator.DefaultAssetPrefix+"/*", http.StripPrefix(
		orchestrator.DefaultAssetPrefix+"/",
		http.FileServer(http.FS(vanilla.AssetsFS())),
	))

	r.Route("/applications/{applicationID}", func(r chi.Router) {
		r.Get("/forms/{formID}", s.handleRenderForm)
		r.Post("/forms/{formID}", s.handleSaveForm)
		r.Get("/forms/{formID}/print", s.handlePrintForm)
		r.Get("/attachments", s.handleListAttachments)
		r.Post("/attachments", s.handleUploadAttachment)
		r.Delete("/attachments/{attachmentID}", s.handleDeleteAttachment)
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.opts.Address,
		Handler:      s.router,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", map[string]any{"address": s.opts.Address})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("http server shutting down", nil)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
