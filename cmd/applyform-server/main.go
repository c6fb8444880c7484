// Command applyform-server serves application forms over HTTP.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	theme "github.com/goliatone/go-theme"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/goliatone/go-applyform/internal/config"
	"github.com/goliatone/go-applyform/internal/httpclient"
	"github.com/goliatone/go-applyform/internal/logger"
	"github.com/goliatone/go-applyform/internal/metrics"
	"github.com/goliatone/go-applyform/internal/server"
	"github.com/goliatone/go-applyform/pkg/applications"
	"github.com/goliatone/go-applyform/pkg/attachments"
	"github.com/goliatone/go-applyform/pkg/orchestrator"
)

// apiTokenHeader carries the API key on every grants API request.
const apiTokenHeader = "X-SGG-Token"

func main() {
	configDir := flag.String("config", "", "directory holding config.yaml (defaults to ./configs and .)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var paths []string
	if *configDir != "" {
		paths = append(paths, *configDir)
	}
	cfg, err := config.Load(paths...)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zl := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer func() { _ = zl.Sync() }()
	zl = zl.With(zap.String("app", cfg.App.Name), zap.String("environment", cfg.App.Environment))
	appLogger := logger.NewZapAdapter(zl)

	if err := run(ctx, cfg, appLogger); err != nil {
		appLogger.WithError(err).Error("server stopped", nil)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, appLogger logger.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	var (
		forms       applications.FormFetcher
		responses   server.ResponseStore
		attachStore attachments.Client
	)
	if cfg.API.UseMockData {
		appLogger.Info("serving fixtures in mock mode", map[string]any{"dir": cfg.API.MockFixturesDir})
		fixtures := applications.NewFixtureFetcher(os.DirFS(cfg.API.MockFixturesDir))
		forms = fixtures
		responses = server.NewMemoryStore(fixtures)
		attachStore = attachments.NewMemoryClient()
	} else {
		transport := httpclient.New(cfg.API.BaseURL, cfg.API.Timeout,
			httpclient.WithHeader(apiTokenHeader, cfg.API.Token),
			httpclient.WithObserver(m.ObserveUpstream),
		)
		forms = applications.NewHTTPFetcher(transport)
		responses = server.NewAPIStore(applications.NewClient(transport))
		attachStore = attachments.NewHTTPClient(transport)
	}

	if cfg.Cache.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.Address,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			appLogger.WithError(err).Warn("form cache unreachable; requests fall through to the API", map[string]any{
				"address": cfg.Cache.Address,
			})
		}
		forms = applications.NewCachedFetcher(forms, rdb,
			applications.WithTTL(cfg.Cache.SchemaTTL),
			applications.WithCacheLogger(appLogger),
		)
	}

	manifests := []*theme.Manifest{orchestrator.DefaultManifest()}
	if cfg.Render.ThemesDir != "" {
		extra, err := orchestrator.LoadManifests(os.DirFS(cfg.Render.ThemesDir))
		if err != nil {
			return err
		}
		manifests = append(manifests, extra...)
	}
	selector, err := orchestrator.NewManifestSelector(cfg.Render.Theme, cfg.Render.Variant, manifests...)
	if err != nil {
		return err
	}

	orch := orchestrator.New(
		orchestrator.WithFormFetcher(forms),
		orchestrator.WithThemeSelector(selector),
		orchestrator.WithLogger(appLogger),
		orchestrator.WithRenderObserver(m),
	)

	srv := server.New(server.Dependencies{
		Orchestrator: orch,
		Forms:        forms,
		Responses:    responses,
		Attachments:  attachStore,
		Metrics:      m,
		Gatherer:     reg,
		Logger:       appLogger,
	}, server.Options{
		Address:        cfg.Server.Address,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxUploadBytes: cfg.Uploads.MaxBytes,
		UpdateOnInput:  cfg.Render.UpdateOnInput,
		ThemeName:      cfg.Render.Theme,
		ThemeVariant:   cfg.Render.Variant,
	})
	return srv.ListenAndServe(ctx)
}
