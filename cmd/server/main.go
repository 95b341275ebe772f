package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"medlens/internal/analyzer"
	"medlens/internal/analyzer/gemini"
	"medlens/internal/config"
	"medlens/internal/encoder"
	"medlens/internal/errreport/noop"
	sentryreport "medlens/internal/errreport/sentry"
	"medlens/internal/handler"
	"medlens/internal/logger"
	"medlens/internal/metrics"
	"medlens/internal/port"
	"medlens/internal/router"
	"medlens/internal/service"
	"medlens/internal/session"
	"medlens/internal/storage"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log)
	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx := context.Background()

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New("medlens", reg)

	benchmarks, err := analyzer.LoadBenchmarks(cfg.Analyzer.BenchmarksFile)
	if err != nil {
		return fmt.Errorf("failed to load cost benchmarks: %w", err)
	}

	analyzer.RegisterProvider("gemini", gemini.Factory)
	docAnalyzer, err := analyzer.NewAnalyzer(&cfg.Analyzer, benchmarks, logger.Component(log, "analyzer"))
	if err != nil {
		return fmt.Errorf("failed to initialize analyzer: %w", err)
	}

	kv, err := storage.NewKeyValueStore(ctx, &cfg.Store, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	codec, err := session.NewCodec(cfg.Store.Codec)
	if err != nil {
		return fmt.Errorf("failed to initialize session codec: %w", err)
	}
	sessions := session.NewStore(kv, codec, cfg.Store.HistoryCap, log)

	reporter, err := newReporter(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize error reporter: %w", err)
	}
	defer reporter.Flush()

	workspaces := service.NewWorkspaces(sessions, cfg.Workspace, cfg.RateLimit, m, log)
	deviceSvc := service.NewDeviceService(cfg.Device)
	accountSvc := service.NewAccountService(workspaces, log)
	scanSvc := service.NewScanService(workspaces, encoder.New(cfg.Upload.MaxBytes()), docAnalyzer, reporter, m, log)

	r := router.Setup(deviceSvc, router.Handlers{
		Device:  handler.NewDeviceHandler(deviceSvc),
		Account: handler.NewAccountHandler(accountSvc),
		History: handler.NewHistoryHandler(accountSvc),
		Scan:    handler.NewScanHandler(scanSvc, cfg.Upload.MaxBytes()),
		App:     handler.NewAppHandler(accountSvc, scanSvc),
		Health:  handler.NewHealthHandler(kv),
	}, m, reg, cfg.CORS.AllowedOrigins, log)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", cfg.Server.Port).
			Str("version", version).
			Str("store", cfg.Store.Backend).
			Str("analyzer", cfg.Analyzer.Provider).
			Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}

func newReporter(cfg *config.Config, log zerolog.Logger) (port.ErrorReporter, error) {
	if cfg.Sentry.DSN == "" {
		return noop.NewReporter(log), nil
	}
	return sentryreport.NewReporter(&cfg.Sentry, version)
}
