package main

import (
	"context"
	"crypto/tls"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/pioneerbroadband/leadtracker/internal/analytics"
	"github.com/pioneerbroadband/leadtracker/internal/api/router"
	"github.com/pioneerbroadband/leadtracker/internal/audit"
	"github.com/pioneerbroadband/leadtracker/internal/cache"
	appconfig "github.com/pioneerbroadband/leadtracker/internal/config"
	"github.com/pioneerbroadband/leadtracker/internal/http/handlers"
	"github.com/pioneerbroadband/leadtracker/internal/jotform"
	"github.com/pioneerbroadband/leadtracker/internal/leads"
	"github.com/pioneerbroadband/leadtracker/internal/observability/metrics"
	"github.com/pioneerbroadband/leadtracker/internal/seedfile"
	"github.com/pioneerbroadband/leadtracker/internal/slaconfig"
	"github.com/pioneerbroadband/leadtracker/pkg/logging"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting leadtracker API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	trackerMetrics := metrics.NewTrackerMetrics(registry)

	persister, err := buildPersister(cfg, logger, trackerMetrics)
	if err != nil {
		logger.Error("failed to configure persistence", "error", err)
		os.Exit(1)
	}
	if client := newRedisClient(cfg, logger); client != nil {
		persister = cache.Wrap(persister, client, cfg.CacheTTL, logger)
	}

	store := leads.NewStore(persister, logger, trackerMetrics)
	refreshCtx, cancelRefresh := context.WithTimeout(context.Background(), cfg.ProviderTimeout)
	if err := store.Refresh(refreshCtx); err != nil {
		// Start anyway: the snapshot stays empty until an explicit refresh.
		logger.Warn("initial snapshot load failed", "error", err)
	}
	cancelRefresh()

	thresholds, err := slaconfig.Load(cfg.SLAConfigFile)
	if err != nil {
		logger.Error("failed to load SLA thresholds", "error", err, "path", cfg.SLAConfigFile)
		os.Exit(1)
	}
	engine := analytics.NewEngine(thresholds, logger, trackerMetrics)
	auditLog := audit.NewLog(cfg.AuditFile)

	r := router.New(&router.Config{
		Logger:             logger,
		Leads:              handlers.NewLeadsHandler(store, auditLog, logger),
		Analytics:          handlers.NewAnalyticsHandler(store, engine, logger),
		Export:             handlers.NewExportHandler(store, engine, logger),
		Audit:              handlers.NewAuditHandler(auditLog, logger),
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// buildPersister picks the system of record. A seed CSV on disk wins so
// the tracker can run offline; otherwise the forms provider is used.
func buildPersister(cfg *appconfig.Config, logger *logging.Logger, m *metrics.TrackerMetrics) (leads.Persister, error) {
	if _, err := os.Stat(cfg.SeedFile); err == nil {
		logger.Info("using seed file as system of record", "path", cfg.SeedFile)
		return seedfile.New(cfg.SeedFile), nil
	}

	if cfg.JotformAPIKey == "" {
		logger.Warn("no forms provider API key and no seed file; starting with an empty seed file", "path", cfg.SeedFile)
		return seedfile.New(cfg.SeedFile), nil
	}

	client, err := jotform.New(jotform.Config{
		BaseURL: cfg.JotformBaseURL,
		APIKey:  cfg.JotformAPIKey,
		FormID:  cfg.JotformFormID,
		Timeout: cfg.ProviderTimeout,
		Logger:  logger.Logger,
		Metrics: m,
	})
	if err != nil {
		return nil, err
	}
	return jotform.NewPersister(client, logger.Logger), nil
}

func newRedisClient(cfg *appconfig.Config, logger *logging.Logger) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	opts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available, snapshot caching disabled", "error", err)
		return nil
	}
	return client
}
