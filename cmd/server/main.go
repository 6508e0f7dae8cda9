package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crop-yield-service/internal/adapters/primary/http/handlers"
	"crop-yield-service/internal/adapters/primary/http/middleware"
	"crop-yield-service/internal/adapters/secondary/filestore"
	"crop-yield-service/internal/adapters/secondary/kube"
	"crop-yield-service/internal/adapters/secondary/memcatalog"
	"crop-yield-service/internal/adapters/secondary/postgres"
	"crop-yield-service/internal/adapters/secondary/prometheus"
	"crop-yield-service/internal/adapters/secondary/runtimeinfo"
	"crop-yield-service/internal/config"
	ports "crop-yield-service/internal/core/ports/output"
	"crop-yield-service/internal/core/services"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	initLogger(cfg)

	// ============================================================================
	// Hexagonal Architecture Wiring
	// ============================================================================

	// Variety catalog (postgres or YAML seed)
	var catalog ports.VarietyCatalog
	var pool *pgxpool.Pool
	switch cfg.Catalog.Backend {
	case config.CatalogBackendPostgres:
		pool, err = openPool(cfg.Database)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		defer pool.Close()
		catalog = postgres.NewVarietyCatalog(pool)
		log.Info("variety catalog: postgres")
	default:
		catalog, err = memcatalog.Load(cfg.Catalog.SeedPath)
		if err != nil {
			log.Fatalf("load variety seed: %v", err)
		}
		log.WithField("seed", cfg.Catalog.SeedPath).Info("variety catalog: memory")
	}

	// Status publisher (Optional - based on config)
	var publisher ports.StatusPublisher
	if cfg.Kubernetes.Enabled {
		p, err := kube.NewStatusPublisher(&cfg.Kubernetes)
		if err != nil {
			log.Warnf("status publisher init failed (continuing without K8s integration): %v", err)
		} else {
			publisher = p
			log.Info("kubernetes status publisher initialized")
		}
	} else {
		log.Info("kubernetes status publishing disabled")
	}

	// Metrics
	registry := prom.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := prometheus.NewRecorder(registry)

	// Core Services (Application Layer)
	probe := runtimeinfo.NewProbe()
	store := filestore.NewArtifactStore(cfg.Models.Dir)
	fingerprinter := services.NewFingerprinter(probe, filestore.NewFingerprintCache(cfg.Fingerprint.CachePath))
	validator := services.NewCompatibilityValidator(store, probe, cfg.Models.PinnedLibraries, cfg.Models.YieldRange)
	validator.SetMetrics(metrics)

	bootCtx, cancelBoot := context.WithTimeout(context.Background(), 2*time.Minute)
	runtime := services.Bootstrap(bootCtx, fingerprinter, validator, publisher)
	cancelBoot()

	resolver := services.NewVarietyResolver(catalog, nil)
	resolver.SetMetrics(metrics)
	predictionSvc := services.NewPredictionService(resolver, catalog, services.NewHeuristicPredictor(nil), runtime, cfg.Models.YieldRange)
	predictionSvc.SetMetrics(metrics)

	// Primary Adapter (HTTP Handlers)
	h := handlers.New(predictionSvc, resolver, runtime)

	// Setup router
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logging(), gin.Recovery())

	api := router.Group("/api/v1/yield")
	h.RegisterRoutes(api)

	router.GET("/healthz", h.Health)
	if cfg.Metrics.Enabled {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Infof("starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced shutdown: %v", err)
	}

	log.Info("server stopped")
}

func openPool(db config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(db.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}
	poolCfg.MaxConns = int32(db.MaxOpenConns)
	poolCfg.MinConns = int32(db.MaxIdleConns)
	poolCfg.MaxConnLifetime = db.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create db pool: %w", err)
	}
	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	log.Info("database connection established")
	return pool, nil
}

func initLogger(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Logger.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
