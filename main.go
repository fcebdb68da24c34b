package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/gilby125/airport-network/api"
	"github.com/gilby125/airport-network/config"
	"github.com/gilby125/airport-network/dataset"
	"github.com/gilby125/airport-network/graph"
	"github.com/gilby125/airport-network/pkg/buildinfo"
	"github.com/gilby125/airport-network/pkg/cache"
	"github.com/gilby125/airport-network/pkg/health"
	"github.com/gilby125/airport-network/pkg/logger"
	"github.com/gilby125/airport-network/pkg/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal(err, "Failed to load configuration")
	}

	logger.Init(logger.Config{
		Level:  cfg.LoggingConfig.Level,
		Format: cfg.LoggingConfig.Format,
	})
	log := logger.Default().Component("main")
	log.Info("Configuration loaded", "environment", cfg.Environment, "version", buildinfo.Version)

	metric, err := cfg.RiskMetric()
	if err != nil {
		log.Fatal(err, "Invalid risk metric")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	holder := &api.GraphHolder{}
	hc := health.NewHealthChecker(buildinfo.Version)
	hc.AddChecker(&health.GraphChecker{Name: "graph", Graph: holder.Graph}, true)

	deps := &api.Deps{
		Graph:          holder,
		CacheTTL:       cfg.CacheConfig.TTL,
		CacheKeyPrefix: cfg.CacheConfig.KeyPrefix,
		Query:          cfg.QueryConfig,
		Health:         hc,
		MetricsEnabled: cfg.MetricsEnabled,
	}

	if cfg.RedisConfig.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr(),
			Password: cfg.RedisConfig.Password,
			DB:       cfg.RedisConfig.DB,
		})
		defer client.Close()

		// The cache is optional: a Redis outage degrades to uncached queries.
		hc.AddChecker(&health.RedisChecker{Name: "redis", Client: client}, false)
		deps.Cache = cache.NewCacheManager(cache.NewRedisCache(client, cfg.CacheConfig.KeyPrefix))
		log.Info("Response cache enabled", "redis", cfg.RedisAddr(), "ttl", cfg.CacheConfig.TTL.String())
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	api.RegisterRoutes(router, deps)

	srv := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err, "Failed to start server")
		}
	}()

	// Serve health and liveness while the dataset downloads.
	go func() {
		g, err := loadGraph(ctx, cfg, metric)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error(err, "Failed to load airport graph")
			os.Exit(1)
		}
		holder.Set(g)
		metrics.SetGraphSize(g)
		log.Info("Airport graph ready", "airports", g.Len(), "routes", g.RouteCount(), "metric", g.Metric().String())
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal(err, "Server forced to shutdown")
	}
	log.Info("Server exited properly")
}

func loadGraph(ctx context.Context, cfg *config.Config, metric graph.RiskMetric) (*graph.Graph, error) {
	loader := dataset.NewLoader(dataset.Options{
		HTTPTimeout: cfg.DatasetConfig.HTTPTimeout,
		RetryMax:    cfg.DatasetConfig.RetryMax,
		Logger:      logger.Default(),
	})
	ds, err := loader.Load(ctx, dataset.Sources{
		Airports:  cfg.DatasetConfig.AirportsSource,
		Routes:    cfg.DatasetConfig.RoutesSource,
		RiskIndex: cfg.DatasetConfig.RiskIndexSource,
	})
	if err != nil {
		return nil, err
	}
	g, _, err := ds.Build(metric)
	return g, err
}
