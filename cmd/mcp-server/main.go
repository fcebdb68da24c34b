package main

import (
	"context"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/redis/go-redis/v9"

	"github.com/gilby125/airport-network/config"
	"github.com/gilby125/airport-network/dataset"
	"github.com/gilby125/airport-network/pkg/buildinfo"
	"github.com/gilby125/airport-network/pkg/cache"
	"github.com/gilby125/airport-network/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal(err, "Failed to load configuration")
	}

	// stdout carries the MCP protocol, so logs go to stderr.
	log := logger.New(logger.Config{
		Level:  cfg.LoggingConfig.Level,
		Format: cfg.LoggingConfig.Format,
		Output: os.Stderr,
	}).Component("mcp-server")

	metric, err := cfg.RiskMetric()
	if err != nil {
		log.Fatal(err, "Invalid risk metric")
	}

	loader := dataset.NewLoader(dataset.Options{
		HTTPTimeout: cfg.DatasetConfig.HTTPTimeout,
		RetryMax:    cfg.DatasetConfig.RetryMax,
		Logger:      log,
	})
	ds, err := loader.Load(context.Background(), dataset.Sources{
		Airports:  cfg.DatasetConfig.AirportsSource,
		Routes:    cfg.DatasetConfig.RoutesSource,
		RiskIndex: cfg.DatasetConfig.RiskIndexSource,
	})
	if err != nil {
		log.Fatal(err, "Failed to load dataset")
	}
	g, _, err := ds.Build(metric)
	if err != nil {
		log.Fatal(err, "Failed to build airport graph")
	}
	log.Info("Airport graph ready", "airports", g.Len(), "routes", g.RouteCount())

	tools := &toolset{
		g:        g,
		cacheTTL: cfg.CacheConfig.TTL,
		maxRank:  cfg.QueryConfig.RankMaxSize,
	}
	if cfg.RedisConfig.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr(),
			Password: cfg.RedisConfig.Password,
			DB:       cfg.RedisConfig.DB,
		})
		defer client.Close()
		tools.cache = cache.NewCacheManager(cache.NewRedisCache(client, cfg.CacheConfig.KeyPrefix+":mcp"))
	}

	s := server.NewMCPServer(
		"airport-network-mcp",
		buildinfo.Version,
		server.WithLogging(),
	)
	tools.register(s)

	if err := server.ServeStdio(s); err != nil {
		log.Error(err, "Server error")
	}
}
