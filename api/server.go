package api

import (
	"sync/atomic"
	"time"

	"github.com/gilby125/airport-network/config"
	"github.com/gilby125/airport-network/graph"
	"github.com/gilby125/airport-network/pkg/cache"
	"github.com/gilby125/airport-network/pkg/health"
)

// GraphHolder publishes the graph once loading finishes. Until then Graph
// returns nil and query endpoints answer 503.
type GraphHolder struct {
	g atomic.Pointer[graph.Graph]
}

func (h *GraphHolder) Graph() *graph.Graph {
	return h.g.Load()
}

func (h *GraphHolder) Set(g *graph.Graph) {
	h.g.Store(g)
}

// Deps is everything the HTTP layer needs.
type Deps struct {
	Graph          *GraphHolder
	Cache          *cache.CacheManager // nil when Redis is disabled
	CacheTTL       time.Duration
	CacheKeyPrefix string
	Query          config.QueryConfig
	Health         *health.HealthChecker
	MetricsEnabled bool
}
