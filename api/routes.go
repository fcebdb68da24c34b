package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gilby125/airport-network/pkg/buildinfo"
	"github.com/gilby125/airport-network/pkg/health"
	"github.com/gilby125/airport-network/pkg/metrics"
	"github.com/gilby125/airport-network/pkg/middleware"
)

// RegisterRoutes registers all API routes
func RegisterRoutes(router *gin.Engine, d *Deps) {
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Recovery())
	if d.MetricsEnabled {
		router.Use(middleware.Metrics())
		router.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	router.GET("/health", func(c *gin.Context) {
		report := d.Health.CheckHealth(c.Request.Context())
		c.JSON(statusFor(report), report)
	})
	router.GET("/health/ready", func(c *gin.Context) {
		report := d.Health.CheckReadiness(c.Request.Context())
		c.JSON(statusFor(report), report)
	})
	router.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, d.Health.CheckLiveness(c.Request.Context()))
	})
	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, buildinfo.Info())
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Airport routes
		v1.GET("/airports", ListAirports(d))
		v1.GET("/airports/nearest", GetNearestAirport(d))
		v1.GET("/airports/:id", GetAirport(d))
		v1.GET("/airports/:id/neighbours", GetNeighbours(d))

		v1.GET("/routes/distance", GetRouteDistance(d))

		g := v1.Group("/graph")
		g.GET("/snapshot", GetSnapshot(d))

		// Query responses depend only on the URL, so they are cached whole.
		queries := g.Group("")
		if d.Cache != nil {
			queries.Use(middleware.ResponseCache(d.Cache, middleware.CacheConfig{
				TTL:       d.CacheTTL,
				KeyPrefix: d.CacheKeyPrefix,
			}))
		}
		{
			queries.GET("/connected", GetConnected(d))
			queries.GET("/within", GetWithinDistance(d))
			queries.GET("/close", GetCloseAirports(d))
			queries.GET("/rank", GetRanking(d))
			queries.GET("/recommend", GetRecommendations(d))
		}
	}
}

func statusFor(report health.HealthReport) int {
	if report.Status == health.StatusUp {
		return http.StatusOK
	}
	return http.StatusServiceUnavailable
}
