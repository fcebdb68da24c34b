package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gilby125/airport-network/graph"
	"github.com/gilby125/airport-network/pkg/cache"
	"github.com/gilby125/airport-network/pkg/metrics"
)

// neighbour is one entry of the neighbours listing.
type neighbour struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	DistanceKm int    `json:"distance_km"`
}

// respondError maps graph errors to status codes: not found is 404, a bad
// argument is 400, anything else is 500.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, graph.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, graph.ErrInvalidArgument):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// loaded returns the graph, or answers 503 if it is still loading.
func loaded(c *gin.Context, holder *GraphHolder) (*graph.Graph, bool) {
	g := holder.Graph()
	if g == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "airport graph is still loading"})
		return nil, false
	}
	return g, true
}

// observed runs a graph query and records it under name.
func observed[T any](name string, fn func() (T, error)) (T, error) {
	start := time.Now()
	v, err := fn()
	metrics.ObserveQuery(name, start, err)
	return v, err
}

// ListAirports returns every airport in ascending id order.
// GET /api/v1/airports
func ListAirports(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		g, ok := loaded(c, d.Graph)
		if !ok {
			return
		}

		airports := []graph.Airport{}
		fetch := func() (interface{}, error) { return g.Airports(), nil }
		if d.Cache != nil {
			if _, err := d.Cache.GetOrSet(c.Request.Context(), cache.AirportsKey(), d.CacheTTL, &airports, fetch); err != nil {
				respondError(c, err)
				return
			}
		} else {
			airports = g.Airports()
		}

		c.JSON(http.StatusOK, gin.H{
			"count":    len(airports),
			"airports": airports,
		})
	}
}

// GetAirport returns one airport with its route count.
// GET /api/v1/airports/:id
func GetAirport(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		g, ok := loaded(c, d.Graph)
		if !ok {
			return
		}
		id, err := parseInt("id", c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}

		airport, err := observed("airport", func() (graph.Airport, error) { return g.Airport(id) })
		if err != nil {
			respondError(c, err)
			return
		}
		degree, _ := g.Degree(id)

		c.JSON(http.StatusOK, gin.H{
			"airport": airport,
			"degree":  degree,
		})
	}
}

// GetNeighbours lists the airports with a direct route to :id, optionally
// only those at most max kilometers away.
// GET /api/v1/airports/:id/neighbours?max=800
func GetNeighbours(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		g, ok := loaded(c, d.Graph)
		if !ok {
			return
		}
		id, err := parseInt("id", c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		_, bounded := c.GetQuery("max")
		maxDistance, err := optionalInt(c, "max", 0)
		if err != nil {
			respondError(c, err)
			return
		}

		ids, err := observed("neighbours", func() ([]int, error) {
			if !bounded {
				return g.Neighbours(id)
			}
			within, err := g.NeighboursWithin(id, maxDistance)
			if err != nil {
				return nil, err
			}
			return within.Sorted(), nil
		})
		if err != nil {
			respondError(c, err)
			return
		}

		out := make([]neighbour, 0, len(ids))
		for _, n := range ids {
			a, _ := g.Airport(n)
			dist, _ := g.Distance(id, n)
			out = append(out, neighbour{ID: n, Name: a.Name, DistanceKm: dist})
		}

		c.JSON(http.StatusOK, gin.H{
			"id":         id,
			"count":      len(out),
			"neighbours": out,
		})
	}
}

// GetNearestAirport turns a map position into the closest airport.
// GET /api/v1/airports/nearest?lat=48.85&lon=2.35
func GetNearestAirport(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		g, ok := loaded(c, d.Graph)
		if !ok {
			return
		}
		lat, err := requiredFloat(c, "lat")
		if err != nil {
			respondError(c, err)
			return
		}
		lon, err := requiredFloat(c, "lon")
		if err != nil {
			respondError(c, err)
			return
		}

		start := time.Now()
		airport, dist, err := g.Nearest(lat, lon)
		metrics.ObserveQuery("nearest", start, err)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"airport":     airport,
			"distance_km": dist,
		})
	}
}

// GetRouteDistance returns the great-circle length of the route between two
// airports, or 0 with direct=false when they are not adjacent.
// GET /api/v1/routes/distance?from=1&to=2
func GetRouteDistance(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		g, ok := loaded(c, d.Graph)
		if !ok {
			return
		}
		from, err := requiredInt(c, "from")
		if err != nil {
			respondError(c, err)
			return
		}
		to, err := requiredInt(c, "to")
		if err != nil {
			respondError(c, err)
			return
		}

		dist, err := observed("distance", func() (int, error) { return g.Distance(from, to) })
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"from":        from,
			"to":          to,
			"direct":      g.HasRoute(from, to),
			"distance_km": dist,
		})
	}
}

// GetConnected reports whether any chain of routes joins two airports.
// GET /api/v1/graph/connected?from=1&to=2
func GetConnected(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		g, ok := loaded(c, d.Graph)
		if !ok {
			return
		}
		from, err := requiredInt(c, "from")
		if err != nil {
			respondError(c, err)
			return
		}
		to, err := requiredInt(c, "to")
		if err != nil {
			respondError(c, err)
			return
		}

		connected, err := observed("connected", func() (bool, error) { return g.IsConnected(from, to) })
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"from":      from,
			"to":        to,
			"connected": connected,
		})
	}
}

// GetWithinDistance lists the airports reachable from origin within a
// kilometer budget.
// GET /api/v1/graph/within?origin=1&max=1500
func GetWithinDistance(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		g, ok := loaded(c, d.Graph)
		if !ok {
			return
		}
		origin, err := requiredInt(c, "origin")
		if err != nil {
			respondError(c, err)
			return
		}
		maxDistance, err := requiredInt(c, "max")
		if err != nil {
			respondError(c, err)
			return
		}

		set, err := observed("within", func() (graph.IDSet, error) { return g.WithinDistance(origin, maxDistance) })
		if err != nil {
			respondError(c, err)
			return
		}
		ids := set.Sorted()

		c.JSON(http.StatusOK, gin.H{
			"origin":   origin,
			"max":      maxDistance,
			"count":    len(ids),
			"airports": ids,
		})
	}
}

// GetCloseAirports finds the airports close to every seed.
// GET /api/v1/graph/close?ids=1,2&max=800&mode=adjacent
func GetCloseAirports(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		g, ok := loaded(c, d.Graph)
		if !ok {
			return
		}
		seeds, err := parseIDs(c.Query("ids"))
		if err != nil {
			respondError(c, err)
			return
		}
		maxDistance, err := requiredInt(c, "max")
		if err != nil {
			respondError(c, err)
			return
		}
		mode, err := graph.ParseProximity(c.Query("mode"))
		if err != nil {
			respondError(c, err)
			return
		}

		set, err := observed("close", func() (graph.IDSet, error) { return g.Close(mode, seeds, maxDistance) })
		if err != nil {
			respondError(c, err)
			return
		}
		ids := set.Sorted()

		c.JSON(http.StatusOK, gin.H{
			"seeds":    seeds,
			"max":      maxDistance,
			"mode":     mode.String(),
			"count":    len(ids),
			"airports": ids,
		})
	}
}

// rankLimit reads limit, bounded by the configured maximum.
func rankLimit(c *gin.Context, d *Deps) (int, error) {
	limit, err := optionalInt(c, "limit", d.Query.RankDefaultSize)
	if err != nil {
		return 0, err
	}
	if limit > d.Query.RankMaxSize {
		return 0, fmt.Errorf("limit %d exceeds maximum %d: %w", limit, d.Query.RankMaxSize, graph.ErrInvalidArgument)
	}
	return limit, nil
}

// GetRanking orders candidate airports. by=composite (default) groups by
// country risk then degree; degree and risk rank on one key only.
// GET /api/v1/graph/rank?ids=1,2,3&limit=5&by=composite
func GetRanking(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		g, ok := loaded(c, d.Graph)
		if !ok {
			return
		}
		ids, err := parseIDs(c.Query("ids"))
		if err != nil {
			respondError(c, err)
			return
		}
		limit, err := rankLimit(c, d)
		if err != nil {
			respondError(c, err)
			return
		}

		by := strings.ToLower(strings.TrimSpace(c.DefaultQuery("by", "composite")))
		var rank func([]int, int) ([]int, error)
		switch by {
		case "composite":
			rank = g.Rank
		case "degree":
			rank = g.RankByDegree
		case "risk":
			rank = g.RankByRisk
		default:
			respondError(c, fmt.Errorf("unknown ranking %q (composite, degree or risk): %w", by, graph.ErrInvalidArgument))
			return
		}

		ranked, err := observed("rank_"+by, func() ([]int, error) { return rank(ids, limit) })
		if err != nil {
			respondError(c, err)
			return
		}
		names, err := g.Names(ranked)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"by":       by,
			"limit":    limit,
			"metric":   g.Metric().String(),
			"airports": ranked,
			"names":    names,
		})
	}
}

// GetRecommendations runs a proximity query and ranks what it finds.
// GET /api/v1/graph/recommend?ids=1,2&max=800&mode=reachable&limit=5
func GetRecommendations(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		g, ok := loaded(c, d.Graph)
		if !ok {
			return
		}
		seeds, err := parseIDs(c.Query("ids"))
		if err != nil {
			respondError(c, err)
			return
		}
		maxDistance, err := requiredInt(c, "max")
		if err != nil {
			respondError(c, err)
			return
		}
		mode, err := graph.ParseProximity(c.Query("mode"))
		if err != nil {
			respondError(c, err)
			return
		}
		limit, err := rankLimit(c, d)
		if err != nil {
			respondError(c, err)
			return
		}

		airports, err := observed("recommend", func() ([]graph.Airport, error) {
			return g.Recommend(mode, seeds, maxDistance, limit)
		})
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"seeds":    seeds,
			"max":      maxDistance,
			"mode":     mode.String(),
			"count":    len(airports),
			"airports": airports,
		})
	}
}

// GetSnapshot returns a bounded node/edge view for the map.
// GET /api/v1/graph/snapshot?max_vertices=500
func GetSnapshot(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		g, ok := loaded(c, d.Graph)
		if !ok {
			return
		}
		maxVertices, err := optionalInt(c, "max_vertices", d.Query.SnapshotMaxVertices)
		if err != nil {
			respondError(c, err)
			return
		}
		if maxVertices > d.Query.SnapshotMaxVertices {
			maxVertices = d.Query.SnapshotMaxVertices
		}

		start := time.Now()
		var snap graph.Snapshot
		build := func() (interface{}, error) { return g.Snapshot(maxVertices) }
		if d.Cache != nil {
			_, err = d.Cache.GetOrSet(c.Request.Context(), cache.SnapshotKey(maxVertices), d.CacheTTL, &snap, build)
		} else {
			snap, err = g.Snapshot(maxVertices)
		}
		metrics.ObserveQuery("snapshot", start, err)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, snap)
	}
}
