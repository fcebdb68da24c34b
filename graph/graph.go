// Package graph models the airport network as a weighted undirected graph.
//
// Airports are vertices stored in an arena and addressed by slot; each vertex
// keeps its routes as (neighbour slot, weight) pairs in insertion order. Edge
// weights are great-circle distances in whole kilometers, computed once when
// the route is first inserted and stored on both endpoints.
//
// A Graph is produced by a Builder and never changes afterwards, so any number
// of goroutines may query it concurrently without locking.
package graph

import (
	"fmt"
	"sort"

	"github.com/gilby125/airport-network/pkg/geo"
)

type edge struct {
	to     int // slot of the neighbour
	weight int
}

type vertex struct {
	airport Airport
	edges   []edge
}

// routeKey identifies an undirected pair of slots, lower slot first.
type routeKey struct {
	a, b int
}

func keyFor(a, b int) routeKey {
	if a > b {
		a, b = b, a
	}
	return routeKey{a: a, b: b}
}

// Graph is a read-only airport network.
type Graph struct {
	vertices []vertex
	index    map[int]int // airport id -> slot
	weights  map[routeKey]int
	byID     []int // slots in ascending airport id order
	metric   RiskMetric
}

// Builder accumulates airports and routes in one batch pass and hands out
// the finished Graph exactly once.
type Builder struct {
	g *Graph
}

// NewBuilder returns an empty builder whose graph ranks countries using metric.
func NewBuilder(metric RiskMetric) *Builder {
	return &Builder{g: &Graph{
		index:   make(map[int]int),
		weights: make(map[routeKey]int),
		metric:  metric,
	}}
}

// AddAirport inserts a vertex for a. The first record for an id wins; later
// duplicates are ignored and reported with added == false.
func (b *Builder) AddAirport(a Airport) (added bool, err error) {
	if b.g == nil {
		return false, ErrSealed
	}
	if err := a.validate(); err != nil {
		return false, err
	}
	if _, ok := b.g.index[a.ID]; ok {
		return false, nil
	}
	b.g.index[a.ID] = len(b.g.vertices)
	b.g.vertices = append(b.g.vertices, vertex{airport: a})
	return true, nil
}

// AddRoute inserts the undirected route between source and destination.
// Inserting a route that already exists in either direction is a no-op
// reported with added == false; the stored weight is never recomputed.
func (b *Builder) AddRoute(source, destination int) (added bool, err error) {
	if b.g == nil {
		return false, ErrSealed
	}
	if source == destination {
		return false, fmt.Errorf("route %d -> %d is a self-loop: %w", source, destination, ErrInvalidArgument)
	}
	s, ok := b.g.index[source]
	if !ok {
		return false, notFound(source)
	}
	d, ok := b.g.index[destination]
	if !ok {
		return false, notFound(destination)
	}

	key := keyFor(s, d)
	if _, ok := b.g.weights[key]; ok {
		return false, nil
	}

	w := geo.DistanceKm(b.g.vertices[s].airport.Coordinates(), b.g.vertices[d].airport.Coordinates())
	b.g.weights[key] = w
	b.g.vertices[s].edges = append(b.g.vertices[s].edges, edge{to: d, weight: w})
	b.g.vertices[d].edges = append(b.g.vertices[d].edges, edge{to: s, weight: w})
	return true, nil
}

// Build seals the builder and returns the graph. Subsequent calls on the
// builder return ErrSealed.
func (b *Builder) Build() (*Graph, error) {
	if b.g == nil {
		return nil, ErrSealed
	}
	g := b.g
	b.g = nil

	g.byID = make([]int, len(g.vertices))
	for i := range g.byID {
		g.byID[i] = i
	}
	sort.Slice(g.byID, func(i, j int) bool {
		return g.vertices[g.byID[i]].airport.ID < g.vertices[g.byID[j]].airport.ID
	})
	return g, nil
}

// LoadStats summarises a Load call.
type LoadStats struct {
	Airports          int `json:"airports"`
	DuplicateAirports int `json:"duplicate_airports"`
	Routes            int `json:"routes"`
	DuplicateRoutes   int `json:"duplicate_routes"`
	UnknownEndpoints  int `json:"unknown_endpoints"`
	SelfLoops         int `json:"self_loops"`
}

// Load builds a graph from already cleaned airport and route collections.
// Routes whose endpoints are not among airports, and self-loops, are skipped
// and counted rather than failing the whole batch. A malformed airport record
// fails the load.
func Load(metric RiskMetric, airports []Airport, routes []Route) (*Graph, LoadStats, error) {
	var stats LoadStats
	b := NewBuilder(metric)

	for _, a := range airports {
		added, err := b.AddAirport(a)
		if err != nil {
			return nil, stats, err
		}
		if added {
			stats.Airports++
		} else {
			stats.DuplicateAirports++
		}
	}

	for _, r := range routes {
		if r.Source == r.Destination {
			stats.SelfLoops++
			continue
		}
		if _, ok := b.g.index[r.Source]; !ok {
			stats.UnknownEndpoints++
			continue
		}
		if _, ok := b.g.index[r.Destination]; !ok {
			stats.UnknownEndpoints++
			continue
		}
		added, err := b.AddRoute(r.Source, r.Destination)
		if err != nil {
			return nil, stats, err
		}
		if added {
			stats.Routes++
		} else {
			stats.DuplicateRoutes++
		}
	}

	g, err := b.Build()
	return g, stats, err
}

// Metric returns the risk metric used to order countries.
func (g *Graph) Metric() RiskMetric {
	return g.metric
}

// Len returns the number of airports.
func (g *Graph) Len() int {
	return len(g.vertices)
}

// RouteCount returns the number of undirected routes.
func (g *Graph) RouteCount() int {
	return len(g.weights)
}

// Contains reports whether id is an airport in the graph.
func (g *Graph) Contains(id int) bool {
	_, ok := g.index[id]
	return ok
}

func (g *Graph) slot(id int) (int, error) {
	s, ok := g.index[id]
	if !ok {
		return 0, notFound(id)
	}
	return s, nil
}

// Airport returns the record for id.
func (g *Graph) Airport(id int) (Airport, error) {
	s, err := g.slot(id)
	if err != nil {
		return Airport{}, err
	}
	return g.vertices[s].airport, nil
}

// Airports returns every airport in ascending id order.
func (g *Graph) Airports() []Airport {
	out := make([]Airport, 0, len(g.byID))
	for _, s := range g.byID {
		out = append(out, g.vertices[s].airport)
	}
	return out
}

// Neighbours returns the ids of the airports directly connected to id, ascending.
func (g *Graph) Neighbours(id int) ([]int, error) {
	s, err := g.slot(id)
	if err != nil {
		return nil, err
	}
	out := make([]int, 0, len(g.vertices[s].edges))
	for _, e := range g.vertices[s].edges {
		out = append(out, g.vertices[e.to].airport.ID)
	}
	sort.Ints(out)
	return out, nil
}

// Degree returns the number of distinct routes at id.
func (g *Graph) Degree(id int) (int, error) {
	s, err := g.slot(id)
	if err != nil {
		return 0, err
	}
	return len(g.vertices[s].edges), nil
}

// HasRoute reports whether a and b are directly connected.
func (g *Graph) HasRoute(a, b int) bool {
	s, ok := g.index[a]
	if !ok {
		return false
	}
	d, ok := g.index[b]
	if !ok {
		return false
	}
	_, ok = g.weights[keyFor(s, d)]
	return ok
}

// Distance returns the cached weight in kilometers of the a-b route. It
// returns 0 when both airports exist but are not directly connected.
func (g *Graph) Distance(a, b int) (int, error) {
	s, err := g.slot(a)
	if err != nil {
		return 0, err
	}
	d, err := g.slot(b)
	if err != nil {
		return 0, err
	}
	return g.weights[keyFor(s, d)], nil
}

// Names returns the airport names for ids, in the same order.
func (g *Graph) Names(ids []int) ([]string, error) {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		s, err := g.slot(id)
		if err != nil {
			return nil, err
		}
		names = append(names, g.vertices[s].airport.Name)
	}
	return names, nil
}

// Nearest returns the airport closest to the given point and its distance in
// whole kilometers.
func (g *Graph) Nearest(lat, lon float64) (Airport, int, error) {
	target := geo.Coordinates{Lat: lat, Lon: lon}
	if !target.IsValid() {
		return Airport{}, 0, fmt.Errorf("coordinates (%f, %f) out of range: %w", lat, lon, ErrInvalidArgument)
	}
	if len(g.vertices) == 0 {
		return Airport{}, 0, fmt.Errorf("graph is empty: %w", ErrNotFound)
	}

	points := make([]geo.Coordinates, len(g.byID))
	for i, s := range g.byID {
		points[i] = g.vertices[s].airport.Coordinates()
	}
	i, _ := geo.Nearest(target, points)
	a := g.vertices[g.byID[i]].airport
	return a, geo.DistanceKm(target, a.Coordinates()), nil
}
