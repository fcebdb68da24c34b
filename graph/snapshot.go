package graph

import "fmt"

// SnapshotNode is an airport as drawn on the map.
type SnapshotNode struct {
	ID   int     `json:"id"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// SnapshotEdge is a route as drawn on the map, listed once with From < To.
type SnapshotEdge struct {
	From   int `json:"from"`
	To     int `json:"to"`
	Weight int `json:"weight"`
}

// Snapshot is a bounded view of the graph for rendering.
type Snapshot struct {
	Nodes []SnapshotNode `json:"nodes"`
	Edges []SnapshotEdge `json:"edges"`
}

// Snapshot returns at most maxVertices airports and the routes among them.
// Airports are taken in ascending id order, each followed by its neighbours
// while room remains, so a capped view still shows connected clusters.
func (g *Graph) Snapshot(maxVertices int) (Snapshot, error) {
	if maxVertices <= 0 {
		return Snapshot{}, fmt.Errorf("max vertices %d must be positive: %w", maxVertices, ErrInvalidArgument)
	}

	snap := Snapshot{Nodes: []SnapshotNode{}, Edges: []SnapshotEdge{}}
	included := make([]bool, len(g.vertices))
	seen := make(map[routeKey]bool)
	add := func(s int) {
		if included[s] {
			return
		}
		included[s] = true
		a := g.vertices[s].airport
		snap.Nodes = append(snap.Nodes, SnapshotNode{ID: a.ID, Name: a.Name, Lat: a.Latitude, Lon: a.Longitude})
	}

	for _, v := range g.byID {
		add(v)
		for _, e := range g.vertices[v].edges {
			if len(snap.Nodes) < maxVertices {
				add(e.to)
			}
			if !included[e.to] {
				continue
			}
			key := keyFor(v, e.to)
			if seen[key] {
				continue
			}
			seen[key] = true
			from, to := g.vertices[v].airport.ID, g.vertices[e.to].airport.ID
			if from > to {
				from, to = to, from
			}
			snap.Edges = append(snap.Edges, SnapshotEdge{From: from, To: to, Weight: e.weight})
		}
		if len(snap.Nodes) >= maxVertices {
			break
		}
	}
	return snap, nil
}
