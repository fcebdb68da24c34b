package graph

import (
	"fmt"
	"strings"
)

// Proximity selects how "close" is measured for multi-seed queries.
type Proximity int

const (
	// Adjacent: a direct route no longer than the limit.
	Adjacent Proximity = iota
	// Reachable: reachable by WithinDistance under the limit.
	Reachable
)

// ParseProximity accepts "adjacent" or "reachable" (case-insensitive).
func ParseProximity(s string) (Proximity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "adjacent", "":
		return Adjacent, nil
	case "reachable":
		return Reachable, nil
	}
	return Adjacent, fmt.Errorf("unknown proximity mode %q: %w", s, ErrInvalidArgument)
}

func (p Proximity) String() string {
	if p == Reachable {
		return "reachable"
	}
	return "adjacent"
}

// NeighboursWithin returns the direct neighbours of id whose route is at most
// maxDistance kilometers long.
func (g *Graph) NeighboursWithin(id, maxDistance int) (IDSet, error) {
	s, err := g.slot(id)
	if err != nil {
		return nil, err
	}
	return g.neighboursWithin(s, maxDistance), nil
}

func (g *Graph) neighboursWithin(slot, maxDistance int) IDSet {
	out := make(IDSet)
	for _, e := range g.vertices[slot].edges {
		if e.weight <= maxDistance {
			out[g.vertices[e.to].airport.ID] = struct{}{}
		}
	}
	return out
}

// AdjacentClose returns the airports that have a direct route of at most
// maxDistance kilometers to every seed.
func (g *Graph) AdjacentClose(seeds []int, maxDistance int) (IDSet, error) {
	return g.Close(Adjacent, seeds, maxDistance)
}

// ReachableClose returns the airports that WithinDistance finds from every seed.
func (g *Graph) ReachableClose(seeds []int, maxDistance int) (IDSet, error) {
	return g.Close(Reachable, seeds, maxDistance)
}

// Close runs a proximity query in the given mode. All seeds are validated
// before any traversal; the per-seed sets are intersected left to right.
func (g *Graph) Close(mode Proximity, seeds []int, maxDistance int) (IDSet, error) {
	if len(seeds) == 0 {
		return nil, fmt.Errorf("no seed airports: %w", ErrInvalidArgument)
	}
	slots := make([]int, len(seeds))
	for i, id := range seeds {
		s, err := g.slot(id)
		if err != nil {
			return nil, err
		}
		slots[i] = s
	}

	near := g.neighboursWithin
	if mode == Reachable {
		near = g.withinDistance
	}

	result := near(slots[0], maxDistance)
	for _, s := range slots[1:] {
		if len(result) == 0 {
			break
		}
		result = result.Intersect(near(s, maxDistance))
	}
	return result, nil
}
