package graph

import (
	"fmt"
	"sort"
)

// candidates validates ids and maxOut and returns the distinct slots in
// encounter order.
func (g *Graph) candidates(ids []int, maxOut int) ([]int, error) {
	if maxOut < 0 {
		return nil, fmt.Errorf("result size %d is negative: %w", maxOut, ErrInvalidArgument)
	}
	seen := make(map[int]bool, len(ids))
	slots := make([]int, 0, len(ids))
	for _, id := range ids {
		s, err := g.slot(id)
		if err != nil {
			return nil, err
		}
		if seen[s] {
			continue
		}
		seen[s] = true
		slots = append(slots, s)
	}
	return slots, nil
}

func (g *Graph) sortByDegree(slots []int) {
	sort.SliceStable(slots, func(i, j int) bool {
		return len(g.vertices[slots[i]].edges) > len(g.vertices[slots[j]].edges)
	})
}

func (g *Graph) ids(slots []int, limit int) []int {
	if len(slots) > limit {
		slots = slots[:limit]
	}
	out := make([]int, len(slots))
	for i, s := range slots {
		out[i] = g.vertices[s].airport.ID
	}
	return out
}

// RankByDegree orders ids by number of routes, most connected first, and keeps
// at most maxOut. Ties keep their input order.
func (g *Graph) RankByDegree(ids []int, maxOut int) ([]int, error) {
	slots, err := g.candidates(ids, maxOut)
	if err != nil {
		return nil, err
	}
	g.sortByDegree(slots)
	return g.ids(slots, maxOut), nil
}

// RankByRisk orders ids by their country risk score in the graph's metric
// direction and keeps at most maxOut. Ties keep their input order.
func (g *Graph) RankByRisk(ids []int, maxOut int) ([]int, error) {
	slots, err := g.candidates(ids, maxOut)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(slots, func(i, j int) bool {
		return g.metric.Better(g.vertices[slots[i]].airport.RiskScore, g.vertices[slots[j]].airport.RiskScore)
	})
	return g.ids(slots, maxOut), nil
}

// Rank combines connectivity and country risk. Candidates are grouped by
// country, each group is ordered by degree and cut to maxOut, the countries
// are ordered by risk score in the graph's metric direction, and the groups
// are concatenated and cut to maxOut. Ties keep encounter order.
func (g *Graph) Rank(ids []int, maxOut int) ([]int, error) {
	slots, err := g.candidates(ids, maxOut)
	if err != nil {
		return nil, err
	}
	if len(slots) == 0 || maxOut == 0 {
		return []int{}, nil
	}

	var countries []string
	groups := make(map[string][]int)
	for _, s := range slots {
		c := g.vertices[s].airport.Country
		if _, ok := groups[c]; !ok {
			countries = append(countries, c)
		}
		groups[c] = append(groups[c], s)
	}

	for c, members := range groups {
		g.sortByDegree(members)
		if len(members) > maxOut {
			groups[c] = members[:maxOut]
		}
	}

	// Every member of a country shares its score, so any one represents it.
	score := func(c string) float64 {
		return g.vertices[groups[c][0]].airport.RiskScore
	}
	sort.SliceStable(countries, func(i, j int) bool {
		return g.metric.Better(score(countries[i]), score(countries[j]))
	})

	ranked := make([]int, 0, min(maxOut, len(slots)))
	for _, c := range countries {
		ranked = append(ranked, groups[c]...)
		if len(ranked) >= maxOut {
			break
		}
	}
	return g.ids(ranked, maxOut), nil
}
