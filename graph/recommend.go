package graph

// Recommend finds the airports close to every seed and returns the best
// limit of them by Rank. Candidates enter Rank in ascending id order so equal
// scores resolve the same way on every call.
func (g *Graph) Recommend(mode Proximity, seeds []int, maxDistance, limit int) ([]Airport, error) {
	near, err := g.Close(mode, seeds, maxDistance)
	if err != nil {
		return nil, err
	}
	ranked, err := g.Rank(near.Sorted(), limit)
	if err != nil {
		return nil, err
	}
	out := make([]Airport, len(ranked))
	for i, id := range ranked {
		out[i] = g.vertices[g.index[id]].airport
	}
	return out, nil
}
