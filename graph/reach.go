package graph

import "container/heap"

// IsConnected reports whether a path of routes joins source and destination.
// Every airport is connected to itself.
func (g *Graph) IsConnected(source, destination int) (bool, error) {
	s, err := g.slot(source)
	if err != nil {
		return false, err
	}
	d, err := g.slot(destination)
	if err != nil {
		return false, err
	}
	if s == d {
		return true, nil
	}

	visited := make([]bool, len(g.vertices))
	visited[s] = true
	stack := []int{s}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, e := range g.vertices[v].edges {
			if e.to == d {
				return true, nil
			}
			if !visited[e.to] {
				visited[e.to] = true
				stack = append(stack, e.to)
			}
		}
	}
	return false, nil
}

// WithinDistance returns every airport reachable from source by a chain of
// routes totalling at most maxDistance kilometers, source included. A
// negative maxDistance yields an empty set.
//
// The frontier is expanded in order of the distance already spent, so each
// airport is settled through the path that leaves the most budget for its
// neighbours. The result therefore never shrinks as maxDistance grows.
func (g *Graph) WithinDistance(source, maxDistance int) (IDSet, error) {
	s, err := g.slot(source)
	if err != nil {
		return nil, err
	}
	return g.withinDistance(s, maxDistance), nil
}

func (g *Graph) withinDistance(source, maxDistance int) IDSet {
	out := make(IDSet)
	if maxDistance < 0 {
		return out
	}

	spent := make([]int, len(g.vertices))
	for i := range spent {
		spent[i] = -1
	}
	settled := make([]bool, len(g.vertices))

	spent[source] = 0
	frontier := &budgetQueue{{slot: source}}
	for frontier.Len() > 0 {
		f := heap.Pop(frontier).(frame)
		if settled[f.slot] {
			continue
		}
		settled[f.slot] = true
		out[g.vertices[f.slot].airport.ID] = struct{}{}

		for _, e := range g.vertices[f.slot].edges {
			next := f.spent + e.weight
			if next > maxDistance || settled[e.to] {
				continue
			}
			if spent[e.to] < 0 || next < spent[e.to] {
				spent[e.to] = next
				heap.Push(frontier, frame{slot: e.to, spent: next})
			}
		}
	}
	return out
}

type frame struct {
	slot  int
	spent int
}

// budgetQueue is a min-heap of frames keyed on distance spent.
type budgetQueue []frame

func (q budgetQueue) Len() int           { return len(q) }
func (q budgetQueue) Less(i, j int) bool { return q[i].spent < q[j].spent }
func (q budgetQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }
func (q *budgetQueue) Push(x any)        { *q = append(*q, x.(frame)) }
func (q *budgetQueue) Pop() any {
	old := *q
	n := len(old)
	f := old[n-1]
	*q = old[:n-1]
	return f
}
