package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdjacentClose_Meridian(t *testing.T) {
	g := meridianGraph(t)

	got, err := g.AdjacentClose([]int{1}, 150)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, got.Sorted())

	got, err = g.AdjacentClose([]int{1}, 50)
	require.NoError(t, err)
	assert.Empty(t, got.Sorted())

	// B is adjacent to A, C is not.
	got, err = g.AdjacentClose([]int{1, 3}, 150)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, got.Sorted())
}

func TestReachableClose_Meridian(t *testing.T) {
	g := meridianGraph(t)

	got, err := g.ReachableClose([]int{1}, 250)
	require.NoError(t, err)
	assert.True(t, got.Has(2))
	assert.True(t, got.Has(3))

	got, err = g.ReachableClose([]int{1, 3}, 120)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, got.Sorted())
}

func TestNeighboursWithin(t *testing.T) {
	g := detourGraph(t)

	got, err := g.NeighboursWithin(12, 120)
	require.NoError(t, err)
	assert.Equal(t, []int{10, 13}, got.Sorted())

	got, err = g.NeighboursWithin(12, 200)
	require.NoError(t, err)
	assert.Equal(t, []int{10, 11, 13}, got.Sorted())

	_, err = g.NeighboursWithin(99, 200)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClose_Validation(t *testing.T) {
	g := meridianGraph(t)

	for _, mode := range []Proximity{Adjacent, Reachable} {
		t.Run(mode.String(), func(t *testing.T) {
			_, err := g.Close(mode, nil, 100)
			assert.ErrorIs(t, err, ErrInvalidArgument)

			_, err = g.Close(mode, []int{1, 99}, 100)
			assert.ErrorIs(t, err, ErrNotFound)

			got, err := g.Close(mode, []int{1}, -5)
			require.NoError(t, err)
			assert.Equal(t, 0, got.Len())
		})
	}
}

func TestClose_SeedOrderDoesNotMatter(t *testing.T) {
	g := randomGraph(t, 30, 90, 3)
	seeds := []int{4, 17, 22}
	reversed := []int{22, 17, 4}

	for _, mode := range []Proximity{Adjacent, Reachable} {
		for _, max := range []int{300, 1200, 3000} {
			a, err := g.Close(mode, seeds, max)
			require.NoError(t, err)
			b, err := g.Close(mode, reversed, max)
			require.NoError(t, err)
			assert.Equal(t, a.Sorted(), b.Sorted(), "%s at %d", mode, max)
		}
	}
}

func TestClose_Monotonic(t *testing.T) {
	g := randomGraph(t, 50, 120, 5)
	seedSets := [][]int{{0}, {1, 2}, {3, 9, 27}}

	for _, mode := range []Proximity{Adjacent, Reachable} {
		for _, seeds := range seedSets {
			prev := NewIDSet()
			for max := 0; max <= 4000; max += 100 {
				cur, err := g.Close(mode, seeds, max)
				require.NoError(t, err)
				for id := range prev {
					assert.True(t, cur.Has(id), "%s %v: %d dropped when max grew to %d", mode, seeds, id, max)
				}
				prev = cur
			}
		}
	}
}

func TestParseProximity(t *testing.T) {
	p, err := ParseProximity("Reachable")
	require.NoError(t, err)
	assert.Equal(t, Reachable, p)

	p, err = ParseProximity("")
	require.NoError(t, err)
	assert.Equal(t, Adjacent, p)

	_, err = ParseProximity("teleport")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestIDSet(t *testing.T) {
	a := NewIDSet(1, 2, 3, 4)
	b := NewIDSet(3, 4, 5)
	assert.Equal(t, []int{3, 4}, a.Intersect(b).Sorted())
	assert.Equal(t, []int{3, 4}, b.Intersect(a).Sorted())
	assert.Equal(t, 4, a.Len())
	assert.False(t, a.Has(5))
	assert.Empty(t, NewIDSet().Sorted())
}
