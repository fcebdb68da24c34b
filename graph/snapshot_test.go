package graph

import (
	"testing"

	"github.com/go-test/deep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot(t *testing.T) {
	g := meridianGraph(t)

	nodeA := SnapshotNode{ID: 1, Name: "Alpha", Lat: 0, Lon: 0}
	nodeB := SnapshotNode{ID: 2, Name: "Bravo", Lat: 0, Lon: 1}
	nodeC := SnapshotNode{ID: 3, Name: "Charlie", Lat: 0, Lon: 2}

	tests := []struct {
		name string
		max  int
		want Snapshot
	}{
		{
			name: "uncapped",
			max:  10,
			want: Snapshot{
				Nodes: []SnapshotNode{nodeA, nodeB, nodeC},
				Edges: []SnapshotEdge{{From: 1, To: 2, Weight: 111}, {From: 2, To: 3, Weight: 111}},
			},
		},
		{
			name: "capped at two",
			max:  2,
			want: Snapshot{
				Nodes: []SnapshotNode{nodeA, nodeB},
				Edges: []SnapshotEdge{{From: 1, To: 2, Weight: 111}},
			},
		},
		{
			name: "single vertex",
			max:  1,
			want: Snapshot{
				Nodes: []SnapshotNode{nodeA},
				Edges: []SnapshotEdge{},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := g.Snapshot(tt.max)
			require.NoError(t, err)
			if diff := deep.Equal(got, tt.want); diff != nil {
				t.Error(diff)
			}
		})
	}
}

func TestSnapshot_EdgesListedOnce(t *testing.T) {
	g := randomGraph(t, 25, 60, 13)
	snap, err := g.Snapshot(1000)
	require.NoError(t, err)

	assert.Len(t, snap.Nodes, 25)
	assert.Len(t, snap.Edges, g.RouteCount())
	for _, e := range snap.Edges {
		assert.Less(t, e.From, e.To)
		w, err := g.Distance(e.From, e.To)
		require.NoError(t, err)
		assert.Equal(t, w, e.Weight)
	}
}

func TestSnapshot_InvalidCap(t *testing.T) {
	g := meridianGraph(t)
	_, err := g.Snapshot(0)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
