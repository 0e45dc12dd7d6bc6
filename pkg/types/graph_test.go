package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGraph() *Graph {
	return &Graph{
		Nodes: []Node{
			{PMID: "10", Y: 0, Time: 3},
			{PMID: "20", Y: 1, Time: 5},
			{PMID: "30", Y: 2, Time: 1},
		},
		Edges: []Edge{
			{Source: 0, Target: 1, Time: 3},
			{Source: 1, Target: 2, Time: 5},
			{Source: 2, Target: 2, Time: 1}, // self loop
		},
	}
}

func TestRemoveSelfLoops(t *testing.T) {
	g := testGraph()
	removed := g.RemoveSelfLoops()

	assert.Equal(t, 1, removed)
	assert.Equal(t, 2, g.NumEdges())
	for _, e := range g.Edges {
		assert.NotEqual(t, e.Source, e.Target)
	}
}

func TestUndirectedDegrees(t *testing.T) {
	g := testGraph()
	g.RemoveSelfLoops()

	degrees := g.UndirectedDegrees()
	assert.Equal(t, []int{1, 2, 1}, degrees)
}

func TestRelabel(t *testing.T) {
	g := testGraph()
	g.RemoveSelfLoops()

	// 0->2, 1->0, 2->1
	g.Relabel([]int{2, 0, 1})

	assert.Equal(t, "20", g.Nodes[0].PMID)
	assert.Equal(t, "30", g.Nodes[1].PMID)
	assert.Equal(t, "10", g.Nodes[2].PMID)

	assert.Equal(t, Edge{Source: 2, Target: 0, Time: 3}, g.Edges[0])
	assert.Equal(t, Edge{Source: 0, Target: 1, Time: 5}, g.Edges[1])
}

func TestUndirectedPairs(t *testing.T) {
	g := testGraph()
	g.RemoveSelfLoops()

	pairs := g.UndirectedPairs()
	require.Len(t, pairs, 4)

	// Sorted by (source, target).
	assert.Equal(t, Pair{Source: 0, Target: 1, Time: 3, Directed: true}, pairs[0])
	assert.Equal(t, Pair{Source: 1, Target: 0, Time: 3, Directed: false}, pairs[1])
	assert.Equal(t, Pair{Source: 1, Target: 2, Time: 5, Directed: true}, pairs[2])
	assert.Equal(t, Pair{Source: 2, Target: 1, Time: 5, Directed: false}, pairs[3])
}

func TestUndirectedPairsReciprocal(t *testing.T) {
	g := &Graph{
		Nodes: []Node{{PMID: "1", Time: 2}, {PMID: "2", Time: 7}},
		Edges: []Edge{
			{Source: 0, Target: 1, Time: 2},
			{Source: 1, Target: 0, Time: 7},
		},
	}

	pairs := g.UndirectedPairs()
	require.Len(t, pairs, 2)
	assert.True(t, pairs[0].Directed)
	assert.True(t, pairs[1].Directed)
	assert.Equal(t, 2, pairs[0].Time)
	assert.Equal(t, 7, pairs[1].Time)
}
