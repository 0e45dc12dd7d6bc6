package types

import "sort"

// Node is an attributed node of the citation graph. X holds the tf-idf
// feature vector, Y the class label, and Time the factorized publication
// time step (TimeUnknown when unresolved).
type Node struct {
	PMID string
	X    []float32
	Y    int
	Time int
}

// Edge is a directed edge between node indices. Time is the time step of the
// citing (source) node.
type Edge struct {
	Source int
	Target int
	Time   int
}

// Pair is one direction of an undirected edge in the expanded pair
// representation. Directed reports whether this direction existed as an
// original citation.
type Pair struct {
	Source   int
	Target   int
	Time     int
	Directed bool
}

// Graph is a directed citation graph with attributed nodes. Node order is
// significant: it defines the row order of the feature matrix.
type Graph struct {
	Nodes []Node
	Edges []Edge
}

// NumNodes returns the number of nodes.
func (g *Graph) NumNodes() int { return len(g.Nodes) }

// NumEdges returns the number of directed edges.
func (g *Graph) NumEdges() int { return len(g.Edges) }

// RemoveSelfLoops drops edges whose source and target coincide and returns
// the number of edges removed.
func (g *Graph) RemoveSelfLoops() int {
	kept := g.Edges[:0]
	removed := 0
	for _, e := range g.Edges {
		if e.Source == e.Target {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	g.Edges = kept
	return removed
}

// UndirectedDegrees returns the number of distinct undirected neighbors per
// node. Used to disambiguate nodes sharing identical feature vectors.
func (g *Graph) UndirectedDegrees() []int {
	neighbors := make([]map[int]struct{}, len(g.Nodes))
	for i := range neighbors {
		neighbors[i] = make(map[int]struct{})
	}
	for _, e := range g.Edges {
		neighbors[e.Source][e.Target] = struct{}{}
		neighbors[e.Target][e.Source] = struct{}{}
	}

	degrees := make([]int, len(g.Nodes))
	for i, n := range neighbors {
		degrees[i] = len(n)
	}
	return degrees
}

// Relabel permutes node indices through the given map (old index to new
// index). The map must be a bijection over [0, NumNodes).
func (g *Graph) Relabel(indexMap []int) {
	nodes := make([]Node, len(g.Nodes))
	for old, n := range g.Nodes {
		nodes[indexMap[old]] = n
	}
	g.Nodes = nodes

	for i := range g.Edges {
		g.Edges[i].Source = indexMap[g.Edges[i].Source]
		g.Edges[i].Target = indexMap[g.Edges[i].Target]
	}
}

// UndirectedPairs expands the directed edge set into the undirected pair
// representation: both directions of every undirected edge, sorted by
// (source, target). Each pair carries the time of the original citation and
// whether its direction existed in the directed graph. When both directions
// were cited, each direction keeps the time of its own citing node.
func (g *Graph) UndirectedPairs() []Pair {
	type key struct{ u, v int }

	times := make(map[key]int, len(g.Edges))
	directed := make(map[key]bool, len(g.Edges))
	for _, e := range g.Edges {
		k := key{e.Source, e.Target}
		r := key{e.Target, e.Source}
		directed[k] = true
		times[k] = e.Time
		if _, ok := times[r]; !ok {
			times[r] = e.Time
		}
	}

	pairs := make([]Pair, 0, len(times))
	for k, t := range times {
		pairs = append(pairs, Pair{
			Source:   k.u,
			Target:   k.v,
			Time:     t,
			Directed: directed[k],
		})
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Source != pairs[j].Source {
			return pairs[i].Source < pairs[j].Source
		}
		return pairs[i].Target < pairs[j].Target
	})
	return pairs
}
