package dataset

import (
	"fmt"

	"github.com/graphsets/pubmed-temporal/pkg/corpus"
	"github.com/graphsets/pubmed-temporal/pkg/planetoid"
	"github.com/graphsets/pubmed-temporal/pkg/types"
)

// classMap translates the source corpus labels to the Planetoid class ids.
var classMap = map[int]int{3: 1, 1: 0, 2: 2}

// Split holds the temporal window boundaries of the edge split: train covers
// t < TrainEnd, validation TrainEnd <= t <= ValEnd, test t > ValEnd.
type Split struct {
	TrainEnd int
	ValEnd   int
}

// Dataset is the assembled temporal dataset: the relabeled citation graph,
// its undirected pair expansion, the per-pair split masks, and the step-to-
// year translation.
type Dataset struct {
	Graph *types.Graph
	Pairs []types.Pair

	TrainMask []bool
	ValMask   []bool
	TestMask  []bool

	Steps []string
	Split Split
}

// BuildGraph constructs the directed citation graph from the parsed corpus
// and the factorized time steps: nodes in corpus file order carrying
// features, Planetoid class ids, and time steps; edges carrying the time of
// the citing node; self-loops removed.
//
// Nodes with an unknown time inherit the time of a paper citing them (papers
// de-indexed upstream); a node that cannot be resolved this way is an error.
func BuildGraph(c *corpus.Corpus, times map[string]int) (*types.Graph, error) {
	g := &types.Graph{Nodes: make([]types.Node, len(c.Papers))}

	index := make(map[string]int, len(c.Papers))
	for i := range c.Papers {
		p := &c.Papers[i]
		y, ok := classMap[p.Label]
		if !ok {
			return nil, fmt.Errorf("paper %s has unknown label %d", p.PMID, p.Label)
		}
		t, ok := times[p.PMID]
		if !ok {
			t = types.TimeUnknown
		}
		g.Nodes[i] = types.Node{
			PMID: p.PMID,
			X:    c.Features(p),
			Y:    y,
			Time: t,
		}
		index[p.PMID] = i
	}

	for _, cit := range c.Citations {
		src, ok := index[cit.Source]
		if !ok {
			return nil, fmt.Errorf("citation %s references unknown source %s", cit.ID, cit.Source)
		}
		dst, ok := index[cit.Target]
		if !ok {
			return nil, fmt.Errorf("citation %s references unknown target %s", cit.ID, cit.Target)
		}
		g.Edges = append(g.Edges, types.Edge{Source: src, Target: dst})
	}

	g.RemoveSelfLoops()

	if err := fillUnknownTimes(g); err != nil {
		return nil, err
	}

	for i := range g.Edges {
		g.Edges[i].Time = g.Nodes[g.Edges[i].Source].Time
	}

	return g, nil
}

// fillUnknownTimes resolves nodes with unknown time from the time of a
// citing neighbor.
func fillUnknownTimes(g *types.Graph) error {
	for i := range g.Nodes {
		if g.Nodes[i].Time != types.TimeUnknown {
			continue
		}
		resolved := false
		for _, e := range g.Edges {
			if e.Target == i && g.Nodes[e.Source].Time != types.TimeUnknown {
				g.Nodes[i].Time = g.Nodes[e.Source].Time
				resolved = true
				break
			}
		}
		if !resolved {
			return fmt.Errorf("node %s has no resolvable publication time", g.Nodes[i].PMID)
		}
	}
	return nil
}

// Assemble relabels the graph through the reference index map and computes
// the undirected pair expansion and the temporal split masks.
func Assemble(g *types.Graph, indexMap []int, steps []string, split Split) (*Dataset, error) {
	if len(indexMap) != g.NumNodes() {
		return nil, fmt.Errorf("index map covers %d nodes, graph has %d", len(indexMap), g.NumNodes())
	}

	g.Relabel(indexMap)
	pairs := g.UndirectedPairs()

	d := &Dataset{
		Graph:     g,
		Pairs:     pairs,
		TrainMask: make([]bool, len(pairs)),
		ValMask:   make([]bool, len(pairs)),
		TestMask:  make([]bool, len(pairs)),
		Steps:     steps,
		Split:     split,
	}

	for i, p := range pairs {
		switch {
		case p.Time < split.TrainEnd:
			d.TrainMask[i] = true
		case p.Time <= split.ValEnd:
			d.ValMask[i] = true
		default:
			d.TestMask[i] = true
		}
	}

	return d, nil
}

// Verify checks the assembled dataset against the Planetoid reference:
// feature vectors, class labels, and the undirected pair count must all
// match.
func (d *Dataset) Verify(ref *planetoid.Reference) error {
	if d.Graph.NumNodes() != ref.NumNodes {
		return fmt.Errorf("node count mismatch: built %d, reference %d",
			d.Graph.NumNodes(), ref.NumNodes)
	}

	for i := range d.Graph.Nodes {
		row := ref.Row(i)
		x := d.Graph.Nodes[i].X
		if len(x) != len(row) {
			return fmt.Errorf("node %d has %d features, reference has %d", i, len(x), len(row))
		}
		for j := range x {
			if x[j] != row[j] {
				return fmt.Errorf("feature mismatch at node %d, column %d", i, j)
			}
		}
		if int64(d.Graph.Nodes[i].Y) != ref.Y[i] {
			return fmt.Errorf("class mismatch at node %d: built %d, reference %d",
				i, d.Graph.Nodes[i].Y, ref.Y[i])
		}
	}

	if len(d.Pairs) != ref.NumPairs() {
		return fmt.Errorf("edge pair count mismatch: built %d, reference %d",
			len(d.Pairs), ref.NumPairs())
	}

	return nil
}

// EdgeTimes returns the time step per undirected pair.
func (d *Dataset) EdgeTimes() []int64 {
	out := make([]int64, len(d.Pairs))
	for i, p := range d.Pairs {
		out[i] = int64(p.Time)
	}
	return out
}

// NodeTimes returns the time step per node.
func (d *Dataset) NodeTimes() []int64 {
	out := make([]int64, d.Graph.NumNodes())
	for i, n := range d.Graph.Nodes {
		out[i] = int64(n.Time)
	}
	return out
}

// EdgeDirected reports, per undirected pair, whether its direction existed
// as an original citation.
func (d *Dataset) EdgeDirected() []bool {
	out := make([]bool, len(d.Pairs))
	for i, p := range d.Pairs {
		out[i] = p.Directed
	}
	return out
}

// Year translates a time step to its year, or "?" when out of range.
func (d *Dataset) Year(step int) string {
	if step < 0 || step >= len(d.Steps) {
		return "?"
	}
	return d.Steps[step]
}
