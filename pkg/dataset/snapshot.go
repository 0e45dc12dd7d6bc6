package dataset

import "github.com/graphsets/pubmed-temporal/pkg/types"

// Snapshot is a time-window view of a dataset: the node indices and the
// undirected pairs falling inside the window.
type Snapshot struct {
	Nodes []int
	Pairs []types.Pair
}

// EdgeWindow returns the transductive snapshot of the window [start, end]:
// pairs whose time falls inside the window, and the nodes incident to them.
func (d *Dataset) EdgeWindow(start, end int) Snapshot {
	var s Snapshot
	seen := make(map[int]struct{})
	for _, p := range d.Pairs {
		if p.Time < start || p.Time > end {
			continue
		}
		s.Pairs = append(s.Pairs, p)
		for _, v := range [2]int{p.Source, p.Target} {
			if _, ok := seen[v]; !ok {
				seen[v] = struct{}{}
				s.Nodes = append(s.Nodes, v)
			}
		}
	}
	return s
}

// NodeWindow returns the inductive snapshot of the window [start, end]:
// nodes whose time falls inside the window, and the pairs with both
// endpoints inside it.
func (d *Dataset) NodeWindow(start, end int) Snapshot {
	var s Snapshot
	inside := make(map[int]struct{})
	for i, n := range d.Graph.Nodes {
		if n.Time < start || n.Time > end {
			continue
		}
		inside[i] = struct{}{}
		s.Nodes = append(s.Nodes, i)
	}
	for _, p := range d.Pairs {
		if _, ok := inside[p.Source]; !ok {
			continue
		}
		if _, ok := inside[p.Target]; !ok {
			continue
		}
		s.Pairs = append(s.Pairs, p)
	}
	return s
}

// NumEdges returns the undirected edge count of the snapshot.
func (s Snapshot) NumEdges() int { return len(s.Pairs) / 2 }

// TimeSteps returns the number of distinct pair times in the snapshot.
func (s Snapshot) TimeSteps() int {
	unique := make(map[int]struct{})
	for _, p := range s.Pairs {
		unique[p.Time] = struct{}{}
	}
	return len(unique)
}

// TimeRange returns the smallest and largest pair time in the snapshot.
// Both are zero when the snapshot holds no pairs.
func (s Snapshot) TimeRange() (int, int) {
	if len(s.Pairs) == 0 {
		return 0, 0
	}
	min, max := s.Pairs[0].Time, s.Pairs[0].Time
	for _, p := range s.Pairs {
		if p.Time < min {
			min = p.Time
		}
		if p.Time > max {
			max = p.Time
		}
	}
	return min, max
}
