package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SplitStats summarizes one split of the dataset.
type SplitStats struct {
	Graph string
	Split string

	Nodes       int
	Edges       int
	ClassCounts [3]int
	TimeSteps   int
	Interval    string
}

// Stats summarizes the full graph and the transductive and inductive splits.
func (d *Dataset) Stats() []SplitStats {
	last := len(d.Steps) - 1
	windows := []struct {
		graph, split string
		start, end   int
		inductive    bool
	}{
		{"Full", "None", 0, last, false},
		{"Transductive", "Train", 0, d.Split.TrainEnd - 1, false},
		{"Transductive", "Validation", d.Split.TrainEnd, d.Split.ValEnd, false},
		{"Transductive", "Test", d.Split.ValEnd + 1, last, false},
		{"Inductive", "Train", 0, d.Split.TrainEnd - 1, true},
		{"Inductive", "Validation", d.Split.TrainEnd, d.Split.ValEnd, true},
		{"Inductive", "Test", d.Split.ValEnd + 1, last, true},
	}

	out := make([]SplitStats, 0, len(windows))
	for _, w := range windows {
		var snap Snapshot
		if w.inductive {
			snap = d.NodeWindow(w.start, w.end)
		} else {
			snap = d.EdgeWindow(w.start, w.end)
		}

		s := SplitStats{
			Graph:     w.graph,
			Split:     w.split,
			Nodes:     len(snap.Nodes),
			Edges:     snap.NumEdges(),
			TimeSteps: snap.TimeSteps(),
		}
		for _, v := range snap.Nodes {
			y := d.Graph.Nodes[v].Y
			if y >= 0 && y < len(s.ClassCounts) {
				s.ClassCounts[y]++
			}
		}
		if lo, hi := snap.TimeRange(); len(snap.Pairs) > 0 {
			s.Interval = fmt.Sprintf("%s - %s", d.Year(lo), d.Year(hi))
		}
		out = append(out, s)
	}
	return out
}

// StatsTable renders the split summary as a markdown table.
func StatsTable(stats []SplitStats) string {
	var b strings.Builder
	b.WriteString("| Graph | Split | Nodes | Edges | Class 0 | Class 1 | Class 2 | Time steps | Interval (Years) |\n")
	b.WriteString("|:-:|:-:|:-:|:-:|:-:|:-:|:-:|:-:|:-:|\n")
	for _, s := range stats {
		fmt.Fprintf(&b, "| %s | %s | %d | %d | %d | %d | %d | %d | %s |\n",
			s.Graph, s.Split, s.Nodes, s.Edges,
			s.ClassCounts[0], s.ClassCounts[1], s.ClassCounts[2],
			s.TimeSteps, s.Interval)
	}
	return b.String()
}

// WriteStatsTable writes the split summary table to <root>/pubmed/temporal/table.md.
func WriteStatsTable(root string, d *Dataset) error {
	path := filepath.Join(TemporalDir(root), "table.md")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(StatsTable(d.Stats())), 0o644)
}
