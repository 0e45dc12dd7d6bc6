// Package graphio serializes the built citation graph into interchange
// formats: GEXF and GraphML for graph tooling, Parquet for analytics.
// Feature vectors are deliberately left out of the XML exports, they are
// too wide for graph viewers and live in the raw arrays instead.
package graphio

import (
	"encoding/xml"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/graphsets/pubmed-temporal/pkg/dataset"
	"github.com/graphsets/pubmed-temporal/pkg/types"
)

// GEXFFile is the GEXF export name.
const GEXFFile = "pubmed-temporal.gexf"

// GraphDir returns the graph export directory of the built dataset.
func GraphDir(root string) string {
	return filepath.Join(dataset.TemporalDir(root), "graph")
}

type gexfDoc struct {
	XMLName xml.Name  `xml:"gexf"`
	Xmlns   string    `xml:"xmlns,attr"`
	Version string    `xml:"version,attr"`
	Graph   gexfGraph `xml:"graph"`
}

type gexfGraph struct {
	Mode       string           `xml:"mode,attr"`
	EdgeType   string           `xml:"defaultedgetype,attr"`
	Attributes []gexfAttributes `xml:"attributes"`
	Nodes      []gexfNode       `xml:"nodes>node"`
	Edges      []gexfEdge       `xml:"edges>edge"`
}

type gexfAttributes struct {
	Class string          `xml:"class,attr"`
	Attrs []gexfAttribute `xml:"attribute"`
}

type gexfAttribute struct {
	ID    string `xml:"id,attr"`
	Title string `xml:"title,attr"`
	Type  string `xml:"type,attr"`
}

type gexfNode struct {
	ID     int             `xml:"id,attr"`
	Label  string          `xml:"label,attr"`
	Values []gexfAttrValue `xml:"attvalues>attvalue"`
}

type gexfEdge struct {
	ID     int             `xml:"id,attr"`
	Source int             `xml:"source,attr"`
	Target int             `xml:"target,attr"`
	Values []gexfAttrValue `xml:"attvalues>attvalue"`
}

type gexfAttrValue struct {
	For   string `xml:"for,attr"`
	Value string `xml:"value,attr"`
}

// buildGEXF assembles a GEXF document over the given node indices and
// undirected pairs. Node ids keep their dataset indices so subgraph exports
// stay aligned with the full graph.
func buildGEXF(d *dataset.Dataset, nodes []int, pairs []types.Pair) gexfDoc {
	doc := gexfDoc{
		Xmlns:   "http://www.gexf.net/1.2draft",
		Version: "1.2",
		Graph: gexfGraph{
			Mode:     "static",
			EdgeType: "undirected",
			Attributes: []gexfAttributes{
				{Class: "node", Attrs: []gexfAttribute{
					{ID: "y", Title: "y", Type: "long"},
					{ID: "node_time", Title: "node_time", Type: "long"},
				}},
				{Class: "edge", Attrs: []gexfAttribute{
					{ID: "time", Title: "time", Type: "long"},
				}},
			},
		},
	}

	for _, v := range nodes {
		n := d.Graph.Nodes[v]
		doc.Graph.Nodes = append(doc.Graph.Nodes, gexfNode{
			ID:    v,
			Label: n.PMID,
			Values: []gexfAttrValue{
				{For: "y", Value: fmt.Sprint(n.Y)},
				{For: "node_time", Value: fmt.Sprint(n.Time)},
			},
		})
	}

	id := 0
	for _, p := range pairs {
		if p.Source > p.Target {
			continue
		}
		doc.Graph.Edges = append(doc.Graph.Edges, gexfEdge{
			ID:     id,
			Source: p.Source,
			Target: p.Target,
			Values: []gexfAttrValue{
				{For: "time", Value: fmt.Sprint(p.Time)},
			},
		})
		id++
	}

	return doc
}

// WriteGEXF writes the undirected graph with node class, node time, and
// edge time attributes to <root>/pubmed/temporal/graph/pubmed-temporal.gexf.
func WriteGEXF(log *slog.Logger, root string, d *dataset.Dataset) error {
	nodes := make([]int, d.Graph.NumNodes())
	for i := range nodes {
		nodes[i] = i
	}
	doc := buildGEXF(d, nodes, d.Pairs)

	path := filepath.Join(GraphDir(root), GEXFFile)
	if err := writeXML(path, doc); err != nil {
		return err
	}
	log.Info("GEXF export written", "path", path,
		"nodes", len(doc.Graph.Nodes), "edges", len(doc.Graph.Edges))
	return nil
}

// WriteSplitGEXF writes one GEXF export per temporal split
// (graph_train.gexf, graph_val.gexf, graph_test.gexf): the pairs inside the
// split window and the nodes incident to them.
func WriteSplitGEXF(log *slog.Logger, root string, d *dataset.Dataset) error {
	last := len(d.Steps) - 1
	splits := []struct {
		name       string
		start, end int
	}{
		{"train", 0, d.Split.TrainEnd - 1},
		{"val", d.Split.TrainEnd, d.Split.ValEnd},
		{"test", d.Split.ValEnd + 1, last},
	}

	for _, s := range splits {
		snap := d.EdgeWindow(s.start, s.end)
		doc := buildGEXF(d, snap.Nodes, snap.Pairs)

		path := filepath.Join(GraphDir(root), "graph_"+s.name+".gexf")
		if err := writeXML(path, doc); err != nil {
			return err
		}
		log.Info("Split GEXF export written", "split", s.name, "path", path,
			"nodes", len(doc.Graph.Nodes), "edges", len(doc.Graph.Edges))
	}
	return nil
}

func writeXML(path string, doc any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(f)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return f.Close()
}
