package graphio

import (
	"encoding/xml"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/graphsets/pubmed-temporal/pkg/dataset"
)

// GraphMLFile is the GraphML export name.
const GraphMLFile = "pubmed-temporal.graphml"

type graphmlDoc struct {
	XMLName xml.Name     `xml:"graphml"`
	Xmlns   string       `xml:"xmlns,attr"`
	Keys    []graphmlKey `xml:"key"`
	Graph   graphmlGraph `xml:"graph"`
}

type graphmlKey struct {
	ID       string `xml:"id,attr"`
	For      string `xml:"for,attr"`
	AttrName string `xml:"attr.name,attr"`
	AttrType string `xml:"attr.type,attr"`
}

type graphmlGraph struct {
	EdgeDefault string        `xml:"edgedefault,attr"`
	Nodes       []graphmlNode `xml:"node"`
	Edges       []graphmlEdge `xml:"edge"`
}

type graphmlNode struct {
	ID   string        `xml:"id,attr"`
	Data []graphmlData `xml:"data"`
}

type graphmlEdge struct {
	Source string        `xml:"source,attr"`
	Target string        `xml:"target,attr"`
	Data   []graphmlData `xml:"data"`
}

type graphmlData struct {
	Key   string `xml:"key,attr"`
	Value string `xml:",chardata"`
}

// WriteGraphML writes the undirected graph with node class, node time, and
// edge time attributes to <root>/pubmed/temporal/graph/pubmed-temporal.graphml.
func WriteGraphML(log *slog.Logger, root string, d *dataset.Dataset) error {
	doc := graphmlDoc{
		Xmlns: "http://graphml.graphdrawing.org/xmlns",
		Keys: []graphmlKey{
			{ID: "d0", For: "node", AttrName: "pmid", AttrType: "string"},
			{ID: "d1", For: "node", AttrName: "y", AttrType: "long"},
			{ID: "d2", For: "node", AttrName: "node_time", AttrType: "long"},
			{ID: "d3", For: "edge", AttrName: "time", AttrType: "long"},
		},
		Graph: graphmlGraph{EdgeDefault: "undirected"},
	}

	for i, n := range d.Graph.Nodes {
		doc.Graph.Nodes = append(doc.Graph.Nodes, graphmlNode{
			ID: fmt.Sprint(i),
			Data: []graphmlData{
				{Key: "d0", Value: n.PMID},
				{Key: "d1", Value: fmt.Sprint(n.Y)},
				{Key: "d2", Value: fmt.Sprint(n.Time)},
			},
		})
	}

	edges := 0
	for _, p := range d.Pairs {
		if p.Source > p.Target {
			continue
		}
		doc.Graph.Edges = append(doc.Graph.Edges, graphmlEdge{
			Source: fmt.Sprint(p.Source),
			Target: fmt.Sprint(p.Target),
			Data: []graphmlData{
				{Key: "d3", Value: fmt.Sprint(p.Time)},
			},
		})
		edges++
	}

	path := filepath.Join(GraphDir(root), GraphMLFile)
	if err := writeXML(path, doc); err != nil {
		return err
	}
	log.Info("GraphML export written", "path", path, "nodes", len(doc.Graph.Nodes), "edges", edges)
	return nil
}
