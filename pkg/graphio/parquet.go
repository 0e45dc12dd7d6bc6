package graphio

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"

	"github.com/graphsets/pubmed-temporal/pkg/dataset"
)

// ParquetWriter writes the node and pair tables of a built dataset to
// Parquet files for downstream analytics.
type ParquetWriter struct {
	baseDir string
}

// NewParquetWriter creates a Parquet writer rooted at baseDir.
func NewParquetWriter(baseDir string) (*ParquetWriter, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", baseDir, err)
	}
	return &ParquetWriter{baseDir: baseDir}, nil
}

// ParquetNode is the Parquet schema of a citation graph node.
type ParquetNode struct {
	Index int32  `parquet:"index"`
	PMID  string `parquet:"pmid"`
	Class int32  `parquet:"class"`
	Time  int32  `parquet:"time"`
	Year  string `parquet:"year"`
}

// ParquetPair is the Parquet schema of a directed half of an undirected
// citation pair.
type ParquetPair struct {
	Source   int32 `parquet:"source"`
	Target   int32 `parquet:"target"`
	Time     int32 `parquet:"time"`
	Directed bool  `parquet:"directed"`
}

// WriteNodes writes the node table to nodes.parquet.
func (w *ParquetWriter) WriteNodes(d *dataset.Dataset) error {
	rows := make([]ParquetNode, 0, d.Graph.NumNodes())
	for i, n := range d.Graph.Nodes {
		rows = append(rows, ParquetNode{
			Index: int32(i),
			PMID:  n.PMID,
			Class: int32(n.Y),
			Time:  int32(n.Time),
			Year:  d.Year(n.Time),
		})
	}
	return parquet.WriteFile(filepath.Join(w.baseDir, "nodes.parquet"), rows)
}

// WritePairs writes the pair table to edges.parquet.
func (w *ParquetWriter) WritePairs(d *dataset.Dataset) error {
	rows := make([]ParquetPair, 0, len(d.Pairs))
	for _, p := range d.Pairs {
		rows = append(rows, ParquetPair{
			Source:   int32(p.Source),
			Target:   int32(p.Target),
			Time:     int32(p.Time),
			Directed: p.Directed,
		})
	}
	return parquet.WriteFile(filepath.Join(w.baseDir, "edges.parquet"), rows)
}

// WriteParquet writes both tables under <root>/pubmed/temporal/parquet/.
func WriteParquet(log *slog.Logger, root string, d *dataset.Dataset) error {
	dir := filepath.Join(dataset.TemporalDir(root), "parquet")
	w, err := NewParquetWriter(dir)
	if err != nil {
		return err
	}
	if err := w.WriteNodes(d); err != nil {
		return fmt.Errorf("failed to write node table: %w", err)
	}
	if err := w.WritePairs(d); err != nil {
		return fmt.Errorf("failed to write pair table: %w", err)
	}
	log.Info("Parquet tables written", "dir", dir)
	return nil
}
