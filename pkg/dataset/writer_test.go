package dataset

import (
	"archive/zip"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/sbinet/npyio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func testDataset(t *testing.T) *Dataset {
	t.Helper()
	g, err := BuildGraph(testCorpus(), testTimes())
	require.NoError(t, err)
	d, err := Assemble(g, []int{0, 1, 2, 3}, []string{"1964", "1970", "1980", "1990"}, Split{TrainEnd: 2, ValEnd: 2})
	require.NoError(t, err)
	return d
}

func TestWriteRaw(t *testing.T) {
	root := t.TempDir()
	d := testDataset(t)

	// Reference raw file to be copied alongside the arrays.
	refDir := filepath.Join(root, "planetoid")
	require.NoError(t, os.MkdirAll(refDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(refDir, "ind.pubmed.graph"), []byte("ref"), 0o644))

	log := slog.New(slog.DiscardHandler)
	require.NoError(t, WriteRaw(log, root, d))

	rawDir := filepath.Join(TemporalDir(root), "raw")

	f, err := os.Open(filepath.Join(rawDir, "edge_time.npy"))
	require.NoError(t, err)
	defer f.Close()
	var edgeTimes []int64
	require.NoError(t, npyio.Read(f, &edgeTimes))
	assert.Equal(t, d.EdgeTimes(), edgeTimes)

	zr, err := zip.OpenReader(filepath.Join(rawDir, SplitArchive))
	require.NoError(t, err)
	defer zr.Close()
	names := make([]string, 0, len(zr.File))
	for _, zf := range zr.File {
		names = append(names, zf.Name)
		assert.Equal(t, zip.Store, zf.Method)
	}
	assert.ElementsMatch(t, []string{"train_mask.npy", "val_mask.npy", "test_mask.npy"}, names)

	copied, err := os.ReadFile(filepath.Join(rawDir, "ind.pubmed.graph"))
	require.NoError(t, err)
	assert.Equal(t, "ref", string(copied))

	assert.FileExists(t, filepath.Join(rawDir, "node_time.npy"))
	assert.FileExists(t, filepath.Join(rawDir, "edge_directed.npy"))
}

func TestWriteManifest(t *testing.T) {
	root := t.TempDir()
	d := testDataset(t)

	log := slog.New(slog.DiscardHandler)
	require.NoError(t, WriteManifest(log, root, d))

	data, err := os.ReadFile(filepath.Join(TemporalDir(root), "manifest.yaml"))
	require.NoError(t, err)

	var m Manifest
	require.NoError(t, yaml.Unmarshal(data, &m))
	assert.NotEmpty(t, m.BuildID)
	assert.Equal(t, 4, m.Nodes)
	assert.Equal(t, 3, m.Edges)
	assert.Equal(t, 6, m.Pairs)
	assert.Equal(t, 2, m.Split.TrainEnd)
	assert.InDelta(t, 1.0, m.Split.TrainRatio+m.Split.ValRatio+m.Split.TestRatio, 1e-9)
}

func TestWriteStatsTable(t *testing.T) {
	root := t.TempDir()
	d := testDataset(t)

	require.NoError(t, WriteStatsTable(root, d))

	data, err := os.ReadFile(filepath.Join(TemporalDir(root), "table.md"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "| Graph | Split |")
}
