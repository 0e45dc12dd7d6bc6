package pubmedtemporal

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphsets/pubmed-temporal/pkg/config"
	"github.com/graphsets/pubmed-temporal/pkg/dataset"
	"github.com/graphsets/pubmed-temporal/pkg/graphio"
	"github.com/graphsets/pubmed-temporal/pkg/planetoid"
)

const nodeTable = "NO FEATURES\tblah\n" +
	"pmid\tlabel\tw-a\tw-b\tsummary\n" +
	"1000\tlabel=3\tw-a=1\tsummary=alpha\n" +
	"2000\tlabel=1\tw-b=1\tsummary=beta\n" +
	"3000\tlabel=2\tw-a=0.5\tw-b=0.5\tsummary=alpha beta\n"

const edgeTable = "DIRECTED\tblah\n" +
	"edge\tsource\t|\ttarget\n" +
	"1\tpaper:1000\t|\tpaper:2000\n" +
	"2\tpaper:3000\t|\tpaper:1000\n" +
	"3\tpaper:2000\t|\tpaper:2000\n"

// archiveServer serves the source archive fixture over HTTP.
func archiveServer(t *testing.T) *httptest.Server {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	nodes, err := w.Create("pubmed-diabetes/data/Pubmed-Diabetes.NODE.paper.tab")
	require.NoError(t, err)
	_, err = nodes.Write([]byte(nodeTable))
	require.NoError(t, err)
	edges, err := w.Create("pubmed-diabetes/data/Pubmed-Diabetes.DIRECTED.cites.tab")
	require.NoError(t, err)
	_, err = edges.Write([]byte(edgeTable))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(buf.Bytes())
	}))
}

// summaryServer serves ESummary-shaped metadata with fixed publication
// dates per PMID.
func summaryServer(t *testing.T, dates map[string]string) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		ids := strings.Split(r.Form.Get("id"), ",")

		var entries, uids []string
		for _, id := range ids {
			date, ok := dates[id]
			if !ok {
				continue
			}
			uids = append(uids, fmt.Sprintf("%q", id))
			entries = append(entries, fmt.Sprintf(
				`%q: {"uid": %q, "title": "Paper %s", "pubdate": %q}`, id, id, id, date))
		}
		fmt.Fprintf(w, `{"result": {"uids": [%s], %s}}`,
			strings.Join(uids, ","), strings.Join(entries, ","))
	}))
}

func writeNpy(t *testing.T, path, descr string, shape []int, data interface{}) {
	t.Helper()

	shapeStr := ""
	for _, s := range shape {
		shapeStr += fmt.Sprintf("%d, ", s)
	}
	header := fmt.Sprintf("{'descr': '%s', 'fortran_order': False, 'shape': (%s), }", descr, shapeStr)
	pad := 64 - (10+len(header)+1)%64
	header += string(bytes.Repeat([]byte{' '}, pad)) + "\n"

	var buf bytes.Buffer
	buf.WriteString("\x93NUMPY")
	buf.WriteByte(1)
	buf.WriteByte(0)
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint16(len(header))))
	buf.WriteString(header)

	switch v := data.(type) {
	case []float32:
		for _, x := range v {
			require.NoError(t, binary.Write(&buf, binary.LittleEndian, math.Float32bits(x)))
		}
	case []int64:
		for _, x := range v {
			require.NoError(t, binary.Write(&buf, binary.LittleEndian, x))
		}
	default:
		t.Fatalf("unsupported fixture type %T", data)
	}

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

// writeReference lays out the reference arrays with the corpus nodes
// permuted: 1000 -> 2, 2000 -> 0, 3000 -> 1.
func writeReference(t *testing.T, root string) {
	t.Helper()

	dir := planetoid.Dir(root)
	writeNpy(t, filepath.Join(dir, "x.npy"), "<f4",
		[]int{3, 2}, []float32{0, 1, 0.5, 0.5, 1, 0})
	writeNpy(t, filepath.Join(dir, "y.npy"), "<i8",
		[]int{3}, []int64{0, 2, 1})
	writeNpy(t, filepath.Join(dir, "edges.npy"), "<i8",
		[]int{2, 4}, []int64{2, 0, 1, 2, 0, 2, 2, 1})
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "ind.pubmed.test.index"), []byte("1\n"), 0o644))
}

func testConfig(root, archiveURL, fetchURL string) *config.Config {
	cfg := &config.Config{}
	cfg.Dataset.Root = root
	cfg.Dataset.ArchiveURL = archiveURL
	cfg.Fetch.BaseURL = fetchURL
	cfg.Fetch.Chunksize = 200
	cfg.Fetch.MaxRounds = 2
	cfg.Split.TrainEnd = 1
	cfg.Split.ValEnd = 1
	cfg.Log.Level = "error"
	return cfg
}

func TestBuildEndToEnd(t *testing.T) {
	root := t.TempDir()
	writeReference(t, root)

	archive := archiveServer(t)
	defer archive.Close()
	eutils := summaryServer(t, map[string]string{
		"1000": "1990 Jan 1",
		"2000": "1980 May 15",
		"3000": "2000:2001 Winter",
	})
	defer eutils.Close()

	client := NewClient(testConfig(root, archive.URL, eutils.URL), nil)
	defer client.Close()

	d, err := client.Build(context.Background())
	require.NoError(t, err)

	require.Equal(t, 3, d.Graph.NumNodes())
	assert.Len(t, d.Pairs, 4)
	assert.Equal(t, []string{"1980", "1990", "2000"}, d.Steps)

	// Nodes sit at their reference indices: 2000 first, 3000 second.
	assert.Equal(t, "2000", d.Graph.Nodes[0].PMID)
	assert.Equal(t, "3000", d.Graph.Nodes[1].PMID)
	assert.Equal(t, "1000", d.Graph.Nodes[2].PMID)

	outDir := dataset.TemporalDir(root)
	for _, name := range []string{
		filepath.Join("raw", "edge_time.npy"),
		filepath.Join("raw", "node_time.npy"),
		filepath.Join("raw", "edge_directed.npy"),
		filepath.Join("raw", dataset.SplitArchive),
		filepath.Join("raw", "ind.pubmed.test.index"),
		filepath.Join("graph", graphio.GEXFFile),
		filepath.Join("graph", graphio.GraphMLFile),
		filepath.Join("graph", "graph_train.gexf"),
		filepath.Join("graph", "graph_val.gexf"),
		filepath.Join("graph", "graph_test.gexf"),
		filepath.Join("parquet", "nodes.parquet"),
		filepath.Join("parquet", "edges.parquet"),
		"manifest.yaml",
		"table.md",
	} {
		assert.FileExists(t, filepath.Join(outDir, name), name)
	}

	// Caches left behind for stage reruns.
	assert.FileExists(t, dataset.TimesPath(root))
	assert.FileExists(t, planetoid.IndexMapPath(root))
}

func TestBuildFailsVerification(t *testing.T) {
	root := t.TempDir()
	writeReference(t, root)

	// Corrupt the reference labels so verification must fail.
	writeNpy(t, filepath.Join(planetoid.Dir(root), "y.npy"), "<i8",
		[]int{3}, []int64{2, 2, 2})

	archive := archiveServer(t)
	defer archive.Close()
	eutils := summaryServer(t, map[string]string{
		"1000": "1990", "2000": "1980", "3000": "2000",
	})
	defer eutils.Close()

	client := NewClient(testConfig(root, archive.URL, eutils.URL), nil)
	defer client.Close()

	_, err := client.Build(context.Background())
	require.ErrorContains(t, err, "verification failed")

	// Nothing written on failure.
	assert.NoFileExists(t, filepath.Join(dataset.TemporalDir(root), "manifest.yaml"))
}

func TestStatsFromCaches(t *testing.T) {
	root := t.TempDir()
	writeReference(t, root)

	archive := archiveServer(t)
	defer archive.Close()
	eutils := summaryServer(t, map[string]string{
		"1000": "1990", "2000": "1980", "3000": "2000",
	})
	defer eutils.Close()

	client := NewClient(testConfig(root, archive.URL, eutils.URL), nil)
	defer client.Close()

	_, err := client.Build(context.Background())
	require.NoError(t, err)

	// A second client renders stats without touching the servers.
	archive.Close()
	eutils.Close()

	table, err := client.Stats(context.Background())
	require.NoError(t, err)
	assert.Contains(t, table, "| Full | None | 3 |")
}
