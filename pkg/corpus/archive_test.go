package corpus

import (
	"archive/zip"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const nodeTable = "NO FEATURES\tblah\n" +
	"pmid\tlabel\tw-a\tw-b\tw-c\tsummary\n" +
	"100\tlabel=3\tw-alpha=0.5\tw-beta=0.25\tsummary=alpha beta\n" +
	"200\tlabel=1\tw-beta=0.75\tsummary=beta\n" +
	"300\tlabel=2\tw-gamma=1\tw-alpha=0.125\tsummary=gamma alpha\n"

const edgeTable = "DIRECTED\tblah\n" +
	"edge\tsource\t|\ttarget\n" +
	"1\tpaper:100\t|\tpaper:200\n" +
	"2\tpaper:300\t|\tpaper:100\n" +
	"3\tpaper:200\t|\tpaper:200\n"

// writeArchive creates a source archive fixture under root/input.
func writeArchive(t *testing.T, root string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Join(root, "input"), 0o755))
	f, err := os.Create(ArchivePath(root))
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	nodes, err := w.Create(nodeTablePath)
	require.NoError(t, err)
	_, err = nodes.Write([]byte(nodeTable))
	require.NoError(t, err)

	edges, err := w.Create(edgeTablePath)
	require.NoError(t, err)
	_, err = edges.Write([]byte(edgeTable))
	require.NoError(t, err)

	require.NoError(t, w.Close())
}

func TestLoad(t *testing.T) {
	root := t.TempDir()
	writeArchive(t, root)

	c, err := Load(root)
	require.NoError(t, err)

	require.Len(t, c.Papers, 3)
	assert.Equal(t, "100", c.Papers[0].PMID)
	assert.Equal(t, 3, c.Papers[0].Label)
	assert.Equal(t, "alpha beta", c.Papers[0].Summary)

	// Vocabulary follows first appearance in file order.
	assert.Equal(t, []string{"w-alpha", "w-beta", "w-gamma"}, c.Vocab)

	require.Len(t, c.Citations, 3)
	assert.Equal(t, "100", c.Citations[0].Source)
	assert.Equal(t, "200", c.Citations[0].Target)
}

func TestLoadMissingArchive(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.ErrorIs(t, err, ErrArchiveNotFound)
}

func TestFeatures(t *testing.T) {
	root := t.TempDir()
	writeArchive(t, root)

	c, err := Load(root)
	require.NoError(t, err)

	x := c.Features(&c.Papers[1])
	assert.Equal(t, []float32{0, 0.75, 0}, x)

	x = c.Features(&c.Papers[2])
	assert.Equal(t, []float32{0.125, 0, 1}, x)
}

func TestIDs(t *testing.T) {
	root := t.TempDir()
	writeArchive(t, root)

	c, err := Load(root)
	require.NoError(t, err)

	assert.Equal(t, []string{"100", "200", "300"}, c.IDs())
}

func TestDownload(t *testing.T) {
	payload := []byte("not-really-a-zip")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer srv.Close()

	root := t.TempDir()
	log := slog.New(slog.DiscardHandler)

	err := Download(context.Background(), log, root, srv.URL)
	require.NoError(t, err)

	got, err := os.ReadFile(ArchivePath(root))
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	// Second call is a no-op.
	require.NoError(t, Download(context.Background(), log, root, srv.URL))
}

func TestDownloadBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	err := Download(context.Background(), slog.New(slog.DiscardHandler), t.TempDir(), srv.URL)
	assert.Error(t, err)
}
