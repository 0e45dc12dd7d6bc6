package dataset

import (
	"archive/zip"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sbinet/npyio"
	"gopkg.in/yaml.v3"

	"github.com/graphsets/pubmed-temporal/pkg/planetoid"
)

// SplitArchive is the split mask bundle name, keyed by the approximate
// train/test ratio for compatibility with the reference loaders.
const SplitArchive = "temporal_split_0.6_0.2.npz"

// TemporalDir returns the output directory of the built dataset.
func TemporalDir(root string) string {
	return filepath.Join(root, "pubmed", "temporal")
}

// WriteRaw serializes the dataset's raw arrays under
// <root>/pubmed/temporal/raw/: edge_time.npy, node_time.npy,
// edge_directed.npy, the split mask bundle, and copies of the reference raw
// files found under <root>/planetoid/.
func WriteRaw(log *slog.Logger, root string, d *Dataset) error {
	rawDir := filepath.Join(TemporalDir(root), "raw")
	if err := os.MkdirAll(rawDir, 0o755); err != nil {
		return fmt.Errorf("failed to create raw directory: %w", err)
	}

	if err := writeNpy(filepath.Join(rawDir, "edge_time.npy"), d.EdgeTimes()); err != nil {
		return err
	}
	if err := writeNpy(filepath.Join(rawDir, "node_time.npy"), d.NodeTimes()); err != nil {
		return err
	}
	if err := writeNpy(filepath.Join(rawDir, "edge_directed.npy"), d.EdgeDirected()); err != nil {
		return err
	}

	if err := writeSplitArchive(filepath.Join(rawDir, SplitArchive), d); err != nil {
		return err
	}

	if err := copyReferenceFiles(log, root, rawDir); err != nil {
		return err
	}

	log.Info("Raw arrays written", "dir", rawDir)
	return nil
}

// writeNpy writes a one-dimensional array to a .npy file.
func writeNpy(path string, data interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := npyio.Write(f, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// writeSplitArchive bundles the three split masks into an .npz container
// (a zip archive of .npy entries, stored uncompressed like numpy's savez).
func writeSplitArchive(path string, d *Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	masks := []struct {
		name string
		data []bool
	}{
		{"train_mask.npy", d.TrainMask},
		{"val_mask.npy", d.ValMask},
		{"test_mask.npy", d.TestMask},
	}

	for _, m := range masks {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: m.name, Method: zip.Store})
		if err != nil {
			return fmt.Errorf("failed to create %s entry: %w", m.name, err)
		}
		if err := npyio.Write(w, m.data); err != nil {
			return fmt.Errorf("failed to write %s entry: %w", m.name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize %s: %w", path, err)
	}
	return f.Close()
}

// copyReferenceFiles copies the upstream raw files shipped alongside the
// reference export (ind.pubmed.*) into the output raw directory. The
// reference loaders expect them next to the temporal arrays.
func copyReferenceFiles(log *slog.Logger, root, rawDir string) error {
	matches, err := filepath.Glob(filepath.Join(planetoid.Dir(root), "ind.pubmed.*"))
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		log.Warn("No reference raw files to copy", "dir", planetoid.Dir(root))
		return nil
	}

	for _, src := range matches {
		if err := copyFile(src, filepath.Join(rawDir, filepath.Base(src))); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	return out.Close()
}

// Manifest is the dataset card written alongside the built dataset.
type Manifest struct {
	BuildID   string    `yaml:"build_id"`
	BuiltAt   time.Time `yaml:"built_at"`
	Nodes     int       `yaml:"nodes"`
	Edges     int       `yaml:"edges"`
	Pairs     int       `yaml:"pairs"`
	TimeSteps int       `yaml:"time_steps"`
	Interval  string    `yaml:"interval"`
	Split     struct {
		TrainEnd   int     `yaml:"train_end"`
		ValEnd     int     `yaml:"val_end"`
		TrainRatio float64 `yaml:"train_ratio"`
		ValRatio   float64 `yaml:"val_ratio"`
		TestRatio  float64 `yaml:"test_ratio"`
	} `yaml:"split"`
}

// WriteManifest writes the dataset card to <root>/pubmed/temporal/manifest.yaml.
func WriteManifest(log *slog.Logger, root string, d *Dataset) error {
	full := d.EdgeWindow(0, len(d.Steps))

	m := Manifest{
		BuildID:   uuid.NewString(),
		BuiltAt:   time.Now().UTC(),
		Nodes:     d.Graph.NumNodes(),
		Edges:     len(d.Pairs) / 2,
		Pairs:     len(d.Pairs),
		TimeSteps: full.TimeSteps(),
	}
	if lo, hi := full.TimeRange(); len(d.Steps) > 0 {
		m.Interval = fmt.Sprintf("%s - %s", d.Year(lo), d.Year(hi))
	}

	m.Split.TrainEnd = d.Split.TrainEnd
	m.Split.ValEnd = d.Split.ValEnd
	if n := float64(len(d.Pairs)); n > 0 {
		m.Split.TrainRatio = ratio(d.TrainMask)
		m.Split.ValRatio = ratio(d.ValMask)
		m.Split.TestRatio = ratio(d.TestMask)
	}

	data, err := yaml.Marshal(&m)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	path := filepath.Join(TemporalDir(root), "manifest.yaml")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	log.Info("Manifest written", "path", path)
	return nil
}

func ratio(mask []bool) float64 {
	count := 0
	for _, b := range mask {
		if b {
			count++
		}
	}
	return float64(count) / float64(len(mask))
}
