// Package planetoid loads the Planetoid reference copy of the PubMed dataset
// and reconciles its node ordering with the source corpus ordering.
//
// The reference is consumed from a NumPy export under <root>/planetoid/:
// x.npy (float32, N rows of F features), y.npy (int64 labels), and edges.npy
// (int64, 2 rows of E directed pair endpoints), plus the upstream
// ind.pubmed.test.index text file. The upstream raw files are Python pickles
// with no portable decoding, so the export is the interchange format.
package planetoid

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sbinet/npyio"
)

// Reference holds the Planetoid copy of the dataset.
type Reference struct {
	// X is the row-major feature matrix, NumNodes rows by NumFeatures.
	X []float32
	// Y holds the class label per node.
	Y []int64
	// Pairs holds the directed edge pairs as (source, target).
	Pairs [][2]int
	// TestIndex lists the node indices of the public test split.
	TestIndex []int

	NumNodes    int
	NumFeatures int
}

// Dir returns the reference dataset directory under root.
func Dir(root string) string {
	return filepath.Join(root, "planetoid")
}

// Load reads the reference dataset from <root>/planetoid/.
func Load(root string) (*Reference, error) {
	dir := Dir(root)

	ref := &Reference{}

	var shape []int
	var err error
	if shape, err = readNpy(filepath.Join(dir, "x.npy"), &ref.X); err != nil {
		return nil, err
	}
	if len(shape) != 2 {
		return nil, fmt.Errorf("reference x.npy must be 2-dimensional, got shape %v", shape)
	}
	ref.NumNodes = shape[0]
	ref.NumFeatures = shape[1]

	if _, err = readNpy(filepath.Join(dir, "y.npy"), &ref.Y); err != nil {
		return nil, err
	}
	if len(ref.Y) != ref.NumNodes {
		return nil, fmt.Errorf("reference y.npy has %d labels for %d nodes", len(ref.Y), ref.NumNodes)
	}

	var edges []int64
	if shape, err = readNpy(filepath.Join(dir, "edges.npy"), &edges); err != nil {
		return nil, err
	}
	if len(shape) != 2 || shape[0] != 2 {
		return nil, fmt.Errorf("reference edges.npy must have shape (2, E), got %v", shape)
	}
	numPairs := shape[1]
	ref.Pairs = make([][2]int, numPairs)
	for i := 0; i < numPairs; i++ {
		ref.Pairs[i] = [2]int{int(edges[i]), int(edges[numPairs+i])}
	}

	if ref.TestIndex, err = readTestIndex(filepath.Join(dir, "ind.pubmed.test.index")); err != nil {
		return nil, err
	}

	return ref, nil
}

// Row returns the feature vector of node i.
func (r *Reference) Row(i int) []float32 {
	return r.X[i*r.NumFeatures : (i+1)*r.NumFeatures]
}

// NumPairs returns the number of directed edge pairs.
func (r *Reference) NumPairs() int { return len(r.Pairs) }

// UndirectedDegrees returns the number of distinct undirected neighbors per
// node.
func (r *Reference) UndirectedDegrees() []int {
	neighbors := make([]map[int]struct{}, r.NumNodes)
	for i := range neighbors {
		neighbors[i] = make(map[int]struct{})
	}
	for _, p := range r.Pairs {
		neighbors[p[0]][p[1]] = struct{}{}
		neighbors[p[1]][p[0]] = struct{}{}
	}

	degrees := make([]int, r.NumNodes)
	for i, n := range neighbors {
		degrees[i] = len(n)
	}
	return degrees
}

// readNpy reads a .npy file into data, returning the array shape.
func readNpy(path string, data interface{}) ([]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reference file missing: %w", err)
	}
	defer f.Close()

	r, err := npyio.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := r.Read(data); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return r.Header.Descr.Shape, nil
}

// readTestIndex parses the upstream test.index file, one node index per line.
func readTestIndex(path string) ([]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reference file missing: %w", err)
	}
	defer f.Close()

	var out []int
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		idx, err := strconv.Atoi(line)
		if err != nil {
			return nil, fmt.Errorf("malformed test index line %q: %w", line, err)
		}
		out = append(out, idx)
	}
	return out, scanner.Err()
}
