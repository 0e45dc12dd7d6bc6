package planetoid

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/graphsets/pubmed-temporal/pkg/types"
	"github.com/graphsets/pubmed-temporal/pkg/utils"
)

// IndexMapFile is the cached index map under <root>/input/.
const IndexMapFile = "planetoid-index-map.json.gz"

// IndexMapPath returns the location of the cached index map.
func IndexMapPath(root string) string {
	return filepath.Join(root, "input", IndexMapFile)
}

// BuildIndexMap reconciles the corpus node ordering with the reference
// ordering: entry i is the reference index whose feature vector equals that
// of corpus node i.
//
// Matching feature vectors is quadratic in the node count, parallelized row
// by row across a worker pool. Nodes sharing identical vectors are
// disambiguated by undirected degree. The resulting map must be one-to-one.
func BuildIndexMap(ctx context.Context, log *slog.Logger, g *types.Graph, ref *Reference, workers int) ([]int, error) {
	if g.NumNodes() != ref.NumNodes {
		return nil, fmt.Errorf("node count mismatch: corpus has %d, reference has %d",
			g.NumNodes(), ref.NumNodes)
	}

	log.Info("Building reference index map", "nodes", g.NumNodes(), "workers", workers)

	progress := mpb.New(mpb.WithWidth(64))
	bar := progress.AddBar(int64(g.NumNodes()),
		mpb.PrependDecorators(decor.Name("match"), decor.CountersNoUnit(" %d / %d")),
		mpb.AppendDecorators(decor.Percentage()),
	)

	pool := utils.NewWorkerPool(workers, func(ctx context.Context, i int) ([]int, error) {
		return matchRow(g.Nodes[i].X, ref), nil
	})

	rows := make([]int, g.NumNodes())
	for i := range rows {
		rows[i] = i
	}

	candidates, errs := pool.ProcessItemsFunc(ctx, rows, bar.Increment)
	progress.Wait()
	if err := utils.FirstError(errs); err != nil {
		return nil, err
	}

	// Disambiguate nodes sharing a feature vector by undirected degree.
	degrees := g.UndirectedDegrees()
	refDegrees := ref.UndirectedDegrees()
	ambiguous := 0
	for i, matches := range candidates {
		if len(matches) <= 1 {
			continue
		}
		ambiguous++
		var narrowed []int
		for _, j := range matches {
			if degrees[i] == refDegrees[j] {
				narrowed = append(narrowed, j)
			}
		}
		candidates[i] = narrowed
	}
	if ambiguous > 0 {
		log.Debug("Disambiguated duplicate feature vectors", "nodes", ambiguous)
	}

	indexMap := make([]int, len(candidates))
	taken := make(map[int]int, len(candidates))
	for i, matches := range candidates {
		if len(matches) != 1 {
			return nil, fmt.Errorf("node %d (%s) has %d reference matches, want exactly 1",
				i, g.Nodes[i].PMID, len(matches))
		}
		j := matches[0]
		if prev, dup := taken[j]; dup {
			return nil, fmt.Errorf("reference index %d matched by both nodes %d and %d", j, prev, i)
		}
		taken[j] = i
		indexMap[i] = j
	}

	return indexMap, nil
}

// matchRow returns the reference indices whose feature vector equals x.
func matchRow(x []float32, ref *Reference) []int {
	var matches []int
	for j := 0; j < ref.NumNodes; j++ {
		if equalVectors(x, ref.Row(j)) {
			matches = append(matches, j)
		}
	}
	return matches
}

func equalVectors(a, b []float32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// SaveIndexMap caches the index map to <root>/input/planetoid-index-map.json.gz.
func SaveIndexMap(root string, indexMap []int) error {
	return utils.WriteJSONGz(IndexMapPath(root), indexMap)
}

// LoadIndexMap reads a previously cached index map.
func LoadIndexMap(root string) ([]int, error) {
	var out []int
	if err := utils.ReadJSONGz(IndexMapPath(root), &out); err != nil {
		return nil, err
	}
	return out, nil
}
