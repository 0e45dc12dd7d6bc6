package pubmedtemporal

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/graphsets/pubmed-temporal/pkg/corpus"
	"github.com/graphsets/pubmed-temporal/pkg/dataset"
	"github.com/graphsets/pubmed-temporal/pkg/graphio"
	"github.com/graphsets/pubmed-temporal/pkg/planetoid"
	"github.com/graphsets/pubmed-temporal/pkg/pubmed"
	"github.com/graphsets/pubmed-temporal/pkg/staging"
	"github.com/graphsets/pubmed-temporal/pkg/types"
	"github.com/graphsets/pubmed-temporal/pkg/utils"
)

// StagingDir returns the badger staging directory of the fetch stage.
func StagingDir(root string) string {
	return filepath.Join(root, "input", "staging")
}

// Download fetches the source archive when it is not already present.
func (c *Client) Download(ctx context.Context) error {
	ctx = stageContext(ctx, "download")
	return corpus.Download(ctx, c.log, c.config.Dataset.Root, c.config.Dataset.ArchiveURL)
}

// Fetch resolves publication metadata for every paper in the corpus and
// caches it under the dataset root. Already-resolved IDs are served from
// the staging store, so an interrupted fetch resumes where it stopped.
func (c *Client) Fetch(ctx context.Context) (map[string]*types.Metadata, error) {
	ctx = stageContext(ctx, "fetch")

	corp, err := corpus.Load(c.config.Dataset.Root)
	if err != nil {
		return nil, err
	}
	return c.fetch(ctx, corp)
}

func (c *Client) fetch(ctx context.Context, corp *corpus.Corpus) (map[string]*types.Metadata, error) {
	store, err := staging.Open(StagingDir(c.config.Dataset.Root))
	if err != nil {
		return nil, fmt.Errorf("failed to open staging store: %w", err)
	}
	defer store.Close()

	client := pubmed.NewClient(c.config.Fetch.BaseURL, c.config.Fetch.APIKey, c.config.CircuitBreaker)
	fetcher := pubmed.NewFetcher(client, store, c.log, pubmed.FetcherOptions{
		Workers:        c.config.Fetch.Workers,
		Chunksize:      c.config.Fetch.Chunksize,
		MaxRounds:      c.config.Fetch.MaxRounds,
		MissingAllowed: c.config.Fetch.MissingAllowed,
	})

	metadata, err := fetcher.FetchAll(ctx, corp.IDs())
	if err != nil {
		return nil, err
	}
	if err := pubmed.SaveMetadata(c.config.Dataset.Root, metadata); err != nil {
		return nil, err
	}
	return metadata, nil
}

// IndexMap computes the node alignment between the built graph and the
// Planetoid reference, or loads it when cached.
func (c *Client) IndexMap(ctx context.Context) ([]int, error) {
	ctx = stageContext(ctx, "indexmap")

	g, _, err := c.buildGraph(ctx)
	if err != nil {
		return nil, err
	}
	ref, err := planetoid.Load(c.config.Dataset.Root)
	if err != nil {
		return nil, err
	}
	return c.indexMap(ctx, g, ref)
}

func (c *Client) indexMap(ctx context.Context, g *types.Graph, ref *planetoid.Reference) ([]int, error) {
	root := c.config.Dataset.Root
	if utils.FileExists(planetoid.IndexMapPath(root)) {
		indexMap, err := planetoid.LoadIndexMap(root)
		if err == nil && len(indexMap) == g.NumNodes() {
			c.log.Info("Index map loaded from cache", "nodes", len(indexMap))
			return indexMap, nil
		}
		c.log.Warn("Cached index map unusable, rebuilding")
	}

	indexMap, err := planetoid.BuildIndexMap(ctx, c.log, g, ref, c.config.Fetch.Workers)
	if err != nil {
		return nil, err
	}
	if err := planetoid.SaveIndexMap(root, indexMap); err != nil {
		return nil, err
	}
	return indexMap, nil
}

// buildGraph loads the corpus and the publication years (from cache, the
// metadata export, or the remote API) and constructs the citation graph.
func (c *Client) buildGraph(ctx context.Context) (*types.Graph, []string, error) {
	root := c.config.Dataset.Root

	corp, err := corpus.Load(root)
	if err != nil {
		return nil, nil, err
	}

	years, err := c.years(ctx, corp)
	if err != nil {
		return nil, nil, err
	}
	times, steps := dataset.Factorize(years)

	g, err := dataset.BuildGraph(corp, times)
	if err != nil {
		return nil, nil, err
	}
	return g, steps, nil
}

func (c *Client) years(ctx context.Context, corp *corpus.Corpus) (map[string]*string, error) {
	root := c.config.Dataset.Root

	if utils.FileExists(dataset.TimesPath(root)) {
		years, err := dataset.LoadYears(root)
		if err == nil {
			c.log.Info("Publication years loaded from cache", "papers", len(years))
			return years, nil
		}
		c.log.Warn("Cached publication years unreadable, refetching", "error", err)
	}

	var metadata map[string]*types.Metadata
	if utils.FileExists(pubmed.MetadataPath(root)) {
		cached, err := pubmed.LoadMetadata(root)
		if err != nil {
			return nil, err
		}
		metadata = cached
		c.log.Info("Metadata loaded from cache", "papers", len(metadata))
	} else {
		fetched, err := c.fetch(ctx, corp)
		if err != nil {
			return nil, err
		}
		metadata = fetched
	}

	years := dataset.ExtractYears(corp.IDs(), metadata)
	if err := dataset.SaveYears(root, years); err != nil {
		return nil, err
	}
	return years, nil
}

// Build runs the full pipeline: download, parse, fetch, align, assemble,
// verify, and write. Nothing is written when verification against the
// reference fails. The writers are independent of each other and fan out
// concurrently once verification has passed.
func (c *Client) Build(ctx context.Context) (d *dataset.Dataset, err error) {
	defer utils.RecoverAsError(&err)

	if err := c.Download(ctx); err != nil {
		return nil, err
	}

	d, err = c.assemble(ctx)
	if err != nil {
		return nil, err
	}

	ctx = stageContext(ctx, "write")
	root := c.config.Dataset.Root
	errs := utils.SemaphoreGather(ctx, c.config.Fetch.Workers,
		func() error { return dataset.WriteRaw(c.log, root, d) },
		func() error { return graphio.WriteGEXF(c.log, root, d) },
		func() error { return graphio.WriteGraphML(c.log, root, d) },
		func() error { return graphio.WriteSplitGEXF(c.log, root, d) },
		func() error { return graphio.WriteParquet(c.log, root, d) },
		func() error { return dataset.WriteManifest(c.log, root, d) },
		func() error { return dataset.WriteStatsTable(root, d) },
	)
	if err := utils.FirstError(errs); err != nil {
		return nil, err
	}

	c.log.Info("Dataset build complete", "dir", dataset.TemporalDir(root))
	return d, nil
}

// Stats assembles the dataset from cached intermediates and renders the
// split statistics table.
func (c *Client) Stats(ctx context.Context) (string, error) {
	d, err := c.assemble(ctx)
	if err != nil {
		return "", err
	}
	return dataset.StatsTable(d.Stats()), nil
}

// assemble builds and verifies the dataset without writing outputs.
func (c *Client) assemble(ctx context.Context) (*dataset.Dataset, error) {
	ctx = stageContext(ctx, "assemble")

	g, steps, err := c.buildGraph(ctx)
	if err != nil {
		return nil, err
	}

	ref, err := planetoid.Load(c.config.Dataset.Root)
	if err != nil {
		return nil, err
	}

	indexMap, err := c.indexMap(ctx, g, ref)
	if err != nil {
		return nil, err
	}

	split := dataset.Split{
		TrainEnd: c.config.Split.TrainEnd,
		ValEnd:   c.config.Split.ValEnd,
	}
	d, err := dataset.Assemble(g, indexMap, steps, split)
	if err != nil {
		return nil, err
	}

	if err := d.Verify(ref); err != nil {
		c.log.ErrorContext(ctx, "Reference verification failed", "error", err)
		return nil, fmt.Errorf("reference verification failed: %w", err)
	}
	c.log.Info("Reference verification passed",
		"nodes", d.Graph.NumNodes(), "pairs", len(d.Pairs))

	return d, nil
}
