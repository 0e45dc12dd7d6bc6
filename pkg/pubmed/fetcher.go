package pubmed

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/graphsets/pubmed-temporal/pkg/staging"
	"github.com/graphsets/pubmed-temporal/pkg/types"
	"github.com/graphsets/pubmed-temporal/pkg/utils"
)

// MetadataFile is the exported metadata cache under <root>/input/.
const MetadataFile = "pubmed-metadata.json.gz"

// MetadataPath returns the location of the exported metadata cache.
func MetadataPath(root string) string {
	return filepath.Join(root, "input", MetadataFile)
}

// Fetcher drives the metadata fetch stage: it batches IDs across a worker
// pool, stages results in a Badger store so interrupted runs resume, and
// keeps re-requesting missing IDs until only permanently de-indexed articles
// remain.
type Fetcher struct {
	client *Client
	store  *staging.Store
	log    *slog.Logger

	workers        int
	chunksize      int
	maxRounds      int
	missingAllowed int
}

// FetcherOptions configures a Fetcher.
type FetcherOptions struct {
	Workers        int
	Chunksize      int
	MaxRounds      int
	MissingAllowed int
}

// NewFetcher creates a Fetcher over the given client and staging store.
func NewFetcher(client *Client, store *staging.Store, log *slog.Logger, opts FetcherOptions) *Fetcher {
	if opts.Chunksize <= 0 {
		opts.Chunksize = 200
	}
	if opts.MaxRounds <= 0 {
		opts.MaxRounds = 5
	}
	return &Fetcher{
		client:         client,
		store:          store,
		log:            log,
		workers:        opts.Workers,
		chunksize:      opts.Chunksize,
		maxRounds:      opts.MaxRounds,
		missingAllowed: opts.MissingAllowed,
	}
}

// FetchAll resolves metadata for every ID, returning the resolved records
// keyed by PMID. IDs already present in the staging store are not
// re-requested. An error is returned when, after all rounds, more IDs remain
// unresolved than the configured allowance.
func (f *Fetcher) FetchAll(ctx context.Context, ids []string) (map[string]*types.Metadata, error) {
	missing, err := f.unresolved(ids)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		f.log.Info("Fetching metadata", "total", len(ids), "missing", len(missing))
	}

	for round := 1; len(missing) > f.missingAllowed && round <= f.maxRounds; round++ {
		if round > 1 {
			f.log.Warn("Retrying unresolved IDs", "round", round, "missing", len(missing))
		}
		if err := f.fetchRound(ctx, missing); err != nil {
			return nil, err
		}
		missing, err = f.unresolved(ids)
		if err != nil {
			return nil, err
		}
	}

	if len(missing) > f.missingAllowed {
		return nil, fmt.Errorf("%d IDs still unresolved after %d rounds (allowed: %d)",
			len(missing), f.maxRounds, f.missingAllowed)
	}
	if len(missing) > 0 {
		f.log.Warn("Some IDs are permanently unresolved", "pmids", missing)
	}

	return f.collect(ids)
}

// fetchRound requests every batch of the given IDs once.
func (f *Fetcher) fetchRound(ctx context.Context, ids []string) error {
	batches := utils.Batch(ids, f.chunksize)

	progress := mpb.New(mpb.WithWidth(64))
	bar := progress.AddBar(int64(len(ids)),
		mpb.PrependDecorators(decor.Name("fetch"), decor.CountersNoUnit(" %d / %d")),
		mpb.AppendDecorators(decor.Percentage()),
	)

	pool := utils.NewWorkerPool(f.workers, func(ctx context.Context, batch []string) (int, error) {
		summaries, err := f.client.Summaries(ctx, batch)
		if err != nil {
			return 0, err
		}

		staged := make([]*types.Metadata, 0, len(summaries))
		for _, md := range summaries {
			staged = append(staged, md)
		}
		if err := f.store.PutBatch(staged); err != nil {
			return 0, err
		}
		bar.IncrBy(len(batch))
		return len(staged), nil
	})

	_, errs := pool.ProcessItems(ctx, batches)
	bar.SetTotal(int64(len(ids)), true)
	progress.Wait()

	if err := utils.FirstError(errs); err != nil {
		return fmt.Errorf("metadata fetch failed: %w", err)
	}
	return nil
}

// unresolved returns the subset of ids without staged metadata.
func (f *Fetcher) unresolved(ids []string) ([]string, error) {
	var missing []string
	for _, id := range ids {
		_, found, err := f.store.Get(id)
		if err != nil {
			return nil, err
		}
		if !found {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

// collect gathers staged metadata for the given ids.
func (f *Fetcher) collect(ids []string) (map[string]*types.Metadata, error) {
	out := make(map[string]*types.Metadata, len(ids))
	for _, id := range ids {
		md, found, err := f.store.Get(id)
		if err != nil {
			return nil, err
		}
		if found {
			out[id] = md
		}
	}
	return out, nil
}

// SaveMetadata exports fetched metadata to <root>/input/pubmed-metadata.json.gz.
func SaveMetadata(root string, metadata map[string]*types.Metadata) error {
	return utils.WriteJSONGz(MetadataPath(root), metadata)
}

// LoadMetadata reads a previously exported metadata cache.
func LoadMetadata(root string) (map[string]*types.Metadata, error) {
	out := make(map[string]*types.Metadata)
	if err := utils.ReadJSONGz(MetadataPath(root), &out); err != nil {
		return nil, err
	}
	return out, nil
}
