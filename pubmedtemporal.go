package pubmedtemporal

import (
	"context"
	"log/slog"
	"os"

	"github.com/graphsets/pubmed-temporal/pkg/config"
	"github.com/graphsets/pubmed-temporal/pkg/dataset"
	"github.com/graphsets/pubmed-temporal/pkg/logger"
	"github.com/graphsets/pubmed-temporal/pkg/telemetry"
	"github.com/graphsets/pubmed-temporal/pkg/types"
)

// Builder is the main interface for building the temporal PubMed dataset.
// A full build runs every stage in order; the other methods run a single
// stage, reusing cached intermediates from earlier runs.
type Builder interface {
	// Download fetches the source archive when it is not already present.
	Download(ctx context.Context) error

	// Fetch resolves publication metadata for every paper in the corpus
	// and caches it under the dataset root.
	Fetch(ctx context.Context) (map[string]*types.Metadata, error)

	// IndexMap computes (or loads) the node alignment between the built
	// graph and the Planetoid reference.
	IndexMap(ctx context.Context) ([]int, error)

	// Build runs the full pipeline and writes the dataset files.
	Build(ctx context.Context) (*dataset.Dataset, error)

	// Stats assembles the dataset from cached intermediates and renders
	// the split statistics table.
	Stats(ctx context.Context) (string, error)

	// Close flushes telemetry and releases resources.
	Close() error
}

// Client is the main implementation of the Builder interface.
type Client struct {
	config    *config.Config
	log       *slog.Logger
	telemetry *telemetry.ParquetHandler
}

var _ Builder = (*Client)(nil)

// NewClient creates a dataset builder from the given configuration. When
// log is nil a default logger is constructed from the configured level,
// wrapped with Parquet error telemetry when a telemetry path is set.
func NewClient(cfg *config.Config, log *slog.Logger) *Client {
	c := &Client{config: cfg, log: log}

	if c.log == nil {
		level := logger.ParseLevel(cfg.Log.Level)
		handler := slog.Handler(logger.NewColorHandler(os.Stderr, level))
		if cfg.Telemetry.ParquetPath != "" {
			if ph, err := telemetry.NewParquetHandler(handler, cfg.Telemetry.ParquetPath); err == nil {
				c.telemetry = ph
				handler = ph
			}
		}
		c.log = slog.New(handler)
	}

	return c
}

// Close flushes buffered telemetry records.
func (c *Client) Close() error {
	if c.telemetry != nil {
		return c.telemetry.Flush()
	}
	return nil
}

// stageContext tags the context with the running pipeline stage.
func stageContext(ctx context.Context, stage string) context.Context {
	return context.WithValue(ctx, types.ContextKeyStage, stage)
}
