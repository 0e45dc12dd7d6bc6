// Package pubmedtemporal builds the temporal PubMed-Diabetes citation
// dataset: the PubMed-Diabetes corpus enriched with publication times and
// partitioned into a temporal train/validation/test edge split, aligned
// node-for-node with the Planetoid PubMed release.
//
// # Basic Usage
//
// Create a client and run the full build:
//
//	cfg, err := config.Load()
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	client := pubmedtemporal.NewClient(cfg, logger.NewDefaultLogger(slog.LevelInfo))
//	defer client.Close()
//
//	if _, err := client.Build(context.Background()); err != nil {
//		log.Fatal(err)
//	}
//
// The build downloads the source archive, parses the node and citation
// tables, resolves per-article publication years from the NCBI E-utilities
// API, aligns the graph with the Planetoid reference arrays, and writes the
// raw dataset files, graph exports, and split statistics under
// <root>/pubmed/temporal/.
//
// Individual stages are also exposed: Download, Fetch, IndexMap, and Stats
// run one stage each, reusing cached intermediates from earlier runs.
//
// # Inputs
//
// Two inputs must exist under the dataset root before a build:
//
//   - input/pubmed-dataset.zip: the PubMed-Diabetes archive (downloaded
//     automatically when absent)
//   - planetoid/: the Planetoid PubMed reference export (x.npy, y.npy,
//     edges.npy, ind.pubmed.test.index, and the ind.pubmed.* raw files)
//
// # Architecture
//
// The library follows a modular architecture:
//
//   - pkg/corpus: archive download and table parsing
//   - pkg/pubmed: E-utilities client and metadata fetcher
//   - pkg/staging: resumable fetch storage
//   - pkg/planetoid: reference arrays and index-map alignment
//   - pkg/dataset: graph assembly, temporal split, raw serialization
//   - pkg/graphio: GEXF, GraphML, and Parquet exports
package pubmedtemporal
