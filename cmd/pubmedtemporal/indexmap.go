package pubmedtemporal

import (
	"github.com/spf13/cobra"
)

var indexmapCmd = &cobra.Command{
	Use:   "indexmap",
	Short: "Compute the reference node alignment",
	Long: `Match every corpus node to its row in the Planetoid reference arrays by
feature vector, disambiguating duplicates by undirected degree, and cache
the resulting index map. The matching is quadratic in the node count and
parallelized across workers.`,
	RunE: runIndexMap,
}

func init() {
	rootCmd.AddCommand(indexmapCmd)
}

func runIndexMap(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	_, err = client.IndexMap(cmd.Context())
	return err
}
