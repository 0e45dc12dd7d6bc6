package pubmedtemporal

import (
	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Run the full dataset build",
	Long: `Run every pipeline stage in order: download the source archive, parse the
corpus, fetch publication metadata, align the graph with the Planetoid
reference, assemble the temporal split, verify it, and write the dataset
files. Stages with cached intermediates from earlier runs are skipped.`,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	_, err = client.Build(cmd.Context())
	return err
}
