package pubmedtemporal

import (
	"github.com/spf13/cobra"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch publication metadata",
	Long: `Resolve publication metadata for every paper in the corpus from the NCBI
E-utilities API and cache it under the dataset root. Already-resolved IDs
are served from the staging store, so an interrupted fetch resumes where it
stopped. Set NCBI_API_KEY to raise the API rate limit.`,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	_, err = client.Fetch(cmd.Context())
	return err
}
