package pubmedtemporal

import (
	"github.com/spf13/cobra"
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download the source archive",
	Long: `Download the PubMed-Diabetes source archive to <root>/input/. Nothing is
downloaded when the archive is already present.`,
	RunE: runDownload,
}

func init() {
	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	return client.Download(cmd.Context())
}
