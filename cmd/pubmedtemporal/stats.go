package pubmedtemporal

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print the split statistics table",
	Long: `Assemble the dataset from cached intermediates and print the per-split
statistics table: node, edge, and class counts with time spans for the full
graph and the transductive and inductive splits.`,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	table, err := client.Stats(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Print(table)
	return nil
}
