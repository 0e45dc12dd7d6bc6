package pubmedtemporal

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	pubmedtemporal "github.com/graphsets/pubmed-temporal"
	"github.com/graphsets/pubmed-temporal/pkg/config"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "pubmed-temporal",
		Short: "Build the temporal PubMed-Diabetes citation dataset",
		Long: `pubmed-temporal builds the PubMed-Diabetes citation graph with publication
times and a temporal train/validation/test edge split, aligned node-for-node
with the Planetoid PubMed release.

The build downloads the source archive, parses the node and citation tables,
resolves publication years from the NCBI E-utilities API, aligns the graph
with the Planetoid reference arrays, and writes the dataset files under
<root>/pubmed/temporal/.`,
	}
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.pubmed-temporal.yaml)")
	rootCmd.PersistentFlags().String("root", ".", "dataset root directory")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().IntP("workers", "w", 0, "concurrent workers (0 for auto)")
	rootCmd.PersistentFlags().IntP("chunksize", "c", 200, "IDs per metadata request")

	viper.BindPFlag("dataset.root", rootCmd.PersistentFlags().Lookup("root"))
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("fetch.workers", rootCmd.PersistentFlags().Lookup("workers"))
	viper.BindPFlag("fetch.chunksize", rootCmd.PersistentFlags().Lookup("chunksize"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".pubmed-temporal")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newClient loads the configuration and constructs a builder client.
func newClient() (*pubmedtemporal.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return pubmedtemporal.NewClient(cfg, nil), nil
}
