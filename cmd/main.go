package main

import (
	"os"

	"github.com/graphsets/pubmed-temporal/cmd/pubmedtemporal"
)

func main() {
	if err := pubmedtemporal.Execute(); err != nil {
		os.Exit(1)
	}
}
