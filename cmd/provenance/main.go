// Command provenance checks text for plagiarism and machine generation.
package main

import (
	"os"

	"github.com/custodia-labs/provenance-cli/internal/adapters/driving/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
