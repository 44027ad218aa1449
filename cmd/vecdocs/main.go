// Command vecdocs is a local semantic document store with cosine search.
package main

import (
	"os"

	"github.com/custodia-labs/vecdocs/internal/adapters/driving/cli"
)

func main() {
	os.Exit(cli.Execute())
}
