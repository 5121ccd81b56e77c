// Command taxctl builds and queries the taxpayer datasets: the SQLite
// database, the per-year and consolidated Parquet files and the JSON
// documents of the static site.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
