// Command catalogsyncd runs the local-first catalog sync engine: it
// keeps an embedded SQLite store reconciled against a remote commerce
// catalog, either as a one-shot sync or as a long-running scheduler.
package main

import (
	"fmt"
	"os"

	"github.com/nimbuscommerce/catalogsync/cmd/catalogsyncd/cmd"
)

var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

func main() {
	cmd.SetVersion(version, buildTime, gitCommit)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "catalogsyncd: %v\n", err)
		os.Exit(1)
	}
}
