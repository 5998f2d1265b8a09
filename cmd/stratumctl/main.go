// Command stratumctl is a small demonstration CLI for stratum's layered
// code cache and loader engine.
package main

import (
	"fmt"
	"os"

	"github.com/deepnoodle-ai/stratum/internal/stratumcli"
)

func main() {
	if err := stratumcli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
