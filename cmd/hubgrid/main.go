// Package main provides the hubgrid command-line tool.
package main

import (
	"fmt"
	"os"

	"github.com/SophieEDesign/marketinghub-sub007/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
