package main

import (
	"fmt"
	"os"

	"github.com/trailsprotocol/trails/cmd/trails"
)

func main() {
	rootCmd := trails.BuildTrailsCmd()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
