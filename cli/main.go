// ABOUTME: Entry point for the hived-validate CLI
// ABOUTME: Command-line tool for checking job protocols before submission

package main

import (
	"fmt"
	"os"

	"github.com/markalston/hived-validator/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
