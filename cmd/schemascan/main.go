// Package main is the entry point for the schemascan CLI.
package main

import (
	"fmt"
	"os"

	"github.com/imyousuf/schemascan/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
