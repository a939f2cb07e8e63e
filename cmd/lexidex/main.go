// Package main is the entry point for the lexidex CLI.
package main

import (
	"os"

	"github.com/lexidex/lexidex/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
