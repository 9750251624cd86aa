// Package main provides the entry point for the journal CLI.
package main

import (
	"os"

	"github.com/raphaelgruber/voicejournal/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
