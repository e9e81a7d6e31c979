// Package main provides the covidlens CLI.
package main

import (
	"os"

	"github.com/leapstack-labs/covidlens/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
