// Package main provides the routelens command.
package main

import (
	"os"

	"github.com/leapstack-labs/routelens/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
