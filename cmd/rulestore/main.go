// Package main provides the rulestore CLI.
package main

import (
	"os"

	"github.com/mesh-intelligence/rulestore/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
