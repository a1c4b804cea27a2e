// Package main provides the agentgraph command line tool.
package main

import (
	"os"

	"github.com/agentgraph/agentgraph/internal/cli"
)

func main() {
	os.Exit(cli.Main(os.Args[1:], os.Stdout, os.Stderr))
}
