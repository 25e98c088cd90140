// Package main is the entry point for the curlctl admin CLI.
package main

import (
	"os"

	"github.com/good-yellow-bee/curlhub/cmd/curlctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
