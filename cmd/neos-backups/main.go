// Package main is the entry point for neos-backups.
package main

import (
	"github.com/sm2x/neos-backups/internal/cli"
)

func main() {
	cli.Execute()
}
