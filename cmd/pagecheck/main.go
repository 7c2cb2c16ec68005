// Package main is the entry point for the pagecheck CLI.
package main

import (
	"os"

	"github.com/thoreinstein/pagecheck/cmd/pagecheck/commands"
)

func main() {
	os.Exit(commands.Execute())
}
