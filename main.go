// Package main is the entry point for the dbrelay CLI application.
// It runs SQL against cloud-hosted databases through their HTTP relay API.
package main

import (
	"dbrelay/cli/cmd"
)

// main is the entry point for the dbrelay CLI application.
// It initializes and executes the command-line interface.
func main() {
	cmd.Execute()
}
