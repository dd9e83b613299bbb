// Command logicdoc documents the business logic of a TypeScript/JavaScript
// project phase by phase.
package main

import (
	"os"

	"logicdoc/internal/ui/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
