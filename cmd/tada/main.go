package main

import (
	"fmt"
	"os"

	"github.com/Makepad-fr/tada/internal/cli"
)

func main() {
	// Root flags and the subcommand are parsed by the CLI runner.
	code := cli.Run(os.Args[1:], cli.Options{})
	if code != 0 {
		fmt.Fprintln(os.Stderr)
	}
	os.Exit(code)
}
