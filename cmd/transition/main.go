// Command transition manages the registry of automation apps installed on
// disk and their enablement per host program.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/transition/internal/cli"
)

// Build information injected via ldflags at build time.
var version = "dev"

func main() {
	root := cli.NewRootCommand()
	root.Version = version

	err := root.Execute()
	if err != nil && !cli.IsReported(err) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(cli.GetExitCode(err))
}
