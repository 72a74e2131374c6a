// Command kernelctl drives the built-in kernelbridge benchmark module.
package main

import (
	"fmt"
	"os"

	"github.com/reglet-dev/kernelbridge/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
