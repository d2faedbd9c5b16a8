// Command sqlesc decodes and encodes SQL literals and identifiers, matches
// LIKE patterns, and runs escape regression scenarios.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/sqlesc/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		// Commands report their own failures; only command errors are
		// printed here.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) || exitErr.Code == cli.ExitCommandError {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
