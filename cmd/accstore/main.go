// Command accstore browses and seeds a metadata-driven accounting database.
package main

import (
	"fmt"
	"os"

	"github.com/tarachom/accountingstore/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
