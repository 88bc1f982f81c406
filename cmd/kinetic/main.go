// Command kinetic validates, renders and runs finite-state machine
// definitions and checks scenarios against them.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/roach88/kinetic/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
