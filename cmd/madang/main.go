// Command madang is the staff command line of the Madang bookstore.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/madangbooks/madang/internal/cli"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := cli.NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		cancel()
		os.Exit(cli.GetExitCode(err))
	}
}
