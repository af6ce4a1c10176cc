package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/pders01/kn/internal/tui"
)

// Version is the version of the application, set at build time
var Version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd(Version).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, tui.Status(tui.StatusError, "Error: "+err.Error()))
		stop()
		os.Exit(1)
	}
}
