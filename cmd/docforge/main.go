package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/docforge/docforge/cmd/docforge/commands"
)

func main() {
	// The first signal cancels the run between items; the batch report is
	// still printed and stored.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := commands.Execute(ctx)
	stop()
	os.Exit(code)
}
