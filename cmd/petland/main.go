package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()

	// PersistentPostRun is skipped when a command fails
	closeStore()

	if err != nil {
		os.Exit(1)
	}
}
