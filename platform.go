//go:build !windows

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// registerSignals cancels the returned context on interrupt or termination.
func registerSignals(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}
