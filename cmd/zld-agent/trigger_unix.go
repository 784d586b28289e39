// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

//go:build !windows

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pdiddy/zld-agent/internal/engine"
)

// notifyManualTrigger runs a cycle on every SIGUSR1 until ctx is done or
// the returned stop function is called.
func notifyManualTrigger(ctx context.Context, eng *engine.Engine) func() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGUSR1)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case <-sig:
				eng.TriggerNow()
			}
		}
	}()

	return func() {
		signal.Stop(sig)
		close(done)
	}
}
