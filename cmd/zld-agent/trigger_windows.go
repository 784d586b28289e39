// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

//go:build windows

package main

import (
	"context"

	"github.com/pdiddy/zld-agent/internal/engine"
)

// notifyManualTrigger is a no-op on Windows, which has no SIGUSR1. Use
// --stdin instead.
func notifyManualTrigger(ctx context.Context, eng *engine.Engine) func() {
	return func() {}
}
