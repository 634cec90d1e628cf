package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/fx"
)

// run drives the client until a signal arrives or the graph shuts itself
// down, then stops it within shutdownTimeout so a hung flush cannot block
// process exit.
func run(ctx context.Context, app *fx.App, shutdownTimeout time.Duration) {
	if err := app.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start commerce client: %v\n", err)
		os.Exit(1)
	}

	select {
	case <-ctx.Done():
	case <-app.Done():
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.Stop(stopCtx); err != nil {
		fmt.Fprintf(os.Stderr, "failed to stop commerce client: %v\n", err)
		os.Exit(1)
	}
}
