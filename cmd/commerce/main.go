package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/fx"

	"github.com/courseforge/commerce/internal/config"
	"github.com/courseforge/commerce/internal/di"
)

const fallbackShutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var cfg *config.Config
	app := fx.New(
		fx.Provide(func() context.Context { return ctx }),
		di.Module(),
		fx.Populate(&cfg),
	)

	shutdownTimeout := fallbackShutdownTimeout
	if cfg != nil {
		shutdownTimeout = cfg.ShutdownTimeout
	}

	run(ctx, app, shutdownTimeout)
}
