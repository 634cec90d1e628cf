package app

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/courseforge/commerce/internal/adapter/api"
	"github.com/courseforge/commerce/internal/config"
	"github.com/courseforge/commerce/internal/query"
	"github.com/courseforge/commerce/internal/session"
	"github.com/courseforge/commerce/internal/usecase"
)

// Module wires the facade and the session lifecycle hooks.
var Module = fx.Options(
	fx.Provide(newCommerceFacade),
	fx.Invoke(registerLifecycle),
)

type facadeParams struct {
	fx.In

	Cache     *session.Cache
	API       api.ResourceAPI
	Checkout  *usecase.CheckoutTunnel
	Contract  *usecase.ContractUseCase
	Lifecycle *usecase.OrderLifecycle
	Config    *config.Config
}

func newCommerceFacade(p facadeParams) *CommerceFacade {
	return NewCommerceFacade(p.Cache, p.API, p.Checkout, p.Contract, p.Lifecycle, query.Options{
		StaleAfter: p.Config.QueryStaleAfter,
	})
}

type lifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Logger    *slog.Logger
	Cache     *session.Cache
}

func registerLifecycle(p lifecycleParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			// An unreachable backend must not block startup; the identity
			// stays unknown and resolves on the first session-scoped read.
			id, err := p.Cache.ResolveIdentity(ctx)
			if err != nil {
				p.Logger.Warn("identity not resolved at startup", slog.String("error", err.Error()))
				return nil
			}
			p.Logger.Info("session started", slog.String("identity", id.Key()))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			p.Cache.Dispose()
			p.Logger.Info("session cache flushed")
			return nil
		},
	})
}
