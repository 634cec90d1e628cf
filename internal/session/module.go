package session

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/courseforge/commerce/internal/adapter/api"
	"github.com/courseforge/commerce/internal/config"
)

// Module wires the session store and cache into the fx graph.
var Module = fx.Options(
	fx.Provide(func() Store { return NewMemoryStore() }),
	fx.Provide(newCache),
)

type cacheParams struct {
	fx.In

	Store  Store
	Auth   api.AuthenticationAPI `optional:"true"`
	Config *config.Config
	Logger *slog.Logger
}

func newCache(p cacheParams) *Cache {
	return NewCache(p.Store, p.Auth, p.Config.SessionTTL, p.Logger)
}
