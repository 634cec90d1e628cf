package api

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/courseforge/commerce/internal/config"
)

// Module exposes the HTTP commerce client to the fx graph under both
// collaborator interfaces.
var Module = fx.Options(
	fx.Provide(newClient),
	fx.Provide(func(c *HTTPClient) ResourceAPI { return c }),
	fx.Provide(func(c *HTTPClient) AuthenticationAPI { return c }),
)

type clientParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newClient(p clientParams) (*HTTPClient, error) {
	return NewHTTPClient(p.Config.APIBaseURL, p.Config.AuthNext, p.Config.HTTPTimeout, p.Config.HTTPRetryMax, p.Logger)
}
