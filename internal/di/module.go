package di

import (
	"go.uber.org/fx"

	"github.com/courseforge/commerce/internal/adapter/api"
	"github.com/courseforge/commerce/internal/app"
	"github.com/courseforge/commerce/internal/config"
	"github.com/courseforge/commerce/internal/logger"
	"github.com/courseforge/commerce/internal/session"
	"github.com/courseforge/commerce/internal/usecase"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		api.Module,
		session.Module,
		usecase.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
