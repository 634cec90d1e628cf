package usecase

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/courseforge/commerce/internal/adapter/api"
	"github.com/courseforge/commerce/internal/config"
	"github.com/courseforge/commerce/internal/session"
)

// Module provides the purchase and contract lifecycle components.
var Module = fx.Provide(
	NewOrderLifecycle,
	newContractUseCase,
	newCheckoutTunnel,
)

type contractParams struct {
	fx.In

	API    api.ResourceAPI
	Store  session.Store
	Config *config.Config
	Logger *slog.Logger
}

func newContractUseCase(p contractParams) *ContractUseCase {
	return NewContractUseCase(p.API, p.Store, ContractOptions{
		SignaturePollInterval: p.Config.SignaturePollInterval,
		SignaturePollLimit:    p.Config.SignaturePollLimit,
		ArchivePollInterval:   p.Config.ArchivePollInterval,
		ArchiveValidity:       p.Config.ArchiveValidity,
	}, p.Logger)
}

type checkoutParams struct {
	fx.In

	API       api.ResourceAPI
	Lifecycle *OrderLifecycle
	Config    *config.Config
	Logger    *slog.Logger
}

func newCheckoutTunnel(p checkoutParams) (*CheckoutTunnel, error) {
	return NewCheckoutTunnel(p.API, p.Lifecycle, CheckoutOptions{
		PaymentPollInterval: p.Config.PaymentPollInterval,
		PaymentPollLimit:    p.Config.PaymentPollLimit,
	}, p.Logger)
}
