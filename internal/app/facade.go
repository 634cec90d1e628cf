package app

import (
	"context"

	"github.com/courseforge/commerce/internal/adapter/api"
	"github.com/courseforge/commerce/internal/domain/model"
	"github.com/courseforge/commerce/internal/polling"
	"github.com/courseforge/commerce/internal/query"
	"github.com/courseforge/commerce/internal/session"
	"github.com/courseforge/commerce/internal/usecase"
)

// Query kinds under which resource collections are cached.
const (
	KindOrders       = "orders"
	KindAddresses    = "addresses"
	KindCreditCards  = "credit-cards"
	KindCertificates = "certificates"
)

// CommerceFacade is the embedding application's single entry point: cached
// reads of the learner's commerce resources, cache-invalidating writes, and
// the purchase and contract flows.
type CommerceFacade struct {
	cache    *session.Cache
	checkout *usecase.CheckoutTunnel
	contract *usecase.ContractUseCase
	orders   *usecase.OrderLifecycle

	orderQuery       *query.Query[[]model.Order]
	addressQuery     *query.Query[[]model.Address]
	cardQuery        *query.Query[[]model.CreditCard]
	certificateQuery *query.Query[[]model.Certificate]

	createAddress *query.Mutation[model.Address, *model.Address]
	updateAddress *query.Mutation[model.Address, *model.Address]
	deleteAddress *query.Mutation[string, struct{}]
	promoteCard   *query.Mutation[string, struct{}]
	deleteCard    *query.Mutation[string, struct{}]
}

// NewCommerceFacade wires the cached queries and mutations over the resource
// API. Every resource query is session scoped: anonymous sessions observe
// pending results and no backend call.
func NewCommerceFacade(
	cache *session.Cache,
	resourceAPI api.ResourceAPI,
	checkout *usecase.CheckoutTunnel,
	contract *usecase.ContractUseCase,
	orders *usecase.OrderLifecycle,
	opts query.Options,
) *CommerceFacade {
	opts.SessionScoped = true

	f := &CommerceFacade{
		cache:    cache,
		checkout: checkout,
		contract: contract,
		orders:   orders,
	}

	f.orderQuery = query.New(cache, KindOrders, resourceAPI.Orders, opts)
	f.addressQuery = query.New(cache, KindAddresses, resourceAPI.Addresses, opts)
	f.cardQuery = query.New(cache, KindCreditCards, resourceAPI.CreditCards, opts)
	f.certificateQuery = query.New(cache, KindCertificates, resourceAPI.Certificates, opts)

	f.createAddress = query.NewMutation(cache, resourceAPI.CreateAddress, KindAddresses)
	f.updateAddress = query.NewMutation(cache, resourceAPI.UpdateAddress, KindAddresses)
	f.deleteAddress = query.NewMutation(cache, func(ctx context.Context, id string) (struct{}, error) {
		return struct{}{}, resourceAPI.DeleteAddress(ctx, id)
	}, KindAddresses)
	f.promoteCard = query.NewMutation(cache, func(ctx context.Context, id string) (struct{}, error) {
		return struct{}{}, resourceAPI.PromoteCreditCard(ctx, id)
	}, KindCreditCards)
	f.deleteCard = query.NewMutation(cache, func(ctx context.Context, id string) (struct{}, error) {
		return struct{}{}, resourceAPI.DeleteCreditCard(ctx, id)
	}, KindCreditCards)

	return f
}

// Identity returns the current tri-state session identity.
func (f *CommerceFacade) Identity() model.Identity {
	return f.cache.Identity()
}

// ResolveIdentity resolves the identity, coalescing concurrent callers.
func (f *CommerceFacade) ResolveIdentity(ctx context.Context) (model.Identity, error) {
	return f.cache.ResolveIdentity(ctx)
}

// Login delegates to the authentication collaborator after clearing cached
// per-user data.
func (f *CommerceFacade) Login(ctx context.Context) error {
	return f.cache.Login(ctx)
}

// Register delegates to the authentication collaborator after clearing cached
// per-user data.
func (f *CommerceFacade) Register(ctx context.Context) error {
	return f.cache.Register(ctx)
}

// Logout ends the session and settles on the anonymous identity.
func (f *CommerceFacade) Logout(ctx context.Context) error {
	return f.cache.Logout(ctx)
}

// Orders returns the learner's orders from cache, fetching when needed.
func (f *CommerceFacade) Orders(ctx context.Context) query.Result[[]model.Order] {
	return f.orderQuery.Get(ctx)
}

// Addresses returns the learner's billing addresses.
func (f *CommerceFacade) Addresses(ctx context.Context) query.Result[[]model.Address] {
	return f.addressQuery.Get(ctx)
}

// CreditCards returns the learner's registered cards.
func (f *CommerceFacade) CreditCards(ctx context.Context) query.Result[[]model.CreditCard] {
	return f.cardQuery.Get(ctx)
}

// Certificates returns the learner's earned certificates.
func (f *CommerceFacade) Certificates(ctx context.Context) query.Result[[]model.Certificate] {
	return f.certificateQuery.Get(ctx)
}

// InvalidateOrders drops the cached orders so the next read refetches.
func (f *CommerceFacade) InvalidateOrders() {
	f.orderQuery.Invalidate()
}

// CreateAddress stores a new billing address and invalidates the cached list.
func (f *CommerceFacade) CreateAddress(ctx context.Context, address model.Address) (*model.Address, error) {
	return f.createAddress.Do(ctx, address)
}

// UpdateAddress updates a billing address and invalidates the cached list.
func (f *CommerceFacade) UpdateAddress(ctx context.Context, address model.Address) (*model.Address, error) {
	return f.updateAddress.Do(ctx, address)
}

// DeleteAddress removes a billing address and invalidates the cached list.
func (f *CommerceFacade) DeleteAddress(ctx context.Context, id string) error {
	_, err := f.deleteAddress.Do(ctx, id)
	return err
}

// PromoteCreditCard makes a card the default payment method.
func (f *CommerceFacade) PromoteCreditCard(ctx context.Context, id string) error {
	_, err := f.promoteCard.Do(ctx, id)
	return err
}

// DeleteCreditCard removes a registered card.
func (f *CommerceFacade) DeleteCreditCard(ctx context.Context, id string) error {
	_, err := f.deleteCard.Do(ctx, id)
	return err
}

// Checkout exposes the purchase tunnel.
func (f *CommerceFacade) Checkout() *usecase.CheckoutTunnel {
	return f.checkout
}

// OpenCheckout creates a draft order and invalidates the cached orders.
func (f *CommerceFacade) OpenCheckout(ctx context.Context, product model.Product, enrollment *model.Enrollment, req api.CreateOrderRequest) (*model.Order, error) {
	order, err := f.checkout.Open(ctx, product, enrollment, req)
	if err != nil {
		return nil, err
	}
	f.orderQuery.Invalidate()
	return order, nil
}

// SubmitCheckout submits billing information and invalidates the cached
// orders.
func (f *CommerceFacade) SubmitCheckout(ctx context.Context, orderID string, req api.SubmitOrderRequest) (*model.Order, error) {
	order, err := f.checkout.Submit(ctx, orderID, req)
	if err != nil {
		return nil, err
	}
	f.orderQuery.Invalidate()
	return order, nil
}

// AbortCheckout cancels a draft order and invalidates the cached orders.
func (f *CommerceFacade) AbortCheckout(ctx context.Context, orderID string) error {
	if err := f.checkout.Abort(ctx, orderID); err != nil {
		return err
	}
	f.orderQuery.Invalidate()
	return nil
}

// ConfirmPayment polls until the backend settles the payment, then refreshes
// the cached orders on confirmation.
func (f *CommerceFacade) ConfirmPayment(ctx context.Context, orderID string) (polling.Outcome, error) {
	outcome, err := f.checkout.ConfirmPayment(ctx, orderID)
	if outcome == polling.OutcomeConfirmed {
		f.orderQuery.Invalidate()
	}
	return outcome, err
}

// RetryPayment re-submits a refused installment and confirms the result.
func (f *CommerceFacade) RetryPayment(ctx context.Context, orderID string) (polling.Outcome, error) {
	outcome, err := f.checkout.RetryPayment(ctx, orderID)
	if outcome == polling.OutcomeConfirmed {
		f.orderQuery.Invalidate()
	}
	return outcome, err
}

// OrderStatusLabel maps an order snapshot to its display label.
func (f *CommerceFacade) OrderStatusLabel(order model.Order) string {
	return f.orders.StatusLabel(order)
}

// IsOrderResumable reports whether an interrupted order can be picked up.
func (f *CommerceFacade) IsOrderResumable(order model.Order) bool {
	return f.orders.IsResumable(order)
}

// RequestSignature returns the signature-provider invitation link for the
// order's contract.
func (f *CommerceFacade) RequestSignature(ctx context.Context, order model.Order) (string, error) {
	return f.contract.RequestSignature(ctx, order)
}

// ConfirmSignature polls the contract until signed, then refreshes the cached
// orders on confirmation.
func (f *CommerceFacade) ConfirmSignature(ctx context.Context, contractID string) (polling.Outcome, error) {
	outcome, err := f.contract.ConfirmSignature(ctx, contractID)
	if outcome == polling.OutcomeConfirmed {
		f.orderQuery.Invalidate()
	}
	return outcome, err
}

// SignatureProgress maps a contract's signature timestamps to a display label.
func (f *CommerceFacade) SignatureProgress(contract model.Contract) string {
	return f.contract.SignatureProgress(contract)
}

// RequestContractsArchive requests (or reuses) the bulk contracts archive.
func (f *CommerceFacade) RequestContractsArchive(ctx context.Context) (string, error) {
	return f.contract.RequestArchive(ctx)
}

// ConfirmContractsArchive polls archive readiness within its validity window.
func (f *CommerceFacade) ConfirmContractsArchive(ctx context.Context, archiveID string) (polling.Outcome, error) {
	return f.contract.ConfirmArchive(ctx, archiveID)
}
