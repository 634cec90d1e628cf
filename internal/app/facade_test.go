package app

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/courseforge/commerce/internal/adapter/api"
	domainErrors "github.com/courseforge/commerce/internal/domain/errors"
	"github.com/courseforge/commerce/internal/domain/model"
	"github.com/courseforge/commerce/internal/query"
	"github.com/courseforge/commerce/internal/session"
	testhelpers "github.com/courseforge/commerce/internal/test"
	"github.com/courseforge/commerce/internal/usecase"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func authError() error {
	return domainErrors.AuthorizationError{Status: 401}
}

func orderRequest(productID string) api.CreateOrderRequest {
	return api.CreateOrderRequest{ProductID: productID, HasConsentToTerms: true}
}

func newFacadeForTest(t *testing.T, auth *testhelpers.AuthStub, resources *testhelpers.ResourceAPIStub) (*CommerceFacade, *session.Cache) {
	t.Helper()

	logger := discardLogger()
	store := session.NewMemoryStore()
	cache := session.NewCache(store, auth, time.Hour, logger)

	lifecycle := usecase.NewOrderLifecycle()
	contract := usecase.NewContractUseCase(resources, store, usecase.ContractOptions{
		SignaturePollInterval: time.Millisecond,
		SignaturePollLimit:    5,
	}, logger)
	checkout, err := usecase.NewCheckoutTunnel(resources, lifecycle, usecase.CheckoutOptions{
		PaymentPollInterval: time.Millisecond,
		PaymentPollLimit:    5,
	}, logger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	facade := NewCommerceFacade(cache, resources, checkout, contract, lifecycle, query.Options{
		StaleAfter: time.Minute,
	})
	return facade, cache
}

func TestOrdersAreCachedAcrossReads(t *testing.T) {
	resources := &testhelpers.ResourceAPIStub{
		OrdersFn: func(ctx context.Context) ([]model.Order, error) {
			return []model.Order{{ID: "o-1", State: model.OrderStateValidated}}, nil
		},
	}
	facade, _ := newFacadeForTest(t, &testhelpers.AuthStub{}, resources)

	ctx := context.Background()
	first := facade.Orders(ctx)
	if first.Err != nil || len(first.Data) != 1 {
		t.Fatalf("unexpected first read: %+v", first)
	}
	second := facade.Orders(ctx)
	if len(second.Data) != 1 {
		t.Fatalf("unexpected second read: %+v", second)
	}
	if calls := resources.OrdersCalls.Load(); calls != 1 {
		t.Fatalf("fresh entry must be served from cache, got %d fetches", calls)
	}
}

func TestAnonymousSessionNeverFetchesResources(t *testing.T) {
	auth := &testhelpers.AuthStub{
		MeFn: func(ctx context.Context) (*model.User, error) {
			return nil, authError()
		},
	}
	resources := &testhelpers.ResourceAPIStub{}
	facade, _ := newFacadeForTest(t, auth, resources)

	result := facade.Orders(context.Background())
	if !result.IsPending {
		t.Fatalf("anonymous read must stay pending, got %+v", result)
	}
	if calls := resources.OrdersCalls.Load(); calls != 0 {
		t.Fatalf("anonymous session must not fetch, got %d calls", calls)
	}
}

func TestAddressMutationInvalidatesCachedList(t *testing.T) {
	resources := &testhelpers.ResourceAPIStub{}
	facade, cache := newFacadeForTest(t, &testhelpers.AuthStub{}, resources)
	ctx := context.Background()

	facade.Addresses(ctx)
	if cache.QueryCount() != 1 {
		t.Fatalf("expected one cached entry, got %d", cache.QueryCount())
	}

	if _, err := facade.CreateAddress(ctx, model.Address{Title: "Home"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cache.QueryCount() != 0 {
		t.Fatalf("a successful mutation must invalidate the cached list")
	}
}

func TestConfirmPaymentRefreshesOrdersOnConfirmation(t *testing.T) {
	resources := &testhelpers.ResourceAPIStub{}
	resources.OrderFn = func(ctx context.Context, id string) (*model.Order, error) {
		return &model.Order{ID: id, State: model.OrderStateValidated}, nil
	}
	facade, cache := newFacadeForTest(t, &testhelpers.AuthStub{}, resources)
	ctx := context.Background()

	facade.Orders(ctx)
	if cache.QueryCount() != 1 {
		t.Fatalf("expected one cached entry, got %d", cache.QueryCount())
	}

	if _, err := facade.ConfirmPayment(ctx, "o-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cache.QueryCount() != 0 {
		t.Fatalf("a confirmed payment must invalidate the cached orders")
	}
}

func TestOpenCheckoutInvalidatesOrders(t *testing.T) {
	resources := &testhelpers.ResourceAPIStub{}
	facade, cache := newFacadeForTest(t, &testhelpers.AuthStub{}, resources)
	ctx := context.Background()

	facade.Orders(ctx)

	product := testhelpers.CredentialProduct(testhelpers.OpenCourse())
	if _, err := facade.OpenCheckout(ctx, product, nil, orderRequest(product.ID)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cache.QueryCount() != 0 {
		t.Fatalf("opening a checkout must invalidate the cached orders")
	}
}

func TestLogoutDropsCachedResources(t *testing.T) {
	resources := &testhelpers.ResourceAPIStub{}
	facade, cache := newFacadeForTest(t, &testhelpers.AuthStub{}, resources)
	ctx := context.Background()

	facade.Orders(ctx)
	facade.Addresses(ctx)
	if cache.QueryCount() != 2 {
		t.Fatalf("expected two cached entries, got %d", cache.QueryCount())
	}

	if err := facade.Logout(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cache.QueryCount() != 0 {
		t.Fatalf("logout must drop cached per-user data")
	}
	if !facade.Identity().IsAnonymous() {
		t.Fatalf("logout must settle on the anonymous identity")
	}
}
