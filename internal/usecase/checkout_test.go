package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/courseforge/commerce/internal/adapter/api"
	domainErrors "github.com/courseforge/commerce/internal/domain/errors"
	"github.com/courseforge/commerce/internal/domain/model"
	"github.com/courseforge/commerce/internal/polling"
	testhelpers "github.com/courseforge/commerce/internal/test"
)

func newTunnelForTest(t *testing.T, stub *testhelpers.ResourceAPIStub, opts CheckoutOptions) *CheckoutTunnel {
	t.Helper()
	tunnel, err := NewCheckoutTunnel(stub, NewOrderLifecycle(), opts, discardLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return tunnel
}

func TestTunnelWalksInformationPaymentConfirmation(t *testing.T) {
	tunnel := newTunnelForTest(t, &testhelpers.ResourceAPIStub{}, CheckoutOptions{})

	want := []CheckoutStep{StepInformation, StepPayment, StepConfirmation}
	for _, step := range want {
		got, ok := tunnel.Step()
		if !ok {
			t.Fatalf("tunnel closed before reaching %s", step)
		}
		if got != step {
			t.Fatalf("expected step %s, got %s", step, got)
		}
		tunnel.Advance()
	}

	if _, ok := tunnel.Step(); ok {
		t.Fatalf("tunnel must be closed after the confirmation step")
	}

	tunnel.Reset()
	if step, ok := tunnel.Step(); !ok || step != StepInformation {
		t.Fatalf("reset must reopen the tunnel at %s, got %s (open=%v)", StepInformation, step, ok)
	}
}

func TestTwoTunnelsDoNotShareStepState(t *testing.T) {
	first := newTunnelForTest(t, &testhelpers.ResourceAPIStub{}, CheckoutOptions{})
	second := newTunnelForTest(t, &testhelpers.ResourceAPIStub{}, CheckoutOptions{})

	first.Advance()
	first.Advance()

	if step, _ := second.Step(); step != StepInformation {
		t.Fatalf("advancing one tunnel moved another to %s", step)
	}
}

func TestOpenRejectsProductThatIsNoLongerPurchasable(t *testing.T) {
	stub := &testhelpers.ResourceAPIStub{}
	tunnel := newTunnelForTest(t, stub, CheckoutOptions{})

	created := false
	stub.CreateOrderFn = func(ctx context.Context, req api.CreateOrderRequest) (*model.Order, error) {
		created = true
		return &model.Order{ID: "o-1", State: model.OrderStateDraft}, nil
	}

	product := testhelpers.CredentialProduct(testhelpers.ClosedCourse())
	_, err := tunnel.Open(context.Background(), product, nil, api.CreateOrderRequest{ProductID: product.ID})
	if !errors.Is(err, domainErrors.ErrNotPurchasable) {
		t.Fatalf("expected ErrNotPurchasable, got %v", err)
	}
	if created {
		t.Fatalf("no order must be created for an unavailable product")
	}
}

func TestOpenCreatesDraft(t *testing.T) {
	tunnel := newTunnelForTest(t, &testhelpers.ResourceAPIStub{}, CheckoutOptions{})

	product := testhelpers.CredentialProduct(testhelpers.OpenCourse())
	order, err := tunnel.Open(context.Background(), product, nil, api.CreateOrderRequest{ProductID: product.ID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.State != model.OrderStateDraft {
		t.Fatalf("expected a draft order, got %s", order.State)
	}
}

func TestAbortCancelsOrderAndClosesTunnel(t *testing.T) {
	var aborted string
	stub := &testhelpers.ResourceAPIStub{
		AbortOrderFn: func(ctx context.Context, id string) error {
			aborted = id
			return nil
		},
	}
	tunnel := newTunnelForTest(t, stub, CheckoutOptions{})
	tunnel.Advance()

	if err := tunnel.Abort(context.Background(), "o-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if aborted != "o-1" {
		t.Fatalf("expected order o-1 aborted, got %q", aborted)
	}
	if step, _ := tunnel.Step(); step != StepInformation {
		t.Fatalf("abort must reset the tunnel, got step %s", step)
	}
}

func TestConfirmPaymentConfirmsOnSettledState(t *testing.T) {
	stub := &testhelpers.ResourceAPIStub{}
	stub.OrderFn = func(ctx context.Context, id string) (*model.Order, error) {
		state := model.OrderStateSubmitted
		if stub.OrderCalls.Load() >= 3 {
			state = model.OrderStateValidated
		}
		return &model.Order{ID: id, State: state}, nil
	}
	tunnel := newTunnelForTest(t, stub, CheckoutOptions{
		PaymentPollInterval: time.Millisecond,
		PaymentPollLimit:    10,
	})

	outcome, err := tunnel.ConfirmPayment(context.Background(), "o-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != polling.OutcomeConfirmed {
		t.Fatalf("expected Confirmed, got %s", outcome)
	}
	if calls := stub.OrderCalls.Load(); calls != 3 {
		t.Errorf("expected 3 order fetches, got %d", calls)
	}
}

func TestConfirmPaymentStopsOnRefusedInstallment(t *testing.T) {
	stub := &testhelpers.ResourceAPIStub{}
	stub.OrderFn = func(ctx context.Context, id string) (*model.Order, error) {
		return &model.Order{
			ID:    id,
			State: model.OrderStateSubmitted,
			PaymentSchedule: []model.Installment{
				{ID: "i-1", State: model.InstallmentStateRefused},
			},
		}, nil
	}
	tunnel := newTunnelForTest(t, stub, CheckoutOptions{
		PaymentPollInterval: time.Millisecond,
		PaymentPollLimit:    10,
	})

	outcome, err := tunnel.ConfirmPayment(context.Background(), "o-1")
	if outcome != polling.OutcomeStopped {
		t.Fatalf("expected Stopped, got %s", outcome)
	}
	if !errors.Is(err, domainErrors.ErrPaymentRefused) {
		t.Fatalf("expected ErrPaymentRefused, got %v", err)
	}
	if calls := stub.OrderCalls.Load(); calls != 1 {
		t.Errorf("a refused installment must stop the poll immediately, got %d calls", calls)
	}
}

func TestConfirmPaymentTimesOutWithoutError(t *testing.T) {
	stub := &testhelpers.ResourceAPIStub{}
	stub.OrderFn = func(ctx context.Context, id string) (*model.Order, error) {
		return &model.Order{ID: id, State: model.OrderStateSubmitted}, nil
	}
	tunnel := newTunnelForTest(t, stub, CheckoutOptions{
		PaymentPollInterval: time.Millisecond,
		PaymentPollLimit:    5,
	})

	outcome, err := tunnel.ConfirmPayment(context.Background(), "o-1")
	if err != nil {
		t.Fatalf("timing out must not report an error, got %v", err)
	}
	if outcome != polling.OutcomeTimedOut {
		t.Fatalf("expected TimedOut, got %s", outcome)
	}
	if calls := stub.OrderCalls.Load(); calls != 5 {
		t.Errorf("expected the attempt budget to be consumed, got %d calls", calls)
	}
}

func TestRetryPaymentSubmitsInstallmentThenConfirms(t *testing.T) {
	var paid string
	stub := &testhelpers.ResourceAPIStub{
		PayInstallmentFn: func(ctx context.Context, id string) error {
			paid = id
			return nil
		},
	}
	stub.OrderFn = func(ctx context.Context, id string) (*model.Order, error) {
		return &model.Order{ID: id, State: model.OrderStateValidated}, nil
	}
	tunnel := newTunnelForTest(t, stub, CheckoutOptions{
		PaymentPollInterval: time.Millisecond,
		PaymentPollLimit:    10,
	})

	outcome, err := tunnel.RetryPayment(context.Background(), "o-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != polling.OutcomeConfirmed {
		t.Fatalf("expected Confirmed, got %s", outcome)
	}
	if paid != "o-1" {
		t.Fatalf("expected installment payment for o-1, got %q", paid)
	}
}

func TestRetryPaymentSubmissionFailureDoesNotPoll(t *testing.T) {
	stub := &testhelpers.ResourceAPIStub{
		PayInstallmentFn: func(ctx context.Context, id string) error {
			return domainErrors.TransientError{Status: 502}
		},
	}
	tunnel := newTunnelForTest(t, stub, CheckoutOptions{
		PaymentPollInterval: time.Millisecond,
		PaymentPollLimit:    10,
	})

	outcome, err := tunnel.RetryPayment(context.Background(), "o-1")
	if outcome != polling.OutcomeStopped {
		t.Fatalf("expected Stopped, got %s", outcome)
	}
	if err == nil {
		t.Fatalf("expected the submission error to surface")
	}
	if calls := stub.OrderCalls.Load(); calls != 0 {
		t.Errorf("a failed submission must not start the poll, got %d order fetches", calls)
	}
}
