package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/courseforge/commerce/internal/adapter/api"
	domainErrors "github.com/courseforge/commerce/internal/domain/errors"
	"github.com/courseforge/commerce/internal/domain/model"
	"github.com/courseforge/commerce/internal/polling"
	"github.com/courseforge/commerce/internal/wizard"
)

// CheckoutStep identifies one node of the sale tunnel.
type CheckoutStep string

const (
	StepInformation  CheckoutStep = "information"
	StepPayment      CheckoutStep = "payment"
	StepConfirmation CheckoutStep = "confirmation"
)

// paymentSettledStates are the states proving the backend accepted the
// payment submission; reaching any of them confirms the payment poll.
var paymentSettledStates = map[model.OrderState]bool{
	model.OrderStateValidated:           true,
	model.OrderStateToSign:              true,
	model.OrderStateToSavePaymentMethod: true,
}

// CheckoutOptions bounds the payment confirmation poll.
type CheckoutOptions struct {
	PaymentPollInterval time.Duration
	PaymentPollLimit    int
}

func (o CheckoutOptions) withDefaults() CheckoutOptions {
	if o.PaymentPollInterval <= 0 {
		o.PaymentPollInterval = time.Second
	}
	if o.PaymentPollLimit <= 0 {
		o.PaymentPollLimit = 30
	}
	return o
}

// CheckoutTunnel sequences a purchase from draft to payment confirmation.
// It never mutates order state itself; it submits side effects and discovers
// the resulting transitions by re-fetching.
type CheckoutTunnel struct {
	api       api.ResourceAPI
	lifecycle *OrderLifecycle
	wizard    *wizard.Manager[CheckoutStep]
	opts      CheckoutOptions
	logger    *slog.Logger
}

func checkoutManifest(onComplete func()) wizard.Manifest[CheckoutStep] {
	payment := StepPayment
	confirmation := StepConfirmation
	return wizard.Manifest[CheckoutStep]{
		Start: StepInformation,
		Steps: map[CheckoutStep]wizard.Step[CheckoutStep]{
			StepInformation:  {Next: &payment},
			StepPayment:      {Next: &confirmation},
			StepConfirmation: {OnExit: onComplete},
		},
	}
}

// NewCheckoutTunnel builds a tunnel instance. Instances are independent; two
// open tunnels never share step state.
func NewCheckoutTunnel(resourceAPI api.ResourceAPI, lifecycle *OrderLifecycle, opts CheckoutOptions, logger *slog.Logger) (*CheckoutTunnel, error) {
	t := &CheckoutTunnel{
		api:       resourceAPI,
		lifecycle: lifecycle,
		opts:      opts.withDefaults(),
		logger:    logger,
	}
	manager, err := wizard.NewManager(checkoutManifest(func() {
		logger.Info("checkout tunnel completed")
	}))
	if err != nil {
		return nil, err
	}
	t.wizard = manager
	return t, nil
}

// Step returns the current tunnel step; ok is false once the tunnel closed.
func (t *CheckoutTunnel) Step() (CheckoutStep, bool) {
	return t.wizard.Step()
}

// Advance moves the tunnel to its next step.
func (t *CheckoutTunnel) Advance() {
	t.wizard.Next()
}

// Reset reopens the tunnel at its first step.
func (t *CheckoutTunnel) Reset() {
	t.wizard.Reset()
}

// Open creates a draft order for a product after checking it is still
// purchasable.
func (t *CheckoutTunnel) Open(ctx context.Context, product model.Product, enrollment *model.Enrollment, req api.CreateOrderRequest) (*model.Order, error) {
	if !t.lifecycle.IsPurchasable(product, enrollment) {
		return nil, fmt.Errorf("product %s: %w", product.ID, domainErrors.ErrNotPurchasable)
	}
	order, err := t.api.CreateOrder(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return order, nil
}

// Resume reports whether an interrupted order may be picked back up.
func (t *CheckoutTunnel) Resume(order model.Order) bool {
	return t.lifecycle.IsResumable(order)
}

// Submit sends the billing information of a draft and returns the re-fetched
// snapshot.
func (t *CheckoutTunnel) Submit(ctx context.Context, orderID string, req api.SubmitOrderRequest) (*model.Order, error) {
	order, err := t.api.SubmitOrder(ctx, orderID, req)
	if err != nil {
		return nil, fmt.Errorf("submit order: %w", err)
	}
	return order, nil
}

// Abort cancels a draft order and closes the tunnel.
func (t *CheckoutTunnel) Abort(ctx context.Context, orderID string) error {
	if err := t.api.AbortOrder(ctx, orderID); err != nil {
		return fmt.Errorf("abort order: %w", err)
	}
	t.wizard.Reset()
	return nil
}

// ConfirmPayment polls the order after a payment submission until the backend
// reports a settled state. A refused installment ends the poll immediately
// with ErrPaymentRefused; running out of attempts is the non-error TimedOut
// outcome ("check again later").
func (t *CheckoutTunnel) ConfirmPayment(ctx context.Context, orderID string) (polling.Outcome, error) {
	return polling.Confirm(ctx, func(ctx context.Context) (bool, error) {
		order, err := t.api.Order(ctx, orderID)
		if err != nil {
			if domainErrors.IsAuthorization(err) {
				return false, polling.Permanent(err)
			}
			return false, err
		}
		if order.HasRefusedInstallment() {
			return false, polling.Permanent(domainErrors.ErrPaymentRefused)
		}
		return paymentSettledStates[order.State], nil
	}, polling.Options{
		Interval: t.opts.PaymentPollInterval,
		Limit:    t.opts.PaymentPollLimit,
	})
}

// RetryPayment re-submits payment for an order with a refused installment and
// confirms the result.
func (t *CheckoutTunnel) RetryPayment(ctx context.Context, orderID string) (polling.Outcome, error) {
	if err := t.api.PayInstallment(ctx, orderID); err != nil {
		return polling.OutcomeStopped, fmt.Errorf("submit installment payment: %w", err)
	}
	return t.ConfirmPayment(ctx, orderID)
}
