package usecase

import (
	"github.com/courseforge/commerce/internal/domain/model"
)

// Human-readable order status labels.
const (
	StatusLabelDraft             = "Draft"
	StatusLabelSubmitted         = "Submitted"
	StatusLabelPending           = "Pending"
	StatusLabelSignatureRequired = "Signature required"
	StatusLabelOnGoing           = "On going"
	StatusLabelCompleted         = "Completed"
	StatusLabelCanceled          = "Canceled"
)

// resumableStates are the states a user may pick an interrupted purchase
// back up from, provided the product is still purchasable.
var resumableStates = map[model.OrderState]bool{
	model.OrderStateSubmitted:           true,
	model.OrderStatePending:             true,
	model.OrderStateToSign:              true,
	model.OrderStateToSavePaymentMethod: true,
}

// OrderLifecycle is pure decision logic over order snapshots. It never
// mutates state itself: every transition is discovered by re-fetching the
// order after a side-effecting action completes.
type OrderLifecycle struct{}

// NewOrderLifecycle constructs the lifecycle decision component.
func NewOrderLifecycle() *OrderLifecycle {
	return &OrderLifecycle{}
}

// IsPurchasable reports whether the product can be bought right now. Every
// target course needs at least one open run and the seat counter must not be
// exhausted. A certificate product substitutes the linked enrollment's
// course-run openness for the target-course check.
func (l *OrderLifecycle) IsPurchasable(product model.Product, enrollment *model.Enrollment) bool {
	if !product.HasRemainingOrders() {
		return false
	}

	if product.Type == model.ProductTypeCertificate {
		return enrollment != nil && enrollment.CourseRun.IsOpen()
	}

	for _, course := range product.TargetCourses {
		if !course.HasOpenCourseRun() {
			return false
		}
	}
	return true
}

// IsResumable reports whether an interrupted purchase can be resumed. An
// otherwise-resumable order whose product has since become non-purchasable is
// reported non-resumable, so the user is told the training is no longer
// available instead of resuming into an invalid state.
func (l *OrderLifecycle) IsResumable(order model.Order) bool {
	if !resumableStates[order.State] {
		return false
	}
	return l.IsPurchasable(order.Product, order.MainEnrollment())
}

// NeedsSignature reports whether an unsigned training contract gates the
// order.
func (l *OrderLifecycle) NeedsSignature(order model.Order) bool {
	if order.Product.ContractDefinition == nil {
		return false
	}
	if order.Contract == nil {
		return true
	}
	return order.Contract.State() == model.ContractStateUnsigned
}

// StatusLabel maps an order snapshot to its display label. States outside the
// known enumeration degrade to the raw state string so server-added states
// render instead of failing.
func (l *OrderLifecycle) StatusLabel(order model.Order) string {
	switch order.State {
	case model.OrderStateDraft:
		return StatusLabelDraft
	case model.OrderStateSubmitted:
		return StatusLabelSubmitted
	case model.OrderStatePending, model.OrderStateToSavePaymentMethod:
		return StatusLabelPending
	case model.OrderStateToSign:
		return StatusLabelSignatureRequired
	case model.OrderStateValidated:
		if order.CertificateID != nil {
			return StatusLabelCompleted
		}
		if l.NeedsSignature(order) {
			return StatusLabelSignatureRequired
		}
		return StatusLabelOnGoing
	case model.OrderStateCanceled:
		return StatusLabelCanceled
	default:
		return string(order.State)
	}
}
