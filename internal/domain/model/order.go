package model

// OrderState describes the server-defined purchase lifecycle. The enumeration
// is owned by the backend; unknown values must be carried through untouched.
type OrderState string

const (
	OrderStateDraft               OrderState = "draft"
	OrderStateSubmitted           OrderState = "submitted"
	OrderStatePending             OrderState = "pending"
	OrderStateToSavePaymentMethod OrderState = "to_save_payment_method"
	OrderStateToSign              OrderState = "to_sign"
	OrderStateValidated           OrderState = "validated"
	OrderStateCanceled            OrderState = "canceled"
)

// Order is a purchase record snapshot fetched from the backend. The client
// never mutates State locally; transitions are discovered by re-fetching.
type Order struct {
	ID              string        `json:"id"`
	State           OrderState    `json:"state"`
	Product         Product       `json:"product"`
	Course          *Course       `json:"course"`
	TargetCourses   []Course      `json:"target_courses"`
	Contract        *Contract     `json:"contract"`
	CertificateID   *string       `json:"certificate_id"`
	Enrollments     []Enrollment  `json:"enrollments"`
	PaymentSchedule []Installment `json:"payment_schedule"`
}

// HasRefusedInstallment reports whether any installment was refused by the
// payment provider. A refused installment blocks lifecycle progress until the
// user retries payment.
func (o Order) HasRefusedInstallment() bool {
	for _, i := range o.PaymentSchedule {
		if i.State == InstallmentStateRefused {
			return true
		}
	}
	return false
}

// MainEnrollment returns the enrollment linked to a certificate order, if any.
func (o Order) MainEnrollment() *Enrollment {
	if len(o.Enrollments) == 0 {
		return nil
	}
	return &o.Enrollments[0]
}
