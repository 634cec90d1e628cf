package api

import (
	"context"

	"github.com/courseforge/commerce/internal/domain/model"
)

// AuthenticationAPI is the external authentication collaborator. It may be
// entirely absent in a deployment; the session layer then degrades to an
// always-anonymous identity.
type AuthenticationAPI interface {
	Login(ctx context.Context) error
	Register(ctx context.Context) error
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*model.User, error)
}

// CreateOrderRequest opens a draft order for a product.
type CreateOrderRequest struct {
	ProductID         string `json:"product_id"`
	CourseCode        string `json:"course_code,omitempty"`
	EnrollmentID      string `json:"enrollment_id,omitempty"`
	HasConsentToTerms bool   `json:"has_consent_to_terms"`
}

// SubmitOrderRequest carries the billing information needed to submit a draft.
type SubmitOrderRequest struct {
	BillingAddressID string `json:"billing_address_id"`
	CreditCardID     string `json:"credit_card_id,omitempty"`
}

// ResourceAPI performs the typed calls of the commerce backend. Every method
// returns parsed payloads or a typed error from the domain taxonomy.
type ResourceAPI interface {
	Orders(ctx context.Context) ([]model.Order, error)
	Order(ctx context.Context, id string) (*model.Order, error)
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*model.Order, error)
	SubmitOrder(ctx context.Context, orderID string, req SubmitOrderRequest) (*model.Order, error)
	AbortOrder(ctx context.Context, orderID string) error
	PayInstallment(ctx context.Context, orderID string) error

	Addresses(ctx context.Context) ([]model.Address, error)
	CreateAddress(ctx context.Context, address model.Address) (*model.Address, error)
	UpdateAddress(ctx context.Context, address model.Address) (*model.Address, error)
	DeleteAddress(ctx context.Context, id string) error

	CreditCards(ctx context.Context) ([]model.CreditCard, error)
	PromoteCreditCard(ctx context.Context, id string) error
	DeleteCreditCard(ctx context.Context, id string) error

	Contract(ctx context.Context, id string) (*model.Contract, error)
	SignatureInvitationLink(ctx context.Context, contractID string) (string, error)
	CreateContractsArchive(ctx context.Context) (string, error)
	ContractsArchiveExists(ctx context.Context, archiveID string) (bool, error)

	Certificates(ctx context.Context) ([]model.Certificate, error)
}
