package test

import (
	"context"
	"sync/atomic"

	"github.com/courseforge/commerce/internal/adapter/api"
	"github.com/courseforge/commerce/internal/domain/model"
)

// ResourceAPIStub implements api.ResourceAPI with controllable behaviour.
// Unset functions return empty defaults.
type ResourceAPIStub struct {
	OrdersFn         func(context.Context) ([]model.Order, error)
	OrderFn          func(context.Context, string) (*model.Order, error)
	CreateOrderFn    func(context.Context, api.CreateOrderRequest) (*model.Order, error)
	SubmitOrderFn    func(context.Context, string, api.SubmitOrderRequest) (*model.Order, error)
	AbortOrderFn     func(context.Context, string) error
	PayInstallmentFn func(context.Context, string) error

	AddressesFn     func(context.Context) ([]model.Address, error)
	CreateAddressFn func(context.Context, model.Address) (*model.Address, error)
	UpdateAddressFn func(context.Context, model.Address) (*model.Address, error)
	DeleteAddressFn func(context.Context, string) error

	CreditCardsFn       func(context.Context) ([]model.CreditCard, error)
	PromoteCreditCardFn func(context.Context, string) error
	DeleteCreditCardFn  func(context.Context, string) error

	ContractFn                func(context.Context, string) (*model.Contract, error)
	SignatureInvitationLinkFn func(context.Context, string) (string, error)
	CreateContractsArchiveFn  func(context.Context) (string, error)
	ContractsArchiveExistsFn  func(context.Context, string) (bool, error)

	CertificatesFn func(context.Context) ([]model.Certificate, error)

	OrderCalls    atomic.Int32
	OrdersCalls   atomic.Int32
	ContractCalls atomic.Int32
	ArchiveCalls  atomic.Int32
}

func (s *ResourceAPIStub) Orders(ctx context.Context) ([]model.Order, error) {
	s.OrdersCalls.Add(1)
	if s.OrdersFn != nil {
		return s.OrdersFn(ctx)
	}
	return nil, nil
}

func (s *ResourceAPIStub) Order(ctx context.Context, id string) (*model.Order, error) {
	s.OrderCalls.Add(1)
	if s.OrderFn != nil {
		return s.OrderFn(ctx, id)
	}
	return &model.Order{ID: id}, nil
}

func (s *ResourceAPIStub) CreateOrder(ctx context.Context, req api.CreateOrderRequest) (*model.Order, error) {
	if s.CreateOrderFn != nil {
		return s.CreateOrderFn(ctx, req)
	}
	return &model.Order{ID: "o-1", State: model.OrderStateDraft}, nil
}

func (s *ResourceAPIStub) SubmitOrder(ctx context.Context, orderID string, req api.SubmitOrderRequest) (*model.Order, error) {
	if s.SubmitOrderFn != nil {
		return s.SubmitOrderFn(ctx, orderID, req)
	}
	return &model.Order{ID: orderID, State: model.OrderStateSubmitted}, nil
}

func (s *ResourceAPIStub) AbortOrder(ctx context.Context, orderID string) error {
	if s.AbortOrderFn != nil {
		return s.AbortOrderFn(ctx, orderID)
	}
	return nil
}

func (s *ResourceAPIStub) PayInstallment(ctx context.Context, orderID string) error {
	if s.PayInstallmentFn != nil {
		return s.PayInstallmentFn(ctx, orderID)
	}
	return nil
}

func (s *ResourceAPIStub) Addresses(ctx context.Context) ([]model.Address, error) {
	if s.AddressesFn != nil {
		return s.AddressesFn(ctx)
	}
	return nil, nil
}

func (s *ResourceAPIStub) CreateAddress(ctx context.Context, address model.Address) (*model.Address, error) {
	if s.CreateAddressFn != nil {
		return s.CreateAddressFn(ctx, address)
	}
	created := address
	created.ID = "addr-1"
	return &created, nil
}

func (s *ResourceAPIStub) UpdateAddress(ctx context.Context, address model.Address) (*model.Address, error) {
	if s.UpdateAddressFn != nil {
		return s.UpdateAddressFn(ctx, address)
	}
	return &address, nil
}

func (s *ResourceAPIStub) DeleteAddress(ctx context.Context, id string) error {
	if s.DeleteAddressFn != nil {
		return s.DeleteAddressFn(ctx, id)
	}
	return nil
}

func (s *ResourceAPIStub) CreditCards(ctx context.Context) ([]model.CreditCard, error) {
	if s.CreditCardsFn != nil {
		return s.CreditCardsFn(ctx)
	}
	return nil, nil
}

func (s *ResourceAPIStub) PromoteCreditCard(ctx context.Context, id string) error {
	if s.PromoteCreditCardFn != nil {
		return s.PromoteCreditCardFn(ctx, id)
	}
	return nil
}

func (s *ResourceAPIStub) DeleteCreditCard(ctx context.Context, id string) error {
	if s.DeleteCreditCardFn != nil {
		return s.DeleteCreditCardFn(ctx, id)
	}
	return nil
}

func (s *ResourceAPIStub) Contract(ctx context.Context, id string) (*model.Contract, error) {
	s.ContractCalls.Add(1)
	if s.ContractFn != nil {
		return s.ContractFn(ctx, id)
	}
	return &model.Contract{ID: id}, nil
}

func (s *ResourceAPIStub) SignatureInvitationLink(ctx context.Context, contractID string) (string, error) {
	if s.SignatureInvitationLinkFn != nil {
		return s.SignatureInvitationLinkFn(ctx, contractID)
	}
	return "https://sign.example.com/invite/" + contractID, nil
}

func (s *ResourceAPIStub) CreateContractsArchive(ctx context.Context) (string, error) {
	if s.CreateContractsArchiveFn != nil {
		return s.CreateContractsArchiveFn(ctx)
	}
	return "arch-1", nil
}

func (s *ResourceAPIStub) ContractsArchiveExists(ctx context.Context, archiveID string) (bool, error) {
	s.ArchiveCalls.Add(1)
	if s.ContractsArchiveExistsFn != nil {
		return s.ContractsArchiveExistsFn(ctx, archiveID)
	}
	return true, nil
}

func (s *ResourceAPIStub) Certificates(ctx context.Context) ([]model.Certificate, error) {
	if s.CertificatesFn != nil {
		return s.CertificatesFn(ctx)
	}
	return nil, nil
}
