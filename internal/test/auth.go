package test

import (
	"context"
	"sync/atomic"

	"github.com/courseforge/commerce/internal/domain/model"
)

// AuthStub implements api.AuthenticationAPI with controllable behaviour.
type AuthStub struct {
	MeFn       func(context.Context) (*model.User, error)
	LoginFn    func(context.Context) error
	RegisterFn func(context.Context) error
	LogoutFn   func(context.Context) error

	MeCalls     atomic.Int32
	LoginCalls  atomic.Int32
	LogoutCalls atomic.Int32
}

// Me delegates to MeFn or returns a default user.
func (s *AuthStub) Me(ctx context.Context) (*model.User, error) {
	s.MeCalls.Add(1)
	if s.MeFn != nil {
		return s.MeFn(ctx)
	}
	return &model.User{ID: "u-1", Username: "learner"}, nil
}

// Login delegates to LoginFn or succeeds.
func (s *AuthStub) Login(ctx context.Context) error {
	s.LoginCalls.Add(1)
	if s.LoginFn != nil {
		return s.LoginFn(ctx)
	}
	return nil
}

// Register delegates to RegisterFn or succeeds.
func (s *AuthStub) Register(ctx context.Context) error {
	if s.RegisterFn != nil {
		return s.RegisterFn(ctx)
	}
	return nil
}

// Logout delegates to LogoutFn or succeeds.
func (s *AuthStub) Logout(ctx context.Context) error {
	s.LogoutCalls.Add(1)
	if s.LogoutFn != nil {
		return s.LogoutFn(ctx)
	}
	return nil
}
