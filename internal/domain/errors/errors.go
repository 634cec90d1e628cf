package errors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrPaymentRefused = errors.New("payment refused")
	ErrNoContract     = errors.New("order has no contract")
	ErrNotPurchasable = errors.New("training no longer available")
)

// ConfigurationError reports a missing collaborator. It is a deployment
// mistake, surfaced once and never retried.
type ConfigurationError struct {
	Component string
}

func (e ConfigurationError) Error() string {
	return fmt.Sprintf("%s is not configured", e.Component)
}

// AuthorizationError is the 401-equivalent. It triggers identity
// re-resolution rather than a user-facing error.
type AuthorizationError struct {
	Status int
}

func (e AuthorizationError) Error() string {
	return fmt.Sprintf("request not authorized (status %d)", e.Status)
}

// ValidationError is the 400-equivalent. Field errors are carried verbatim
// for the caller to render.
type ValidationError struct {
	Status int
	Fields map[string][]string
}

func (e ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("invalid request (status %d)", e.Status)
	}
	parts := make([]string, 0, len(e.Fields))
	for field, msgs := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(msgs, "; ")))
	}
	return fmt.Sprintf("invalid request (status %d): %s", e.Status, strings.Join(parts, ", "))
}

// TransientError covers transport failures and unexpected server statuses.
// Reads keep their cached data alongside a stored transient error.
type TransientError struct {
	Status int
	Err    error
}

func (e TransientError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transient failure: %v", e.Err)
	}
	return fmt.Sprintf("transient failure (status %d)", e.Status)
}

func (e TransientError) Unwrap() error {
	return e.Err
}

// IsAuthorization reports whether err is the 401-equivalent at any depth.
func IsAuthorization(err error) bool {
	var ae AuthorizationError
	return errors.As(err, &ae)
}
