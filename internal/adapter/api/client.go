package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"

	domainErrors "github.com/courseforge/commerce/internal/domain/errors"
	"github.com/courseforge/commerce/internal/domain/model"
)

// HTTPClient implements AuthenticationAPI and ResourceAPI over the commerce
// backend's REST API. Transport failures and 5xx responses are retried a
// bounded number of times; 4xx responses are never retried.
type HTTPClient struct {
	baseURL    *url.URL
	authNext   string
	httpClient *retryablehttp.Client
	logger     *slog.Logger
}

// NewHTTPClient creates an HTTP commerce client with bounded retries.
// authNext is the post-authentication redirect target forwarded to the
// login and register endpoints.
func NewHTTPClient(baseURL, authNext string, timeout time.Duration, retryMax int, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse commerce url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("commerce url must be absolute")
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = retryMax
	rc.HTTPClient.Timeout = timeout
	rc.RetryWaitMin = 100 * time.Millisecond
	rc.Logger = logger
	// Hand back the final response when retries run out, so 5xx statuses
	// reach the error mapping instead of collapsing into a transport error.
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &HTTPClient{
		baseURL:    parsed,
		authNext:   authNext,
		httpClient: rc,
		logger:     logger,
	}, nil
}

func (c *HTTPClient) endpoint(parts ...string) string {
	u := *c.baseURL
	u.Path = path.Join(append([]string{u.Path}, parts...)...) + "/"
	return u.String()
}

// authEndpoint builds an authentication URL carrying the redirect target the
// provider sends the user back to afterwards.
func (c *HTTPClient) authEndpoint(action string) string {
	u := *c.baseURL
	u.Path = path.Join(u.Path, "auth", action) + "/"
	if c.authNext != "" {
		u.RawQuery = url.Values{"next": {c.authNext}}.Encode()
	}
	return u.String()
}

func (c *HTTPClient) do(ctx context.Context, method, endpoint string, payload, out any) error {
	var body []byte
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		body = encoded
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domainErrors.TransientError{Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices:
		if out == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return domainErrors.TransientError{Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
		}
		return nil
	case resp.StatusCode == http.StatusUnauthorized:
		_, _ = io.Copy(io.Discard, resp.Body)
		return domainErrors.AuthorizationError{Status: resp.StatusCode}
	case resp.StatusCode == http.StatusBadRequest:
		raw, _ := io.ReadAll(resp.Body)
		return decodeValidationError(resp.StatusCode, raw)
	case resp.StatusCode == http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return domainErrors.ErrNotFound
	default:
		raw, _ := io.ReadAll(resp.Body)
		c.logger.Error("commerce request failed",
			slog.String("method", method),
			slog.String("url", endpoint),
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(raw)),
		)
		return domainErrors.TransientError{Status: resp.StatusCode}
	}
}

// decodeValidationError maps the backend's structured errors payload to a
// ValidationError, keeping field messages verbatim.
func decodeValidationError(status int, raw []byte) error {
	var payload struct {
		Errors map[string]json.RawMessage `json:"errors"`
	}
	fields := map[string][]string{}
	if err := json.Unmarshal(raw, &payload); err == nil && len(payload.Errors) > 0 {
		for field, value := range payload.Errors {
			var many []string
			if err := json.Unmarshal(value, &many); err == nil {
				fields[field] = many
				continue
			}
			var one string
			if err := json.Unmarshal(value, &one); err == nil {
				fields[field] = []string{one}
			}
		}
	}
	if len(fields) == 0 && len(raw) > 0 {
		fields["__all__"] = []string{string(raw)}
	}
	return domainErrors.ValidationError{Status: status, Fields: fields}
}

// Login establishes an authenticated backend session.
func (c *HTTPClient) Login(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, c.authEndpoint("login"), nil, nil)
}

// Register starts account creation with the authentication provider.
func (c *HTTPClient) Register(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, c.authEndpoint("register"), nil, nil)
}

// Logout terminates the backend session.
func (c *HTTPClient) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, c.endpoint("auth", "logout"), nil, nil)
}

// Me returns the user bound to the current session.
func (c *HTTPClient) Me(ctx context.Context) (*model.User, error) {
	var user model.User
	if err := c.do(ctx, http.MethodGet, c.endpoint("auth", "me"), nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *HTTPClient) Orders(ctx context.Context) ([]model.Order, error) {
	var orders []model.Order
	if err := c.do(ctx, http.MethodGet, c.endpoint("api", "v1.0", "orders"), nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *HTTPClient) Order(ctx context.Context, id string) (*model.Order, error) {
	var order model.Order
	if err := c.do(ctx, http.MethodGet, c.endpoint("api", "v1.0", "orders", id), nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *HTTPClient) CreateOrder(ctx context.Context, req CreateOrderRequest) (*model.Order, error) {
	var order model.Order
	if err := c.do(ctx, http.MethodPost, c.endpoint("api", "v1.0", "orders"), req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *HTTPClient) SubmitOrder(ctx context.Context, orderID string, req SubmitOrderRequest) (*model.Order, error) {
	var order model.Order
	if err := c.do(ctx, http.MethodPost, c.endpoint("api", "v1.0", "orders", orderID, "submit"), req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *HTTPClient) AbortOrder(ctx context.Context, orderID string) error {
	return c.do(ctx, http.MethodPost, c.endpoint("api", "v1.0", "orders", orderID, "abort"), nil, nil)
}

func (c *HTTPClient) PayInstallment(ctx context.Context, orderID string) error {
	return c.do(ctx, http.MethodPost, c.endpoint("api", "v1.0", "orders", orderID, "submit-installment-payment"), nil, nil)
}

func (c *HTTPClient) Addresses(ctx context.Context) ([]model.Address, error) {
	var addresses []model.Address
	if err := c.do(ctx, http.MethodGet, c.endpoint("api", "v1.0", "addresses"), nil, &addresses); err != nil {
		return nil, err
	}
	return addresses, nil
}

func (c *HTTPClient) CreateAddress(ctx context.Context, address model.Address) (*model.Address, error) {
	var created model.Address
	if err := c.do(ctx, http.MethodPost, c.endpoint("api", "v1.0", "addresses"), address, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *HTTPClient) UpdateAddress(ctx context.Context, address model.Address) (*model.Address, error) {
	var updated model.Address
	if err := c.do(ctx, http.MethodPut, c.endpoint("api", "v1.0", "addresses", address.ID), address, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *HTTPClient) DeleteAddress(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, c.endpoint("api", "v1.0", "addresses", id), nil, nil)
}

func (c *HTTPClient) CreditCards(ctx context.Context) ([]model.CreditCard, error) {
	var cards []model.CreditCard
	if err := c.do(ctx, http.MethodGet, c.endpoint("api", "v1.0", "credit-cards"), nil, &cards); err != nil {
		return nil, err
	}
	return cards, nil
}

func (c *HTTPClient) PromoteCreditCard(ctx context.Context, id string) error {
	payload := map[string]bool{"is_main": true}
	return c.do(ctx, http.MethodPut, c.endpoint("api", "v1.0", "credit-cards", id), payload, nil)
}

func (c *HTTPClient) DeleteCreditCard(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, c.endpoint("api", "v1.0", "credit-cards", id), nil, nil)
}

func (c *HTTPClient) Contract(ctx context.Context, id string) (*model.Contract, error) {
	var contract model.Contract
	if err := c.do(ctx, http.MethodGet, c.endpoint("api", "v1.0", "contracts", id), nil, &contract); err != nil {
		return nil, err
	}
	return &contract, nil
}

// SignatureInvitationLink asks the backend for a signature-provider link. The
// link is opened in an embedded cross-origin frame, so completion cannot be
// observed directly and must be confirmed by polling.
func (c *HTTPClient) SignatureInvitationLink(ctx context.Context, contractID string) (string, error) {
	var payload struct {
		InvitationLink string `json:"invitation_link"`
	}
	err := c.do(ctx, http.MethodPost, c.endpoint("api", "v1.0", "contracts", contractID, "invitation-link"), nil, &payload)
	if err != nil {
		return "", err
	}
	return payload.InvitationLink, nil
}

// CreateContractsArchive asks the backend to generate a zip of all signed
// contracts and returns the archive id to poll for readiness.
func (c *HTTPClient) CreateContractsArchive(ctx context.Context) (string, error) {
	var payload struct {
		ID string `json:"id"`
	}
	err := c.do(ctx, http.MethodPost, c.endpoint("api", "v1.0", "contracts", "zip-archive"), nil, &payload)
	if err != nil {
		return "", err
	}
	return payload.ID, nil
}

// ContractsArchiveExists reports whether the archive finished generating.
func (c *HTTPClient) ContractsArchiveExists(ctx context.Context, archiveID string) (bool, error) {
	err := c.do(ctx, http.MethodGet, c.endpoint("api", "v1.0", "contracts", "zip-archive", archiveID), nil, nil)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, domainErrors.ErrNotFound) {
		return false, nil
	}
	return false, err
}

func (c *HTTPClient) Certificates(ctx context.Context) ([]model.Certificate, error) {
	var certificates []model.Certificate
	if err := c.do(ctx, http.MethodGet, c.endpoint("api", "v1.0", "certificates"), nil, &certificates); err != nil {
		return nil, err
	}
	return certificates, nil
}
