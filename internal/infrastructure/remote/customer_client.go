package remote

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
	"strconv"
	"strings"
	"time"

	"customer-manager/internal/domain/customer"
)

const (
	customersPath  = "customers"
	defaultTimeout = 30 * time.Second
	maxErrorBody   = 4 << 10
	bearerPrefix   = "Bearer "
)

type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// CustomerClient talks to the customer API over HTTP. Any transport error or
// non-2xx response is reported as customer.ErrRemoteFailure, except an API
// 404 on Get which is customer.ErrNotFound.
type CustomerClient struct {
	baseURL string
	token   string
	client  *http.Client
	logger  *slog.Logger
}

var _ customer.Repository = (*CustomerClient)(nil)

func NewCustomerClient(cfg Config, logger *slog.Logger) (*CustomerClient, error) {
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid API URL %q: %w", cfg.BaseURL, err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &CustomerClient{
		baseURL: cfg.BaseURL,
		token:   bareToken(cfg.Token),
		client:  &http.Client{Timeout: timeout},
		logger:  logger.With("component", "RemoteCustomerClient"),
	}, nil
}

type customerPayload struct {
	Name          string `json:"name"`
	Address       string `json:"address"`
	PaymentStatus string `json:"payment_status"`
}

type createdResponse struct {
	Message    string `json:"message"`
	CustomerID int64  `json:"customerId"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// statusError is a non-2xx answer. apiError is set only when the body was the
// API's own JSON error envelope, so a 404 from a proxy or a wrong base path is
// not mistaken for a missing customer.
type statusError struct {
	status   int
	apiError bool
	message  string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.status, e.message)
}

func (c *CustomerClient) List(ctx context.Context, filter customer.Filter) ([]*customer.Customer, error) {
	query := url.Values{}
	if !filter.IsAll() {
		query.Set("payment_status", string(filter))
	}

	var customers []*customer.Customer
	if err := c.do(ctx, http.MethodGet, query, nil, &customers, customersPath); err != nil {
		return nil, err
	}
	if customers == nil {
		customers = []*customer.Customer{}
	}
	return customers, nil
}

func (c *CustomerClient) Get(ctx context.Context, id int64) (*customer.Customer, error) {
	var cust customer.Customer
	err := c.do(ctx, http.MethodGet, nil, nil, &cust, customersPath, strconv.FormatInt(id, 10))
	var statusErr *statusError
	if errors.As(err, &statusErr) && statusErr.status == http.StatusNotFound && statusErr.apiError {
		return nil, customer.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cust, nil
}

func (c *CustomerClient) Create(ctx context.Context, name, address string, status customer.PaymentStatus) (*customer.Customer, error) {
	body := customerPayload{Name: name, Address: address, PaymentStatus: string(status.OrDefault())}

	var created createdResponse
	if err := c.do(ctx, http.MethodPost, nil, body, &created, customersPath); err != nil {
		return nil, err
	}

	// The API only echoes the new id, so read the record back for the
	// server-assigned timestamp. The record exists either way; a failed read
	// back yields it without CreatedAt.
	cust, err := c.Get(ctx, created.CustomerID)
	if err != nil {
		c.logger.WarnContext(ctx, "Created customer could not be read back",
			slog.Int64("customerID", created.CustomerID), slog.Any("error", err))
		return &customer.Customer{
			ID:            created.CustomerID,
			Name:          body.Name,
			Address:       body.Address,
			PaymentStatus: customer.PaymentStatus(body.PaymentStatus),
		}, nil
	}
	return cust, nil
}

func (c *CustomerClient) Update(ctx context.Context, id int64, name, address string, status customer.PaymentStatus) error {
	body := customerPayload{Name: name, Address: address, PaymentStatus: string(status.OrDefault())}
	return c.do(ctx, http.MethodPut, nil, body, nil, customersPath, strconv.FormatInt(id, 10))
}

func (c *CustomerClient) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, nil, nil, nil, customersPath, strconv.FormatInt(id, 10))
}

// do sends one request and decodes a 2xx body into out when out is non-nil.
// A non-2xx answer wraps a *statusError.
func (c *CustomerClient) do(ctx context.Context, method string, query url.Values, in, out any, path ...string) error {
	endpoint, err := url.JoinPath(c.baseURL, path...)
	if err != nil {
		return fmt.Errorf("%w: build URL: %w", customer.ErrRemoteFailure, err)
	}
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%w: encode request: %w", customer.ErrRemoteFailure, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("%w: build request: %w", customer.ErrRemoteFailure, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", bearerPrefix+c.token)
	}

	logCtx := c.logger.With(slog.String("method", method), slog.String("url", endpoint))
	resp, err := c.client.Do(req)
	if err != nil {
		logCtx.ErrorContext(ctx, "Customer API request failed", slog.Any("error", err))
		return fmt.Errorf("%w: %s %s: %w", customer.ErrRemoteFailure, method, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, apiError := readErrorMessage(resp.Body)
		logCtx.WarnContext(ctx, "Customer API returned non-success status",
			slog.Int("status", resp.StatusCode), slog.String("message", msg))
		return fmt.Errorf("%w: %s %s: %w", customer.ErrRemoteFailure, method, endpoint,
			&statusError{status: resp.StatusCode, apiError: apiError, message: msg})
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			logCtx.ErrorContext(ctx, "Failed to decode customer API response", slog.Any("error", err))
			return fmt.Errorf("%w: decode response: %w", customer.ErrRemoteFailure, err)
		}
	}
	return nil
}

// readErrorMessage reports whether the body was the API's error envelope.
func readErrorMessage(r io.Reader) (string, bool) {
	raw, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return "empty response body", false
	}
	var parsed errorResponse
	if json.Unmarshal(raw, &parsed) == nil && parsed.Error.Message != "" {
		return parsed.Error.Message, true
	}
	return string(bytes.TrimSpace(raw)), false
}

// bareToken accepts the token exactly as /auth/token issues it, with or
// without its "Bearer " prefix.
func bareToken(token string) string {
	token = strings.TrimSpace(token)
	if len(token) > len(bearerPrefix) && strings.EqualFold(token[:len(bearerPrefix)], bearerPrefix) {
		return strings.TrimSpace(token[len(bearerPrefix):])
	}
	return token
}
