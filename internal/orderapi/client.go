package orderapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/angelmondragon/vendorcart-backend/internal/pricing"
	pkgerrors "github.com/angelmondragon/vendorcart-backend/pkg/errors"
)

const (
	defaultTimeout              = 10 * time.Second
	responseBodyReadLimit int64 = 4096
)

const (
	OpFetchPreview  = "fetch_preview"
	OpCreateOrders  = "create_orders"
	OpWalletBalance = "wallet_balance"
)

var errBaseURLRequired = errors.New("order service base url is required")

// LatencyObserver receives the duration of every order service call.
type LatencyObserver interface {
	ObserveUpstream(operation string, duration time.Duration)
}

// Client talks to the remote commerce API that owns carts, wallets and orders.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	observer   LatencyObserver
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = strings.TrimSpace(key)
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

func WithObserver(observer LatencyObserver) Option {
	return func(c *Client) {
		c.observer = observer
	}
}

// NewClient builds the order service client for baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errBaseURLRequired
	}

	client := &Client{
		baseURL:    trimmed,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// Preview is the buyer's current cart split into vendor orders.
type Preview struct {
	Orders []pricing.VendorOrder `json:"orders"`
}

// CreateOrdersResult lists the orders committed by the order service.
type CreateOrdersResult struct {
	OrderIDs []string `json:"order_ids"`
}

// WalletBalance is the buyer's spendable wallet amount.
type WalletBalance struct {
	Balance  pricing.Money `json:"balance"`
	Currency string        `json:"currency"`
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// FetchPreview loads the vendor orders for the buyer's cart.
func (c *Client) FetchPreview(ctx context.Context, buyerID string) (*Preview, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "order service client not configured")
	}
	if strings.TrimSpace(buyerID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id is required")
	}

	var preview Preview
	path := fmt.Sprintf("buyers/%s/checkout-preview", url.PathEscape(buyerID))
	if err := c.do(ctx, OpFetchPreview, http.MethodGet, path, nil, &preview); err != nil {
		return nil, err
	}
	return &preview, nil
}

// CreateOrders hands the submission to the order service. A 4xx answer is a
// settlement-time rejection and is returned as SUBMISSION_REJECTED carrying the
// upstream message unchanged.
func (c *Client) CreateOrders(ctx context.Context, buyerID string, submission pricing.Submission) (*CreateOrdersResult, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "order service client not configured")
	}

	var result CreateOrdersResult
	path := fmt.Sprintf("buyers/%s/orders", url.PathEscape(buyerID))
	if err := c.do(ctx, OpCreateOrders, http.MethodPost, path, submission, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetWalletBalance returns the buyer's wallet balance.
func (c *Client) GetWalletBalance(ctx context.Context, buyerID string) (*WalletBalance, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "order service client not configured")
	}

	var balance WalletBalance
	path := fmt.Sprintf("buyers/%s/wallet", url.PathEscape(buyerID))
	if err := c.do(ctx, OpWalletBalance, http.MethodGet, path, nil, &balance); err != nil {
		return nil, err
	}
	return &balance, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, body, dest any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal "+op+" request")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.buildURL(path), reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build "+op+" request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if c.observer != nil {
		c.observer.ObserveUpstream(op, time.Since(start))
	}
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute "+op+" request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.statusError(op, resp)
	}
	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode "+op+" response")
	}
	return nil
}

func (c *Client) statusError(op string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
	message := strings.TrimSpace(string(raw))
	var parsed errorBody
	if json.Unmarshal(raw, &parsed) == nil && parsed.Error.Message != "" {
		message = parsed.Error.Message
	}

	switch {
	case op == OpCreateOrders && resp.StatusCode >= 400 && resp.StatusCode < 500:
		return pkgerrors.New(pkgerrors.CodeSubmissionRejected, message).WithDetails(map[string]any{
			"upstream_status": resp.StatusCode,
			"upstream_code":   parsed.Error.Code,
		})
	case resp.StatusCode == http.StatusNotFound:
		return pkgerrors.New(pkgerrors.CodeNotFound, message)
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, message), op+" request failed")
	}
}

func (c *Client) buildURL(path string) string {
	return fmt.Sprintf("%s/%s", c.baseURL, strings.TrimLeft(path, "/"))
}
