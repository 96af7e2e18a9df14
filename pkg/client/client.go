// Package client provides a Go SDK for the Jots ledger API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	headerAPIKey         = "X-API-Key"
	headerIdempotencyKey = "Idempotency-Key"
	headerReplayed       = "X-Idempotent-Replayed"
)

// Customer is a customer account as returned by the API.
type Customer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Balance   int64     `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
}

// Transaction is a ledger record as returned by the API.
type Transaction struct {
	ID           string    `json:"id"`
	CustomerID   string    `json:"customer_id"`
	Kind         string    `json:"kind"`
	Amount       int64     `json:"amount"`
	Description  *string   `json:"description,omitempty"`
	BalanceAfter int64     `json:"balance_after"`
	RelatedID    *string   `json:"related_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// APIError is a structured error response from the API.
type APIError struct {
	Type       string `json:"type"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("jots: %s (%d): %s", e.Type, e.StatusCode, e.Message)
}

// Client talks to a Jots ledger server.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a Client for the given base URL and API key.
func New(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateCustomer registers a new customer account.
func (c *Client) CreateCustomer(ctx context.Context, name, email string, idempotencyKey string) (*Customer, error) {
	payload := map[string]interface{}{"name": name, "email": email}
	var out Customer
	if err := c.do(ctx, http.MethodPost, "/customers", payload, idempotencyKey, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetCustomer fetches a customer by id.
func (c *Client) GetCustomer(ctx context.Context, customerID string) (*Customer, error) {
	var out Customer
	if err := c.do(ctx, http.MethodGet, "/customers/"+url.PathEscape(customerID), nil, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListCustomers fetches all customers.
func (c *Client) ListCustomers(ctx context.Context) ([]Customer, error) {
	var out struct {
		Data []Customer `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/customers", nil, "", &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// CreditCustomer adds funds to a customer account and returns the updated customer.
func (c *Client) CreditCustomer(ctx context.Context, customerID string, amount int64, description *string, idempotencyKey string) (*Customer, error) {
	payload := map[string]interface{}{"amount": amount}
	if description != nil {
		payload["description"] = *description
	}
	var out Customer
	path := "/customers/" + url.PathEscape(customerID) + "/credit"
	if err := c.do(ctx, http.MethodPost, path, payload, idempotencyKey, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateCharge deducts funds from a customer account and returns the charge record.
func (c *Client) CreateCharge(ctx context.Context, customerID string, amount int64, description *string, idempotencyKey string) (*Transaction, error) {
	payload := map[string]interface{}{"customer_id": customerID, "amount": amount}
	if description != nil {
		payload["description"] = *description
	}
	var out Transaction
	if err := c.do(ctx, http.MethodPost, "/charges", payload, idempotencyKey, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListTransactions fetches a customer's ledger records, newest first.
func (c *Client) ListTransactions(ctx context.Context, customerID string, limit int) ([]Transaction, error) {
	path := "/customers/" + url.PathEscape(customerID) + "/transactions"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var out struct {
		Data []Transaction `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, "", &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload interface{}, idempotencyKey string, out interface{}) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set(headerAPIKey, c.apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if idempotencyKey != "" {
		req.Header.Set(headerIdempotencyKey, idempotencyKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return parseAPIError(resp.StatusCode, raw)
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

func parseAPIError(status int, raw []byte) error {
	var envelope struct {
		Error APIError `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil || envelope.Error.Type == "" {
		return &APIError{
			Type:       "unknown",
			Message:    string(raw),
			StatusCode: status,
		}
	}
	envelope.Error.StatusCode = status
	return &envelope.Error
}
