package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_CreateCustomer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/customers", r.URL.Path)
		assert.Equal(t, "test_secret_123", r.Header.Get("X-API-Key"))
		assert.Equal(t, "cust-ada-1", r.Header.Get("Idempotency-Key"))

		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "Ada Lovelace", payload["name"])

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id": "11111111-1111-1111-1111-111111111111", "name": "Ada Lovelace",
			"email": "ada@example.com", "balance": 0,
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "test_secret_123")
	customer, err := c.CreateCustomer(context.Background(), "Ada Lovelace", "ada@example.com", "cust-ada-1")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", customer.Name)
	assert.Equal(t, int64(0), customer.Balance)
}

func TestClient_CreditCustomer_SendsDescription(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/customers/abc/credit", r.URL.Path)

		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, float64(5000), payload["amount"])
		assert.Equal(t, "top-up", payload["description"])

		_ = json.NewEncoder(w).Encode(map[string]interface{}{"id": "abc", "balance": 5000})
	}))
	defer srv.Close()

	desc := "top-up"
	c := New(srv.URL, "k")
	customer, err := c.CreditCustomer(context.Background(), "abc", 5000, &desc, "")
	require.NoError(t, err)
	assert.Equal(t, int64(5000), customer.Balance)
}

func TestClient_CreateCharge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/charges", r.URL.Path)

		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "abc", payload["customer_id"])

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id": "tx-1", "customer_id": "abc", "kind": "charge",
			"amount": 2000, "balance_after": 3000,
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "k")
	tx, err := c.CreateCharge(context.Background(), "abc", 2000, nil, "charge-1")
	require.NoError(t, err)
	assert.Equal(t, "charge", tx.Kind)
	assert.Equal(t, int64(3000), tx.BalanceAfter)
}

func TestClient_ListTransactions_LimitParam(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]interface{}{{"id": "tx-1", "kind": "credit", "amount": 5000}},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "k")
	txns, err := c.ListTransactions(context.Background(), "abc", 10)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, "credit", txns[0].Kind)
}

func TestClient_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"type":"insufficient_funds","message":"Insufficient funds"}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "k")
	_, err := c.CreateCharge(context.Background(), "abc", 9999, nil, "")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "insufficient_funds", apiErr.Type)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Insufficient funds", apiErr.Message)
}

func TestClient_MalformedErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream exploded"))
	}))
	defer srv.Close()

	c := New(srv.URL, "k")
	_, err := c.GetCustomer(context.Background(), "abc")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "unknown", apiErr.Type)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
}
