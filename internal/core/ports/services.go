package ports

import (
	"context"

	"jots/internal/core/domain"
)

// Outcome is the finalized, serialized result of a mutating operation.
// Body holds the exact bytes written to the client; replays of the same
// idempotency key return these bytes unchanged.
type Outcome struct {
	Status   int
	Body     []byte
	Replayed bool
}

// CreateCustomerRequest holds validated input for customer creation.
type CreateCustomerRequest struct {
	Name           string
	Email          string
	IdempotencyKey string // empty = no idempotency requested
}

// CreditRequest holds input for a balance credit.
type CreditRequest struct {
	CustomerID     string
	Amount         int64
	Description    *string
	IdempotencyKey string
}

// ChargeRequest holds input for a balance charge.
type ChargeRequest struct {
	CustomerID     string
	Amount         int64
	Description    *string
	IdempotencyKey string
}

// LedgerService orchestrates the stores as atomic, idempotent operations.
// It is the only component the transport layer calls.
type LedgerService interface {
	// CreateCustomer validates the payload and creates the customer with
	// balance 0. Status 201 on success.
	CreateCustomer(ctx context.Context, req CreateCustomerRequest) (*Outcome, error)
	// Credit increases the customer's balance and appends a credit record
	// as one atomic unit. Status 200 with the updated customer on success.
	Credit(ctx context.Context, req CreditRequest) (*Outcome, error)
	// Charge decreases the customer's balance and appends a charge record,
	// rejecting with insufficient_funds (and no side effect) if the amount
	// exceeds the balance. Status 201 with the charge record on success.
	Charge(ctx context.Context, req ChargeRequest) (*Outcome, error)
	// GetCustomer returns the customer by id.
	GetCustomer(ctx context.Context, customerID string) (*domain.Customer, error)
	// ListCustomers returns all customers in insertion order.
	ListCustomers(ctx context.Context) ([]domain.Customer, error)
	// ListTransactions returns up to limit records for the customer, newest
	// first. limit 0 selects the default; negative limits are invalid.
	ListTransactions(ctx context.Context, customerID string, limit int) ([]domain.TransactionRecord, error)
}
