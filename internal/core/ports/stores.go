package ports

import (
	"context"
	"errors"

	"jots/internal/core/domain"

	"github.com/google/uuid"
)

// Sentinel errors returned by stores. Services translate these into the
// client-facing error taxonomy.
var (
	ErrCustomerNotFound = errors.New("customer not found")
	ErrWouldGoNegative  = errors.New("balance would go negative")
)

// CustomerStore owns customer identity and current balance.
type CustomerStore interface {
	// Create generates a fresh id and stores the customer with balance 0.
	// Name must be non-empty after trimming; email must contain '@'.
	Create(ctx context.Context, name, email string) (*domain.Customer, error)
	// Get returns the customer or ErrCustomerNotFound.
	Get(ctx context.Context, id uuid.UUID) (*domain.Customer, error)
	// List returns all customers in insertion order.
	List(ctx context.Context) ([]domain.Customer, error)
	// MutateBalance applies delta (signed) only if the resulting balance is
	// non-negative. The check and the apply are a single atomic step with
	// respect to concurrent callers on the same id. Returns the new balance,
	// ErrCustomerNotFound, or ErrWouldGoNegative.
	MutateBalance(ctx context.Context, id uuid.UUID, delta int64) (int64, error)
}

// AppendParams holds the input for a ledger append.
type AppendParams struct {
	CustomerID   uuid.UUID
	Kind         domain.TransactionKind
	Amount       int64
	BalanceAfter int64
	Description  *string
	RelatedID    *uuid.UUID
}

// TransactionLedger owns the append-only, per-customer-ordered history of
// balance-changing events.
type TransactionLedger interface {
	// Append assigns id and timestamp and stores the record. Timestamps for
	// the same customer are non-decreasing in append order; insertion order
	// breaks ties. Charge records with no RelatedID reference their own id.
	Append(ctx context.Context, params AppendParams) (*domain.TransactionRecord, error)
	// ListByCustomer returns up to limit records, newest first. limit must
	// be positive; callers validate before calling.
	ListByCustomer(ctx context.Context, customerID uuid.UUID, limit int) ([]domain.TransactionRecord, error)
}

// ReserveState is the outcome of an idempotency reservation attempt.
type ReserveState int

const (
	// ReserveAcquired means the caller holds the key and must execute the
	// operation, then call Complete (or Abandon on internal failure).
	ReserveAcquired ReserveState = iota
	// ReserveInFlight means another caller holds the key; wait on Done,
	// then read Entry.
	ReserveInFlight
	// ReserveCompleted means the key is finalized; Entry holds the stored
	// outcome.
	ReserveCompleted
)

// Reservation describes the state of an idempotency key after Reserve.
// For ReserveInFlight, Done is closed when the in-flight execution
// finalizes. Entry.Key and Entry.RequestHash are immutable and safe to
// read immediately; the response fields must only be read after Done is
// closed.
type Reservation struct {
	State ReserveState
	Entry *domain.IdempotencyEntry
	Done  <-chan struct{}
}

// IdempotencyCache owns the at-most-once guarantee for retried operations.
// Entries never expire.
type IdempotencyCache interface {
	// Lookup returns the finalized entry for key, or nil if absent or still
	// in flight.
	Lookup(ctx context.Context, key string) (*domain.IdempotencyEntry, error)
	// Reserve atomically claims key for execution or joins the existing
	// holder. The first caller gets ReserveAcquired; concurrent callers with
	// the same key never re-execute the operation.
	Reserve(ctx context.Context, key, requestHash string) (*Reservation, error)
	// Complete stores the final outcome (success or rejection) and releases
	// all waiters, who observe the identical stored result.
	Complete(ctx context.Context, key string, body []byte, status int) error
	// Abandon releases a reservation whose execution failed before producing
	// an outcome. The key becomes free again; waiters are woken and report
	// the failure to their callers.
	Abandon(ctx context.Context, key string) error
}
