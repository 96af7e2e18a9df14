package domain

import (
	"time"

	"github.com/google/uuid"
)

// TransactionKind represents the direction of a balance change.
type TransactionKind string

const (
	KindCredit TransactionKind = "credit"
	KindCharge TransactionKind = "charge"
)

// TransactionRecord is an immutable ledger entry for a single balance change.
// Records are append-only and ordered per customer by CreatedAt, with Seq
// breaking ties in insertion order.
type TransactionRecord struct {
	ID           uuid.UUID       `json:"id"`
	CustomerID   uuid.UUID       `json:"customer_id"`
	Kind         TransactionKind `json:"kind"`
	Amount       int64           `json:"amount"`
	Description  *string         `json:"description,omitempty"`
	BalanceAfter int64           `json:"balance_after"`
	RelatedID    *uuid.UUID      `json:"related_id,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	Seq          uint64          `json:"-"`
}

// SignedAmount returns the amount with its sign applied: positive for
// credits, negative for charges.
func (t *TransactionRecord) SignedAmount() int64 {
	if t.Kind == KindCharge {
		return -t.Amount
	}
	return t.Amount
}
