package events

import (
	"context"
	"time"

	"jots/internal/core/domain"
)

// TransactionRecorded is emitted after a credit or charge commits.
type TransactionRecorded struct {
	TransactionID string    `json:"transaction_id"`
	CustomerID    string    `json:"customer_id"`
	Kind          string    `json:"kind"`
	Amount        int64     `json:"amount"`
	BalanceAfter  int64     `json:"balance_after"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// FromRecord builds the event payload for a committed ledger record.
func FromRecord(rec *domain.TransactionRecord) TransactionRecorded {
	return TransactionRecorded{
		TransactionID: rec.ID.String(),
		CustomerID:    rec.CustomerID.String(),
		Kind:          string(rec.Kind),
		Amount:        rec.Amount,
		BalanceAfter:  rec.BalanceAfter,
		OccurredAt:    rec.CreatedAt,
	}
}

// Publisher emits ledger events to downstream consumers. Publishing is
// best-effort after commit and never affects the caller's result.
type Publisher interface {
	Publish(ctx context.Context, event TransactionRecorded) error
}

// NoopPublisher discards all events. Used when no broker is configured.
type NoopPublisher struct{}

// Publish discards the event.
func (NoopPublisher) Publish(ctx context.Context, event TransactionRecorded) error {
	return nil
}
