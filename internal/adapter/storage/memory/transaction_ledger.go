package memory

import (
	"context"
	"sync"
	"time"

	"jots/internal/core/domain"
	"jots/internal/core/ports"

	"github.com/google/uuid"
)

// TransactionLedger implements ports.TransactionLedger with a process-local
// append-only log per customer.
type TransactionLedger struct {
	mu         sync.RWMutex
	byCustomer map[uuid.UUID][]*domain.TransactionRecord
	lastAt     map[uuid.UUID]time.Time
	seq        uint64
}

// NewTransactionLedger creates an empty in-memory ledger.
func NewTransactionLedger() *TransactionLedger {
	return &TransactionLedger{
		byCustomer: make(map[uuid.UUID][]*domain.TransactionRecord),
		lastAt:     make(map[uuid.UUID]time.Time),
	}
}

// Append assigns id, sequence number, and timestamp, then stores the record.
// Timestamps per customer never step backwards: a wall-clock tie or regression
// reuses the previous timestamp, and the sequence number breaks the tie.
func (l *TransactionLedger) Append(ctx context.Context, params ports.AppendParams) (*domain.TransactionRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now().UTC()
	if last, ok := l.lastAt[params.CustomerID]; ok && now.Before(last) {
		now = last
	}
	l.lastAt[params.CustomerID] = now
	l.seq++

	rec := &domain.TransactionRecord{
		ID:           uuid.New(),
		CustomerID:   params.CustomerID,
		Kind:         params.Kind,
		Amount:       params.Amount,
		Description:  params.Description,
		BalanceAfter: params.BalanceAfter,
		RelatedID:    params.RelatedID,
		CreatedAt:    now,
		Seq:          l.seq,
	}
	// A charge is its own related resource unless the caller links another.
	if rec.Kind == domain.KindCharge && rec.RelatedID == nil {
		id := rec.ID
		rec.RelatedID = &id
	}

	l.byCustomer[params.CustomerID] = append(l.byCustomer[params.CustomerID], rec)

	cp := *rec
	return &cp, nil
}

// ListByCustomer returns up to limit records, newest first.
func (l *TransactionLedger) ListByCustomer(ctx context.Context, customerID uuid.UUID, limit int) ([]domain.TransactionRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	records := l.byCustomer[customerID]
	n := len(records)
	if limit < n {
		n = limit
	}

	out := make([]domain.TransactionRecord, 0, n)
	for i := len(records) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, *records[i])
	}
	return out, nil
}
