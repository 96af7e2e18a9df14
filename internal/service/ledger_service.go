package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"jots/internal/core/domain"
	"jots/internal/core/ports"
	"jots/internal/events"
	"jots/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const defaultListLimit = 50

// LedgerServiceImpl implements ports.LedgerService.
//
// Mutations on a given customer are serialized by a per-customer lock held
// across the validate-check, balance mutation, and ledger append; reads take
// the same lock shared so they never observe a balance without its matching
// record. Idempotency reservation happens before the customer lock and is
// independent of it.
type LedgerServiceImpl struct {
	customers ports.CustomerStore
	ledger    ports.TransactionLedger
	idem      ports.IdempotencyCache
	publisher events.Publisher
	log       zerolog.Logger

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.RWMutex
}

// NewLedgerService creates a new LedgerServiceImpl. publisher may be nil.
func NewLedgerService(
	customers ports.CustomerStore,
	ledger ports.TransactionLedger,
	idem ports.IdempotencyCache,
	publisher events.Publisher,
	log zerolog.Logger,
) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		customers: customers,
		ledger:    ledger,
		idem:      idem,
		publisher: publisher,
		log:       log,
		locks:     make(map[uuid.UUID]*sync.RWMutex),
	}
}

// lockFor returns the lock serializing operations on one customer.
func (s *LedgerServiceImpl) lockFor(id uuid.UUID) *sync.RWMutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.RWMutex{}
		s.locks[id] = l
	}
	return l
}

// CreateCustomer validates the payload and creates a customer with balance 0.
func (s *LedgerServiceImpl) CreateCustomer(ctx context.Context, req ports.CreateCustomerRequest) (*ports.Outcome, error) {
	hash := domain.HashRequest(domain.OpCreateCustomer, req.Name, req.Email)
	return s.withIdempotency(ctx, domain.OpCreateCustomer, req.IdempotencyKey, hash, func() (*ports.Outcome, error) {
		name, email, err := domain.ValidateCustomerPayload(req.Name, req.Email)
		if err != nil {
			return rejection(apperror.Validation(err.Error())), nil
		}

		customer, err := s.customers.Create(ctx, name, email)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("create customer: %w", err))
		}

		s.log.Info().
			Str("customer_id", customer.ID.String()).
			Msg("customer created")

		return outcomeJSON(http.StatusCreated, customer)
	})
}

// Credit increases the customer's balance and appends a credit record as one
// atomic unit.
func (s *LedgerServiceImpl) Credit(ctx context.Context, req ports.CreditRequest) (*ports.Outcome, error) {
	hash := domain.HashRequest(domain.OpCredit, req.CustomerID, strconv.FormatInt(req.Amount, 10), strDeref(req.Description))
	return s.withIdempotency(ctx, domain.OpCredit, req.IdempotencyKey, hash, func() (*ports.Outcome, error) {
		customerID, ok := parseCustomerID(req.CustomerID)
		if !ok {
			return rejection(apperror.ErrNotFound("Customer")), nil
		}
		if req.Amount <= 0 {
			return rejection(apperror.Validation("amount must be a positive integer")), nil
		}

		lock := s.lockFor(customerID)
		lock.Lock()
		defer lock.Unlock()

		newBalance, err := s.customers.MutateBalance(ctx, customerID, req.Amount)
		if err == ports.ErrCustomerNotFound {
			return rejection(apperror.ErrNotFound("Customer")), nil
		}
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("mutate balance: %w", err))
		}

		rec, err := s.ledger.Append(ctx, ports.AppendParams{
			CustomerID:   customerID,
			Kind:         domain.KindCredit,
			Amount:       req.Amount,
			BalanceAfter: newBalance,
			Description:  req.Description,
		})
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("append credit record: %w", err))
		}

		customer, err := s.customers.Get(ctx, customerID)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("reload customer: %w", err))
		}

		s.publish(ctx, rec)
		s.log.Info().
			Str("customer_id", customerID.String()).
			Str("transaction_id", rec.ID.String()).
			Int64("amount", req.Amount).
			Int64("balance", newBalance).
			Msg("credit applied")

		return outcomeJSON(http.StatusOK, customer)
	})
}

// Charge decreases the customer's balance and appends a charge record,
// rejecting with insufficient_funds and no side effect if the amount exceeds
// the balance.
func (s *LedgerServiceImpl) Charge(ctx context.Context, req ports.ChargeRequest) (*ports.Outcome, error) {
	hash := domain.HashRequest(domain.OpCharge, req.CustomerID, strconv.FormatInt(req.Amount, 10), strDeref(req.Description))
	return s.withIdempotency(ctx, domain.OpCharge, req.IdempotencyKey, hash, func() (*ports.Outcome, error) {
		customerID, ok := parseCustomerID(req.CustomerID)
		if !ok {
			return rejection(apperror.ErrNotFound("Customer")), nil
		}
		if req.Amount <= 0 {
			return rejection(apperror.Validation("amount must be a positive integer")), nil
		}

		lock := s.lockFor(customerID)
		lock.Lock()
		defer lock.Unlock()

		customer, err := s.customers.Get(ctx, customerID)
		if err == ports.ErrCustomerNotFound {
			return rejection(apperror.ErrNotFound("Customer")), nil
		}
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("load customer: %w", err))
		}

		// Cheap, side-effect-free rejection so a retry after a top-up
		// succeeds cleanly.
		if req.Amount > customer.Balance {
			return rejection(apperror.ErrInsufficientFunds()), nil
		}

		newBalance, err := s.customers.MutateBalance(ctx, customerID, -req.Amount)
		if err == ports.ErrWouldGoNegative {
			// The store-level atomic check is the authority.
			return rejection(apperror.ErrInsufficientFunds()), nil
		}
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("mutate balance: %w", err))
		}

		rec, err := s.ledger.Append(ctx, ports.AppendParams{
			CustomerID:   customerID,
			Kind:         domain.KindCharge,
			Amount:       req.Amount,
			BalanceAfter: newBalance,
			Description:  req.Description,
		})
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("append charge record: %w", err))
		}

		s.publish(ctx, rec)
		s.log.Info().
			Str("customer_id", customerID.String()).
			Str("transaction_id", rec.ID.String()).
			Int64("amount", req.Amount).
			Int64("balance", newBalance).
			Msg("charge applied")

		return outcomeJSON(http.StatusCreated, rec)
	})
}

// GetCustomer returns the customer by id.
func (s *LedgerServiceImpl) GetCustomer(ctx context.Context, customerID string) (*domain.Customer, error) {
	id, ok := parseCustomerID(customerID)
	if !ok {
		return nil, apperror.ErrNotFound("Customer")
	}

	lock := s.lockFor(id)
	lock.RLock()
	defer lock.RUnlock()

	customer, err := s.customers.Get(ctx, id)
	if err == ports.ErrCustomerNotFound {
		return nil, apperror.ErrNotFound("Customer")
	}
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load customer: %w", err))
	}
	return customer, nil
}

// ListCustomers returns all customers in insertion order.
func (s *LedgerServiceImpl) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	customers, err := s.customers.List(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list customers: %w", err))
	}
	return customers, nil
}

// ListTransactions returns up to limit records for the customer, newest first.
func (s *LedgerServiceImpl) ListTransactions(ctx context.Context, customerID string, limit int) ([]domain.TransactionRecord, error) {
	if limit == 0 {
		limit = defaultListLimit
	}
	if limit < 0 {
		return nil, apperror.Validation("limit must be a positive integer")
	}

	id, ok := parseCustomerID(customerID)
	if !ok {
		return nil, apperror.ErrNotFound("Customer")
	}

	lock := s.lockFor(id)
	lock.RLock()
	defer lock.RUnlock()

	if _, err := s.customers.Get(ctx, id); err != nil {
		if err == ports.ErrCustomerNotFound {
			return nil, apperror.ErrNotFound("Customer")
		}
		return nil, apperror.InternalError(fmt.Errorf("load customer: %w", err))
	}

	records, err := s.ledger.ListByCustomer(ctx, id, limit)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list transactions: %w", err))
	}
	return records, nil
}

// withIdempotency runs exec at most once per key. With no key, exec runs
// unconditionally and nothing is cached. Once a key is reserved, the outcome
// (success or rejection) is stored and every retry observes the identical
// bytes and status. A waiter whose context is cancelled abandons only its
// wait; the in-flight execution always runs to completion and is cached.
func (s *LedgerServiceImpl) withIdempotency(ctx context.Context, operation, token, requestHash string, exec func() (*ports.Outcome, error)) (*ports.Outcome, error) {
	if token == "" {
		return exec()
	}

	key := domain.BuildIdempotencyKey(operation, token)
	res, err := s.idem.Reserve(ctx, key, requestHash)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("reserve idempotency key: %w", err))
	}

	switch res.State {
	case ports.ReserveCompleted:
		if res.Entry.RequestHash != requestHash {
			return rejection(apperror.ErrIdempotencyConflict()), nil
		}
		return replayOutcome(res.Entry), nil

	case ports.ReserveInFlight:
		if res.Entry.RequestHash != requestHash {
			return rejection(apperror.ErrIdempotencyConflict()), nil
		}
		select {
		case <-res.Done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		if res.Entry.ResponseStatus == 0 {
			// The original attempt was abandoned without an outcome.
			return nil, apperror.InternalError(fmt.Errorf("idempotent operation %s failed before completing", key))
		}
		return replayOutcome(res.Entry), nil
	}

	out, err := exec()
	if err != nil {
		if abandonErr := s.idem.Abandon(ctx, key); abandonErr != nil {
			s.log.Warn().Err(abandonErr).Str("key", key).Msg("failed to abandon idempotency key")
		}
		return nil, err
	}

	if err := s.idem.Complete(ctx, key, out.Body, out.Status); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("failed to finalize idempotency key")
	}
	return out, nil
}

// publish emits a post-commit event, best-effort.
func (s *LedgerServiceImpl) publish(ctx context.Context, rec *domain.TransactionRecord) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events.FromRecord(rec)); err != nil {
		s.log.Warn().Err(err).Str("transaction_id", rec.ID.String()).Msg("failed to publish transaction event")
	}
}

// outcomeJSON serializes v as the operation's canonical response bytes.
func outcomeJSON(status int, v interface{}) (*ports.Outcome, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("marshal response: %w", err))
	}
	return &ports.Outcome{Status: status, Body: body}, nil
}

// rejection serializes an AppError into an outcome so it can be cached and
// replayed like any other result.
func rejection(appErr *apperror.AppError) *ports.Outcome {
	body, _ := json.Marshal(appErr.Envelope())
	return &ports.Outcome{Status: appErr.HTTPStatus, Body: body}
}

func replayOutcome(entry *domain.IdempotencyEntry) *ports.Outcome {
	return &ports.Outcome{
		Status:   entry.ResponseStatus,
		Body:     entry.ResponseBody,
		Replayed: true,
	}
}

func parseCustomerID(raw string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func strDeref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
