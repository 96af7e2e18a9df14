package memory

import (
	"context"
	"sync"
	"time"

	"jots/internal/core/domain"
	"jots/internal/core/ports"

	"github.com/google/uuid"
)

// CustomerStore implements ports.CustomerStore with process-local state.
// All state is lost on restart by design.
type CustomerStore struct {
	mu        sync.RWMutex
	customers map[uuid.UUID]*domain.Customer
	order     []uuid.UUID
}

// NewCustomerStore creates an empty in-memory customer store.
func NewCustomerStore() *CustomerStore {
	return &CustomerStore{customers: make(map[uuid.UUID]*domain.Customer)}
}

// Create validates the payload, assigns a fresh id, and stores the customer
// with balance 0.
func (s *CustomerStore) Create(ctx context.Context, name, email string) (*domain.Customer, error) {
	name, email, err := domain.ValidateCustomerPayload(name, email)
	if err != nil {
		return nil, err
	}

	c := &domain.Customer{
		ID:        uuid.New(),
		Name:      name,
		Email:     email,
		Balance:   0,
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.customers[c.ID] = c
	s.order = append(s.order, c.ID)

	cp := *c
	return &cp, nil
}

// Get returns a copy of the customer or ports.ErrCustomerNotFound.
func (s *CustomerStore) Get(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.customers[id]
	if !ok {
		return nil, ports.ErrCustomerNotFound
	}
	cp := *c
	return &cp, nil
}

// List returns copies of all customers in insertion order.
func (s *CustomerStore) List(ctx context.Context) ([]domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Customer, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.customers[id])
	}
	return out, nil
}

// MutateBalance applies delta atomically, rejecting results below zero.
func (s *CustomerStore) MutateBalance(ctx context.Context, id uuid.UUID, delta int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.customers[id]
	if !ok {
		return 0, ports.ErrCustomerNotFound
	}
	newBalance := c.Balance + delta
	if newBalance < 0 {
		return 0, ports.ErrWouldGoNegative
	}
	c.Balance = newBalance
	return newBalance, nil
}
