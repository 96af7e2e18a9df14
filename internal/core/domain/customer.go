package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Customer represents an account holder with a spendable balance.
// Balance is in integer minor units and is mutated exclusively through
// the ledger service; it is always the signed sum of the customer's
// transaction history and never negative.
type Customer struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Balance   int64     `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
}

// ValidateCustomerPayload checks a customer creation payload and returns the
// trimmed name and email that should be stored.
func ValidateCustomerPayload(name, email string) (string, string, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	if name == "" {
		return "", "", errors.New("name is required and must be a non-empty string")
	}
	if email == "" {
		return "", "", errors.New("email is required and must be a non-empty string")
	}
	if !strings.Contains(email, "@") {
		return "", "", errors.New("email must contain '@'")
	}
	return name, email, nil
}
