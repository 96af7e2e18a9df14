package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Operation names used to scope idempotency keys. A token reused across
// different operations must never replay the other operation's response.
const (
	OpCreateCustomer = "create_customer"
	OpCredit         = "credit"
	OpCharge         = "charge"
)

// IdempotencyEntry is the finalized outcome of an operation executed under
// an idempotency key. Immutable once stored; retries observe the exact
// response bytes and status of the original execution.
type IdempotencyEntry struct {
	Key            string    `json:"key"`
	RequestHash    string    `json:"request_hash"`
	ResponseBody   []byte    `json:"response_body"`
	ResponseStatus int       `json:"response_status"`
	CreatedAt      time.Time `json:"created_at"`
}

// BuildIdempotencyKey constructs the cache key, scoped per operation.
func BuildIdempotencyKey(operation, token string) string {
	return operation + ":" + token
}

// HashRequest computes the canonical payload hash stored alongside an
// idempotency entry. A retry whose hash differs is a conflicting reuse
// of the key, not a replay.
func HashRequest(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
