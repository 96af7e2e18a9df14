package dto

// CreateCustomerRequest is the request body for customer creation.
type CreateCustomerRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required"`
}

// CreditRequest is the request body for crediting a customer account.
// Amount is validated in the ledger service so that rejections are
// recorded under the request's idempotency key.
type CreditRequest struct {
	Amount      int64   `json:"amount"`
	Description *string `json:"description,omitempty"`
}

// ChargeRequest is the request body for charging a customer account.
type ChargeRequest struct {
	CustomerID  string  `json:"customer_id" binding:"required"`
	Amount      int64   `json:"amount"`
	Description *string `json:"description,omitempty"`
}
