package handler

import (
	"strconv"

	"jots/internal/adapter/http/dto"
	"jots/internal/adapter/http/middleware"
	"jots/internal/core/ports"
	"jots/pkg/apperror"
	"jots/pkg/response"

	"github.com/gin-gonic/gin"
)

// CustomerHandler handles customer-related endpoints.
type CustomerHandler struct {
	ledgerSvc ports.LedgerService
}

// NewCustomerHandler creates a new CustomerHandler.
func NewCustomerHandler(ledgerSvc ports.LedgerService) *CustomerHandler {
	return &CustomerHandler{ledgerSvc: ledgerSvc}
}

// Create handles POST /customers.
func (h *CustomerHandler) Create(c *gin.Context) {
	var req dto.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	out, err := h.ledgerSvc.CreateCustomer(c.Request.Context(), ports.CreateCustomerRequest{
		Name:           req.Name,
		Email:          req.Email,
		IdempotencyKey: c.GetHeader(middleware.HeaderIdempotencyKey),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	writeOutcome(c, out)
}

// Get handles GET /customers/:id.
func (h *CustomerHandler) Get(c *gin.Context) {
	customer, err := h.ledgerSvc.GetCustomer(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, customer)
}

// List handles GET /customers.
func (h *CustomerHandler) List(c *gin.Context) {
	customers, err := h.ledgerSvc.ListCustomers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, customers)
}

// Credit handles POST /customers/:id/credit.
func (h *CustomerHandler) Credit(c *gin.Context) {
	var req dto.CreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	out, err := h.ledgerSvc.Credit(c.Request.Context(), ports.CreditRequest{
		CustomerID:     c.Param("id"),
		Amount:         req.Amount,
		Description:    req.Description,
		IdempotencyKey: c.GetHeader(middleware.HeaderIdempotencyKey),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	writeOutcome(c, out)
}

// ListTransactions handles GET /customers/:id/transactions.
func (h *CustomerHandler) ListTransactions(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, apperror.Validation("limit must be an integer"))
			return
		}
		limit = parsed
	}

	records, err := h.ledgerSvc.ListTransactions(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, records)
}

// writeOutcome serializes a service outcome, marking replays so clients can
// tell a cached response from a fresh execution.
func writeOutcome(c *gin.Context, out *ports.Outcome) {
	if out.Replayed {
		c.Header(middleware.HeaderIdempotentReplayed, "true")
	}
	response.Raw(c, out.Status, out.Body)
}
