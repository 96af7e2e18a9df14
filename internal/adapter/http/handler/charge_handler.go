package handler

import (
	"jots/internal/adapter/http/dto"
	"jots/internal/adapter/http/middleware"
	"jots/internal/core/ports"
	"jots/pkg/apperror"
	"jots/pkg/response"

	"github.com/gin-gonic/gin"
)

// ChargeHandler handles charge endpoints.
type ChargeHandler struct {
	ledgerSvc ports.LedgerService
}

// NewChargeHandler creates a new ChargeHandler.
func NewChargeHandler(ledgerSvc ports.LedgerService) *ChargeHandler {
	return &ChargeHandler{ledgerSvc: ledgerSvc}
}

// Create handles POST /charges.
func (h *ChargeHandler) Create(c *gin.Context) {
	var req dto.ChargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	out, err := h.ledgerSvc.Charge(c.Request.Context(), ports.ChargeRequest{
		CustomerID:     req.CustomerID,
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
