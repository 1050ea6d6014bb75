package handlers

import (
	"github.com/gin-gonic/gin"

	"shopledger/internal/domain/ledger"
	"shopledger/internal/infrastructure/http/v1/dto"
)

// LedgerHandler handles customer ledger read endpoints.
type LedgerHandler struct {
	*BaseHandler
	service *ledger.Service
}

// NewLedgerHandler creates a new ledger handler.
func NewLedgerHandler(service *ledger.Service) *LedgerHandler {
	return &LedgerHandler{BaseHandler: NewBaseHandler(), service: service}
}

// CustomerLedger handles GET /ledger/customers/:id.
func (h *LedgerHandler) CustomerLedger(c *gin.Context) {
	customerID, err := dto.ParseID(c.Param("id"), "id")
	if err != nil {
		h.Error(c, err)
		return
	}

	var req dto.DateRangeRequest
	if !h.BindQuery(c, &req) {
		return
	}

	view, err := h.service.CustomerLedger(c.Request.Context(), customerID, req.Range())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, view)
}

// CustomerBalance handles GET /ledger/customers/:id/balance.
func (h *LedgerHandler) CustomerBalance(c *gin.Context) {
	customerID, err := dto.ParseID(c.Param("id"), "id")
	if err != nil {
		h.Error(c, err)
		return
	}

	balance, err := h.service.CurrentBalance(c.Request.Context(), customerID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{
		"customerId": customerID.String(),
		"balance":    balance,
	})
}

// CustomersSummary handles GET /ledger/customers.
func (h *LedgerHandler) CustomersSummary(c *gin.Context) {
	summaries, err := h.service.CustomersSummary(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": summaries})
}

// Statistics handles GET /ledger/statistics.
func (h *LedgerHandler) Statistics(c *gin.Context) {
	stats, err := h.service.Statistics(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, stats)
}

// TopCustomers handles GET /ledger/top-customers.
func (h *LedgerHandler) TopCustomers(c *gin.Context) {
	limit := h.ParseIntQuery(c, "limit", 5)
	customers, err := h.service.TopCustomers(c.Request.Context(), limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": customers})
}
