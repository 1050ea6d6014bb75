package handlers

import (
	"github.com/gin-gonic/gin"

	"shopledger/internal/domain/catalogs/bank"
	"shopledger/internal/infrastructure/http/v1/dto"
)

// BankHandler handles bank account endpoints.
type BankHandler struct {
	*BaseHandler
	service *bank.Service
}

// NewBankHandler creates a new bank handler.
func NewBankHandler(service *bank.Service) *BankHandler {
	return &BankHandler{BaseHandler: NewBaseHandler(), service: service}
}

// Create handles POST /bank-accounts.
func (h *BankHandler) Create(c *gin.Context) {
	var req dto.BankAccountRequest
	if !h.BindJSON(c, &req) {
		return
	}

	account := req.ToModel()
	if err := h.service.Create(c.Request.Context(), account); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, account.ID.String())
}

// List handles GET /bank-accounts.
func (h *BankHandler) List(c *gin.Context) {
	accounts, err := h.service.List(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": accounts})
}

// Get handles GET /bank-accounts/:id.
func (h *BankHandler) Get(c *gin.Context) {
	accountID, err := dto.ParseID(c.Param("id"), "id")
	if err != nil {
		h.Error(c, err)
		return
	}

	account, err := h.service.Get(c.Request.Context(), accountID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, account)
}

// Transactions handles GET /bank-accounts/:id/transactions.
func (h *BankHandler) Transactions(c *gin.Context) {
	accountID, err := dto.ParseID(c.Param("id"), "id")
	if err != nil {
		h.Error(c, err)
		return
	}

	limit := h.ParseIntQuery(c, "limit", 100)
	transactions, err := h.service.Transactions(c.Request.Context(), accountID, limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": transactions})
}
