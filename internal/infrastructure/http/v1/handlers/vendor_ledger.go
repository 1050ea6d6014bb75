package handlers

import (
	"github.com/gin-gonic/gin"

	"shopledger/internal/domain/reports/vendorledger"
	"shopledger/internal/infrastructure/http/v1/dto"
)

// VendorLedgerHandler handles vendor ledger report endpoints.
type VendorLedgerHandler struct {
	*BaseHandler
	service *vendorledger.Service
}

// NewVendorLedgerHandler creates a new vendor ledger handler.
func NewVendorLedgerHandler(service *vendorledger.Service) *VendorLedgerHandler {
	return &VendorLedgerHandler{BaseHandler: NewBaseHandler(), service: service}
}

// Ledger handles GET /ledger/vendors/:id.
func (h *VendorLedgerHandler) Ledger(c *gin.Context) {
	vendorID, err := dto.ParseID(c.Param("id"), "id")
	if err != nil {
		h.Error(c, err)
		return
	}

	var req dto.DateRangeRequest
	if !h.BindQuery(c, &req) {
		return
	}

	view, err := h.service.Ledger(c.Request.Context(), vendorID, req.Range())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, view)
}

// Summaries handles GET /ledger/vendors.
func (h *VendorLedgerHandler) Summaries(c *gin.Context) {
	summaries, err := h.service.Summaries(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": summaries})
}
