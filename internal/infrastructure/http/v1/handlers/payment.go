package handlers

import (
	"github.com/gin-gonic/gin"

	"shopledger/internal/domain/documents/payment"
	"shopledger/internal/infrastructure/http/v1/dto"
)

// PaymentHandler handles payment endpoints, including the cheque
// clearing workflow.
type PaymentHandler struct {
	*BaseHandler
	service *payment.Service
}

// NewPaymentHandler creates a new payment handler.
func NewPaymentHandler(service *payment.Service) *PaymentHandler {
	return &PaymentHandler{BaseHandler: NewBaseHandler(), service: service}
}

// Create handles POST /payments.
func (h *PaymentHandler) Create(c *gin.Context) {
	var req dto.PaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := req.ToModel()
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Create(c.Request.Context(), p); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{
		"id":        p.ID.String(),
		"reference": p.Reference(),
		"status":    p.Status,
	})
}

// CreateCash handles POST /payments/cash: counter cash with no customer.
func (h *PaymentHandler) CreateCash(c *gin.Context) {
	var req dto.CashEntryRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := req.ToModel()
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Create(c.Request.Context(), p); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{
		"id":        p.ID.String(),
		"reference": p.Reference(),
		"status":    p.Status,
	})
}

// List handles GET /payments.
func (h *PaymentHandler) List(c *gin.Context) {
	var req dto.PaymentListRequest
	if !h.BindQuery(c, &req) {
		return
	}

	customerID, err := dto.ParseOptionalID(req.CustomerID, "customerId")
	if err != nil {
		h.Error(c, err)
		return
	}

	filter := payment.ListFilter{
		CustomerID: customerID,
		DateRange:  req.Range(),
		Limit:      req.Limit,
		Offset:     req.Offset,
	}
	if req.Status != "" {
		status := payment.Status(req.Status)
		filter.Status = &status
	}
	if req.Method != "" {
		method := payment.Method(req.Method)
		filter.Method = &method
	}

	payments, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{
		Items:      payments,
		TotalCount: total,
		Limit:      req.Limit,
		Offset:     req.Offset,
	})
}

// PendingCheques handles GET /payments/pending-cheques.
func (h *PaymentHandler) PendingCheques(c *gin.Context) {
	cheques, err := h.service.PendingCheques(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": cheques})
}

// Get handles GET /payments/:id.
func (h *PaymentHandler) Get(c *gin.Context) {
	paymentID, err := dto.ParseID(c.Param("id"), "id")
	if err != nil {
		h.Error(c, err)
		return
	}

	p, err := h.service.Get(c.Request.Context(), paymentID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, p)
}

// UpdateStatus handles PATCH /payments/:id/status.
func (h *PaymentHandler) UpdateStatus(c *gin.Context) {
	paymentID, err := dto.ParseID(c.Param("id"), "id")
	if err != nil {
		h.Error(c, err)
		return
	}

	var req dto.PaymentStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.UpdateStatus(c.Request.Context(), paymentID, payment.Status(req.Status)); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "status updated")
}

// Delete handles DELETE /payments/:id.
func (h *PaymentHandler) Delete(c *gin.Context) {
	paymentID, err := dto.ParseID(c.Param("id"), "id")
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), paymentID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}
