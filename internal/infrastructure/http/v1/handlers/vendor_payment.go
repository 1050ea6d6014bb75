package handlers

import (
	"github.com/gin-gonic/gin"

	"shopledger/internal/domain/documents/vendorpayment"
	"shopledger/internal/infrastructure/http/v1/dto"
)

// VendorPaymentHandler handles vendor payment endpoints.
type VendorPaymentHandler struct {
	*BaseHandler
	service *vendorpayment.Service
}

// NewVendorPaymentHandler creates a new vendor payment handler.
func NewVendorPaymentHandler(service *vendorpayment.Service) *VendorPaymentHandler {
	return &VendorPaymentHandler{BaseHandler: NewBaseHandler(), service: service}
}

// Create handles POST /vendor-payments.
func (h *VendorPaymentHandler) Create(c *gin.Context) {
	var req dto.VendorPaymentRequest
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

	h.Created(c, p.ID.String())
}

// List handles GET /vendor-payments.
func (h *VendorPaymentHandler) List(c *gin.Context) {
	var req dto.VendorPaymentListRequest
	if !h.BindQuery(c, &req) {
		return
	}

	vendorID, err := dto.ParseOptionalID(req.VendorID, "vendorId")
	if err != nil {
		h.Error(c, err)
		return
	}

	payments, total, err := h.service.List(c.Request.Context(), vendorpayment.ListFilter{
		VendorID:  vendorID,
		DateRange: req.Range(),
		Limit:     req.Limit,
		Offset:    req.Offset,
	})
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

// Get handles GET /vendor-payments/:id.
func (h *VendorPaymentHandler) Get(c *gin.Context) {
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

// Delete handles DELETE /vendor-payments/:id.
func (h *VendorPaymentHandler) Delete(c *gin.Context) {
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
