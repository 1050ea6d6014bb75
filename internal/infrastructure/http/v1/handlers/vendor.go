package handlers

import (
	"github.com/gin-gonic/gin"

	"shopledger/internal/domain/catalogs/vendor"
	"shopledger/internal/infrastructure/http/v1/dto"
)

// VendorHandler handles vendor catalog endpoints.
type VendorHandler struct {
	*BaseHandler
	service *vendor.Service
}

// NewVendorHandler creates a new vendor handler.
func NewVendorHandler(service *vendor.Service) *VendorHandler {
	return &VendorHandler{BaseHandler: NewBaseHandler(), service: service}
}

// Create handles POST /vendors.
func (h *VendorHandler) Create(c *gin.Context) {
	var req dto.VendorRequest
	if !h.BindJSON(c, &req) {
		return
	}

	v := req.ToModel()
	if err := h.service.Create(c.Request.Context(), v); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, v.ID.String())
}

// List handles GET /vendors.
func (h *VendorHandler) List(c *gin.Context) {
	var req dto.VendorListRequest
	if !h.BindQuery(c, &req) {
		return
	}

	vendors, total, err := h.service.List(c.Request.Context(), vendor.ListFilter{
		Search:      req.Search,
		WithDeleted: req.WithDeleted,
		Limit:       req.Limit,
		Offset:      req.Offset,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{
		Items:      vendors,
		TotalCount: total,
		Limit:      req.Limit,
		Offset:     req.Offset,
	})
}

// Get handles GET /vendors/:id.
func (h *VendorHandler) Get(c *gin.Context) {
	vendorID, err := dto.ParseID(c.Param("id"), "id")
	if err != nil {
		h.Error(c, err)
		return
	}

	v, err := h.service.Get(c.Request.Context(), vendorID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, v)
}

// Update handles PUT /vendors/:id.
func (h *VendorHandler) Update(c *gin.Context) {
	vendorID, err := dto.ParseID(c.Param("id"), "id")
	if err != nil {
		h.Error(c, err)
		return
	}

	var req dto.VendorRequest
	if !h.BindJSON(c, &req) {
		return
	}

	v := req.ToModel()
	v.ID = vendorID
	if err := h.service.Update(c.Request.Context(), v); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, v)
}

// Delete handles DELETE /vendors/:id.
func (h *VendorHandler) Delete(c *gin.Context) {
	vendorID, err := dto.ParseID(c.Param("id"), "id")
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), vendorID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}
