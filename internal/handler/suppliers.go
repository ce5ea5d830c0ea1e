package handler

import (
	"net/http"

	"shopinventory/internal/dto"
	"shopinventory/internal/service"

	"github.com/gin-gonic/gin"
)

type SuppliersHandler struct{ svc service.SupplierService }

func NewSuppliersHandler(svc service.SupplierService) *SuppliersHandler {
	return &SuppliersHandler{svc: svc}
}

// Create godoc
// @Summary Create a supplier
// @Tags suppliers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreateSupplierRequest true "Supplier"
// @Success 201 {object} dto.SupplierResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/suppliers [post]
func (h *SuppliersHandler) Create(c *gin.Context) {
	var req dto.CreateSupplierRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, gin.H{"supplier": resp})
}

func (h *SuppliersHandler) List(c *gin.Context) {
	resp, err := h.svc.List(c.Request.Context(), c.Query("include_inactive") == "true")
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"suppliers": resp})
}

func (h *SuppliersHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id", "Supplier")
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"supplier": resp})
}

func (h *SuppliersHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id", "Supplier")
	if !ok {
		return
	}
	var req dto.UpdateSupplierRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"supplier": resp})
}

// Activate godoc
// @Summary Activate a supplier; a no-op with a message when already active
// @Tags suppliers
// @Produce json
// @Security BearerAuth
// @Param id path string true "Supplier id"
// @Success 200 {object} dto.SupplierResponse
// @Router /v1/suppliers/{id}/activate [patch]
func (h *SuppliersHandler) Activate(c *gin.Context) { h.setActive(c, true) }

func (h *SuppliersHandler) Deactivate(c *gin.Context) { h.setActive(c, false) }

func (h *SuppliersHandler) setActive(c *gin.Context, active bool) {
	id, ok := paramID(c, "id", "Supplier")
	if !ok {
		return
	}
	resp, msg, err := h.svc.SetActive(c.Request.Context(), id, active)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"message": msg, "supplier": resp})
}
