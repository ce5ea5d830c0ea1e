package handler

import (
	"net/http"

	"shopinventory/internal/dto"
	"shopinventory/internal/service"

	"github.com/gin-gonic/gin"
)

// FieldOptionsHandler serves the configurable option lists (size, color_print, supplier).
type FieldOptionsHandler struct{ svc service.FieldOptionService }

func NewFieldOptionsHandler(svc service.FieldOptionService) *FieldOptionsHandler {
	return &FieldOptionsHandler{svc: svc}
}

func (h *FieldOptionsHandler) List(c *gin.Context) {
	resp, err := h.svc.List(c.Request.Context(), c.Param("type"), c.Query("include_inactive") == "true")
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"options": resp})
}

// Create godoc
// @Summary Add a value to an option list
// @Tags field-options
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param type path string true "size | color_print | supplier"
// @Param body body dto.CreateFieldOptionRequest true "Option"
// @Success 201 {object} dto.FieldOptionResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/field-options/{type} [post]
func (h *FieldOptionsHandler) Create(c *gin.Context) {
	var req dto.CreateFieldOptionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), c.Param("type"), req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, gin.H{"option": resp})
}

func (h *FieldOptionsHandler) Activate(c *gin.Context) { h.setActive(c, true) }

func (h *FieldOptionsHandler) Deactivate(c *gin.Context) { h.setActive(c, false) }

func (h *FieldOptionsHandler) setActive(c *gin.Context, active bool) {
	id, ok := paramID(c, "id", "Option")
	if !ok {
		return
	}
	resp, msg, err := h.svc.SetActive(c.Request.Context(), c.Param("type"), id, active)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"message": msg, "option": resp})
}
