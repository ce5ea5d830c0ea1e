package handler

import (
	"fmt"
	"net/http"

	"shopinventory/internal/dto"
	"shopinventory/internal/service"

	"github.com/gin-gonic/gin"
)

type SalesHandler struct{ svc service.SaleService }

func NewSalesHandler(svc service.SaleService) *SalesHandler {
	return &SalesHandler{svc: svc}
}

// Create godoc
// @Summary Record a sale; all lines commit together or not at all
// @Tags sales
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreateSaleRequest true "Sale"
// @Success 201 {object} dto.SaleResponse
// @Failure 400 {object} apierror.APIError "Empty sale, bad quantity or insufficient stock"
// @Failure 404 {object} apierror.APIError "Unknown client or product"
// @Router /v1/sales [post]
func (h *SalesHandler) Create(c *gin.Context) {
	var req dto.CreateSaleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, gin.H{"sale": resp})
}

func (h *SalesHandler) List(c *gin.Context) {
	var filter dto.SaleFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{
		"sales": resp.Data,
		"total": resp.Total,
		"page":  resp.Page,
		"limit": resp.Limit,
	})
}

func (h *SalesHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id", "Sale")
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"sale": resp})
}

// Receipt godoc
// @Summary Download the PDF receipt of a sale
// @Tags sales
// @Produce application/pdf
// @Security BearerAuth
// @Param id path string true "Sale id"
// @Success 200 {file} binary
// @Failure 404 {object} apierror.APIError
// @Router /v1/sales/{id}/receipt [get]
func (h *SalesHandler) Receipt(c *gin.Context) {
	id, ok := paramID(c, "id", "Sale")
	if !ok {
		return
	}
	pdf, err := h.svc.Receipt(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="receipt_%s.pdf"`, id))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
