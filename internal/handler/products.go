package handler

import (
	"net/http"

	"shopinventory/internal/dto"
	"shopinventory/internal/service"

	"github.com/gin-gonic/gin"
)

type ProductsHandler struct{ svc service.ProductService }

func NewProductsHandler(svc service.ProductService) *ProductsHandler {
	return &ProductsHandler{svc: svc}
}

// Create godoc
// @Summary Create a product; generates its SKU and books the initial stock
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreateProductRequest true "Product"
// @Success 201 {object} dto.ProductResponse
// @Failure 400 {object} apierror.APIError
// @Failure 404 {object} apierror.APIError
// @Router /v1/products [post]
func (h *ProductsHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, gin.H{"product": resp})
}

// List godoc
// @Summary List products with optional filters
// @Tags products
// @Produce json
// @Security BearerAuth
// @Param q query string false "Name or SKU fragment"
// @Param supplier_id query string false "Supplier id"
// @Param low_stock query bool false "Only products at or below their threshold"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} dto.ProductListResponse
// @Router /v1/products [get]
func (h *ProductsHandler) List(c *gin.Context) {
	var filter dto.ProductFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{
		"products":    resp.Data,
		"total":       resp.Total,
		"page":        resp.Page,
		"limit":       resp.Limit,
		"total_pages": resp.TotalPages,
	})
}

func (h *ProductsHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id", "Product")
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"product": resp})
}

func (h *ProductsHandler) GetBySKU(c *gin.Context) {
	resp, err := h.svc.GetBySKU(c.Request.Context(), c.Param("sku"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"product": resp})
}

// Update godoc
// @Summary Update product attributes (stock is only changed through transactions)
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product id"
// @Param body body dto.UpdateProductRequest true "Fields to change"
// @Success 200 {object} dto.ProductResponse
// @Router /v1/products/{id} [put]
func (h *ProductsHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id", "Product")
	if !ok {
		return
	}
	var req dto.UpdateProductRequest
	if !bindAndValidate(c, &req) {
		return
	}
	res, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	body := gin.H{"product": res.Product}
	if !res.Changed {
		body["message"] = "No changes detected"
	}
	respond(c, http.StatusOK, body)
}

func (h *ProductsHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id", "Product")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"message": "Product " + id.String() + " deleted"})
}

// Import godoc
// @Summary Bulk import products; suppliers are matched by name and created when missing
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.ImportProductsRequest true "Rows"
// @Success 201 {object} dto.ImportProductsResponse
// @Router /v1/products/import [post]
func (h *ProductsHandler) Import(c *gin.Context) {
	var req dto.ImportProductsRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Import(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, gin.H{"created": resp.Created, "failed": resp.Failed})
}

// DistinctValues lists the values in use for gender, size or color_print.
func (h *ProductsHandler) DistinctValues(c *gin.Context) {
	field := c.Param("field")
	values, err := h.svc.DistinctValues(c.Request.Context(), field)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"field": field, "values": values})
}
