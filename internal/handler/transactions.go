package handler

import (
	"net/http"

	"shopinventory/internal/dto"
	"shopinventory/internal/service"

	"github.com/gin-gonic/gin"
)

// TransactionsHandler exposes the stock ledger. Only adjustment and return
// movements can be posted; purchases and sales are written by the system.
type TransactionsHandler struct{ svc service.LedgerService }

func NewTransactionsHandler(svc service.LedgerService) *TransactionsHandler {
	return &TransactionsHandler{svc: svc}
}

// Create godoc
// @Summary Post a manual stock movement (adjustment or return)
// @Tags transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreateTransactionRequest true "Movement"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} apierror.APIError
// @Failure 404 {object} apierror.APIError
// @Router /v1/transactions [post]
func (h *TransactionsHandler) Create(c *gin.Context) {
	var req dto.CreateTransactionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RecordManual(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, gin.H{
		"transaction":          resp.Entry,
		"new_product_quantity": resp.NewProductQuantity,
	})
}

func (h *TransactionsHandler) List(c *gin.Context) {
	var filter dto.LedgerFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{
		"transactions": resp.Data,
		"total":        resp.Total,
		"page":         resp.Page,
		"limit":        resp.Limit,
	})
}
