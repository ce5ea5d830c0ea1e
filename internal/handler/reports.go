package handler

import (
	"net/http"

	"shopinventory/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportsHandler struct{ svc service.ReportService }

func NewReportsHandler(svc service.ReportService) *ReportsHandler {
	return &ReportsHandler{svc: svc}
}

func (h *ReportsHandler) StockLevels(c *gin.Context) {
	resp, err := h.svc.StockLevels(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"stock_levels": resp})
}

func (h *ReportsHandler) InventoryValue(c *gin.Context) {
	resp, err := h.svc.InventoryValuation(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"inventory_value": resp})
}

// LowStock serves both /alerts/low-stock and /reports/low-stock.
func (h *ReportsHandler) LowStock(c *gin.Context) {
	resp, err := h.svc.LowStock(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"low_stock_products": resp})
}

// SalesSummary godoc
// @Summary Sales, COGS and gross profit over a date range
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param start_date query string false "YYYY-MM-DD, defaults to 30 days before end_date"
// @Param end_date query string false "YYYY-MM-DD, defaults to today"
// @Success 200 {object} dto.SalesSummary
// @Failure 400 {object} apierror.APIError
// @Router /v1/reports/sales-summary [get]
func (h *ReportsHandler) SalesSummary(c *gin.Context) {
	resp, err := h.svc.SalesSummary(c.Request.Context(), c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{
		"period":        gin.H{"start": resp.Start, "end": resp.End},
		"sales_summary": resp,
	})
}

func (h *ReportsHandler) Suppliers(c *gin.Context) {
	resp, err := h.svc.SupplierSummary(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"supplier_summary": resp})
}

func (h *ReportsHandler) Clients(c *gin.Context) {
	resp, err := h.svc.ClientSummary(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"client_summary": resp})
}

func (h *ReportsHandler) Overview(c *gin.Context) {
	resp, err := h.svc.Overview(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"summary": resp})
}

// LedgerDrift lists products whose stored quantity no longer matches their ledger.
// An empty list is the healthy state.
func (h *ReportsHandler) LedgerDrift(c *gin.Context) {
	resp, err := h.svc.LedgerDrift(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"drift": resp})
}
