package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// SaleLineRequest quantity is checked by the sales engine so the failing line is reported in order.
type SaleLineRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity"`
}

type CreateSaleRequest struct {
	ClientID *string           `json:"client_id"`
	SoldAt   *string           `json:"sold_at"` // unparsable values fall back to now
	Notes    string            `json:"notes"    validate:"max=1000"`
	Lines    []SaleLineRequest `json:"lines"    validate:"dive"`
}

// ─── Filter / List ──────────────────────────────────────────────────────────

type SaleFilter struct {
	ClientID string `form:"client_id"`
	Page     int    `form:"page,default=1"   validate:"min=1"`
	Limit    int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SaleLineResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	SKU         *string         `json:"sku,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type SaleResponse struct {
	ID         string                `json:"id"`
	ClientID   *string               `json:"client_id"`
	ClientName *string               `json:"client_name,omitempty"`
	SoldAt     string                `json:"sold_at"`
	Total      decimal.Decimal       `json:"total"`
	Notes      string                `json:"notes"`
	Lines      []SaleLineResponse    `json:"lines"`
	Ledger     []LedgerEntryResponse `json:"ledger,omitempty"`
}

type SaleListResponse struct {
	Data  []SaleResponse `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}
