package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateProductRequest struct {
	Name             string           `json:"name"              validate:"required,min=1,max=120"`
	Gender           string           `json:"gender"            validate:"max=20"`
	Size             string           `json:"size"              validate:"max=20"`
	ColorPrint       string           `json:"color_print"       validate:"max=50"`
	SupplierID       string           `json:"supplier_id"       validate:"required,uuid"`
	Cost             *decimal.Decimal `json:"cost"              validate:"omitempty,min=0"`
	SalePrice        *decimal.Decimal `json:"sale_price"        validate:"omitempty,min=0"`
	Quantity         int              `json:"quantity"          validate:"min=0"`
	ReorderThreshold *int             `json:"reorder_threshold" validate:"omitempty,min=0"`
	PurchaseDate     *string          `json:"purchase_date"` // YYYY-MM-DD
}

// UpdateProductRequest never carries quantity: stock only moves through the ledger.
type UpdateProductRequest struct {
	Name             *string          `json:"name"              validate:"omitempty,min=1,max=120"`
	Gender           *string          `json:"gender"            validate:"omitempty,max=20"`
	Size             *string          `json:"size"              validate:"omitempty,max=20"`
	ColorPrint       *string          `json:"color_print"       validate:"omitempty,max=50"`
	SupplierID       *string          `json:"supplier_id"       validate:"omitempty,uuid"`
	Cost             *decimal.Decimal `json:"cost"              validate:"omitempty,min=0"`
	SalePrice        *decimal.Decimal `json:"sale_price"        validate:"omitempty,min=0"`
	ReorderThreshold *int             `json:"reorder_threshold" validate:"omitempty,min=0"`
	PurchaseDate     *string          `json:"purchase_date"`
}

// ImportProductRow references its supplier by name. Rows are checked one by one
// so a bad row is reported in the import result instead of failing the batch.
type ImportProductRow struct {
	Name         string          `json:"name"          validate:"required,min=1,max=120"`
	Gender       string          `json:"gender"`
	Size         string          `json:"size"`
	ColorPrint   string          `json:"color_print"`
	Supplier     string          `json:"supplier"      validate:"required"`
	Cost         decimal.Decimal `json:"cost"          validate:"min=0"`
	SalePrice    decimal.Decimal `json:"sale_price"    validate:"min=0"`
	Quantity     int             `json:"quantity"      validate:"min=0"`
	PurchaseDate *string         `json:"purchase_date"`
}

type ImportProductsRequest struct {
	Products []ImportProductRow `json:"products" validate:"required,min=1,max=1000"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ProductFilter struct {
	Query      string `form:"q"`
	SupplierID string `form:"supplier_id"`
	LowStock   bool   `form:"low_stock"`
	Page       int    `form:"page,default=1"    validate:"min=1"`
	Limit      int    `form:"limit,default=50"  validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductResponse struct {
	ID               string          `json:"id"`
	SKU              *string         `json:"sku"`
	Name             string          `json:"name"`
	Gender           string          `json:"gender"`
	Size             string          `json:"size"`
	ColorPrint       string          `json:"color_print"`
	SupplierID       string          `json:"supplier_id"`
	SupplierName     string          `json:"supplier_name,omitempty"`
	Cost             decimal.Decimal `json:"cost"`
	SalePrice        decimal.Decimal `json:"sale_price"`
	Quantity         int             `json:"quantity"`
	ReorderThreshold int             `json:"reorder_threshold"`
	LowStock         bool            `json:"low_stock"`
	PurchaseDate     *string         `json:"purchase_date"`
	CreatedAt        string          `json:"created_at"`
	UpdatedAt        string          `json:"updated_at"`
}

type ProductListResponse struct {
	Data       []ProductResponse `json:"data"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}

// ProductUpdateResult tells callers whether anything actually changed.
type ProductUpdateResult struct {
	Product ProductResponse
	Changed bool
}

type ImportRowError struct {
	Row   int    `json:"row"`
	Name  string `json:"name"`
	Error string `json:"error"`
}

type ImportProductsResponse struct {
	Created []ProductResponse `json:"created"`
	Failed  []ImportRowError  `json:"failed"`
}
