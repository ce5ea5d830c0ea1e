package dto

import "github.com/shopspring/decimal"

// CreateTransactionRequest is a manual stock movement. Only adjustment and return
// are accepted; purchase and sale entries are generated by the system.
type CreateTransactionRequest struct {
	ProductID string  `json:"product_id" validate:"required,uuid"`
	Kind      string  `json:"kind"       validate:"required"`
	Quantity  int     `json:"quantity"`
	Notes     string  `json:"notes"      validate:"max=1000"`
	Date      *string `json:"date"`
}

type LedgerFilter struct {
	ProductID string `form:"product_id"`
	Kind      string `form:"kind"`
	Page      int    `form:"page,default=1"    validate:"min=1"`
	Limit     int    `form:"limit,default=100" validate:"min=1,max=500"`
}

type LedgerEntryResponse struct {
	ID            string          `json:"id"`
	ProductID     string          `json:"product_id"`
	ProductName   string          `json:"product_name,omitempty"`
	Kind          string          `json:"kind"`
	Quantity      int             `json:"quantity"`
	BalanceBefore int             `json:"balance_before"`
	BalanceAfter  int             `json:"balance_after"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	Notes         string          `json:"notes"`
	SaleID        *string         `json:"sale_id"`
	OccurredAt    string          `json:"occurred_at"`
}

type LedgerListResponse struct {
	Data  []LedgerEntryResponse `json:"data"`
	Total int64                 `json:"total"`
	Page  int                   `json:"page"`
	Limit int                   `json:"limit"`
}

type TransactionResponse struct {
	Entry              LedgerEntryResponse `json:"transaction"`
	NewProductQuantity int                 `json:"new_product_quantity"`
}
