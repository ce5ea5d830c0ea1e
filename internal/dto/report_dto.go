package dto

import "github.com/shopspring/decimal"

type StockLevel struct {
	ProductID        string  `json:"product_id"`
	SKU              *string `json:"sku"`
	Name             string  `json:"name"`
	Quantity         int     `json:"quantity"`
	ReorderThreshold int     `json:"reorder_threshold"`
	LowStock         bool    `json:"low_stock"`
}

type InventoryValuation struct {
	TotalSKUs        int             `json:"total_skus"`
	TotalQuantity    int             `json:"total_quantity"`
	TotalCostValue   decimal.Decimal `json:"total_cost_value"`
	TotalRetailValue decimal.Decimal `json:"total_retail_value"`
}

type TopProduct struct {
	ProductID    string          `json:"product_id"`
	Name         string          `json:"name"`
	SKU          *string         `json:"sku"`
	QuantitySold int             `json:"quantity_sold"`
	Revenue      decimal.Decimal `json:"revenue"`
}

type SalesSummary struct {
	Start         string          `json:"start"`
	End           string          `json:"end"`
	NumberOfSales int             `json:"number_of_sales"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	TotalCOGS     decimal.Decimal `json:"total_cogs"`
	GrossProfit   decimal.Decimal `json:"gross_profit"`
	TopProducts   []TopProduct    `json:"top_products"`
}

type SupplierSummary struct {
	SupplierID       string          `json:"supplier_id"`
	Name             string          `json:"name"`
	Active           bool            `json:"active"`
	ProductCount     int             `json:"product_count"`
	TotalQuantity    int             `json:"total_quantity"`
	StockCostValue   decimal.Decimal `json:"stock_cost_value"`
	StockRetailValue decimal.Decimal `json:"stock_retail_value"`
}

type ClientSummary struct {
	ClientID      string          `json:"client_id"`
	Name          string          `json:"name"`
	PurchaseCount int             `json:"purchase_count"`
	TotalSpent    decimal.Decimal `json:"total_spent"`
}

type Overview struct {
	TotalProducts    int             `json:"total_products"`
	TotalCostValue   decimal.Decimal `json:"total_cost_value"`
	TotalRetailValue decimal.Decimal `json:"total_retail_value"`
	LowStockCount    int             `json:"low_stock_count"`
}

// LedgerDrift lists a product whose quantity disagrees with its ledger sum.
type LedgerDrift struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	LedgerSum int    `json:"ledger_sum"`
}
