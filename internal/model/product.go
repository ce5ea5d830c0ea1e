package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a sellable catalog item owned by exactly one supplier.
// Quantity always equals the signed sum of the product's ledger entries.
type Product struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SKU              *string         `gorm:"column:sku;type:varchar(40);uniqueIndex"`
	Name             string          `gorm:"index;not null"`
	Gender           string          `gorm:"type:varchar(20)"`
	Size             string          `gorm:"type:varchar(20)"`
	ColorPrint       string          `gorm:"type:varchar(50)"`
	SupplierID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	Cost             decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	SalePrice        decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Quantity         int             `gorm:"not null;default:0"`
	ReorderThreshold int             `gorm:"not null"`
	PurchaseDate     *time.Time      `gorm:"type:date"`
	CreatedAt        time.Time
	UpdatedAt        time.Time

	Supplier *Supplier `gorm:"foreignKey:SupplierID"`
}

// IsLowStock reports whether the product sits at or below its reorder threshold.
func (p *Product) IsLowStock() bool { return p.Quantity <= p.ReorderThreshold }

// CostValue is cost × on-hand quantity.
func (p *Product) CostValue() decimal.Decimal {
	return p.Cost.Mul(decimal.NewFromInt(int64(p.Quantity)))
}

// RetailValue is sale price × on-hand quantity.
func (p *Product) RetailValue() decimal.Decimal {
	return p.SalePrice.Mul(decimal.NewFromInt(int64(p.Quantity)))
}
