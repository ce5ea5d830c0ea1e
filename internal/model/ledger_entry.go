package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerKind enumerates the reasons a product's quantity can change.
type LedgerKind string

const (
	LedgerPurchase   LedgerKind = "purchase"
	LedgerSale       LedgerKind = "sale"
	LedgerReturn     LedgerKind = "return"
	LedgerAdjustment LedgerKind = "adjustment"
)

// Valid reports whether k is one of the known kinds.
func (k LedgerKind) Valid() bool {
	switch k {
	case LedgerPurchase, LedgerSale, LedgerReturn, LedgerAdjustment:
		return true
	}
	return false
}

// LedgerEntry records one signed change of a product's on-hand quantity.
// Entries are insert-only.
type LedgerEntry struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Kind          LedgerKind      `gorm:"type:varchar(20);not null;index"`
	Quantity      int             `gorm:"not null"` // signed delta
	BalanceBefore int             `gorm:"not null"`
	BalanceAfter  int             `gorm:"not null"`
	UnitCost      decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Notes         string
	SaleID        *uuid.UUID `gorm:"type:uuid;index"`
	OccurredAt    time.Time  `gorm:"not null;index"`
	CreatedAt     time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}

func (LedgerEntry) TableName() string { return "ledger_entries" }
