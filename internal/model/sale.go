package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale is an immutable record of a completed multi-line sale.
type Sale struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ClientID  *uuid.UUID      `gorm:"type:uuid;index"`
	SoldAt    time.Time       `gorm:"not null;index"`
	Total     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Notes     string
	CreatedAt time.Time

	Client *Client    `gorm:"foreignKey:ClientID"`
	Lines  []SaleLine `gorm:"foreignKey:SaleID"`
}

// Cost is the sum of the lines' cost snapshots.
func (s *Sale) Cost() decimal.Decimal {
	total := decimal.Zero
	for i := range s.Lines {
		total = total.Add(s.Lines[i].CostTotal())
	}
	return total
}

// SaleLine freezes price and cost at the moment of sale.
type SaleLine struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position  int             `gorm:"not null"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity  int             `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	UnitCost  decimal.Decimal `gorm:"type:decimal(10,2);not null"`

	Product *Product `gorm:"foreignKey:ProductID"`
}

// Subtotal is unit price × quantity, never stored.
func (l *SaleLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CostTotal is unit cost × quantity.
func (l *SaleLine) CostTotal() decimal.Decimal {
	return l.UnitCost.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
