package model

import (
	"time"

	"github.com/google/uuid"
)

// Supplier owns products. Suppliers are never deleted, only deactivated.
type Supplier struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"not null"` // unique on lower(name), see infra schema patches
	Active    bool      `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Products []Product `gorm:"foreignKey:SupplierID"`
}
