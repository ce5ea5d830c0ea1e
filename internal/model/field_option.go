package model

import (
	"time"

	"github.com/google/uuid"
)

// FieldOptionType tags the product attribute an option feeds.
type FieldOptionType string

const (
	OptionSize       FieldOptionType = "size"
	OptionColorPrint FieldOptionType = "color_print"
	OptionSupplier   FieldOptionType = "supplier"
)

func (t FieldOptionType) Valid() bool {
	switch t {
	case OptionSize, OptionColorPrint, OptionSupplier:
		return true
	}
	return false
}

// FieldOption is an allowed value for a product attribute.
type FieldOption struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Type      FieldOptionType `gorm:"type:varchar(20);not null;index"`
	Value     string          `gorm:"not null"`
	Active    bool            `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
