package model

import (
	"time"

	"github.com/google/uuid"
)

// Client is a buyer. Lifetime spend is computed from sales on read.
type Client struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"not null;index"`
	Phone     *string
	Email     *string
	Address   *string
	Notes     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}
