package dto

import "github.com/shopspring/decimal"

type CreateClientRequest struct {
	Name    string  `json:"name"    validate:"required,min=1,max=120"`
	Phone   *string `json:"phone"   validate:"omitempty,max=40"`
	Email   *string `json:"email"   validate:"omitempty,email"`
	Address *string `json:"address"`
	Notes   *string `json:"notes"`
}

type UpdateClientRequest struct {
	Name    *string `json:"name"    validate:"omitempty,min=1,max=120"`
	Phone   *string `json:"phone"   validate:"omitempty,max=40"`
	Email   *string `json:"email"   validate:"omitempty,email"`
	Address *string `json:"address"`
	Notes   *string `json:"notes"`
}

type ClientResponse struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Phone      *string         `json:"phone"`
	Email      *string         `json:"email"`
	Address    *string         `json:"address"`
	Notes      *string         `json:"notes"`
	TotalSpent decimal.Decimal `json:"total_spent"`
	CreatedAt  string          `json:"created_at"`
}
