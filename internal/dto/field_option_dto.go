package dto

type CreateFieldOptionRequest struct {
	Value string `json:"value" validate:"required,max=80"`
}

type FieldOptionResponse struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Value  string `json:"value"`
	Active bool   `json:"active"`
}
