package dto

type CreateSupplierRequest struct {
	Name string `json:"name" validate:"required,min=1,max=120"`
}

type UpdateSupplierRequest struct {
	Name *string `json:"name" validate:"omitempty,min=1,max=120"`
}

type SupplierResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"created_at"`
}
