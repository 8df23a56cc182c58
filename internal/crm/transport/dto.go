package transport

import (
	"time"

	"github.com/google/uuid"
)

type CreateCompanyRequest struct {
	Name    string  `json:"name" validate:"required,max=200"`
	Website *string `json:"website" validate:"omitempty,url"`
	Notes   *string `json:"notes"`
}

type UpdateCompanyRequest struct {
	Name    *string `json:"name" validate:"omitempty,max=200"`
	Website *string `json:"website" validate:"omitempty,url"`
	Notes   *string `json:"notes"`
}

type CompanyResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Website   *string   `json:"website,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CreateClientRequest struct {
	CompanyID *uuid.UUID `json:"companyId"`
	Name      string     `json:"name" validate:"required,max=200"`
	Email     *string    `json:"email" validate:"omitempty,email"`
	Phone     *string    `json:"phone"`
	Notes     *string    `json:"notes"`
}

type UpdateClientRequest struct {
	CompanyID *uuid.UUID `json:"companyId"`
	Name      *string    `json:"name" validate:"omitempty,max=200"`
	Email     *string    `json:"email" validate:"omitempty,email"`
	Phone     *string    `json:"phone"`
	Notes     *string    `json:"notes"`
}

type ClientResponse struct {
	ID        uuid.UUID  `json:"id"`
	CompanyID *uuid.UUID `json:"companyId,omitempty"`
	Name      string     `json:"name"`
	Email     *string    `json:"email,omitempty"`
	Phone     *string    `json:"phone,omitempty"`
	Notes     *string    `json:"notes,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}
