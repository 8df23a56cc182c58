package transport

import (
	"time"

	"github.com/google/uuid"
)

type CreateProductRequest struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Description *string `json:"description"`
	SKU         string  `json:"sku" validate:"required,max=64"`
	UnitPrice   string  `json:"unitPrice" validate:"required"`
	IsActive    *bool   `json:"isActive"`
}

type UpdateProductRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=200"`
	Description *string `json:"description"`
	SKU         *string `json:"sku" validate:"omitempty,max=64"`
	UnitPrice   *string `json:"unitPrice"`
	IsActive    *bool   `json:"isActive"`
}

type ProductResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	SKU         string    `json:"sku"`
	UnitPrice   string    `json:"unitPrice"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type CreateServiceRequest struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Description *string `json:"description"`
	UnitPrice   string  `json:"unitPrice" validate:"required"`
	IsActive    *bool   `json:"isActive"`
}

type UpdateServiceRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=200"`
	Description *string `json:"description"`
	UnitPrice   *string `json:"unitPrice"`
	IsActive    *bool   `json:"isActive"`
}

type ServiceResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	UnitPrice   string    `json:"unitPrice"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type CreateWarehouseRequest struct {
	Name string `json:"name" validate:"required,max=200"`
	Code string `json:"code" validate:"required,max=32"`
}

type WarehouseResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"createdAt"`
}

type InventoryLevelResponse struct {
	ProductID   uuid.UUID `json:"productId"`
	WarehouseID uuid.UUID `json:"warehouseId"`
	OnHand      int       `json:"onHand"`
	Reserved    int       `json:"reserved"`
	Available   int       `json:"available"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type SetLevelRequest struct {
	ProductID   uuid.UUID `json:"productId" validate:"required"`
	WarehouseID uuid.UUID `json:"warehouseId" validate:"required"`
	OnHand      int       `json:"onHand" validate:"min=0"`
}

type AdjustInventoryRequest struct {
	ProductID   uuid.UUID `json:"productId" validate:"required"`
	WarehouseID uuid.UUID `json:"warehouseId" validate:"required"`
	Delta       int       `json:"delta" validate:"required"`
}
