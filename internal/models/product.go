package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductStatus is the lifecycle state of a product.
type ProductStatus string

const (
	StatusActive       ProductStatus = "ACTIVE"
	StatusDiscontinued ProductStatus = "DISCONTINUED"
	StatusOutOfStock   ProductStatus = "OUT_OF_STOCK"
)

// Valid reports whether s is one of the known lifecycle states.
func (s ProductStatus) Valid() bool {
	switch s {
	case StatusActive, StatusDiscontinued, StatusOutOfStock:
		return true
	}
	return false
}

// Product represents an inventory item identified by its SKU.
type Product struct {
	ID          string          `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name        string          `json:"name" gorm:"type:varchar(255);not null" validate:"required,notblank"`
	Description string          `json:"description" gorm:"type:varchar(500)" validate:"omitempty,max=500"`
	SKU         string          `json:"sku" gorm:"type:varchar(12);not null;uniqueIndex:uk_products_sku" validate:"required,notblank"`
	Price       decimal.Decimal `json:"price" gorm:"type:numeric(12,2);not null" validate:"required,gt=0"`
	Quantity    int             `json:"quantity" gorm:"not null" validate:"gte=0"`
	Status      ProductStatus   `json:"status" gorm:"type:varchar(20);not null" validate:"required,oneof=ACTIVE DISCONTINUED OUT_OF_STOCK"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
