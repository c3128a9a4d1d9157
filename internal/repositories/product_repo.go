package repositories

import (
	"context"
	"errors"

	"inventory/internal/models"
)

var (
	// ErrProductNotFound is returned when no product has the requested ID.
	ErrProductNotFound = errors.New("product not found")
	// ErrDuplicateSKU is returned when a save would break SKU uniqueness.
	ErrDuplicateSKU = errors.New("duplicate sku")
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	// Save inserts product when it has no ID yet, assigning one, and
	// replaces the stored record otherwise.
	Save(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, id string) (*models.Product, error)
	FindAll(ctx context.Context) ([]models.Product, error)
	ExistsByID(ctx context.Context, id string) (bool, error)
	ExistsBySKU(ctx context.Context, sku string) (bool, error)
	DeleteByID(ctx context.Context, id string) error
}
