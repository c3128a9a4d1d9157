package repositories

import (
	"context"
	"fmt"
	"sync"
	"time"

	"inventory/internal/models"

	"github.com/google/uuid"
)

// MockProductRepository is an in-memory implementation of ProductRepository.
// SKU uniqueness is enforced through a secondary index.
type MockProductRepository struct {
	products map[string]models.Product
	skus     map[string]string // sku -> id
	order    []string
	mu       sync.RWMutex
}

// NewMockProductRepository creates a new instance of MockProductRepository.
func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{
		products: make(map[string]models.Product),
		skus:     make(map[string]string),
	}
}

// FindAll returns all products in insertion order.
func (r *MockProductRepository) FindAll(_ context.Context) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := make([]models.Product, 0, len(r.order))
	for _, id := range r.order {
		productList = append(productList, r.products[id])
	}
	return productList, nil
}

// FindByID returns a product by its ID.
func (r *MockProductRepository) FindByID(_ context.Context, id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product with ID %s: %w", id, ErrProductNotFound)
	}
	return &product, nil
}

// ExistsByID reports whether a product with the given ID is stored.
func (r *MockProductRepository) ExistsByID(_ context.Context, id string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.products[id]
	return ok, nil
}

// ExistsBySKU reports whether a product with the given SKU is stored.
func (r *MockProductRepository) ExistsBySKU(_ context.Context, sku string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.skus[sku]
	return ok, nil
}

// Save adds a new product or replaces an existing one.
func (r *MockProductRepository) Save(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if owner, ok := r.skus[product.SKU]; ok && owner != product.ID {
		return fmt.Errorf("sku %s: %w", product.SKU, ErrDuplicateSKU)
	}

	now := time.Now()
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if existing, ok := r.products[product.ID]; ok {
		// Keep the sku index consistent if a caller bypassed the service.
		delete(r.skus, existing.SKU)
		product.CreatedAt = existing.CreatedAt
	} else {
		if product.CreatedAt.IsZero() {
			product.CreatedAt = now
		}
		r.order = append(r.order, product.ID)
	}
	product.UpdatedAt = now

	r.products[product.ID] = *product
	r.skus[product.SKU] = product.ID
	return nil
}

// DeleteByID removes a product by its ID.
func (r *MockProductRepository) DeleteByID(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return fmt.Errorf("product with ID %s: %w", id, ErrProductNotFound)
	}
	delete(r.skus, product.SKU)
	delete(r.products, id)
	for i, orderedID := range r.order {
		if orderedID == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

var _ ProductRepository = (*MockProductRepository)(nil)
