package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"inventory/internal/models"
	"inventory/internal/repositories"
	"inventory/internal/validation"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// MaxDescriptionLength is the longest description a product may carry, in characters.
const MaxDescriptionLength = 500

// Prices are stored as numeric(12,2).
const (
	MaxPriceScale  = 2
	maxPriceDigits = 10
)

var maxPriceExclusive = decimal.New(1, maxPriceDigits)

// EventPublisher receives product events after a write has been persisted.
type EventPublisher interface {
	PublishProductEvent(event models.ProductEvent) error
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo      repositories.ProductRepository
	publisher EventPublisher
	log       *zap.Logger
}

// NewProductService creates a new ProductService. publisher and log may be nil.
func NewProductService(repo repositories.ProductRepository, publisher EventPublisher, log *zap.Logger) *ProductService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProductService{
		repo:      repo,
		publisher: publisher,
		log:       log,
	}
}

// Create validates the SKU, checks it is unused and persists the product.
// Other fields are expected to have been validated at the request boundary.
func (s *ProductService) Create(ctx context.Context, candidate *models.Product) (*models.Product, error) {
	s.log.Debug("Attempting to create product", zap.String("sku", candidate.SKU), zap.String("name", candidate.Name))

	if err := validation.ValidateSKU(candidate.SKU); err != nil {
		s.log.Warn("Rejected product with invalid SKU", zap.String("sku", candidate.SKU))
		return nil, InvalidSkuFormatError(candidate.SKU)
	}
	if err := validatePrice(candidate.Price); err != nil {
		s.log.Warn("Rejected product with invalid price", zap.String("sku", candidate.SKU), zap.Error(err))
		return nil, err
	}

	// Identity and timestamps belong to storage; a preset ID would turn the
	// save into an overwrite of another record.
	candidate.ID = ""
	candidate.CreatedAt, candidate.UpdatedAt = time.Time{}, time.Time{}

	exists, err := s.repo.ExistsBySKU(ctx, candidate.SKU)
	if err != nil {
		return nil, fmt.Errorf("failed to check SKU %s: %w", candidate.SKU, err)
	}
	if exists {
		s.log.Warn("SKU already exists", zap.String("sku", candidate.SKU))
		return nil, SkuAlreadyExistsError(candidate.SKU, nil)
	}

	if err := s.repo.Save(ctx, candidate); err != nil {
		// Another writer may have taken the SKU between the check and the save.
		if errors.Is(err, repositories.ErrDuplicateSKU) {
			s.log.Warn("SKU taken concurrently", zap.String("sku", candidate.SKU))
			return nil, SkuAlreadyExistsError(candidate.SKU, err)
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.log.Info("Product created", zap.String("product_id", candidate.ID), zap.String("sku", candidate.SKU))
	s.publish(models.EventProductCreated, candidate.ID, candidate)
	return candidate, nil
}

// FindAll returns every stored product in storage order.
func (s *ProductService) FindAll(ctx context.Context) ([]models.Product, error) {
	s.log.Debug("Fetching all products")
	products, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	if products == nil {
		products = []models.Product{}
	}
	s.log.Info("Fetched products", zap.Int("count", len(products)))
	return products, nil
}

// FindByID returns the product with the given ID.
func (s *ProductService) FindByID(ctx context.Context, id string) (*models.Product, error) {
	s.log.Debug("Fetching product", zap.String("product_id", id))
	product, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	s.log.Info("Found product", zap.String("product_id", id))
	return product, nil
}

// Update merges the present fields of patch into the stored product.
//
// The SKU may not change. Every present field is validated, in the order
// name, description, price, quantity, status, before any of them is applied,
// so a rejected patch never leaves a partially modified record behind.
func (s *ProductService) Update(ctx context.Context, id string, patch models.ProductPatch) (*models.Product, error) {
	s.log.Debug("Attempting to update product", zap.String("product_id", id))

	existing, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if sku, ok := patch.SKU.Get(); ok && sku != existing.SKU {
		s.log.Warn("Attempt to change immutable SKU",
			zap.String("product_id", id),
			zap.String("from", existing.SKU),
			zap.String("to", sku))
		return nil, SkuChangeError(existing.SKU, sku)
	}

	// Stored records may predate the current SKU rule.
	if err := validation.ValidateSKU(existing.SKU); err != nil {
		s.log.Warn("Stored SKU no longer valid", zap.String("product_id", id), zap.String("sku", existing.SKU))
		return nil, InvalidSkuFormatError(existing.SKU)
	}

	if err := validatePatch(patch); err != nil {
		s.log.Warn("Rejected product update", zap.String("product_id", id), zap.Error(err))
		return nil, err
	}
	applyPatch(existing, patch)

	if err := s.repo.Save(ctx, existing); err != nil {
		return nil, fmt.Errorf("failed to update product %s: %w", id, err)
	}

	s.log.Info("Product updated", zap.String("product_id", id))
	s.publish(models.EventProductUpdated, existing.ID, existing)
	return existing, nil
}

// Delete removes the product with the given ID.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	s.log.Debug("Attempting to delete product", zap.String("product_id", id))

	exists, err := s.repo.ExistsByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check product %s: %w", id, err)
	}
	if !exists {
		s.log.Warn("Product not found for deletion", zap.String("product_id", id))
		return ProductNotFoundError(id, nil)
	}

	if err := s.repo.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			return ProductNotFoundError(id, err)
		}
		return fmt.Errorf("failed to delete product %s: %w", id, err)
	}

	s.log.Info("Product deleted", zap.String("product_id", id))
	s.publish(models.EventProductDeleted, id, nil)
	return nil
}

func (s *ProductService) find(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			s.log.Warn("Product not found", zap.String("product_id", id))
			return nil, ProductNotFoundError(id, err)
		}
		return nil, fmt.Errorf("failed to get product %s: %w", id, err)
	}
	return product, nil
}

func validatePatch(patch models.ProductPatch) error {
	if name, ok := patch.Name.Get(); ok && strings.TrimSpace(name) == "" {
		return IllegalArgumentError("name", "must not be blank")
	}
	if description, ok := patch.Description.Get(); ok && utf8.RuneCountInString(description) > MaxDescriptionLength {
		return IllegalArgumentError("description", fmt.Sprintf("must not exceed %d characters", MaxDescriptionLength))
	}
	if price, ok := patch.Price.Get(); ok {
		if err := validatePrice(price); err != nil {
			return err
		}
	}
	if quantity, ok := patch.Quantity.Get(); ok && quantity < 0 {
		return IllegalArgumentError("quantity", "must be zero or more")
	}
	if status, ok := patch.Status.Get(); ok && !status.Valid() {
		return IllegalArgumentError("status", fmt.Sprintf("unknown status %q", status))
	}
	return nil
}

// validatePrice checks that price is positive and fits the stored column
// without rounding.
func validatePrice(price decimal.Decimal) error {
	if !price.GreaterThan(decimal.Zero) {
		return IllegalArgumentError("price", "must be a positive number")
	}
	if !price.Equal(price.Truncate(MaxPriceScale)) {
		return IllegalArgumentError("price", fmt.Sprintf("must have at most %d decimal places", MaxPriceScale))
	}
	if !price.LessThan(maxPriceExclusive) {
		return IllegalArgumentError("price", fmt.Sprintf("must be less than %s", maxPriceExclusive.String()))
	}
	return nil
}

func applyPatch(p *models.Product, patch models.ProductPatch) {
	if name, ok := patch.Name.Get(); ok {
		p.Name = name
	}
	if description, ok := patch.Description.Get(); ok {
		p.Description = description
	}
	if price, ok := patch.Price.Get(); ok {
		p.Price = price
	}
	if quantity, ok := patch.Quantity.Get(); ok {
		p.Quantity = quantity
	}
	if status, ok := patch.Status.Get(); ok {
		p.Status = status
	}
}

// publish hands the event to the publisher. Failures are logged and never
// undo the write that already succeeded.
func (s *ProductService) publish(eventType, productID string, product *models.Product) {
	if s.publisher == nil {
		return
	}
	event := models.ProductEvent{
		Type:       eventType,
		ProductID:  productID,
		Product:    product,
		OccurredAt: time.Now().UTC(),
	}
	if product != nil {
		event.SKU = product.SKU
	}
	if err := s.publisher.PublishProductEvent(event); err != nil {
		s.log.Warn("Failed to publish product event",
			zap.String("type", eventType),
			zap.String("product_id", productID),
			zap.Error(err))
	}
}
