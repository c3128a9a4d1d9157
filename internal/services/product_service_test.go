package services_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"inventory/internal/models"
	"inventory/internal/repositories"
	"inventory/internal/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Save(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context) ([]models.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) ExistsByID(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) ExistsBySKU(ctx context.Context, sku string) (bool, error) {
	args := m.Called(ctx, sku)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) DeleteByID(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of services.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishProductEvent(event models.ProductEvent) error {
	args := m.Called(event)
	return args.Error(0)
}

func newProduct(sku string) *models.Product {
	return &models.Product{
		Name:        "Laptop",
		Description: "High performance laptop",
		SKU:         sku,
		Price:       decimal.RequireFromString("1200.00"),
		Quantity:    10,
		Status:      models.StatusActive,
	}
}

func eventOfType(eventType string) interface{} {
	return mock.MatchedBy(func(e models.ProductEvent) bool { return e.Type == eventType })
}

func TestProductService_Create(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	publisher := new(MockEventPublisher)
	service := services.NewProductService(mockRepo, publisher, nil)

	candidate := newProduct("SKU-AB12cd34")

	mockRepo.On("ExistsBySKU", ctx, "SKU-AB12cd34").Return(false, nil).Once()
	mockRepo.On("Save", ctx, candidate).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Product).ID = "generated-id"
	}).Return(nil).Once()
	publisher.On("PublishProductEvent", eventOfType(models.EventProductCreated)).Return(nil).Once()

	created, err := service.Create(ctx, candidate)
	require.NoError(t, err)
	assert.Equal(t, "generated-id", created.ID)
	mockRepo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestProductService_CreateRejectsUnstorablePrice(t *testing.T) {
	for _, price := range []string{"0", "-1", "0.001", "19.999", "10000000000"} {
		t.Run(price, func(t *testing.T) {
			ctx := context.Background()
			mockRepo := new(MockProductRepository)
			service := services.NewProductService(mockRepo, nil, nil)

			candidate := newProduct("SKU-AB12cd34")
			candidate.Price = decimal.RequireFromString(price)

			_, err := service.Create(ctx, candidate)
			require.Error(t, err)
			assert.True(t, services.IsIllegalArgument(err))
			assert.Equal(t, "price", services.AsProductError(err).Field)
			mockRepo.AssertNotCalled(t, "ExistsBySKU", mock.Anything, mock.Anything)
			mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		})
	}
}

func TestProductService_CreateClearsPresetID(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil, nil)

	candidate := newProduct("SKU-AB12cd34")
	candidate.ID = "existing-id"

	mockRepo.On("ExistsBySKU", ctx, "SKU-AB12cd34").Return(false, nil).Once()
	mockRepo.On("Save", ctx, mock.MatchedBy(func(p *models.Product) bool {
		return p.ID == ""
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Product).ID = "generated-id"
	}).Return(nil).Once()

	created, err := service.Create(ctx, candidate)
	require.NoError(t, err)
	assert.Equal(t, "generated-id", created.ID)
	mockRepo.AssertExpectations(t)
}

func TestProductService_CreateInvalidSKU(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil, nil)

	created, err := service.Create(ctx, newProduct("BAD-SKU"))
	assert.Nil(t, created)
	require.Error(t, err)
	assert.True(t, services.IsInvalidSkuFormat(err))
	assert.Contains(t, err.Error(), "BAD-SKU")

	// Nothing reaches storage for a malformed SKU.
	mockRepo.AssertNotCalled(t, "ExistsBySKU", mock.Anything, mock.Anything)
	mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestProductService_CreateDuplicateSKU(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	publisher := new(MockEventPublisher)
	service := services.NewProductService(mockRepo, publisher, nil)

	mockRepo.On("ExistsBySKU", ctx, "SKU-AB12cd34").Return(true, nil).Once()

	_, err := service.Create(ctx, newProduct("SKU-AB12cd34"))
	require.Error(t, err)
	assert.True(t, services.IsSkuAlreadyExists(err))
	assert.Equal(t, "A product with SKU 'SKU-AB12cd34' already exists", err.Error())
	mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	publisher.AssertNotCalled(t, "PublishProductEvent", mock.Anything)
}

func TestProductService_CreateLateUniquenessViolation(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil, nil)

	mockRepo.On("ExistsBySKU", ctx, "SKU-AB12cd34").Return(false, nil).Once()
	mockRepo.On("Save", ctx, mock.Anything).
		Return(fmt.Errorf("sku SKU-AB12cd34: %w", repositories.ErrDuplicateSKU)).Once()

	_, err := service.Create(ctx, newProduct("SKU-AB12cd34"))
	require.Error(t, err)
	assert.True(t, services.IsSkuAlreadyExists(err))
	assert.ErrorIs(t, err, repositories.ErrDuplicateSKU)
	mockRepo.AssertExpectations(t)
}

func TestProductService_CreateStorageFailure(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil, nil)

	mockRepo.On("ExistsBySKU", ctx, "SKU-AB12cd34").Return(false, nil).Once()
	mockRepo.On("Save", ctx, mock.Anything).Return(fmt.Errorf("database error")).Once()

	_, err := service.Create(ctx, newProduct("SKU-AB12cd34"))
	require.Error(t, err)
	assert.Nil(t, services.AsProductError(err))
	assert.Contains(t, err.Error(), "database error")
}

func TestProductService_CreatePublishFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	publisher := new(MockEventPublisher)
	service := services.NewProductService(mockRepo, publisher, nil)

	mockRepo.On("ExistsBySKU", ctx, "SKU-AB12cd34").Return(false, nil).Once()
	mockRepo.On("Save", ctx, mock.Anything).Return(nil).Once()
	publisher.On("PublishProductEvent", mock.Anything).Return(fmt.Errorf("broker down")).Once()

	_, err := service.Create(ctx, newProduct("SKU-AB12cd34"))
	assert.NoError(t, err)
	publisher.AssertExpectations(t)
}

func TestProductService_FindAll(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil, nil)

	expectedProducts := []models.Product{*newProduct("SKU-AAAA0001"), *newProduct("SKU-AAAA0002")}
	mockRepo.On("FindAll", ctx).Return(expectedProducts, nil).Once()

	products, err := service.FindAll(ctx)
	assert.NoError(t, err)
	assert.Len(t, products, 2)
	assert.Equal(t, expectedProducts, products)

	mockRepo.On("FindAll", ctx).Return(nil, nil).Once()
	products, err = service.FindAll(ctx)
	assert.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
	mockRepo.AssertExpectations(t)
}

func TestProductService_FindByID(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil, nil)

	expectedProduct := newProduct("SKU-AB12cd34")
	expectedProduct.ID = "1"

	mockRepo.On("FindByID", ctx, "1").Return(expectedProduct, nil).Once()
	product, err := service.FindByID(ctx, "1")
	assert.NoError(t, err)
	assert.Equal(t, expectedProduct, product)

	mockRepo.On("FindByID", ctx, "99").
		Return(nil, fmt.Errorf("product with ID 99: %w", repositories.ErrProductNotFound)).Once()
	product, err = service.FindByID(ctx, "99")
	assert.Nil(t, product)
	require.Error(t, err)
	assert.True(t, services.IsProductNotFound(err))
	assert.Equal(t, "Product not found with ID: 99", err.Error())

	mockRepo.On("FindByID", ctx, "500").Return(nil, fmt.Errorf("connection reset")).Once()
	_, err = service.FindByID(ctx, "500")
	require.Error(t, err)
	assert.False(t, services.IsProductNotFound(err))
	mockRepo.AssertExpectations(t)
}

func TestProductService_UpdatePriceOnly(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	publisher := new(MockEventPublisher)
	service := services.NewProductService(mockRepo, publisher, nil)

	existing := newProduct("SKU-AB12cd34")
	existing.ID = "1"
	before := *existing

	mockRepo.On("FindByID", ctx, "1").Return(existing, nil).Once()
	mockRepo.On("Save", ctx, existing).Return(nil).Once()
	publisher.On("PublishProductEvent", eventOfType(models.EventProductUpdated)).Return(nil).Once()

	newPrice := decimal.RequireFromString("999.99")
	updated, err := service.Update(ctx, "1", models.ProductPatch{Price: models.Some(newPrice)})
	require.NoError(t, err)

	assert.True(t, newPrice.Equal(updated.Price))
	assert.Equal(t, before.Name, updated.Name)
	assert.Equal(t, before.Description, updated.Description)
	assert.Equal(t, before.SKU, updated.SKU)
	assert.Equal(t, before.Quantity, updated.Quantity)
	assert.Equal(t, before.Status, updated.Status)
	mockRepo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestProductService_UpdateAllFields(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil, nil)

	existing := newProduct("SKU-AB12cd34")
	existing.ID = "1"
	mockRepo.On("FindByID", ctx, "1").Return(existing, nil).Once()
	mockRepo.On("Save", ctx, existing).Return(nil).Once()

	updated, err := service.Update(ctx, "1", models.ProductPatch{
		Name:        models.Some("Laptop Pro"),
		Description: models.Some(""),
		SKU:         models.Some("SKU-AB12cd34"), // unchanged SKU is accepted
		Price:       models.Some(decimal.NewFromInt(1500)),
		Quantity:    models.Some(0),
		Status:      models.Some(models.StatusOutOfStock),
	})
	require.NoError(t, err)
	assert.Equal(t, "Laptop Pro", updated.Name)
	assert.Equal(t, "", updated.Description)
	assert.Equal(t, 0, updated.Quantity)
	assert.Equal(t, models.StatusOutOfStock, updated.Status)
	mockRepo.AssertExpectations(t)
}

func TestProductService_UpdateNotFound(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil, nil)

	mockRepo.On("FindByID", ctx, "99").
		Return(nil, fmt.Errorf("product with ID 99: %w", repositories.ErrProductNotFound)).Once()

	_, err := service.Update(ctx, "99", models.ProductPatch{Quantity: models.Some(1)})
	require.Error(t, err)
	assert.True(t, services.IsProductNotFound(err))
	mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestProductService_UpdateSKUChangeRejected(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil, nil)

	existing := newProduct("SKU-AB12cd34")
	existing.ID = "1"
	mockRepo.On("FindByID", ctx, "1").Return(existing, nil).Once()

	_, err := service.Update(ctx, "1", models.ProductPatch{SKU: models.Some("SKU-ZZZZ9999")})
	require.Error(t, err)
	assert.True(t, services.IsInvalidSkuFormat(err))
	assert.Equal(t, "SKU change is not allowed from SKU-AB12cd34 to SKU-ZZZZ9999", err.Error())
	assert.Equal(t, "SKU-AB12cd34", existing.SKU)
	mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestProductService_UpdateStaleStoredSKU(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil, nil)

	existing := newProduct("LEGACY-1")
	existing.ID = "1"
	mockRepo.On("FindByID", ctx, "1").Return(existing, nil).Once()

	_, err := service.Update(ctx, "1", models.ProductPatch{Quantity: models.Some(5)})
	require.Error(t, err)
	assert.True(t, services.IsInvalidSkuFormat(err))
	assert.Equal(t, 10, existing.Quantity)
	mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestProductService_UpdateFieldValidation(t *testing.T) {
	cases := []struct {
		name  string
		patch models.ProductPatch
		field string
	}{
		{"blank name", models.ProductPatch{Name: models.Some("  ")}, "name"},
		{"empty name", models.ProductPatch{Name: models.Some("")}, "name"},
		{"long description", models.ProductPatch{Description: models.Some(strings.Repeat("x", 501))}, "description"},
		{"zero price", models.ProductPatch{Price: models.Some(decimal.Zero)}, "price"},
		{"negative price", models.ProductPatch{Price: models.Some(decimal.NewFromInt(-5))}, "price"},
		{"price with three decimals", models.ProductPatch{Price: models.Some(decimal.RequireFromString("0.001"))}, "price"},
		{"price beyond column range", models.ProductPatch{Price: models.Some(decimal.RequireFromString("10000000000"))}, "price"},
		{"negative quantity", models.ProductPatch{Quantity: models.Some(-1)}, "quantity"},
		{"unknown status", models.ProductPatch{Status: models.Some(models.ProductStatus("SOLD"))}, "status"},
		{
			"first failing field wins",
			models.ProductPatch{Name: models.Some(""), Quantity: models.Some(-1)},
			"name",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			mockRepo := new(MockProductRepository)
			service := services.NewProductService(mockRepo, nil, nil)

			existing := newProduct("SKU-AB12cd34")
			existing.ID = "1"
			before := *existing
			mockRepo.On("FindByID", ctx, "1").Return(existing, nil).Once()

			_, err := service.Update(ctx, "1", tc.patch)
			require.Error(t, err)
			assert.True(t, services.IsIllegalArgument(err))
			assert.Equal(t, tc.field, services.AsProductError(err).Field)
			assert.Contains(t, err.Error(), tc.field)

			// No field is applied when any field is rejected.
			assert.Equal(t, before, *existing)
			mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		})
	}
}

func TestProductService_UpdateDescriptionAtLimit(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil, nil)

	existing := newProduct("SKU-AB12cd34")
	existing.ID = "1"
	mockRepo.On("FindByID", ctx, "1").Return(existing, nil).Once()
	mockRepo.On("Save", ctx, existing).Return(nil).Once()

	// 500 multi-byte characters is still within the limit.
	description := strings.Repeat("é", services.MaxDescriptionLength)
	updated, err := service.Update(ctx, "1", models.ProductPatch{Description: models.Some(description)})
	require.NoError(t, err)
	assert.Equal(t, description, updated.Description)
}

func TestProductService_Delete(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	publisher := new(MockEventPublisher)
	service := services.NewProductService(mockRepo, publisher, nil)

	mockRepo.On("ExistsByID", ctx, "1").Return(true, nil).Once()
	mockRepo.On("DeleteByID", ctx, "1").Return(nil).Once()
	publisher.On("PublishProductEvent", eventOfType(models.EventProductDeleted)).Return(nil).Once()
	assert.NoError(t, service.Delete(ctx, "1"))

	mockRepo.On("ExistsByID", ctx, "99").Return(false, nil).Once()
	err := service.Delete(ctx, "99")
	require.Error(t, err)
	assert.True(t, services.IsProductNotFound(err))
	mockRepo.AssertNotCalled(t, "DeleteByID", ctx, "99")

	mockRepo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestErrorKind_String(t *testing.T) {
	assert.Equal(t, "InvalidSkuFormat", services.KindInvalidSkuFormat.String())
	assert.Equal(t, "SkuAlreadyExists", services.KindSkuAlreadyExists.String())
	assert.Equal(t, "ProductNotFound", services.KindProductNotFound.String())
	assert.Equal(t, "IllegalArgument", services.KindIllegalArgument.String())
}
