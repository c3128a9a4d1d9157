package handlers

import (
	"fmt"
	"strings"
	"time"

	"inventory/internal/middleware"
	"inventory/internal/models"
	"inventory/internal/services"
	"inventory/internal/validation"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service  *services.ProductService
	validate *validator.Validate
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: validation.New(),
	}
}

// RegisterRoutes registers the product routes with the Fiber app.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Put("/:id", h.HandleUpdateProduct)
	productRoutes.Patch("/:id", h.HandleUpdateProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)
}

// HandleGetProducts lists all products.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.FindAll(c.UserContext())
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Products retrieved successfully", products)
}

// HandleGetProductByID retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	product, err := h.service.FindByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Product retrieved successfully", product)
}

// HandleCreateProduct validates the request body and creates a product.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	// The identifier and timestamps are assigned by storage.
	product.ID = ""
	product.CreatedAt, product.UpdatedAt = time.Time{}, time.Time{}

	if err := h.validate.Struct(product); err != nil {
		if fields := validation.FieldErrors(err); fields != nil {
			return &ValidationError{Fields: fields}
		}
		return err
	}

	created, err := h.service.Create(c.UserContext(), &product)
	if err != nil {
		return err
	}

	middleware.Logger(c).Info("Product created", zap.String("product_id", created.ID), zap.String("sku", created.SKU))
	c.Location(fmt.Sprintf("%s/%s", strings.TrimSuffix(c.Path(), "/"), created.ID))
	return respond(c, fiber.StatusCreated, "Product created successfully", created)
}

// HandleUpdateProduct applies a partial update. Fields missing from the body
// keep their stored value.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var patch models.ProductPatch
	if err := c.BodyParser(&patch); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	updated, err := h.service.Update(c.UserContext(), c.Params("id"), patch)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Product updated successfully", updated)
}

// HandleDeleteProduct deletes a product by its ID.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return err
	}
	middleware.Logger(c).Info("Product deleted", zap.String("product_id", id))
	return respond(c, fiber.StatusOK, "Product deleted successfully", nil)
}
