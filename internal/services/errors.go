package services

import (
	"errors"
	"fmt"

	"inventory/internal/validation"
)

// ErrorKind categorizes product domain errors.
type ErrorKind int

const (
	// KindInvalidSkuFormat indicates a malformed or disallowed SKU value.
	KindInvalidSkuFormat ErrorKind = iota
	// KindSkuAlreadyExists indicates a SKU uniqueness violation.
	KindSkuAlreadyExists
	// KindProductNotFound indicates an unknown product identifier.
	KindProductNotFound
	// KindIllegalArgument indicates a malformed field value in an update.
	KindIllegalArgument
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidSkuFormat:
		return "InvalidSkuFormat"
	case KindSkuAlreadyExists:
		return "SkuAlreadyExists"
	case KindProductNotFound:
		return "ProductNotFound"
	case KindIllegalArgument:
		return "IllegalArgument"
	}
	return "Unknown"
}

// ProductError is returned by ProductService for every domain violation.
type ProductError struct {
	Kind    ErrorKind
	Message string
	// SKU is set for SKU related kinds, ID for ProductNotFound and Field for
	// IllegalArgument.
	SKU   string
	ID    string
	Field string
	Cause error
}

func (e *ProductError) Error() string {
	return e.Message
}

func (e *ProductError) Unwrap() error {
	return e.Cause
}

// InvalidSkuFormatError reports a SKU that fails the format rule.
func InvalidSkuFormatError(sku string) *ProductError {
	return &ProductError{
		Kind:    KindInvalidSkuFormat,
		Message: (&validation.InvalidSKUError{SKU: sku}).Error(),
		SKU:     sku,
	}
}

// SkuChangeError reports an attempt to change an immutable SKU.
func SkuChangeError(from, to string) *ProductError {
	return &ProductError{
		Kind:    KindInvalidSkuFormat,
		Message: fmt.Sprintf("SKU change is not allowed from %s to %s", from, to),
		SKU:     to,
	}
}

// SkuAlreadyExistsError reports a duplicate SKU.
func SkuAlreadyExistsError(sku string, cause error) *ProductError {
	return &ProductError{
		Kind:    KindSkuAlreadyExists,
		Message: fmt.Sprintf("A product with SKU '%s' already exists", sku),
		SKU:     sku,
		Cause:   cause,
	}
}

// ProductNotFoundError reports an unknown product identifier.
func ProductNotFoundError(id string, cause error) *ProductError {
	return &ProductError{
		Kind:    KindProductNotFound,
		Message: fmt.Sprintf("Product not found with ID: %s", id),
		ID:      id,
		Cause:   cause,
	}
}

// IllegalArgumentError reports a field that failed its own rule.
func IllegalArgumentError(field, rule string) *ProductError {
	return &ProductError{
		Kind:    KindIllegalArgument,
		Message: fmt.Sprintf("Invalid value for %s: %s", field, rule),
		Field:   field,
	}
}

// AsProductError extracts a ProductError from an error chain.
func AsProductError(err error) *ProductError {
	var productErr *ProductError
	if errors.As(err, &productErr) {
		return productErr
	}
	return nil
}

func isKind(err error, kind ErrorKind) bool {
	productErr := AsProductError(err)
	return productErr != nil && productErr.Kind == kind
}

// IsInvalidSkuFormat returns true if err is an InvalidSkuFormat error.
func IsInvalidSkuFormat(err error) bool { return isKind(err, KindInvalidSkuFormat) }

// IsSkuAlreadyExists returns true if err is a SkuAlreadyExists error.
func IsSkuAlreadyExists(err error) bool { return isKind(err, KindSkuAlreadyExists) }

// IsProductNotFound returns true if err is a ProductNotFound error.
func IsProductNotFound(err error) bool { return isKind(err, KindProductNotFound) }

// IsIllegalArgument returns true if err is an IllegalArgument error.
func IsIllegalArgument(err error) bool { return isKind(err, KindIllegalArgument) }
