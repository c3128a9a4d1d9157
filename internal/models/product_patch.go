package models

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Optional marks a value as present or absent in a partial update.
// A JSON null decodes as absent.
type Optional[T any] struct {
	Value   T
	Present bool
}

// Some returns a present Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Present: true}
}

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (T, bool) {
	return o.Value, o.Present
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = Optional[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Present {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// ProductPatch carries the fields of a partial product update.
// Absent fields leave the stored value untouched. SKU is accepted only so
// that an attempt to change it can be rejected.
type ProductPatch struct {
	Name        Optional[string]          `json:"name"`
	Description Optional[string]          `json:"description"`
	SKU         Optional[string]          `json:"sku"`
	Price       Optional[decimal.Decimal] `json:"price"`
	Quantity    Optional[int]             `json:"quantity"`
	Status      Optional[ProductStatus]   `json:"status"`
}
