// Package catalog owns the product catalog: the canonical Product shape, the
// normalizer that converges legacy stored records onto that shape, and the
// store adapter that loads and saves the whole collection through the blob
// store.
package catalog

import (
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist in the
// catalog.
var ErrNotFound = errors.New("product not found")

// Product is a catalog item. The catalog is the single source of truth for
// Stock; carts only hold observations of it.
type Product struct {
	ID     string
	Name   string
	Detail string
	Price  decimal.Decimal
	Stock  int
	Image  string
}

// InvalidInputError rejects a product mutation at the admin boundary, before
// storage is touched.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
