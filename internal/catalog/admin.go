package catalog

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Fields is the editable portion of a product. The id is never part of it:
// identity is assigned at creation and immutable afterwards.
type Fields struct {
	Name   string
	Detail string
	Price  decimal.Decimal
	Stock  int
	Image  string
}

// validate rejects bad input before storage is touched.
func (f *Fields) validate() error {
	f.Name = strings.TrimSpace(f.Name)
	f.Detail = strings.TrimSpace(f.Detail)

	if f.Name == "" {
		return &InvalidInputError{Field: "name", Reason: "required"}
	}
	if f.Price.IsNegative() {
		return &InvalidInputError{Field: "price", Reason: "must not be negative"}
	}
	if f.Stock < 0 {
		return &InvalidInputError{Field: "stock", Reason: "must not be negative"}
	}
	return nil
}

// Admin is the catalog editing service. Every operation is a full
// load-mutate-save cycle over the whole collection.
type Admin struct {
	store *Store
}

// NewAdmin creates the catalog editing service.
func NewAdmin(store *Store) *Admin {
	return &Admin{store: store}
}

// List returns the current catalog, a read-only projection for rendering.
func (a *Admin) List(ctx context.Context) ([]Product, error) {
	return a.store.Load(ctx)
}

// Get returns a single product by id.
func (a *Admin) Get(ctx context.Context, id string) (*Product, error) {
	products, err := a.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].ID == id {
			p := products[i]
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

// CreateProduct validates the fields, assigns a fresh id, appends the product
// and saves the catalog.
func (a *Admin) CreateProduct(ctx context.Context, f Fields) (*Product, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}

	products, err := a.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	p := Product{
		ID:     newProductID(),
		Name:   f.Name,
		Detail: f.Detail,
		Price:  f.Price,
		Stock:  f.Stock,
		Image:  f.Image,
	}
	products = append(products, p)

	if err := a.store.Save(ctx, products); err != nil {
		return nil, errors.Wrapf(err, "create product %q", p.ID)
	}
	return &p, nil
}

// UpdateProduct replaces the editable fields of an existing product. The id
// is immutable; an empty image keeps the stored one.
func (a *Admin) UpdateProduct(ctx context.Context, id string, f Fields) (*Product, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}

	products, err := a.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range products {
		if products[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrNotFound
	}

	p := &products[idx]
	p.Name = f.Name
	p.Detail = f.Detail
	p.Price = f.Price
	p.Stock = f.Stock
	if f.Image != "" {
		p.Image = f.Image
	}

	if err := a.store.Save(ctx, products); err != nil {
		return nil, errors.Wrapf(err, "update product %q", id)
	}
	out := *p
	return &out, nil
}

// DeleteProduct removes a product from the catalog.
func (a *Admin) DeleteProduct(ctx context.Context, id string) error {
	products, err := a.store.Load(ctx)
	if err != nil {
		return err
	}

	kept := products[:0]
	found := false
	for _, p := range products {
		if p.ID == id {
			found = true
			continue
		}
		kept = append(kept, p)
	}
	if !found {
		return ErrNotFound
	}

	if err := a.store.Save(ctx, kept); err != nil {
		return errors.Wrapf(err, "delete product %q", id)
	}
	return nil
}
