// Package checkout reconciles a proposed cart against live stock. It is the
// one place staleness is handled: the cart's observed stock values are
// display hints, the freshly loaded catalog is the authoritative check.
package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/misagal/retail-pos/internal/cart"
	"github.com/misagal/retail-pos/internal/catalog"
)

// ErrEmptyCart rejects finalizing a sale with nothing in the cart.
var ErrEmptyCart = errors.New("cart is empty")

// ProductNotFoundError rejects a checkout whose cart references a product
// that no longer exists in the catalog.
type ProductNotFoundError struct {
	ProductID string
	Name      string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s (%s) not found", e.Name, e.ProductID)
}

// Receipt describes a committed sale. Receipts are not persisted; the
// catalog's deducted stock is the durable effect.
type Receipt struct {
	ID        string
	Lines     []cart.Line
	Total     decimal.Decimal
	CreatedAt time.Time
}

// Reconciler commits carts against the catalog with all-or-nothing
// semantics.
type Reconciler struct {
	catalog *catalog.Store
}

// NewReconciler creates a Reconciler over the given catalog store.
func NewReconciler(store *catalog.Store) *Reconciler {
	return &Reconciler{catalog: store}
}

// Finalize re-validates every cart line against a fresh catalog snapshot and,
// only if every line passes, persists the deducted stock in one write.
//
// Any rejection (empty cart, vanished product, insufficient stock, storage
// failure) leaves both the persisted catalog and the cart untouched so the
// user can adjust quantities and retry. The caller clears the cart after a
// successful finalize.
func (r *Reconciler) Finalize(ctx context.Context, c *cart.Cart) (*Receipt, error) {
	if c.Empty() {
		return nil, ErrEmptyCart
	}

	// Authoritative snapshot; the cart's cached stock values are ignored.
	products, err := r.catalog.Load(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load catalog for checkout")
	}

	byID := make(map[string]int, len(products))
	for i, p := range products {
		byID[p.ID] = i
	}

	lines := c.Lines()
	for _, line := range lines {
		i, ok := byID[line.ProductID]
		if !ok {
			return nil, &ProductNotFoundError{ProductID: line.ProductID, Name: line.Name}
		}
		if p := products[i]; line.Quantity > p.Stock {
			return nil, &cart.InsufficientStockError{
				ProductID: p.ID,
				Name:      p.Name,
				Requested: line.Quantity,
				Available: p.Stock,
			}
		}
	}

	// Every line passed: deduct stock, everything else unchanged.
	updated := make([]catalog.Product, len(products))
	copy(updated, products)
	total := decimal.Zero
	for _, line := range lines {
		i := byID[line.ProductID]
		updated[i].Stock -= line.Quantity
		total = total.Add(updated[i].Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	if err := r.catalog.Save(ctx, updated); err != nil {
		return nil, errors.Wrap(err, "commit stock deduction")
	}

	return &Receipt{
		ID:        "r" + uuid.NewString(),
		Lines:     lines,
		Total:     total,
		CreatedAt: time.Now(),
	}, nil
}
