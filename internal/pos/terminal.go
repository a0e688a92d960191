// Package pos composes the catalog, cart, and checkout reconciler into one
// sales session: the command API the rendering layer invokes and re-renders
// from.
package pos

import (
	"context"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/misagal/retail-pos/internal/cart"
	"github.com/misagal/retail-pos/internal/catalog"
	"github.com/misagal/retail-pos/internal/checkout"
)

// Terminal is a single sales session. All operations are serialized by one
// mutex: a second conflicting mutation cannot start before the first one's
// save completes. Cross-session concurrency is out of scope; a concurrent
// writer on the same store can still be overwritten (accepted lost-update
// risk for a single-terminal deployment).
type Terminal struct {
	mu         sync.Mutex
	catalog    *catalog.Store
	reconciler *checkout.Reconciler
	cart       *cart.Cart
}

// NewTerminal creates a session with an empty cart.
func NewTerminal(store *catalog.Store, reconciler *checkout.Reconciler) *Terminal {
	return &Terminal{
		catalog:    store,
		reconciler: reconciler,
		cart:       cart.New(),
	}
}

// ListCatalog returns a fresh read-only projection of the catalog.
func (t *Terminal) ListCatalog(ctx context.Context) ([]catalog.Product, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.catalog.Load(ctx)
}

// SearchCatalog returns the products whose name contains the query,
// case-insensitively. An empty query returns the whole catalog.
func (t *Terminal) SearchCatalog(ctx context.Context, query string) ([]catalog.Product, error) {
	products, err := t.ListCatalog(ctx)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return products, nil
	}

	matched := products[:0]
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), q) {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

// AddToCart adds one unit of the product to the cart, creating the line or
// incrementing it. The product is resolved against a freshly loaded catalog
// so the stock bound reflects the latest observable value.
func (t *Terminal) AddToCart(ctx context.Context, productID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, err := t.lookup(ctx, productID)
	if err != nil {
		return err
	}
	return t.cart.AddOrIncrement(*p)
}

// IncrementLine raises an existing cart line by one unit, re-checking the
// stock bound against a fresh catalog.
func (t *Terminal) IncrementLine(ctx context.Context, productID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, err := t.lookup(ctx, productID)
	if err != nil {
		return err
	}
	return t.cart.Increment(*p)
}

// DecrementLine lowers a cart line by one unit, removing it at zero.
func (t *Terminal) DecrementLine(productID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.cart.Decrement(productID)
}

// ClearCart empties the cart unconditionally.
func (t *Terminal) ClearCart() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.cart.Clear()
}

// CartTotal returns the running total of the cart.
func (t *Terminal) CartTotal() decimal.Decimal {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.cart.Total()
}

// CartLines returns a copy of the cart's lines for rendering.
func (t *Terminal) CartLines() []cart.Line {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.cart.Lines()
}

// FinalizeSale commits the cart through the reconciler. The cart is cleared
// only after a successful commit; on any rejection it is left untouched.
func (t *Terminal) FinalizeSale(ctx context.Context) (*checkout.Receipt, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	receipt, err := t.reconciler.Finalize(ctx, t.cart)
	if err != nil {
		return nil, err
	}
	t.cart.Clear()
	return receipt, nil
}

// lookup loads the catalog and resolves one product by id.
func (t *Terminal) lookup(ctx context.Context, productID string) (*catalog.Product, error) {
	products, err := t.catalog.Load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].ID == productID {
			p := products[i]
			return &p, nil
		}
	}
	return nil, catalog.ErrNotFound
}
