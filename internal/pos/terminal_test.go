package pos

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/misagal/retail-pos/internal/cart"
	"github.com/misagal/retail-pos/internal/catalog"
	"github.com/misagal/retail-pos/internal/checkout"
	"github.com/misagal/retail-pos/internal/kvstore"
)

func newTestTerminal(t *testing.T, products ...catalog.Product) *Terminal {
	t.Helper()
	store := catalog.NewStore(kvstore.NewMemory(), "catalog", nil)
	require.NoError(t, store.Save(context.Background(), products))
	return NewTerminal(store, checkout.NewReconciler(store))
}

func stationery() []catalog.Product {
	return []catalog.Product{
		{ID: "p1", Name: "Gel Pen", Price: decimal.NewFromInt(10), Stock: 3},
		{ID: "p2", Name: "Notebook", Price: decimal.NewFromInt(45), Stock: 2},
		{ID: "p3", Name: "Pencil", Price: decimal.NewFromInt(5), Stock: 0},
	}
}

func TestTerminalSearchCatalog(t *testing.T) {
	ctx := context.Background()
	term := newTestTerminal(t, stationery()...)

	all, err := term.SearchCatalog(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	pens, err := term.SearchCatalog(ctx, "  PEN ")
	require.NoError(t, err)
	require.Len(t, pens, 2)
	assert.Equal(t, "p1", pens[0].ID)
	assert.Equal(t, "p3", pens[1].ID)

	none, err := term.SearchCatalog(ctx, "stapler")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestTerminalCartFlow(t *testing.T) {
	ctx := context.Background()
	term := newTestTerminal(t, stationery()...)

	require.NoError(t, term.AddToCart(ctx, "p1"))
	require.NoError(t, term.AddToCart(ctx, "p1"))
	require.NoError(t, term.AddToCart(ctx, "p2"))
	assert.True(t, decimal.NewFromInt(65).Equal(term.CartTotal()))

	require.NoError(t, term.IncrementLine(ctx, "p1"))
	err := term.IncrementLine(ctx, "p1")
	var stockErr *cart.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)

	require.NoError(t, term.DecrementLine("p2"))
	lines := term.CartLines()
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Quantity)
}

func TestTerminalAddUnknownProduct(t *testing.T) {
	term := newTestTerminal(t, stationery()...)

	err := term.AddToCart(context.Background(), "missing")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
	assert.Empty(t, term.CartLines())
}

func TestTerminalAddOutOfStock(t *testing.T) {
	term := newTestTerminal(t, stationery()...)

	err := term.AddToCart(context.Background(), "p3")
	var stockErr *cart.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "p3", stockErr.ProductID)
}

func TestTerminalFinalizeSale(t *testing.T) {
	ctx := context.Background()
	term := newTestTerminal(t, stationery()...)

	require.NoError(t, term.AddToCart(ctx, "p1"))
	require.NoError(t, term.AddToCart(ctx, "p2"))

	receipt, err := term.FinalizeSale(ctx)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(55).Equal(receipt.Total))

	// The cart is cleared only after a successful commit.
	assert.Empty(t, term.CartLines())

	products, err := term.ListCatalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, products[0].Stock)
	assert.Equal(t, 1, products[1].Stock)
}

func TestTerminalFinalizeEmptyCart(t *testing.T) {
	term := newTestTerminal(t, stationery()...)

	_, err := term.FinalizeSale(context.Background())
	assert.ErrorIs(t, err, checkout.ErrEmptyCart)
}

func TestTerminalFinalizeRejectionKeepsCart(t *testing.T) {
	ctx := context.Background()
	store := catalog.NewStore(kvstore.NewMemory(), "catalog", nil)
	pen := catalog.Product{ID: "p1", Name: "Pen", Price: decimal.NewFromInt(10), Stock: 2}
	require.NoError(t, store.Save(ctx, []catalog.Product{pen}))
	term := NewTerminal(store, checkout.NewReconciler(store))

	require.NoError(t, term.AddToCart(ctx, "p1"))
	require.NoError(t, term.AddToCart(ctx, "p1"))

	// Stock drained underneath the session.
	pen.Stock = 1
	require.NoError(t, store.Save(ctx, []catalog.Product{pen}))

	_, err := term.FinalizeSale(ctx)
	var stockErr *cart.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Len(t, term.CartLines(), 1, "rejected checkout leaves the cart for correction")
}
