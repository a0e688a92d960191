package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/misagal/retail-pos/internal/catalog"
)

func pen(stock int) catalog.Product {
	return catalog.Product{ID: "p1", Name: "Pen", Price: decimal.NewFromInt(10), Stock: stock}
}

func notebook(stock int) catalog.Product {
	return catalog.Product{ID: "p2", Name: "Notebook", Price: decimal.NewFromInt(45), Stock: stock}
}

func TestCartStockBound(t *testing.T) {
	c := New()
	p := pen(3)

	require.NoError(t, c.AddOrIncrement(p))
	require.NoError(t, c.AddOrIncrement(p))
	require.NoError(t, c.AddOrIncrement(p))

	// The fourth unit exceeds the observed stock.
	err := c.AddOrIncrement(p)
	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 4, stockErr.Requested)
	assert.Equal(t, 3, stockErr.Available)

	// The rejection left the cart untouched.
	require.Equal(t, 1, c.Len())
	assert.Equal(t, 3, c.Lines()[0].Quantity)
	assert.True(t, decimal.NewFromInt(30).Equal(c.Total()))
}

func TestCartAddOutOfStock(t *testing.T) {
	c := New()

	err := c.AddOrIncrement(pen(0))
	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "Pen is out of stock", stockErr.Error())
	assert.True(t, c.Empty())
}

func TestCartIncrement(t *testing.T) {
	c := New()

	assert.ErrorIs(t, c.Increment(pen(3)), ErrLineNotFound)

	require.NoError(t, c.AddOrIncrement(pen(3)))
	require.NoError(t, c.Increment(pen(3)))
	assert.Equal(t, 2, c.Lines()[0].Quantity)
}

func TestCartIncrementRefreshesSnapshot(t *testing.T) {
	c := New()
	require.NoError(t, c.AddOrIncrement(pen(3)))

	// The product changed between observations; a successful increment
	// refreshes the line's snapshot.
	fresh := catalog.Product{ID: "p1", Name: "Gel Pen", Price: decimal.NewFromInt(12), Stock: 5}
	require.NoError(t, c.Increment(fresh))

	line := c.Lines()[0]
	assert.Equal(t, "Gel Pen", line.Name)
	assert.Equal(t, 5, line.Stock)
	assert.True(t, decimal.NewFromInt(24).Equal(c.Total()))
}

func TestCartDecrement(t *testing.T) {
	c := New()
	require.NoError(t, c.AddOrIncrement(pen(3)))
	require.NoError(t, c.Increment(pen(3)))

	require.NoError(t, c.Decrement("p1"))
	assert.Equal(t, 1, c.Lines()[0].Quantity)

	// Decrementing the last unit removes the line, never leaving quantity 0.
	require.NoError(t, c.Decrement("p1"))
	assert.True(t, c.Empty())

	assert.ErrorIs(t, c.Decrement("p1"), ErrLineNotFound)
}

func TestCartOrderAndTotal(t *testing.T) {
	c := New()
	require.NoError(t, c.AddOrIncrement(notebook(2)))
	require.NoError(t, c.AddOrIncrement(pen(3)))
	require.NoError(t, c.AddOrIncrement(pen(3)))

	lines := c.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, "p2", lines[0].ProductID, "insertion order is preserved")
	assert.Equal(t, "p1", lines[1].ProductID)
	assert.True(t, decimal.NewFromInt(65).Equal(c.Total()))
}

func TestCartClear(t *testing.T) {
	c := New()
	require.NoError(t, c.AddOrIncrement(pen(3)))

	c.Clear()
	assert.True(t, c.Empty())
	assert.True(t, decimal.Zero.Equal(c.Total()))
}

func TestCartLinesIsACopy(t *testing.T) {
	c := New()
	require.NoError(t, c.AddOrIncrement(pen(3)))

	lines := c.Lines()
	lines[0].Quantity = 99
	assert.Equal(t, 1, c.Lines()[0].Quantity)
}
